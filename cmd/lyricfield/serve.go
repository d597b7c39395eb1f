package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/events"
	"github.com/san-kum/lyricfield/internal/stream"
	"github.com/san-kum/lyricfield/internal/viz"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadSession(cmd)
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "lyricfield: ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := engine.New(cfg.Params(),
		engine.WithSeed(cfg.Seed),
		engine.WithLogger(logger),
		engine.WithStyler(viz.GetTheme(cfg.Theme)),
	)
	e.Initialize(cat)

	hub := stream.NewHub()
	srv := stream.NewServer(hub, e,
		stream.WithLogger(logger),
		stream.WithFrameEvery(cfg.Server.FrameEvery),
		stream.WithAllowedOrigin(cfg.Server.AllowedOrigin),
	)
	e.AddObserver(srv)

	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		pub := events.NewRedisPublisher(rdb, cfg.Redis.Channel)
		em := events.NewEmitter(pub, logger)
		defer em.Close()
		e.AddObserver(em)
		logger.Printf("publishing events to %s", pub.Channel())
	}

	if watch {
		stopWatch, err := watchCatalog(cfg.Catalog, e, logger)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	go hub.Run(ctx)
	if err := e.Start(cfg.FPS); err != nil {
		return err
	}
	defer e.Stop()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(middleware.RequestID, middleware.RealIP, middleware.Recoverer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("serving %s on %s at %d fps", cfg.Catalog, cfg.Server.Addr, cfg.FPS)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
