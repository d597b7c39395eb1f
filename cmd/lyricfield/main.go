package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lyricfield/internal/config"
	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/metrics"
	"github.com/san-kum/lyricfield/internal/storage"
	"github.com/san-kum/lyricfield/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	catalogPath string
	seed        int64
	dt          float64
	duration    float64
	frameRate   int
	theme       string
	addr        string
	redisURL    string
	watch       bool
	sampleEvery int
	svgOut      string
	columns     []string
	debugFor    float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "lyricfield",
		Short:        "floating bubble field for a song catalog",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".lyricfield", "data directory")

	sessionFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or toml)")
		cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
		cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (json, yaml or toml)")
		cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
		cmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
		cmd.Flags().StringVar(&theme, "theme", "night", "color theme")
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless session and record it",
		RunE:  runSession,
	}
	sessionFlags(runCmd)
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 10, "record every n-th frame")
	runCmd.Flags().StringVar(&svgOut, "svg", "", "write the final frame as SVG")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run the bubble field in the terminal",
		RunE:  runLive,
	}
	sessionFlags(liveCmd)
	liveCmd.Flags().BoolVar(&watch, "watch", false, "reload the catalog when the file changes")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream frames over websocket and accept clicks over http",
		RunE:  runServe,
	}
	sessionFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().StringVar(&redisURL, "redis", "", "publish stats events to this redis url")
	serveCmd.Flags().BoolVar(&watch, "watch", false, "reload the catalog when the file changes")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "show catalog contents and selection state",
		RunE:  inspectCatalog,
	}
	sessionFlags(inspectCmd)
	inspectCmd.Flags().Float64Var(&debugFor, "after", 0, "simulate this many seconds before dumping selection state")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", []string{"bubbles", "displayed", "selections", "forced_rotations"}, "columns to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and samples as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the resolved configuration to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	sessionFlags(configCmd)

	rootCmd.AddCommand(runCmd, liveCmd, serveCmd, inspectCmd, listCmd, plotCmd, exportCmd, presetsCmd, configCmd, newSweepCmd(), newScenarioCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog = catalogPath
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if flags.Changed("redis") {
		cfg.Redis.URL = redisURL
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

func loadSession(cmd *cobra.Command) (*config.Config, content.Catalog, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, content.Catalog{}, err
	}
	if cfg.Catalog == "" {
		return nil, content.Catalog{}, fmt.Errorf("no catalog: pass --catalog or set catalog in the config file")
	}
	cat, err := content.LoadCatalog(cfg.Catalog)
	if err != nil {
		return nil, content.Catalog{}, err
	}
	return cfg, cat, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadSession(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	rec := storage.NewRecorder(sampleEvery)
	e := engine.New(cfg.Params(), engine.WithSeed(cfg.Seed), engine.WithObserver(rec))
	for _, m := range metrics.Default() {
		e.AddMetric(m)
	}
	e.Initialize(cat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s for %.1fs...\n", cfg.Catalog, cfg.Duration)
	start := time.Now()

	last, err := e.RunFor(ctx, cfg.Duration, cfg.Dt)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Preset:   preset,
		Catalog:  cfg.Catalog,
		Seed:     cfg.Seed,
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		Ticks:    last.Tick,
		Params:   e.Params().GetParams(),
		Stats:    last.Stats,
		Metrics:  e.Metrics(),
	}
	runID, err := st.Save(meta, rec.Samples())
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d, samples: %d\n", last.Tick, len(rec.Samples()))
	fmt.Printf("selections: %d, cycles: %d, forced rotations: %d\n",
		last.Stats.Selections, last.Stats.CompletedCycles, last.Stats.ForcedRotations)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, meta.Metrics[name])
	}

	if svgOut != "" {
		p := e.Params()
		svg := viz.FrameSVG(last, p.CanvasWidth, p.CanvasHeight, viz.GetTheme(cfg.Theme))
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("\nfinal frame: %s\n", svgOut)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadSession(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}

	// The terminal belongs to the TUI, so logs go to a file.
	logFile, err := tea.LogToFile(filepath.Join(dataDir, "live.log"), "lyricfield")
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := log.New(logFile, "lyricfield: ", log.LstdFlags)

	e := engine.New(cfg.Params(), engine.WithSeed(cfg.Seed), engine.WithLogger(logger))
	e.Initialize(cat)

	if watch {
		stopWatch, err := watchCatalog(cfg.Catalog, e, logger)
		if err != nil {
			return err
		}
		defer stopWatch()
	}

	m := viz.NewModel(e, cat, viz.GetTheme(cfg.Theme), cfg.FPS)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// watchCatalog feeds reloaded catalogs into the engine until the returned
// stop func is called.
func watchCatalog(path string, e *engine.Engine, logger *log.Logger) (func(), error) {
	w, err := content.NewWatcher(path, logger)
	if err != nil {
		return nil, err
	}
	if err := w.Start(); err != nil {
		return nil, err
	}
	go func() {
		for cat := range w.Reloads {
			e.QueueCatalog(cat)
		}
	}()
	return w.Stop, nil
}

func inspectCatalog(cmd *cobra.Command, args []string) error {
	cfg, cat, err := loadSession(cmd)
	if err != nil {
		return err
	}

	reg, report := content.Build(cat)
	counts := reg.CountByType()

	fmt.Printf("catalog: %s\n\n", cfg.Catalog)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tITEMS")
	fmt.Fprintf(w, "song\t%d\n", counts.Song)
	fmt.Fprintf(w, "person\t%d\n", counts.Person)
	fmt.Fprintf(w, "tag\t%d\n", counts.Tag)
	fmt.Fprintf(w, "total\t%d\n", reg.Len())
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmax related: %d\n", reg.MaxRelated())
	fmt.Printf("skipped: %d songs, %d names, %d people, %d tags\n",
		report.SkippedSongs, report.SkippedNames, report.SkippedPeople, report.SkippedTags)

	if debugFor <= 0 {
		return nil
	}

	e := engine.New(cfg.Params(), engine.WithSeed(cfg.Seed), engine.WithLogger(log.New(io.Discard, "", 0)))
	e.Initialize(cat)
	if _, err := e.RunFor(cmd.Context(), debugFor, cfg.Dt); err != nil {
		return err
	}
	fmt.Printf("\nselection state after %.1fs:\n", debugFor)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(e.DebugInfo())
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCATALOG\tPRESET\tDURATION\tDT\tSELECTIONS\tROTATIONS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1fs\t%.4fs\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			filepath.Base(run.Catalog),
			run.Preset,
			run.Duration,
			run.Dt,
			run.Stats.Selections,
			run.Stats.ForcedRotations,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}

	if len(samples) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("catalog: %s\n", meta.Catalog)
	fmt.Printf("samples: %d\n\n", len(samples))

	for _, col := range columns {
		data := make([]float64, len(samples))
		for i, s := range samples {
			v, ok := s.Column(col)
			if !ok {
				return fmt.Errorf("unknown column: %s (available: %v)", col, storage.Columns)
			}
			data[i] = v
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tBUBBLES\tDISPLAYED\tLIFESPAN\tVELOCITY\tWIND\tNOISE")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f-%.0fs\t%.0f-%.0f\t%.1f\t%.1f\n",
			name,
			c.Bubbles.Max,
			c.Selection.MaxDisplayed,
			c.Bubbles.MinLifespan, c.Bubbles.MaxLifespan,
			c.Motion.MinVelocity, c.Motion.MaxVelocity,
			c.Motion.Wind,
			c.Motion.Noise,
		)
	}
	return w.Flush()
}
