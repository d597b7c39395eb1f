package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/engine"
	"github.com/san-kum/lyricfield/internal/tracker"
)

const clickTimeout = 2 * time.Second

// Source is the engine surface the server needs.
type Source interface {
	Last() engine.Frame
	Stats() tracker.Stats
	DebugInfo() tracker.DebugInfo
	Params() dynamo.Params
	UpdateParams(patch map[string]float64) error
	Click(ctx context.Context, bubbleID string) (content.Item, error)
}

// Message is the envelope of every websocket payload.
type Message struct {
	Type  string        `json:"type"`
	Frame *engine.Frame `json:"frame,omitempty"`
	Item  *ItemView     `json:"item,omitempty"`
	ID    string        `json:"id,omitempty"`
	Error string        `json:"error,omitempty"`
}

// ItemView is the click detail returned to renderers.
type ItemView struct {
	ID           string              `json:"id"`
	Type         content.Type        `json:"type"`
	Name         string              `json:"name"`
	RelatedCount int                 `json:"relatedCount"`
	Roles        []content.RoleCount `json:"roles,omitempty"`
	Title        string              `json:"title,omitempty"`
	Tags         []string            `json:"tags,omitempty"`
}

func newItemView(it content.Item) *ItemView {
	v := &ItemView{
		ID:           it.ID,
		Type:         it.Type,
		Name:         it.Name,
		RelatedCount: it.RelatedCount,
		Roles:        it.Roles(),
	}
	if song, ok := it.Kind.(content.Song); ok {
		v.Title, v.Tags = song.Title, song.Tags
	}
	return v
}

type Server struct {
	hub    *Hub
	src    Source
	logger *log.Logger

	upgrader websocket.Upgrader
	every    int64
	frames   atomic.Int64
	dropped  atomic.Int64
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithFrameEvery broadcasts only every n-th frame.
func WithFrameEvery(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.every = int64(n)
		}
	}
}

// WithAllowedOrigin restricts websocket upgrades to one origin.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) {
		if origin == "" {
			return
		}
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			return r.Header.Get("Origin") == origin
		}
	}
}

func NewServer(hub *Hub, src Source, opts ...Option) *Server {
	s := &Server{
		hub:   hub,
		src:   src,
		every: 1,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(os.Stderr, "lyricfield: ", log.LstdFlags)
	}
	return s
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWS)
	r.Get("/frame", s.handleFrame)
	r.Get("/stats", s.handleStats)
	r.Get("/debug", s.handleDebug)
	r.Get("/params", s.handleParams)
	r.Patch("/params", s.handleUpdateParams)
	r.Post("/bubbles/{id}/click", s.handleClick)
	return r
}

// OnFrame broadcasts frames to websocket clients. It never blocks the tick.
func (s *Server) OnFrame(f engine.Frame) {
	if s.frames.Add(1)%s.every != 0 || s.hub.Clients() == 0 {
		return
	}
	data, err := json.Marshal(Message{Type: "frame", Frame: &f})
	if err != nil {
		s.logger.Printf("stream: encode frame: %v", err)
		return
	}
	if !s.hub.Broadcast(data) {
		s.dropped.Add(1)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "lyricfield",
		"clients": s.hub.Clients(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("stream: ws upgrade: %v", err)
		return
	}

	c := &Client{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, 64),
		onMessage: s.handleMessage,
	}
	send(s.hub, s.hub.register, c)

	f := s.src.Last()
	if b, err := json.Marshal(Message{Type: "welcome", Frame: &f}); err == nil {
		send(s.hub, s.hub.direct, envelope{to: c, msg: b})
	}

	go c.writePump()
	go c.readPump()
}

// handleMessage answers {"type":"click","id":"..."} requests from clients.
func (s *Server) handleMessage(raw []byte) []byte {
	var in Message
	if err := json.Unmarshal(raw, &in); err != nil {
		return mustJSON(Message{Type: "error", Error: "invalid message"})
	}
	if in.Type != "click" {
		return mustJSON(Message{Type: "error", ID: in.ID, Error: "unknown message type"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), clickTimeout)
	defer cancel()
	it, err := s.src.Click(ctx, in.ID)
	if err != nil {
		return mustJSON(Message{Type: "error", ID: in.ID, Error: err.Error()})
	}
	return mustJSON(Message{Type: "detail", ID: in.ID, Item: newItemView(it)})
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Last())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Stats())
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.DebugInfo())
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.src.Params().GetParams())
}

func (s *Server) handleUpdateParams(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var patch map[string]float64
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if err := s.src.UpdateParams(patch); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dynamo.ErrUnknownParam) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), clickTimeout)
	defer cancel()
	it, err := s.src.Click(ctx, id)
	switch {
	case errors.Is(err, dynamo.ErrBubbleNotFound):
		http.Error(w, "bubble not found", http.StatusNotFound)
		return
	case err != nil:
		s.logger.Printf("stream: click %s: %v", id, err)
		http.Error(w, "click failed", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, newItemView(it))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
