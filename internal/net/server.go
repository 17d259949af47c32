package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"LiveBoard/internal/persist"
	"LiveBoard/internal/state"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// maxBoardSize bounds a stored board body.
const maxBoardSize = 16 << 20

// Server is the relay: websocket rooms per board, the board store API, health
// and metrics.
type Server struct {
	hub      *Hub
	store    persist.Gateway
	metrics  *Metrics
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewServer builds a relay. store may be nil, in which case the board API
// answers 404 for every board and rejects writes.
func NewServer(store persist.Gateway, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("relay")
	metrics := NewMetrics("liveboard")
	return &Server{
		hub:     NewHub(metrics, logger),
		store:   store,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Boards are shared on the local network; any origin may join.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the relay's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/ws/{boardID}", s.serveWS)
	r.Route("/api/boards", func(r chi.Router) {
		r.Get("/{boardID}", s.getBoard)
		r.Put("/{boardID}", s.putBoard)
	})
	return r
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("relay failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, l)
}

// Serve runs the hub and serves l until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Relay listening", zap.String("addr", l.Addr().String()))
		errCh <- srv.Serve(l)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stopHub()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("relay shutdown: %w", err)
	}
	s.logger.Info("Relay stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "boardID")
	instance := r.URL.Query().Get("instance")
	if board == "" || instance == "" {
		http.Error(w, "board and instance are required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	newMember(board, instance, s.hub, conn, s.logger).start()
}

func (s *Server) getBoard(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "boardID")
	if s.store == nil {
		http.Error(w, "board not found", http.StatusNotFound)
		return
	}

	text, err := s.store.Read(r.Context(), board)
	if err != nil {
		s.storeError(w, board, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, text)
}

func (s *Server) putBoard(w http.ResponseWriter, r *http.Request) {
	board := chi.URLParam(r, "boardID")
	if s.store == nil {
		http.Error(w, "board store not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBoardSize))
	if err != nil {
		http.Error(w, "board body too large", http.StatusRequestEntityTooLarge)
		return
	}
	if _, err := state.ParseShapeList(string(body)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.store.Write(r.Context(), board, string(body)); err != nil {
		s.storeError(w, board, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) storeError(w http.ResponseWriter, board string, err error) {
	switch {
	case errors.Is(err, persist.ErrNotFound):
		http.Error(w, "board not found", http.StatusNotFound)
	case errors.Is(err, persist.ErrInvalidBoardID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.logger.Error("Board store failed", zap.String("board", board), zap.Error(err))
		http.Error(w, "board store failed", http.StatusInternalServerError)
	}
}

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Debug("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		})
	}
}
