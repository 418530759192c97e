// Package web exposes the keep-alive endpoint and a pull-based board query,
// so any presentation surface can fetch the current render without going
// through Discord.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Richiks1/questboard/questboard/board"
	"github.com/Richiks1/questboard/questboard/config"
)

type Server struct {
	srv      *http.Server
	board    *board.Board
	renderer *board.Renderer
}

func NewServer(addr string, b *board.Board, renderer *board.Renderer) *Server {
	s := &Server{board: b, renderer: renderer}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/board.png", s.handleBoard)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves until ctx is cancelled. A listener failure is returned so the
// caller can tear the process down.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.WebShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Web server shutdown failed", slog.Any("error", err))
		}
	}()

	slog.Info("Web server listening", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.board.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "failed to load board state", http.StatusInternalServerError)
		return
	}
	img, err := s.renderer.Render(snapshot)
	if err != nil {
		if errors.Is(err, board.ErrRenderUnavailable) {
			http.Error(w, "board image unavailable", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "failed to render board", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(img)
}
