package srv

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"yoink.exe.dev/dictionary"
)

// Server holds process-wide shared state for the HTTP/WebSocket server.
type Server struct {
	Rooms *Registry
}

// Config is the process-level configuration the CLI entry point
// assembles before calling New.
type Config struct {
	DictionaryURLs []string
}

// New loads the dictionary (falling back to the built-in word list on
// failure, never erroring) and returns a ready Server.
func New(ctx context.Context, cfg Config) (*Server, error) {
	dict, err := dictionary.Load(ctx, cfg.DictionaryURLs)
	if err != nil {
		return nil, err
	}
	return &Server{Rooms: NewRegistry(dict)}, nil
}

// HandleHealth answers liveness checks with a static body: there is
// nothing to probe deeper, the process has no external dependencies
// once the dictionary is loaded.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("yoink ok\n"))
}

// Serve starts the HTTP server with the configured routes and blocks
// until ctx is cancelled, at which point it shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.HandleHealth)
	mux.HandleFunc("GET /ws", s.HandleWS)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Rooms.Shutdown()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
