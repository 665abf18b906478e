package servers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/reusee/lud/logs"
	"github.com/reusee/lud/tools"
)

// Version is set at release time, dev builds report "dev".
var Version = "dev"

// Server exposes the local tool registry over HTTP so a client on
// another machine can run tools against this root.
type Server struct {
	registry *tools.Registry
	root     string
	token    string
	logger   logs.Logger
}

func NewServer(
	registry *tools.Registry,
	root string,
	token string,
	logger logs.Logger,
) *Server {
	return &Server{
		registry: registry,
		root:     root,
		token:    token,
		logger:   logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleInfo)
	mux.Handle("GET /health", s.auth(http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /tools", s.auth(http.HandlerFunc(s.handleTools)))
	mux.Handle("POST /tools/call", s.auth(http.HandlerFunc(s.handleToolCall)))
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	s.logger.Info("tool server listening",
		"addr", addr,
		"root", s.root,
	)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return wrap(err)
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) != 1 {
			s.writeJSON(r, w, http.StatusUnauthorized, map[string]any{
				"error": "Unauthorized",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleInfo serves basic server info without auth, it leaks nothing
// beyond the fact that the server is up.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r, w, http.StatusOK, map[string]any{
		"name":    "Lud Tool Server",
		"version": Version,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r, w, http.StatusOK, map[string]any{
		"status": "ok",
		"root":   s.root,
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(r, w, http.StatusOK, map[string]any{
		"tools": s.registry.Catalog(),
	})
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string     `json:"name"`
		Arguments tools.Args `json:"arguments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(r, w, http.StatusBadRequest, map[string]any{
			"error": "invalid request body",
		})
		return
	}
	outcome := s.registry.Call(r.Context(), req.Name, req.Arguments)
	s.writeJSON(r, w, http.StatusOK, outcome)
}

func (s *Server) writeJSON(r *http.Request, w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.ErrorContext(r.Context(), "write response",
			"path", r.URL.Path,
			"error", wrap(err),
		)
	}
}
