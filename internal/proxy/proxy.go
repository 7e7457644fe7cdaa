// Package proxy serves a local control page and forwards its requests to
// the gateway reached through the secondary adapter.
package proxy

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/wifiproxy/wifiproxy/internal/gateway"
)

// StreamPath is where the proxied camera stream is served.
const StreamPath = "/stream"

//go:embed templates/index.html
var templates embed.FS

// Gateway is the upstream device the proxy forwards to.
type Gateway interface {
	Control(ctx context.Context, rawQuery string) ([]byte, error)
	OpenStream(ctx context.Context) (*gateway.Stream, error)
}

// Server proxies the control page, control commands and camera stream.
type Server struct {
	gw     Gateway
	logger *slog.Logger
	index  *template.Template
}

// New creates a Server. The index template is parsed once here.
func New(gw Gateway, logger *slog.Logger) (*Server, error) {
	index, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{gw: gw, logger: logger, index: index}, nil
}

// Handler returns the proxy's routes wrapped with request ids, logging and
// a permissive CORS policy.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /control", s.handleControl)
	mux.HandleFunc("GET "+StreamPath, s.handleStream)

	return cors.AllowAll().Handler(s.withRequestID(mux))
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type indexData struct {
	StreamURL string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.index.Execute(&buf, indexData{StreamURL: StreamPath}); err != nil {
		s.logger.Error("render index", "err", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	body, err := s.gw.Control(r.Context(), r.URL.RawQuery)
	if err != nil {
		s.logger.Warn("control proxy failed", "query", r.URL.RawQuery, "err", err)
		http.Error(w, fmt.Sprintf("Proxy error: %s", err), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(body)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	stream, err := s.gw.OpenStream(r.Context())
	if err != nil {
		s.logger.Warn("stream proxy failed", "err", err)
		http.Error(w, fmt.Sprintf("Stream error: %s", err), http.StatusBadGateway)
		return
	}
	defer stream.Body.Close()

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	status := stream.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	rc := http.NewResponseController(w)
	buf := make([]byte, 32*1024)
	for {
		n, err := stream.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			rc.Flush()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && r.Context().Err() == nil {
				s.logger.Debug("stream ended", "err", err)
			}
			return
		}
	}
}
