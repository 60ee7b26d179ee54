package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/neobeach/core/internal/errors"
	"github.com/neobeach/core/internal/middleware"
	"github.com/neobeach/core/internal/response"
	"github.com/neobeach/core/internal/routing"
	handlers "github.com/neobeach/core/internal/transport/http"
)

// Static serves fsys under urlPath, behind the middleware loaded so far.
func (s *Server) Static(urlPath string, fsys fs.FS) error {
	if s.running.Load() {
		return apperrors.ErrServerRunning
	}
	if urlPath == "" || !strings.HasPrefix(urlPath, "/") {
		return apperrors.NewValidationError(apperrors.KindInvalidPath, "server", urlPath, "static path must start with /")
	}
	if fsys == nil {
		return apperrors.NewValidationError(apperrors.KindInvalidHandler, "server", urlPath, "static file system is nil")
	}

	prefix := strings.TrimRight(urlPath, "/")
	files := http.StripPrefix(prefix, http.FileServer(http.FS(fsys)))

	r := s.root.With(s.chain...)
	r.Method(http.MethodGet, prefix+"/*", files)
	r.Method(http.MethodHead, prefix+"/*", files)

	s.logger.Info("static files mounted", slog.String("path", prefix+"/"))
	return nil
}

// StaticDir serves the directory dir under urlPath.
func (s *Server) StaticDir(urlPath, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("static directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("static directory: %s is not a directory", dir)
	}
	return s.Static(urlPath, os.DirFS(dir))
}

// Views registers the template engine used by Response.Render.
func (s *Server) Views(engine response.ViewEngine) error {
	if s.running.Load() {
		return apperrors.ErrServerRunning
	}
	s.settings.Views = engine
	s.logger.Debug("view engine registered", slog.String("engine", fmt.Sprintf("%T", engine)))
	return nil
}

// Set stores an application parameter readable by handlers with Param.
func (s *Server) Set(key string, value any) error {
	if s.running.Load() {
		return apperrors.ErrServerRunning
	}
	s.params[key] = value
	return nil
}

// Param reads an application parameter from a request context.
func Param(ctx context.Context, key string) (any, bool) {
	return middleware.Param(ctx, key)
}

// UseDefaults loads the standard bundle: body limit, security headers,
// compression, CORS, then rate limiting and request timeout when
// configured.
func (s *Server) UseDefaults() error {
	sec := s.cfg.Security

	mws := []routing.Middleware{
		middleware.BodyLimit(sec.BodyLimit),
		middleware.SecurityHeaders,
		chimw.Compress(5),
		middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: sec.AllowedOrigins,
			AllowedMethods: methodNames(),
			ExposedHeaders: []string{middleware.RequestIDHeader},
			Logger:         s.logger,
		}),
	}
	if sec.RateLimit.Enabled {
		mws = append(mws, middleware.NewRateLimiter(sec.RateLimit.RPS, sec.RateLimit.Burst, s.logger).Handler)
	}
	if s.cfg.Server.RequestTimeout > 0 {
		mws = append(mws, middleware.Timeout(s.cfg.Server.RequestTimeout, s.logger))
	}
	return s.LoadMiddlewares(mws...)
}

// MountMetrics exposes the Prometheus registry at path. It is mounted
// outside the application middleware.
func (s *Server) MountMetrics(path string) error {
	if s.running.Load() {
		return apperrors.ErrServerRunning
	}
	if path == "" || !strings.HasPrefix(path, "/") {
		return apperrors.NewValidationError(apperrors.KindInvalidPath, "server", path, "metrics path must start with /")
	}

	h := handlers.NewMetricsHandler(s.providers.PrometheusHTTP, s.logger)
	if !h.Enabled() {
		s.logger.Warn("metrics are disabled, endpoint will answer 404", slog.String("path", path))
	}
	s.root.Method(http.MethodGet, path, h)
	return nil
}

func methodNames() []string {
	names := make([]string, len(routing.Methods))
	for i, m := range routing.Methods {
		names[i] = m.String()
	}
	return names
}
