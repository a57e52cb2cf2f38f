// Package server exposes the upload and overlap operations over HTTP.
package server

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/audience-cli/internal/config"
	"github.com/sells-group/audience-cli/internal/ingest"
	"github.com/sells-group/audience-cli/internal/overlap"
)

// Server wires the ingest pipeline and overlap engine to HTTP handlers.
type Server struct {
	pipeline *ingest.Pipeline
	engine   *overlap.Engine
	cfg      config.ServerConfig
	maxBytes int64
}

// New creates a Server. maxUploadMB of 0 defaults to 25.
func New(pipeline *ingest.Pipeline, engine *overlap.Engine, cfg config.ServerConfig, maxUploadMB int) *Server {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &Server{
		pipeline: pipeline,
		engine:   engine,
		cfg:      cfg,
		maxBytes: int64(maxUploadMB) << 20,
	}
}

// Router builds the chi router with middleware, API routes, and the
// optional static UI mount.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		upload := newIPRateLimiter(s.cfg.UploadRPS, s.cfg.UploadBurst)
		r.With(upload.Middleware).Post("/upload", s.handleUpload)
		r.Get("/overlap", s.handleOverlap)
	})

	// Static UI, when the directory exists.
	if dir := s.cfg.StaticDir; dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			r.Handle("/*", http.FileServer(http.Dir(dir)))
		} else {
			zap.L().Debug("static dir not found, skipping mount", zap.String("dir", dir))
		}
	}

	return r
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
		)
	})
}
