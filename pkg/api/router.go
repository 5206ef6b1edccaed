package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fileswarm/fileswarm/internal/cli/health"
	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/pkg/api/auth"
	"github.com/fileswarm/fileswarm/pkg/api/handlers"
	apimiddleware "github.com/fileswarm/fileswarm/pkg/api/middleware"
	"github.com/fileswarm/fileswarm/pkg/configsource"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// NewRouter builds the management HTTP surface described by
// SPEC_FULL.md §9: scheduler status and peer-facing reads are open to
// any authenticated caller, operator writes (group reassignment,
// config reload) require an admin token.
//
// Routes:
//   - GET  /healthz                               - liveness probe, unauthenticated
//   - GET  /v1/status                              - global and per-group accounting
//   - GET  /v1/peers/{username}/availability       - wraps IsSlotAvailable
//   - GET  /v1/peers/{username}/position           - wraps the 1-arg EstimatePosition
//   - GET  /v1/peers/{username}/position/{filename} - wraps the 2-arg EstimatePosition
//   - POST /v1/peers/{username}/group              - admin only, operator override
//   - POST /v1/config/reload                       - admin only, forces a Snapshot+Configure
//
// startedAt is optional (defaults to the call time) and feeds the
// uptime reported by /healthz; tests that don't care about uptime can
// omit it.
func NewRouter(s *scheduler.Scheduler, assigner userservice.Assigner, source configsource.Source, jwtService *auth.Service, startedAt ...time.Time) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(otelhttp.NewMiddleware("fileswarm-api"))

	start := time.Now()
	if len(startedAt) > 0 {
		start = startedAt[0]
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		uptime := time.Since(start)
		resp := health.Response{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		resp.Data.Service = "fileswarmd"
		resp.Data.StartedAt = start.UTC().Format(time.RFC3339)
		resp.Data.Uptime = uptime.String()
		resp.Data.UptimeSec = int64(uptime.Seconds())

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	})

	statusHandler := handlers.NewStatusHandler(s)
	peerHandler := handlers.NewPeerHandler(s, assigner)
	configHandler := handlers.NewConfigHandler(source, s)

	r.Route("/v1", func(r chi.Router) {
		r.Use(apimiddleware.JWTAuth(jwtService))

		r.Get("/status", statusHandler.Get)

		r.Route("/peers/{username}", func(r chi.Router) {
			r.Get("/availability", peerHandler.Availability)
			r.Get("/position", peerHandler.Position)
			r.Get("/position/{filename}", peerHandler.Position)

			r.Group(func(r chi.Router) {
				r.Use(apimiddleware.RequireAdmin())
				r.Post("/group", peerHandler.AssignGroup)
			})
		})

		r.Route("/config", func(r chi.Router) {
			r.Use(apimiddleware.RequireAdmin())
			r.Post("/reload", configHandler.Reload)
		})
	})

	return r
}

func isHealthPath(path string) bool {
	return path == "/healthz"
}

// requestLogger logs request start at debug and completion at info
// (debug for health checks), mirroring the teacher's middleware.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		logger.Debug("API request started",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}
		if isHealthPath(r.URL.Path) || strings.HasPrefix(r.URL.Path, "/healthz") {
			logger.Debug("API request completed", logArgs...)
		} else {
			logger.Info("API request completed", logArgs...)
		}
	})
}
