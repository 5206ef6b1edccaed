package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fileswarm/fileswarm/internal/logger"
	"github.com/fileswarm/fileswarm/pkg/api/auth"
	"github.com/fileswarm/fileswarm/pkg/configsource"
	"github.com/fileswarm/fileswarm/pkg/scheduler"
	"github.com/fileswarm/fileswarm/pkg/userservice"
)

// Server is the management HTTP server described by SPEC_FULL.md §9.
type Server struct {
	server       *http.Server
	jwtService   *auth.Service
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates a Server in a stopped state; call Start to begin
// serving. The JWT secret must be configured via config.JWT.Secret or
// the FILESWARM_API_JWT_SECRET environment variable.
func NewServer(config Config, s *scheduler.Scheduler, assigner userservice.Assigner, source configsource.Source) (*Server, error) {
	config.applyDefaults()

	secret := config.GetJWTSecret()
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 characters; set via %s env var or config", EnvJWTSecret)
	}

	jwtService, err := auth.New(auth.Config{
		Secret:              secret,
		Issuer:              config.JWT.Issuer,
		AccessTokenDuration: config.JWT.AccessTokenDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	router := NewRouter(s, assigner, source, jwtService, time.Now())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{server: httpServer, jwtService: jwtService, config: config}, nil
}

// JWTService exposes the server's token service, for a
// `fileswarmd token mint` subcommand to mint operator tokens without
// the server itself exposing a login endpoint.
func (s *Server) JWTService() *auth.Service {
	return s.jwtService
}

// Start serves the management API until ctx is cancelled, then
// drains in flight requests with a 5 second grace period.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info("management API listening", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("management API shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("management API failed: %w", err)
	}
}

// Stop gracefully shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		logger.Debug("management API shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("management API shutdown error: %w", err)
			logger.Error("management API shutdown error", "error", err)
		} else {
			logger.Info("management API stopped gracefully")
		}
	})
	return shutdownErr
}

// Port returns the TCP port the server is bound to.
func (s *Server) Port() int {
	return s.config.Port
}
