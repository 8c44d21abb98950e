// Package api is the HTTP front-end for reviewchain
//
// @title           reviewchain REST API
// @version         1.0.0
// @description     Submit and list restaurant reviews stored by the on-chain review program.
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in              header
// @name            X-API-Key
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Router builds the HTTP handler with all routes configured
func (s *Server) Router(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.metrics.InstrumentHandler("GET", "/api/v1/health", s.handleHealth))

		r.Get("/reviews", s.metrics.InstrumentHandler("GET", "/api/v1/reviews", s.handleListReviews))
		r.Get("/reviews/{author}/{title}",
			s.metrics.InstrumentHandler("GET", "/api/v1/reviews/{author}/{title}", s.handleGetReview))

		// Writes spend wallet funds and are guarded by the API key
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMiddleware(s.config.APIKey, s.metrics))
			r.Post("/reviews", s.metrics.InstrumentHandler("POST", "/api/v1/reviews", s.handleSubmitReview))
			r.Put("/reviews", s.metrics.InstrumentHandler("PUT", "/api/v1/reviews", s.handleUpdateReview))
		})
	})

	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down
func (s *Server) Serve(ctx context.Context, gatherer prometheus.Gatherer) error {
	addr := net.JoinHostPort(s.config.Bind, strconv.Itoa(s.config.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("starting reviewchain API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	s.logger.Info().Msg("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
