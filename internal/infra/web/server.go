// File: internal/infra/web/server.go
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"vendpay-gateway/internal/infra/logging"
	"vendpay-gateway/internal/usecase"
)

// Server owns the public HTTP surface: machine-facing bill creation, the
// provider webhook, redirect acknowledgments and the ops endpoints.
type Server struct {
	billingUC usecase.BillingUseCase
	confirmUC usecase.ConfirmUseCase
	auth      *AuthManager
	opsKey    string
	log       *zerolog.Logger

	// appCtx outlives individual requests. Webhook confirmation runs on it so
	// a provider-side disconnect cannot abort an in-flight dispatch retry
	// sequence; only process shutdown does.
	appCtx context.Context

	server *http.Server
}

func NewServer(
	port int,
	billingUC usecase.BillingUseCase,
	confirmUC usecase.ConfirmUseCase,
	auth *AuthManager,
	opsKey string,
	appCtx context.Context,
	logger *zerolog.Logger,
) *Server {
	sl := logger.With().Str("component", "WebServer").Logger()
	s := &Server{
		billingUC: billingUC,
		confirmUC: confirmUC,
		auth:      auth,
		opsKey:    opsKey,
		log:       &sl,
		appCtx:    appCtx,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi mux. Exposed separately so tests can drive it with
// httptest without binding a port.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.traceMiddleware)

	r.Post("/create-bill", s.handleCreateBill)
	r.Post("/bill-confirm", s.handleBillConfirm)
	r.Get("/success", s.handleSuccess)
	r.Get("/cancel", s.handleCancel)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/ops/login", s.handleOpsLogin)
	r.Get("/logs", s.opsAuthMiddleware(http.HandlerFunc(s.handleLogs)).ServeHTTP)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	return r
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// traceMiddleware tags each request with a trace id for log correlation.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Trace-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Trace-Id", id)
		next.ServeHTTP(w, r.WithContext(logging.WithTraceID(r.Context(), id)))
	})
}

// opsAuthMiddleware guards the ops surface. It accepts either a minted session
// (cookie or bearer JWT) or the raw ops key as a bearer token, so curl works
// without the login round-trip.
func (s *Server) opsAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opsKey == "" {
			s.log.Error().Msg("ops key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if bearerKey(r) != "" && keyEqual(bearerKey(r), s.opsKey) {
			next.ServeHTTP(w, r)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
