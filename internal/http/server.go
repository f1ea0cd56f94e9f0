// Package http exposes the JSON API: transaction and subscription
// CRUD, the profile, dashboard read models and the calculators.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"richr/internal/core"
	"richr/internal/log"
	"richr/internal/materialize"
	"richr/internal/services"
	"richr/internal/store"
)

type Server struct {
	http.Server

	transactions  *services.TransactionService
	subscriptions *services.SubscriptionService
	dashboard     *services.DashboardService
	profiles      store.ProfileStore
	processor     *materialize.Processor

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once

	// now is swappable in tests.
	now func() core.Date
}

// NewServer wires routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, txs *services.TransactionService, subs *services.SubscriptionService, dash *services.DashboardService, profiles store.ProfileStore, processor *materialize.Processor) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: log.Middleware(log.New(log.Config{Component: log.ComponentHTTP}))(mux),
		},
		transactions:  txs,
		subscriptions: subs,
		dashboard:     dash,
		profiles:      profiles,
		processor:     processor,
		rateLimiter:   newRateLimiter(),
		now:           func() core.Date { return core.DateOf(time.Now()) },
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/subscriptions", s.withMiddleware(s.handleCreateSubscription))
	mux.HandleFunc("GET /api/subscriptions", s.withMiddleware(s.handleListSubscriptions))
	mux.HandleFunc("DELETE /api/subscriptions/{id}", s.withMiddleware(s.handleDeleteSubscription))

	mux.HandleFunc("GET /api/profile", s.withMiddleware(s.handleGetProfile))
	mux.HandleFunc("PUT /api/profile", s.withMiddleware(s.handleSaveProfile))

	mux.HandleFunc("GET /api/dashboard/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("GET /api/dashboard/budget", s.withMiddleware(s.handleBudget))
	mux.HandleFunc("GET /api/dashboard/heatmap", s.withMiddleware(s.handleHeatmap))

	mux.HandleFunc("POST /api/calculators/sip", s.withMiddleware(s.handleSIP))
	mux.HandleFunc("POST /api/calculators/loan", s.withMiddleware(s.handleLoan))
	mux.HandleFunc("POST /api/calculators/lumpsum", s.withMiddleware(s.handleLumpSum))

	return s
}

// withMiddleware adds security headers, rate limiting on writes,
// request ids and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := log.FromContext(r.Context()).WithComponent(log.ComponentHTTP).With(
			log.FieldRequestID, requestID,
			log.FieldClientIP, clientIP)
		r = r.WithContext(log.IntoContext(r.Context(), logger))

		logger.Info("Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)

		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			logger.Warn("Rate limit exceeded", log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logCompleted := logger.Info
		if rw.statusCode >= 500 {
			logCompleted = logger.Error
		} else if rw.statusCode >= 400 {
			logCompleted = logger.Warn
		}
		logCompleted("Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}
