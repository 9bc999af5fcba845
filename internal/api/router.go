/**
 * @description
 * This file sets up the HTTP router for the core-connector. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * any necessary middleware, such as for authentication.
 *
 * The switch-facing endpoints (party lookup, quotes, inbound transfers) are
 * mounted without the auth guard; the switch leg is secured at the transport
 * layer. The DFSP-backend-facing outbound endpoints carry the auth middleware
 * when credentials are configured.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - internal/metrics: Prometheus exposition endpoint.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/paystream/core-connector/internal/metrics"
)

// ConnectorRoutes creates and returns a new router for the core-connector.
func ConnectorRoutes(h *ConnectorHandlers, auth AuthConfig) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Switch-facing endpoints.
	r.Get("/parties/{idType}/{idValue}", h.GetPartiesHandler)
	r.Post("/quoterequests", h.QuoteRequestHandler)
	r.Post("/transfers", h.ReceiveTransferHandler)
	r.Put("/transfers/{transferId}", h.UpdateTransferHandler)

	// DFSP-backend-facing endpoints.
	r.Group(func(r chi.Router) {
		if auth.Enabled() {
			r.Use(AuthMiddleware(auth))
		}
		r.Post("/transfers/outbound", h.SendTransferHandler)
		r.Put("/transfers/outbound/{transferId}", h.UpdateSentTransferHandler)
	})

	return r
}
