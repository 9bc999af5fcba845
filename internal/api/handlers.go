/**
 * @description
 * This file contains the HTTP handlers for the core-connector's API endpoints.
 * Handlers are responsible for parsing incoming requests, calling the
 * appropriate methods on the orchestration service, and writing the HTTP
 * response. They act as the bridge between the web layer and the business
 * logic layer.
 *
 * @dependencies
 * - encoding/json, errors, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - go.uber.org/zap: Structured logging.
 * - internal/app, internal/domain: Service logic, models, and error taxonomy.
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/paystream/core-connector/internal/app"
	"github.com/paystream/core-connector/internal/domain"
	"github.com/paystream/core-connector/pkg/corebankclient"
	"github.com/paystream/core-connector/pkg/momoclient"
	"github.com/paystream/core-connector/pkg/sdkclient"
)

// ConnectorHandlers holds the orchestration service that handlers will use.
type ConnectorHandlers struct {
	service *app.Service
	logger  *zap.Logger
}

// NewConnectorHandlers creates a new instance of ConnectorHandlers.
func NewConnectorHandlers(service *app.Service, logger *zap.Logger) *ConnectorHandlers {
	return &ConnectorHandlers{service: service, logger: logger}
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func (h *ConnectorHandlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.logger.Error("failed to encode response body", zap.Error(err))
		}
	}
}

func (h *ConnectorHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, errorResponse{StatusCode: status, Message: message})
}

// writeServiceError maps the orchestration error taxonomy onto HTTP statuses.
// Caller-side problems map to 4xx; upstream and internal failures map to 5xx.
func (h *ConnectorHandlers) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	h.logger.Warn("request failed",
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrUnsupportedIDType),
		errors.Is(err, domain.ErrUnsupportedCurrency),
		errors.Is(err, domain.ErrInvalidQuote),
		errors.Is(err, domain.ErrTransferNotCompleted),
		errors.Is(err, domain.ErrQuoteNotDefined),
		errors.Is(err, domain.ErrInvalidAccountNumber):
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, domain.ErrAccountBarred),
		errors.Is(err, domain.ErrAccountBlocked),
		errors.Is(err, domain.ErrAccountNotActive):
		h.writeError(w, http.StatusForbidden, err.Error())
		return
	case errors.Is(err, domain.ErrInsufficientBalance):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, domain.ErrNoQuoteReturned):
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var refundErr *domain.RefundFailedError
	if errors.As(err, &refundErr) {
		h.writeError(w, http.StatusInternalServerError, refundErr.Error())
		return
	}

	var momoErr *momoclient.Error
	var bankErr *corebankclient.Error
	var sdkErr *sdkclient.Error
	if errors.As(err, &momoErr) || errors.As(err, &bankErr) || errors.As(err, &sdkErr) {
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	h.writeError(w, http.StatusInternalServerError, err.Error())
}

// GetPartiesHandler handles party lookup requests from the switch.
func (h *ConnectorHandlers) GetPartiesHandler(w http.ResponseWriter, r *http.Request) {
	idType := chi.URLParam(r, "idType")
	idValue := chi.URLParam(r, "idValue")

	party, err := h.service.GetParties(r.Context(), idValue, idType)
	if err != nil {
		h.writeServiceError(w, "get_parties", err)
		return
	}
	h.writeJSON(w, http.StatusOK, party)
}

// QuoteRequestHandler handles quote requests from the switch.
func (h *ConnectorHandlers) QuoteRequestHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quote, err := h.service.QuoteRequest(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, "quote_request", err)
		return
	}
	h.writeJSON(w, http.StatusOK, quote)
}

// ReceiveTransferHandler handles inbound transfer notifications from the
// switch.
func (h *ConnectorHandlers) ReceiveTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.ReceiveTransfer(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, "receive_transfer", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// UpdateTransferHandler handles the patch notification that commits an
// inbound transfer.
func (h *ConnectorHandlers) UpdateTransferHandler(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferId")

	var notification domain.TransferPatchNotification
	if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateTransfer(r.Context(), &notification, transferID); err != nil {
		h.writeServiceError(w, "update_transfer", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"transferId": transferID, "status": "COMMITTED"})
}

// SendTransferHandler handles outbound transfer initiation from the DFSP
// backend.
func (h *ConnectorHandlers) SendTransferHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.OutboundTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.service.SendTransfer(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, "send_transfer", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// UpdateSentTransferHandler handles the continuation of a quoted outbound
// transfer.
func (h *ConnectorHandlers) UpdateSentTransferHandler(w http.ResponseWriter, r *http.Request) {
	transferID := chi.URLParam(r, "transferId")

	var accept domain.TransferAccept
	if err := json.NewDecoder(r.Body).Decode(&accept); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// The path parameter is authoritative.
	accept.TransferID = transferID

	res, err := h.service.UpdateSentTransfer(r.Context(), &accept)
	if err != nil {
		h.writeServiceError(w, "update_sent_transfer", err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
