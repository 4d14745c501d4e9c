// internal/api/handlers/webhook.go
package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/autopay/backend/internal/api/httpx"
	"github.com/autopay/backend/internal/metrics"
	"github.com/autopay/backend/internal/middleware"
	"github.com/autopay/backend/internal/monitor"
	"github.com/autopay/backend/internal/services"
	"github.com/autopay/backend/internal/webhook"
)

// maxBodyBytes caps webhook bodies well above any legitimate payload.
const maxBodyBytes = 1 << 20

type WebhookHandler struct {
	payments *services.PaymentService
	tracker  *monitor.Tracker
}

func NewWebhookHandler(payments *services.PaymentService, tracker *monitor.Tracker) *WebhookHandler {
	return &WebhookHandler{payments: payments, tracker: tracker}
}

type webhookAck struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Status  string `json:"status"`
	TxID    string `json:"tx_id"`
}

// Handle verifies, admits and acknowledges one webhook delivery. Both a fresh
// admission and a duplicate answer 200; they differ only in status.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "read_error", "could not read request body", nil)
		return
	}
	if len(body) > maxBodyBytes {
		h.count("malformed_payload", "request body too large", r)
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
		return
	}

	env := webhook.Envelope{
		Body:      body,
		Signature: signatureHeader(r),
		Timestamp: r.Header.Get("X-Timestamp"),
	}

	res, err := h.payments.ProcessWebhook(r.Context(), env)
	if err != nil {
		h.reject(w, r, err)
		return
	}

	if res.Admitted {
		metrics.WebhooksTotal.WithLabelValues("admitted").Inc()
		httpx.WriteJSON(w, http.StatusOK, webhookAck{
			Success: true,
			Message: "Transaction stored successfully",
			Status:  "processed",
			TxID:    res.Record.TxID,
		})
		return
	}

	metrics.WebhooksTotal.WithLabelValues("already_processed").Inc()
	httpx.WriteJSON(w, http.StatusOK, webhookAck{
		Success: true,
		Message: "Transaction was previously processed",
		Status:  "already_processed",
		TxID:    res.Record.TxID,
	})
}

func signatureHeader(r *http.Request) string {
	if v := r.Header.Get("X-Signature"); v != "" {
		return v
	}
	return r.Header.Get("X-Webhook-Signature")
}

// reject maps pipeline errors onto the wire. Signature and timestamp
// rejections stay deliberately vague; payload rejections carry field detail.
func (h *WebhookHandler) reject(w http.ResponseWriter, r *http.Request, err error) {
	var pe *webhook.PayloadError
	switch {
	case errors.Is(err, webhook.ErrInvalidSignature):
		h.count("invalid_signature", err.Error(), r)
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_signature", "invalid webhook signature", nil)
	case errors.Is(err, webhook.ErrTimestampExpired),
		errors.Is(err, webhook.ErrTimestampFuture),
		errors.Is(err, webhook.ErrInvalidTimestamp):
		h.count("invalid_timestamp", err.Error(), r)
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_timestamp", "webhook timestamp outside the accepted window", nil)
	case errors.As(err, &pe):
		h.count("invalid_payload", err.Error(), r)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_payload", "webhook payload failed validation", pe.Fields)
	case errors.Is(err, webhook.ErrMalformedPayload):
		h.count("malformed_payload", err.Error(), r)
		httpx.WriteError(w, http.StatusBadRequest, "malformed_payload", "webhook payload is not valid JSON", nil)
	case errors.Is(err, webhook.ErrStorageUnavailable):
		h.count("storage_error", err.Error(), r)
		slog.Error("webhook admission storage failure", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusServiceUnavailable, "storage_unavailable", "temporarily unable to process webhooks", nil)
	default:
		h.count("internal_error", err.Error(), r)
		slog.Error("webhook admission failed", "err", err, "request_id", middleware.RequestIDFrom(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func (h *WebhookHandler) count(kind, msg string, r *http.Request) {
	metrics.WebhooksTotal.WithLabelValues(kind).Inc()
	if h.tracker != nil {
		h.tracker.Record(kind, msg, middleware.RequestIDFrom(r.Context()))
	}
}
