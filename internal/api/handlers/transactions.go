// internal/api/handlers/transactions.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autopay/backend/internal/api/httpx"
	"github.com/autopay/backend/internal/services"
)

type TransactionHandler struct {
	payments *services.PaymentService
}

func NewTransactionHandler(payments *services.PaymentService) *TransactionHandler {
	return &TransactionHandler{payments: payments}
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	txID := chi.URLParam(r, "tx_id")

	detail, found, err := h.payments.GetTransaction(r.Context(), txID)
	if err != nil {
		httpx.WriteError(w, http.StatusServiceUnavailable, "storage_unavailable", "temporarily unable to read transactions", nil)
		return
	}
	if !found {
		httpx.WriteError(w, http.StatusNotFound, "not_found", "transaction not found", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, detail)
}
