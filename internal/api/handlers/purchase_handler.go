package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/codecraftlabs/site-server/internal/metrics"
	"github.com/codecraftlabs/site-server/internal/models"
	"github.com/codecraftlabs/site-server/internal/store"
)

type PurchaseHandler struct {
	purchases store.PurchaseStore
}

func NewPurchaseHandler(purchases store.PurchaseStore) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// List handles GET /api/purchases (admin).
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.purchases.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, records)
}

// Create handles POST /api/purchases (public, hit on checkout confirmation).
// All six fields must be present; monetary values are stored exactly as sent,
// the server does not recompute or verify them against catalog prices.
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	for _, f := range []string{"txnId", "student", "items", "subtotal", "taxes", "total"} {
		if _, ok := body[f]; !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s", f))
			return
		}
	}

	var p models.Purchase
	if err := json.Unmarshal(mustJoin(body), &p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	stored, err := h.purchases.Append(r.Context(), p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecordsAppended.WithLabelValues("purchases").Inc()
	respondData(w, http.StatusOK, stored)
}
