package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codecraftlabs/site-server/internal/metrics"
	"github.com/codecraftlabs/site-server/internal/models"
	"github.com/codecraftlabs/site-server/internal/service"
	"github.com/codecraftlabs/site-server/internal/store"
)

type ReferralHandler struct {
	service *service.ReferralService
}

func NewReferralHandler(svc *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{service: svc}
}

// List handles GET /api/referrals (admin).
func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.service.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, codes)
}

// Create handles POST /api/referrals (admin).
func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	for _, f := range []string{"agentName", "email", "code", "discountPercent"} {
		if _, ok := body[f]; !ok {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s", f))
			return
		}
	}

	var rc models.ReferralCode
	if err := json.Unmarshal(mustJoin(body), &rc); err != nil {
		respondError(w, http.StatusBadRequest, "discountPercent must be a number")
		return
	}

	created, err := h.service.Create(r.Context(), rc)
	switch {
	case errors.Is(err, service.ErrInvalidDiscount):
		respondError(w, http.StatusBadRequest, "discountPercent must be 1-100")
		return
	case errors.Is(err, store.ErrDuplicateCode):
		respondError(w, http.StatusConflict, "Referral code already exists")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	metrics.RecordsAppended.WithLabelValues("referrals").Inc()
	respondData(w, http.StatusOK, created)
}

// Delete handles DELETE /api/referrals/{code} (admin). Matching is
// case-insensitive; no match leaves the collection unchanged.
func (h *ReferralHandler) Delete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	removed, err := h.service.Delete(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Referral not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondData(w, http.StatusOK, removed)
}

// Validate handles POST /api/referrals/validate (public). Unknown or inactive
// codes answer valid=false with a 200, not an error.
func (h *ReferralHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		respondError(w, http.StatusBadRequest, "Missing code")
		return
	}

	result, err := h.service.Validate(r.Context(), req.Code)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	outcome := "invalid"
	if result.Valid {
		outcome = "valid"
	}
	metrics.ReferralValidations.WithLabelValues(outcome).Inc()
	respondData(w, http.StatusOK, result)
}

// mustJoin re-assembles a decoded field map into a JSON object so it can be
// unmarshalled into a typed struct after the presence checks.
func mustJoin(fields map[string]json.RawMessage) []byte {
	raw, _ := json.Marshal(fields)
	return raw
}
