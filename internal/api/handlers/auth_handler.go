package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/codecraftlabs/site-server/internal/auth"
)

type AuthHandler struct {
	auth *auth.Authenticator
}

func NewAuthHandler(a *auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: a}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  map[string]string{"username": req.Username, "role": "admin"},
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so there is
// nothing to revoke server-side; the client discards its copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if _, err := h.auth.Verify(token); err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"valid": true})
}
