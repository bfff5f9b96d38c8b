package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondData wraps a payload in the {success, data} envelope the frontend
// expects.
func respondData(w http.ResponseWriter, code int, data interface{}) {
	writeJSON(w, code, map[string]interface{}{"success": true, "data": data})
}

// respondError sends the {success:false, error} envelope. The message is
// passed to the UI unchanged.
func respondError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]interface{}{"success": false, "error": msg})
}
