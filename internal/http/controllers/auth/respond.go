package auth

import (
	"encoding/json"
	"net/http"

	svc "github.com/dropDatabas3/ssobridge/internal/http/services/auth"
)

// Response helpers. Auth failures are deliberately opaque: detail goes to
// the logs, never to the end user.

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_request", "detail": detail})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
}

func writeAuthFailed(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication_failed"})
}

func writeInternal(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal_error"})
}

func writeLoginOK(w http.ResponseWriter, userID string) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "user_id": userID})
}

func writeProviders(w http.ResponseWriter, providers []svc.ProviderInfo) {
	writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
}
