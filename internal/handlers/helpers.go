package handlers

import (
	"encoding/json"
	"net/http"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the API error envelope used by the mobile client.
func respondError(w http.ResponseWriter, status int, mensaje string) {
	respondJSON(w, status, map[string]any{"error": true, "mensaje": mensaje})
}
