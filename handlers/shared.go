package handlers

import (
	"encoding/json"
	"net/http"

	"pickem-app-go/logging"
)

// writeJSON serializes a response body with the standard headers
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

// writeError sends a JSON error envelope
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errNotLoaded is the payload served while startup loading is still
// in flight.
func writeNotLoaded(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, "data is still loading, retry shortly")
}
