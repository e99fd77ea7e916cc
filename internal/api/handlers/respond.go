package handlers

import (
	"encoding/json"
	"net/http"
)

// respond writes the standard response envelope. Every payload carries a
// success flag; failures carry a human-readable message and nothing from
// the inside of the server.
func respond(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondOK(w http.ResponseWriter, extra map[string]interface{}) {
	body := map[string]interface{}{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	respond(w, http.StatusOK, body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
