package server

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// successResponse is the envelope for successful API calls
type successResponse struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// errorResponse is the envelope for failed API calls
type errorResponse struct {
	Error    string   `json:"error"`
	Message  string   `json:"message,omitempty"`
	Required []string `json:"required,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("Failed to write JSON response")
	}
}

func respondWithData(w http.ResponseWriter, status int, data any, message string) {
	writeJSON(w, status, successResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondWithList(w http.ResponseWriter, data any, count int) {
	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Count:   &count,
		Data:    data,
	})
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
