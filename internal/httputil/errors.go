package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON envelope for every non-2xx response. Detail is
// safe to show to the end user; Fields is populated for validation
// failures only, keyed by the offending form field.
type ErrorBody struct {
	Detail    string            `json:"detail"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, requestID string, statusCode int, detail string) {
	WriteJSON(w, statusCode, ErrorBody{Detail: detail, RequestID: requestID})
}

// WriteValidationError reports missing/invalid form fields so the client
// can surface them inline rather than as a toast.
func WriteValidationError(w http.ResponseWriter, requestID string, fields map[string]string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{
		Detail:    "invalid request",
		Fields:    fields,
		RequestID: requestID,
	})
}

// WriteQuotaExceededError carries the distinct 429 the client keys its
// "come back tomorrow" message on.
func WriteQuotaExceededError(w http.ResponseWriter, requestID, detail string) {
	WriteError(w, requestID, http.StatusTooManyRequests, detail)
}

func WriteNotFoundError(w http.ResponseWriter, requestID, detail string) {
	WriteError(w, requestID, http.StatusNotFound, detail)
}

func WriteBadRequestError(w http.ResponseWriter, requestID, detail string) {
	WriteError(w, requestID, http.StatusBadRequest, detail)
}

func WriteInternalError(w http.ResponseWriter, requestID, detail string) {
	WriteError(w, requestID, http.StatusInternalServerError, detail)
}
