// Package handlers provides HTTP handlers for the DocBridge API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docbridge-ai/docbridge/internal/domain"
)

// writeJSON renders a success payload.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError renders the structured error payload shared by all endpoints.
func writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError renders err with the status its type maps to. The
// wrapped cause goes into the detail field, matching what the message
// alone cannot convey.
func writeDomainError(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		writeError(w, http.StatusInternalServerError, "internal error", err.Error())
		return
	}

	detail := ""
	if domainErr.Err != nil {
		detail = domainErr.Err.Error()
	}
	writeError(w, statusFromError(err), domainErr.Message, detail)
}

// errMessage extracts the human-readable message from a domain error.
func errMessage(err error) string {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// statusFromError maps the domain error taxonomy onto HTTP status codes.
// Caller mistakes are 4xx, a down or unready model service is 503, and
// failures of the service itself while relaying are 502/500.
func statusFromError(err error) int {
	errType, ok := domain.TypeOf(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch errType {
	case domain.ErrorTypeFileNotFound:
		return http.StatusNotFound
	case domain.ErrorTypeFileTooLarge,
		domain.ErrorTypeExtraction,
		domain.ErrorTypeEmptyContent,
		domain.ErrorTypeNoContent,
		domain.ErrorTypeValidation:
		return http.StatusBadRequest
	case domain.ErrorTypeServiceUnavailable, domain.ErrorTypeModelNotReady:
		return http.StatusServiceUnavailable
	case domain.ErrorTypeUpstream, domain.ErrorTypeConnection:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
