package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/jmartin/coursehub/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// handleError maps domain errors onto the uniform error response. Anything
// unrecognized is an upstream failure: logged, surfaced as a 500.
func handleError(w http.ResponseWriter, component string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTicketInvalid), errors.Is(err, domain.ErrCodeMismatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotEnrolled):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrCourseNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("ERROR [%s]: %v", component, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeImage accepts raw base64 or a data URL ("data:image/png;base64,...").
func decodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	if idx := strings.Index(s, ";base64,"); idx >= 0 {
		s = s[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(s)
}
