package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/JCCTorres/toplist-backend-sub001/internal/domain"
)

// envelope is the wire shape every endpoint answers with.
type envelope struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Message string    `json:"message,omitempty"`
	Error   *errBody  `json:"error,omitempty"`
}

type errBody struct {
	Code    string       `json:"code"`
	Details []fieldError `json:"details,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: true, Data: data}); err != nil {
		log.Error().Err(err).Msg("write response failed")
	}
}

func writeFail(w http.ResponseWriter, status int, code, message string, details []fieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := envelope{Success: false, Message: message, Error: &errBody{Code: code, Details: details}}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Error().Err(err).Msg("write error response failed")
	}
}

// writeErr maps domain errors onto HTTP statuses. Anything unrecognized
// is a 500 with a generic message so internals never leak to clients.
func writeErr(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFail(w, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", fieldDetails(verr))
	case errors.Is(err, domain.ErrInvalidInput):
		writeFail(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		writeFail(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		writeFail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", nil)
	default:
		var rerr *domain.RemoteAPIError
		if errors.As(err, &rerr) {
			writeFail(w, http.StatusBadGateway, "UPSTREAM_ERROR", "upstream service unavailable", nil)
			return
		}
		log.Error().Err(err).Msg("internal error")
		writeFail(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
	}
}

func fieldDetails(verr *domain.ValidationError) []fieldError {
	out := make([]fieldError, 0, len(verr.Fields))
	for f, msg := range verr.Fields {
		out = append(out, fieldError{Field: f, Message: msg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}
