package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lvillar/carteira"
)

const (
	codeBadRequest  = "bad_request"
	codeValidation  = "validation_error"
	codeInvalidMode = "invalid_mode"
	codeUnsafe      = "unsafe_source"
	codeFetch       = "fetch_failed"
	codeInternal    = "internal_error"
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // headers already sent
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	writeJSON(w, status, errorResponse{Error: code, ErrorDescription: description})
}

// writeDomainError maps the package sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, carteira.ErrNoMembers), errors.Is(err, carteira.ErrNoSheets):
		writeError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, carteira.ErrInvalidMode):
		writeError(w, http.StatusBadRequest, codeInvalidMode, err.Error())
	case errors.Is(err, carteira.ErrUnsafeSource):
		writeError(w, http.StatusBadRequest, codeUnsafe, err.Error())
	case errors.Is(err, carteira.ErrFetch):
		writeError(w, http.StatusBadGateway, codeFetch, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
