package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"listing-manager/auth"
	"listing-manager/bulk"
	"listing-manager/listing"
	"listing-manager/marketplace"
)

type errorResponse struct {
	Success       bool     `json:"success"`
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
	Details       any      `json:"details,omitempty"`
}

// missingFieldsError is a single listing lacking required values.
type missingFieldsError struct {
	fields []string
}

func (e *missingFieldsError) Error() string { return "missing required fields" }

// HTTPStatus maps an error onto the status code the API answers with.
func HTTPStatus(err error) int {
	var mfe *missingFieldsError
	var se *marketplace.SubmissionError
	var mbe *http.MaxBytesError
	switch {
	case err == nil:
		return http.StatusOK
	case bulk.IsUploadValidation(err), errors.As(err, &mfe):
		return http.StatusBadRequest
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, auth.ErrNoBearer), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrNoCredential),
		errors.Is(err, auth.ErrUnknownUser), errors.Is(err, auth.ErrWrongPassword),
		errors.Is(err, listing.ErrMissingCredential):
		return http.StatusUnauthorized
	case errors.As(err, &se):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "error", err)
	}
}

// writeError answers with HTTPStatus(err) and a JSON body. Missing field
// lists and upstream error details are passed through.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var missing *bulk.MissingFieldsError
	var mfe *missingFieldsError
	var se *marketplace.SubmissionError
	switch {
	case errors.As(err, &missing):
		resp.Error = "CSV is missing required fields"
		resp.MissingFields = missing.MissingFields
	case errors.As(err, &mfe):
		resp.MissingFields = mfe.fields
	case errors.As(err, &se):
		resp.Details = se.RawDetails()
	}
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeJSON(w, status, resp)
}

// requireSession validates the bearer JWT, answering 401 itself when it
// is missing or invalid.
func requireSession(w http.ResponseWriter, r *http.Request, secret string) (*auth.Claims, bool) {
	claims, err := auth.ExtractClaims(r, secret)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return claims, true
}

// requireCredential is requireSession plus a bound marketplace token.
func requireCredential(w http.ResponseWriter, r *http.Request, secret string) (*auth.Claims, bool) {
	claims, ok := requireSession(w, r, secret)
	if !ok {
		return nil, false
	}
	if !claims.HasCredential() {
		writeError(w, auth.ErrNoCredential)
		return nil, false
	}
	return claims, true
}
