// Package response writes JSON responses for the plain chi handlers that sit
// beside the huma operations (uploads and media). Error bodies
// share the {code, message, details} shape of api.APIError.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// Success writes a 200 OK response.
func Success(w http.ResponseWriter, v any, logger *slog.Logger) {
	JSON(w, http.StatusOK, v, logger)
}

// Error writes an error body with the status derived from code.
func Error(w http.ResponseWriter, code domainerrors.Code, message string, logger *slog.Logger) {
	JSON(w, code.HTTPStatus(), ErrorBody{Code: string(code), Message: message}, logger)
}

// BadRequest writes a 400 validation error.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	Error(w, domainerrors.CodeValidation, message, logger)
}

// HandleError writes the response for err. Domain errors keep their code
// and details, store errors map to their HTTP status, anything else is a
// logged 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		if domainErr.HTTPStatus() >= http.StatusInternalServerError {
			if logger != nil {
				logger.Error("Internal error", "error", err)
			}
			Error(w, domainErr.Code, "internal server error", logger)
			return
		}
		JSON(w, domainErr.HTTPStatus(), ErrorBody{
			Code:    string(domainErr.Code),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}, logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
		JSON(w, storeErr.HTTPCode(), ErrorBody{
			Code:    string(CodeForStatus(storeErr.HTTPCode())),
			Message: storeErr.Message,
		}, logger)
		return
	}

	if logger != nil {
		logger.Error("Unhandled error", "error", err)
	}
	Error(w, domainerrors.CodeInternal, "internal server error", logger)
}

// CodeForStatus maps an HTTP status to the domain error code reported for it.
func CodeForStatus(status int) domainerrors.Code {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domainerrors.CodeValidation
	case http.StatusUnauthorized:
		return domainerrors.CodeUnauthorized
	case http.StatusForbidden:
		return domainerrors.CodeForbidden
	case http.StatusNotFound:
		return domainerrors.CodeNotFound
	case http.StatusConflict:
		return domainerrors.CodeConflict
	case http.StatusTooManyRequests:
		return domainerrors.CodeRateLimited
	default:
		return domainerrors.CodeInternal
	}
}
