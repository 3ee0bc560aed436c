package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/listenupapp/recipebox-server/internal/errors"
	"github.com/listenupapp/recipebox-server/internal/http/response"
	"github.com/listenupapp/recipebox-server/internal/store"
)

// APIError is a custom error type that implements huma.StatusError.
// It maps domain errors to HTTP responses with consistent structure.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"message" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to use domain errors.
// Call this after creating the huma.API but before registering routes.
//
// Huma reports schema violations as 422; they are answered as 400
// VALIDATION like every other rejected payload.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			var domainErr *domainerrors.Error
			if errors.As(err, &domainErr) {
				apiErr := &APIError{
					status:  domainErr.HTTPStatus(),
					Code:    string(domainErr.Code),
					Message: domainErr.Message,
					Details: domainErr.Details,
				}
				if apiErr.status >= http.StatusInternalServerError {
					apiErr.Message = "internal server error"
					apiErr.Details = nil
				}
				return apiErr
			}

			var storeErr *store.Error
			if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
				return &APIError{
					status:  storeErr.HTTPCode(),
					Code:    string(response.CodeForStatus(storeErr.HTTPCode())),
					Message: storeErr.Message,
				}
			}
		}

		if status == http.StatusUnprocessableEntity || status == http.StatusBadRequest {
			apiErr := &APIError{
				status:  http.StatusBadRequest,
				Code:    string(domainerrors.CodeValidation),
				Message: message,
			}
			if details := schemaDetails(errs); len(details) > 0 {
				apiErr.Details = details
			}
			return apiErr
		}

		if status >= http.StatusInternalServerError {
			message = "internal server error"
		}
		return &APIError{
			status:  status,
			Code:    string(response.CodeForStatus(status)),
			Message: message,
		}
	}
}

// schemaDetails flattens huma error details into field -> message, keyed
// like the validator's details ("body.tags[0].tag_name" -> "tags[0].tag_name").
func schemaDetails(errs []error) map[string]string {
	details := make(map[string]string)
	for _, err := range errs {
		var d *huma.ErrorDetail
		if !errors.As(err, &d) {
			continue
		}
		loc := strings.TrimPrefix(d.Location, "body.")
		if loc == "" || loc == "body" {
			loc = "body"
		}
		details[loc] = d.Message
	}
	return details
}
