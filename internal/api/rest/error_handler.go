package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/phishguard/phishguard-backend/internal/domain/errors"
)

// writeError maps an error to an HTTP status and JSON body.
func writeError(w http.ResponseWriter, err error) {
	status, code, message, details := classifyError(err)
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

func classifyError(err error) (status int, code, message, details string) {
	if err == nil {
		return http.StatusOK, "", "", ""
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		details := ""
		if len(appErr.Details) > 0 {
			details = fmt.Sprintf("%v", appErr.Details)
		}
		return domainErrors.GetStatusCode(err), appErr.Code, appErr.Message, details
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return http.StatusBadRequest, "VALIDATION_ERROR",
			"Request validation failed", validationErrs.Error()
	}

	if errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout, "REQUEST_CANCELED", "Request was canceled", ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, "REQUEST_TIMEOUT", "Request timed out", ""
	}

	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return http.StatusBadRequest, "INVALID_JSON", "Invalid JSON syntax",
			fmt.Sprintf("error at position %d", jsonErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return http.StatusBadRequest, "TYPE_MISMATCH",
			fmt.Sprintf("invalid type for field %q", typeErr.Field), ""
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
