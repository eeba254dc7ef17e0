package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	internal_errors "github.com/tftboard/tftboard/internal/errors"
	"github.com/tftboard/tftboard/internal/logger"
)

// WriteErrorAndStatusCode writes the error as {"message": ...} so API
// clients can surface it verbatim. Opaque errors become a generic 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	message := "Internal server error"
	status := http.StatusInternalServerError
	if e, ok := err.(*internal_errors.ErrorWithStatusCode); ok {
		message, status = e.Message, e.StatusCode
	} else if ve, ok := err.(*internal_errors.ValidationError); ok {
		message, status = ve.Message, http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"message": message}); err != nil {
		logger.Log.Error("failed to encode error response", "error", err)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeValidate parses a JSON body and checks its validate tags before any
// network round-trip is spent on it.
func DecodeValidate(r io.Reader, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("body validation failed", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing", StatusCode: http.StatusBadRequest}
	}
	return nil
}
