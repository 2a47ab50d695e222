package errorhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/staybook/booking-api/internal/pkg/logger"
	"github.com/staybook/booking-api/internal/pkg/response"
)

// HandleError logs err with the request id and sends a generic error body.
// The underlying error is never echoed to the client.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("error_code", code).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg(message)

	response.Error(w, status, code, message)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Warn().
		Str("request_id", logger.RequestID(ctx)).
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
}
