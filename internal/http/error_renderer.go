package httpx

import (
	"errors"
	"net/http"

	apperrors "github.com/slushhq/agent-ops/internal/errors"
)

// statusForCode maps application error codes to HTTP statuses. Validation
// failures render as 422 so clients can tell a rejected request body from a
// malformed one (400).
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeValidation, apperrors.ErrCodeDeprecatedType, apperrors.ErrCodeFileRejected:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RenderError writes the JSON error response for a service-layer failure.
// Non-application errors collapse to a generic 500 so driver and transport
// details never reach a client.
func RenderError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: string(apperrors.ErrCodeInternal),
			Err:     errors.New("internal server error"),
		})
		return
	}

	body := map[string]string{
		"error":   string(appErr.Code),
		"message": appErr.Message,
	}
	if appErr.Field != "" {
		body["field"] = appErr.Field
	}
	WriteJSON(w, statusForCode(appErr.Code), body)
}
