package server

import (
	"net/http"

	"projectmanager/internal/domain/errors"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorStatuses is checked in order; the first sentinel matched by
// errors.Is decides the status and the message shown to the client.
var errorStatuses = []struct {
	err    error
	status int
}{
	{errors.ErrInvalidInput, http.StatusBadRequest},
	{errors.ErrMissingField, http.StatusBadRequest},
	{errors.ErrInvalidIDFormat, http.StatusBadRequest},
	{errors.ErrEmptyField, http.StatusBadRequest},
	{errors.ErrFieldTooLong, http.StatusBadRequest},
	{errors.ErrInvalidEmail, http.StatusBadRequest},
	{errors.ErrInvalidRole, http.StatusBadRequest},
	{errors.ErrPasswordTooShort, http.StatusBadRequest},
	{errors.ErrPasswordTooLong, http.StatusBadRequest},
	{errors.ErrPasswordMismatch, http.StatusBadRequest},
	{errors.ErrEmailAlreadyExists, http.StatusBadRequest},
	{errors.ErrInvalidGzipRequest, http.StatusBadRequest},

	{errors.ErrTokenRequired, http.StatusUnauthorized},
	{errors.ErrTokenExpired, http.StatusUnauthorized},
	{errors.ErrInvalidToken, http.StatusUnauthorized},
	{errors.ErrAuthentication, http.StatusUnauthorized},
	{errors.ErrInvalidCredentials, http.StatusUnauthorized},

	{errors.ErrForbidden, http.StatusForbidden},

	{errors.ErrUserNotFound, http.StatusNotFound},
	{errors.ErrProjectNotFound, http.StatusNotFound},
}

// translateError maps err to an HTTP status and client-facing message.
// Unknown errors become a 500 with a generic message.
func translateError(err error) (int, string) {
	var missing *errors.MissingFieldError
	if errors.As(err, &missing) {
		return http.StatusBadRequest, missing.Error()
	}
	var field *errors.FieldError
	if errors.As(err, &field) {
		status, _ := translateError(field.Err)
		return status, field.Error()
	}

	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, errors.ErrInternalServer.Error()
}

// abortWithError writes the error envelope and stops the handler chain.
// The original error is attached to the context for the request logger.
func abortWithError(ctx *gin.Context, err error) {
	status, msg := translateError(err)
	_ = ctx.Error(err)
	ctx.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
