package api

import (
	"errors"

	"frecks-web/pkg/apperror"
)

// asAppError keeps AppErrors as they are and wraps anything else as a 500 with message.
func asAppError(err error, message string) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Internal(message, err)
}
