package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/portalkit/portal/internal/core/domain"
)

// ErrorResponse is the canonical error envelope for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

var (
	errCannotDeleteSelf = errors.New("you cannot delete your own account")
	errCannotDemoteSelf = errors.New("you cannot remove your own admin role")
	errWrongPassword    = errors.New("current password is incorrect")
)

// StatusFor maps the errors handlers know about to a status code and a
// client-safe message. ok is false for anything unexpected.
func StatusFor(err error) (code int, msg string, ok bool) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, domain.ErrInvalidCredentials.Error(), true
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, domain.ErrNotAuthenticated.Error(), true
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ErrForbidden.Error(), true
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, domain.ErrUserNotFound.Error(), true
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, domain.ErrDuplicateUsername.Error(), true
	case errors.Is(err, errCannotDeleteSelf), errors.Is(err, errCannotDemoteSelf):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, domain.ErrInvalidRole), errors.Is(err, errWrongPassword),
		errors.Is(err, domain.ErrPasswordTooLong):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrInvalidDocument):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service temporarily unavailable, please retry", true
	}
	return 0, "", false
}

// respondError renders known errors and hands the rest to echo's error handler.
func respondError(c echo.Context, err error) error {
	if code, msg, ok := StatusFor(err); ok {
		return c.JSON(code, ErrorResponse{Error: msg})
	}
	return err
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
