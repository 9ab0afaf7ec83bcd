package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/portalkit/portal/internal/api/metrics"
	"github.com/portalkit/portal/internal/api/websession"
	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

func newSessionResponse(s *domain.Session) sessionResponse {
	u, _ := s.CurrentUser()
	return sessionResponse{User: u, LoginTime: s.LoginTime(), ExpiresAt: s.ExpiresAt()}
}

// Login checks the credentials and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      503   {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginInvalid).Inc()
		return respondError(c, domain.ErrInvalidCredentials)
	}

	user, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginInvalid).Inc()
		case errors.Is(err, domain.ErrStoreUnavailable):
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginUnavailable).Inc()
			h.log.Error().Err(err).Msg("login failed: store unavailable")
		default:
			metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginError).Inc()
		}
		return respondError(c, err)
	}

	s := websession.FromContext(c)
	s.SetAuthenticatedUser(*user)
	if err := websession.Save(c, s); err != nil {
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(metrics.LoginSuccess).Inc()
	h.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("login")
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// Logout ends the session. It succeeds for anonymous sessions too.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	s := websession.FromContext(c)
	if u, ok := s.CurrentUser(); ok {
		h.log.Info().Int64("user_id", u.ID).Str("username", u.Username).Msg("logout")
	}
	s.Clear()
	if err := websession.Save(c, s); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the logged-in user and the session window.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	s := websession.FromContext(c)
	if err := s.RequireAuth(); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

// ChangePassword lets the logged-in user rotate their own password.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Security     SessionCookie
// @Param        body  body  changePasswordRequest  true  "Current and new password"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	u, ok := websession.FromContext(c).CurrentUser()
	if !ok {
		return respondError(c, domain.ErrNotAuthenticated)
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.authService.ChangePassword(c.Request().Context(), u.ID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		err = errWrongPassword
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
