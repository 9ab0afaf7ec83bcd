package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/portalkit/portal/internal/api/metrics"
	"github.com/portalkit/portal/internal/api/websession"
	"github.com/portalkit/portal/internal/core/domain"
	"github.com/portalkit/portal/internal/core/ports"
)

// UserHandler serves the admin-only user management endpoints. Routes are
// expected behind middleware.RequireAdmin.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func userIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// List handles GET /v1/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     SessionCookie
// @Success      200  {array}   domain.PublicUser
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /v1/users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /v1/users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  domain.PublicUser
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /v1/users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	user, err := h.authService.CreateUser(c.Request().Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}

	metrics.UsersCreatedTotal.WithLabelValues(string(user.Role)).Inc()
	return c.JSON(http.StatusCreated, user)
}

// Delete handles DELETE /v1/users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Security     SessionCookie
// @Param        id   path  int  true  "User id"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /v1/users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if me, _ := websession.FromContext(c).CurrentUser(); me.ID == id {
		return respondError(c, errCannotDeleteSelf)
	}

	deleted, err := h.authService.DeleteUser(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	if !deleted {
		return respondError(c, domain.ErrUserNotFound)
	}

	metrics.UsersDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword handles PUT /v1/users/:id/password.
//
// @Summary      Reset a user's password
// @Tags         users
// @Accept       json
// @Security     SessionCookie
// @Param        id    path  int                   true  "User id"
// @Param        body  body  resetPasswordRequest  true  "New password"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /v1/users/{id}/password [put]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), id, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateRole handles PUT /v1/users/:id/role. The new role applies from the
// user's next login.
//
// @Summary      Change a user's role
// @Tags         users
// @Accept       json
// @Security     SessionCookie
// @Param        id    path  int                true  "User id"
// @Param        body  body  updateRoleRequest  true  "New role"
// @Success      204
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /v1/users/{id}/role [put]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, ok := userIDParam(c)
	if !ok {
		return badRequest(c, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, err.Error())
	}

	role := domain.Role(req.Role)
	if me, _ := websession.FromContext(c).CurrentUser(); me.ID == id && role != domain.RoleAdmin {
		return respondError(c, errCannotDemoteSelf)
	}

	if err := h.authService.UpdateRole(c.Request().Context(), id, role); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
