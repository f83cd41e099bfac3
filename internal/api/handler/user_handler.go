package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
)

// UserHandler exposes the admin-only account management endpoints.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Name     string `json:"name"     validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Whatsapp string `json:"whatsapp"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"omitempty,oneof=ADMIN KASIR"`
}

type updateUserRequest struct {
	ID       string `json:"id"       validate:"required"`
	Name     string `json:"name"     validate:"required"`
	Whatsapp string `json:"whatsapp"`
	Password string `json:"password" validate:"omitempty,min=8"`
}

type userListResponse struct {
	Users []*domain.User `json:"users"`
}

// List returns all active accounts, optionally narrowed by role and a
// name/username search term. The full filtered set is returned; the account
// table paginates client-side.
//
// @Summary      List users
// @Tags         user
// @Produce      json
// @Param        role    query  string  false  "ADMIN or KASIR"
// @Param        search  query  string  false  "name/username contains"
// @Success      200  {object}  userListResponse
// @Router       /user/get-all [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.users.List(c.Request().Context(), ports.UserFilter{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users})
}

// Create provisions an account. The new user must change the initial
// password on first login.
//
// @Summary      Create user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New account"
// @Success      201   {object}  domain.User
// @Failure      409   {object}  map[string]string
// @Router       /user/create [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Create(c.Request().Context(), ports.CreateUserInput{
		Name:     req.Name,
		Username: req.Username,
		Whatsapp: req.Whatsapp,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Update edits an account. A blank password leaves the current one in place.
//
// @Summary      Update user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      updateUserRequest  true  "Account changes"
// @Success      200   {object}  domain.User
// @Failure      404   {object}  map[string]string
// @Router       /user/update [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Update(c.Request().Context(), ports.UpdateUserInput{
		ID:       req.ID,
		Name:     req.Name,
		Whatsapp: req.Whatsapp,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete soft-deletes an account. Admins cannot delete themselves.
//
// @Summary      Delete user
// @Tags         user
// @Produce      json
// @Param        id  query  string  true  "User ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /user/delete [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id is required")
	}

	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	if s.ID == id {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete own account")
	}

	if err := h.users.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
