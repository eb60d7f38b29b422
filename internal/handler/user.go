package handler // handler package contains profile and admin user management handlers

import (
    "errors"
    "net/http"
    "strings"

    "github.com/agrigestion/farm-api/internal/config"
    "github.com/agrigestion/farm-api/internal/repository"
    "github.com/agrigestion/farm-api/internal/utils"
    "github.com/labstack/echo/v4"
)

// UserHandler serves the self-profile endpoints and the admin-only account
// management endpoints. The admin routes are additionally guarded by
// RequireRole at registration time; the handlers re-check nothing except
// the self-delete rule, which needs the acting user's identity.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

// Me handles GET /v1/users/me and returns the caller's profile.
func (h *UserHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateMe handles PUT /v1/users/me. Only name and email may be changed
// here; role changes go through the admin endpoints.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Users.UpdateProfile(c.Request().Context(), uid, body.Name, body.Email); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, u)
}

// List handles GET /v1/users (admin only) and returns every account
// without password hashes.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": users})
}

// Create handles POST /v1/users (admin only). Unlike public registration
// the admin may assign any role; it defaults to exploitant.
func (h *UserHandler) Create(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Email == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	role := strings.ToLower(strings.TrimSpace(body.Role))
	if role != repository.RoleAdmin && role != repository.RoleExploitant {
		role = repository.RoleExploitant
	}
	uid, err := h.Users.Create(c.Request().Context(), body.Email, body.Password, strings.TrimSpace(body.Name), role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusCreated, u)
}

// Update handles PUT /v1/users/:id (admin only). Partial: absent fields
// stay unchanged; a non-empty password is re-hashed.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name     *string `json:"name"`
		Email    *string `json:"email"`
		Role     *string `json:"role"`
		Password *string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Role != nil {
		r := strings.ToLower(strings.TrimSpace(*body.Role))
		if r != repository.RoleAdmin && r != repository.RoleExploitant {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		body.Role = &r
	}
	var hashPtr *string
	if body.Password != nil && strings.TrimSpace(*body.Password) != "" {
		hash, err := utils.HashPassword(*body.Password, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash failed"})
		}
		hashPtr = &hash
	}
	if err := h.Users.AdminUpdate(c.Request().Context(), id, body.Name, body.Email, body.Role, hashPtr); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateRole handles PUT /v1/users/:id/role (admin only). Kept as a
// dedicated route because the web client's promote/demote buttons call it
// directly.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	role := strings.ToLower(strings.TrimSpace(body.Role))
	if role != repository.RoleAdmin && role != repository.RoleExploitant {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	if err := h.Users.UpdateRole(c.Request().Context(), id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:id (admin only). Deleting the acting
// admin's own account is rejected so the platform cannot lock itself out;
// deleting any other user cascades over the full owned subtree in one
// transaction.
func (h *UserHandler) Delete(c echo.Context) error {
	actingID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == actingID {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cannot delete own account"})
	}
	if err := h.Users.DeleteCascade(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
