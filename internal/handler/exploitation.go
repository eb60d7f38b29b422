package handler // handler package contains exploitation (farm) handlers

import (
    "errors"
    "net/http"
    "strings"

    "github.com/agrigestion/farm-api/internal/repository"
    "github.com/labstack/echo/v4"
)

// CreateExploitation handles POST /v1/exploitations and creates a farm for
// the authenticated exploitant.
func (h *FarmHandler) CreateExploitation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	exp := &repository.Exploitation{
		UserID:   userID,
		Name:     name,
		Location: strings.TrimSpace(body.Location),
	}
	if err := h.Exploitations.Create(c.Request().Context(), exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create exploitation"})
	}
	return c.JSON(http.StatusCreated, exp)
}

// ListExploitations handles GET /v1/exploitations and returns the caller's
// farms. Admins may pass ?all=true to list every tenant's farms, with an
// optional ?region= exact-match filter on location.
func (h *FarmHandler) ListExploitations(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if isAdmin(c) && c.QueryParam("all") == "true" {
		items, err := h.Exploitations.ListAll(c.Request().Context(), strings.TrimSpace(c.QueryParam("region")))
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"items": items})
	}
	items, err := h.Exploitations.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetExploitation handles GET /v1/exploitations/:id. A farm that does not
// exist and a farm owned by someone else both return the same 404.
func (h *FarmHandler) GetExploitation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	exp, err := h.Exploitations.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exploitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, exp)
}

// UpdateExploitation handles PUT /v1/exploitations/:id. Partial update:
// absent fields keep their stored value.
func (h *FarmHandler) UpdateExploitation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name     *string `json:"name"`
		Location *string `json:"location"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Name != nil && strings.TrimSpace(*body.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
	}
	exp, err := h.Exploitations.Update(c.Request().Context(), id, userID, body.Name, body.Location)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exploitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, exp)
}

// DeleteExploitation handles DELETE /v1/exploitations/:id. The whole
// subtree (parcelles, cultures, charges, recoltes) goes with it.
func (h *FarmHandler) DeleteExploitation(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Exploitations.DeleteByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exploitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "exploitation deleted"})
}
