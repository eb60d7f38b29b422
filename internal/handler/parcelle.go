package handler // handler package contains parcelle (plot) handlers

import (
    "errors"
    "net/http"
    "strings"

    "github.com/agrigestion/farm-api/internal/repository"
    "github.com/labstack/echo/v4"
)

// CreateParcelle handles POST /v1/parcelles. The parent exploitation must
// belong to the caller; a foreign parent yields the same 404 an absent one
// does.
func (h *FarmHandler) CreateParcelle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name           string `json:"name"`
		Area           Float  `json:"area"`
		ExploitationID uint64 `json:"exploitationId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.ExploitationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and exploitationId are required"})
	}
	if !body.Area.Valid || body.Area.Value <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "area must be a positive number"})
	}
	if _, err := h.Exploitations.GetByIDAndOwner(c.Request().Context(), body.ExploitationID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exploitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	p := &repository.Parcelle{
		ExploitationID: body.ExploitationID,
		Name:           name,
		Area:           body.Area.Value,
	}
	if err := h.Parcelles.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create parcelle"})
	}
	return c.JSON(http.StatusCreated, p)
}

// ListParcelles handles GET /v1/parcelles with an optional
// ?exploitation_id= filter. The filter target is verified owned first so
// the route can never enumerate someone else's farm.
func (h *FarmHandler) ListParcelles(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	expID, err := queryID(c, "exploitation_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exploitation_id"})
	}
	if expID != 0 {
		if _, err := h.Exploitations.GetByIDAndOwner(c.Request().Context(), expID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "exploitation not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}
	items, err := h.Parcelles.ListByOwner(c.Request().Context(), userID, expID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetParcelle handles GET /v1/parcelles/:id.
func (h *FarmHandler) GetParcelle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	p, err := h.Parcelles.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "parcelle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateParcelle handles PUT /v1/parcelles/:id. Partial update; area, when
// present, must be a positive number.
func (h *FarmHandler) UpdateParcelle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Name *string `json:"name"`
		Area Float   `json:"area"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Area.Valid && body.Area.Value <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "area must be a positive number"})
	}
	p, err := h.Parcelles.Update(c.Request().Context(), id, userID, body.Name, body.Area.ptr())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "parcelle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, p)
}

// DeleteParcelle handles DELETE /v1/parcelles/:id and cascades over the
// parcelle's cultures, charges and recoltes.
func (h *FarmHandler) DeleteParcelle(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Parcelles.DeleteByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "parcelle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "parcelle deleted"})
}
