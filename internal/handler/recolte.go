package handler // handler package contains recolte (harvest/sale) handlers

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/agrigestion/farm-api/internal/repository"
    "github.com/labstack/echo/v4"
)

// optionalDate parses a pointer date field from a PUT body. A nil pointer
// means the field was absent (leave the column unchanged).
func optionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateRecolte handles POST /v1/recoltes. Quantity and price accept
// numbers or numeric strings. Revenue is never stored; it is always
// computed as quantity × price at read time.
func (h *FarmHandler) CreateRecolte(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Quantity  Float  `json:"quantity"`
		Price     Float  `json:"price"`
		Date      string `json:"date"`
		CultureID uint64 `json:"cultureId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.CultureID == 0 || strings.TrimSpace(body.Date) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity, price, date and cultureId are required"})
	}
	if !body.Quantity.Valid || !body.Price.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity and price must be numeric"})
	}
	date, err := parseDate(body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	if owner, err := h.Cultures.OwnerOf(c.Request().Context(), body.CultureID); err != nil || owner != userID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "culture not found"})
	}
	rc := &repository.Recolte{
		CultureID: body.CultureID,
		Quantity:  body.Quantity.Value,
		Price:     body.Price.Value,
		Date:      date,
	}
	if err := h.Recoltes.Create(c.Request().Context(), rc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create recolte"})
	}
	return c.JSON(http.StatusCreated, rc)
}

// ListRecoltes handles GET /v1/recoltes with an optional ?culture_id= filter.
func (h *FarmHandler) ListRecoltes(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cultureID, err := queryID(c, "culture_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid culture_id"})
	}
	if cultureID != 0 {
		if owner, err := h.Cultures.OwnerOf(c.Request().Context(), cultureID); err != nil || owner != userID {
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
			}
			return c.JSON(http.StatusNotFound, echo.Map{"error": "culture not found"})
		}
	}
	items, err := h.Recoltes.ListByOwner(c.Request().Context(), userID, cultureID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRecolte handles GET /v1/recoltes/:id.
func (h *FarmHandler) GetRecolte(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rc, err := h.Recoltes.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recolte not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, rc)
}

// UpdateRecolte handles PUT /v1/recoltes/:id. Partial update; ownership is
// re-checked before applying.
func (h *FarmHandler) UpdateRecolte(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Quantity Float   `json:"quantity"`
		Price    Float   `json:"price"`
		Date     *string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, err := optionalDate(body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	rc, err := h.Recoltes.Update(c.Request().Context(), id, userID, body.Quantity.ptr(), body.Price.ptr(), date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recolte not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, rc)
}

// DeleteRecolte handles DELETE /v1/recoltes/:id.
func (h *FarmHandler) DeleteRecolte(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Recoltes.DeleteByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "recolte not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "recolte deleted"})
}
