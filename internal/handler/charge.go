package handler // handler package contains charge (expense) handlers

import (
    "errors"
    "net/http"
    "strings"

    "github.com/agrigestion/farm-api/internal/repository"
    "github.com/labstack/echo/v4"
)

// CreateCharge handles POST /v1/charges. The parent culture's ownership
// chain must resolve to the caller. Amount accepts a number or a numeric
// string; anything else is a 400.
func (h *FarmHandler) CreateCharge(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Type      string `json:"type"`
		Amount    Float  `json:"amount"`
		Date      string `json:"date"`
		CultureID uint64 `json:"cultureId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	typ := strings.TrimSpace(body.Type)
	if typ == "" || body.CultureID == 0 || strings.TrimSpace(body.Date) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type, amount, date and cultureId are required"})
	}
	if !body.Amount.Valid || body.Amount.Value <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive number"})
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
	ch := &repository.Charge{
		CultureID: body.CultureID,
		Type:      typ,
		Amount:    body.Amount.Value,
		Date:      date,
	}
	if err := h.Charges.Create(c.Request().Context(), ch); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create charge"})
	}
	return c.JSON(http.StatusCreated, ch)
}

// ListCharges handles GET /v1/charges with an optional ?culture_id= filter.
func (h *FarmHandler) ListCharges(c echo.Context) error {
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
	items, err := h.Charges.ListByOwner(c.Request().Context(), userID, cultureID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetCharge handles GET /v1/charges/:id.
func (h *FarmHandler) GetCharge(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ch, err := h.Charges.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "charge not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, ch)
}

// UpdateCharge handles PUT /v1/charges/:id. Partial update; ownership is
// re-checked before applying.
func (h *FarmHandler) UpdateCharge(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Type   *string `json:"type"`
		Amount Float   `json:"amount"`
		Date   *string `json:"date"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Amount.Valid && body.Amount.Value <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount must be a positive number"})
	}
	date, err := optionalDate(body.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	}
	ch, err := h.Charges.Update(c.Request().Context(), id, userID, body.Type, body.Amount.ptr(), date)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "charge not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, ch)
}

// DeleteCharge handles DELETE /v1/charges/:id.
func (h *FarmHandler) DeleteCharge(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Charges.DeleteByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "charge not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "charge deleted"})
}
