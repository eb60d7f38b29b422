package handler // handler package contains culture (crop cycle) handlers

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    q "github.com/agrigestion/farm-api/internal/queue"
    "github.com/agrigestion/farm-api/internal/repository"
    queuepub "github.com/agrigestion/farm-api/internal/service"
    "github.com/labstack/echo/v4"
)

// validStatus reports whether s is one of the culture lifecycle states.
func validStatus(s string) bool {
	return s == repository.StatusActive || s == repository.StatusRecoltee || s == repository.StatusAbandonnee
}

// CreateCulture handles POST /v1/cultures. The parent parcelle must belong
// to the caller. New cultures start Active and unvalidated regardless of
// the body.
func (h *FarmHandler) CreateCulture(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Type       string `json:"type"`
		SowingDate string `json:"sowingDate"`
		ParcelleID uint64 `json:"parcelleId"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	typ := strings.TrimSpace(body.Type)
	if typ == "" || body.ParcelleID == 0 || strings.TrimSpace(body.SowingDate) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type, sowingDate and parcelleId are required"})
	}
	sowing, err := parseDate(body.SowingDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sowingDate"})
	}
	if _, err := h.Parcelles.GetByIDAndOwner(c.Request().Context(), body.ParcelleID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "parcelle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	cu := &repository.Culture{
		ParcelleID: body.ParcelleID,
		Type:       typ,
		SowingDate: sowing,
	}
	if err := h.Cultures.Create(c.Request().Context(), cu); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create culture"})
	}
	return c.JSON(http.StatusCreated, cu)
}

// ListCultures handles GET /v1/cultures with an optional ?parcelle_id=
// filter. Child charges and recoltes are included so dashboards can
// compute totals without extra requests.
func (h *FarmHandler) ListCultures(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	parcelleID, err := queryID(c, "parcelle_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid parcelle_id"})
	}
	if parcelleID != 0 {
		if _, err := h.Parcelles.GetByIDAndOwner(c.Request().Context(), parcelleID, userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "parcelle not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
	}
	items, err := h.Cultures.ListByOwner(c.Request().Context(), userID, parcelleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetCulture handles GET /v1/cultures/:id.
func (h *FarmHandler) GetCulture(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	cu, err := h.Cultures.GetByIDAndOwner(c.Request().Context(), id, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "culture not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, cu)
}

// UpdateCulture handles PUT /v1/cultures/:id. Exploitants may update their
// own cultures' type, sowingDate and status; an isValidated field in their
// body is silently dropped. Admins may update any culture and are the only
// callers whose isValidated is applied — that is the validation workflow,
// and a false→true flip publishes a culture.validated event for the audit
// trail.
func (h *FarmHandler) UpdateCulture(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Type        *string `json:"type"`
		SowingDate  *string `json:"sowingDate"`
		Status      *string `json:"status"`
		IsValidated *bool   `json:"isValidated"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status != nil && !validStatus(*body.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	var sowing *time.Time
	if body.SowingDate != nil {
		t, err := parseDate(*body.SowingDate)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sowingDate"})
		}
		sowing = &t
	}

	admin := isAdmin(c)
	var before *repository.Culture
	if admin {
		// Admins reach any tenant's culture for the validation workflow.
		before, err = h.Cultures.GetByID(c.Request().Context(), id)
	} else {
		before, err = h.Cultures.GetByIDAndOwner(c.Request().Context(), id, userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "culture not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}

	validated := body.IsValidated
	if !admin {
		validated = nil // exploitant bodies can never flip validation
	}
	cu, err := h.Cultures.Update(c.Request().Context(), id, body.Type, sowing, body.Status, validated)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}

	if admin && !before.IsValidated && cu.IsValidated {
		ev := q.CultureValidatedEvent{
			CultureID:   cu.ID,
			ParcelleID:  cu.ParcelleID,
			Type:        cu.Type,
			Status:      cu.Status,
			ValidatedBy: userID,
			ValidatedAt: time.Now().UTC().Format(time.RFC3339),
		}
		// Best effort: a broker outage must not fail the update.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = queuepub.PublishCultureValidated(ctx, ev)
		}()
	}
	return c.JSON(http.StatusOK, cu)
}

// DeleteCulture handles DELETE /v1/cultures/:id and cascades over the
// culture's charges and recoltes.
func (h *FarmHandler) DeleteCulture(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Cultures.DeleteByIDAndOwner(c.Request().Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "culture not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "culture deleted"})
}
