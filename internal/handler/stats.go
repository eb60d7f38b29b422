package handler // handler package contains aggregation (stats) handlers

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/agrigestion/farm-api/internal/repository"
    "github.com/agrigestion/farm-api/internal/stats"
    "github.com/labstack/echo/v4"
)

// StatsHandler serves the revenue/cost/margin rollups. Rows are fetched
// ownership-filtered through the repositories and summed in the stats
// package; nothing here writes to the store.
type StatsHandler struct {
	Exploitations *repository.ExploitationRepo
	Cultures      *repository.CultureRepo
}

func NewStatsHandler(e *repository.ExploitationRepo, c *repository.CultureRepo) *StatsHandler {
	if e == nil || c == nil {
		panic("nil repository passed to NewStatsHandler")
	}
	return &StatsHandler{Exploitations: e, Cultures: c}
}

// exploitationTotals pairs an exploitation with its rollup for breakdown
// responses.
type exploitationTotals struct {
	ExploitationID uint64  `json:"exploitationId"`
	Name           string  `json:"name"`
	Location       string  `json:"location"`
	stats.Totals
}

// window parses optional start/end query parameters (YYYY-MM-DD or
// RFC3339) into an inclusive date window.
func window(c echo.Context) (stats.Window, error) {
	var w stats.Window
	if s := strings.TrimSpace(c.QueryParam("start")); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return w, err
		}
		w.Start = &t
	}
	if s := strings.TrimSpace(c.QueryParam("end")); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return w, err
		}
		// A plain date means "through the end of that day".
		t = t.Add(24*time.Hour - time.Nanosecond)
		w.End = &t
	}
	return w, nil
}

// CultureStats handles GET /v1/stats/cultures/:id. Admins may target any
// culture; everyone else only their own.
func (h *StatsHandler) CultureStats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	w, err := window(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date window"})
	}
	var cu *repository.Culture
	if isAdmin(c) {
		cu, err = h.Cultures.GetByID(c.Request().Context(), id)
	} else {
		cu, err = h.Cultures.GetByIDAndOwner(c.Request().Context(), id, userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "culture not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cultureId": cu.ID,
		"type":      cu.Type,
		"totals":    stats.ForCulture(cu, w),
	})
}

// ExploitationStats handles GET /v1/stats/exploitations/:id and rolls up
// every culture under the exploitation.
func (h *StatsHandler) ExploitationStats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	w, err := window(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date window"})
	}
	var exp *repository.Exploitation
	if isAdmin(c) {
		exp, err = h.Exploitations.GetByID(c.Request().Context(), id)
	} else {
		exp, err = h.Exploitations.GetByIDAndOwner(c.Request().Context(), id, userID)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "exploitation not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	cultures, err := h.Cultures.ListByExploitation(c.Request().Context(), exp.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"exploitationId": exp.ID,
		"name":           exp.Name,
		"totals":         stats.ForCultures(cultures, w),
	})
}

// Overview handles GET /v1/stats/overview: the caller's entire hierarchy
// summed, with a per-exploitation breakdown.
func (h *StatsHandler) Overview(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	w, err := window(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date window"})
	}
	exps, err := h.Exploitations.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var grand stats.Totals
	breakdown := make([]exploitationTotals, 0, len(exps))
	for _, exp := range exps {
		cultures, err := h.Cultures.ListByExploitation(c.Request().Context(), exp.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		t := stats.ForCultures(cultures, w)
		grand.Add(t)
		breakdown = append(breakdown, exploitationTotals{
			ExploitationID: exp.ID, Name: exp.Name, Location: exp.Location, Totals: t,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"totals":        grand,
		"exploitations": breakdown,
	})
}

// PlatformStats handles GET /v1/admin/stats/platform. Admin only (enforced
// at route registration). The optional ?region= filter is an exact match
// on exploitation location and is applied before summing.
func (h *StatsHandler) PlatformStats(c echo.Context) error {
	w, err := window(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date window"})
	}
	region := strings.TrimSpace(c.QueryParam("region"))
	exps, err := h.Exploitations.ListAll(c.Request().Context(), region)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var grand stats.Totals
	breakdown := make([]exploitationTotals, 0, len(exps))
	for _, exp := range exps {
		cultures, err := h.Cultures.ListByExploitation(c.Request().Context(), exp.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		t := stats.ForCultures(cultures, w)
		grand.Add(t)
		breakdown = append(breakdown, exploitationTotals{
			ExploitationID: exp.ID, Name: exp.Name, Location: exp.Location, Totals: t,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"region":        region,
		"totals":        grand,
		"exploitations": breakdown,
	})
}
