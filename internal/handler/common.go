package handler // handler defines http handlers

import (
    "errors"  // errors provides sentinel values used in getUserID
    "strconv" // strconv converts strings to numeric types
    "strings" // strings provides trimming helpers
    "time"    // time parses date inputs

    "github.com/agrigestion/farm-api/internal/repository" // repository holds data access layer
    "github.com/labstack/echo/v4"                         // echo defines request context types
)

// FarmHandler bundles the repositories behind the ownership-scoped CRUD
// endpoints (exploitations, parcelles, cultures, charges, recoltes).
type FarmHandler struct {
    Exploitations *repository.ExploitationRepo
    Parcelles     *repository.ParcelleRepo
    Cultures      *repository.CultureRepo
    Charges       *repository.ChargeRepo
    Recoltes      *repository.RecolteRepo
}

// NewFarmHandler constructs a new FarmHandler and panics if any dependency is nil.
func NewFarmHandler(e *repository.ExploitationRepo, p *repository.ParcelleRepo, c *repository.CultureRepo, ch *repository.ChargeRepo, rc *repository.RecolteRepo) *FarmHandler {
    if e == nil || p == nil || c == nil || ch == nil || rc == nil {
        panic("nil repository passed to NewFarmHandler")
    }
    return &FarmHandler{Exploitations: e, Parcelles: p, Cultures: c, Charges: ch, Recoltes: rc}
}

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores numeric claims as float64, so several shapes
// are accepted.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
    if r, ok := c.Get("role").(string); ok {
        return r
    }
    return ""
}

// isAdmin reports whether the request carries the admin role.
func isAdmin(c echo.Context) bool { return getRole(c) == repository.RoleAdmin }

// pathID parses the :id route parameter.
func pathID(c echo.Context) (uint64, error) {
    return strconv.ParseUint(c.Param("id"), 10, 64)
}

// queryID parses an optional numeric query parameter; absent means zero.
func queryID(c echo.Context, name string) (uint64, error) {
    s := strings.TrimSpace(c.QueryParam(name))
    if s == "" {
        return 0, nil
    }
    return strconv.ParseUint(s, 10, 64)
}

// Float is a JSON field that accepts a number or a numeric string, the way
// the web client has always sent amounts ("12.5" and 12.5 are both fine).
// Anything non-numeric fails unmarshalling, which handlers turn into a 400.
// The zero value means the field was absent from the body.
type Float struct {
    Valid bool
    Value float64
}

// UnmarshalJSON implements json.Unmarshaler for Float.
func (f *Float) UnmarshalJSON(data []byte) error {
    s := strings.TrimSpace(string(data))
    if s == "null" {
        return nil
    }
    if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
        s = s[1 : len(s)-1]
    }
    v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
    if err != nil {
        return errors.New("value must be numeric")
    }
    f.Valid = true
    f.Value = v
    return nil
}

// ptr returns f's value as a pointer, or nil when the field was absent.
// Repositories treat nil as "leave the column unchanged".
func (f Float) ptr() *float64 {
    if !f.Valid {
        return nil
    }
    v := f.Value
    return &v
}

// parseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
func parseDate(s string) (time.Time, error) {
    s = strings.TrimSpace(s)
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t.UTC(), nil
    }
    return time.Parse("2006-01-02", s)
}
