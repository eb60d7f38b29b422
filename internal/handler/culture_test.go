package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/repository"
)

// newFarmHandler wires the CRUD handlers onto a mocked *sql.DB so the
// authorization paths can be driven end to end without MySQL.
func newFarmHandler(t *testing.T) (*FarmHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	h := NewFarmHandler(
		repository.NewExploitationRepo(db),
		repository.NewParcelleRepo(db),
		repository.NewCultureRepo(db),
		repository.NewChargeRepo(db),
		repository.NewRecolteRepo(db),
	)
	return h, mock
}

// authedContext builds a context the way JWTAuth leaves it: numeric claims
// arrive as float64.
func authedContext(method, target, body, role string, userID float64) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	c.Set("role", role)
	return c, rec
}

var cultureColumns = []string{"id", "parcelle_id", "type", "sowing_date", "status", "is_validated", "created_at", "updated_at"}

func cultureRow(validated bool) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(cultureColumns).
		AddRow(int64(5), int64(2), "Blé", now, repository.StatusActive, validated, now, now)
}

// expectEmptyChildren covers the charge/recolte batch loads that follow
// every culture fetch.
func expectEmptyChildren(mock sqlmock.Sqlmock, cultureID int64) {
	mock.ExpectQuery("FROM charges WHERE culture_id IN").WithArgs(cultureID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "culture_id", "type", "amount", "date", "created_at"}))
	mock.ExpectQuery("FROM recoltes WHERE culture_id IN").WithArgs(cultureID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "culture_id", "quantity", "price", "date", "created_at"}))
}

// An exploitant's PUT body may carry isValidated, but the handler must drop
// it: the UPDATE has to receive NULL for the is_validated column so COALESCE
// keeps the stored value.
func TestUpdateCultureExploitantCannotValidate(t *testing.T) {
	h, mock := newFarmHandler(t)

	mock.ExpectQuery(`FROM cultures c\s+JOIN parcelles`).WithArgs(5, 1).
		WillReturnRows(cultureRow(false))
	expectEmptyChildren(mock, 5)
	mock.ExpectExec("UPDATE cultures").
		WithArgs(nil, nil, repository.StatusRecoltee, nil, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM cultures c WHERE c\.id`).WithArgs(5).
		WillReturnRows(cultureRow(false))
	expectEmptyChildren(mock, 5)

	c, rec := authedContext(http.MethodPut, "/v1/cultures/5",
		`{"status":"Récoltée","isValidated":true}`, repository.RoleExploitant, 1)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.UpdateCulture(c); err != nil {
		t.Fatalf("UpdateCulture: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("UpdateCulture = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"isValidated":false`) {
		t.Fatalf("exploitant update flipped validation: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// A culture owned by someone else and a culture that does not exist must
// produce the same response, status and body alike.
func TestGetCultureForeignAndAbsentLookIdentical(t *testing.T) {
	h, mock := newFarmHandler(t)

	// The ownership join filters out rows the caller does not own, so a
	// foreign culture and an absent one both come back empty.
	mock.ExpectQuery(`FROM cultures c\s+JOIN parcelles`).WithArgs(5, 1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM cultures c\s+JOIN parcelles`).WithArgs(999, 1).
		WillReturnError(sql.ErrNoRows)

	var bodies []string
	for _, id := range []string{"5", "999"} {
		c, rec := authedContext(http.MethodGet, "/v1/cultures/"+id, "", repository.RoleExploitant, 1)
		c.SetParamNames("id")
		c.SetParamValues(id)
		if err := h.GetCulture(c); err != nil {
			t.Fatalf("GetCulture(%s): %v", id, err)
		}
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GetCulture(%s) = %d, want 404", id, rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("foreign and absent responses differ: %q vs %q", bodies[0], bodies[1])
	}
}

// Deleting a culture that exists but belongs to another tenant rolls back
// before any DELETE runs and answers the same 404 an absent id gets.
func TestDeleteCultureForeignOwnerLooksAbsent(t *testing.T) {
	h, mock := newFarmHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT e\.user_id FROM cultures`).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(99)))
	mock.ExpectRollback()

	c, rec := authedContext(http.MethodDelete, "/v1/cultures/5", "", repository.RoleExploitant, 1)
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.DeleteCulture(c); err != nil {
		t.Fatalf("DeleteCulture: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("DeleteCulture of foreign culture = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statements ran past the ownership check: %v", err)
	}
}

// Deleting a culture removes recoltes and charges before the culture row,
// all in one transaction, and the id resolves to nothing afterwards.
func TestDeleteCultureCascadesChildFirst(t *testing.T) {
	h, mock := newFarmHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT e\.user_id FROM cultures`).WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)))
	mock.ExpectExec("DELETE FROM recoltes WHERE culture_id").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM charges WHERE culture_id").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM cultures WHERE id").WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := authedContext(http.MethodDelete, "/v1/cultures/7", "", repository.RoleExploitant, 1)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := h.DeleteCulture(c); err != nil {
		t.Fatalf("DeleteCulture: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("DeleteCulture = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	// The subtree is gone: the same id now reads as not found.
	mock.ExpectQuery(`FROM cultures c\s+JOIN parcelles`).WithArgs(7, 1).
		WillReturnError(sql.ErrNoRows)
	c2, rec2 := authedContext(http.MethodGet, "/v1/cultures/7", "", repository.RoleExploitant, 1)
	c2.SetParamNames("id")
	c2.SetParamValues("7")
	if err := h.GetCulture(c2); err != nil {
		t.Fatalf("GetCulture after delete: %v", err)
	}
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("GetCulture after delete = %d, want 404", rec2.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
