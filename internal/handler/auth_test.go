package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/config"
	"github.com/agrigestion/farm-api/internal/repository"
)

// The validation tests below exercise the request-checking layer of the auth
// handlers, which rejects bad input before any repository call is made; the
// handler can therefore run without a database.
func newAuthHandler() *AuthHandler {
	return &AuthHandler{Cfg: config.Config{JWTSecret: "test", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}}
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	h := newAuthHandler()
	for _, body := range []string{
		`{}`,
		`{"email":"a@b.c"}`,
		`{"password":"pw"}`,
		`{"email":"  ","password":"pw"}`,
	} {
		rec := postJSON(t, h.Register, "/v1/auth/register", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Register(%s) = %d, want 400", body, rec.Code)
		}
	}
}

// Registering an email that already exists maps the MySQL unique-key
// violation to a 409 and stops there: the stored account keeps its password
// hash and no token pair is issued.
func TestRegisterDuplicateEmailConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	h := &AuthHandler{
		Cfg:    config.Config{JWTSecret: "test", AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4},
		Users:  repository.NewUserRepo(db),
		Tokens: repository.NewTokenRepo(db),
	}
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ferme@exemple.fr' for key 'users.email'"))

	rec := postJSON(t, h.Register, "/v1/auth/register",
		`{"email":"ferme@exemple.fr","password":"pw","name":"Ferme"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate Register = %d, want 409: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "refreshToken") {
		t.Fatalf("duplicate Register issued tokens: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("statements ran past the failed insert: %v", err)
	}
}

func TestLoginRejectsMissingFields(t *testing.T) {
	h := newAuthHandler()
	for _, body := range []string{`{}`, `{"email":"a@b.c"}`, `{"password":"pw"}`} {
		rec := postJSON(t, h.Login, "/v1/auth/login", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Login(%s) = %d, want 400", body, rec.Code)
		}
	}
}

func TestRefreshRequiresToken(t *testing.T) {
	h := newAuthHandler()
	for _, body := range []string{`{}`, `{"refreshToken":"   "}`} {
		rec := postJSON(t, h.Refresh, "/v1/auth/refresh", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Refresh(%s) = %d, want 400", body, rec.Code)
		}
	}
}

func TestLogoutRequiresCredentialOrToken(t *testing.T) {
	h := newAuthHandler()
	rec := postJSON(t, h.Logout, "/v1/auth/logout", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Logout without credentials = %d, want 400", rec.Code)
	}
}
