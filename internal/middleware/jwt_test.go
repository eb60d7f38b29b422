package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/utils"
)

const testSecret = "unit-test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/exploitations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _ := doRequest(t, JWTAuth(testSecret), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 7, "exploitant", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidTokenInjectsClaims(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, "admin", 5)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if sub, _ := c.Get("user_id").(float64); uint64(sub) != 7 {
		t.Fatalf("user_id = %v, want 7", c.Get("user_id"))
	}
	if role, _ := c.Get("role").(string); role != "admin" {
		t.Fatalf("role = %v, want admin", c.Get("role"))
	}
}
