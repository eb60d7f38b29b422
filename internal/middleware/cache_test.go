package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/agrigestion/farm-api/internal/config"
)

func statsContext(t *testing.T, target string, userID interface{}) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/stats/overview")
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c
}

func TestCurrentUserIDNormalizesClaimShapes(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{float64(7), "7"}, // how JWTAuth stores the sub claim
		{uint64(7), "7"},
		{int64(7), "7"},
		{7, "7"},
		{"7", "7"},
		{nil, "anon"},
	}
	for _, tc := range cases {
		c := statsContext(t, "/v1/stats/overview", tc.in)
		if got := currentUserID(c); got != tc.want {
			t.Fatalf("currentUserID(%T %v) = %q, want %q", tc.in, tc.in, got, tc.want)
		}
	}
}

func TestCacheKeysDifferPerUser(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "stats-cache", KeyStrategy: "user_path_query"}

	a := cacheKeyFrom(cfg, statsContext(t, "/v1/stats/overview", float64(1)))
	b := cacheKeyFrom(cfg, statsContext(t, "/v1/stats/overview", float64(2)))
	if a == b {
		t.Fatalf("two tenants on the same path share a cache key: %s", a)
	}

	// Same tenant, same request: the key must be stable or the cache never hits.
	a2 := cacheKeyFrom(cfg, statsContext(t, "/v1/stats/overview", float64(1)))
	if a != a2 {
		t.Fatalf("key not deterministic for one tenant: %s vs %s", a, a2)
	}
}

func TestCacheKeysDifferPerConcretePath(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "stats-cache", KeyStrategy: "user_path_query"}

	// Same route pattern, different :id — keys must not collide.
	a := cacheKeyFrom(cfg, statsContext(t, "/v1/stats/cultures/1", float64(1)))
	b := cacheKeyFrom(cfg, statsContext(t, "/v1/stats/cultures/2", float64(1)))
	if a == b {
		t.Fatalf("two different cultures share a cache key: %s", a)
	}
}

func TestRateKeyUsesUser(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}
	key := buildRateKey(cfg, statsContext(t, "/v1/stats/overview", float64(42)))
	if !strings.Contains(key, "user:42") {
		t.Fatalf("rate key %q does not carry the user id", key)
	}
}
