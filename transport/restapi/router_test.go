package restapi

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/appstore/transport/restapi/httpauth"
)

type fixture struct {
	auth       *fakeAuth
	apps       *fakeApps
	changelogs *fakeChangelogs
	ratings    *fakeRatings
	handler    http.Handler
}

func newFixture(t *testing.T, opts ...func(cfg *Config)) *fixture {
	t.Helper()

	f := &fixture{
		auth:       newFakeAuth(),
		apps:       newFakeApps(),
		changelogs: &fakeChangelogs{},
		ratings:    &fakeRatings{},
	}

	cfg := Config{
		ServiceName:      "appstore-test",
		AuthService:      f.auth,
		AppService:       f.apps,
		ChangelogService: f.changelogs,
		RatingService:    f.ratings,
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	transport, err := NewHTTPTransport(cfg)
	require.NoError(t, err)

	f.handler = transport.Server()
	return f
}

func (f *fixture) do(method, target, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	r := httptest.NewRequest(method, target, reader)
	r.Header.Set("Content-Type", "application/json")
	if token != "" {
		r.AddCookie(&http.Cookie{Name: httpauth.CookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func cookieOf(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == httpauth.CookieName {
			return c
		}
	}

	return nil
}

func TestNewHTTPTransport_invalidConfig(t *testing.T) {
	_, err := NewHTTPTransport(Config{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("register sets cookie", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/register", `{"email":"new@example.com","password":"secret123","name":"New"}`, "")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"account":{"id":"20"`)
		assert.NotContains(t, rec.Body.String(), "password")

		c := cookieOf(rec)
		require.NotNil(t, c)
		assert.Equal(t, "new-token", c.Value)
		assert.True(t, c.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 7*24*60*60, c.MaxAge)
		assert.Equal(t, "/", c.Path)
	})

	t.Run("register short password", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/register", `{"email":"x@example.com","password":"123","name":"X"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"password must be at least 6 characters long"`)
		assert.Nil(t, cookieOf(rec))
	})

	t.Run("register duplicate", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/register", `{"email":"dev@example.com","password":"secret123","name":"X"}`, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/login", `{"email":`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login wrong password", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/login", `{"email":"dev@example.com","password":"nope"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"invalid email or password"`)
	})

	t.Run("login ok", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/login", `{"email":"dev@example.com","password":"secret123"}`, "")
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, cookieOf(rec))
		assert.Equal(t, "dev-token", cookieOf(rec).Value)
	})

	t.Run("me without cookie", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)
	})

	t.Run("me with unknown token", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/auth/me", "", "forged")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("me with cookie", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/auth/me", "", "dev-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"email":"dev@example.com"`)
		assert.Contains(t, rec.Body.String(), `"avatar":"data:image/png;base64,AAAA"`)
	})

	t.Run("me with bearer", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		r.Header.Set("Authorization", "Bearer admin-token")
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"role":"admin"`)
	})

	t.Run("update me", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/auth/me", `{"name":"Renamed","language":"zh"}`, "other-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"name":"Renamed"`)
		assert.Contains(t, rec.Body.String(), `"language":"zh"`)
	})

	t.Run("verify", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/auth/verify?token=verify-ok", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"isVerified":true`)

		rec = f.do(http.MethodGet, "/auth/verify?token=bad", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("logout expires cookie and revokes", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/auth/logout", "", "new-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"logged out successfully"}`, rec.Body.String())

		c := cookieOf(rec)
		require.NotNil(t, c)
		assert.Equal(t, -1, c.MaxAge)
		assert.Equal(t, []string{"new-token"}, f.auth.logout)

		rec = f.do(http.MethodGet, "/auth/me", "", "new-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAppRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("list passes filter", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps?featured=true&sort=popular&limit=5&skip=2&category=games&q=Foo&unknown=1", "", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"apps":[{"id":"1"`)
		assert.NotContains(t, rec.Body.String(), `"status":"pending"`)

		assert.True(t, f.apps.lastList.Featured)
		assert.Equal(t, "popular", f.apps.lastList.Sort)
		assert.EqualValues(t, 5, f.apps.lastList.Limit)
		assert.EqualValues(t, 2, f.apps.lastList.Skip)
		assert.Equal(t, "games", f.apps.lastList.Category)
		assert.Equal(t, "Foo", f.apps.lastList.Query)
	})

	t.Run("list malformed limit", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps?limit=abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get malformed id is not found", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps/not-an-id", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"error":"app not found"`)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps/404", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("get ok", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps/1", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"app":{"id":"1","developerId":"10"`)
		assert.Contains(t, rec.Body.String(), `"screenshots":[]`)
	})

	t.Run("create needs auth", func(t *testing.T) {
		writes := f.apps.writes
		rec := f.do(http.MethodPost, "/apps/developer", `{"name":{"en":"New"}}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, writes, f.apps.writes)
	})

	t.Run("create ignores status", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/developer", `{"name":{"en":"New"},"status":"approved","featured":true,"tags":["a"]}`, "dev-token")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)
		assert.Contains(t, rec.Body.String(), `"featured":false`)
		assert.Contains(t, rec.Body.String(), `"developerId":"10"`)
	})

	t.Run("list mine", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps/developer", "", "dev-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"pending"`)

		rec = f.do(http.MethodGet, "/apps/developer", "", "other-token")
		assert.JSONEq(t, `{"apps":[]}`, rec.Body.String())
	})

	t.Run("update by stranger is forbidden", func(t *testing.T) {
		writes := f.apps.writes
		rec := f.do(http.MethodPut, "/apps/2", `{"name":{"en":"Hacked"}}`, "other-token")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, writes, f.apps.writes)
	})

	t.Run("delete by stranger is forbidden", func(t *testing.T) {
		writes := f.apps.writes
		rec := f.do(http.MethodDelete, "/apps/2", "", "other-token")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, writes, f.apps.writes)
	})

	t.Run("admin approval makes it public", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/apps/2", `{"status":"approved"}`, "admin-token")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = f.do(http.MethodGet, "/apps", "", "")
		assert.Contains(t, rec.Body.String(), `"id":"2"`)
	})

	t.Run("download", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/1/download", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"download count incremented","downloads":1}`, rec.Body.String())

		rec = f.do(http.MethodPost, "/apps/12345/download", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete by owner", func(t *testing.T) {
		rec := f.do(http.MethodDelete, "/apps/1", "", "dev-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"app deleted successfully"}`, rec.Body.String())

		rec = f.do(http.MethodGet, "/apps/1", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInternalErrorIsHidden(t *testing.T) {
	f := newFixture(t)
	f.apps.failList = errors.New("pq: connection refused")

	rec := f.do(http.MethodGet, "/apps", "", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"internal server error"`)
	assert.NotContains(t, rec.Body.String(), "connection refused")
	assert.NotEmpty(t, rec.Header().Get("Tracer-ID"))
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/admin/apps", "", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"forbidden"`)

	rec = f.do(http.MethodGet, "/admin/apps", "", "dev-token")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/admin/apps?status=pending&limit=10", "", "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"2"`)
	assert.Equal(t, "pending", f.apps.lastAdmin.Status)
	assert.EqualValues(t, 10, f.apps.lastAdmin.Limit)
}

func TestChangelogRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("public list by app", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps/1/changelogs", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"changelogs":[{"id":"7","appId":"1"`)
	})

	t.Run("list needs auth", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/changelogs", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list by caller or app", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/changelogs", "", "dev-token")
		assert.JSONEq(t, `{"changelogs":[]}`, rec.Body.String())
		assert.Equal(t, []int64{developer.ID}, f.changelogs.byDeveloper)

		rec = f.do(http.MethodGet, "/changelogs?appId=1", "", "dev-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version":"1.0.0"`)
	})

	t.Run("create", func(t *testing.T) {
		body := `{"appId":"1","version":"1.1.0","title":{"en":"T"},"content":{"en":"C"},"type":"minor","releaseDate":"2024-01-02"}`
		rec := f.do(http.MethodPost, "/changelogs", body, "dev-token")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Body.String(), `"changelog":{"id":"7"`)
		assert.EqualValues(t, 1, f.changelogs.lastCreate.AppID)
		assert.Equal(t, "2024-01-02", f.changelogs.lastCreate.ReleaseDate)
		assert.Equal(t, developer.ID, f.changelogs.lastCreate.Actor.ID)
	})

	t.Run("create malformed app id", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/changelogs", `{"appId":"zzz"}`, "dev-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create missing app id", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/changelogs", `{"version":"1"}`, "dev-token")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "appId is required")
	})

	t.Run("update", func(t *testing.T) {
		rec := f.do(http.MethodPut, "/changelogs/7", `{"version":"2.0.0"}`, "dev-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"version":"2.0.0"`)

		rec = f.do(http.MethodPut, "/changelogs/x", `{"version":"2.0.0"}`, "dev-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec := f.do(http.MethodDelete, "/changelogs/7", "", "other-token")
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(http.MethodDelete, "/changelogs/7", "", "admin-token")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"changelog deleted successfully"}`, rec.Body.String())
	})
}

func TestRatingRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("needs auth", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/1/ratings", `{"rating":5}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("fractional score", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/1/ratings", `{"rating":4.5}`, "dev-token")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "rating must be an integer between 1 and 5")
	})

	t.Run("out of range", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/1/ratings", `{"rating":6}`, "dev-token")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("aggregate", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/1/ratings", `{"rating":4,"review":{"en":"good"}}`, "dev-token")
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = f.do(http.MethodPost, "/apps/1/ratings", `{"rating":5}`, "other-token")
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(http.MethodPost, "/apps/1/ratings", `{"rating":4}`, "admin-token")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"rating":4.3`)
		assert.Contains(t, rec.Body.String(), `"totalRatings":3`)
	})

	t.Run("missing app", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/apps/2/ratings", `{"rating":4}`, "dev-token")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("public list", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/apps/1/ratings?limit=10", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"ratings":[{"id":"1","appId":"1"`)
	})
}

func TestDownloadThrottle(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.DownloadRatePerMinute = 1
		cfg.DownloadBurst = 1
	})

	rec := f.do(http.MethodPost, "/apps/1/download", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/apps/1/download", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"too many requests"`)

	// other client still has its own bucket
	r := httptest.NewRequest(http.MethodPost, "/apps/1/download", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)

	// forged header does not open a new bucket
	r = httptest.NewRequest(http.MethodPost, "/apps/1/download", nil)
	r.RemoteAddr = "203.0.113.9:4321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestDownloadThrottle_behindProxy(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.DownloadRatePerMinute = 1
		cfg.DownloadBurst = 1
		cfg.TrustedProxyHops = 1
	})

	download := func(xff string) int {
		r := httptest.NewRequest(http.MethodPost, "/apps/1/download", nil)
		r.RemoteAddr = "10.0.0.1:4321"
		r.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, r)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, download("203.0.113.9"))
	// client prepends a random address, the proxy still appends the real one
	assert.Equal(t, http.StatusTooManyRequests, download("198.51.100.1, 203.0.113.9"))
	assert.Equal(t, http.StatusOK, download("198.51.100.7"))
}

func TestRequestBodyLimit(t *testing.T) {
	f := newFixture(t, func(cfg *Config) {
		cfg.MaxBodyBytes = 64
	})

	rec := f.do(http.MethodPost, "/auth/login", `{"email":"dev@example.com","password":"`+strings.Repeat("p", 64)+`"}`, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"request body is larger than 64 bytes"`)
}
