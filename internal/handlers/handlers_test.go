package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/alextreichler/humbleautos/internal/app"
	"github.com/alextreichler/humbleautos/internal/catalog"
	"github.com/alextreichler/humbleautos/internal/models"
	"github.com/alextreichler/humbleautos/internal/seed"
	"github.com/alextreichler/humbleautos/internal/store"
)

type testServer struct {
	*httptest.Server
	registry *app.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	demo, err := app.LoadSeed("", bcrypt.MinCost)
	require.NoError(t, err)
	presets, err := seed.Filters()
	require.NoError(t, err)

	reg := app.NewRegistry(store.NewMemory(), demo, app.Options{BcryptCost: bcrypt.MinCost})
	h := &Handler{
		Registry:     reg,
		SessionStore: sessions.NewCookieStore(bytes.Repeat([]byte("k"), 32)),
		Filters:      presets,
	}
	limiter := NewRateLimiter(0)
	t.Cleanup(limiter.Stop)

	srv := httptest.NewServer(h.Routes(limiter))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, registry: reg}
}

// browser returns a client with its own cookie jar.
func (s *testServer) browser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &http.Client{Jar: jar}
	t.Cleanup(c.CloseIdleConnections)
	return c
}

func (s *testServer) do(t *testing.T, c *http.Client, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func (s *testServer) login(t *testing.T, c *http.Client, email, password string) {
	t.Helper()
	status, body := s.do(t, c, http.MethodPost, "/api/login", loginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, string(body))
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c := srv.browser(t)

	status, body := srv.do(t, c, http.MethodGet, "/api/vehicles", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[listResponse](t, body)
	assert.Len(t, list.Vehicles, 6)
	assert.Equal(t, 6, list.Total)

	status, body = srv.do(t, c, http.MethodGet, "/api/vehicles?category=electric&minPrice=abc", nil)
	require.Equal(t, http.StatusOK, status)
	list = decode[listResponse](t, body)
	assert.Len(t, list.Vehicles, 2)
	assert.Equal(t, models.CategoryElectric, list.Filter.Category)
	assert.Nil(t, list.Filter.MinPrice, "malformed bound ignored")

	status, body = srv.do(t, c, http.MethodGet, "/api/vehicles?search=PORSCHE", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[listResponse](t, body).Vehicles, 1)

	status, body = srv.do(t, c, http.MethodGet, "/api/vehicles/featured", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[map[string][]models.Vehicle](t, body)["vehicles"], 4)

	status, body = srv.do(t, c, http.MethodGet, "/api/vehicles/2", nil)
	require.Equal(t, http.StatusOK, status)
	detail := decode[vehicleResponse](t, body)
	assert.Equal(t, "Porsche", detail.Vehicle.Make)
	assert.False(t, detail.IsFavorite)

	status, _ = srv.do(t, c, http.MethodGet, "/api/vehicles/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = srv.do(t, c, http.MethodGet, "/api/filters", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[seed.FilterPresets](t, body).PriceRanges, 4)
}

func TestSessionFlow(t *testing.T) {
	srv := newTestServer(t)
	c := srv.browser(t)

	status, body := srv.do(t, c, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[meResponse](t, body).Authenticated)

	status, _ = srv.do(t, c, http.MethodPost, "/api/vehicles/1/like", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = srv.do(t, c, http.MethodGet, "/api/favorites", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = srv.do(t, c, http.MethodPost, "/api/login", loginRequest{Email: "user@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	srv.login(t, c, "user@example.com", "user123")
	status, body = srv.do(t, c, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[meResponse](t, body)
	require.True(t, me.Authenticated)
	assert.Equal(t, "regularUser", me.User.Username)

	status, body = srv.do(t, c, http.MethodPost, "/api/vehicles/1/like", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 43, decode[map[string]int](t, body)["likes"])

	status, body = srv.do(t, c, http.MethodPost, "/api/vehicles/1/comments", commentRequest{Content: "Stunning interior."})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "regularUser", decode[models.Comment](t, body).Username)

	status, _ = srv.do(t, c, http.MethodPost, "/api/vehicles/1/comments", commentRequest{Content: "no"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = srv.do(t, c, http.MethodPost, "/api/vehicles/3/favorite", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[map[string]bool](t, body)["isFavorite"])

	status, body = srv.do(t, c, http.MethodGet, "/api/favorites", nil)
	require.Equal(t, http.StatusOK, status)
	favs := decode[map[string][]models.Vehicle](t, body)["vehicles"]
	require.Len(t, favs, 1)
	assert.Equal(t, "3", favs[0].ID)

	status, body = srv.do(t, c, http.MethodGet, "/api/vehicles/3", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[vehicleResponse](t, body).IsFavorite)

	status, _ = srv.do(t, c, http.MethodPost, "/api/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = srv.do(t, c, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[meResponse](t, body).Authenticated)
}

func TestRegisterEndpoint(t *testing.T) {
	srv := newTestServer(t)
	c := srv.browser(t)

	status, body := srv.do(t, c, http.MethodPost, "/api/register", map[string]string{
		"username": "al", "email": "bad", "password": "1", "confirmPassword": "2",
	})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Len(t, decode[errorBody](t, body).Fields, 4)

	status, _ = srv.do(t, c, http.MethodPost, "/api/register", map[string]string{
		"username": "admin2", "email": "admin@humbleautos.com", "password": "secret1", "confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = srv.do(t, c, http.MethodPost, "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "pw123456", "confirmPassword": "pw123456",
	})
	require.Equal(t, http.StatusCreated, status)
	me := decode[meResponse](t, body)
	assert.False(t, me.User.IsAdmin)

	status, _ = srv.do(t, c, http.MethodPost, "/api/register", map[string]string{"nickname": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminEndpoints(t *testing.T) {
	srv := newTestServer(t)
	c := srv.browser(t)

	status, _ := srv.do(t, c, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	srv.login(t, c, "user@example.com", "user123")
	status, _ = srv.do(t, c, http.MethodGet, "/api/admin/stats", nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = srv.do(t, c, http.MethodDelete, "/api/admin/vehicles/1", nil)
	assert.Equal(t, http.StatusForbidden, status)

	srv.login(t, c, "admin@humbleautos.com", "admin123")
	input := models.VehicleInput{
		Name: "Test Car", Make: "Test", Model: "Car", Year: 2024, Price: 50000,
		Category: models.CategorySedan, Rating: 4,
		Description: "A car used to exercise the admin console.",
		Features:    []string{"Heated seats"},
		Specifications: models.Specifications{
			Engine: "2.0L I4", Transmission: "Automatic", Drivetrain: "FWD",
			Horsepower: 200, Torque: 220, FuelEconomy: "30/38 mpg",
			Acceleration: "0-60 mph in 7s", TopSpeed: "130 mph",
			Color: "White", InteriorColor: "Black", Seats: 5,
		},
	}
	status, body := srv.do(t, c, http.MethodPost, "/api/admin/vehicles", input)
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decode[models.Vehicle](t, body)
	assert.Equal(t, catalog.PlaceholderImages, created.Images)

	status, body = srv.do(t, c, http.MethodPatch, "/api/admin/vehicles/"+created.ID, map[string]any{"isFeatured": true})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[models.Vehicle](t, body).IsFeatured)

	status, body = srv.do(t, c, http.MethodPatch, "/api/admin/vehicles/"+created.ID, map[string]any{"price": -1})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, decode[errorBody](t, body).Fields, "price")

	status, _ = srv.do(t, c, http.MethodPatch, "/api/admin/vehicles/missing", map[string]any{"price": 1})
	assert.Equal(t, http.StatusNotFound, status)

	status, body = srv.do(t, c, http.MethodGet, "/api/admin/stats", nil)
	require.Equal(t, http.StatusOK, status)
	dash := decode[dashboardResponse](t, body)
	assert.Equal(t, 7, dash.Stats.TotalVehicles)
	assert.Equal(t, 5, dash.Stats.FeaturedVehicles)
	assert.Len(t, dash.Users, 2)

	status, _ = srv.do(t, c, http.MethodDelete, "/api/admin/vehicles/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = srv.do(t, c, http.MethodDelete, "/api/admin/vehicles/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, status, "deleting again is a no-op")

	status, body = srv.do(t, c, http.MethodGet, "/api/vehicles", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[listResponse](t, body).Vehicles, 6)
}

func TestBrowsersAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	first, second := srv.browser(t), srv.browser(t)

	srv.login(t, first, "admin@humbleautos.com", "admin123")
	status, _ := srv.do(t, first, http.MethodDelete, "/api/admin/vehicles/1", nil)
	require.Equal(t, http.StatusNoContent, status)

	status, body := srv.do(t, second, http.MethodGet, "/api/vehicles", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[listResponse](t, body).Vehicles, 6)
	status, body = srv.do(t, second, http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[meResponse](t, body).Authenticated)

	assert.Equal(t, 2, srv.registry.Len())
}

func TestRateLimiter(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(time.Minute, func() time.Time { return now })
	defer rl.Stop()

	handler := rl.Middleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5001"), "same host, new port")
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000"))

	now = now.Add(2 * time.Minute)
	rl.sweep()
	_, ok := rl.visitors.Load("10.0.0.1")
	assert.False(t, ok, "stale entries swept")
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"))
}

func TestRateLimiterConcurrentBurst(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	rl := newRateLimiter(time.Minute, func() time.Time { return now })
	defer rl.Stop()

	var (
		wg       sync.WaitGroup
		admitted atomic.Int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.allow("10.0.0.9", now) {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, admitted.Load())

	assert.True(t, rl.allow("10.0.0.9", now.Add(time.Minute)), "window elapsed")
	assert.False(t, rl.allow("10.0.0.9", now.Add(time.Minute+time.Second)))
}

func TestSecurityHeaders(t *testing.T) {
	h := SecurityHeadersMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
