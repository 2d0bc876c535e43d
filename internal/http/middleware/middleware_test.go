package middlewarex

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tvcatalog/internal/domain/user"
	"tvcatalog/internal/ratelimit"
	"tvcatalog/internal/services/account"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth map[string]*user.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*user.User, error) {
	if token == "broken" {
		return nil, errors.New("connection reset")
	}
	u, ok := f[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown", account.ErrInvalidToken)
	}
	return u, nil
}

var users = fakeAuth{
	"jane-token":  {ID: 1, Username: "jane"},
	"admin-token": {ID: 2, Username: "admin", Admin: true},
}

// whoami echoes the username in context or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := User(r.Context()); ok {
		fmt.Fprint(w, u.Username)
		return
	}
	fmt.Fprint(w, "anonymous")
})

func get(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(users)(whoami)

	tests := []struct {
		name   string
		token  string
		status int
		body   string
	}{
		{"valid", "jane-token", http.StatusOK, "jane"},
		{"missing", "", http.StatusUnauthorized, `{"error":"invalid token"}`},
		{"unknown", "nope", http.StatusUnauthorized, `{"error":"invalid token"}`},
		{"backend failure", "broken", http.StatusUnauthorized, `{"error":"invalid token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(h, tt.token)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.body, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestOptionalUser(t *testing.T) {
	h := OptionalUser(users)(whoami)

	assert.Equal(t, "jane", get(h, "jane-token").Body.String())
	assert.Equal(t, "anonymous", get(h, "").Body.String())
	assert.Equal(t, "anonymous", get(h, "nope").Body.String())
}

func TestRequireAdmin(t *testing.T) {
	h := RequireUser(users)(RequireAdmin(whoami))

	rec := get(h, "jane-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"insufficient authorization"}`, rec.Body.String())

	rec = get(h, "admin-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestRequireBodyType(t *testing.T) {
	h := RequireBodyType(whoami)

	tests := []struct {
		method      string
		contentType string
		status      int
	}{
		{http.MethodGet, "", http.StatusOK},
		{http.MethodDelete, "text/plain", http.StatusOK},
		{http.MethodPost, "application/json", http.StatusOK},
		{http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{http.MethodPatch, "multipart/form-data; boundary=x", http.StatusOK},
		{http.MethodPost, "text/plain", http.StatusBadRequest},
		{http.MethodPatch, "", http.StatusOK},
		{http.MethodPost, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.contentType, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusBadRequest {
				assert.JSONEq(t, `{"error":"body must be json or form-data"}`, rec.Body.String())
			}
		})
	}
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return false, 0, errors.New("redis down")
}

func TestLoginRateLimit(t *testing.T) {
	h := LoginRateLimit(ratelimit.NewMemory(2, time.Minute))(whoami)

	attempt := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, attempt("10.0.0.1:5000").Code)
	assert.Equal(t, http.StatusOK, attempt("10.0.0.1:5001").Code)

	rec := attempt("10.0.0.1:5002")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many login attempts"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, attempt("10.0.0.2:5000").Code)

	open := LoginRateLimit(brokenLimiter{})(whoami)
	req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAccessLog(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
