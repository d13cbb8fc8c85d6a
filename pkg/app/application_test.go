package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"msktravels/pkg/config"
	"msktravels/pkg/logger"
)

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

func testConfig() *config.Config {
	return &config.Config{
		Port:              "8080",
		RateLimitRequests: 2,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    time.Second,
		MaxRequestSize:    64,
		ShutdownTimeout:   time.Second,
		Log:               logger.Discard(),
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	a := NewApplication(testConfig())
	a.SetApp(
		routes(func(r *httprouter.Router) {
			r.POST("/api/v1/echo", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
				w.WriteHeader(http.StatusOK)
			})
			r.GET("/api/v1/panic", func(http.ResponseWriter, *http.Request, httprouter.Params) {
				panic("boom")
			})
		}),
		routes(func(r *httprouter.Router) {
			r.GET("/health", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
				w.WriteHeader(http.StatusOK)
			})
		}),
	)
	t.Cleanup(a.rateLimiter.Stop)
	return a
}

func TestApplication_Middleware(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		contentType string
		want        int
	}{
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
		{name: "json post", method: http.MethodPost, path: "/api/v1/echo", body: `{}`, contentType: "application/json", want: http.StatusOK},
		{name: "wrong content type", method: http.MethodPost, path: "/api/v1/echo", body: `a=b`, contentType: "application/x-www-form-urlencoded", want: http.StatusUnsupportedMediaType},
		{name: "too large", method: http.MethodPost, path: "/api/v1/echo", body: strings.Repeat("x", 100), contentType: "application/json", want: http.StatusRequestEntityTooLarge},
		{name: "panic recovered", method: http.MethodGet, path: "/api/v1/panic", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.RemoteAddr = "10.0.0.1:1234"
			req.Header.Set("X-Forwarded-For", tt.name)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			a.Handler().ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestApplication_RateLimitSkipsHealth(t *testing.T) {
	a := newTestApp(t)

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.2:1234"
		rr := httptest.NewRecorder()
		a.Handler().ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		send("/api/v1/missing")
	}
	if got := send("/api/v1/missing"); got != http.StatusTooManyRequests {
		t.Errorf("third app request = %d, want 429", got)
	}
	if got := send("/health"); got != http.StatusOK {
		t.Errorf("health = %d, want 200", got)
	}
}

func TestApplication_ClosersRunInReverse(t *testing.T) {
	a := newTestApp(t)

	var order []string
	a.OnShutdown(func() { order = append(order, "first") })
	a.OnShutdown(func() { order = append(order, "second") })

	a.gracefulShutdown()

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("closer order = %v", order)
	}
}
