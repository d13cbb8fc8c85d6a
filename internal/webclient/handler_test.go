package webclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"msktravels/internal/handoff"
	"msktravels/pkg/client"
	"msktravels/pkg/config"
	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

// fakeTravelAPI answers the travel API endpoints the handlers reach.
func fakeTravelAPI(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/csrf-token/":
			http.SetCookie(w, &http.Cookie{Name: client.CSRFCookieName, Value: "tok", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case "/api/login/":
			var creds struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&creds)
			if creds.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"Invalid credentials"}`))
				return
			}
			_, _ = w.Write([]byte(`{"user":{"id":3,"username":"ravi","first_name":"Ravi","last_name":"Kumar","email":"ravi@example.com","phone":"+919876543210"}}`))
		case "/api/logout/":
			w.WriteHeader(http.StatusOK)
		case "/api/search/":
			_, _ = w.Write([]byte(`{"vehicles":[{"id":12,"name":"Toyota Innova","vehicle_type":"suv","capacity":7,"price_per_day":"3000.00","is_available":true}]}`))
		case "/api/book/":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":41,"customer_name":"Ravi Kumar","customer_email":"ravi@example.com","vehicle":12,"total_price":"9000.00","status":"pending","status_display":"Pending"}`))
		case "/api/booking/41/":
			_, _ = w.Write([]byte(`{"id":41,"customer_name":"Ravi Kumar","vehicle":12,"status":"pending"}`))
		case "/api/booking/99/":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		APIBaseURL:          baseURL + "/api",
		APITimeout:          5 * time.Second,
		SubmitTimeout:       5 * time.Second,
		SubmissionBackend:   config.SubmissionREST,
		RestBookingEndpoint: config.EndpointBook,
		ContactBackend:      config.SubmissionREST,
		HandoffTTL:          time.Minute,
		VisitorIdleTTL:      time.Hour,
		Log:                 logger.Discard(),
	}
}

type testServer struct {
	router   *httprouter.Router
	registry *Registry
	tokens   *VisitorTokens
	cookie   *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	api := fakeTravelAPI(t)
	cfg := testConfig(api.URL)

	registry := NewRegistry(NewFactory(cfg, nil), cfg.VisitorIdleTTL, cfg.Log)
	t.Cleanup(registry.Stop)

	tokens := NewVisitorTokens(testSecret, cfg.VisitorIdleTTL, false)
	router := httprouter.New()
	NewHandler(registry, tokens, cfg.Log).RegisterRoutes(router)

	return &testServer{router: router, registry: registry, tokens: tokens}
}

// do sends a request carrying the visitor cookie from earlier responses.
func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		if c.Name == CookieName {
			s.cookie = c
		}
	}

	var env envelope
	if rr.Body.Len() > 0 {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", rr.Body.String(), err)
		}
	}
	return rr, env
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	rr, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "ravi", "password": "secret"})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s (%s)", rr.Code, rr.Body.String(), env.Error)
	}
}

func (s *testServer) searchAndChoose(t *testing.T) {
	t.Helper()
	rr, _ := s.do(t, http.MethodPost, "/api/v1/booking/search", map[string]any{
		"from_location": "Chennai",
		"to_location":   "Bangalore",
		"from_date":     "2030-03-01",
		"to_date":       "2030-03-04",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("search status = %d, body = %s", rr.Code, rr.Body.String())
	}
	rr, _ = s.do(t, http.MethodPost, "/api/v1/booking/offer", map[string]any{"vehicle_id": 12})
	if rr.Code != http.StatusOK {
		t.Fatalf("offer status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestHandler_IssuesAndReusesVisitorCookie(t *testing.T) {
	s := newTestServer(t)

	rr, _ := s.do(t, http.MethodGet, "/api/v1/booking", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if s.cookie == nil {
		t.Fatal("expected a visitor cookie")
	}
	if !s.cookie.HttpOnly {
		t.Error("visitor cookie should be HttpOnly")
	}

	id, err := s.tokens.Parse(s.cookie.Value)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	s.do(t, http.MethodGet, "/api/v1/booking", nil)
	if got := s.registry.Len(); got != 1 {
		t.Errorf("visitors = %d, want 1", got)
	}

	again, err := s.tokens.Parse(s.cookie.Value)
	if err != nil || again != id {
		t.Errorf("visitor id changed: %q -> %q (%v)", id, again, err)
	}
}

func TestHandler_InvalidCookieStartsNewVisitor(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/booking", nil)

	s.cookie = &http.Cookie{Name: CookieName, Value: "forged.token.value"}
	rr, _ := s.do(t, http.MethodGet, "/api/v1/booking", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := s.registry.Len(); got != 2 {
		t.Errorf("visitors = %d, want 2", got)
	}
	if _, err := s.tokens.Parse(s.cookie.Value); err != nil {
		t.Errorf("reissued cookie does not parse: %v", err)
	}
}

func TestHandler_LoginAndSession(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "ravi", "password": "wrong"})
	if rr.Code != http.StatusUnauthorized || env.Code != apperrors.CodeAuth {
		t.Fatalf("bad login = %d %s, want 401 %s", rr.Code, env.Code, apperrors.CodeAuth)
	}
	if env.Error != "Invalid credentials" {
		t.Errorf("error = %q", env.Error)
	}

	s.login(t)

	_, env = s.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	var session sessionResponse
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if !session.Authenticated || session.User == nil || session.User.Username != "ravi" {
		t.Errorf("unexpected session %+v", session)
	}

	rr, env = s.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	if rr.Code != http.StatusOK || env.Message != msgLoggedOut {
		t.Errorf("logout = %d %q", rr.Code, env.Message)
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	session = sessionResponse{}
	_ = json.Unmarshal(env.Data, &session)
	if session.Authenticated {
		t.Error("session should be cleared after logout")
	}
}

func TestHandler_BookingFlow(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rr, env := s.do(t, http.MethodPut, "/api/v1/booking/package", map[string]string{"package_id": "3days"})
	if rr.Code != http.StatusOK {
		t.Fatalf("select package = %d %s", rr.Code, env.Error)
	}

	s.searchAndChoose(t)

	rr, env = s.do(t, http.MethodGet, "/api/v1/booking/review", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("review = %d %s", rr.Code, env.Error)
	}
	if !strings.Contains(string(env.Data), "Toyota Innova") {
		t.Errorf("review missing offer: %s", env.Data)
	}

	rr, env = s.do(t, http.MethodPost, "/api/v1/booking/confirm", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirm = %d %s", rr.Code, env.Error)
	}
	if env.Message != msgBookingDone {
		t.Errorf("message = %q", env.Message)
	}
	var confirmation struct {
		ConfirmationID string  `json:"confirmation_id"`
		Total          float64 `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &confirmation); err != nil {
		t.Fatalf("decode confirmation: %v", err)
	}
	if confirmation.ConfirmationID != "41" || confirmation.Total != 9000 {
		t.Errorf("unexpected confirmation %+v", confirmation)
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/booking", nil)
	if !strings.Contains(string(env.Data), `"state":"confirmed"`) {
		t.Errorf("snapshot = %s, want confirmed", env.Data)
	}
}

func TestHandler_ConfirmRequiresLogin(t *testing.T) {
	s := newTestServer(t)
	s.searchAndChoose(t)

	rr, env := s.do(t, http.MethodPost, "/api/v1/booking/confirm", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("confirm = %d, want 401", rr.Code)
	}
	if env.Code != apperrors.CodeAuthorizationRequired || env.Details[apperrors.DetailLogin] != true {
		t.Errorf("unexpected error %+v", env)
	}

	_, env = s.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	var session sessionResponse
	_ = json.Unmarshal(env.Data, &session)
	if session.LoginPrompt != "book a vehicle" {
		t.Errorf("login prompt = %q", session.LoginPrompt)
	}

	s.login(t)
	_, env = s.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	session = sessionResponse{}
	_ = json.Unmarshal(env.Data, &session)
	if session.LoginPrompt != "" {
		t.Errorf("login prompt should clear on login, got %q", session.LoginPrompt)
	}

	rr, env = s.do(t, http.MethodPost, "/api/v1/booking/confirm", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("confirm after login = %d %s", rr.Code, env.Error)
	}
}

func TestHandler_SelectOfferValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{name: "missing id", body: map[string]any{}, wantCode: http.StatusUnprocessableEntity, wantErr: apperrors.CodeValidation},
		{name: "no search yet", body: map[string]any{"vehicle_id": 12}, wantCode: http.StatusConflict, wantErr: apperrors.CodeInvalidState},
		{name: "unknown field", body: map[string]any{"vehicle": 12}, wantCode: http.StatusBadRequest, wantErr: apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, env := s.do(t, http.MethodPost, "/api/v1/booking/offer", tt.body)
			if rr.Code != tt.wantCode || env.Code != tt.wantErr {
				t.Errorf("got %d %s, want %d %s", rr.Code, env.Code, tt.wantCode, tt.wantErr)
			}
		})
	}
}

func TestHandler_ResetClearsBooking(t *testing.T) {
	s := newTestServer(t)
	s.searchAndChoose(t)

	rr, env := s.do(t, http.MethodPost, "/api/v1/booking/reset", nil)
	if rr.Code != http.StatusOK || env.Message != msgBookingReset {
		t.Fatalf("reset = %d %q", rr.Code, env.Message)
	}
	if !strings.Contains(string(env.Data), `"state":"idle"`) {
		t.Errorf("snapshot = %s, want idle", env.Data)
	}

	rr, _ = s.do(t, http.MethodGet, "/api/v1/booking/review", nil)
	if rr.Code == http.StatusOK {
		t.Error("review should fail after reset")
	}
}

func TestHandler_Packages(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(t, http.MethodGet, "/api/v1/packages", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var packages []map[string]any
	if err := json.Unmarshal(env.Data, &packages); err != nil {
		t.Fatalf("decode packages: %v", err)
	}
	if len(packages) != 3 {
		t.Errorf("packages = %d, want 3", len(packages))
	}
	if s.registry.Len() != 0 {
		t.Error("package listing should not create a visitor")
	}
}

func TestHandler_GetBooking(t *testing.T) {
	s := newTestServer(t)

	rr, env := s.do(t, http.MethodGet, "/api/v1/bookings/41", nil)
	if rr.Code != http.StatusUnauthorized || env.Code != apperrors.CodeAuthorizationRequired {
		t.Fatalf("anonymous lookup = %d %s", rr.Code, env.Code)
	}

	s.login(t)

	rr, env = s.do(t, http.MethodGet, "/api/v1/bookings/41", nil)
	if rr.Code != http.StatusOK || !strings.Contains(string(env.Data), `"id":41`) {
		t.Errorf("lookup = %d %s", rr.Code, env.Data)
	}

	rr, env = s.do(t, http.MethodGet, "/api/v1/bookings/99", nil)
	if rr.Code != http.StatusNotFound || env.Code != apperrors.CodeNotFound {
		t.Errorf("missing lookup = %d %s", rr.Code, env.Code)
	}
}

func TestBookingLookupError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "transport", err: errors.New("dial tcp: refused"), want: apperrors.CodeNetwork},
		{name: "not found", err: &client.APIError{StatusCode: http.StatusNotFound}, want: apperrors.CodeNotFound},
		{name: "forbidden", err: &client.APIError{StatusCode: http.StatusForbidden}, want: apperrors.CodeAuthorizationRequired},
		{name: "server", err: &client.APIError{StatusCode: http.StatusBadGateway, Body: []byte(`{"detail":"down"}`)}, want: apperrors.CodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := apperrors.AsAppError(bookingLookupError("7", tt.err))
			if got.Code != tt.want {
				t.Errorf("code = %s, want %s", got.Code, tt.want)
			}
		})
	}
}

func TestVisitorTokens(t *testing.T) {
	tokens := NewVisitorTokens(testSecret, time.Hour, true)
	id := newVisitorID()

	token, err := tokens.Issue(id, time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	got, err := tokens.Parse(token)
	if err != nil || got != id {
		t.Fatalf("Parse() = %q, %v; want %q", got, err, id)
	}

	cookie := tokens.Cookie(token)
	if !cookie.Secure || cookie.SameSite != http.SameSiteLaxMode || cookie.Name != CookieName {
		t.Errorf("unexpected cookie %+v", cookie)
	}

	expired, _ := tokens.Issue(id, time.Now().Add(-2*time.Hour))
	if _, err := tokens.Parse(expired); err == nil {
		t.Error("expired token should not parse")
	}

	other := NewVisitorTokens("fedcba9876543210fedcba9876543210", time.Hour, true)
	if _, err := other.Parse(token); err == nil {
		t.Error("token signed with another secret should not parse")
	}
}

func TestRegistry_SweepAndStop(t *testing.T) {
	var built atomic.Int32
	factory := func(id string) (*Visitor, error) {
		built.Add(1)
		return &Visitor{ID: id, Handoff: handoff.NewStore(time.Minute, logger.Discard()), Log: logger.Discard()}, nil
	}

	registry := NewRegistry(factory, time.Minute, logger.Discard())
	defer registry.Stop()

	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return now }

	if _, created, _ := registry.Get("a"); !created {
		t.Error("first Get should create")
	}
	if _, created, _ := registry.Get("a"); created {
		t.Error("second Get should reuse")
	}

	now = now.Add(30 * time.Second)
	registry.Get("b")

	now = now.Add(45 * time.Second)
	if n := registry.sweep(); n != 1 {
		t.Errorf("sweep() = %d, want 1", n)
	}
	if registry.Len() != 1 {
		t.Errorf("Len() = %d, want 1", registry.Len())
	}

	registry.Stop()
	registry.Stop()
	if registry.Len() != 0 {
		t.Errorf("Len() after Stop = %d, want 0", registry.Len())
	}
	if built.Load() != 2 {
		t.Errorf("factory calls = %d, want 2", built.Load())
	}
}

func TestRegistry_FactoryError(t *testing.T) {
	registry := NewRegistry(func(string) (*Visitor, error) {
		return nil, errors.New("boom")
	}, time.Minute, logger.Discard())
	defer registry.Stop()

	if _, _, err := registry.Get("x"); err == nil {
		t.Error("expected factory error")
	}
	if registry.Len() != 0 {
		t.Error("failed visitor should not be registered")
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		probe      Probe
		wantStatus int
		wantBody   string
	}{
		{
			name:       "health ignores probe",
			path:       "/health",
			probe:      func(context.Context) error { return errors.New("down") },
			wantStatus: http.StatusOK,
			wantBody:   `"status":"ok"`,
		},
		{
			name:       "ready",
			path:       "/ready",
			probe:      func(context.Context) error { return nil },
			wantStatus: http.StatusOK,
			wantBody:   `"travel_api":"ok"`,
		},
		{
			name:       "not ready",
			path:       "/ready",
			probe:      func(context.Context) error { return errors.New("down") },
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `"status":"unavailable"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := httprouter.New()
			NewHealthHandler(tt.probe, logger.Discard()).RegisterRoutes(router)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %s", rr.Body.String(), tt.wantBody)
			}
		})
	}
}
