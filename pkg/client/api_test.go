package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"msktravels/pkg/model"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAPI(server.URL+"/api", 5*time.Second)
}

func TestAPI_CSRFTokenSentOnUnsafeMethods(t *testing.T) {
	var gotHeader string
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/csrf-token/":
			http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "tok-123", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case "/api/login/":
			gotHeader = r.Header.Get(CSRFHeaderName)
			_, _ = w.Write([]byte(`{"message":"Login successful","user":{"id":3,"username":"ravi","first_name":"Ravi"}}`))
		}
	})

	ctx := context.Background()
	if err := api.FetchCSRFToken(ctx); err != nil {
		t.Fatalf("FetchCSRFToken() error = %v", err)
	}

	session, err := api.Login(ctx, model.Credentials{Username: "ravi", Password: "pw"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if gotHeader != "tok-123" {
		t.Errorf("CSRF header = %q, want tok-123", gotHeader)
	}
	if session.Username != "ravi" || session.FirstName != "Ravi" {
		t.Errorf("unexpected session %+v", session)
	}
}

func TestAPI_RegisterBareUser(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":9,"username":"asha","email":"asha@example.com"}`))
	})

	session, err := api.Register(context.Background(), model.Registration{Username: "asha"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if session.Email != "asha@example.com" {
		t.Errorf("unexpected session %+v", session)
	}
}

func TestAPI_Search(t *testing.T) {
	var got map[string]any
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"vehicles":[{"id":1,"name":"Toyota Innova","vehicle_type":"suv","capacity":7,"capacity_display":"7p","price_per_day":"3000.00"}],"search_criteria":{}}`))
	})

	offers, err := api.Search(context.Background(), model.SearchCriteria{
		Origin:      "Chennai",
		Destination: "Bangalore",
		StartDate:   model.MustDate("2025-03-01"),
		EndDate:     model.MustDate("2025-03-04"),
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got["from_location"] != "Chennai" || got["to_date"] != "2025-03-04" {
		t.Errorf("unexpected request body %v", got)
	}
	if _, ok := got["passengers"]; ok {
		t.Errorf("passengers should be omitted when not supplied")
	}
	if len(offers) != 1 || offers[0].PricePerDay != model.NewPrice(3000) {
		t.Errorf("unexpected offers %+v", offers)
	}
}

func TestAPI_BookError(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"non_field_errors":["Vehicle is not available for the selected dates"]}`))
	})

	_, err := api.Book(context.Background(), model.BookRequest{Vehicle: 1})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Detail() != "Vehicle is not available for the selected dates" {
		t.Errorf("Detail() = %q", apiErr.Detail())
	}
}

func TestAPI_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	api := NewAPI(server.URL, time.Second)
	server.Close()

	_, err := api.Search(context.Background(), model.SearchCriteria{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("transport failure must not look like an API answer")
	}
}

func TestAPIError_Detail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "detail wins", body: `{"error":"e","detail":"d"}`, want: "d"},
		{name: "error", body: `{"message":"m","error":"Booking failed"}`, want: "Booking failed"},
		{name: "message", body: `{"message":"m"}`, want: "m"},
		{name: "non field", body: `{"non_field_errors":["End date must be after start date"]}`, want: "End date must be after start date"},
		{name: "first field in order", body: `{"start_date":["Enter a valid date."],"customer_email":["Enter a valid email address."]}`, want: "Enter a valid date."},
		{name: "plain text", body: `Bad Gateway`, want: "Bad Gateway"},
		{name: "html dropped", body: `<html><body>oops</body></html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &APIError{StatusCode: http.StatusBadRequest, Body: []byte(tt.body)}
			if got := e.Detail(); got != tt.want {
				t.Errorf("Detail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError_FieldMessage(t *testing.T) {
	e := &APIError{Body: []byte(`{"email":["user with this email already exists."],"username":["A user with that username already exists."]}`)}

	msg, ok := e.FieldMessage("username")
	if !ok || msg != "A user with that username already exists." {
		t.Errorf("FieldMessage(username) = %q, %v", msg, ok)
	}
	if _, ok := e.FieldMessage("phone"); ok {
		t.Errorf("FieldMessage(phone) should be absent")
	}
}

func TestHttpClient_ForgetCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: CSRFCookieName, Value: "abc", Path: "/"})
	}))
	defer server.Close()

	c := NewHttpClient(server.URL, time.Second)
	if _, err := c.GET(context.Background(), "/"); err != nil {
		t.Fatalf("GET() error = %v", err)
	}
	if c.CSRFToken() != "abc" {
		t.Fatalf("CSRFToken() = %q, want abc", c.CSRFToken())
	}
	c.ForgetCookies()
	if c.CSRFToken() != "" {
		t.Errorf("CSRFToken() should be empty after ForgetCookies")
	}
}
