package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"msktravels/pkg/model"
)

const (
	pathCSRFToken   = "/csrf-token/"
	pathLogin       = "/login/"
	pathLogout      = "/logout/"
	pathRegister    = "/register/"
	pathProfile     = "/profile/"
	pathSearch      = "/search/"
	pathBook        = "/book/"
	pathDirectBook  = "/direct-booking/"
	pathBookingByID = "/booking/%s/"
	pathContact     = "/contact/"
)

// API is the typed client of the travel REST API for one visitor. It is
// not shared between visitors: its cookie jar carries that visitor's
// server session.
type API struct {
	httpClient *HttpClient
}

func NewAPI(baseURL string, timeout time.Duration) *API {
	return &API{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *API) HTTP() *HttpClient {
	return c.httpClient
}

// FetchCSRFToken primes the cookie jar with the anti-forgery cookie.
func (c *API) FetchCSRFToken(ctx context.Context) error {
	resp, err := c.httpClient.GET(ctx, pathCSRFToken)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}

func (c *API) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	resp, err := c.httpClient.POST(ctx, pathLogin, creds)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return decodeUser(resp)
}

func (c *API) Logout(ctx context.Context) error {
	resp, err := c.httpClient.POST(ctx, pathLogout, nil)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return nil
}

func (c *API) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	resp, err := c.httpClient.POST(ctx, pathRegister, reg)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return decodeUser(resp)
}

func (c *API) Profile(ctx context.Context) (*model.Profile, error) {
	resp, err := c.httpClient.GET(ctx, pathProfile)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	var profile model.Profile
	if err := resp.DecodeJSON(&profile); err != nil {
		return nil, fmt.Errorf("could not decode profile: %w", err)
	}
	return &profile, nil
}

func (c *API) UpdateProfile(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	resp, err := c.httpClient.PUT(ctx, pathProfile, profile)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	var updated model.Profile
	if err := resp.DecodeJSON(&updated); err != nil {
		return nil, fmt.Errorf("could not decode profile: %w", err)
	}
	return &updated, nil
}

func (c *API) Search(ctx context.Context, criteria model.SearchCriteria) ([]model.VehicleOffer, error) {
	resp, err := c.httpClient.POST(ctx, pathSearch, criteria)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	var result model.SearchResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, fmt.Errorf("could not decode search result: %w", err)
	}
	if result.Vehicles == nil {
		result.Vehicles = []model.VehicleOffer{}
	}
	return result.Vehicles, nil
}

func (c *API) Book(ctx context.Context, req model.BookRequest) (*model.BookingRecord, error) {
	resp, err := c.httpClient.POST(ctx, pathBook, req)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	var record model.BookingRecord
	if err := resp.DecodeJSON(&record); err != nil {
		return nil, fmt.Errorf("could not decode booking: %w", err)
	}
	return &record, nil
}

// DirectBooking posts the whole intent. The endpoint answers with a
// message and reports failures as {"error": "..."}.
func (c *API) DirectBooking(ctx context.Context, intent *model.BookingIntent) (string, error) {
	resp, err := c.httpClient.POST(ctx, pathDirectBook, intent)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return decodeMessage(resp), nil
}

func (c *API) GetBooking(ctx context.Context, id string) (*model.BookingRecord, error) {
	resp, err := c.httpClient.GET(ctx, fmt.Sprintf(pathBookingByID, url.PathEscape(id)))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	var record model.BookingRecord
	if err := resp.DecodeJSON(&record); err != nil {
		return nil, fmt.Errorf("could not decode booking: %w", err)
	}
	return &record, nil
}

func (c *API) Contact(ctx context.Context, msg model.ContactMessage) (string, error) {
	resp, err := c.httpClient.POST(ctx, pathContact, msg)
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", &APIError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return decodeMessage(resp), nil
}

// ForgetSession drops the server session cookies after logout.
func (c *API) ForgetSession() {
	c.httpClient.ForgetCookies()
}

// decodeUser accepts both {"user": {...}} and a bare user object.
func decodeUser(resp *Response) (*model.Session, error) {
	var wrapper struct {
		User *model.Session `json:"user"`
	}
	if err := resp.DecodeJSON(&wrapper); err != nil {
		return nil, fmt.Errorf("could not decode user: %w", err)
	}
	if wrapper.User != nil && wrapper.User.Username != "" {
		return wrapper.User, nil
	}

	var session model.Session
	if err := resp.DecodeJSON(&session); err != nil {
		return nil, fmt.Errorf("could not decode user: %w", err)
	}
	if session.Username == "" {
		return nil, fmt.Errorf("response carries no user: %s", resp.ToString())
	}
	return &session, nil
}

func decodeMessage(resp *Response) string {
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Detail
}

// FormatID renders a numeric server id the way it appears in URLs.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
