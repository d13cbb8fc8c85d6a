package session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"msktravels/pkg/client"
	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/logger"
	"msktravels/pkg/model"
	"msktravels/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const (
	msgPasswordMismatch   = "Passwords do not match"
	msgRegistrationFailed = "Registration failed. Please try again."
	msgMissingCredentials = "Please enter your username and password."
	msgProfileLoadFailed  = "Failed to load profile"
	msgProfileSaveFailed  = "Failed to update profile"
	msgInvalidPhone       = "Enter a valid phone number"
)

// API is the part of the travel API the holder talks to.
type API interface {
	FetchCSRFToken(ctx context.Context) error
	Login(ctx context.Context, creds model.Credentials) (*model.Session, error)
	Logout(ctx context.Context) error
	Register(ctx context.Context, reg model.Registration) (*model.Session, error)
	Profile(ctx context.Context) (*model.Profile, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) (*model.Profile, error)
	ForgetSession()
}

// Holder owns the identity of one visitor.
type Holder struct {
	api      API
	validate *validator.Validate
	log      *logger.Logger

	mu      sync.RWMutex
	current *model.Session
}

func NewHolder(api API, log *logger.Logger) *Holder {
	return &Holder{
		api:      api,
		validate: validator.New(),
		log:      log,
	}
}

func (h *Holder) Current() (*model.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.current == nil {
		return nil, false
	}
	s := *h.current
	return &s, true
}

func (h *Holder) set(s *model.Session) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
}

// Bootstrap primes the anti-forgery cookie. A failure only gets logged;
// later unsafe calls will be rejected by the API and reported there.
func (h *Holder) Bootstrap(ctx context.Context) {
	if err := h.api.FetchCSRFToken(ctx); err != nil {
		h.log.Warn("Failed to fetch CSRF token", "error", err)
	}
}

func (h *Holder) Login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	creds.Username = sanitizer.NormalizeUsername(creds.Username)
	if err := h.validate.Struct(creds); err != nil {
		return nil, apperrors.ReasonValidation(msgMissingCredentials)
	}

	s, err := h.api.Login(ctx, creds)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			h.log.Info("Login rejected", "username", creds.Username, "status", apiErr.StatusCode)
			return nil, apperrors.Auth(apiErr.Detail())
		}
		h.log.Warn("Login request failed", "username", creds.Username, "error", err)
		return nil, apperrors.Network("", err)
	}

	h.set(s)
	h.log.Info("Visitor logged in", "username", s.Username)
	return copyOf(s), nil
}

// Logout always forgets the local session, whatever the API answers.
func (h *Holder) Logout(ctx context.Context) {
	if err := h.api.Logout(ctx); err != nil {
		h.log.Warn("Remote logout failed, clearing local session anyway", "error", err)
	}
	h.api.ForgetSession()
	h.set(nil)
}

func (h *Holder) Register(ctx context.Context, reg model.Registration) (*model.Session, error) {
	reg.Username = sanitizer.NormalizeUsername(reg.Username)
	reg.Email = sanitizer.NormalizeEmail(reg.Email)
	reg.FirstName = sanitizer.NormalizeName(reg.FirstName)
	reg.LastName = sanitizer.NormalizeName(reg.LastName)
	reg.Phone = sanitizer.NormalizePhone(reg.Phone)

	if reg.Password != reg.ConfirmPassword {
		return nil, apperrors.FieldValidation("confirm_password", msgPasswordMismatch)
	}

	if err := h.validate.Struct(reg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return nil, translateFieldError(validationErrs[0])
		}
		return nil, apperrors.ReasonValidation(msgRegistrationFailed)
	}
	if reg.Phone != "" && !sanitizer.IsPhone(reg.Phone) {
		return nil, apperrors.FieldValidation("phone", msgInvalidPhone)
	}

	s, err := h.api.Register(ctx, reg)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			h.log.Info("Registration rejected", "username", reg.Username, "status", apiErr.StatusCode)
			return nil, registrationError(apiErr)
		}
		h.log.Warn("Registration request failed", "username", reg.Username, "error", err)
		return nil, apperrors.Network("", err)
	}

	h.set(s)
	h.log.Info("Visitor registered", "username", s.Username)
	return copyOf(s), nil
}

// registrationError picks the first rejected field in the order the
// registration form shows them.
func registrationError(apiErr *client.APIError) error {
	if msg, ok := apiErr.FieldMessage("username"); ok {
		return apperrors.FieldValidation("username", "Username: "+msg)
	}
	if msg, ok := apiErr.FieldMessage("email"); ok {
		return apperrors.FieldValidation("email", "Email: "+msg)
	}
	if msg, ok := apiErr.FieldMessage("non_field_errors"); ok {
		return apperrors.ReasonValidation(msg)
	}
	return apperrors.ReasonValidation(msgRegistrationFailed)
}

var jsonFieldNames = map[string]string{
	"Username":        "username",
	"Email":           "email",
	"FirstName":       "first_name",
	"LastName":        "last_name",
	"Phone":           "phone",
	"Password":        "password",
	"ConfirmPassword": "confirm_password",
}

func translateFieldError(fe validator.FieldError) error {
	field := jsonFieldNames[fe.Field()]
	if field == "" {
		field = fe.Field()
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = field + " is required"
	case "email":
		msg = "Enter a valid email address."
	case "max":
		msg = field + " is too long"
	default:
		msg = field + " is invalid"
	}
	return apperrors.FieldValidation(field, msg)
}

func (h *Holder) Profile(ctx context.Context) (*model.Profile, error) {
	if _, ok := h.Current(); !ok {
		return nil, apperrors.AuthorizationRequired("view your profile")
	}

	profile, err := h.api.Profile(ctx)
	if err != nil {
		return nil, h.profileError(err, msgProfileLoadFailed, false)
	}
	return profile, nil
}

// UpdateProfile merges the update into the current profile and saves the
// whole record. The local session follows the saved values.
func (h *Holder) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (*model.Profile, error) {
	if _, ok := h.Current(); !ok {
		return nil, apperrors.AuthorizationRequired("update your profile")
	}
	if update.Empty() {
		return nil, apperrors.InvalidInput("Nothing to update")
	}

	normalizeUpdate(&update)
	if err := h.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return nil, translateFieldError(validationErrs[0])
		}
		return nil, apperrors.ReasonValidation(msgProfileSaveFailed)
	}

	profile, err := h.api.Profile(ctx)
	if err != nil {
		return nil, h.profileError(err, msgProfileLoadFailed, false)
	}
	applyUpdate(profile, update)

	saved, err := h.api.UpdateProfile(ctx, profile)
	if err != nil {
		return nil, h.profileError(err, msgProfileSaveFailed, true)
	}

	h.set(saved.Session())
	h.log.Info("Profile updated", "username", saved.Username)
	return saved, nil
}

func (h *Holder) profileError(err error, fallback string, useDetail bool) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		h.log.Warn("Profile request failed", "error", err)
		return apperrors.Network(fallback, err)
	}

	h.log.Info("Profile request rejected", "status", apiErr.StatusCode)
	msg := fallback
	if useDetail && apiErr.Detail() != "" {
		msg = apiErr.Detail()
	}
	switch {
	case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
		h.set(nil)
		return apperrors.Auth(msg)
	case apiErr.StatusCode >= http.StatusInternalServerError:
		return apperrors.Network(msg, err)
	default:
		return apperrors.ReasonValidation(msg)
	}
}

func normalizeUpdate(u *model.ProfileUpdate) {
	if u.Email != nil {
		v := sanitizer.NormalizeEmail(*u.Email)
		u.Email = &v
	}
	if u.FirstName != nil {
		v := sanitizer.NormalizeName(*u.FirstName)
		u.FirstName = &v
	}
	if u.LastName != nil {
		v := sanitizer.NormalizeName(*u.LastName)
		u.LastName = &v
	}
	if u.Phone != nil {
		v := sanitizer.NormalizePhone(*u.Phone)
		u.Phone = &v
	}
}

func applyUpdate(p *model.Profile, u model.ProfileUpdate) {
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
}

func copyOf(s *model.Session) *model.Session {
	c := *s
	return &c
}
