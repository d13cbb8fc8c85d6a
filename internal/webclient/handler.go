package webclient

import (
	"errors"
	"net/http"
	"time"

	"msktravels/internal/catalog"
	"msktravels/pkg/client"
	apperrors "msktravels/pkg/errors"
	httputil "msktravels/pkg/http"
	"msktravels/pkg/logger"
	"msktravels/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	msgLoggedOut      = "Logged out successfully"
	msgProfileUpdated = "Profile updated successfully!"
	msgBookingDone    = "Booking confirmed successfully!"
	msgBookingReset   = "Booking cleared"
)

type Handler struct {
	registry *Registry
	tokens   *VisitorTokens
	log      *logger.Logger
	now      func() time.Time
}

func NewHandler(registry *Registry, tokens *VisitorTokens, log *logger.Logger) *Handler {
	return &Handler{
		registry: registry,
		tokens:   tokens,
		log:      log,
		now:      time.Now,
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/login", h.withVisitor(h.Login))
	router.POST("/api/v1/auth/logout", h.withVisitor(h.Logout))
	router.POST("/api/v1/auth/register", h.withVisitor(h.Register))
	router.GET("/api/v1/auth/session", h.withVisitor(h.Session))

	router.GET("/api/v1/profile", h.withVisitor(h.GetProfile))
	router.PUT("/api/v1/profile", h.withVisitor(h.UpdateProfile))

	router.GET("/api/v1/packages", h.Packages)

	router.GET("/api/v1/booking", h.withVisitor(h.Snapshot))
	router.PUT("/api/v1/booking/package", h.withVisitor(h.SelectPackage))
	router.DELETE("/api/v1/booking/package", h.withVisitor(h.ClearPackage))
	router.POST("/api/v1/booking/search", h.withVisitor(h.Search))
	router.POST("/api/v1/booking/offer", h.withVisitor(h.SelectOffer))
	router.GET("/api/v1/booking/review", h.withVisitor(h.Review))
	router.POST("/api/v1/booking/confirm", h.withVisitor(h.Confirm))
	router.POST("/api/v1/booking/reset", h.withVisitor(h.Reset))

	router.GET("/api/v1/bookings/:id", h.withVisitor(h.GetBooking))

	router.POST("/api/v1/contact", h.withVisitor(h.Contact))
}

type visitorHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, v *Visitor)

// withVisitor resolves the visitor from the signed cookie, starting a new
// one when the cookie is missing or invalid, and refreshes the cookie.
func (h *Handler) withVisitor(next visitorHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := ""
		if c, err := r.Cookie(CookieName); err == nil {
			parsed, err := h.tokens.Parse(c.Value)
			if err != nil {
				h.log.Debug("Ignoring visitor cookie", "error", err)
			}
			id = parsed
		}
		if id == "" {
			id = newVisitorID()
		}

		v, created, err := h.registry.Get(id)
		if err != nil {
			h.log.Error("Failed to create visitor", "visitor_id", id, "error", err)
			httputil.WriteError(w, apperrors.Internal("Could not start a session", err))
			return
		}
		if created {
			v.Session.Bootstrap(r.Context())
		}

		token, err := h.tokens.Issue(id, h.now())
		if err != nil {
			h.log.Error("Failed to sign visitor cookie", "visitor_id", id, "error", err)
			httputil.WriteError(w, apperrors.Internal("Could not start a session", err))
			return
		}
		http.SetCookie(w, h.tokens.Cookie(token))

		next(w, r, ps, v)
	}
}

func (h *Handler) fail(w http.ResponseWriter, v *Visitor, handler string, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Code != apperrors.CodeNetwork && appErr.Code != apperrors.CodeSubmission {
		v.Log.Error("Request failed", "handler", handler, "error", err)
	}
	httputil.WriteError(w, err)
}

// ────────────────────────────────────────────────
// Auth and profile
// ────────────────────────────────────────────────

type sessionResponse struct {
	Authenticated bool           `json:"authenticated"`
	User          *model.Session `json:"user,omitempty"`
	LoginPrompt   string         `json:"login_prompt,omitempty"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var creds model.Credentials
	if err := httputil.DecodeJSON(r, &creds, false); err != nil {
		h.fail(w, v, "Login", err)
		return
	}

	s, err := v.Session.Login(r.Context(), creds)
	if err != nil {
		h.fail(w, v, "Login", err)
		return
	}
	v.clearLoginPrompt()

	httputil.WriteSuccess(w, sessionResponse{Authenticated: true, User: s})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	v.Session.Logout(r.Context())
	httputil.WriteMessage(w, msgLoggedOut, sessionResponse{Authenticated: false})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var reg model.Registration
	if err := httputil.DecodeJSON(r, &reg, false); err != nil {
		h.fail(w, v, "Register", err)
		return
	}

	s, err := v.Session.Register(r.Context(), reg)
	if err != nil {
		h.fail(w, v, "Register", err)
		return
	}
	v.clearLoginPrompt()

	httputil.WriteCreated(w, sessionResponse{Authenticated: true, User: s})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	s, ok := v.Session.Current()
	httputil.WriteSuccess(w, sessionResponse{
		Authenticated: ok,
		User:          s,
		LoginPrompt:   v.LoginPrompt(),
	})
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	profile, err := v.Session.Profile(r.Context())
	if err != nil {
		h.fail(w, v, "GetProfile", err)
		return
	}
	httputil.WriteSuccess(w, profile)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var update model.ProfileUpdate
	if err := httputil.DecodeJSON(r, &update, false); err != nil {
		h.fail(w, v, "UpdateProfile", err)
		return
	}

	profile, err := v.Session.UpdateProfile(r.Context(), update)
	if err != nil {
		h.fail(w, v, "UpdateProfile", err)
		return
	}
	httputil.WriteMessage(w, msgProfileUpdated, profile)
}

// ────────────────────────────────────────────────
// Booking workflow
// ────────────────────────────────────────────────

func (h *Handler) Packages(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	httputil.WriteSuccess(w, catalog.All())
}

type selectPackageRequest struct {
	PackageID string `json:"package_id"`
}

type selectOfferRequest struct {
	VehicleID int64 `json:"vehicle_id"`
}

type searchResponse struct {
	Vehicles       []model.VehicleOffer  `json:"vehicles"`
	SearchCriteria *model.SearchCriteria `json:"search_criteria,omitempty"`
}

func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	httputil.WriteSuccess(w, v.Workflow.Snapshot())
}

func (h *Handler) SelectPackage(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var req selectPackageRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.fail(w, v, "SelectPackage", err)
		return
	}
	if req.PackageID == "" {
		h.fail(w, v, "SelectPackage", apperrors.FieldValidation("package_id", "package_id is required"))
		return
	}

	pkg, err := v.Workflow.SelectPackage(req.PackageID)
	if err != nil {
		h.fail(w, v, "SelectPackage", err)
		return
	}
	httputil.WriteSuccess(w, pkg)
}

func (h *Handler) ClearPackage(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	if err := v.Workflow.ClearPackage(); err != nil {
		h.fail(w, v, "ClearPackage", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var raw model.RawCriteria
	if err := httputil.DecodeJSON(r, &raw, false); err != nil {
		h.fail(w, v, "Search", err)
		return
	}

	offers, err := v.Workflow.Search(r.Context(), raw)
	if err != nil {
		h.fail(w, v, "Search", err)
		return
	}

	resp := searchResponse{Vehicles: offers}
	if criteria := v.Workflow.Snapshot().Criteria; criteria != nil {
		resp.SearchCriteria = criteria
	}
	httputil.WriteSuccess(w, resp)
}

func (h *Handler) SelectOffer(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var req selectOfferRequest
	if err := httputil.DecodeJSON(r, &req, false); err != nil {
		h.fail(w, v, "SelectOffer", err)
		return
	}
	if req.VehicleID == 0 {
		h.fail(w, v, "SelectOffer", apperrors.FieldValidation("vehicle_id", "vehicle_id is required"))
		return
	}

	offer, err := v.Workflow.SelectOffer(req.VehicleID)
	if err != nil {
		h.fail(w, v, "SelectOffer", err)
		return
	}
	httputil.WriteSuccess(w, offer)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	review, err := v.Workflow.Review()
	if err != nil {
		h.fail(w, v, "Review", err)
		return
	}
	httputil.WriteSuccess(w, review)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	confirmation, err := v.Workflow.Confirm(r.Context())
	if err != nil {
		h.fail(w, v, "Confirm", err)
		return
	}

	msg := msgBookingDone
	if confirmation.Receipt != nil && confirmation.Receipt.Message != "" {
		msg = confirmation.Receipt.Message
	}
	httputil.WriteMessage(w, msg, confirmation)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	if err := v.Workflow.Reset(); err != nil {
		h.fail(w, v, "Reset", err)
		return
	}
	httputil.WriteMessage(w, msgBookingReset, v.Workflow.Snapshot())
}

// GetBooking looks up a stored booking on the travel API.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params, v *Visitor) {
	id := ps.ByName("id")

	if _, ok := v.Session.Current(); !ok {
		h.fail(w, v, "GetBooking", apperrors.AuthorizationRequired("view your booking"))
		return
	}

	record, err := v.API.GetBooking(r.Context(), id)
	if err != nil {
		h.fail(w, v, "GetBooking", bookingLookupError(id, err))
		return
	}
	httputil.WriteSuccess(w, record)
}

func bookingLookupError(id string, err error) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return apperrors.Network("", err)
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return apperrors.NotFoundWithID("Booking", id)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.AuthorizationRequired("view your booking")
	default:
		return apperrors.Network(apiErr.Detail(), err)
	}
}

// ────────────────────────────────────────────────
// Contact
// ────────────────────────────────────────────────

func (h *Handler) Contact(w http.ResponseWriter, r *http.Request, _ httprouter.Params, v *Visitor) {
	var form model.ContactMessage
	if err := httputil.DecodeJSON(r, &form, false); err != nil {
		h.fail(w, v, "Contact", err)
		return
	}

	ack, err := v.Contact.Submit(r.Context(), form)
	if err != nil {
		h.fail(w, v, "Contact", err)
		return
	}
	httputil.WriteMessage(w, ack, nil)
}
