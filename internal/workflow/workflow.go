package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"msktravels/internal/catalog"
	"msktravels/internal/dispatch"
	"msktravels/internal/handoff"
	"msktravels/internal/search"
	"msktravels/pkg/client"
	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/logger"
	"msktravels/pkg/model"
)

type State string

const (
	StateIdle        State = "idle"
	StateSearched    State = "searched"
	StateOfferChosen State = "offer_chosen"
	StateSubmitting  State = "submitting"
	StateConfirmed   State = "confirmed"
	StateFailed      State = "failed"
)

const (
	flowSearch  = "search"
	flowConfirm = "confirm"

	activitySearching  = "Searching"
	activitySubmitting = "Submitting"

	actionSearch = "search for vehicles"
	actionBook   = "book a vehicle"

	msgSearchFailed = "Failed to fetch vehicles."
)

type Sessions interface {
	Current() (*model.Session, bool)
}

type SearchAPI interface {
	Search(ctx context.Context, criteria model.SearchCriteria) ([]model.VehicleOffer, error)
}

type Deps struct {
	Validator  *search.CriteriaValidator
	Cache      *search.Cache
	Packages   *catalog.Selector
	Handoff    *handoff.Store
	Sessions   Sessions
	Search     SearchAPI
	Dispatcher dispatch.Dispatcher
	Log        *logger.Logger
}

type Options struct {
	SubmitTimeout      time.Duration
	SearchRequiresAuth bool

	// LoginPrompt is called when an action is refused for lack of a session.
	LoginPrompt func(action string)

	// OnTransition observes every state change, including the transient
	// submitting and failed states.
	OnTransition func(from, to State)
}

// Workflow is the booking state machine of one visitor.
type Workflow struct {
	deps   Deps
	opts   Options
	engine *Engine
	now    func() time.Time

	mu           sync.Mutex
	state        State
	inFlight     string
	chosen       *model.VehicleOffer
	confirmation *model.Confirmation
	lastError    string
}

func New(deps Deps, opts Options) *Workflow {
	w := &Workflow{
		deps:  deps,
		opts:  opts,
		now:   time.Now,
		state: StateIdle,
	}

	w.engine = NewEngine(
		NewFlow(flowSearch,
			NewStep("validate", w.validateCriteria),
			NewStep("authorize", w.authorizeSearch),
			NewStep("fetch", w.fetchOffers),
		),
		NewFlow(flowConfirm,
			NewStep("authorize", w.authorizeBooking),
			NewStep("assemble", w.assembleIntent),
			NewStep("submit", w.submitIntent),
		),
	)

	return w
}

// acquire admits one search or submission at a time.
func (w *Workflow) acquire(activity string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight != "" {
		return apperrors.Busy(w.inFlight)
	}
	w.inFlight = activity
	return nil
}

func (w *Workflow) release() {
	w.mu.Lock()
	w.inFlight = ""
	w.mu.Unlock()
}

// rejectWhileBusy is for quick data operations that must not interleave
// with a call in flight.
func (w *Workflow) rejectWhileBusy(activities ...string) error {
	if w.inFlight == "" {
		return nil
	}
	if len(activities) == 0 {
		return apperrors.Busy(w.inFlight)
	}
	for _, a := range activities {
		if w.inFlight == a {
			return apperrors.Busy(w.inFlight)
		}
	}
	return nil
}

// transition must be called with w.mu held.
func (w *Workflow) transition(to State) {
	from := w.state
	w.state = to
	w.deps.Log.Debug("Booking state changed", "from", from, "to", to)
	if w.opts.OnTransition != nil {
		w.opts.OnTransition(from, to)
	}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Search validates the form, asks the travel API for offers and records
// them. A failure of any kind leaves the machine where it was.
func (w *Workflow) Search(ctx context.Context, raw model.RawCriteria) ([]model.VehicleOffer, error) {
	if err := w.acquire(activitySearching); err != nil {
		return nil, err
	}
	defer w.release()

	fc := &flowContext{raw: raw}
	if err := w.engine.Run(ctx, flowSearch, fc); err != nil {
		w.deps.Log.Info("Search failed", "error", err)
		return nil, err
	}

	w.deps.Cache.Record(*fc.criteria, fc.offers)

	w.mu.Lock()
	w.chosen = nil
	w.confirmation = nil
	w.lastError = ""
	w.transition(StateSearched)
	w.mu.Unlock()

	handoff.Delete(w.deps.Handoff, handoff.SelectedOffer)
	handoff.Put(w.deps.Handoff, handoff.SearchCriteria, *fc.criteria)

	w.deps.Log.Info("Search completed",
		"from_location", fc.criteria.Origin,
		"to_location", fc.criteria.Destination,
		"offers", len(fc.offers),
	)
	return w.deps.Cache.Offers(), nil
}

func (w *Workflow) validateCriteria(_ context.Context, fc *flowContext) error {
	criteria, err := w.deps.Validator.Validate(fc.raw)
	if err != nil {
		return err
	}
	fc.criteria = criteria
	return nil
}

func (w *Workflow) authorizeSearch(_ context.Context, fc *flowContext) error {
	if !w.opts.SearchRequiresAuth {
		return nil
	}
	session, ok := w.deps.Sessions.Current()
	if !ok {
		w.promptLogin(actionSearch)
		return apperrors.AuthorizationRequired(actionSearch)
	}
	fc.session = session
	return nil
}

func (w *Workflow) fetchOffers(ctx context.Context, fc *flowContext) error {
	offers, err := w.deps.Search.Search(ctx, *fc.criteria)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail() != "" {
			return apperrors.Network(apiErr.Detail(), err)
		}
		return apperrors.Network(msgSearchFailed, err)
	}
	fc.offers = offers
	return nil
}

func (w *Workflow) SelectPackage(id string) (*model.Package, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rejectWhileBusy(activitySubmitting); err != nil {
		return nil, err
	}
	return w.deps.Packages.Select(id)
}

func (w *Workflow) ClearPackage() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rejectWhileBusy(activitySubmitting); err != nil {
		return err
	}
	w.deps.Packages.Clear()
	return nil
}

// SelectOffer picks one of the cached offers and leaves it, with the
// criteria, in the hand-off store for the review step.
func (w *Workflow) SelectOffer(offerID int64) (*model.VehicleOffer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.rejectWhileBusy(); err != nil {
		return nil, err
	}
	if w.state != StateSearched && w.state != StateOfferChosen {
		return nil, invalidState(ErrNoSearch)
	}

	offer, ok := w.deps.Cache.Find(offerID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Offer", client.FormatID(offerID))
	}
	criteria, _ := w.deps.Cache.Criteria()

	w.chosen = &offer
	w.lastError = ""
	w.transition(StateOfferChosen)

	handoff.Put(w.deps.Handoff, handoff.SelectedOffer, offer)
	handoff.Put(w.deps.Handoff, handoff.SearchCriteria, criteria)

	chosen := offer
	return &chosen, nil
}

// Review is what the visitor sees before confirming.
type Review struct {
	Offer    model.VehicleOffer   `json:"offer"`
	Criteria model.SearchCriteria `json:"criteria"`
	Package  *model.Package       `json:"package,omitempty"`
	Intent   *model.BookingIntent `json:"intent"`
}

// Review reads the hand-off entries written by SelectOffer.
func (w *Workflow) Review() (*Review, error) {
	offer, ok := handoff.Get(w.deps.Handoff, handoff.SelectedOffer)
	if !ok {
		return nil, invalidState(ErrNothingToReview)
	}
	criteria, ok := handoff.Get(w.deps.Handoff, handoff.SearchCriteria)
	if !ok {
		return nil, invalidState(ErrNothingToReview)
	}

	pkg, _ := w.deps.Packages.Selected()
	session, _ := w.deps.Sessions.Current()

	return &Review{
		Offer:    offer,
		Criteria: criteria,
		Package:  pkg,
		Intent:   AssembleIntent(session, offer, criteria, pkg),
	}, nil
}

// Confirm submits the chosen offer. The submission runs detached from
// ctx's cancellation and is bounded by the submit timeout instead.
func (w *Workflow) Confirm(ctx context.Context) (*model.Confirmation, error) {
	if err := w.acquire(activitySubmitting); err != nil {
		return nil, err
	}
	defer w.release()

	w.mu.Lock()
	if w.state != StateOfferChosen || w.chosen == nil {
		w.mu.Unlock()
		return nil, invalidState(ErrNoOffer)
	}
	fc := &flowContext{offer: *w.chosen}
	w.mu.Unlock()

	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.opts.SubmitTimeout)
	defer cancel()

	err := w.engine.Run(submitCtx, flowConfirm, fc)
	if err != nil {
		if fc.submitted {
			w.recordFailure(err)
		}
		return nil, err
	}

	confirmation := model.NewConfirmation(fc.intent, fc.receipt, w.now())

	w.deps.Cache.Clear()
	w.deps.Packages.Clear()
	w.deps.Handoff.Clear()

	w.mu.Lock()
	w.chosen = nil
	w.confirmation = confirmation
	w.lastError = ""
	w.transition(StateConfirmed)
	w.mu.Unlock()

	w.deps.Log.Info("Booking confirmed",
		"vehicle_id", fc.intent.VehicleID,
		"confirmation_id", confirmation.ConfirmationID,
		"total", confirmation.Total.String(),
	)
	return confirmation, nil
}

func (w *Workflow) recordFailure(err error) {
	detail := apperrors.AsAppError(err).Detail()
	if detail == "" {
		detail = apperrors.AsAppError(err).Message
	}

	w.mu.Lock()
	w.lastError = detail
	w.transition(StateFailed)
	w.transition(StateOfferChosen)
	w.mu.Unlock()

	w.deps.Log.Warn("Booking submission failed", "detail", detail, "error", err)
}

func (w *Workflow) authorizeBooking(_ context.Context, fc *flowContext) error {
	session, ok := w.deps.Sessions.Current()
	if !ok {
		w.promptLogin(actionBook)
		return apperrors.AuthorizationRequired(actionBook)
	}
	fc.session = session
	return nil
}

func (w *Workflow) assembleIntent(_ context.Context, fc *flowContext) error {
	criteria, ok := w.deps.Cache.Criteria()
	if !ok {
		return invalidState(ErrNoSearch)
	}
	fc.pkg, _ = w.deps.Packages.Selected()
	fc.intent = AssembleIntent(fc.session, fc.offer, criteria, fc.pkg)
	return nil
}

func (w *Workflow) submitIntent(ctx context.Context, fc *flowContext) error {
	w.mu.Lock()
	w.transition(StateSubmitting)
	w.mu.Unlock()
	fc.submitted = true

	receipt, err := w.deps.Dispatcher.Submit(ctx, fc.intent)
	if err != nil {
		return err
	}
	fc.receipt = receipt
	return nil
}

func (w *Workflow) promptLogin(action string) {
	if w.opts.LoginPrompt != nil {
		w.opts.LoginPrompt(action)
	}
}

// Reset discards everything and returns to idle.
func (w *Workflow) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rejectWhileBusy(); err != nil {
		return err
	}

	w.deps.Cache.Clear()
	w.deps.Packages.Clear()
	w.deps.Handoff.Clear()
	w.chosen = nil
	w.confirmation = nil
	w.lastError = ""
	w.transition(StateIdle)
	return nil
}

type Snapshot struct {
	State        State                 `json:"state"`
	Busy         string                `json:"busy,omitempty"`
	Criteria     *model.SearchCriteria `json:"criteria,omitempty"`
	Offers       []model.VehicleOffer  `json:"offers"`
	ChosenOffer  *model.VehicleOffer   `json:"chosen_offer,omitempty"`
	Package      *model.Package        `json:"package,omitempty"`
	Confirmation *model.Confirmation   `json:"confirmation,omitempty"`
	LastError    string                `json:"last_error,omitempty"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		State:        w.state,
		Offers:       w.deps.Cache.Offers(),
		Confirmation: w.confirmation,
		LastError:    w.lastError,
	}
	if w.inFlight != "" {
		snap.Busy = apperrors.Busy(w.inFlight).Message
	}
	if snap.Offers == nil {
		snap.Offers = []model.VehicleOffer{}
	}
	if criteria, ok := w.deps.Cache.Criteria(); ok {
		snap.Criteria = &criteria
	}
	if w.chosen != nil {
		chosen := *w.chosen
		snap.ChosenOffer = &chosen
	}
	snap.Package, _ = w.deps.Packages.Selected()
	return snap
}
