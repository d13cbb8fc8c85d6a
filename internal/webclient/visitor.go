package webclient

import (
	"fmt"
	"sync"
	"time"

	"msktravels/internal/catalog"
	"msktravels/internal/contact"
	"msktravels/internal/dispatch"
	"msktravels/internal/handoff"
	"msktravels/internal/search"
	"msktravels/internal/session"
	"msktravels/internal/workflow"
	"msktravels/pkg/client"
	"msktravels/pkg/config"
	"msktravels/pkg/logger"
)

// Visitor is everything the service keeps for one browser.
type Visitor struct {
	ID       string
	API      *client.API
	Session  *session.Holder
	Workflow *workflow.Workflow
	Handoff  *handoff.Store
	Contact  *contact.Service
	Log      *logger.Logger

	mu          sync.Mutex
	lastSeen    time.Time
	loginPrompt string
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.lastSeen)
}

func (v *Visitor) promptLogin(action string) {
	v.mu.Lock()
	v.loginPrompt = action
	v.mu.Unlock()
}

// LoginPrompt is the action that last asked the visitor to sign in, if any.
func (v *Visitor) LoginPrompt() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loginPrompt
}

func (v *Visitor) clearLoginPrompt() {
	v.promptLogin("")
}

func (v *Visitor) Close() {
	v.Handoff.Stop()
}

// Factory builds a fresh visitor for an id.
type Factory func(id string) (*Visitor, error)

// NewFactory wires the per-visitor components. relay may be nil when no
// component is configured to use it.
func NewFactory(cfg *config.Config, relay client.Relay) Factory {
	criteriaValidator := search.NewCriteriaValidator(cfg.Log)

	return func(id string) (*Visitor, error) {
		log := cfg.Log.ForVisitor(id)
		api := client.NewAPI(cfg.APIBaseURL, cfg.APITimeout)

		scoped := *cfg
		scoped.Log = log

		dispatcher, err := dispatch.New(&scoped, api, relay)
		if err != nil {
			return nil, fmt.Errorf("failed to build dispatcher: %w", err)
		}

		holder := session.NewHolder(api, log)

		contactService, err := contact.NewService(&scoped, holder, api, relay)
		if err != nil {
			return nil, fmt.Errorf("failed to build contact service: %w", err)
		}

		v := &Visitor{
			ID:      id,
			API:     api,
			Session: holder,
			Handoff: handoff.NewStore(cfg.HandoffTTL, log),
			Contact: contactService,
			Log:     log,
		}

		v.Workflow = workflow.New(workflow.Deps{
			Validator:  criteriaValidator,
			Cache:      search.NewCache(),
			Packages:   catalog.NewSelector(),
			Handoff:    v.Handoff,
			Sessions:   holder,
			Search:     api,
			Dispatcher: dispatcher,
			Log:        log,
		}, workflow.Options{
			SubmitTimeout:      cfg.SubmitTimeout,
			SearchRequiresAuth: cfg.SearchRequiresAuth,
			LoginPrompt:        v.promptLogin,
		})

		return v, nil
	}
}
