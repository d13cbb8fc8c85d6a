package webclient

import (
	"sync"
	"time"

	"msktravels/pkg/logger"
)

// Registry holds live visitors and drops the ones idle for longer than ttl.
type Registry struct {
	mu       sync.Mutex
	visitors map[string]*Visitor
	factory  Factory
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRegistry(factory Factory, ttl time.Duration, log *logger.Logger) *Registry {
	r := &Registry{
		visitors: make(map[string]*Visitor),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	go r.janitor()

	return r
}

func (r *Registry) janitor() {
	ticker := time.NewTicker(r.sweepInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.sweep(); n > 0 {
				r.log.Info("Idle visitors expired", "count", n)
			}
		case <-r.stopCh:
			return
		}
	}
}

func (r *Registry) sweepInterval() time.Duration {
	if interval := r.ttl / 4; interval > time.Second {
		return interval
	}
	return time.Second
}

func (r *Registry) sweep() int {
	now := r.now()

	r.mu.Lock()
	var expired []*Visitor
	for id, v := range r.visitors {
		if v.idleSince(now) > r.ttl {
			expired = append(expired, v)
			delete(r.visitors, id)
		}
	}
	r.mu.Unlock()

	for _, v := range expired {
		v.Close()
	}
	return len(expired)
}

// Get returns the visitor for id, creating it when unknown. created
// reports whether a new visitor was built.
func (r *Registry) Get(id string) (v *Visitor, created bool, err error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.visitors[id]; ok {
		existing.touch(now)
		return existing, false, nil
	}

	v, err = r.factory(id)
	if err != nil {
		return nil, false, err
	}
	v.touch(now)
	r.visitors[id] = v
	r.log.Debug("Visitor created", "visitor_id", id)
	return v, true, nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Stop ends the janitor and releases every visitor.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)

		r.mu.Lock()
		visitors := r.visitors
		r.visitors = make(map[string]*Visitor)
		r.mu.Unlock()

		for _, v := range visitors {
			v.Close()
		}
	})
}
