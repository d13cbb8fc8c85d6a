package catalog

import (
	"sync"

	apperrors "msktravels/pkg/errors"
	"msktravels/pkg/model"
)

var packages = []model.Package{
	{
		ID:          "1day",
		Name:        "1 Day Trip",
		Price:       model.NewPrice(1500),
		Duration:    "1 Day",
		MaxDistance: "200 km",
		Description: "Perfect for quick getaways and day trips. Includes fuel, driver, and basic amenities.",
		Features: []string{
			"Up to 8 hours of travel",
			"Fuel included",
			"Professional driver",
			"Basic amenities",
			"Flexible pickup/drop",
		},
	},
	{
		ID:          "3days",
		Name:        "3 Days Trip",
		Price:       model.NewPrice(4500),
		Duration:    "3 Days",
		MaxDistance: "600 km",
		Description: "Ideal for weekend trips and short vacations. Extended comfort with premium features.",
		Features: []string{
			"3 days unlimited travel",
			"Fuel included",
			"Professional driver",
			"Premium amenities",
			"Hotel recommendations",
			"24/7 support",
		},
	},
	{
		ID:          "5days",
		Name:        "5 Days Trip",
		Price:       model.NewPrice(7500),
		Duration:    "5 Days",
		MaxDistance: "1000 km",
		Description: "Perfect for extended vacations and business trips. Luxury experience with full support.",
		Features: []string{
			"5 days unlimited travel",
			"Fuel included",
			"Professional driver",
			"Luxury amenities",
			"Hotel bookings",
			"24/7 premium support",
			"Travel insurance",
		},
	},
}

// All returns the catalog in display order.
func All() []model.Package {
	out := make([]model.Package, len(packages))
	for i, p := range packages {
		out[i] = clone(p)
	}
	return out
}

func Get(id string) (*model.Package, error) {
	for _, p := range packages {
		if p.ID == id {
			c := clone(p)
			return &c, nil
		}
	}
	return nil, apperrors.NotFoundWithID("Package", id)
}

func clone(p model.Package) model.Package {
	p.Features = append([]string(nil), p.Features...)
	return p
}

// Selector holds at most one chosen package.
type Selector struct {
	mu       sync.RWMutex
	selected *model.Package
}

func NewSelector() *Selector {
	return &Selector{}
}

// Select replaces any earlier choice. An unknown id leaves the current
// choice untouched.
func (s *Selector) Select(id string) (*model.Package, error) {
	pkg, err := Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.selected = pkg
	s.mu.Unlock()

	c := clone(*pkg)
	return &c, nil
}

func (s *Selector) Selected() (*model.Package, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil, false
	}
	c := clone(*s.selected)
	return &c, true
}

func (s *Selector) Clear() {
	s.mu.Lock()
	s.selected = nil
	s.mu.Unlock()
}
