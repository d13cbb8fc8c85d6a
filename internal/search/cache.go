package search

import (
	"sync"

	"msktravels/pkg/model"
)

// Cache keeps the last successful search. Criteria and offers are always
// replaced and cleared together.
type Cache struct {
	mu       sync.RWMutex
	criteria *model.SearchCriteria
	offers   []model.VehicleOffer
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Record(criteria model.SearchCriteria, offers []model.VehicleOffer) {
	copied := make([]model.VehicleOffer, len(offers))
	copy(copied, offers)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = &criteria
	c.offers = copied
}

func (c *Cache) Offers() []model.VehicleOffer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.offers == nil {
		return nil
	}
	out := make([]model.VehicleOffer, len(c.offers))
	copy(out, c.offers)
	return out
}

func (c *Cache) Criteria() (model.SearchCriteria, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.criteria == nil {
		return model.SearchCriteria{}, false
	}
	return *c.criteria, true
}

func (c *Cache) Find(offerID int64) (model.VehicleOffer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, offer := range c.offers {
		if offer.ID == offerID {
			return offer, true
		}
	}
	return model.VehicleOffer{}, false
}

func (c *Cache) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.criteria == nil
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.criteria = nil
	c.offers = nil
}
