package repository

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kainolt/backend/internal/domain"
)

// MemoryRepository is the thread-safe in-memory offer store for one session.
// Insertion is the single serialized mutation; readers run concurrently and
// always see a consistent snapshot. Offers are deduplicated on
// (retailer, normalized name, final price), matching how the same product
// shows up repeatedly across a flyer's pages.
type MemoryRepository struct {
	mutex  sync.RWMutex
	offers []domain.ProductOffer
	seen   map[string]struct{}
}

// NewMemoryRepository creates an empty session repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		seen: make(map[string]struct{}),
	}
}

// Insert adds offers in order, skipping duplicates, and returns how many
// were actually stored. Insertion order is preserved so that reads are
// deterministic regardless of which parsing task finished first within a
// single Insert call.
func (r *MemoryRepository) Insert(offers ...domain.ProductOffer) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	inserted := 0
	for _, offer := range offers {
		key := dedupeKey(offer)
		if _, dup := r.seen[key]; dup {
			continue
		}
		r.seen[key] = struct{}{}
		r.offers = append(r.offers, offer)
		inserted++
	}
	return inserted
}

// All returns a snapshot of every stored offer in insertion order
func (r *MemoryRepository) All() []domain.ProductOffer {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]domain.ProductOffer, len(r.offers))
	copy(out, r.offers)
	return out
}

// ByCategory returns a snapshot of the offers in one category
func (r *MemoryRepository) ByCategory(category string) []domain.ProductOffer {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []domain.ProductOffer
	for _, offer := range r.offers {
		if offer.Category == category {
			out = append(out, offer)
		}
	}
	return out
}

// Search returns a snapshot of the offers whose normalized name contains the
// query, case-insensitively.
func (r *MemoryRepository) Search(query string) []domain.ProductOffer {
	needle := strings.ToLower(strings.TrimSpace(query))

	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var out []domain.ProductOffer
	for _, offer := range r.offers {
		if strings.Contains(offer.NormalizedName, needle) {
			out = append(out, offer)
		}
	}
	return out
}

// Len returns the current number of stored offers
func (r *MemoryRepository) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.offers)
}

// Clear drops all session state
func (r *MemoryRepository) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.offers = nil
	r.seen = make(map[string]struct{})
}

func dedupeKey(o domain.ProductOffer) string {
	return fmt.Sprintf("%s|%s|%.2f", o.Retailer, o.NormalizedName, o.FinalPrice)
}
