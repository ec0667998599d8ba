package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/fixturelab/platformseed/pkg/apperrors"
)

// RefResolver maps generation-time temp IDs to the real IDs a platform
// assigns at insert time. Generators tag parent records with a temp ID and
// embed it in dependent payloads; seeders insert parents first, Register the
// real ID, then Resolve while rewriting dependents. A dependent whose temp ID
// was never registered fails loudly instead of carrying a dangling reference.
//
// Safe for concurrent use: parents are often inserted by a bounded fan-out.
type RefResolver[K comparable, V any] struct {
	mu  sync.RWMutex
	ids map[K]V
}

// NewRefResolver creates an empty resolver.
func NewRefResolver[K comparable, V any]() *RefResolver[K, V] {
	return &RefResolver[K, V]{ids: make(map[K]V)}
}

// Register records the real ID assigned to the record tagged tempID.
func (r *RefResolver[K, V]) Register(tempID K, realID V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[tempID] = realID
}

// Resolve returns the real ID for tempID, or apperrors.ErrUnresolvedRef if
// the parent record was never inserted.
func (r *RefResolver[K, V]) Resolve(tempID K) (V, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	realID, ok := r.ids[tempID]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%w: temp_id %v", apperrors.ErrUnresolvedRef, tempID)
	}
	return realID, nil
}

// Known reports whether tempID has been registered.
func (r *RefResolver[K, V]) Known(tempID K) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[tempID]
	return ok
}

// Len returns the number of registered references.
func (r *RefResolver[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}

// MissingFrom returns the temp IDs in wanted that were never registered,
// sorted by their string rendering. Seeders call it before rewriting
// dependents to report all dangling references at once.
func (r *RefResolver[K, V]) MissingFrom(wanted []K) []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []K
	for _, id := range wanted {
		if _, ok := r.ids[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		return fmt.Sprint(missing[i]) < fmt.Sprint(missing[j])
	})
	return missing
}
