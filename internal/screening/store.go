package screening

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"hiringdesk/hiring-assistant/internal/models"
)

// Store holds the ordered set of screening items for one analysis. Iteration
// order is insertion order; sorting for presentation is a view, never a
// mutation of stored order. All mutation funnels through id-keyed methods so
// concurrent stage resolutions never partially overwrite each other.
type Store struct {
	mu    sync.RWMutex
	items []*models.ScreeningItem
	index map[uuid.UUID]*models.ScreeningItem

	onChange func()
}

func NewStore() *Store {
	return &Store{
		index: make(map[uuid.UUID]*models.ScreeningItem),
	}
}

// OnChange registers a hook invoked after every mutation, outside the store
// lock. Used to recompute projections and persist the owning analysis.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Add appends items preserving arrival order. Ids must be unique across the
// whole store; a duplicate rejects the entire batch.
func (s *Store) Add(items ...*models.ScreeningItem) error {
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	for _, item := range items {
		if _, exists := s.index[item.ID]; exists {
			s.mu.Unlock()
			return fmt.Errorf("duplicate screening item id %s", item.ID)
		}
		s.items = append(s.items, item)
		s.index[item.ID] = item
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Update applies a mutation to exactly the item with the given id. When the
// id is absent the call is a silent no-op and returns false; this is how
// in-flight stage results for removed items get dropped.
func (s *Store) Update(id uuid.UUID, mutate func(*models.ScreeningItem)) bool {
	s.mu.Lock()
	item, ok := s.index[id]
	if ok {
		mutate(item)
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// Remove deletes the item with the given id. Its id is never reused.
func (s *Store) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	_, ok := s.index[id]
	if ok {
		delete(s.index, id)
		for i, item := range s.items {
			if item.ID == id {
				s.items = append(s.items[:i], s.items[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// RemoveAll empties the store. Pending stage resolutions for removed items
// become no-ops against their ids.
func (s *Store) RemoveAll() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[uuid.UUID]*models.ScreeningItem)
	s.mu.Unlock()

	s.notify()
}

// MarkScreening flips every ready item with non-empty extracted text to
// screening in one atomic pass and returns the id and text of each selected
// item. Items in any other state are untouched.
func (s *Store) MarkScreening() []ScreenCandidate {
	s.mu.Lock()
	var selected []ScreenCandidate
	for _, item := range s.items {
		if item.Status == models.StatusReady && item.Text != "" {
			item.Status = models.StatusScreening
			selected = append(selected, ScreenCandidate{ID: item.ID, Text: item.Text})
		}
	}
	s.mu.Unlock()

	if len(selected) > 0 {
		s.notify()
	}
	return selected
}

// ScreenCandidate is a stable snapshot of an item selected for scoring.
type ScreenCandidate struct {
	ID   uuid.UUID
	Text string
}

// Items returns a snapshot of the store in insertion order. The returned
// structs are copies; verdicts are shared but immutable once set.
func (s *Store) Items() []models.ScreeningItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.ScreeningItem, len(s.items))
	for i, item := range s.items {
		snapshot[i] = *item
	}
	return snapshot
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
