// Package selection holds the operator's working set of catalog entries and
// the searchable picker over the catalog.
package selection

import (
	"sync"

	"opconsole/internal/domain"
	"opconsole/internal/eventbus"
)

// AddResult reports the outcome of Add
type AddResult int

const (
	NotAdded AddResult = iota
	Added
)

func (r AddResult) String() string {
	if r == Added {
		return "added"
	}
	return "not added"
}

// RemoveResult reports the outcome of Remove
type RemoveResult int

const (
	NotFound RemoveResult = iota
	Removed
)

func (r RemoveResult) String() string {
	if r == Removed {
		return "removed"
	}
	return "not found"
}

// Selection is the ordered set of chosen entries
type Selection interface {
	IsSelected(sourceType domain.SourceType, id string) bool
	Add(entry domain.SelectionEntry) AddResult
	Remove(sourceType domain.SourceType, id string) RemoveResult
	Toggle(entry domain.CatalogEntry) bool
	Entries() []domain.SelectionEntry
	Len() int
	Clear()
	Annotate(fn func(domain.SelectionEntry) Annotation) []Annotated[domain.SelectionEntry]
}

// selection is the concrete implementation
type selection struct {
	bus eventbus.EventBus
	mu  sync.RWMutex
	set *KeyedSet[domain.Identity, domain.SelectionEntry]
}

// New creates an empty selection. bus may be nil.
func New(bus eventbus.EventBus) Selection {
	return &selection{
		bus: bus,
		set: NewKeyedSet(domain.SelectionEntry.Identity),
	}
}

// IsSelected checks whether (sourceType, id) is in the selection
func (s *selection) IsSelected(sourceType domain.SourceType, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Has(domain.Identity{Type: sourceType, ID: id})
}

// Add appends entry unless its identity is already selected. Name and count
// are kept as given; they are not refreshed from later catalog loads.
func (s *selection) Add(entry domain.SelectionEntry) AddResult {
	if entry.ID == "" {
		return NotAdded
	}

	s.mu.Lock()
	ok := s.set.Add(entry)
	total := s.set.Len()
	s.mu.Unlock()

	if !ok {
		return NotAdded
	}
	s.publish(domain.SelectionChangedEvent{Added: []domain.Identity{entry.Identity()}, Total: total})
	return Added
}

// Remove deletes the entry with the given identity
func (s *selection) Remove(sourceType domain.SourceType, id string) RemoveResult {
	identity := domain.Identity{Type: sourceType, ID: id}

	s.mu.Lock()
	ok := s.set.Remove(identity)
	total := s.set.Len()
	s.mu.Unlock()

	if !ok {
		return NotFound
	}
	s.publish(domain.SelectionChangedEvent{Removed: []domain.Identity{identity}, Total: total})
	return Removed
}

// Toggle adds a snapshot of entry or removes it; it reports whether the entry
// is selected afterwards
func (s *selection) Toggle(entry domain.CatalogEntry) bool {
	if s.Remove(entry.Type, entry.ID) == Removed {
		return false
	}
	return s.Add(domain.NewSelectionEntry(entry)) == Added
}

// Entries returns the selection in insertion order
func (s *selection) Entries() []domain.SelectionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Items()
}

func (s *selection) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Len()
}

// Clear empties the selection
func (s *selection) Clear() {
	s.mu.Lock()
	removed := s.set.Keys()
	s.set.Clear()
	s.mu.Unlock()

	if len(removed) > 0 {
		s.publish(domain.SelectionChangedEvent{Removed: removed})
	}
}

// Annotate projects the selection; Selected is always set
func (s *selection) Annotate(fn func(domain.SelectionEntry) Annotation) []Annotated[domain.SelectionEntry] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Annotate(func(e domain.SelectionEntry) Annotation {
		a := Annotation{}
		if fn != nil {
			a = fn(e)
		}
		a.Selected = true
		return a
	})
}

func (s *selection) publish(event eventbus.DomainEvent) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}
