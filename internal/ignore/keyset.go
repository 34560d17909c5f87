// Package ignore tracks which catalog entries are already on the server's
// ignore list and submits new entries to it.
package ignore

import (
	"fmt"
	"sort"
	"strings"

	"opconsole/internal/domain"
)

// KeySet is an immutable set of identities. The zero value is empty.
type KeySet struct {
	keys map[domain.Identity]struct{}
}

// NewKeySet builds a set from identities
func NewKeySet(ids ...domain.Identity) KeySet {
	s := KeySet{keys: make(map[domain.Identity]struct{}, len(ids))}
	for _, id := range ids {
		s.keys[id] = struct{}{}
	}
	return s
}

// ParseKeys builds a set from composite keys. Keys that do not parse are
// returned separately.
func ParseKeys(keys []string) (KeySet, []string) {
	ids := make([]domain.Identity, 0, len(keys))
	var invalid []string
	for _, key := range keys {
		id, err := ParseCompositeKey(key)
		if err != nil {
			invalid = append(invalid, key)
			continue
		}
		ids = append(ids, id)
	}
	return NewKeySet(ids...), invalid
}

// ParseCompositeKey parses "TYPE::ID" as sent by the server, or the
// single-colon "TYPE:ID" form
func ParseCompositeKey(key string) (domain.Identity, error) {
	key = strings.TrimSpace(key)
	sourceType, id, ok := strings.Cut(key, "::")
	if !ok {
		sourceType, id, ok = strings.Cut(key, ":")
	}
	sourceType, id = strings.TrimSpace(sourceType), strings.TrimSpace(id)
	if !ok || sourceType == "" || id == "" {
		return domain.Identity{}, fmt.Errorf("invalid ignore key %q", key)
	}
	return domain.Identity{Type: domain.SourceType(sourceType), ID: id}, nil
}

// Contains reports whether id is in the set
func (s KeySet) Contains(id domain.Identity) bool {
	_, ok := s.keys[id]
	return ok
}

func (s KeySet) Len() int {
	return len(s.keys)
}

// Identities returns the members sorted by composite key
func (s KeySet) Identities() []domain.Identity {
	ids := make([]domain.Identity, 0, len(s.keys))
	for id := range s.keys {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Key() < ids[j].Key()
	})
	return ids
}

// CountByType returns the number of ignored identities per source type
func (s KeySet) CountByType() map[domain.SourceType]int {
	counts := make(map[domain.SourceType]int)
	for id := range s.keys {
		counts[id.Type]++
	}
	return counts
}

// Equal reports whether both sets hold the same identities
func (s KeySet) Equal(other KeySet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for id := range s.keys {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
