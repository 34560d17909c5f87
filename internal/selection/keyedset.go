package selection

// Annotation marks an entry for display
type Annotation struct {
	Selected bool
	Ignored  bool
}

// Annotated pairs a value with its annotation
type Annotated[V any] struct {
	Value V
	Annotation
}

// KeyedSet is an insertion-ordered set of values with unique keys. The key
// function decides identity; everything else about a value is payload.
type KeyedSet[K comparable, V any] struct {
	key   func(V) K
	items []V
	index map[K]struct{}
}

// NewKeyedSet creates an empty set keyed by key
func NewKeyedSet[K comparable, V any](key func(V) K) *KeyedSet[K, V] {
	return &KeyedSet[K, V]{
		key:   key,
		index: make(map[K]struct{}),
	}
}

// Add appends v unless its key is already present
func (s *KeyedSet[K, V]) Add(v V) bool {
	k := s.key(v)
	if _, exists := s.index[k]; exists {
		return false
	}
	s.index[k] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Remove deletes the value with key k
func (s *KeyedSet[K, V]) Remove(k K) bool {
	if _, exists := s.index[k]; !exists {
		return false
	}
	delete(s.index, k)
	for i, v := range s.items {
		if s.key(v) == k {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	return true
}

// Has reports whether a value with key k is present
func (s *KeyedSet[K, V]) Has(k K) bool {
	_, exists := s.index[k]
	return exists
}

// Get returns the value with key k
func (s *KeyedSet[K, V]) Get(k K) (V, bool) {
	var zero V
	if !s.Has(k) {
		return zero, false
	}
	for _, v := range s.items {
		if s.key(v) == k {
			return v, true
		}
	}
	return zero, false
}

// Items returns a copy of the values in insertion order
func (s *KeyedSet[K, V]) Items() []V {
	return append([]V(nil), s.items...)
}

// Keys returns the keys in insertion order
func (s *KeyedSet[K, V]) Keys() []K {
	keys := make([]K, len(s.items))
	for i, v := range s.items {
		keys[i] = s.key(v)
	}
	return keys
}

func (s *KeyedSet[K, V]) Len() int {
	return len(s.items)
}

// Clear removes every value
func (s *KeyedSet[K, V]) Clear() {
	s.items = nil
	s.index = make(map[K]struct{})
}

// Annotate projects the set through fn, keeping insertion order
func (s *KeyedSet[K, V]) Annotate(fn func(V) Annotation) []Annotated[V] {
	out := make([]Annotated[V], len(s.items))
	for i, v := range s.items {
		out[i] = Annotated[V]{Value: v}
		if fn != nil {
			out[i].Annotation = fn(v)
		}
	}
	return out
}
