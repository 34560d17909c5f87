package selection

import (
	"strings"
	"sync"

	"opconsole/internal/domain"
)

// FilterMode restricts the picker by ignore status
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterNotIgnored
	FilterIgnored
)

func (m FilterMode) String() string {
	switch m {
	case FilterNotIgnored:
		return "not ignored"
	case FilterIgnored:
		return "ignored"
	default:
		return "all"
	}
}

// Next cycles all -> not ignored -> ignored -> all
func (m FilterMode) Next() FilterMode {
	return (m + 1) % 3
}

// IgnoreLookup answers whether an identity is already in the ignore list
type IgnoreLookup interface {
	Contains(id domain.Identity) bool
}

// Picker is a filtered, annotated view of the catalog
type Picker struct {
	mu        sync.RWMutex
	catalog   domain.Catalog
	query     string
	mode      FilterMode
	selection Selection
	ignored   IgnoreLookup
}

// NewPicker creates a picker. ignored may be nil, in which case nothing is
// treated as ignored.
func NewPicker(sel Selection, ignored IgnoreLookup) *Picker {
	return &Picker{
		selection: sel,
		ignored:   ignored,
	}
}

// SetCatalog replaces the catalog the picker shows
func (p *Picker) SetCatalog(catalog domain.Catalog) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catalog = catalog
}

// SetQuery sets the search text
func (p *Picker) SetQuery(query string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query = strings.TrimSpace(query)
}

func (p *Picker) Query() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.query
}

// SetMode sets the ignore filter
func (p *Picker) SetMode(mode FilterMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
}

// CycleMode advances to the next filter mode and returns it
func (p *Picker) CycleMode() FilterMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = p.mode.Next()
	return p.mode
}

func (p *Picker) Mode() FilterMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mode
}

// Items returns the visible catalog entries in catalog order
func (p *Picker) Items() []Annotated[domain.CatalogEntry] {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var out []Annotated[domain.CatalogEntry]
	for _, entry := range p.catalog {
		if !MatchesQuery(entry, p.query) {
			continue
		}
		ignored := p.isIgnored(entry.Identity())
		switch p.mode {
		case FilterNotIgnored:
			if ignored {
				continue
			}
		case FilterIgnored:
			if !ignored {
				continue
			}
		}
		out = append(out, Annotated[domain.CatalogEntry]{
			Value: entry,
			Annotation: Annotation{
				Selected: p.selection != nil && p.selection.IsSelected(entry.Type, entry.ID),
				Ignored:  ignored,
			},
		})
	}
	return out
}

func (p *Picker) isIgnored(id domain.Identity) bool {
	return p.ignored != nil && p.ignored.Contains(id)
}

// MatchesQuery checks an entry against a case-insensitive query over name, id
// and source type. A "type:" prefix restricts the match to the source type.
func MatchesQuery(entry domain.CatalogEntry, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)

	if rest, ok := strings.CutPrefix(q, "type:"); ok {
		return strings.Contains(strings.ToLower(string(entry.Type)), strings.TrimSpace(rest))
	}

	return strings.Contains(strings.ToLower(entry.Name), q) ||
		strings.Contains(strings.ToLower(entry.ID), q) ||
		strings.Contains(strings.ToLower(string(entry.Type)), q)
}
