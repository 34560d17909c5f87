package domain

import "strings"

// SourceType is one of the fixed catalog categories
type SourceType string

const (
	SourceJVProducts    SourceType = "JV_F_P" // catalog factories, account JV
	SourceXLProducts    SourceType = "XL_F_P" // catalog factories, account XL
	SourceJVCollections SourceType = "JV_F_L" // lister collections, account JV
	SourceXLCollections SourceType = "XL_F_L" // lister collections, account XL
)

// SourceTypes lists every known source type in display order
var SourceTypes = []SourceType{
	SourceJVProducts,
	SourceXLProducts,
	SourceJVCollections,
	SourceXLCollections,
}

// Valid reports whether t is one of the fixed source types
func (t SourceType) Valid() bool {
	for _, known := range SourceTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account returns the account prefix of the source type ("JV", "XL")
func (t SourceType) Account() string {
	account, _, _ := strings.Cut(string(t), "_")
	return account
}

// IsCollection reports whether the source holds lister collections
func (t SourceType) IsCollection() bool {
	return strings.HasSuffix(string(t), "_L")
}

// Identity uniquely names one catalog or selection entry
type Identity struct {
	Type SourceType
	ID   string
}

// Key returns the composite "TYPE:ID" form used on the wire
func (i Identity) Key() string {
	return string(i.Type) + ":" + i.ID
}

func (i Identity) String() string {
	return i.Key()
}

// CatalogEntry is one normalized record from a catalog source
type CatalogEntry struct {
	Type      SourceType
	ID        string
	Name      string
	ItemCount *int // nil when the source gave no parseable count
}

// Identity returns the entry's (type, id) pair
func (e CatalogEntry) Identity() Identity {
	return Identity{Type: e.Type, ID: e.ID}
}

// DisplayName returns the name, falling back to the id
func (e CatalogEntry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID
}

// Catalog is the merged, sorted result of one sweep
type Catalog []CatalogEntry

// Find returns the entry with the given identity
func (c Catalog) Find(id Identity) (CatalogEntry, bool) {
	for _, entry := range c {
		if entry.Identity() == id {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

// CountByType returns the number of entries per source type
func (c Catalog) CountByType() map[SourceType]int {
	counts := make(map[SourceType]int)
	for _, entry := range c {
		counts[entry.Type]++
	}
	return counts
}

// SelectionEntry is a catalog entry snapshot taken when it was selected
type SelectionEntry struct {
	Type      SourceType
	ID        string
	Name      string
	ItemCount *int
}

// Identity returns the entry's (type, id) pair
func (e SelectionEntry) Identity() Identity {
	return Identity{Type: e.Type, ID: e.ID}
}

// NewSelectionEntry snapshots a catalog entry
func NewSelectionEntry(entry CatalogEntry) SelectionEntry {
	s := SelectionEntry{
		Type: entry.Type,
		ID:   entry.ID,
		Name: entry.Name,
	}
	if entry.ItemCount != nil {
		count := *entry.ItemCount
		s.ItemCount = &count
	}
	return s
}

// LoadState describes the outcome of the most recent sweep
type LoadState struct {
	Loaded       bool
	ErrorSources []string // labels of sources that failed
	Catalog      Catalog
}
