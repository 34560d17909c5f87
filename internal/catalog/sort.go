package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"opconsole/internal/domain"
)

// newCollator returns a locale-aware, numeric-aware, case-insensitive
// comparator. A Collator is not safe for concurrent use.
func newCollator() *collate.Collator {
	return collate.New(language.Und, collate.Numeric, collate.IgnoreCase)
}

// Sort orders entries by (source type, name, id) in place
func Sort(entries []domain.CatalogEntry) {
	c := newCollator()
	sort.SliceStable(entries, func(i, j int) bool {
		return compareEntries(c, entries[i], entries[j]) < 0
	})
}

func compareEntries(c *collate.Collator, a, b domain.CatalogEntry) int {
	if r := c.CompareString(string(a.Type), string(b.Type)); r != 0 {
		return r
	}
	if r := c.CompareString(a.Name, b.Name); r != 0 {
		return r
	}
	return c.CompareString(a.ID, b.ID)
}
