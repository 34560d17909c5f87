package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"opconsole/internal/domain"
)

// Accepted key spellings, tried in order; the first non-empty value wins.
var (
	IDKeys    = []string{"id", "ID", "Id", "factory_id", "factoryId", "collection_id", "collectionId", "value"}
	NameKeys  = []string{"name", "Name", "title", "label", "factory_name", "factoryName"}
	CountKeys = []string{"count", "item_count", "itemCount", "items_count", "itemsCount", "items", "total"}
)

// Normalize converts one raw array element into a catalog entry. ok is false
// when the element is not an object or carries no id.
func Normalize(sourceType domain.SourceType, raw json.RawMessage) (domain.CatalogEntry, bool) {
	var obj map[string]any
	if err := unmarshalNumbers(raw, &obj); err != nil || obj == nil {
		return domain.CatalogEntry{}, false
	}

	id := firstString(obj, IDKeys)
	if id == "" {
		return domain.CatalogEntry{}, false
	}

	entry := domain.CatalogEntry{
		Type: sourceType,
		ID:   id,
		Name: firstString(obj, NameKeys),
	}
	if n, ok := firstCount(obj, CountKeys); ok {
		entry.ItemCount = &n
	}
	return entry, true
}

// NormalizeID extracts only the id of an element
func NormalizeID(raw json.RawMessage) (string, bool) {
	var obj map[string]any
	if err := unmarshalNumbers(raw, &obj); err != nil || obj == nil {
		return "", false
	}
	id := firstString(obj, IDKeys)
	return id, id != ""
}

func unmarshalNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	return dec.Decode(v)
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		if s := scalarString(obj[key]); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func firstCount(obj map[string]any, keys []string) (int, bool) {
	for _, key := range keys {
		v, present := obj[key]
		if !present || v == nil {
			continue
		}
		if n, ok := toInt(v); ok {
			return n, true
		}
	}
	return 0, false
}

// toInt accepts integers, whole floats and numeric-looking strings
func toInt(v any) (int, bool) {
	var s string
	switch val := v.(type) {
	case json.Number:
		s = val.String()
	case string:
		s = strings.TrimSpace(val)
	default:
		return 0, false
	}
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
