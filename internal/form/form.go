// Package form reads raw values out of an abstract form: checked toggles,
// trimmed text, free-text lists, integers and multi-valued choices.
package form

import (
	"sort"
	"strconv"
	"strings"
)

// Form provides read-only access to field values by name
type Form interface {
	// Checked reports whether a toggle field is on
	Checked(name string) bool
	// Text returns the trimmed text of a field
	Text(name string) string
	// Values returns the chosen values of a multi-valued field, in order
	Values(name string) []string
	// List parses a free-text field into its list items
	List(name string) []string
	// Int parses a field as a base-10 integer; ok is false when not provided
	Int(name string) (value int, ok bool)
}

// ParseList splits text on commas, semicolons and newlines, trims each piece
// and drops empties. Order is preserved and duplicates are kept.
func ParseList(text string) []string {
	pieces := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if p := strings.TrimSpace(piece); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseInt parses text as a base-10 integer. Empty or non-numeric text is
// reported as not provided rather than zero.
func ParseInt(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(text, 10, 0)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// Values is a map-backed Form. Text fields hold one value; multi-valued
// fields hold several. A toggle is checked when it has a truthy value.
type Values map[string][]string

// Set replaces the value of a field
func (v Values) Set(name, value string) {
	v[name] = []string{value}
}

// SetAll replaces all values of a multi-valued field
func (v Values) SetAll(name string, values ...string) {
	v[name] = append([]string(nil), values...)
}

// Add appends a value to a multi-valued field
func (v Values) Add(name, value string) {
	v[name] = append(v[name], value)
}

// Toggle sets a checkbox field on or off
func (v Values) Toggle(name string, on bool) {
	if on {
		v[name] = []string{"on"}
		return
	}
	delete(v, name)
}

// Del removes a field
func (v Values) Del(name string) {
	delete(v, name)
}

// Checked implements Form
func (v Values) Checked(name string) bool {
	vals := v[name]
	if len(vals) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(vals[0])) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}

// Text implements Form
func (v Values) Text(name string) string {
	vals := v[name]
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

// Values implements Form
func (v Values) Values(name string) []string {
	out := make([]string, 0, len(v[name]))
	for _, val := range v[name] {
		if s := strings.TrimSpace(val); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// List implements Form
func (v Values) List(name string) []string {
	return ParseList(strings.Join(v[name], "\n"))
}

// Int implements Form
func (v Values) Int(name string) (int, bool) {
	return ParseInt(v.Text(name))
}

// Names returns the field names in sorted order
func (v Values) Names() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for name, vals := range v {
		out[name] = append([]string(nil), vals...)
	}
	return out
}
