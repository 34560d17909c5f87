// Package shell turns argument tokens into a single line a POSIX shell can re-parse.
//
// The quoting here is for display and copy/paste of benign values (paths, names,
// ids). It is not a sandboxing primitive for adversarial input.
package shell

import (
	"strconv"
	"strings"
)

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	switch r {
	case '_', '.', '@', '%', '+', '=', ':', ',', '/', '\\', '-':
		return true
	}
	return false
}

// IsSafe reports whether every character of token may appear unquoted.
func IsSafe(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if !isSafeRune(r) {
			return false
		}
	}
	return true
}

// Quote returns token in a form safe to place, space-separated, on a shell line.
// Tokens that look like flags are returned verbatim even when they contain
// characters that would otherwise need quoting.
func Quote(token string) string {
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "-") || IsSafe(token) {
		return token
	}

	var b strings.Builder
	b.Grow(len(token) + 2)
	b.WriteByte('"')
	for _, r := range token {
		switch r {
		case '"', '\\', '$', '`':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Literal wraps value in double quotes escaping only '"' and '\'. It is meant for
// values embedded in a nested script literal and has no safe-token fast path.
func Literal(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for _, r := range value {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// Join quotes every token and joins them with single spaces.
//
// Accepted token types are strings, the common integer kinds, *int and nil.
// Numbers are written in decimal. Nil, empty strings and other types are dropped.
func Join(tokens ...any) string {
	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		s, ok := tokenString(token)
		if !ok || s == "" {
			continue
		}
		parts = append(parts, Quote(s))
	}
	return strings.Join(parts, " ")
}

// JoinStrings is Join for a plain string slice.
func JoinStrings(tokens []string) string {
	args := make([]any, len(tokens))
	for i, t := range tokens {
		args[i] = t
	}
	return Join(args...)
}

func tokenString(token any) (string, bool) {
	switch v := token.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case *int:
		if v == nil {
			return "", false
		}
		return strconv.Itoa(*v), true
	default:
		return "", false
	}
}
