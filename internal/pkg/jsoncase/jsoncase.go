// Package jsoncase converts the keys of decoded JSON documents between
// snake_case and camelCase.
package jsoncase

import (
	"strings"
	"unicode"
)

// ToCamelCase rewrites every object key in v to camelCase
func ToCamelCase(v interface{}) interface{} {
	return convert(v, CamelKey)
}

// ToSnakeCase rewrites every object key in v to snake_case
func ToSnakeCase(v interface{}) interface{} {
	return convert(v, SnakeKey)
}

func convert(v interface{}, key func(string) string) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[key(k)] = convert(val, key)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = convert(val, key)
		}
		return out
	default:
		return v
	}
}

// CamelKey converts "parent_comment_id" to "parentCommentId". Keys without underscores are returned as is.
func CamelKey(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(p)
			first = false
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

// SnakeKey converts "parentCommentId" to "parent_comment_id" and "imageURL" to "image_url"
func SnakeKey(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, c := range r {
		if unicode.IsUpper(c) {
			prevLower := i > 0 && (unicode.IsLower(r[i-1]) || unicode.IsDigit(r[i-1]))
			nextLower := i > 0 && i+1 < len(r) && unicode.IsUpper(r[i-1]) && unicode.IsLower(r[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(c))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
