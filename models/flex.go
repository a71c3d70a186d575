package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringList decodes from a JSON array, a JSON-encoded array inside a string,
// or a comma separated string. Entries are trimmed and empty ones dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '[' {
		var xs []string
		if err := json.Unmarshal(b, &xs); err != nil {
			return err
		}
		*l = normalizeList(xs)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = ParseStringList(s)
	return nil
}

// ParseStringList accepts `["a","b"]` or `a, b`.
func ParseStringList(s string) StringList {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var xs []string
		if err := json.Unmarshal([]byte(s), &xs); err == nil {
			return normalizeList(xs)
		}
	}
	return normalizeList(strings.Split(s, ","))
}

func normalizeList(xs []string) StringList {
	out := StringList{}
	for _, x := range xs {
		if x = strings.TrimSpace(x); x != "" {
			out = append(out, x)
		}
	}
	return out
}

// Flex decodes an object given either as JSON or as a string holding JSON.
// Set reports whether the field was present.
type Flex[T any] struct {
	Value T
	Set   bool
}

func (f *Flex[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		b = []byte(s)
	}
	if err := json.Unmarshal(b, &f.Value); err != nil {
		return err
	}
	f.Set = true
	return nil
}

func (f Flex[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
