// Package settings provides the canonical, format independent representation of
// a photo-editing preset: an insertion ordered map of setting names to scalar values.
//
// Every parser in the convert package produces a [Settings] and every serialiser consumes
// one, the iteration order of a [Settings] is the order in which keys were first set which
// is the order they were encountered in the source file.
package settings

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
)

// Settings is an insertion ordered mapping of setting name to [Value].
//
// The zero value is an empty Settings ready to use. A Settings is not safe
// for concurrent mutation.
type Settings struct {
	values map[string]Value // Lookup by key
	keys   []string         // Keys in insertion order
}

// New returns a new, empty [Settings].
func New() *Settings {
	return &Settings{
		values: make(map[string]Value),
	}
}

// Set sets key to value.
//
// If key is already present its value is replaced but its position
// in the iteration order is unchanged.
func (s *Settings) Set(key string, value Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}

	if _, exists := s.values[key]; !exists {
		s.keys = append(s.keys, key)
	}

	s.values[key] = value
}

// Get returns the value stored under key and whether it was present.
func (s *Settings) Get(key string) (Value, bool) {
	if s == nil {
		return Value{}, false
	}

	value, ok := s.values[key]

	return value, ok
}

// Delete removes key, reporting whether it was present.
func (s *Settings) Delete(key string) bool {
	if s == nil {
		return false
	}

	if _, ok := s.values[key]; !ok {
		return false
	}

	delete(s.values, key)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == key })

	return true
}

// Len returns the number of settings.
func (s *Settings) Len() int {
	if s == nil {
		return 0
	}

	return len(s.keys)
}

// Keys returns a copy of the setting names in insertion order.
func (s *Settings) Keys() []string {
	if s == nil {
		return nil
	}

	return slices.Clone(s.keys)
}

// All returns an iterator over the key value pairs in insertion order.
func (s *Settings) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if s == nil {
			return
		}

		for _, key := range s.keys {
			if !yield(key, s.values[key]) {
				return
			}
		}
	}
}

// Equal reports whether s and other hold the same keys, in the same
// order, with the same values.
func (s *Settings) Equal(other *Settings) bool {
	if s.Len() != other.Len() {
		return false
	}

	for i, key := range s.Keys() {
		if other.keys[i] != key {
			return false
		}

		if s.values[key] != other.values[key] {
			return false
		}
	}

	return true
}

// MarshalJSON implements [json.Marshaler] for [Settings], rendering
// a JSON object whose keys appear in insertion order.
func (s *Settings) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')

	first := true
	for key, value := range s.All() {
		if !first {
			buf.WriteByte(',')
		}

		first = false

		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}

		v, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
