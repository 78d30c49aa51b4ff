package alignment

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"

	"github.com/credentialengine/obpublisher/pkg/errors"
)

// Map holds alignment configs keyed by target URL in insertion order.
// The zero value is an empty map ready to use.
type Map struct {
	keys    []string
	entries map[string]Config
}

// NewMap builds a map from configs keyed by their target URL. Later
// duplicates replace earlier values and keep the first position.
func NewMap(configs ...Config) Map {
	var m Map
	for _, c := range configs {
		m.Set(c.URL(), c)
	}
	return m
}

// Len returns the number of entries.
func (m Map) Len() int {
	return len(m.keys)
}

// Get returns the config stored under url.
func (m Map) Get(url string) (Config, bool) {
	c, ok := m.entries[url]
	return c, ok
}

// Has reports whether url is present.
func (m Map) Has(url string) bool {
	_, ok := m.entries[url]
	return ok
}

// Keys returns the keys in insertion order.
func (m Map) Keys() []string {
	return slices.Clone(m.keys)
}

// All iterates entries in insertion order.
func (m Map) All() iter.Seq2[string, Config] {
	return func(yield func(string, Config) bool) {
		for _, k := range m.keys {
			if !yield(k, m.entries[k]) {
				return
			}
		}
	}
}

// Set stores c under url. Replacing an existing key keeps its position.
func (m *Map) Set(url string, c Config) {
	if m.entries == nil {
		m.entries = make(map[string]Config)
	}
	if _, ok := m.entries[url]; !ok {
		m.keys = append(m.keys, url)
	}
	m.entries[url] = c
}

// Delete removes url if present.
func (m *Map) Delete(url string) {
	if _, ok := m.entries[url]; !ok {
		return
	}
	delete(m.entries, url)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == url })
}

// Clone returns a deep copy of m.
func (m Map) Clone() Map {
	out := Map{keys: slices.Clone(m.keys)}
	if m.entries != nil {
		out.entries = make(map[string]Config, len(m.entries))
		for k, c := range m.entries {
			out.entries[k] = c.Clone()
		}
	}
	return out
}

// MarshalJSON encodes the map as an object with members in insertion order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.entries[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping members in document order.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.WrapParse("json", "obAlignments", err)
	}
	if tok == nil {
		*m = Map{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.NewParseError("json", "obAlignments", "expected an object", nil)
	}

	var out Map
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.WrapParse("json", "obAlignments", err)
		}
		key, _ := tok.(string)

		var c Config
		if err := dec.Decode(&c); err != nil {
			return errors.WrapParse("json", "obAlignments", err)
		}
		if c.DestinationData == nil {
			c.DestinationData = map[string]string{}
		}
		out.Set(key, c)
	}
	if _, err := dec.Token(); err != nil {
		return errors.WrapParse("json", "obAlignments", err)
	}

	*m = out
	return nil
}
