// Package manifest reads and rewrites package.json documents.
//
// A Manifest keeps every top-level key of the source document, in order, as
// raw JSON. Only the dependency groups are decoded, and rewriting a manifest
// touches nothing but the field that was replaced.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/natefinch/atomic"
)

// Well-known manifest fields
const (
	FieldExternal     = "external"
	FieldLocal        = "local"
	FieldDependencies = "dependencies"
)

// Manifest is an order-preserving view of a JSON manifest object.
type Manifest struct {
	keys   []string
	fields map[string]json.RawMessage
}

// Parse decodes a manifest document. The top level must be a JSON object.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{fields: make(map[string]json.RawMessage)}
	err := decodeObject(data, func(key string, raw json.RawMessage) error {
		m.setRaw(key, raw)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Keys returns the top-level keys in document order.
func (m *Manifest) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Has reports whether field is present.
func (m *Manifest) Has(field string) bool {
	_, ok := m.fields[field]
	return ok
}

// Deps decodes a dependency group. A missing field yields an empty mapping.
func (m *Manifest) Deps(field string) (*Deps, error) {
	raw, ok := m.fields[field]
	if !ok {
		return &Deps{}, nil
	}
	d := &Deps{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("field %q: %w", field, err)
	}
	return d, nil
}

// SetDeps replaces field with d. A field not yet present is appended.
func (m *Manifest) SetDeps(field string, d *Deps) error {
	raw, err := d.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", field, err)
	}
	m.setRaw(field, raw)
	return nil
}

// WithDeps returns a copy of m with field replaced by d. m is not modified.
func (m *Manifest) WithDeps(field string, d *Deps) (*Manifest, error) {
	c := &Manifest{
		keys:   append([]string(nil), m.keys...),
		fields: make(map[string]json.RawMessage, len(m.fields)),
	}
	for k, v := range m.fields {
		c.fields[k] = v
	}
	if err := c.SetDeps(field, d); err != nil {
		return nil, err
	}
	return c, nil
}

func (m *Manifest) setRaw(key string, raw json.RawMessage) {
	if _, ok := m.fields[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.fields[key] = append(json.RawMessage(nil), raw...)
}

// MarshalJSON writes the document with keys in their original order.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		buf.Write(m.fields[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the manifest pretty-printed with two-space indentation.
func (m *Manifest) Encode() ([]byte, error) {
	return encodeIndent(m)
}

func encodeIndent(v json.Marshaler) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Write replaces the file at path with the encoded manifest. Readers see
// either the old or the new document, never a partial write.
func Write(path string, m *Manifest) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// decodeObject streams the members of a JSON object to fn in document order.
func decodeObject(data []byte, fn func(key string, raw json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("expected a JSON object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if err := fn(key, raw); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON object")
	}
	return nil
}
