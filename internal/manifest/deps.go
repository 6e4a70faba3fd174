package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Deps is a dependency name -> version constraint mapping that remembers
// insertion order, so written manifests list dependencies the way they were
// declared. The zero value is an empty mapping ready to use.
type Deps struct {
	names    []string
	versions map[string]string
}

// NewDeps builds a mapping from name/version pairs, in argument order.
func NewDeps(pairs ...string) *Deps {
	if len(pairs)%2 != 0 {
		panic("manifest: NewDeps needs name/version pairs")
	}
	d := &Deps{}
	for i := 0; i < len(pairs); i += 2 {
		d.Set(pairs[i], pairs[i+1])
	}
	return d
}

// Set records version for name. Overwriting keeps the original position.
func (d *Deps) Set(name, version string) {
	if d.versions == nil {
		d.versions = make(map[string]string)
	}
	if _, ok := d.versions[name]; !ok {
		d.names = append(d.names, name)
	}
	d.versions[name] = version
}

// Get returns the version recorded for name.
func (d *Deps) Get(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	v, ok := d.versions[name]
	return v, ok
}

// Names returns dependency names in insertion order.
func (d *Deps) Names() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.names...)
}

// Len returns the number of dependencies.
func (d *Deps) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}

// Clone returns an independent copy.
func (d *Deps) Clone() *Deps {
	c := &Deps{}
	if d == nil {
		return c
	}
	for _, name := range d.names {
		c.Set(name, d.versions[name])
	}
	return c
}

// Overlay sets every entry of other onto d, in other's order.
func (d *Deps) Overlay(other *Deps) {
	if other == nil {
		return
	}
	for _, name := range other.names {
		d.Set(name, other.versions[name])
	}
}

// Map returns the entries as a plain map.
func (d *Deps) Map() map[string]string {
	m := make(map[string]string, d.Len())
	if d == nil {
		return m
	}
	for name, version := range d.versions {
		m[name] = version
	}
	return m
}

// MarshalJSON writes the mapping as a JSON object in insertion order.
func (d *Deps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if d != nil {
		for i, name := range d.names {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(&buf, name); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeString(&buf, d.versions[name]); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode renders the mapping pretty-printed with two-space indentation.
func (d *Deps) Encode() ([]byte, error) {
	return encodeIndent(d)
}

// UnmarshalJSON reads a JSON object of string values, keeping key order.
func (d *Deps) UnmarshalJSON(data []byte) error {
	*d = Deps{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return decodeObject(data, func(key string, raw json.RawMessage) error {
		var version string
		if err := json.Unmarshal(raw, &version); err != nil {
			return fmt.Errorf("dependency %q: version must be a string", key)
		}
		d.Set(key, version)
		return nil
	})
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}
