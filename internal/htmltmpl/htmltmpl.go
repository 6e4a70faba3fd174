// Package htmltmpl compiles an HTML document into a reusable render template.
//
// Compile splits the document once at the opening <html> and <body> tags,
// leaving slots where per-request attribute strings are inserted. Render
// joins the literal segments and the slot values with plain string
// concatenation; no code is generated or evaluated.
//
// Only the first bare "<html>" and "<body>" tags are slotted. Tags that
// already carry attributes are left as they are.
package htmltmpl

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type slot int

const (
	slotNone slot = iota
	slotHTMLAttrs
	slotBodyAttrs
	slotHead
	slotElement
	slotHydration
	slotExtra
)

// part is either literal text or a slot filled at render time.
type part struct {
	text string
	slot slot
	key  string // slotExtra lookup key
}

// Template is a compiled HTML document. It is immutable and safe for
// concurrent use.
type Template struct {
	parts []part
}

// Attrs holds attribute strings for the root tags, inserted verbatim
// (e.g. ` lang="en"`).
type Attrs struct {
	HTML string
	Body string
}

// Data is the per-render input.
type Data struct {
	Attrs     Attrs
	Head      string
	Element   string
	Hydration any // strings are inserted verbatim, other values serialized
	Extra     map[string]string
}

// Helpers are the capabilities available while rendering.
type Helpers struct {
	// Serialize renders hydration data. Defaults to JSON.
	Serialize func(ctx context.Context, v any) (string, error)
}

type options struct {
	interpolate bool
}

// Option configures Compile.
type Option func(*options)

// WithInterpolation enables the ${head}, ${element}, ${hydration} and
// ${extra.<key>} slots. Any other "${" sequence is a compile error.
func WithInterpolation() Option {
	return func(o *options) { o.interpolate = true }
}

// Compile builds a template from trusted, build-time HTML source.
func Compile(source string, opts ...Option) (*Template, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	parts := []part{{text: source}}
	parts = splitTag(parts, "<html", slotHTMLAttrs)
	parts = splitTag(parts, "<body", slotBodyAttrs)

	if o.interpolate {
		var err error
		if parts, err = interpolate(parts, source); err != nil {
			return nil, err
		}
	}

	return &Template{parts: compact(parts)}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string, opts ...Option) *Template {
	t, err := Compile(source, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// splitTag replaces the first bare "<name>" found in a literal part with
// "<name" + attribute slot + ">".
func splitTag(parts []part, open string, s slot) []part {
	tag := open + ">"
	for i, p := range parts {
		if p.slot != slotNone {
			continue
		}
		before, after, found := strings.Cut(p.text, tag)
		if !found {
			continue
		}
		out := make([]part, 0, len(parts)+2)
		out = append(out, parts[:i]...)
		out = append(out,
			part{text: before + open},
			part{slot: s},
			part{text: ">" + after},
		)
		return append(out, parts[i+1:]...)
	}
	return parts
}

// interpolate expands ${...} expressions inside literal parts. The literal
// parts concatenated are exactly source, which gives error positions.
func interpolate(parts []part, source string) ([]part, error) {
	var out []part
	offset := 0
	for _, p := range parts {
		if p.slot != slotNone {
			out = append(out, p)
			continue
		}
		text := p.text
		for {
			start := strings.Index(text, "${")
			if start < 0 {
				out = append(out, part{text: text})
				break
			}
			pos := offset + len(p.text) - len(text) + start
			if escaped(text, start) {
				// \${ is a literal ${
				out = append(out, part{text: text[:start-1] + "${"})
				text = text[start+2:]
				continue
			}
			end := strings.IndexByte(text[start:], '}')
			if end < 0 {
				return nil, newSyntaxError(source, pos, "unterminated expression")
			}
			expr := text[start+2 : start+end]
			s, key, err := parseExpr(expr)
			if err != nil {
				return nil, newSyntaxError(source, pos, err.Error())
			}
			out = append(out, part{text: text[:start]}, part{slot: s, key: key})
			text = text[start+end+1:]
		}
		offset += len(p.text)
	}
	return out, nil
}

// escaped reports whether the character at i follows an odd run of
// backslashes.
func escaped(text string, i int) bool {
	n := 0
	for i > 0 && text[i-1] == '\\' {
		n++
		i--
	}
	return n%2 == 1
}

func parseExpr(expr string) (slot, string, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "head":
		return slotHead, "", nil
	case "element":
		return slotElement, "", nil
	case "hydration":
		return slotHydration, "", nil
	}
	if key, ok := strings.CutPrefix(expr, "extra."); ok && isIdent(key) {
		return slotExtra, key, nil
	}
	return slotNone, "", fmt.Errorf("unknown expression %q", expr)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// compact merges adjacent literal parts and drops empty ones.
func compact(parts []part) []part {
	out := make([]part, 0, len(parts))
	for _, p := range parts {
		if p.slot == slotNone {
			if p.text == "" {
				continue
			}
			if n := len(out); n > 0 && out[n-1].slot == slotNone {
				out[n-1].text += p.text
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Render produces the document for one request. t is passed explicitly so
// render functions can be composed without capturing a template.
func Render(ctx context.Context, t *Template, data Data, h Helpers) (string, error) {
	var b strings.Builder
	for _, p := range t.parts {
		switch p.slot {
		case slotNone:
			b.WriteString(p.text)
		case slotHTMLAttrs:
			b.WriteString(data.Attrs.HTML)
		case slotBodyAttrs:
			b.WriteString(data.Attrs.Body)
		case slotHead:
			b.WriteString(data.Head)
		case slotElement:
			b.WriteString(data.Element)
		case slotExtra:
			b.WriteString(data.Extra[p.key])
		case slotHydration:
			s, err := hydration(ctx, data.Hydration, h)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		}
	}
	return b.String(), nil
}

// Render is shorthand for Render(ctx, t, data, h).
func (t *Template) Render(ctx context.Context, data Data, h Helpers) (string, error) {
	return Render(ctx, t, data, h)
}

func hydration(ctx context.Context, v any, h Helpers) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	}
	serialize := h.Serialize
	if serialize == nil {
		serialize = serializeJSON
	}
	s, err := serialize(ctx, v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize hydration data: %w", err)
	}
	return s, nil
}

func serializeJSON(_ context.Context, v any) (string, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}
