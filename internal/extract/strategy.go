package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// Strategy turns an object candidate into a generic mapping.
type Strategy interface {
	Name() string
	Parse(candidate string) (map[string]any, error)
}

// DefaultStrategies is strict JSON followed by the permissive passes.
func DefaultStrategies() []Strategy {
	return []Strategy{StrictJSON{}, JSON5{}, PythonLiteral{}, YAMLFlow{}}
}

var errNotObject = errors.New("top-level value is not an object")

// StrictJSON parses RFC 8259 JSON. Numbers are kept as json.Number.
type StrictJSON struct{}

func (StrictJSON) Name() string { return "json" }

func (StrictJSON) Parse(candidate string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// JSON5 accepts trailing commas, comments and unquoted keys. Strings must
// still be double-quoted.
type JSON5 struct{}

func (JSON5) Name() string { return "json5" }

func (JSON5) Parse(candidate string) (map[string]any, error) {
	var v any
	if err := json5.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// PythonLiteral reads a Python dict literal. String literals in either
// quote style are re-encoded as JSON strings with their escapes decoded,
// bare True, False and None become true, false and null, and the result is
// parsed as JSON5 so trailing commas and bare keys still work.
type PythonLiteral struct{}

func (PythonLiteral) Name() string { return "python" }

func (PythonLiteral) Parse(candidate string) (map[string]any, error) {
	rewritten, err := pythonToJSON(candidate)
	if err != nil {
		return nil, err
	}
	return JSON5{}.Parse(rewritten)
}

var pythonConstants = map[string]string{
	"True":  "true",
	"False": "false",
	"None":  "null",
}

// pythonToJSON rewrites Python literal syntax into JSON5 text.
func pythonToJSON(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'' || c == '"':
			text, n, err := pythonString(s[i:])
			if err != nil {
				return "", err
			}
			enc, err := jsonString(text)
			if err != nil {
				return "", err
			}
			b.WriteString(enc)
			i += n
		case isIdentByte(c):
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			word := s[i:j]
			if lit, ok := pythonConstants[word]; ok {
				word = lit
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// pythonString decodes the quoted literal at the start of s and returns
// its text and the number of bytes consumed, closing quote included.
func pythonString(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		if c == quote {
			return b.String(), i + 1, nil
		}
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 == len(s) {
			break
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"':
			b.WriteByte(e)
		case '\n':
			// line continuation
		case 'x', 'u':
			width := 2
			if e == 'u' {
				width = 4
			}
			if i+width >= len(s) {
				return "", 0, fmt.Errorf("truncated \\%c escape", e)
			}
			r, err := strconv.ParseUint(s[i+1:i+1+width], 16, 32)
			if err != nil {
				return "", 0, fmt.Errorf("bad \\%c escape: %w", e, err)
			}
			b.WriteRune(rune(r))
			i += width
		default:
			// Python keeps unknown escapes verbatim.
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return "", 0, errors.New("unterminated string literal")
}

func jsonString(text string) (string, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(text); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

// YAMLFlow reads the candidate as a YAML flow mapping. This recovers
// Python-literal style output such as True/False/None and loose spacing.
// Only a top-level flow mapping is accepted, and every key must carry an
// explicit value, so brace-wrapped prose does not parse.
type YAMLFlow struct{}

func (YAMLFlow) Name() string { return "yaml" }

func (YAMLFlow) Parse(candidate string) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errNotObject
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode || root.Style&yaml.FlowStyle == 0 {
		return nil, errNotObject
	}
	if err := pythonLiterals(root); err != nil {
		return nil, err
	}

	var v any
	if err := root.Decode(&v); err != nil {
		return nil, err
	}

	norm, err := normalizeYAML(v)
	if err != nil {
		return nil, err
	}
	m, ok := norm.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return m, nil
}

// pythonLiterals rejects mapping keys without a value and turns a plain
// None scalar into null.
func pythonLiterals(n *yaml.Node) error {
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind == yaml.ScalarNode && v.Tag == "!!null" && v.Value == "" {
				return fmt.Errorf("line %d: key %q has no value", k.Line, k.Value)
			}
		}
	case yaml.ScalarNode:
		quoted := n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0
		if !quoted && n.Value == "None" {
			n.Tag, n.Value = "", "null"
		}
	}

	for _, c := range n.Content {
		if err := pythonLiterals(c); err != nil {
			return err
		}
	}
	return nil
}

// normalizeYAML converts map[any]any (non-string keys) to map[string]any
// recursively. Keys that are not text are rejected.
func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-text key %v", k)
			}
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}
	return v, nil
}
