package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cognitio-libera/cognitio/internal/record"
)

// normalize checks every descriptor of shape against m and returns a new
// mapping holding only declared fields with coerced Go values (string,
// int, bool, []string). Unknown keys are dropped.
func normalize(shape *record.Shape, m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(shape.Fields))
	var errs []error

	for _, f := range shape.Fields {
		raw, present := m[f.Name]
		if !present || raw == nil {
			if f.Required {
				errs = append(errs, &FieldError{Field: f.Name, Reason: "required field is missing"})
			}
			continue
		}

		val, err := coerce(f, raw)
		if err != nil {
			errs = append(errs, &FieldError{Field: f.Name, Reason: err.Error()})
			continue
		}
		out[f.Name] = val
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return out, nil
}

func coerce(f record.Field, v any) (any, error) {
	switch f.Type {
	case record.TypeText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected text, got %s", describe(v))
		}
		if f.NonEmpty && strings.TrimSpace(s) == "" {
			return nil, errors.New("must not be empty")
		}
		return s, nil

	case record.TypeBoolean:
		return toBool(v)

	case record.TypeInteger:
		n, err := toInt(v)
		if err != nil {
			return nil, err
		}
		if f.Min != nil && n < *f.Min {
			return nil, fmt.Errorf("%d is below minimum %d", n, *f.Min)
		}
		if f.Max != nil && n > *f.Max {
			return nil, fmt.Errorf("%d is above maximum %d", n, *f.Max)
		}
		return n, nil

	case record.TypeTextList:
		return toTextList(f, v)
	}
	return nil, fmt.Errorf("unsupported field type %q", f.Type)
}

func toBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %s", describe(v))
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case json.Number:
		return integral(t.String())
	case float64:
		return floatToInt(t)
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case uint64:
		if t > math.MaxInt32 {
			return 0, fmt.Errorf("integer %d out of range", t)
		}
		return int(t), nil
	case string:
		return integral(strings.TrimSpace(t))
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(v))
}

// integral parses s as an integer, accepting an integral float form like
// "8.0".
func integral(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %q", s)
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	return int(f), nil
}

func toTextList(f record.Field, v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of text, got %s", describe(v))
	}

	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("item %d: expected text, got %s", i, describe(item))
		}
		out[i] = s
	}

	if f.MinItems > 0 && len(out) < f.MinItems {
		return nil, fmt.Errorf("expected at least %d items, got %d", f.MinItems, len(out))
	}
	if f.MaxItems > 0 && len(out) > f.MaxItems {
		return nil, fmt.Errorf("expected at most %d items, got %d", f.MaxItems, len(out))
	}
	if f.Unique {
		seen := make(map[string]bool, len(out))
		for _, s := range out {
			if seen[s] {
				return nil, fmt.Errorf("duplicate item %q", s)
			}
			seen[s] = true
		}
	}
	return out, nil
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "text"
	case bool:
		return "boolean"
	case json.Number, float64, int, int64, uint64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", v)
}
