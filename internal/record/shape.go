package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cognitio-libera/cognitio/internal/llm"
)

// Shape is the full declaration of a record kind.
type Shape struct {
	Kind        Kind
	Name        string
	Description string
	Fields      []Field
}

var shapes = map[Kind]*Shape{
	KindCoding: {
		Kind:        KindCoding,
		Name:        "coding-question",
		Description: "A LeetCode-style coding problem with starter code",
		Fields: []Field{
			{
				Name: "title", Type: TypeText, Required: true, NonEmpty: true,
				Description: "The title of the coding problem",
				Example:     "Two Sum",
			},
			{
				Name: "description", Type: TypeText, Required: true,
				Description: "The detailed description of the problem",
				Example:     "Given array... return indices...",
			},
			{
				Name: "examples", Type: TypeTextList, Required: true,
				Description: "Examples of input and output",
				Example:     []string{"Input: nums = [2,7], target = 9\nOutput: [0,1]"},
			},
			{
				Name: "constraints", Type: TypeTextList, Required: true,
				Description: "Constraints for the problem",
				Example:     []string{"2 <= nums.length <= 10^4"},
			},
			{
				Name: "starter_code", Type: TypeText, Required: true,
				Description: "The function signature/boilerplate ONLY. Do not include the solution implementation.",
				Example:     "def two_sum(nums, target):\n    pass",
			},
		},
	},
	KindQuiz: {
		Kind:        KindQuiz,
		Name:        "mcq-question",
		Description: "A multiple-choice question with exactly four options",
		Fields: []Field{
			{
				Name: "title", Type: TypeText, Required: true, NonEmpty: true,
				Description: "The question text",
				Example:     "Question text here...",
			},
			{
				Name: "options", Type: TypeTextList, Required: true,
				MinItems: 4, MaxItems: 4, Unique: true,
				Description: "A list of 4 possible answers",
				Example:     []string{"Option A", "Option B", "Option C", "Option D"},
			},
			{
				Name: "correct_option_index", Type: TypeInteger, Required: true,
				Min: intPtr(0), Max: intPtr(3),
				Description: "The index (0-3) of the correct option",
				Example:     2,
			},
			{
				Name: "explanation", Type: TypeText, Required: true,
				Description: "Explanation of why the correct answer is correct",
				Example:     "Explanation here...",
			},
		},
	},
	KindEvaluation: {
		Kind:        KindEvaluation,
		Name:        "evaluation",
		Description: "A verdict on a submitted solution",
		Fields: []Field{
			{
				Name: "is_correct", Type: TypeBoolean, Required: true,
				Description: "Whether the user's answer is correct",
				Example:     true,
			},
			{
				Name: "explanation", Type: TypeText, Required: true,
				Description: "Detailed explanation of why it is correct or incorrect",
				Example:     "Your code correctly implements...",
			},
			{
				Name: "tips", Type: TypeTextList, Required: true,
				Description: "Tips for improvement or optimization",
				Example:     []string{"Consider edge case X", "Use a more descriptive variable name"},
			},
			{
				Name: "rating", Type: TypeInteger, Required: true,
				Description: "Rating from 1 to 10 based on code quality and correctness",
				Example:     9,
			},
		},
	},
}

// ShapeOf returns the declaration for k.
func ShapeOf(k Kind) (*Shape, error) {
	s, ok := shapes[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown record kind %q", ErrInvalidArgument, k)
	}
	return s, nil
}

// MustShape is ShapeOf for kinds known at compile time.
func MustShape(k Kind) *Shape {
	s, err := ShapeOf(k)
	if err != nil {
		panic(err)
	}
	return s
}

// Field looks up a field by name.
func (s *Shape) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Schema derives the JSON Schema for the shape.
func (s *Shape) Schema() *llm.Schema {
	props := make(map[string]any, len(s.Fields))
	var required []any

	for _, f := range s.Fields {
		props[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}

	return &llm.Schema{
		Name:        s.Name,
		Description: s.Description,
		Definition: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

func fieldSchema(f Field) map[string]any {
	def := map[string]any{"description": f.Description}

	switch f.Type {
	case TypeText:
		def["type"] = "string"
		if f.NonEmpty {
			def["minLength"] = 1
		}
	case TypeBoolean:
		def["type"] = "boolean"
	case TypeInteger:
		def["type"] = "integer"
		if f.Min != nil {
			def["minimum"] = *f.Min
		}
		if f.Max != nil {
			def["maximum"] = *f.Max
		}
	case TypeTextList:
		def["type"] = "array"
		def["items"] = map[string]any{"type": "string"}
		if f.MinItems > 0 {
			def["minItems"] = f.MinItems
		}
		if f.MaxItems > 0 {
			def["maxItems"] = f.MaxItems
		}
		if f.Unique {
			def["uniqueItems"] = true
		}
	}
	return def
}

// ExampleJSON renders the example object with fields in declaration order.
// Prompts embed it verbatim, so field names here are the wire contract.
func (s *Shape) ExampleJSON() string {
	var b bytes.Buffer
	b.WriteString("{\n")
	for i, f := range s.Fields {
		var val bytes.Buffer
		enc := json.NewEncoder(&val)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(f.Example); err != nil {
			// Examples are static literals.
			panic(fmt.Sprintf("record: marshal example for %s.%s: %v", s.Name, f.Name, err))
		}
		fmt.Fprintf(&b, "    %q: %s", f.Name, bytes.TrimSpace(val.Bytes()))
		if i < len(s.Fields)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return b.String()
}
