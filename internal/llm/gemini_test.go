package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemma", "gemma-3-27b-it"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"name", "age"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["name"].Type != "STRING" {
		t.Fatalf("expected STRING for name, got %s", schema.Properties["name"].Type)
	}
	if schema.Properties["age"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for age, got %s", schema.Properties["age"].Type)
	}
	if len(schema.Properties["grade"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["grade"].Enum))
	}
	if schema.Properties["scores"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}

func TestIsGemma(t *testing.T) {
	tests := map[string]bool{
		"gemma-3-27b-it":        true,
		"models/gemma-3-4b-it":  true,
		"gemini-2.0-flash":      false,
		"models/gemini-2.5-pro": false,
	}
	for model, want := range tests {
		if got := isGemma(model); got != want {
			t.Errorf("isGemma(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestPrependSystem(t *testing.T) {
	contents := buildGeminiContents(UserPrompt("Generate a quiz question."))
	got := prependSystem(contents, "You are a professor.")

	if len(got) != 1 {
		t.Fatalf("expected 1 content, got %d", len(got))
	}
	if got[0].Role != "user" {
		t.Fatalf("expected user role, got %q", got[0].Role)
	}
	if len(got[0].Parts) != 2 || got[0].Parts[0].Text != "You are a professor.\n\n" {
		t.Fatalf("system text not prepended: %+v", got[0].Parts)
	}
	// The original slice is left untouched.
	if len(contents[0].Parts) != 1 {
		t.Fatalf("input contents mutated")
	}
}

func TestBuildGeminiSchemaArrayBounds(t *testing.T) {
	def := map[string]any{
		"type":     "array",
		"items":    map[string]any{"type": "string"},
		"minItems": 4,
		"maxItems": 4,
	}
	schema := buildGeminiSchema(def)
	if schema.MinItems == nil || *schema.MinItems != 4 {
		t.Fatalf("expected minItems 4, got %v", schema.MinItems)
	}
	if schema.MaxItems == nil || *schema.MaxItems != 4 {
		t.Fatalf("expected maxItems 4, got %v", schema.MaxItems)
	}
}
