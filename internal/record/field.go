package record

// FieldType is the declared type of a record field.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeBoolean  FieldType = "boolean"
	TypeInteger  FieldType = "integer"
	TypeTextList FieldType = "text-list"
)

// Field declares one field of a record shape. Validation, the JSON Schema
// sent to providers, and the example object embedded in prompts are all
// derived from these descriptors.
type Field struct {
	Name        string
	Type        FieldType
	Required    bool
	Description string

	// NonEmpty rejects blank text.
	NonEmpty bool

	// MinItems and MaxItems bound a text-list; zero means unbounded.
	MinItems int
	MaxItems int

	// Unique rejects duplicate entries in a text-list.
	Unique bool

	// Min and Max bound an integer when non-nil.
	Min *int
	Max *int

	// Example is the value shown in the prompt's example object.
	Example any
}

func intPtr(n int) *int { return &n }
