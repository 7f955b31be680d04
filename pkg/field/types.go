package field

import "strings"

// ID identifies a field. It is opaque, unique within a registry, and stable
// for the lifetime of a document session.
type ID string

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// Type enumerates the placeholder shapes the upload collaborator detects.
type Type string

const (
	// TypeBracketed marks inline tokens such as `[Company]` or `$[Amount]`.
	TypeBracketed Type = "bracketed"
	// TypeSignatureLine marks `Label:` lines followed by blank padding.
	TypeSignatureLine Type = "signature_line"
)

const (
	// PreviewFallback is shown inside pending preview placeholders when no
	// label is available.
	PreviewFallback = "fill this"
	// PromptFallback names a field inside guidance prompts when no label is
	// available.
	PromptFallback = "this field"
)

// Field is one detected fillable location. Values are immutable once the
// registry is built.
type Field struct {
	ID         ID     `json:"id"`
	Type       Type   `json:"type,omitempty"`
	LabelGuess string `json:"label_guess,omitempty"`
	Value      string `json:"value,omitempty"`
	Label      string `json:"label,omitempty"`
	Hint       string `json:"hint,omitempty"`
	HintLong   string `json:"hint_long,omitempty"`
	DemoValue  string `json:"demo_value,omitempty"`
	Line       int    `json:"line"`
	Start      int    `json:"start,omitempty"`
	End        int    `json:"end,omitempty"`
	Context    string `json:"context,omitempty"`
}

// DisplayLabel resolves the label shown for the field using the chain
// label guess, raw detected value, generic label, and finally fallback.
func (f Field) DisplayLabel(fallback string) string {
	for _, candidate := range []string{f.LabelGuess, f.Value, f.Label} {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// MarkerFor returns the textual marker the upload collaborator embeds in the
// marked template for the given field.
func MarkerFor(id ID) string {
	return "__MARKER_" + string(id) + "__"
}
