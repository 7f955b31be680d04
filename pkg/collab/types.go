package collab

import (
	"strings"

	"github.com/goliatone/go-docfill/pkg/field"
)

// Placeholder is one detected field as the backend reports it.
type Placeholder struct {
	ID         string `json:"id" yaml:"id"`
	Type       string `json:"type" yaml:"type"`
	Value      string `json:"value,omitempty" yaml:"value,omitempty"`
	Label      string `json:"label,omitempty" yaml:"label,omitempty"`
	LabelGuess string `json:"label_guess,omitempty" yaml:"label_guess,omitempty"`
	Hint       string `json:"hint,omitempty" yaml:"hint,omitempty"`
	HintLong   string `json:"hint_long,omitempty" yaml:"hint_long,omitempty"`
	DemoValue  string `json:"demo_value,omitempty" yaml:"demo_value,omitempty"`
	Line       int    `json:"line" yaml:"line"`
	Start      int    `json:"start,omitempty" yaml:"start,omitempty"`
	End        int    `json:"end,omitempty" yaml:"end,omitempty"`
	Context    string `json:"context,omitempty" yaml:"context,omitempty"`
}

// Field converts the placeholder into a registry field.
func (p Placeholder) Field() field.Field {
	return field.Field{
		ID:         field.ID(strings.TrimSpace(p.ID)),
		Type:       field.Type(p.Type),
		LabelGuess: p.LabelGuess,
		Value:      p.Value,
		Label:      p.Label,
		Hint:       p.Hint,
		HintLong:   p.HintLong,
		DemoValue:  p.DemoValue,
		Line:       p.Line,
		Start:      p.Start,
		End:        p.End,
		Context:    p.Context,
	}
}

// PlaceholderFromField converts a registry field back into its wire form.
func PlaceholderFromField(f field.Field) Placeholder {
	return Placeholder{
		ID:         f.ID.String(),
		Type:       string(f.Type),
		Value:      f.Value,
		Label:      f.Label,
		LabelGuess: f.LabelGuess,
		Hint:       f.Hint,
		HintLong:   f.HintLong,
		DemoValue:  f.DemoValue,
		Line:       f.Line,
		Start:      f.Start,
		End:        f.End,
		Context:    f.Context,
	}
}

// Summary counts detected placeholders by type.
type Summary struct {
	Total          int `json:"total" yaml:"total"`
	Bracketed      int `json:"bracketed" yaml:"bracketed"`
	SignatureLines int `json:"signature_lines" yaml:"signature_lines"`
}

// UploadResult is the backend response to a document upload. MarkedHTML is
// empty when the backend could not produce a marked template.
type UploadResult struct {
	Success        bool          `json:"success" yaml:"success"`
	Filename       string        `json:"filename" yaml:"filename"`
	Placeholders   []Placeholder `json:"placeholders" yaml:"placeholders"`
	Summary        Summary       `json:"summary" yaml:"summary"`
	MarkedHTML     string        `json:"marked_html,omitempty" yaml:"marked_html,omitempty"`
	PDFURL         string        `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`
	AIHintsEnabled bool          `json:"ai_hints_enabled" yaml:"ai_hints_enabled"`
}

// Fields converts every placeholder into a registry field, preserving order.
func (r UploadResult) Fields() []field.Field {
	out := make([]field.Field, 0, len(r.Placeholders))
	for _, p := range r.Placeholders {
		out = append(out, p.Field())
	}
	return out
}

// ExportField is a placeholder plus the value entered for it.
type ExportField struct {
	Placeholder `yaml:",inline"`
	Input       string `json:"input" yaml:"input"`
}

// ExportRequest asks the backend to produce a filled document.
type ExportRequest struct {
	Filename string        `json:"filename" yaml:"filename"`
	Fields   []ExportField `json:"fields" yaml:"fields"`
	AlsoPDF  bool          `json:"also_pdf" yaml:"also_pdf"`
}

// NewExportRequest builds an export payload from fields and a canonical value
// lookup. Only canonical values are sent.
func NewExportRequest(filename string, fields []field.Field, canonical func(field.ID) string, alsoPDF bool) ExportRequest {
	req := ExportRequest{
		Filename: filename,
		Fields:   make([]ExportField, 0, len(fields)),
		AlsoPDF:  alsoPDF,
	}
	for _, f := range fields {
		input := ""
		if canonical != nil {
			input = canonical(f.ID)
		}
		req.Fields = append(req.Fields, ExportField{
			Placeholder: PlaceholderFromField(f),
			Input:       input,
		})
	}
	return req
}

// ExportResult locates the filled outputs. FilledPDFURL is empty when PDF
// conversion was skipped or failed.
type ExportResult struct {
	FilledDocxURL string `json:"filled_docx_url" yaml:"filled_docx_url"`
	FilledPDFURL  string `json:"filled_pdf_url,omitempty" yaml:"filled_pdf_url,omitempty"`
}
