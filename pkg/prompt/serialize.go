package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-docfill/pkg/values"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits one id=value line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ContentType reports the media type for a format.
func (f OutputFormat) ContentType() string {
	switch f {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Serialize writes canonical values keyed by field id.
func Serialize(entries []values.Entry, format OutputFormat) ([]byte, error) {
	switch format {
	case "", OutputFormatJSON:
		out := make(map[string]string, len(entries))
		for _, e := range entries {
			out[e.ID.String()] = e.Canonical
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		return bytes.TrimRight(buf.Bytes(), "\n"), nil
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for _, e := range entries {
			form.Set(e.ID.String(), e.Canonical)
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&b, "%s=%s\n", e.ID, e.Canonical)
		}
		return []byte(b.String()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
