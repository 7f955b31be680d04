package preview

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl templates/fragments/*.tpl
var embeddedTemplates embed.FS

const (
	valueTemplate       = "fragments/value"
	placeholderTemplate = "fragments/placeholder"
	pageTemplate        = "page"

	// StylesheetAsset is the theme asset key resolved for the page stylesheet.
	StylesheetAsset = "preview.stylesheet"
)

// TemplatesFS exposes the embedded fragment and page templates so callers can
// copy and override them through WithTemplatesFS.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		// The embed directive guarantees the directory exists.
		panic(err)
	}
	return sub
}
