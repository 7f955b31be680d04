package collab

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowDataAttributes()
		p.AllowAttrs("class", "data-field-id").OnElements("span")
		p.AllowAttrs("class").OnElements("p", "div", "table", "td", "th", "li")
		markupPolicy = p
	})
	return markupPolicy
}

// SanitizeMarkup strips scripts, event handlers and other unsafe content from
// a collaborator-supplied template while keeping field marker spans intact.
func SanitizeMarkup(markup string) string {
	if markup == "" {
		return ""
	}
	return policy().Sanitize(markup)
}
