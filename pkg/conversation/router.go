package conversation

import (
	"strings"

	"github.com/goliatone/go-docfill/pkg/guide"
)

// DefaultHelp is the static reply used when no guided pass is active.
const DefaultHelp = `I can walk you through the remaining fields one at a time. Choose "Guide me" to start, or type directly into any field card.`

// Guide is the subset of the traversal engine the router dispatches to.
// *guide.Engine satisfies it.
type Guide interface {
	Active() bool
	Answer(raw string) ([]guide.Emission, error)
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithHelpText overrides the fallback reply.
func WithHelpText(text string) RouterOption {
	return func(r *Router) {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			r.help = trimmed
		}
	}
}

// Router dispatches chat submissions either to the active guided pass or to a
// static help reply.
type Router struct {
	log   *Log
	guide Guide
	help  string
	input string
}

// NewRouter wires a router to its log and guide.
func NewRouter(log *Log, g Guide, options ...RouterOption) *Router {
	r := &Router{log: log, guide: g, help: DefaultHelp}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// SetInput replaces the pending input buffer.
func (r *Router) SetInput(text string) {
	r.input = text
}

// Input returns the pending input buffer.
func (r *Router) Input() string {
	return r.input
}

// SubmitInput submits the pending input buffer.
func (r *Router) SubmitInput() bool {
	return r.Submit(r.input)
}

// Submit handles one chat submission. Blank text is ignored and reported as
// false; anything else is logged as a user message and answered.
func (r *Router) Submit(text string) bool {
	r.input = ""
	if strings.TrimSpace(text) == "" {
		return false
	}

	r.log.Append(Message{Role: RoleUser, Text: text})

	if r.guide != nil && r.guide.Active() {
		emissions, err := r.guide.Answer(text)
		if err == nil {
			r.Emit(emissions)
			return true
		}
	}

	r.log.Append(Message{Role: RoleAssistant, Kind: KindHelp, Text: r.help})
	return true
}

// Emit appends guide emissions to the log, scheduling delayed ones.
func (r *Router) Emit(emissions []guide.Emission) {
	for _, em := range emissions {
		msg := Message{
			Role:    RoleAssistant,
			Kind:    Kind(em.Kind),
			Text:    em.Text,
			FieldID: em.FieldID,
		}
		r.log.Schedule(msg, em.Delay)
	}
}
