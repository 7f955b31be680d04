package guide

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-docfill/pkg/field"
)

// ErrNotAwaiting is returned by Answer when no field is being prompted.
var ErrNotAwaiting = errors.New("guide: no field awaiting an answer")

// DefaultPacing delays the prompt for the next field after an answer.
const DefaultPacing = 600 * time.Millisecond

// DefaultGenericHint is used when a field carries no long hint.
const DefaultGenericHint = "Type the value exactly as it should appear in the document. You can change it later from the field list."

// State enumerates the traversal states.
type State int

const (
	// StateIdle means no field is being prompted.
	StateIdle State = iota
	// StateAwaiting means the engine waits for an answer for Current().
	StateAwaiting
)

func (s State) String() string {
	switch s {
	case StateAwaiting:
		return "awaiting"
	default:
		return "idle"
	}
}

// Kind classifies emitted messages.
type Kind string

const (
	KindPrompt       Kind = "prompt"
	KindConfirmation Kind = "confirmation"
	KindCompletion   Kind = "completion"
)

// Emission is a message the engine asks its caller to show.
type Emission struct {
	Kind    Kind
	Text    string
	FieldID field.ID
	Delay   time.Duration
}

// ValueStore is the subset of the value store the engine writes through.
// *values.Store satisfies it.
type ValueStore interface {
	SetDraft(id field.ID, raw string)
	CommitOnBlur(id field.ID)
	Canonical(id field.ID) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPacing overrides the delay attached to next-field prompts. Zero emits
// them immediately.
func WithPacing(d time.Duration) Option {
	return func(e *Engine) {
		if d >= 0 {
			e.pacing = d
		}
	}
}

// WithGenericHint overrides the instructional text used for fields without a
// long hint.
func WithGenericHint(hint string) Option {
	return func(e *Engine) {
		if trimmed := strings.TrimSpace(hint); trimmed != "" {
			e.genericHint = trimmed
		}
	}
}

// WithFocusListener registers a callback invoked whenever the engine moves to
// a field.
func WithFocusListener(fn func(field.ID)) Option {
	return func(e *Engine) {
		e.onFocus = fn
	}
}

// Engine drives guided fill. It is not safe for concurrent use.
type Engine struct {
	registry    *field.Registry
	store       ValueStore
	state       State
	current     field.ID
	position    int
	pacing      time.Duration
	genericHint string
	onFocus     func(field.ID)
}

// New constructs an idle engine.
func New(registry *field.Registry, store ValueStore, options ...Option) *Engine {
	e := &Engine{
		registry:    registry,
		store:       store,
		position:    -1,
		pacing:      DefaultPacing,
		genericHint: DefaultGenericHint,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// State reports the current state.
func (e *Engine) State() State {
	return e.state
}

// Active reports whether a field is awaiting an answer.
func (e *Engine) Active() bool {
	return e.state == StateAwaiting
}

// Current returns the field awaiting an answer.
func (e *Engine) Current() (field.ID, bool) {
	if e.state != StateAwaiting {
		return "", false
	}
	return e.current, true
}

// Start begins a pass from the top of the document. Calling it while a pass is
// active restarts the pass.
func (e *Engine) Start() []Emission {
	next, ok := e.nextUnfilled(0)
	if !ok {
		e.reset()
		return []Emission{e.completion()}
	}
	e.await(next)
	return []Emission{e.prompt(0)}
}

// Answer records raw for the current field as if typed and blurred, then
// advances to the next empty field after it.
func (e *Engine) Answer(raw string) ([]Emission, error) {
	if e.state != StateAwaiting {
		return nil, ErrNotAwaiting
	}

	answered := e.registry.At(e.position)
	e.store.SetDraft(answered.ID, raw)
	e.store.CommitOnBlur(answered.ID)

	out := []Emission{e.confirmation(answered)}

	next, ok := e.nextUnfilled(e.position + 1)
	if !ok {
		e.reset()
		return append(out, e.completion()), nil
	}
	e.await(next)
	return append(out, e.prompt(e.pacing)), nil
}

// Stop leaves the pass without touching any value.
func (e *Engine) Stop() {
	e.reset()
}

func (e *Engine) nextUnfilled(from int) (int, bool) {
	for i := from; i < e.registry.Len(); i++ {
		if strings.TrimSpace(e.store.Canonical(e.registry.At(i).ID)) == "" {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) await(position int) {
	e.state = StateAwaiting
	e.position = position
	e.current = e.registry.At(position).ID
	if e.onFocus != nil {
		e.onFocus(e.current)
	}
}

func (e *Engine) reset() {
	e.state = StateIdle
	e.position = -1
	e.current = ""
}

func (e *Engine) prompt(delay time.Duration) Emission {
	f := e.registry.At(e.position)
	hint := strings.TrimSpace(f.HintLong)
	if hint == "" {
		hint = e.genericHint
	}
	return Emission{
		Kind:    KindPrompt,
		Text:    fmt.Sprintf("Next up: %s\n\n%s", f.DisplayLabel(field.PromptFallback), hint),
		FieldID: f.ID,
		Delay:   delay,
	}
}

func (e *Engine) confirmation(f field.Field) Emission {
	label := f.DisplayLabel(field.PromptFallback)
	text := fmt.Sprintf("Saved %s: %s", label, e.store.Canonical(f.ID))
	if e.store.Canonical(f.ID) == "" {
		text = fmt.Sprintf("Left %s empty.", label)
	}
	return Emission{Kind: KindConfirmation, Text: text, FieldID: f.ID}
}

func (e *Engine) completion() Emission {
	remaining := 0
	for i := 0; i < e.registry.Len(); i++ {
		if strings.TrimSpace(e.store.Canonical(e.registry.At(i).ID)) == "" {
			remaining++
		}
	}
	text := "All fields are filled. Review the preview or export the document."
	switch {
	case remaining == 1:
		text = "Reached the end of the document. 1 field is still empty; start the guide again to revisit it."
	case remaining > 1:
		text = fmt.Sprintf("Reached the end of the document. %d fields are still empty; start the guide again to revisit them.", remaining)
	}
	return Emission{Kind: KindCompletion, Text: text}
}
