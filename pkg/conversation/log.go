// Package conversation holds the chat log shown next to the document and the
// router that decides what a chat submission means.
//
// The log is append-only. Messages may also be scheduled on a logical
// timeline (used to pace guidance prompts); Advance moves the timeline and
// delivers what became due, so tests can assert ordering without sleeping.
// Appending a new message always delivers pending ones first, keeping the
// visible order consistent with the order state changed in.
package conversation

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-docfill/pkg/field"
)

// Role tags the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Kind classifies assistant and system messages.
type Kind string

const (
	KindText         Kind = "text"
	KindPrompt       Kind = "prompt"
	KindConfirmation Kind = "confirmation"
	KindCompletion   Kind = "completion"
	KindHelp         Kind = "help"
	KindNotice       Kind = "notice"
)

// Message is one entry in the log. Seq is the delivery order token.
type Message struct {
	ID      string   `json:"id"`
	Seq     int      `json:"seq"`
	Role    Role     `json:"role"`
	Kind    Kind     `json:"kind"`
	Text    string   `json:"text"`
	FieldID field.ID `json:"field_id,omitempty"`
}

type scheduled struct {
	msg   Message
	due   time.Duration
	order int
}

// LogOption configures a Log.
type LogOption func(*Log)

// WithIDGenerator overrides the message id generator (uuid by default).
func WithIDGenerator(fn func() string) LogOption {
	return func(l *Log) {
		if fn != nil {
			l.newID = fn
		}
	}
}

// Log is the ordered, append-only conversation history of one document
// session. It is not safe for concurrent use.
type Log struct {
	messages []Message
	pending  []scheduled
	now      time.Duration
	orders   int
	newID    func() string
}

// NewLog returns an empty log.
func NewLog(options ...LogOption) *Log {
	l := &Log{newID: uuid.NewString}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Append delivers pending messages, then appends msg immediately.
func (l *Log) Append(msg Message) Message {
	l.Flush()
	return l.deliver(msg)
}

// Schedule parks msg until the logical clock has advanced by delay. A
// non-positive delay delivers msg now, after any pending message already due;
// messages still in the future stay parked.
func (l *Log) Schedule(msg Message, delay time.Duration) {
	if delay <= 0 {
		l.release(func(s scheduled) bool { return s.due <= l.now })
		l.deliver(msg)
		return
	}
	l.orders++
	l.pending = append(l.pending, scheduled{msg: msg, due: l.now + delay, order: l.orders})
}

// Advance moves the logical clock forward and delivers every pending message
// whose due time has passed, ordered by due time then scheduling order.
func (l *Log) Advance(d time.Duration) []Message {
	if d > 0 {
		l.now += d
	}
	return l.release(func(s scheduled) bool { return s.due <= l.now })
}

// Flush delivers every pending message regardless of due time.
func (l *Log) Flush() []Message {
	return l.release(func(scheduled) bool { return true })
}

// Discard drops every pending message without delivering it and reports how
// many were dropped.
func (l *Log) Discard() int {
	n := len(l.pending)
	l.pending = nil
	return n
}

// Now reports the logical clock.
func (l *Log) Now() time.Duration {
	return l.now
}

// Pending reports the number of scheduled messages not yet delivered.
func (l *Log) Pending() int {
	return len(l.pending)
}

// NextDue reports how far the clock must advance for the next scheduled
// message to become due.
func (l *Log) NextDue() (time.Duration, bool) {
	if len(l.pending) == 0 {
		return 0, false
	}
	next := l.pending[0].due
	for _, s := range l.pending[1:] {
		if s.due < next {
			next = s.due
		}
	}
	if next < l.now {
		return 0, true
	}
	return next - l.now, true
}

// Messages returns a copy of the delivered messages.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Since returns delivered messages with Seq greater than seq.
func (l *Log) Since(seq int) []Message {
	idx := sort.Search(len(l.messages), func(i int) bool { return l.messages[i].Seq > seq })
	out := make([]Message, len(l.messages)-idx)
	copy(out, l.messages[idx:])
	return out
}

// Len reports the number of delivered messages.
func (l *Log) Len() int {
	return len(l.messages)
}

func (l *Log) release(ready func(scheduled) bool) []Message {
	if len(l.pending) == 0 {
		return nil
	}
	sort.SliceStable(l.pending, func(i, j int) bool {
		if l.pending[i].due != l.pending[j].due {
			return l.pending[i].due < l.pending[j].due
		}
		return l.pending[i].order < l.pending[j].order
	})

	var delivered []Message
	keep := l.pending[:0]
	for _, s := range l.pending {
		if ready(s) {
			delivered = append(delivered, l.deliver(s.msg))
			continue
		}
		keep = append(keep, s)
	}
	l.pending = keep
	return delivered
}

func (l *Log) deliver(msg Message) Message {
	if msg.ID == "" {
		msg.ID = l.newID()
	}
	if msg.Kind == "" {
		msg.Kind = KindText
	}
	msg.Seq = len(l.messages) + 1
	l.messages = append(l.messages, msg)
	return msg
}
