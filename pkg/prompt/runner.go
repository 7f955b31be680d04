package prompt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-docfill/pkg/conversation"
	"github.com/goliatone/go-docfill/pkg/field"
	"github.com/goliatone/go-docfill/pkg/session"
	"github.com/goliatone/go-docfill/pkg/values"
)

// Runner drives a guided pass over a session from the terminal.
type Runner struct {
	driver   PromptDriver
	theme    Theme
	realtime bool
}

// New constructs a Runner with the survey driver and default prefixes.
func New(options ...Option) *Runner {
	r := &Runner{
		driver: NewSurveyDriver(nil),
		theme:  Theme{AssistantPrefix: "> ", SystemPrefix: "* "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Run starts the guide and keeps answering prompts until the pass completes
// or the user stops it. Blank input asks whether to stop; declining asks for
// the same field again.
func (r *Runner) Run(ctx context.Context, s *session.Session) (values.Stats, error) {
	if s == nil {
		return values.Stats{}, errors.New("prompt: session is nil")
	}

	seq := lastSeq(s.Messages())
	s.StartGuide()

	for {
		var err error
		if seq, err = r.deliver(ctx, s, seq); err != nil {
			return s.Stats(), err
		}

		id, awaiting := s.CurrentField()
		if !awaiting {
			break
		}
		f, _ := s.Registry().Get(id)

		answer, err := r.driver.Input(ctx, InputConfig{
			Message: f.DisplayLabel(field.PromptFallback),
			Help:    f.Hint,
			Default: s.Store().Draft(id),
		})
		if err != nil {
			s.StopGuide()
			return s.Stats(), err
		}

		if strings.TrimSpace(answer) == "" {
			stop, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: "Stop the guided fill?",
				Default: true,
			})
			if err != nil {
				s.StopGuide()
				return s.Stats(), err
			}
			if stop {
				s.StopGuide()
				break
			}
			continue
		}

		s.SubmitChat(answer)
	}

	if _, err := r.deliver(ctx, s, seq); err != nil {
		return s.Stats(), err
	}
	return s.Stats(), nil
}

// deliver releases paced messages and prints assistant and system messages
// newer than seq. User messages were already typed and are not echoed.
func (r *Runner) deliver(ctx context.Context, s *session.Session, seq int) (int, error) {
	if r.realtime {
		for {
			due, ok := s.NextDue()
			if !ok {
				break
			}
			if due > 0 {
				timer := time.NewTimer(due)
				select {
				case <-ctx.Done():
					timer.Stop()
					return seq, ctx.Err()
				case <-timer.C:
				}
			}
			s.Advance(due)
		}
	} else {
		s.Flush()
	}

	for _, msg := range s.MessagesSince(seq) {
		seq = msg.Seq
		var prefix string
		switch msg.Role {
		case conversation.RoleAssistant:
			prefix = r.theme.AssistantPrefix
		case conversation.RoleSystem:
			prefix = r.theme.SystemPrefix
		default:
			continue
		}
		if err := r.driver.Info(ctx, prefix+msg.Text); err != nil {
			return seq, err
		}
	}
	return seq, nil
}

func lastSeq(msgs []conversation.Message) int {
	if len(msgs) == 0 {
		return 0
	}
	return msgs[len(msgs)-1].Seq
}
