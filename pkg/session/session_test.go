package session

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docfill/pkg/conversation"
	"github.com/goliatone/go-docfill/pkg/field"
	"github.com/goliatone/go-docfill/pkg/guide"
)

func testDocument() Document {
	return Document{
		Name: "nda.docx",
		Fields: []field.Field{
			{ID: "A", LabelGuess: "Company", HintLong: "The company's legal name.", DemoValue: "Acme   Corp"},
			{ID: "B", LabelGuess: "Amount", DemoValue: "$10,000"},
			{ID: "C", Label: "By", DemoValue: "Jane Doe"},
		},
		Template: `<p>Between __MARKER_A__ for __MARKER_B__.</p><p>By: __MARKER_C__</p>`,
	}
}

func counter() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s, err := New(testDocument(), append([]Option{counter()}, opts...)...)
	require.NoError(t, err)
	return s
}

func TestNew_AnnouncesDocument(t *testing.T) {
	s := newTestSession(t)

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, conversation.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Loaded nda.docx with 3 fields to fill.", msgs[0].Text)
	assert.Equal(t, "id-1", s.ID())
	assert.Equal(t, 3, s.Stats().Total)
	assert.Equal(t, 0, s.Stats().Filled)
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	doc := testDocument()
	doc.Fields = append(doc.Fields, field.Field{ID: "A"})
	_, err := New(doc)
	require.Error(t, err)
}

func TestEditAndBlur(t *testing.T) {
	var events []FocusEvent
	s := newTestSession(t, WithFocusListener(func(ev FocusEvent) { events = append(events, ev) }))

	require.NoError(t, s.EditField("A", "  Acme \n Corp "))
	v := s.Store().Get("A")
	assert.Equal(t, "  Acme \n Corp ", v.Draft)
	assert.Equal(t, "Acme Corp", v.Canonical)

	require.NoError(t, s.BlurField("A"))
	assert.Equal(t, "Acme Corp", s.Store().Draft("A"))
	assert.Equal(t, []FocusEvent{{FieldID: "A", Source: FocusEdit}}, events)

	err := s.EditField("Z", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.ErrorIs(t, s.BlurField("Z"), ErrUnknownField)
}

func TestPreviewReflectsCanonicalValues(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.EditField("A", "Acme\tCorp"))

	out, err := s.Preview()
	require.NoError(t, err)
	assert.Contains(t, out, `data-field-id="A">Acme Corp</span>`)
	assert.Contains(t, out, `docfill-pending" data-field-id="B">Amount</span>`)
	assert.NotContains(t, out, "__MARKER_")

	text, err := s.PreviewText()
	require.NoError(t, err)
	assert.Equal(t, "Between Acme Corp for [Amount].\nBy: [By]", text)

	page, err := s.PreviewPage()
	require.NoError(t, err)
	assert.Contains(t, page, "1 / 3 fields filled (33%)")
	assert.Contains(t, page, "<title>nda.docx</title>")
}

func TestGuideFlowThroughChat(t *testing.T) {
	var events []FocusEvent
	s := newTestSession(t,
		WithPacing(0),
		WithFocusListener(func(ev FocusEvent) { events = append(events, ev) }),
	)

	s.StartGuide()
	current, ok := s.CurrentField()
	require.True(t, ok)
	assert.Equal(t, field.ID("A"), current)
	assert.Equal(t, guide.StateAwaiting, s.GuideState())

	last := s.Messages()[len(s.Messages())-1]
	assert.Equal(t, "Next up: Company\n\nThe company's legal name.", last.Text)

	require.NoError(t, s.EditField("B", "$5"))

	s.SetChatInput("Acme")
	assert.True(t, s.SubmitChatInput())
	assert.Empty(t, s.ChatInput())

	current, _ = s.CurrentField()
	assert.Equal(t, field.ID("C"), current, "directly filled B must be skipped")

	assert.True(t, s.SubmitChat("Jane"))
	assert.Equal(t, guide.StateIdle, s.GuideState())
	assert.Equal(t, 3, s.Stats().Filled)

	assert.Equal(t, []FocusEvent{
		{FieldID: "A", Source: FocusGuide},
		{FieldID: "B", Source: FocusEdit},
		{FieldID: "C", Source: FocusGuide},
	}, events)

	msgs := s.Messages()
	assert.Equal(t, conversation.KindCompletion, msgs[len(msgs)-1].Kind)
}

func TestGuidePacingUsesLogicalClock(t *testing.T) {
	s := newTestSession(t)
	s.StartGuide()
	s.SubmitChat("Acme")

	due, ok := s.NextDue()
	require.True(t, ok)
	assert.Equal(t, guide.DefaultPacing, due)

	current, _ := s.CurrentField()
	assert.Equal(t, field.ID("B"), current)

	delivered := s.Advance(due)
	require.Len(t, delivered, 1)
	assert.Equal(t, field.ID("B"), delivered[0].FieldID)
	assert.Empty(t, s.Flush())
}

func TestRestartGuideDropsPacedPrompt(t *testing.T) {
	s := newTestSession(t)
	s.StartGuide()
	s.SubmitChat("Acme")

	_, ok := s.NextDue()
	require.True(t, ok, "prompt for B should be pending")
	seq := s.Messages()[len(s.Messages())-1].Seq

	s.StartGuide()
	_, ok = s.NextDue()
	assert.False(t, ok, "restart must not leave the old prompt pending")

	fresh := s.MessagesSince(seq)
	require.Len(t, fresh, 1)
	assert.Equal(t, conversation.KindPrompt, fresh[0].Kind)
	assert.Equal(t, field.ID("B"), fresh[0].FieldID)
	assert.Empty(t, s.Flush())
}

func TestStopGuideDropsPacedPrompt(t *testing.T) {
	s := newTestSession(t)
	s.StartGuide()
	s.SubmitChat("Acme")

	s.StopGuide()
	assert.Equal(t, guide.StateIdle, s.GuideState())
	assert.Empty(t, s.Flush())

	assert.True(t, s.SubmitChat("hello"))
	for _, msg := range s.Messages() {
		assert.NotEqual(t, field.ID("B"), msg.FieldID, "stopped guide must not prompt for B")
	}
}

func TestSubmitChatIdleRepliesWithHelp(t *testing.T) {
	s := newTestSession(t, WithHelpText("Press guide."))
	assert.False(t, s.SubmitChat("   "))
	assert.True(t, s.SubmitChat("hello"))

	msgs := s.MessagesSince(1)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, "Press guide.", msgs[1].Text)
	assert.Equal(t, 0, s.Stats().Filled)
}

func TestQuickFillDemo(t *testing.T) {
	doc := testDocument()
	doc.Fields = append(doc.Fields, field.Field{ID: "D", LabelGuess: "Notes"})
	doc.Template += " __MARKER_D__"
	s, err := New(doc)
	require.NoError(t, err)

	assert.Equal(t, 3, s.QuickFillDemo())
	for _, id := range []field.ID{"A", "B", "C"} {
		v := s.Store().Get(id)
		assert.True(t, s.Store().IsFilled(id))
		assert.Equal(t, v.Canonical, v.Draft)
	}
	assert.Equal(t, "Acme Corp", s.Store().Canonical("A"))
	assert.False(t, s.Store().IsFilled("D"))
	assert.True(t, strings.HasPrefix(s.Messages()[len(s.Messages())-1].Text, "Filled 3 of 4"))
}

func TestExportRequestUsesCanonicalValues(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.EditField("A", "  Acme   Corp  "))

	req := s.ExportRequest(false)
	assert.Equal(t, "nda.docx", req.Filename)
	assert.False(t, req.AlsoPDF)
	require.Len(t, req.Fields, 3)
	assert.Equal(t, "Acme Corp", req.Fields[0].Input)
	assert.Equal(t, "", req.Fields[1].Input)

	_, ok := s.Exported()
	assert.False(t, ok)
}

func TestFieldViews(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.EditField("B", "$1"))
	s.StartGuide()

	views := s.FieldViews()
	require.Len(t, views, 3)
	assert.True(t, views[0].Current)
	assert.Equal(t, "Company", views[0].Label)
	assert.True(t, views[1].Filled)
	assert.Equal(t, "$1", views[1].Canonical)
	assert.Equal(t, "By", views[2].Label)
	assert.False(t, views[2].Current)
}
