package values

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-docfill/pkg/field"
)

func newTestStore(t *testing.T, ids ...field.ID) *Store {
	t.Helper()
	fields := make([]field.Field, 0, len(ids))
	for _, id := range ids {
		fields = append(fields, field.Field{ID: id})
	}
	reg, err := field.NewRegistry(fields...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return NewStore(reg)
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"   ":                  "",
		"Acme":                 "Acme",
		"  Acme   Corp  ":      "Acme Corp",
		"Acme\n\tCorp\r\n LLC": "Acme Corp LLC",
		"already normal value": "already normal value",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", " x ", "a\n\n b\t\tc", "　lead", "$500,000 ", "multi  word   label"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}

func TestStore_SetDraftKeepsCanonicalInSync(t *testing.T) {
	s := newTestStore(t, "a")

	for _, raw := range []string{"  Jane   Doe ", "Jane\nDoe", "", "   "} {
		s.SetDraft("a", raw)
		if got := s.Draft("a"); got != raw {
			t.Fatalf("draft mismatch: want %q got %q", raw, got)
		}
		if got := s.Canonical("a"); got != Normalize(raw) {
			t.Fatalf("canonical mismatch for %q: got %q", raw, got)
		}
	}
}

func TestStore_CommitOnBlur(t *testing.T) {
	s := newTestStore(t, "a")

	s.SetDraft("a", "  Acme \n Corp ")
	s.CommitOnBlur("a")
	if diff := cmp.Diff(Value{Draft: "Acme Corp", Canonical: "Acme Corp"}, s.Get("a")); diff != "" {
		t.Fatalf("value mismatch after blur (-want +got):\n%s", diff)
	}

	s.SetDraft("a", "   ")
	s.CommitOnBlur("a")
	if got := s.Draft("a"); got != "   " {
		t.Fatalf("blur with empty canonical should keep draft, got %q", got)
	}
}

func TestStore_CompletionStats(t *testing.T) {
	s := newTestStore(t, "a", "b", "c", "d")
	s.SetDraft("a", "one")
	s.SetDraft("c", " three ")
	s.SetDraft("d", " \t ")

	stats := s.CompletionStats()
	if diff := cmp.Diff(Stats{Filled: 2, Total: 4}, stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if stats.Percent() != 50 {
		t.Fatalf("expected 50%%, got %d", stats.Percent())
	}
	if (Stats{}).Percent() != 0 {
		t.Fatalf("expected 0%% for empty registry")
	}
	if (Stats{Filled: 1, Total: 3}).Percent() != 33 {
		t.Fatalf("expected rounding to 33")
	}
}

func TestStore_UnknownIDPanics(t *testing.T) {
	s := newTestStore(t, "a")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unknown id")
		}
	}()
	s.SetDraft("missing", "x")
}

func TestStore_SnapshotFollowsRegistryOrder(t *testing.T) {
	s := newTestStore(t, "z", "a")
	s.SetDraft("a", "A ")

	want := []Entry{
		{ID: "z"},
		{ID: "a", Draft: "A ", Canonical: "A"},
	}
	if diff := cmp.Diff(want, s.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}
