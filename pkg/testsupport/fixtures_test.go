package testsupport

import (
	"testing"

	"github.com/goliatone/go-docfill/pkg/field"
)

func TestSampleUploadBuildsSession(t *testing.T) {
	s := NewSession(t, SampleUpload())

	if got := s.Registry().Len(); got != 3 {
		t.Fatalf("expected 3 fields, got %d", got)
	}
	want := []field.ID{"A", "B", "C"}
	var got []field.ID
	for _, f := range s.Registry().Fields() {
		got = append(got, f.ID)
	}
	if diff := CompareGolden(want, got); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}
