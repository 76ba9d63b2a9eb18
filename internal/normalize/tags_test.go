package normalize

import "testing"

func TestTagsFindsKeywords(t *testing.T) {
	text := "Brand NEW petite blonde companion, european charm"
	got := Tags(text)

	want := []string{"NEW", "BLONDE", "PETITE", "EUROPEAN"}
	if len(got) != len(want) {
		t.Fatalf("Tags returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tags returned %v, want %v", got, want)
		}
	}
}

func TestTagsIdempotent(t *testing.T) {
	text := "busty LATINA stunner"

	first := Tags(text)
	second := Tags(text)

	if len(first) != len(second) {
		t.Fatalf("repeated scans disagree: %v vs %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated scans disagree: %v vs %v", first, second)
		}
	}
}

func TestTagsNoMatches(t *testing.T) {
	if got := Tags("nothing relevant here"); got != nil {
		t.Fatalf("expected no tags, got %v", got)
	}
	if got := Tags(""); got != nil {
		t.Fatalf("expected no tags for empty text, got %v", got)
	}
}
