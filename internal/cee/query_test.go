package cee

import "testing"

func TestTokenize(t *testing.T) {
	got := Tokenize("What's the Fourier-Transform? (signals-lecture)")
	want := []string{"what", "the", "fourier", "transform", "signals", "lecture"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %q want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestTokenize_DropsSingleChar(t *testing.T) {
	got := Tokenize("a b cd")
	want := []string{"cd"}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAnalyze_TimeOnlyQuery(t *testing.T) {
	a := Analyze("what was yesterday")
	if !a.HasTimeReference {
		t.Fatalf("expected time reference detected")
	}
	if a.HasSemanticContent {
		t.Fatalf("expected no meaningful semantic content, got %q", a.SemanticPart)
	}
	if !a.ShouldSkipEmbedding {
		t.Fatalf("expected ShouldSkipEmbedding for a pure time query")
	}
}

func TestAnalyze_SemanticQuery(t *testing.T) {
	a := Analyze("what is the Fourier transform")
	if a.HasTimeReference {
		t.Fatalf("did not expect a time reference")
	}
	if !a.HasSemanticContent {
		t.Fatalf("expected meaningful semantic content, got %q", a.SemanticPart)
	}
	if a.ShouldSkipEmbedding {
		t.Fatalf("should not skip embedding for a semantic query")
	}
}

func TestAnalyze_TimeAndSemantic(t *testing.T) {
	a := Analyze("what did we discuss last week about Fourier transforms")
	if !a.HasTimeReference {
		t.Fatalf("expected a time reference")
	}
	if !a.HasSemanticContent {
		t.Fatalf("expected semantic content alongside the time reference")
	}
	if a.ShouldSkipEmbedding {
		t.Fatalf("should not skip embedding when semantic content survives")
	}
}
