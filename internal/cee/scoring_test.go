package cee

import "testing"

func TestFuse(t *testing.T) {
	got := Fuse(1.0, 0.0)
	if got != 0.7 {
		t.Fatalf("got %v, want 0.7", got)
	}
	got = Fuse(0.0, 1.0)
	if got != 0.3 {
		t.Fatalf("got %v, want 0.3", got)
	}
}

func TestMinMaxNormalize(t *testing.T) {
	got := MinMaxNormalize([]float64{0, 5, 10})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %v want %v (full %v)", i, got[i], want[i], got)
		}
	}
}

func TestMinMaxNormalize_DegenerateSet(t *testing.T) {
	got := MinMaxNormalize([]float64{3, 3, 3})
	for _, v := range got {
		if v != 0 {
			t.Fatalf("expected all-zero normalization for a degenerate set, got %v", got)
		}
	}
}

func TestMinMaxNormalize_Empty(t *testing.T) {
	got := MinMaxNormalize(nil)
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}
