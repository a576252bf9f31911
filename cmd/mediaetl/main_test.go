package main

import (
	"fmt"
	"testing"

	"mediaetl/internal/progress"
)

func sampleFailures(n int) []progress.Failure {
	fs := make([]progress.Failure, n)
	for i := range fs {
		fs[i] = progress.Failure{Row: i + 2, Type: "validation", Details: fmt.Sprintf("bad row %d", i+2)}
	}
	return fs
}

func TestDisplayedFailures_UnderCapReturnsAll(t *testing.T) {
	fs := sampleFailures(3)
	got := displayedFailures(fs)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Row != 2 || got[2].Row != 4 {
		t.Errorf("rows = %d..%d, want 2..4", got[0].Row, got[2].Row)
	}
}

func TestDisplayedFailures_CapsToNewest(t *testing.T) {
	fs := sampleFailures(23)
	got := displayedFailures(fs)
	if len(got) != maxDisplayedFailures {
		t.Fatalf("len = %d, want %d", len(got), maxDisplayedFailures)
	}
	// Newest entries of an oldest-first sample: rows 15..24.
	if got[0].Row != 15 || got[len(got)-1].Row != 24 {
		t.Errorf("rows = %d..%d, want 15..24", got[0].Row, got[len(got)-1].Row)
	}
}

func TestDisplayedFailures_Empty(t *testing.T) {
	if got := displayedFailures(nil); len(got) != 0 {
		t.Fatalf("len = %d, want 0", len(got))
	}
}
