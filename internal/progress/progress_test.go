package progress

import (
	"fmt"
	"testing"
)

func TestCounters(t *testing.T) {
	tr := New(0, 0)
	for i := 0; i < 5; i++ {
		tr.RecordProcessed()
	}
	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordInsert()
	tr.RecordUpdate()
	tr.RecordFailure(3, FailureValidation, "bad row")

	s := tr.Snapshot()
	if s.Processed != 5 || s.Succeeded != 2 || s.Inserted != 1 || s.Updated != 1 || s.Failed != 1 {
		t.Errorf("snapshot = %+v", s)
	}
	if s.Status != StatusRunning {
		t.Errorf("status = %s, want running", s.Status)
	}
}

func TestRecentFailuresEvictFIFO(t *testing.T) {
	tr := New(3, 0)
	for i := 1; i <= 5; i++ {
		tr.RecordFailure(i, FailureWrite, fmt.Sprintf("failure %d", i))
	}

	s := tr.Snapshot()
	if s.Failed != 5 {
		t.Errorf("failed = %d, want 5 (counter is authoritative)", s.Failed)
	}
	if len(s.Recent) != 3 {
		t.Fatalf("recent sample has %d entries, want 3", len(s.Recent))
	}
	for i, want := range []int{3, 4, 5} {
		if s.Recent[i].Row != want {
			t.Errorf("recent[%d].Row = %d, want %d", i, s.Recent[i].Row, want)
		}
	}
}

func TestRecentFailuresWrapRepeatedly(t *testing.T) {
	tr := New(2, 0)
	for i := 1; i <= 7; i++ {
		tr.RecordFailure(i, FailureValidation, fmt.Sprintf("failure %d", i))
	}

	s := tr.Snapshot()
	if s.Failed != 7 {
		t.Errorf("failed = %d, want 7", s.Failed)
	}
	if len(s.Recent) != 2 {
		t.Fatalf("recent sample has %d entries, want 2", len(s.Recent))
	}
	for i, want := range []int{6, 7} {
		if s.Recent[i].Row != want {
			t.Errorf("recent[%d].Row = %d, want %d (oldest first)", i, s.Recent[i].Row, want)
		}
	}
}

func TestSuccessRate(t *testing.T) {
	tests := []struct {
		name      string
		processed int
		succeeded int
		want      float64
	}{
		{"nothing processed", 0, 0, 0},
		{"all succeeded", 4, 4, 100},
		{"two thirds", 3, 2, 66.67},
		{"none succeeded", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Stats{Processed: tt.processed, Succeeded: tt.succeeded}
			if got := s.SuccessRate(); got != tt.want {
				t.Errorf("SuccessRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldReportProgressThrottles(t *testing.T) {
	tr := New(0, 3)

	var reports int
	for i := 0; i < 10; i++ {
		tr.RecordProcessed()
		if tr.ShouldReportProgress() {
			reports++
		}
	}
	if reports != 3 {
		t.Errorf("got %d reports over 10 records with interval 3, want 3", reports)
	}
}

func TestCompleteAndFail(t *testing.T) {
	tr := New(0, 0)
	tr.RecordProcessed()
	tr.Complete()
	s := tr.Snapshot()
	if s.Status != StatusCompleted {
		t.Errorf("status = %s, want completed", s.Status)
	}
	if s.Duration < 0 {
		t.Errorf("duration = %v", s.Duration)
	}

	tr2 := New(0, 0)
	tr2.Fail("connection lost")
	s2 := tr2.Snapshot()
	if s2.Status != StatusFailed || s2.Fatal != "connection lost" {
		t.Errorf("snapshot = %+v", s2)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	tr := New(0, 0)
	tr.RecordFailure(1, FailureValidation, "first")
	s := tr.Snapshot()
	tr.RecordFailure(2, FailureValidation, "second")

	if len(s.Recent) != 1 {
		t.Errorf("snapshot mutated after tracker changed: %+v", s.Recent)
	}
}
