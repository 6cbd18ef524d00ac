package notify

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestFireTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := &Scheduler{
		lead:   time.Hour,
		logger: zap.NewNop(),
		now:    func() time.Time { return base },
	}

	got, err := s.fireTime("7:00 PM")
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("fireTime = %v, want %v", got, want)
	}

	// A time earlier in the day rolls to tomorrow.
	got, err = s.fireTime("9:00 AM")
	if err != nil {
		t.Fatal(err)
	}
	want = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("fireTime = %v, want %v", got, want)
	}

	// Hour-only format.
	if _, err := s.fireTime("7 PM"); err != nil {
		t.Fatalf("hour-only format should parse: %v", err)
	}

	if _, err := s.fireTime("not a time"); err == nil {
		t.Fatal("expected error for unparseable time")
	}
}
