package utils

import (
	"context"
	"testing"
)

func TestCheckHealthNilTargets(t *testing.T) {
	status := checkHealth(context.Background(), HealthTargets{})
	if status.Mongo || status.Cache || status.StateCache || status.Queue {
		t.Fatalf("nil targets must report unhealthy, got %+v", status)
	}
	if status.CheckedAt.IsZero() {
		t.Fatal("CheckedAt should be stamped")
	}
}

func TestGetHealthStatusReturnsStoredSnapshot(t *testing.T) {
	healthMu.Lock()
	currentHealth = HealthStatus{Mongo: true, StateCache: true}
	healthMu.Unlock()

	got := GetHealthStatus()
	if !got.Mongo || !got.StateCache || got.Cache || got.Queue {
		t.Fatalf("snapshot = %+v", got)
	}
}
