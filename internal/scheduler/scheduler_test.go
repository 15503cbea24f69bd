package scheduler

import (
	"testing"

	"github.com/scoreit/handball/internal/testutil"
)

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := New()
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Stop()
	})
	return s
}

func TestRegisterStandingsSnapshot(t *testing.T) {
	database := testutil.NewTestDB(t)
	s := newTestScheduler(t)

	if err := s.RegisterStandingsSnapshot(database, "30 3 * * *"); err != nil {
		t.Fatalf("register snapshot: %v", err)
	}
}

func TestRegisterStandingsSnapshotRejectsBadInput(t *testing.T) {
	database := testutil.NewTestDB(t)
	s := newTestScheduler(t)

	if err := s.RegisterStandingsSnapshot(nil, "30 3 * * *"); err == nil {
		t.Error("expected error for missing database")
	}
	if err := s.RegisterStandingsSnapshot(database, "not a cron expression"); err == nil {
		t.Error("expected error for malformed cron expression")
	}
}
