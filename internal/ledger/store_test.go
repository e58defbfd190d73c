// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "data", "paperwatch.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRun(profile string, startedAt time.Time) Run {
	return Run{
		Profile:      profile,
		ResearchArea: "robotics",
		From:         startedAt.AddDate(0, 0, -7),
		To:           startedAt,
		Fetched:      120,
		Ranked:       14,
		Excluded:     3,
		Synced:       5,
		TableTotal:   42,
		TableID:      "tblX",
		TopTitle:     "Robot Learning from Demonstration",
		TopScore:     2.41,
		StartedAt:    startedAt,
		FinishedAt:   startedAt.Add(30 * time.Second),
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "runs.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestRecordRoundTripsThroughHistory(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	want := sampleRun("sync_robotics", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	id, err := store.Record(ctx, want)
	if err != nil {
		t.Fatalf("Record() error: %v", err)
	}
	if id == "" {
		t.Fatal("Record() returned an empty id")
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("id %q is not a uuid: %v", id, err)
	}

	runs, err := store.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("History() = %d runs, want 1", len(runs))
	}

	got := runs[0]
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Profile != want.Profile || got.ResearchArea != want.ResearchArea {
		t.Errorf("profile = %q/%q", got.Profile, got.ResearchArea)
	}
	if got.Fetched != 120 || got.Ranked != 14 || got.Excluded != 3 || got.Synced != 5 {
		t.Errorf("counts = %+v", got)
	}
	if got.TableTotal != 42 || got.TableID != "tblX" {
		t.Errorf("table = %d/%q", got.TableTotal, got.TableID)
	}
	if got.TopTitle != want.TopTitle || got.TopScore != want.TopScore {
		t.Errorf("top paper = %q/%v", got.TopTitle, got.TopScore)
	}
	if !got.From.Equal(want.From) || !got.To.Equal(want.To) {
		t.Errorf("window = %v..%v", got.From, got.To)
	}
	if !got.StartedAt.Equal(want.StartedAt) || !got.FinishedAt.Equal(want.FinishedAt) {
		t.Errorf("timestamps = %v..%v", got.StartedAt, got.FinishedAt)
	}
	if got.Failed() {
		t.Error("Failed() = true for a clean run")
	}
}

func TestRecordKeepsFailureText(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := sampleRun("sync_robotics", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	run.Error = "syncing to feishu: quota exceeded"
	if _, err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	runs, err := store.History(ctx, 1)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if !runs[0].Failed() || runs[0].Error != run.Error {
		t.Errorf("run = %+v, want the failure text kept", runs[0])
	}
}

func TestRecordUpsertsOnSameID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	run := sampleRun("sync_robotics", time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC))
	run.ID = uuid.NewString()
	if _, err := store.Record(ctx, run); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	run.Synced = 9
	run.TableTotal = 46
	if _, err := store.Record(ctx, run); err != nil {
		t.Fatalf("second Record() error: %v", err)
	}

	runs, err := store.History(ctx, 0)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("History() = %d runs, want the upsert to keep one", len(runs))
	}
	if runs[0].Synced != 9 || runs[0].TableTotal != 46 {
		t.Errorf("run = %+v, want updated counts", runs[0])
	}
}

func TestHistoryOrdersNewestFirstAndLimits(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		run := sampleRun("sync_robotics", base.Add(time.Duration(i)*time.Minute))
		if _, err := store.Record(ctx, run); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
	}

	runs, err := store.History(ctx, 2)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("History() = %d runs, want the limit applied", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("order = %v, %v; want newest first", runs[0].StartedAt, runs[1].StartedAt)
	}
	if want := base.Add(4 * time.Minute); !runs[0].StartedAt.Equal(want) {
		t.Errorf("newest = %v, want %v", runs[0].StartedAt, want)
	}
}

func TestHistoryEmptyLedger(t *testing.T) {
	store := testStore(t)

	runs, err := store.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("History() error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("History() = %d runs, want none", len(runs))
	}
}
