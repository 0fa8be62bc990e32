package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

var ignoreTimestamps = cmpopts.IgnoreFields(model.AttemptRecord{}, "CreatedAt")

func newTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAttempt(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	tests := []struct {
		name string
		rec  model.AttemptRecord
	}{
		{
			name: "published attempt",
			rec: model.AttemptRecord{
				Trigger:       model.TriggerScheduled,
				Outcome:       model.OutcomePublished,
				AttemptsUsed:  1,
				PublishedText: "Merkez Bankası politika faizini sabit tuttu.",
				PublishedID:   "1234567890",
			},
		},
		{
			name: "failed attempt with diagnostic",
			rec: model.AttemptRecord{
				Trigger:      model.TriggerManual,
				Outcome:      model.OutcomePublishFailed,
				AttemptsUsed: 2,
				Diagnostic:   "rate limited by the network",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			if err := s.RecordAttempt(ctx, &rec); err != nil {
				t.Fatalf("record attempt: %v", err)
			}
			if rec.ID == 0 {
				t.Error("ID not populated")
			}
			if rec.CreatedAt.IsZero() {
				t.Error("CreatedAt not populated")
			}
		})
	}

	recs, err := s.ListRecentAttempts(ctx, 10)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	// Newest first.
	if recs[0].Outcome != model.OutcomePublishFailed {
		t.Errorf("first record outcome = %s, want publish_failed", recs[0].Outcome)
	}

	want := tests[0].rec
	want.ID = recs[1].ID
	if diff := cmp.Diff(want, recs[1], ignoreTimestamps); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestListRecentAttemptsLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	for i := 0; i < 5; i++ {
		rec := model.AttemptRecord{
			Trigger:    model.TriggerScheduled,
			Outcome:    model.OutcomeExhausted,
			Diagnostic: fmt.Sprintf("run %d", i),
		}
		if err := s.RecordAttempt(ctx, &rec); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	recs, err := s.ListRecentAttempts(ctx, 3)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	if recs[0].Diagnostic != "run 4" {
		t.Errorf("newest record = %q, want run 4", recs[0].Diagnostic)
	}
}

func TestLastPublished(t *testing.T) {
	ctx := context.Background()
	s := newTestDB(t)

	got, err := s.LastPublished(ctx)
	if err != nil {
		t.Fatalf("last published: %v", err)
	}
	if got != nil {
		t.Errorf("empty journal returned %+v", got)
	}

	for _, rec := range []model.AttemptRecord{
		{Trigger: model.TriggerScheduled, Outcome: model.OutcomePublished, PublishedText: "İlk gönderi."},
		{Trigger: model.TriggerScheduled, Outcome: model.OutcomeExhausted},
		{Trigger: model.TriggerManual, Outcome: model.OutcomePublished, PublishedText: "Son gönderi."},
		{Trigger: model.TriggerScheduled, Outcome: model.OutcomeNoCandidate},
	} {
		r := rec
		if err := s.RecordAttempt(ctx, &r); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	got, err = s.LastPublished(ctx)
	if err != nil {
		t.Fatalf("last published: %v", err)
	}
	if got == nil || got.PublishedText != "Son gönderi." {
		t.Errorf("last published = %+v, want the most recent published row", got)
	}
}
