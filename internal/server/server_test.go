package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

type mockRunner struct {
	attempt model.Attempt
	calls   int
}

func (m *mockRunner) RunOnce(_ context.Context, trigger model.Trigger) model.Attempt {
	m.calls++
	att := m.attempt
	att.Trigger = trigger
	return att
}

type mockStore struct {
	recs      []model.AttemptRecord
	published *model.AttemptRecord
}

func (m *mockStore) RecordAttempt(_ context.Context, _ *model.AttemptRecord) error { return nil }

func (m *mockStore) ListRecentAttempts(_ context.Context, limit int) ([]model.AttemptRecord, error) {
	if limit > len(m.recs) {
		limit = len(m.recs)
	}
	return m.recs[:limit], nil
}

func (m *mockStore) LastPublished(_ context.Context) (*model.AttemptRecord, error) {
	return m.published, nil
}

func (m *mockStore) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doRequest(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestTriggerRun(t *testing.T) {
	tests := []struct {
		name       string
		attempt    model.Attempt
		wantStatus int
	}{
		{
			name:       "published",
			attempt:    model.Attempt{Outcome: model.OutcomePublished, AttemptsUsed: 1, PublishedID: "42"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "busy",
			attempt:    model.Attempt{Outcome: model.OutcomeSkippedBusy},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "publish failed",
			attempt:    model.Attempt{Outcome: model.OutcomePublishFailed, Diagnostic: "rate limited"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "exhausted",
			attempt:    model.Attempt{Outcome: model.OutcomeExhausted, AttemptsUsed: 3},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{attempt: tt.attempt}
			router := NewRouter(NewHandler(runner, &mockStore{}, testLogger()))

			w := doRequest(t, router, http.MethodGet, "/")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if runner.calls != 1 {
				t.Errorf("runner called %d times, want 1", runner.calls)
			}

			var resp attemptResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Outcome != tt.attempt.Outcome {
				t.Errorf("outcome = %s, want %s", resp.Outcome, tt.attempt.Outcome)
			}
			if resp.Trigger != model.TriggerManual {
				t.Errorf("trigger = %s, want manual", resp.Trigger)
			}
		})
	}
}

func TestTriggerRunPost(t *testing.T) {
	runner := &mockRunner{attempt: model.Attempt{Outcome: model.OutcomePublished}}
	router := NewRouter(NewHandler(runner, &mockStore{}, testLogger()))

	if w := doRequest(t, router, http.MethodPost, "/run"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestHealth(t *testing.T) {
	router := NewRouter(NewHandler(&mockRunner{}, nil, testLogger()))
	if w := doRequest(t, router, http.MethodGet, "/healthz"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestListAttempts(t *testing.T) {
	store := &mockStore{recs: []model.AttemptRecord{
		{ID: 2, Outcome: model.OutcomePublished},
		{ID: 1, Outcome: model.OutcomeExhausted},
	}}
	router := NewRouter(NewHandler(&mockRunner{}, store, testLogger()))

	w := doRequest(t, router, http.MethodGet, "/attempts?limit=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var recs []model.AttemptRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 2 {
		t.Errorf("recs = %+v", recs)
	}

	if w := doRequest(t, router, http.MethodGet, "/attempts?limit=abc"); w.Code != http.StatusBadRequest {
		t.Errorf("invalid limit status = %d, want 400", w.Code)
	}
}

func TestLastPublished(t *testing.T) {
	store := &mockStore{}
	router := NewRouter(NewHandler(&mockRunner{}, store, testLogger()))

	if w := doRequest(t, router, http.MethodGet, "/attempts/last-published"); w.Code != http.StatusNotFound {
		t.Errorf("empty journal status = %d, want 404", w.Code)
	}

	store.published = &model.AttemptRecord{ID: 7, Outcome: model.OutcomePublished, PublishedText: "Son gönderi."}
	if w := doRequest(t, router, http.MethodGet, "/attempts/last-published"); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestNoStoreDisablesJournalRoutes(t *testing.T) {
	router := NewRouter(NewHandler(&mockRunner{}, nil, testLogger()))
	if w := doRequest(t, router, http.MethodGet, "/attempts"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
