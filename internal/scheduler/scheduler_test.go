package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

type mockRunner struct {
	mu       sync.Mutex
	triggers []model.Trigger
}

func (m *mockRunner) RunOnce(_ context.Context, trigger model.Trigger) model.Attempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, trigger)
	return model.Attempt{Trigger: trigger, Outcome: model.OutcomeNoCandidate}
}

func (m *mockRunner) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triggers)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	runner := &mockRunner{}
	s := New(runner, 20*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for runner.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d runs before deadline, want at least 3", runner.count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	runner.mu.Lock()
	defer runner.mu.Unlock()
	for i, trig := range runner.triggers {
		if trig != model.TriggerScheduled {
			t.Errorf("run %d trigger = %s, want scheduled", i, trig)
		}
	}
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	runner := &mockRunner{}
	s := New(runner, time.Hour, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// The immediate first run happens, then the loop blocks on the ticker.
	for runner.count() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
	if runner.count() != 1 {
		t.Errorf("runs = %d, want 1", runner.count())
	}
}

func TestDefaultInterval(t *testing.T) {
	s := New(&mockRunner{}, 0, testLogger())
	if s.interval != 30*time.Minute {
		t.Errorf("interval = %v, want 30m", s.interval)
	}
}
