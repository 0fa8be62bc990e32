// Package pipeline orchestrates one publish cycle: fetch candidates,
// select, generate, duplicate-check, publish, record. At most one run is
// active at a time; concurrent triggers are rejected, never queued.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/faruk-isik/x-trend-bot/internal/generate"
	"github.com/faruk-isik/x-trend-bot/internal/history"
	"github.com/faruk-isik/x-trend-bot/internal/model"
	"github.com/faruk-isik/x-trend-bot/internal/publisher"
	"github.com/faruk-isik/x-trend-bot/internal/source"
)

// Config bounds one pipeline run.
type Config struct {
	// MaxAttempts caps how many candidates one run may consume.
	MaxAttempts int
	// TitleThreshold rejects candidates whose title is too close to a
	// recently recorded title.
	TitleThreshold float64
	// TextThreshold rejects generated text too close to a recently
	// published text.
	TextThreshold float64
	// ReuseSeenFallback retries the best-ranked already-seen item when
	// no unseen candidate exists, instead of stopping.
	ReuseSeenFallback bool
	// CallTimeout bounds each external call (fetch, generate, publish).
	CallTimeout time.Duration
	// RunTimeout caps one run's total wall-clock time.
	RunTimeout time.Duration
	// FetchRetries and FetchRetryDelay bound the source-fetch retry.
	FetchRetries    int
	FetchRetryDelay time.Duration
}

// Journal records run outcomes for the status endpoint. Journal failures
// never affect the run's outcome.
type Journal interface {
	RecordAttempt(ctx context.Context, rec *model.AttemptRecord) error
}

// Pipeline is the publish-decision orchestrator.
type Pipeline struct {
	src        source.Source
	generators []*generate.Generator
	pub        publisher.Publisher
	hist       *history.History
	journal    Journal
	log        *slog.Logger
	cfg        Config

	// runMu is the single-flight lock. It also gates all history
	// mutation; no finer-grained locking exists or is needed.
	runMu sync.Mutex
}

// New creates a Pipeline. generators is the ordered fallback chain; each
// candidate is tried against them in order until one produces usable text.
func New(src source.Source, generators []*generate.Generator, pub publisher.Publisher, hist *history.History, journal Journal, log *slog.Logger, cfg Config) *Pipeline {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}
	return &Pipeline{
		src:        src,
		generators: generators,
		pub:        pub,
		hist:       hist,
		journal:    journal,
		log:        log,
		cfg:        cfg,
	}
}

// RunOnce executes one full pipeline run. Safe to call while a run is in
// flight: the second caller gets OutcomeSkippedBusy immediately.
func (p *Pipeline) RunOnce(ctx context.Context, trigger model.Trigger) model.Attempt {
	started := time.Now().UTC()
	if !p.runMu.TryLock() {
		p.log.Info("run skipped, another run in flight", "trigger", trigger)
		return model.Attempt{Trigger: trigger, Outcome: model.OutcomeSkippedBusy, StartedAt: started}
	}
	defer p.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RunTimeout)
	defer cancel()

	att := p.run(ctx, trigger)
	att.StartedAt = started

	if p.journal != nil {
		rec := &model.AttemptRecord{
			Trigger:       att.Trigger,
			Outcome:       att.Outcome,
			AttemptsUsed:  att.AttemptsUsed,
			PublishedText: att.PublishedText,
			PublishedID:   att.PublishedID,
			Diagnostic:    att.Diagnostic,
		}
		if err := p.journal.RecordAttempt(ctx, rec); err != nil {
			p.log.Error("journal attempt", "error", err)
		}
	}
	return att
}

func (p *Pipeline) run(ctx context.Context, trigger model.Trigger) model.Attempt {
	att := model.Attempt{Trigger: trigger}

	items, err := p.fetch(ctx)
	if err != nil {
		p.log.Warn("candidate fetch failed", "source", p.src.Name(), "error", err)
		att.Outcome = model.OutcomeNoCandidate
		att.Diagnostic = fmt.Sprintf("source %s unavailable: %v", p.src.Name(), err)
		return att
	}
	if len(items) == 0 {
		att.Outcome = model.OutcomeNoCandidate
		att.Diagnostic = fmt.Sprintf("source %s returned no items", p.src.Name())
		return att
	}

	tried := make(map[string]bool)
	for att.AttemptsUsed < p.cfg.MaxAttempts {
		cand, ok := selectNext(items, tried, p.hist, p.cfg.TitleThreshold, p.cfg.ReuseSeenFallback)
		if !ok {
			att.Outcome = model.OutcomeNoCandidate
			att.Diagnostic = "no unseen candidate left"
			return att
		}
		att.AttemptsUsed++
		tried[cand.Fingerprint] = true

		text, err := p.generate(ctx, cand)
		if err != nil {
			p.log.Warn("generation failed", "title", cand.Title, "error", err)
			p.hist.MarkConsumed(cand.Fingerprint)
			continue
		}

		if p.hist.IsPublishedTextSimilar(text.Sanitized, p.cfg.TextThreshold) {
			p.log.Info("generated text rejected as duplicate", "title", cand.Title)
			p.hist.MarkConsumed(cand.Fingerprint)
			continue
		}

		res, err := p.publish(ctx, text.Sanitized)
		if err != nil {
			// Terminal for this run. History stays untouched so the
			// next cycle may retry this candidate.
			p.log.Error("publish failed", "publisher", p.pub.Name(), "error", err)
			att.Outcome = model.OutcomePublishFailed
			att.Diagnostic = diagnose(err)
			return att
		}

		p.hist.Record(cand.Fingerprint, cand.Title, text.Sanitized)
		p.log.Info("published", "id", res.ID, "title", cand.Title, "chars", len([]rune(text.Sanitized)))
		att.Outcome = model.OutcomePublished
		att.PublishedText = text.Sanitized
		att.PublishedID = res.ID
		return att
	}

	p.log.Warn("attempts exhausted", "attempts", att.AttemptsUsed)
	att.Outcome = model.OutcomeExhausted
	att.Diagnostic = fmt.Sprintf("all %d candidates were duplicates or failed generation", att.AttemptsUsed)
	return att
}

// fetch pulls candidates with a bounded fixed-delay retry around transient
// source failures.
func (p *Pipeline) fetch(ctx context.Context) ([]model.RawItem, error) {
	backoff := retry.WithMaxRetries(uint64(p.cfg.FetchRetries), retry.NewConstant(p.fetchDelay()))

	var items []model.RawItem
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()

		got, err := p.src.FetchCandidates(callCtx)
		if err != nil {
			return retry.RetryableError(err)
		}
		items = got
		return nil
	})
	return items, err
}

func (p *Pipeline) fetchDelay() time.Duration {
	if p.cfg.FetchRetryDelay > 0 {
		return p.cfg.FetchRetryDelay
	}
	return 2 * time.Second
}

// generate tries the fallback chain in order for one candidate.
func (p *Pipeline) generate(ctx context.Context, cand model.RawItem) (model.GeneratedText, error) {
	var lastErr error
	for _, g := range p.generators {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		text, err := g.Generate(callCtx, cand)
		cancel()
		if err == nil {
			return text, nil
		}
		lastErr = err
		p.log.Debug("generator failed, trying next", "generator", g.Name(), "error", err)
	}
	if lastErr == nil {
		lastErr = generate.ErrGenerationFailed
	}
	return model.GeneratedText{}, lastErr
}

func (p *Pipeline) publish(ctx context.Context, text string) (publisher.Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
	defer cancel()
	return p.pub.Publish(callCtx, text, nil)
}

// diagnose renders a publish failure so an operator can tell credential
// problems from rate limiting from plain network trouble.
func diagnose(err error) string {
	switch {
	case errors.Is(err, publisher.ErrRateLimited):
		return fmt.Sprintf("rate limited by the network, will not retry this run: %v", err)
	case errors.Is(err, publisher.ErrAuthFailed):
		return fmt.Sprintf("credentials rejected, check API keys and permissions: %v", err)
	default:
		return fmt.Sprintf("transport failure talking to the network: %v", err)
	}
}
