// Package model defines the domain types used across the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// RawItem is one candidate piece of source content (e.g. one news result)
// eligible to become one published post. Items are created fresh on every
// fetch cycle and never mutated; only the fingerprint outlives a run.
type RawItem struct {
	Title       string
	Body        string
	SourceURL   string
	PublishedAt *time.Time
	Fingerprint string
}

// fingerprintBodyPrefix bounds how much of the body participates in the
// fingerprint, so trailing boilerplate changes don't defeat exact-dup
// detection.
const fingerprintBodyPrefix = 120

// Fingerprint derives the deterministic dedup hash for a title/body pair.
// Title and body prefix are lowercased and whitespace-collapsed first, so
// cosmetic reformatting of the same item hashes identically.
func Fingerprint(title, body string) string {
	if len(body) > fingerprintBodyPrefix {
		body = body[:fingerprintBodyPrefix]
	}
	norm := strings.Join(strings.Fields(strings.ToLower(title)), " ") +
		"|" + strings.Join(strings.Fields(strings.ToLower(body)), " ")
	h := sha256.Sum256([]byte(norm))
	return fmt.Sprintf("sha256:%x", h[:16])
}

// NewRawItem builds a RawItem with its fingerprint populated.
func NewRawItem(title, body, sourceURL string, publishedAt *time.Time) RawItem {
	return RawItem{
		Title:       title,
		Body:        body,
		SourceURL:   sourceURL,
		PublishedAt: publishedAt,
		Fingerprint: Fingerprint(title, body),
	}
}

// GeneratedText is the output of one generation attempt for one RawItem.
type GeneratedText struct {
	Raw       string
	Sanitized string
}

// Trigger identifies what started a pipeline run.
type Trigger string

// Supported triggers.
const (
	TriggerScheduled Trigger = "scheduled"
	TriggerManual    Trigger = "manual"
)

// Outcome is the terminal state of one pipeline run.
type Outcome string

// Terminal outcomes of a pipeline run.
const (
	// OutcomePublished means a post was generated and published.
	OutcomePublished Outcome = "published"
	// OutcomeNoCandidate means the source yielded nothing usable (or was
	// unreachable; Diagnostic distinguishes the two).
	OutcomeNoCandidate Outcome = "no_suitable_candidate"
	// OutcomeExhausted means every allowed attempt produced a duplicate
	// or a failed generation.
	OutcomeExhausted Outcome = "exhausted"
	// OutcomePublishFailed means a post was ready but the publisher
	// rejected it. Never retried within the same run.
	OutcomePublishFailed Outcome = "publish_failed"
	// OutcomeSkippedBusy means another run was already in flight.
	OutcomeSkippedBusy Outcome = "skipped_busy"
)

// Attempt summarizes one full pipeline run.
type Attempt struct {
	Trigger       Trigger
	Outcome       Outcome
	AttemptsUsed  int
	PublishedText string
	PublishedID   string
	// Diagnostic carries an operator-readable failure description for
	// non-published outcomes (credential vs. network vs. rate limit).
	Diagnostic string
	StartedAt  time.Time
}

// AttemptRecord is a journaled Attempt as persisted by the storage layer.
type AttemptRecord struct {
	ID            int64
	Trigger       Trigger
	Outcome       Outcome
	AttemptsUsed  int
	PublishedText string
	PublishedID   string
	Diagnostic    string
	CreatedAt     time.Time
}
