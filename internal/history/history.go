// Package history keeps the process-lifetime memory of what the bot has
// already published or consumed, and answers duplicate queries against it.
//
// The memory is deliberately in-memory only: a restart forgets everything
// and the bot may republish content from before the restart until fresh
// history accumulates. That limitation is accepted; the attempt journal in
// internal/storage is an operational log and never feeds these decisions.
package history

import (
	"sync"

	"github.com/faruk-isik/x-trend-bot/internal/textsim"
)

// Defaults for the bounded stores.
const (
	DefaultTitleCap = 20
	DefaultTextCap  = 10
)

// History is the publish history plus similarity index. All methods are
// safe for concurrent use, though the pipeline's single-flight lock means
// there is only ever one writer.
type History struct {
	mu sync.Mutex

	// seen only grows for the life of the process.
	seen map[string]struct{}
	// recentTitles and recentTexts are FIFO rings bounded by their caps.
	recentTitles []string
	recentTexts  []string
	titleCap     int
	textCap      int
}

// New creates an empty History with the given store caps.
// Non-positive caps fall back to the defaults.
func New(titleCap, textCap int) *History {
	if titleCap <= 0 {
		titleCap = DefaultTitleCap
	}
	if textCap <= 0 {
		textCap = DefaultTextCap
	}
	return &History{
		seen:     make(map[string]struct{}),
		titleCap: titleCap,
		textCap:  textCap,
	}
}

// IsKnownFingerprint reports whether fp was already consumed this process
// lifetime.
func (h *History) IsKnownFingerprint(fp string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.seen[fp]
	return ok
}

// IsTitleSimilar reports whether any recently recorded title has a
// similarity ratio above threshold against title.
func (h *History) IsTitleSimilar(title string, threshold float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.recentTitles {
		if textsim.Similar(t, title, threshold) {
			return true
		}
	}
	return false
}

// IsPublishedTextSimilar reports whether any recently published text has a
// similarity ratio above threshold against text. This is the strongest
// duplicate guard: it compares final artifacts, not source items.
func (h *History) IsPublishedTextSimilar(text string, threshold float64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.recentTexts {
		if textsim.Similar(t, text, threshold) {
			return true
		}
	}
	return false
}

// MarkConsumed marks a fingerprint as seen without recording a title or
// text. Used for candidates that were tried but not published (generation
// failed, or the generated text was a duplicate), so the same source item
// is not reselected.
func (h *History) MarkConsumed(fp string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[fp] = struct{}{}
}

// Record stores a successful publish: the fingerprint, the source title,
// and the published text. Oldest entries are evicted when a store exceeds
// its cap.
func (h *History) Record(fp, title, publishedText string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen[fp] = struct{}{}
	h.recentTitles = appendBounded(h.recentTitles, title, h.titleCap)
	if publishedText != "" {
		h.recentTexts = appendBounded(h.recentTexts, publishedText, h.textCap)
	}
}

// RecentTitles returns a copy of the recent title store, oldest first.
func (h *History) RecentTitles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.recentTitles))
	copy(out, h.recentTitles)
	return out
}

// RecentTexts returns a copy of the recent published-text store, oldest
// first.
func (h *History) RecentTexts() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.recentTexts))
	copy(out, h.recentTexts)
	return out
}

func appendBounded(s []string, v string, limit int) []string {
	s = append(s, v)
	if len(s) > limit {
		s = s[len(s)-limit:]
	}
	return s
}
