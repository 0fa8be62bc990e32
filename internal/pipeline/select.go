package pipeline

import (
	"github.com/faruk-isik/x-trend-bot/internal/history"
	"github.com/faruk-isik/x-trend-bot/internal/model"
)

// selectNext returns the next untried candidate: the first item in source
// order whose fingerprint is unknown and whose title is not similar to any
// recently recorded title. Source order is recency-ranked, so "first
// acceptable" is also "best".
//
// When every candidate is known and reuseSeen is set, the best-ranked item
// not yet tried this run is returned anyway; otherwise selection stops.
func selectNext(items []model.RawItem, tried map[string]bool, hist *history.History, titleThreshold float64, reuseSeen bool) (model.RawItem, bool) {
	for _, item := range items {
		if tried[item.Fingerprint] {
			continue
		}
		if hist.IsKnownFingerprint(item.Fingerprint) {
			continue
		}
		if hist.IsTitleSimilar(item.Title, titleThreshold) {
			continue
		}
		return item, true
	}

	if reuseSeen {
		for _, item := range items {
			if !tried[item.Fingerprint] {
				return item, true
			}
		}
	}
	return model.RawItem{}, false
}
