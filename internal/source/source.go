// Package source provides the content sources that feed the pipeline with
// candidate items. All sources return candidates newest-or-most-relevant
// first; the pipeline relies on that order when selecting.
package source

import (
	"context"
	"errors"
	"net/http"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

// ErrUnavailable wraps any transport-level fetch failure. The pipeline
// maps it to a no-candidate outcome instead of crashing the run.
var ErrUnavailable = errors.New("content source unavailable")

// Source fetches candidate items for one pipeline run.
type Source interface {
	Name() string
	FetchCandidates(ctx context.Context) ([]model.RawItem, error)
}

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const userAgent = "x-trend-bot/1.0"
