// Package publisher defines the social-network publishing contract and its
// failure taxonomy. Implementations live in subpackages; the pipeline only
// sees this interface.
package publisher

import (
	"context"
	"errors"
)

// Typed publish failures. Anything else is a transport-level error.
var (
	// ErrRateLimited means the network rejected the post for quota
	// reasons. Never retried within the same run.
	ErrRateLimited = errors.New("publisher rate limited")
	// ErrAuthFailed means credentials were rejected.
	ErrAuthFailed = errors.New("publisher authentication failed")
)

// Result identifies a successfully published post.
type Result struct {
	ID string
}

// Publisher posts text (and optionally media) to a social network.
// Media is a soft feature: implementations must still publish the text
// when attaching media fails.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, text string, media []byte) (Result, error)
}
