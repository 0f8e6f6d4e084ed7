// Package coach hosts the scoring engine behind a WebSocket and REST API.
//
// Each client connection on /ws/session owns one Session: a scoring
// Engine, a session Timer ticking on its own goroutine and a watcher hub
// that mirrors the session's score and timer stream to observers on
// /ws/watch/:id. Finished runs are recorded to history and published as
// events.
package coach

import (
	"context"
	"time"

	"github.com/teslashibe/go-posecoach/pkg/history"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

// Config holds the per-session defaults.
type Config struct {
	DefaultProfile string        // Profile new sessions score against
	AutoStart      bool          // Arm the timer on connect
	TickInterval   time.Duration // Timer tick period; one tick is one second of session time
	FeedbackHints  int           // Joints reported per score message, 0 disables
	Debug          bool
}

// DefaultConfig returns the recommended session defaults.
func DefaultConfig() Config {
	return Config{
		DefaultProfile: "upward-dog",
		AutoStart:      true,
		TickInterval:   time.Second,
		FeedbackHints:  2,
	}
}

// History stores finished sessions.
type History interface {
	Record(ctx context.Context, s session.Summary) (string, error)
	Get(ctx context.Context, id string) (session.Summary, error)
	Recent(ctx context.Context, profileID string, limit int) ([]session.Summary, error)
	Stats(ctx context.Context, profileID string) (history.Stats, error)
}

// Publisher announces finished sessions.
type Publisher interface {
	Publish(s session.Summary) error
}
