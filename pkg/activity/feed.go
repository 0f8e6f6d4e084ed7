// Package activity keeps a rolling feed of service-wide session events and
// streams it to dashboards.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-posecoach/pkg/hub"
)

// DefaultLimit is the number of entries kept when none is given.
const DefaultLimit = 500

// Entry kinds
const (
	KindConnected    = "connected"
	KindDisconnected = "disconnected"
	KindProfile      = "profile"
	KindCaptured     = "captured"
	KindFinished     = "finished"
)

// Entry is one feed item.
type Entry struct {
	Time    time.Time `json:"time"`
	Kind    string    `json:"kind"`
	Session string    `json:"session,omitempty"`
	Message string    `json:"message"`
}

// Feed is a bounded, broadcast activity log. All methods are safe on a nil *Feed.
type Feed struct {
	limit int

	mu      sync.RWMutex
	entries []Entry

	hub *hub.Hub
}

// New creates a feed keeping the last limit entries.
func New(limit int) *Feed {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Feed{
		limit:   limit,
		entries: make([]Entry, 0, limit),
		hub:     hub.New("activity"),
	}
}

// Run broadcasts to watchers until ctx is done.
func (f *Feed) Run(ctx context.Context) {
	if f == nil {
		return
	}
	f.hub.Run(ctx)
}

// Add appends an entry and broadcasts it.
func (f *Feed) Add(kind, session, format string, args ...interface{}) {
	if f == nil {
		return
	}
	entry := Entry{
		Time:    time.Now().UTC(),
		Kind:    kind,
		Session: session,
		Message: fmt.Sprintf(format, args...),
	}

	f.mu.Lock()
	f.entries = append(f.entries, entry)
	if len(f.entries) > f.limit {
		f.entries = f.entries[len(f.entries)-f.limit:]
	}
	f.mu.Unlock()

	f.hub.BroadcastJSON(entry)
}

// Recent returns up to n entries, oldest first. n <= 0 returns everything kept.
func (f *Feed) Recent(n int) []Entry {
	if f == nil {
		return []Entry{}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	start := 0
	if n > 0 && n < len(f.entries) {
		start = len(f.entries) - n
	}
	out := make([]Entry, len(f.entries)-start)
	copy(out, f.entries[start:])
	return out
}

// RegisterRoutes adds GET /api/activity and the /ws/activity stream.
func (f *Feed) RegisterRoutes(app *fiber.App) {
	app.Get("/api/activity", f.handleList)
	app.Get("/ws/activity", websocket.New(f.handleWS))
}

func (f *Feed) handleList(c *fiber.Ctx) error {
	entries := f.Recent(c.QueryInt("limit", 100))
	return c.JSON(fiber.Map{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleWS sends the backlog, then streams new entries.
func (f *Feed) handleWS(c *websocket.Conn) {
	if f == nil {
		return
	}
	for _, e := range f.Recent(0) {
		if err := c.WriteJSON(e); err != nil {
			return
		}
	}

	client := hub.NewClient(f.hub, c)
	if client == nil {
		return
	}
	client.Run()
}
