package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()

	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.FrameScored(95, false, time.Millisecond)
	m.FrameScored(0, true, time.Millisecond)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.SessionCompleted(75)
	m.EventPublished("ok")
	m.EventPublished("dropped")
	m.EventPublished("ok")

	out := scrape(t, m)
	for _, want := range []string{
		"posecoach_frames_scored_total 2",
		"posecoach_frames_gated_total 1",
		"posecoach_active_sessions 1",
		"posecoach_sessions_completed_total 1",
		`posecoach_events_published_total{result="ok"} 2`,
		`posecoach_events_published_total{result="dropped"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.FrameScored(50, false, time.Millisecond)
	m.SessionOpened()
	m.WatcherJoined()
	m.SessionCompleted(10)
	m.EventPublished("error")
	if m.Registry() != nil {
		t.Error("nil metrics should have no registry")
	}
}

func TestMetrics_HandlerServesGoCollector(t *testing.T) {
	out := scrape(t, New())
	if !strings.Contains(out, "go_goroutines") {
		t.Error("expected Go runtime metrics")
	}
}

func TestMetrics_NilHandler(t *testing.T) {
	var m *Metrics
	app := fiber.New()
	app.Get("/metrics", m.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
