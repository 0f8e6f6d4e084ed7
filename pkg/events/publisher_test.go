package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-posecoach/internal/log"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
	block    chan struct{}
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.messages)
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) EventPublished(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counts == nil {
		o.counts = map[string]int{}
	}
	o.counts[result]++
}

func (o *countingObserver) get(result string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[result]
}

func testConfig() Config {
	return Config{Brokers: []string{"localhost:9092"}, Topic: "posecoach.sessions"}
}

func TestPublisher_DeliversOneMessagePerSummary(t *testing.T) {
	w := &fakeWriter{}
	obs := &countingObserver{}
	p := newPublisherWithWriter(testConfig(), log.Discard(), w, obs)
	p.Start(context.Background())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Publish(session.Summary{SessionID: id, ProfileID: "upward-dog", ElapsedSeconds: 12}))
	}

	require.Eventually(t, func() bool { return w.count() == 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop(context.Background()))
	assert.True(t, w.closed)
	assert.Equal(t, 3, obs.get("ok"))

	first := w.messages[0]
	assert.Equal(t, "a", string(first.Key))

	var ev Event
	require.NoError(t, json.Unmarshal(first.Value, &ev))
	assert.Equal(t, EventTypeSessionCompleted, ev.Type)
	assert.Equal(t, SchemaVersion, ev.SchemaVersion)
	assert.Equal(t, "upward-dog", ev.Summary.ProfileID)
	assert.Equal(t, 12, ev.Summary.ElapsedSeconds)
}

func TestPublisher_StopFlushesQueue(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWithWriter(testConfig(), log.Discard(), w, nil)
	p.Start(context.Background())

	for i := 0; i < 10; i++ {
		require.NoError(t, p.Publish(session.Summary{SessionID: "s"}))
	}
	require.NoError(t, p.Stop(context.Background()))
	assert.Equal(t, 10, w.count())
}

func TestPublisher_WriteErrorIsObserved(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	obs := &countingObserver{}
	p := newPublisherWithWriter(testConfig(), log.Discard(), w, obs)
	p.Start(context.Background())

	require.NoError(t, p.Publish(session.Summary{SessionID: "x"}))
	require.Eventually(t, func() bool { return obs.get("error") == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, p.Stop(context.Background()))
}

func TestPublisher_QueueFull(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	obs := &countingObserver{}
	p := newPublisherWithWriter(testConfig(), log.Discard(), w, obs)
	p.Start(context.Background())

	var full error
	for i := 0; i < queueSize+2; i++ {
		if err := p.Publish(session.Summary{SessionID: "s"}); err != nil {
			full = err
			break
		}
	}
	assert.ErrorIs(t, full, ErrQueueFull)
	assert.Equal(t, 1, obs.get("dropped"))

	close(w.block)
	require.NoError(t, p.Stop(context.Background()))
}

func TestPublisher_NotStarted(t *testing.T) {
	p := newPublisherWithWriter(testConfig(), log.Discard(), &fakeWriter{}, nil)
	assert.ErrorIs(t, p.Publish(session.Summary{}), ErrNotStarted)
}

func TestPublisher_StopWithoutStartClosesWriter(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisherWithWriter(testConfig(), log.Discard(), w, nil)

	require.NoError(t, p.Stop(context.Background()))
	assert.True(t, w.closed)

	p.Start(context.Background())
	assert.ErrorIs(t, p.Publish(session.Summary{SessionID: "late"}), ErrNotStarted)
	assert.NoError(t, p.Stop(context.Background()))
}

func TestPublisher_Disabled(t *testing.T) {
	p, err := NewPublisher(Config{}, log.Discard(), nil)
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	p.Start(context.Background())
	assert.NoError(t, p.Publish(session.Summary{SessionID: "ignored"}))
	assert.NoError(t, p.Stop(context.Background()))
}

func TestNewPublisher_RequiresTopic(t *testing.T) {
	_, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}}, log.Discard(), nil)
	assert.Error(t, err)
}
