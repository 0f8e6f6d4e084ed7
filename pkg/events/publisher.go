// Package events publishes finished-session summaries to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/teslashibe/go-posecoach/pkg/session"
)

// EventTypeSessionCompleted tags a finished-session event.
const EventTypeSessionCompleted = "session.completed"

// SchemaVersion is bumped when the event payload changes shape.
const SchemaVersion = "1"

const queueSize = 256

var (
	// ErrNotStarted is returned by Publish before Start.
	ErrNotStarted = errors.New("publisher not started")

	// ErrQueueFull is returned when the delivery queue is saturated.
	ErrQueueFull = errors.New("publisher queue full")
)

// Config holds the broker settings. No brokers disables publishing.
type Config struct {
	Brokers []string
	Topic   string
}

// Enabled reports whether events should be published.
func (c Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// Event is the payload written to the topic.
type Event struct {
	Type          string          `json:"type"`
	SchemaVersion string          `json:"schema_version"`
	EmittedAt     time.Time       `json:"emitted_at"`
	Summary       session.Summary `json:"summary"`
}

// Observer receives delivery outcomes: "ok", "error" or "dropped".
type Observer interface {
	EventPublished(result string)
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher delivers events asynchronously from a bounded queue.
// A disabled publisher accepts and discards everything.
type Publisher struct {
	cfg      Config
	logger   *slog.Logger
	writer   messageWriter
	observer Observer
	queue    chan kafka.Message

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPublisher builds a publisher backed by a kafka.Writer.
func NewPublisher(cfg Config, logger *slog.Logger, observer Observer) (*Publisher, error) {
	if !cfg.Enabled() {
		logger.Info("event publishing disabled")
		return &Publisher{cfg: cfg, logger: logger}, nil
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("event topic must not be empty")
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
	return newPublisherWithWriter(cfg, logger, w, observer), nil
}

func newPublisherWithWriter(cfg Config, logger *slog.Logger, w messageWriter, observer Observer) *Publisher {
	return &Publisher{
		cfg:      cfg,
		logger:   logger.With("component", "events"),
		writer:   w,
		observer: observer,
		queue:    make(chan kafka.Message, queueSize),
	}
}

// Enabled reports whether the publisher writes to a broker.
func (p *Publisher) Enabled() bool {
	return p.writer != nil
}

// Start launches the delivery loop.
func (p *Publisher) Start(ctx context.Context) {
	if !p.Enabled() {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.started = true
	p.wg.Add(1)
	go p.run(runCtx)
	p.logger.Info("event publisher started", "topic", p.cfg.Topic, "brokers", strings.Join(p.cfg.Brokers, ","))
}

// Stop ends the delivery loop, flushing whatever is queued, and closes
// the writer. It gives up waiting when ctx is done. A stopped publisher
// cannot be restarted.
func (p *Publisher) Stop(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	if !p.started {
		p.mu.Unlock()
		if err := p.writer.Close(); err != nil {
			return fmt.Errorf("failed to close kafka writer: %w", err)
		}
		return nil
	}
	p.started = false
	p.cancel()
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if cerr := p.writer.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close kafka writer: %w", cerr)
	}
	p.logger.Info("event publisher stopped")
	return err
}

// Publish queues a session summary keyed by its session ID.
func (p *Publisher) Publish(sum session.Summary) error {
	if !p.Enabled() {
		return nil
	}

	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	value, err := json.Marshal(Event{
		Type:          EventTypeSessionCompleted,
		SchemaVersion: SchemaVersion,
		EmittedAt:     time.Now().UTC(),
		Summary:       sum,
	})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{Key: []byte(sum.SessionID), Value: value}
	select {
	case p.queue <- msg:
		return nil
	default:
		p.observe("dropped")
		p.logger.Warn("event queue full, dropping summary", "session", sum.SessionID)
		return ErrQueueFull
	}
}

func (p *Publisher) run(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			p.drain()
			return
		case msg := <-p.queue:
			p.deliver(ctx, msg)
		}
	}
}

func (p *Publisher) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case msg := <-p.queue:
			p.deliver(ctx, msg)
		default:
			return
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, msg kafka.Message) {
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.observe("error")
		p.logger.Error("failed to publish session event", "session", string(msg.Key), "error", err)
		return
	}
	p.observe("ok")
	p.logger.Debug("published session event", "session", string(msg.Key))
}

func (p *Publisher) observe(result string) {
	if p.observer != nil {
		p.observer.EventPublished(result)
	}
}
