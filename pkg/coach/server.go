package coach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-posecoach/internal/log"
	"github.com/teslashibe/go-posecoach/pkg/activity"
	"github.com/teslashibe/go-posecoach/pkg/metrics"
	"github.com/teslashibe/go-posecoach/pkg/profile"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

// recordTimeout bounds the history write for one finished run.
const recordTimeout = 5 * time.Second

// Options wires a Server to its collaborators. Only Profiles is required.
type Options struct {
	Config   Config
	Profiles *profile.Registry
	Store    profile.Store
	History  History
	Events   Publisher
	Metrics  *metrics.Metrics
	Activity *activity.Feed
	Logger   *slog.Logger
}

// Server manages client sessions and the HTTP surface over them.
type Server struct {
	cfg      Config
	profiles *profile.Registry
	store    profile.Store
	history  History
	events   Publisher
	metrics  *metrics.Metrics
	activity *activity.Feed
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*Session

	// Stats
	messagesReceived  atomic.Uint64
	messagesSent      atomic.Uint64
	framesReceived    atomic.Uint64
	sessionsCompleted atomic.Uint64
}

// NewServer creates a server. The default profile must be registered.
func NewServer(opts Options) (*Server, error) {
	if opts.Profiles == nil {
		return nil, errors.New("coach: profile registry is required")
	}
	cfg := opts.Config
	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = DefaultConfig().DefaultProfile
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if _, err := opts.Profiles.Get(cfg.DefaultProfile); err != nil {
		return nil, fmt.Errorf("coach: default profile: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Component("coach")
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:      cfg,
		profiles: opts.Profiles,
		store:    opts.Store,
		history:  opts.History,
		events:   opts.Events,
		metrics:  opts.Metrics,
		activity: opts.Activity,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*Session),
	}, nil
}

// Close finishes the run of every open session, then stops their tick and
// watcher goroutines. It is safe to call more than once.
func (s *Server) Close() {
	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()

	for _, sess := range open {
		sess.close()
	}
	s.cancel()
}

// attach creates and registers a session. An empty id gets a generated one.
func (s *Server) attach(id string, conn sessionConn) (*Session, error) {
	if id == "" {
		id = uuid.New().String()
	}
	p, err := s.profiles.Get(s.cfg.DefaultProfile)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, exists := s.sessions[id]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrSessionExists, id)
	}
	sess := newSession(s, id, conn, p)
	s.sessions[id] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	sess.start(s.ctx)
	s.metrics.SessionOpened()
	s.activity.Add(activity.KindConnected, id, "session connected with %s", p.Name)
	s.logger.Info("session connected", "session", id, "total", count)
	return sess, nil
}

// detach finishes and removes a session.
func (s *Server) detach(sess *Session) {
	sess.close()

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SessionClosed()
	s.activity.Add(activity.KindDisconnected, sess.ID, "session disconnected after %d frames", sess.frames.Load())
	s.logger.Info("session disconnected", "session", sess.ID, "total", count)
}

// Session returns a connected session by ID.
func (s *Server) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SessionInfos returns info about all connected sessions, oldest first.
func (s *Server) SessionInfos() []SessionInfo {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Connected.Before(infos[j].Connected)
	})
	return infos
}

// addProfile registers a captured or uploaded profile and persists it.
func (s *Server) addProfile(p *profile.Profile) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.BuiltIn = false
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if err := s.profiles.Register(p); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(p); err != nil {
		s.profiles.Unregister(p.ID)
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// removeProfile unregisters a captured profile and drops it from the store.
func (s *Server) removeProfile(id string) error {
	if err := s.profiles.Unregister(id); err != nil {
		return err
	}
	if s.store == nil {
		return nil
	}
	if err := s.store.Delete(id); err != nil && !errors.Is(err, profile.ErrNotFound) {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// recordSummary stores, publishes and counts a finished run.
func (s *Server) recordSummary(sum session.Summary) {
	s.sessionsCompleted.Add(1)
	s.metrics.SessionCompleted(sum.Accuracy)

	if s.history != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if _, err := s.history.Record(ctx, sum); err != nil {
			s.logger.Error("failed to record session", "run", sum.SessionID, "error", err)
		}
		cancel()
	}
	if s.events != nil {
		if err := s.events.Publish(sum); err != nil {
			s.logger.Warn("failed to publish session", "run", sum.SessionID, "error", err)
		}
	}
}

// Stats contains server statistics.
type Stats struct {
	Sessions          int    `json:"sessions"`
	Profiles          int    `json:"profiles"`
	MessagesReceived  uint64 `json:"messages_received"`
	MessagesSent      uint64 `json:"messages_sent"`
	FramesReceived    uint64 `json:"frames_received"`
	SessionsCompleted uint64 `json:"sessions_completed"`
}

// GetStats returns server statistics.
func (s *Server) GetStats() Stats {
	return Stats{
		Sessions:          s.SessionCount(),
		Profiles:          s.profiles.Count(),
		MessagesReceived:  s.messagesReceived.Load(),
		MessagesSent:      s.messagesSent.Load(),
		FramesReceived:    s.framesReceived.Load(),
		SessionsCompleted: s.sessionsCompleted.Load(),
	}
}
