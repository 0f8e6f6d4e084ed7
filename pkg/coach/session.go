package coach

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/teslashibe/go-posecoach/pkg/activity"
	"github.com/teslashibe/go-posecoach/pkg/hub"
	"github.com/teslashibe/go-posecoach/pkg/pose"
	"github.com/teslashibe/go-posecoach/pkg/profile"
	"github.com/teslashibe/go-posecoach/pkg/protocol"
	"github.com/teslashibe/go-posecoach/pkg/scoring"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

var (
	// ErrSessionNotFound is returned when no client session has the given ID.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists is returned when a client reuses a connected session ID.
	ErrSessionExists = errors.New("session already connected")

	errBadMessage = errors.New("bad message")
)

// sessionConn is the write half of a client connection.
type sessionConn interface {
	WriteMessage(messageType int, data []byte) error
}

// Session is one connected client: an engine, a timer and its watchers.
type Session struct {
	ID        string
	Connected time.Time

	srv      *Server
	conn     sessionConn
	engine   *scoring.Engine
	timer    *session.Timer
	watchers *hub.Hub
	logger   *slog.Logger

	cancel context.CancelFunc

	sendMu   sync.Mutex
	lastSeen atomic.Int64
	frames   atomic.Uint64
}

func newSession(srv *Server, id string, conn sessionConn, p *profile.Profile) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Connected: now,
		srv:       srv,
		conn:      conn,
		engine:    scoring.NewEngine(p),
		timer:     session.NewTimer(srv.cfg.AutoStart),
		watchers:  hub.New(id),
		logger:    srv.logger.With("session", id),
	}
	s.lastSeen.Store(now.UnixMilli())
	return s
}

// start launches the watcher hub and the timer ticks.
func (s *Session) start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	go s.watchers.Run(ctx)
	go s.timer.Run(ctx, s.srv.cfg.TickInterval, func(st session.State) {
		if st.Phase == session.Running {
			s.emit(protocol.TypeTimer, toTimerData(st))
		}
	})
}

// close finishes any running timer, then stops ticking and the watchers.
func (s *Session) close() {
	s.finish(s.timer.Stop())
	if s.cancel != nil {
		s.cancel()
	}
}

// send writes a message to the client. Writes are serialized because the
// read loop and the tick goroutine both send.
func (s *Session) send(msgType protocol.MessageType, data interface{}) error {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		return err
	}
	return s.sendMessage(msg)
}

func (s *Session) sendMessage(msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	if s.conn == nil {
		return nil
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	s.srv.messagesSent.Add(1)
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// emit sends to the client and mirrors the message to watchers.
func (s *Session) emit(msgType protocol.MessageType, data interface{}) {
	msg, err := protocol.NewMessage(msgType, data)
	if err != nil {
		s.logger.Error("failed to encode message", "type", msgType, "error", err)
		return
	}
	if err := s.sendMessage(msg); err != nil {
		s.logger.Debug("send failed", "type", msgType, "error", err)
	}
	if raw, err := msg.Bytes(); err == nil {
		s.watchers.Broadcast(hub.NewJSONMessage(raw))
	}
}

func (s *Session) sendError(request protocol.MessageType, err error) {
	msg, merr := protocol.NewErrorMessage(errorCode(err), err.Error(), request)
	if merr != nil {
		return
	}
	if serr := s.sendMessage(msg); serr != nil {
		s.logger.Debug("send failed", "type", protocol.TypeError, "error", serr)
	}
}

// ProcessFrame scores one frame, feeds the timer and emits the score.
func (s *Session) ProcessFrame(frameID uint64, f *pose.Frame) scoring.Result {
	began := time.Now()
	result := s.engine.ProcessFrame(f)
	started := s.timer.ObserveScore(result.Score)
	s.frames.Add(1)
	s.srv.metrics.FrameScored(result.Score, result.VisibleCount < s.engine.Config().MinVisible, time.Since(began))

	var hints []scoring.Hint
	if n := s.srv.cfg.FeedbackHints; n > 0 {
		if p := s.engine.Profile(); p != nil {
			hints = scoring.Feedback(result.Diffs, p.ToleranceDeg, n)
		}
	}
	s.emit(protocol.TypeScore, toScoreData(frameID, result, hints))

	if started {
		s.logger.Info("timer auto-started", "score", result.Score)
		s.emit(protocol.TypeTimer, toTimerData(s.timer.State()))
	}
	return result
}

// Start starts the timer.
func (s *Session) Start() session.State {
	if s.timer.Start() {
		s.logger.Info("timer started")
	}
	st := s.timer.State()
	s.emit(protocol.TypeTimer, toTimerData(st))
	return st
}

// Stop stops the timer and finishes the run.
func (s *Session) Stop() session.Summary {
	sum := s.finish(s.timer.Stop())
	s.emit(protocol.TypeTimer, toTimerData(s.timer.State()))
	return sum
}

// Arm enables auto-start on the next correct score.
func (s *Session) Arm() session.State {
	s.timer.Arm()
	st := s.timer.State()
	s.emit(protocol.TypeTimer, toTimerData(st))
	return st
}

// SelectProfile switches the reference pose.
func (s *Session) SelectProfile(id string) (*profile.Profile, error) {
	p, err := s.srv.profiles.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.engine.SetProfile(p); err != nil {
		return nil, err
	}
	s.logger.Info("profile selected", "profile", p.ID)
	s.srv.activity.Add(activity.KindProfile, s.ID, "switched to %s", p.Name)
	s.emit(protocol.TypeProfile, toProfileData(p))
	return p, nil
}

// CaptureReference turns the current smoothed pose into a registered
// profile, optionally making it the active one.
func (s *Session) CaptureReference(name string, selectIt bool) (*profile.Profile, error) {
	p, err := s.engine.CaptureReference(name)
	if err != nil {
		return nil, err
	}
	if err := s.srv.addProfile(p); err != nil {
		return nil, err
	}
	s.logger.Info("reference captured", "profile", p.ID, "name", p.Name)
	s.srv.activity.Add(activity.KindCaptured, s.ID, "captured %q", p.Name)

	if selectIt {
		return s.SelectProfile(p.ID)
	}
	if err := s.send(protocol.TypeProfile, toProfileData(p)); err != nil {
		s.logger.Debug("send failed", "type", protocol.TypeProfile, "error", err)
	}
	return p, nil
}

// finish records and announces a run. Runs with no elapsed time are dropped.
func (s *Session) finish(sum session.Summary) session.Summary {
	if sum.Empty() {
		return sum
	}

	sum.SessionID = uuid.New().String()
	if p := s.engine.Profile(); p != nil {
		sum.ProfileID = p.ID
	}

	s.srv.recordSummary(sum)
	s.srv.activity.Add(activity.KindFinished, s.ID, "held %s of %s (%d%%)",
		session.Format(sum.CorrectHeldSeconds), sum.Elapsed(), sum.Accuracy)
	s.logger.Info("session finished",
		"run", sum.SessionID,
		"elapsed", sum.Elapsed(),
		"accuracy", sum.Accuracy,
	)
	s.emit(protocol.TypeSummary, toSummaryData(sum))
	return sum
}

// SessionInfo describes a connected session.
type SessionInfo struct {
	ID        string             `json:"id"`
	ProfileID string             `json:"profile_id"`
	Connected time.Time          `json:"connected"`
	LastSeen  time.Time          `json:"last_seen"`
	Frames    uint64             `json:"frames"`
	Score     float64            `json:"score"`
	Timer     protocol.TimerData `json:"timer"`
	Watchers  int                `json:"watchers"`
}

// Info returns a snapshot of the session.
func (s *Session) Info() SessionInfo {
	info := SessionInfo{
		ID:        s.ID,
		Connected: s.Connected,
		LastSeen:  time.UnixMilli(s.lastSeen.Load()),
		Frames:    s.frames.Load(),
		Score:     s.engine.CurrentScore(),
		Timer:     toTimerData(s.timer.State()),
		Watchers:  s.watchers.ClientCount(),
	}
	if p := s.engine.Profile(); p != nil {
		info.ProfileID = p.ID
	}
	return info
}
