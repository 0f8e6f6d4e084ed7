package coach

import (
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	watchws "github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-posecoach/pkg/hub"
	"github.com/teslashibe/go-posecoach/pkg/protocol"
)

// maxFrameMessage caps a client message; a 33-landmark frame is well under it.
const maxFrameMessage = 64 * 1024

// RegisterRoutes registers the WebSocket routes on a Fiber app.
func (s *Server) RegisterRoutes(app *fiber.App) {
	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// Pose client endpoint
	app.Get("/ws/session", websocket.New(s.handleSession))
	app.Get("/ws/session/:id", websocket.New(s.handleSession))

	// Read-only observers of a session
	app.Get("/ws/watch/:id", watchws.New(s.handleWatch))
}

// handleSession handles a pose client connection.
func (s *Server) handleSession(c *websocket.Conn) {
	sess, err := s.attach(c.Params("id"), c)
	if err != nil {
		s.logger.Warn("session rejected", "session", c.Params("id"), "error", err)
		if msg, merr := protocol.NewErrorMessage(errorCode(err), err.Error(), ""); merr == nil {
			if data, berr := msg.Bytes(); berr == nil {
				c.WriteMessage(websocket.TextMessage, data)
			}
		}
		return
	}
	defer s.detach(sess)

	c.SetReadLimit(maxFrameMessage)

	p := sess.engine.Profile()
	sess.send(protocol.TypeSession, protocol.SessionData{
		ID:        sess.ID,
		ProfileID: p.ID,
		AutoStart: sess.timer.State().Armed,
	})
	sess.send(protocol.TypeProfile, toProfileData(p))

	// Read loop
	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			if s.cfg.Debug {
				s.logger.Debug("session read error", "session", sess.ID, "error", err)
			}
			return
		}

		sess.lastSeen.Store(time.Now().UnixMilli())
		s.messagesReceived.Add(1)
		s.handleMessage(sess, data)
	}
}

// handleMessage dispatches one client message.
func (s *Server) handleMessage(sess *Session, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		sess.sendError("", fmt.Errorf("%w: %v", errBadMessage, err))
		return
	}

	switch msg.Type {
	case protocol.TypeFrame:
		s.framesReceived.Add(1)
		frame, err := msg.GetFrameData()
		if err != nil {
			sess.sendError(msg.Type, fmt.Errorf("%w: %v", errBadMessage, err))
			return
		}
		f := frame.Frame()
		sess.ProcessFrame(frame.FrameID, &f)

	case protocol.TypeStart:
		sess.Start()

	case protocol.TypeStop:
		sess.Stop()

	case protocol.TypeArm:
		sess.Arm()

	case protocol.TypeSelectProfile:
		sel, err := msg.GetSelectProfileData()
		if err != nil {
			sess.sendError(msg.Type, fmt.Errorf("%w: %v", errBadMessage, err))
			return
		}
		if _, err := sess.SelectProfile(sel.ProfileID); err != nil {
			sess.sendError(msg.Type, err)
		}

	case protocol.TypeCaptureReference:
		req, err := msg.GetCaptureReferenceData()
		if err != nil {
			sess.sendError(msg.Type, fmt.Errorf("%w: %v", errBadMessage, err))
			return
		}
		if _, err := sess.CaptureReference(req.Name, req.Select); err != nil {
			sess.sendError(msg.Type, err)
		}

	case protocol.TypePing:
		ping, err := msg.GetPingData()
		if err != nil {
			ping = &protocol.PingData{Timestamp: msg.Timestamp}
		}
		pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
		if err == nil {
			sess.sendMessage(pong)
		}

	default:
		sess.sendError(msg.Type, fmt.Errorf("%w: unknown type %q", errBadMessage, msg.Type))
	}
}

// handleWatch streams a session's score and timer messages to an observer.
func (s *Server) handleWatch(c *watchws.Conn) {
	sess, err := s.Session(c.Params("id"))
	if err != nil {
		if msg, merr := protocol.NewErrorMessage(errorCode(err), err.Error(), ""); merr == nil {
			if data, berr := msg.Bytes(); berr == nil {
				c.WriteMessage(watchws.TextMessage, data)
			}
		}
		return
	}

	// Current timer state first so the watcher doesn't wait for a tick.
	if msg, err := protocol.NewMessage(protocol.TypeTimer, toTimerData(sess.timer.State())); err == nil {
		if data, err := msg.Bytes(); err == nil {
			c.WriteMessage(watchws.TextMessage, data)
		}
	}

	client := hub.NewClient(sess.watchers, c)
	if client == nil {
		return
	}

	s.metrics.WatcherJoined()
	defer s.metrics.WatcherLeft()

	s.logger.Debug("watcher joined", "session", sess.ID, "watchers", sess.watchers.ClientCount())
	client.Run()
}
