package coach

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-posecoach/pkg/protocol"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

// errorResponse writes err as {"error": ...} with a matching status.
func errorResponse(c *fiber.Ctx, err error) error {
	return c.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
}

// RegisterAPIRoutes registers the REST API for profiles, sessions and history.
func (s *Server) RegisterAPIRoutes(api fiber.Router) {
	s.registerProfileRoutes(api.Group("/profiles"))
	s.registerSessionRoutes(api.Group("/sessions"))
	s.registerHistoryRoutes(api.Group("/history"))

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GetStats())
	})
}

func (s *Server) registerProfileRoutes(profiles fiber.Router) {
	// List profiles
	profiles.Get("/", func(c *fiber.Ctx) error {
		list := s.profiles.List()
		out := make([]protocol.ProfileData, 0, len(list))
		for _, p := range list {
			out = append(out, toProfileData(p))
		}
		return c.JSON(fiber.Map{
			"profiles": out,
			"count":    len(out),
		})
	})

	profiles.Get("/:id", func(c *fiber.Ctx) error {
		p, err := s.profiles.Get(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(toProfileData(p))
	})

	// Upload a custom reference pose
	profiles.Post("/", func(c *fiber.Ctx) error {
		var req protocol.ProfileData
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		p := fromProfileData(req)
		if err := s.addProfile(p); err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toProfileData(p))
	})

	profiles.Delete("/:id", func(c *fiber.Ctx) error {
		if err := s.removeProfile(c.Params("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func (s *Server) registerSessionRoutes(sessions fiber.Router) {
	// List connected sessions
	sessions.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": s.SessionInfos(),
			"count":    s.SessionCount(),
		})
	})

	sessions.Get("/:id", func(c *fiber.Ctx) error {
		sess, err := s.Session(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(sess.Info())
	})

	sessions.Post("/:id/start", func(c *fiber.Ctx) error {
		sess, err := s.Session(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(toTimerData(sess.Start()))
	})

	sessions.Post("/:id/stop", func(c *fiber.Ctx) error {
		sess, err := s.Session(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		sum := sess.Stop()
		resp := fiber.Map{"timer": toTimerData(sess.timer.State())}
		if !sum.Empty() {
			resp["summary"] = toSummaryData(sum)
		}
		return c.JSON(resp)
	})

	sessions.Post("/:id/arm", func(c *fiber.Ctx) error {
		sess, err := s.Session(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(toTimerData(sess.Arm()))
	})

	sessions.Post("/:id/profile", func(c *fiber.Ctx) error {
		sess, err := s.Session(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		var req protocol.SelectProfileData
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		p, err := sess.SelectProfile(req.ProfileID)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(toProfileData(p))
	})

	// Capture the session's current pose as a new profile
	sessions.Post("/:id/reference", func(c *fiber.Ctx) error {
		sess, err := s.Session(c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		var req protocol.CaptureReferenceData
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			}
		}
		p, err := sess.CaptureReference(req.Name, req.Select)
		if err != nil {
			return errorResponse(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(toProfileData(p))
	})
}

var errNoHistory = errors.New("history is not configured")

func (s *Server) registerHistoryRoutes(history fiber.Router) {
	history.Use(func(c *fiber.Ctx) error {
		if s.history == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": errNoHistory.Error()})
		}
		return c.Next()
	})

	// Recent sessions, optionally for one profile
	history.Get("/", func(c *fiber.Ctx) error {
		list, err := s.history.Recent(c.UserContext(), c.Query("profile"), c.QueryInt("limit", 20))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{
			"sessions": toSummaryList(list),
			"count":    len(list),
		})
	})

	history.Get("/stats", func(c *fiber.Ctx) error {
		st, err := s.history.Stats(c.UserContext(), c.Query("profile"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(st)
	})

	history.Get("/:id", func(c *fiber.Ctx) error {
		sum, err := s.history.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(toSummaryData(sum))
	})
}

func toSummaryList(list []session.Summary) []protocol.SummaryData {
	out := make([]protocol.SummaryData, 0, len(list))
	for _, sum := range list {
		out = append(out, toSummaryData(sum))
	}
	return out
}
