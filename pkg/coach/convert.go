package coach

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-posecoach/pkg/history"
	"github.com/teslashibe/go-posecoach/pkg/profile"
	"github.com/teslashibe/go-posecoach/pkg/protocol"
	"github.com/teslashibe/go-posecoach/pkg/scoring"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

func toScoreData(frameID uint64, r scoring.Result, hints []scoring.Hint) protocol.ScoreData {
	d := protocol.ScoreData{
		FrameID:          frameID,
		Score:            r.Score,
		RawScore:         r.RawScore,
		Orientation:      r.Orientation.String(),
		VisibleCount:     r.VisibleCount,
		PassRatio:        r.PassRatio,
		NearPerfectRatio: r.NearPerfectRatio,
		Diffs:            r.Diffs,
	}
	for _, h := range hints {
		d.Hints = append(d.Hints, protocol.HintData{Joint: h.Joint.String(), DiffDeg: h.DiffDeg})
	}
	return d
}

func toTimerData(st session.State) protocol.TimerData {
	return protocol.TimerData{
		Phase:              st.Phase.String(),
		Elapsed:            st.Elapsed(),
		ElapsedSeconds:     st.ElapsedSeconds,
		CorrectHeldSeconds: st.CorrectHeldSeconds,
		Accuracy:           st.Accuracy(),
		LastScore:          st.LastScore,
		Armed:              st.Armed,
	}
}

func toProfileData(p *profile.Profile) protocol.ProfileData {
	if p == nil {
		return protocol.ProfileData{}
	}
	return protocol.ProfileData{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Angles:       p.Angles,
		Weights:      p.Weights,
		ToleranceDeg: p.ToleranceDeg,
		BuiltIn:      p.BuiltIn,
	}
}

func fromProfileData(d protocol.ProfileData) *profile.Profile {
	p := &profile.Profile{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Angles:       d.Angles,
		Weights:      d.Weights,
		ToleranceDeg: d.ToleranceDeg,
	}
	if p.Weights == nil {
		p.Weights = profile.DefaultWeights()
	}
	if p.ToleranceDeg == 0 {
		p.ToleranceDeg = profile.DefaultToleranceDeg
	}
	return p
}

func toSummaryData(s session.Summary) protocol.SummaryData {
	return protocol.SummaryData{
		SessionID:          s.SessionID,
		ProfileID:          s.ProfileID,
		Elapsed:            s.Elapsed(),
		ElapsedSeconds:     s.ElapsedSeconds,
		CorrectHeldSeconds: s.CorrectHeldSeconds,
		Accuracy:           s.Accuracy,
		MeanScore:          s.MeanScore,
		BestScore:          s.BestScore,
		Frames:             s.Frames,
		StartedAt:          s.StartedAt.UnixMilli(),
		EndedAt:            s.EndedAt.UnixMilli(),
	}
}

// errorCode maps a domain error to a wire error code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, profile.ErrNotFound), errors.Is(err, history.ErrNotFound), errors.Is(err, ErrSessionNotFound):
		return protocol.CodeNotFound
	case errors.Is(err, profile.ErrInvalidProfile), errors.Is(err, profile.ErrBuiltInReadOnly), errors.Is(err, ErrSessionExists),
		errors.Is(err, errBadMessage):
		return protocol.CodeBadRequest
	case errors.Is(err, scoring.ErrNoPose):
		return protocol.CodeNoPose
	default:
		return protocol.CodeInternal
	}
}

// errorStatus maps a domain error to an HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, profile.ErrBuiltInReadOnly):
		return fiber.StatusForbidden
	case errors.Is(err, scoring.ErrNoPose), errors.Is(err, ErrSessionExists):
		return fiber.StatusConflict
	}
	switch errorCode(err) {
	case protocol.CodeNotFound:
		return fiber.StatusNotFound
	case protocol.CodeBadRequest:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
