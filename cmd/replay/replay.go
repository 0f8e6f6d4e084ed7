package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/teslashibe/go-posecoach/pkg/protocol"
	"github.com/teslashibe/go-posecoach/pkg/scoring"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

// maxLine fits a 33-landmark frame with room to spare.
const maxLine = 1 << 20

// replayer feeds recorded frames through an engine and timer. One timer
// tick is issued every fps frames, so a recording replays in session time.
type replayer struct {
	engine *scoring.Engine
	timer  *session.Timer
	fps    int

	onScore func(frame int, r scoring.Result)
}

// run reads JSON lines of frame data until EOF and returns the final summary.
// Blank lines are skipped; a malformed line stops the replay.
func (rp *replayer) run(r io.Reader) (session.Summary, int, error) {
	fps := rp.fps
	if fps <= 0 {
		fps = 30
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	frames := 0
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var fd protocol.FrameData
		if err := json.Unmarshal(data, &fd); err != nil {
			return session.Summary{}, frames, fmt.Errorf("line %d: %w", line, err)
		}

		f := fd.Frame()
		result := rp.engine.ProcessFrame(&f)
		rp.timer.ObserveScore(result.Score)
		frames++

		if rp.onScore != nil {
			rp.onScore(frames, result)
		}
		if frames%fps == 0 {
			rp.timer.Tick()
		}
	}
	if err := scanner.Err(); err != nil {
		return session.Summary{}, frames, err
	}

	sum := rp.timer.Stop()
	if p := rp.engine.Profile(); p != nil {
		sum.ProfileID = p.ID
	}
	return sum, frames, nil
}
