// replay: score a recorded landmark stream offline
// Reads JSON lines of {"landmarks": [...]} and prints scores and a session summary.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/teslashibe/go-posecoach/internal/httpc"
	"github.com/teslashibe/go-posecoach/internal/log"
	"github.com/teslashibe/go-posecoach/pkg/profile"
	"github.com/teslashibe/go-posecoach/pkg/scoring"
	"github.com/teslashibe/go-posecoach/pkg/session"
)

var (
	profileID   = flag.String("profile", "upward-dog", "Reference profile ID")
	profileFile = flag.String("profile-file", "", "Load the reference profile from a JSON file")
	serverURL   = flag.String("server", "", "Fetch the reference profile from a posecoach server")
	fps         = flag.Int("fps", 30, "Frames per second of the recording")
	autoStart   = flag.Bool("auto-start", true, "Start the timer on the first correct score")
	verbose     = flag.Bool("v", false, "Print every frame score")
	jsonOut     = flag.Bool("json", false, "Print the summary as JSON")
)

func main() {
	flag.Parse()
	log.Init("warn")

	p, err := loadProfile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if flag.NArg() > 0 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	rp := &replayer{
		engine: scoring.NewEngine(p),
		timer:  session.NewTimer(*autoStart),
		fps:    *fps,
	}
	if *verbose {
		rp.onScore = func(frame int, r scoring.Result) {
			fmt.Printf("%6d  %6.1f  raw=%5.1f  visible=%2d  %s\n",
				frame, r.Score, r.RawScore, r.VisibleCount, r.Orientation)
		}
	}
	if !*autoStart {
		rp.timer.Start()
	}

	sum, frames, err := rp.run(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ replay failed after %d frames: %v\n", frames, err)
		os.Exit(1)
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(sum)
		return
	}
	printSummary(p, frames, sum)
}

func loadProfile() (*profile.Profile, error) {
	switch {
	case *profileFile != "":
		return profile.LoadFromFile(*profileFile)
	case *serverURL != "":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpc.New(*serverURL, 0).Profile(ctx, *profileID)
	default:
		return profile.LoadEmbedded(*profileID)
	}
}

func printSummary(p *profile.Profile, frames int, sum session.Summary) {
	fmt.Println()
	fmt.Printf("🧘 %s (%s)\n", p.Name, p.ID)
	fmt.Printf("   Frames:   %d\n", frames)
	if sum.Empty() {
		fmt.Println("   Timer never ran (no correct pose reached)")
		return
	}
	fmt.Printf("   Elapsed:  %s\n", sum.Elapsed())
	fmt.Printf("   Held:     %s\n", session.Format(sum.CorrectHeldSeconds))
	fmt.Printf("   Accuracy: %d%%\n", sum.Accuracy)
	fmt.Printf("   Score:    mean %.1f, best %.1f, σ %.1f\n", sum.MeanScore, sum.BestScore, sum.ScoreStdDev)
	fmt.Println()
}
