package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/mock-interview-coach/internal/analysis"
	"github.com/ZanzyTHEbar/mock-interview-coach/internal/errors"
)

const maxFrameLine = 16 << 20

type scoreOutput struct {
	Profile string `json:"profile"`
	analysis.SessionResult
}

func (c *cli) scoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [frames.jsonl]",
		Short: "Score a recorded answer",
		Long: `Score reads one JSON feature frame per line and prints the session report.
With no file, or with "-", frames are read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			source := "stdin"
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening frames: %w", err)
				}
				defer errors.SafeClose(f, "frames file")
				in, source = f, args[0]
			}

			profile, err := c.loadProfile()
			if err != nil {
				return err
			}
			analyzer, err := analysis.NewAnalyzer(profile)
			if err != nil {
				return err
			}

			frames, err := readFrames(in)
			if err != nil {
				return fmt.Errorf("reading %s: %w", source, err)
			}

			start := time.Now()
			res, err := analyzer.ScoreFrames(frames)
			if err != nil {
				return err
			}
			c.logger.ScoreLogger("", 0, res.Report, res.Ingested, res.Dropped, time.Since(start))

			out := scoreOutput{Profile: profile.Name, SessionResult: res}
			return c.print(cmd.OutOrStdout(), out, out.writeText)
		},
	}
}

// readFrames decodes JSON Lines; blank lines are skipped.
func readFrames(r io.Reader) ([]analysis.FeatureFrame, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxFrameLine)

	var frames []analysis.FeatureFrame
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var f analysis.FeatureFrame
		if err := json.Unmarshal(text, &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

func (o scoreOutput) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "profile\t%s\n", o.Profile)
	fmt.Fprintf(tw, "frames\t%d (ingested %d, dropped %d, no face %d)\n", o.Frames, o.Ingested, o.Dropped, o.MissingFaces)
	fmt.Fprintf(tw, "attention\t%d\n", o.Report.Attention)
	fmt.Fprintf(tw, "stability\t%d\n", o.Report.Stability)
	fmt.Fprintf(tw, "positivity\t%d\n", o.Report.Positivity)
	fmt.Fprintf(tw, "final\t%d\n", o.Report.FinalScore)
	return tw.Flush()
}
