package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/prefs"
	"github.com/tacticast/viewpoint/internal/vrlog"
)

var (
	deriveOut          string
	deriveNoCandidates bool
)

var deriveCmd = &cobra.Command{
	Use:   "derive <session-dir>",
	Short: "Derive rewards and preferences from a VR session",
	Long: `Reads a VR session directory and derives training signals:
rewards.jsonl (one reward per player/frame, from manual selections, gaze
dwell, and hint/replay confusion events) and prefs.jsonl (preference pairs
between focus candidates).`,
	Args: cobra.ExactArgs(1),
	RunE: runDerive,
}

func init() {
	deriveCmd.Flags().StringVar(&deriveOut, "out", "", "output directory (required)")
	deriveCmd.Flags().BoolVar(&deriveNoCandidates, "no-candidates", false, "ignore candidates.jsonl even if present")
	deriveCmd.MarkFlagRequired("out")
}

func runDerive(cmd *cobra.Command, args []string) error {
	session, err := vrlog.ReadSession(args[0])
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if deriveNoCandidates {
		session.Candidates = nil
	}

	rewards, pairs := prefs.Derive(session, prefs.DefaultOptions())

	if err := os.MkdirAll(deriveOut, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := prefs.WriteOutputs(deriveOut, rewards, pairs); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %d rewards to %s\n", len(rewards), filepath.Join(deriveOut, "rewards.jsonl"))
	fmt.Fprintf(os.Stdout, "Wrote %d prefs to %s\n", len(pairs), filepath.Join(deriveOut, "prefs.jsonl"))
	return nil
}
