package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/report"
	"github.com/tacticast/viewpoint/internal/storage"
)

var showPlayer string

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show stored recommendations by tactic hash prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showPlayer, "player", "", "print the full focus timeline for this player id")
}

func runShow(cmd *cobra.Command, args []string) error {
	prefix := args[0]

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	t, err := db.GetTacticByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query tactic: %w", err)
	}
	if t == nil {
		fmt.Fprintf(os.Stderr, "No tactic found with hash prefix %q\n", prefix)
		return nil
	}

	recs, err := db.GetRecommendations(t.Hash)
	if err != nil {
		return fmt.Errorf("get recommendations: %w", err)
	}
	if len(recs) == 0 {
		fmt.Fprintf(os.Stdout, "Tactic %s has no stored run yet. Run 'viewpoint recommend' on its source file.\n", prefix)
		return nil
	}

	report.PrintTacticSummary(os.Stdout, *t)
	report.PrintFocusOverview(os.Stdout, recs, sortedPlayerIDs(recs), showPlayer)
	if showPlayer != "" {
		seq, ok := recs[showPlayer]
		if !ok {
			fmt.Fprintf(os.Stderr, "No recommendations stored for player %q\n", showPlayer)
			return nil
		}
		report.PrintPlayerTimeline(os.Stdout, showPlayer, seq)
	}
	return nil
}
