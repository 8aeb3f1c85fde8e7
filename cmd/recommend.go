package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/engine"
	"github.com/tacticast/viewpoint/internal/model"
	"github.com/tacticast/viewpoint/internal/report"
	"github.com/tacticast/viewpoint/internal/storage"
	"github.com/tacticast/viewpoint/internal/tactic"
)

var (
	recommendTacticID string
	recommendIndex    int
	recommendPlayer   string
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <tactic.json>",
	Short: "Compute and store focus recommendations for a tactic",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().StringVar(&recommendTacticID, "tactic-id", "", "select tactic by id when the file is a list")
	recommendCmd.Flags().IntVar(&recommendIndex, "index", 0, "select tactic by index when the file is a list")
	recommendCmd.Flags().StringVar(&recommendPlayer, "player", "", "print the full focus timeline for this player id")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	loaded, err := tactic.Load(args[0], recommendTacticID, recommendIndex)
	if err != nil {
		return fmt.Errorf("load tactic: %w", err)
	}
	meta, err := tactic.ParseMeta(loaded.Tactic.Meta)
	if err != nil {
		return fmt.Errorf("parse tactic meta: %w", err)
	}
	rawFrames, err := tactic.ParseRawFrames(loaded.Tactic.Frames)
	if err != nil {
		return fmt.Errorf("parse tactic frames: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	color.New(color.FgCyan).Fprintf(os.Stdout, "Recommending focus for %q (%d frames)...\n",
		meta.TacticID, len(rawFrames))

	recs, err := engine.Recommend(meta, rawFrames, cfg)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	summary := model.TacticSummary{
		Hash:        loaded.Hash,
		TacticID:    meta.TacticID,
		Title:       meta.Title,
		PitchLength: meta.Pitch.Length,
		PitchWidth:  meta.Pitch.Width,
		NumPlayers:  len(recs),
		NumFrames:   len(rawFrames),
		HasRun:      true,
	}
	if err := db.InsertTactic(summary, loaded.Source); err != nil {
		return fmt.Errorf("insert tactic: %w", err)
	}
	if err := db.InsertRecommendations(loaded.Hash, recs); err != nil {
		return fmt.Errorf("insert recommendations: %w", err)
	}

	report.PrintTacticSummary(os.Stdout, summary)
	report.PrintFocusOverview(os.Stdout, recs, sortedPlayerIDs(recs), recommendPlayer)
	if recommendPlayer != "" {
		seq, ok := recs[recommendPlayer]
		if !ok {
			color.New(color.FgYellow).Fprintf(os.Stderr, "Player %q is not in this tactic's frame-0 lineup.\n", recommendPlayer)
			return nil
		}
		report.PrintPlayerTimeline(os.Stdout, recommendPlayer, seq)
	}
	return nil
}

func sortedPlayerIDs(recs map[string][]model.PlayerFocusRecommendation) []string {
	ids := make([]string, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
