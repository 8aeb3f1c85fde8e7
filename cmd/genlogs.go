package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/storage"
	"github.com/tacticast/viewpoint/internal/tactic"
	"github.com/tacticast/viewpoint/internal/vrlog"
)

var (
	genlogsPlayer   string
	genlogsSeed     int64
	genlogsSampleHz int
	genlogsOut      string
)

var genlogsCmd = &cobra.Command{
	Use:   "genlogs <hash-prefix>",
	Short: "Generate a synthetic VR session from a stored run",
	Long: `Synthesizes a demo VR session directory (session_meta.json,
telemetry.jsonl, events.jsonl, candidates.jsonl) for one player of a stored
run. Gaze dwell is biased toward each frame's chosen focus target; the
trajectory is deterministic for a given seed.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenlogs,
}

func init() {
	genlogsCmd.Flags().StringVar(&genlogsPlayer, "player", "", "player id to simulate (required)")
	genlogsCmd.Flags().Int64Var(&genlogsSeed, "seed", 7, "random seed for the gaze trajectory")
	genlogsCmd.Flags().IntVar(&genlogsSampleHz, "sample-hz", 20, "telemetry samples per second")
	genlogsCmd.Flags().StringVar(&genlogsOut, "out", "", "session directory to write (required)")
	genlogsCmd.MarkFlagRequired("player")
	genlogsCmd.MarkFlagRequired("out")
}

func runGenlogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	t, err := db.GetTacticByPrefix(args[0])
	if err != nil {
		return fmt.Errorf("query tactic: %w", err)
	}
	if t == nil {
		fmt.Fprintf(os.Stderr, "No tactic found with hash prefix %q\n", args[0])
		return nil
	}

	recs, err := db.GetRecommendations(t.Hash)
	if err != nil {
		return fmt.Errorf("get recommendations: %w", err)
	}
	if _, ok := recs[genlogsPlayer]; !ok {
		return fmt.Errorf("no stored recommendations for player %q in tactic %s", genlogsPlayer, tactic.ShortHash(t.Hash))
	}
	cands, err := db.GetCandidates(t.Hash)
	if err != nil {
		return fmt.Errorf("get candidates: %w", err)
	}

	var sets []vrlog.CandidateSetRecord
	for _, rec := range buildCandidateRecords(recs, cands) {
		if rec.PlayerID == genlogsPlayer {
			sets = append(sets, rec)
		}
	}

	meta, telemetry, events := vrlog.GenerateSession(vrlog.GenerateOptions{
		TacticID:   t.TacticID,
		TacticHash: t.Hash,
		ConfigHash: cfg.Hash(),
		PlayerID:   genlogsPlayer,
		Seed:       genlogsSeed,
		SampleHz:   genlogsSampleHz,
	}, sets)

	if err := vrlog.WriteSession(genlogsOut, meta, telemetry, events, sets); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	color.New(color.FgGreen).Fprintf(os.Stdout, "Session %s written to %s\n", meta.SessionID, genlogsOut)
	fmt.Fprintf(os.Stdout, "  %d telemetry samples, %d events, %d candidate records\n",
		len(telemetry), len(events), len(sets))
	return nil
}
