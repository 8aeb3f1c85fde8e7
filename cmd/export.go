package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/model"
	"github.com/tacticast/viewpoint/internal/storage"
	"github.com/tacticast/viewpoint/internal/tactic"
	"github.com/tacticast/viewpoint/internal/vrlog"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <hash-prefix>",
	Short: "Export a stored run as candidates JSONL for the VR client",
	Long: `Writes one JSON line per (player, frame) holding the ranked focus
candidates and the chosen candidate id, in the schema the VR client
records back into session candidates.jsonl.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: <hash-prefix>.candidates.jsonl)")
}

func runExport(cmd *cobra.Command, args []string) error {
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
	if len(recs) == 0 {
		return fmt.Errorf("tactic %s has no stored run", tactic.ShortHash(t.Hash))
	}
	cands, err := db.GetCandidates(t.Hash)
	if err != nil {
		return fmt.Errorf("get candidates: %w", err)
	}

	records := buildCandidateRecords(recs, cands)

	out := exportOut
	if out == "" {
		out = tactic.ShortHash(t.Hash) + ".candidates.jsonl"
	}
	if err := vrlog.WriteJSONLFile(out, records); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %d candidate records to %s\n", len(records), out)
	return nil
}

// buildCandidateRecords groups stored top-k rows into per-(player, frame)
// candidate sets. Frames with no stored alternatives (ball fallback) export a
// single candidate synthesized from the recommendation itself, so the VR
// client always has a chosen candidate to reference.
func buildCandidateRecords(recs map[string][]model.PlayerFocusRecommendation, cands []storage.CandidateRow) []vrlog.CandidateSetRecord {
	type key struct {
		PlayerID string
		FrameIdx int
	}
	byFrame := make(map[key][]storage.CandidateRow)
	for _, c := range cands {
		k := key{PlayerID: c.PlayerID, FrameIdx: c.FrameIdx}
		byFrame[k] = append(byFrame[k], c)
	}

	var records []vrlog.CandidateSetRecord
	for _, pid := range sortedPlayerIDs(recs) {
		for _, r := range recs[pid] {
			rows := byFrame[key{PlayerID: pid, FrameIdx: r.FrameIdx}]

			var cs []vrlog.Candidate
			if len(rows) == 0 {
				cs = []vrlog.Candidate{exportCandidate(0, "FALLBACK_BALL",
					r.Primary.Type, r.Primary.Anchor, r.Primary.TargetPlayerID, r.PrimaryScore)}
			} else {
				for _, row := range rows {
					cs = append(cs, exportCandidate(row.Rank, row.Name,
						row.TargetType, row.Anchor, row.TargetPlayerID, row.Score))
				}
			}

			records = append(records, vrlog.CandidateSetRecord{
				FrameIdx:          r.FrameIdx,
				PlayerID:          pid,
				Candidates:        cs,
				ChosenCandidateID: cs[0].CandidateID,
			})
		}
	}
	return records
}

func exportCandidate(rank int, name string, typ model.FocusType, anchor model.Vec2, targetPlayerID string, score float64) vrlog.Candidate {
	c := vrlog.Candidate{
		CandidateID:   fmt.Sprintf("c%d", rank),
		TargetType:    strings.ToLower(string(typ)),
		AnchorXY:      [2]float64{anchor.X, anchor.Y},
		BaselineScore: score,
		Features:      map[string]any{"kind": name},
	}
	if targetPlayerID != "" {
		c.TargetPlayerID = &targetPlayerID
	}
	return c
}
