package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/tacticast/viewpoint/internal/model"
)

// PrintTacticSummary prints a one-line summary header for the tactic.
func PrintTacticSummary(w io.Writer, s model.TacticSummary) {
	ran := "no"
	if s.HasRun {
		ran = "yes"
	}
	fmt.Fprintf(w, "\nTactic: %s  |  Title: %s  |  Pitch: %.0fx%.0f  |  Players: %d  |  Frames: %d  |  Run: %s  |  Hash: %s\n\n",
		s.TacticID, s.Title, s.PitchLength, s.PitchWidth, s.NumPlayers, s.NumFrames, ran, shortHash(s.Hash))
}

// PrintFocusOverview prints one row per player summarizing the recommended
// focus sequence: first primary, number of focus switches across frames, and
// the score range. playerIDs fixes the row order.
func PrintFocusOverview(w io.Writer, recs map[string][]model.PlayerFocusRecommendation, playerIDs []string, focusPlayerID string) {
	table := newTable(w)
	table.Header(" ", "PLAYER", "FRAMES", "FIRST_FOCUS", "SWITCHES", "MIN_SCORE", "MAX_SCORE")

	for _, pid := range playerIDs {
		seq := recs[pid]
		if len(seq) == 0 {
			continue
		}

		switches := 0
		minScore, maxScore := seq[0].PrimaryScore, seq[0].PrimaryScore
		for i := 1; i < len(seq); i++ {
			if !seq[i].Primary.SameFocus(seq[i-1].Primary) {
				switches++
			}
			if seq[i].PrimaryScore < minScore {
				minScore = seq[i].PrimaryScore
			}
			if seq[i].PrimaryScore > maxScore {
				maxScore = seq[i].PrimaryScore
			}
		}

		marker := " "
		if focusPlayerID != "" && pid == focusPlayerID {
			marker = ">"
		}
		table.Append(
			marker,
			pid,
			strconv.Itoa(len(seq)),
			FormatTarget(seq[0].Primary),
			strconv.Itoa(switches),
			fmt.Sprintf("%.2f", minScore),
			fmt.Sprintf("%.2f", maxScore),
		)
	}
	table.Render()
}

// PrintPlayerTimeline prints the per-frame focus timeline for one player,
// including the rationale trail.
func PrintPlayerTimeline(w io.Writer, playerID string, seq []model.PlayerFocusRecommendation) {
	fmt.Fprintf(w, "\nFocus timeline for %s:\n", playerID)

	table := newTable(w)
	table.Header("FRAME", "T_REL", "TARGET", "ANCHOR", "SCORE", "RATIONALE")

	for _, r := range seq {
		table.Append(
			strconv.Itoa(r.FrameIdx),
			fmt.Sprintf("%.2fs", r.TRel),
			FormatTarget(r.Primary),
			fmt.Sprintf("(%.1f, %.1f)", r.Primary.Anchor.X, r.Primary.Anchor.Y),
			fmt.Sprintf("%.2f", r.PrimaryScore),
			strings.Join(r.Rationale, "; "),
		)
	}
	table.Render()
}

// FormatTarget renders a focus target compactly, e.g. "BALL", "PLAYER B-6",
// "ZONE", "GOAL".
func FormatTarget(t model.FocusTarget) string {
	if t.Type == model.FocusPlayer && t.TargetPlayerID != "" {
		return fmt.Sprintf("%s %s", t.Type, t.TargetPlayerID)
	}
	return string(t.Type)
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
