package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/storage"
	"github.com/tacticast/viewpoint/internal/tactic"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored tactics",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	tactics, err := db.ListTactics()
	if err != nil {
		return fmt.Errorf("list tactics: %w", err)
	}
	if len(tactics) == 0 {
		fmt.Fprintln(os.Stdout, "No tactics stored yet. Run 'viewpoint recommend <tactic.json>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-14s  %-20s  %-9s  %7s  %6s  %-3s  %s\n",
		"HASH", "TACTIC_ID", "PITCH", "PLAYERS", "FRAMES", "RUN", "LOADED_AT")
	fmt.Fprintf(os.Stdout, "%-14s  %-20s  %-9s  %7s  %6s  %-3s  %s\n",
		"──────────────", "────────────────────", "─────────", "───────", "──────", "───", "─────────")
	for _, t := range tactics {
		ran := "no"
		if t.HasRun {
			ran = "yes"
		}
		pitch := fmt.Sprintf("%.0fx%.0f", t.PitchLength, t.PitchWidth)
		fmt.Fprintf(os.Stdout, "%-14s  %-20s  %-9s  %7d  %6d  %-3s  %s\n",
			tactic.ShortHash(t.Hash), t.TacticID, pitch, t.NumPlayers, t.NumFrames, ran, t.LoadedAt)
	}
	return nil
}
