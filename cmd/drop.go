package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tacticast/viewpoint/internal/storage"
	"github.com/tacticast/viewpoint/internal/tactic"
)

var dropCmd = &cobra.Command{
	Use:   "drop <hash-prefix>",
	Short: "Delete a stored tactic and its recommendations",
	Args:  cobra.ExactArgs(1),
	RunE:  runDrop,
}

func runDrop(cmd *cobra.Command, args []string) error {
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

	if err := db.DropTactic(t.Hash); err != nil {
		return fmt.Errorf("drop tactic: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Dropped tactic %s (%s)\n", tactic.ShortHash(t.Hash), t.TacticID)
	return nil
}
