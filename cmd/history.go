package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tikrip/internal/history"
)

var (
	flagHistLimit int
	flagHistClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent extractions",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistLimit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.Flags().BoolVar(&flagHistClear, "clear", false, "Delete all history entries")
}

func historyRun(cmd *cobra.Command, args []string) error {
	path, err := cfg.DatabasePath()
	if err != nil {
		return fmt.Errorf("resolving history path: %w", err)
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if flagHistClear {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	entries, err := store.Recent(flagHistLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	for _, e := range entries {
		desc := e.Description
		if r := []rune(desc); len(r) > 60 {
			desc = string(r[:57]) + "..."
		}
		fmt.Printf("%s  %-6s  @%s  %s\n", e.ExtractedAt.Format("2006-01-02 15:04"), e.Type, e.Author, desc)
		fmt.Printf("    %s\n", e.URL)
	}
	return nil
}
