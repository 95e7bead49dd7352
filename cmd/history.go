package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/mastery"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent answers from the local progress store",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		d, err := openDeps(cmd.Context(), cfg, cliLogger(cfg))
		if err != nil {
			return err
		}
		defer d.Close()

		items, err := d.tracker.History(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("read history: %w", err)
		}
		printHistory(cmd.OutOrStdout(), items)
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of entries to show (0 for all)")
}

func printHistory(w io.Writer, items []mastery.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No answers recorded yet.")
		return
	}
	for _, item := range items {
		mark := "✗"
		switch {
		case item.SelectedAnswer == mastery.TimeoutIndex:
			mark = "⏱"
		case item.IsCorrect:
			mark = "✓"
		}
		text := item.QuestionID + " (no longer in the question bank)"
		if item.Question != nil {
			text = fmt.Sprintf("[%s] %s", item.Question.CategoryName, item.Question.QuestionText)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", item.AnsweredAt.Local().Format(time.DateTime), mark, text)
	}
}
