package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer statistics from the local progress store",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		d, err := openDeps(cmd.Context(), cfg, cliLogger(cfg))
		if err != nil {
			return err
		}
		defer d.Close()

		sum, err := d.tracker.Summary(cmd.Context())
		if err != nil {
			return fmt.Errorf("read progress: %w", err)
		}
		printSummary(cmd.OutOrStdout(), sum, d.bank.Categories())
		return nil
	},
}

func printSummary(w io.Writer, sum *mastery.Summary, categories []catalog.Category) {
	fmt.Fprintf(w, "Answered:      %d\n", sum.TotalAttempts)
	fmt.Fprintf(w, "Correct:       %d\n", sum.TotalCorrect)
	fmt.Fprintf(w, "Correct rate:  %.1f%%\n", sum.OverallCorrectRate)
	fmt.Fprintf(w, "Weak:          %d\n", sum.WeakQuestionsCount)
	fmt.Fprintln(w)

	names := make(map[catalog.CategoryID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for _, id := range catalog.CategoryIDs {
		cs := sum.CategoryStats[id]
		name := names[id]
		if name == "" {
			name = id.Label()
		}
		last := "never"
		if cs.LastStudiedAt != nil {
			last = cs.LastStudiedAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%-12s %4d/%-4d  last studied %s\n", name, cs.CorrectCount, cs.TotalAttempts, last)
	}
}
