package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/catalog"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the question and glossary datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		out := cmd.OutOrStdout()

		bank, err := catalog.LoadBank(cfg.QuestionsPath())
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}
		version := bank.Version()
		if version == "" {
			version = "unversioned"
		}
		fmt.Fprintf(out, "%s: %d questions (%s)\n", cfg.QuestionsPath(), bank.Len(), version)
		for _, c := range bank.Categories() {
			n := len(bank.Filter(catalog.Filter{Category: c.ID}))
			fmt.Fprintf(out, "  %-12s %d\n", c.Name, n)
		}

		glossary, err := catalog.LoadGlossary(cfg.GlossaryPath())
		if err != nil {
			return fmt.Errorf("load glossary: %w", err)
		}
		fmt.Fprintf(out, "%s: %d terms\n", cfg.GlossaryPath(), glossary.Len())

		if dangling := danglingTerms(bank, glossary); len(dangling) > 0 {
			fmt.Fprintf(out, "warning: %d related term references do not resolve\n", len(dangling))
			for _, ref := range dangling {
				fmt.Fprintf(out, "  %s\n", ref)
			}
		}
		return nil
	},
}

// danglingTerms lists "questionID -> termID" for related terms missing from
// the glossary. They are allowed but usually a dataset mistake.
func danglingTerms(bank *catalog.Bank, glossary *catalog.Glossary) []string {
	var out []string
	for _, q := range bank.All() {
		for _, id := range q.RelatedTerms {
			if _, err := glossary.Term(id); err != nil {
				out = append(out, q.ID+" -> "+id)
			}
		}
	}
	return out
}
