package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/app"
	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/client"
	"github.com/abhisek/fequiz/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start the terminal quiz client",
	Long: `Start the terminal quiz client against a running fequiz server.

With --category or --weak the quiz starts right away; otherwise the home menu
opens. --count, --shuffle and --timer apply to every quiz started from the menu.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().Int("count", session.DefaultCount, "Questions per quiz (0 for all)")
	cmd.Flags().Bool("shuffle", false, "Shuffle answer choices")
	cmd.Flags().Int("timer", 0, "Seconds per question (0 disables the countdown)")
	cmd.Flags().String("category", "", "Start a quiz in this category: technology, management or strategy")
	cmd.Flags().Bool("weak", false, "Start a quiz over the weak questions")
}

// playOptions turns the play flags into app options.
func playOptions(cmd *cobra.Command) (app.Options, error) {
	count, _ := cmd.Flags().GetInt("count")
	shuffle, _ := cmd.Flags().GetBool("shuffle")
	timer, _ := cmd.Flags().GetInt("timer")
	category, _ := cmd.Flags().GetString("category")
	weak, _ := cmd.Flags().GetBool("weak")

	if count < 0 {
		return app.Options{}, fmt.Errorf("--count must not be negative, got %d", count)
	}
	if timer < 0 {
		return app.Options{}, fmt.Errorf("--timer must not be negative, got %d", timer)
	}
	cat := catalog.CategoryID(category)
	if cat != "" && !cat.Valid() {
		return app.Options{}, fmt.Errorf("unknown category %q", category)
	}
	if weak && cat != "" {
		return app.Options{}, fmt.Errorf("--weak and --category are mutually exclusive")
	}

	defaults := session.Config{
		Mode:     session.ModeNormal,
		Category: cat,
		Count:    count,
		Shuffle:  shuffle,
		Timer:    time.Duration(timer) * time.Second,
	}
	if weak {
		defaults.Mode = session.ModeWeak
	}
	return app.Options{
		Defaults:  defaults,
		StartQuiz: weak || cat != "",
	}, nil
}

func runPlay(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	opts, err := playOptions(cmd)
	if err != nil {
		return err
	}
	opts.Backend = client.New(cfg.APIBase)
	return app.Run(opts)
}
