package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "fequiz",
	Short: "Exam practice quiz",
	Long:  "fequiz serves a multiple-choice question bank over HTTP, tracks answer mastery, and ships a terminal quiz client.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("data-dir", "", "Directory holding questions.json and glossary.json (overrides FEQUIZ_DATA_DIR)")
	flags.String("store", "", "Progress store: file or sqlite (overrides FEQUIZ_STORE)")
	flags.String("db", "", "Path to SQLite database file (overrides FEQUIZ_DB)")
	flags.String("addr", "", "Listen address for serve (overrides FEQUIZ_ADDR)")
	flags.String("api", "", "API base URL for the terminal client (overrides FEQUIZ_API_BASE)")

	addPlayFlags(rootCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration with --flag (highest priority), then the
// FEQUIZ_* environment (and .env), then defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	return applyFlags(cmd, cfg)
}

func applyFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	if v, _ := cmd.Flags().GetString("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if v, _ := cmd.Flags().GetString("store"); v != "" {
		cfg.Store = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
		// --db alone implies the SQLite store.
		if !cmd.Flags().Changed("store") {
			cfg.Store = config.StoreSQLite
		}
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Addr = v
	}
	if v, _ := cmd.Flags().GetString("api"); v != "" {
		cfg.APIBase = v
	}
	return cfg, cfg.Validate()
}
