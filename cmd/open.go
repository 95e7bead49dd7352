package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/config"
	"github.com/abhisek/fequiz/internal/logger"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/store"
)

// deps are the server-side collaborators shared by serve and the local
// maintenance commands.
type deps struct {
	bank     *catalog.Bank
	glossary *catalog.Glossary
	repo     store.ProgressRepo
	tracker  *mastery.Tracker
}

func (d *deps) Close() error {
	if d.repo == nil {
		return nil
	}
	return d.repo.Close()
}

// openDeps loads the datasets, opens the progress store and initializes the
// tracker. A missing or invalid glossary is logged and left nil.
func openDeps(ctx context.Context, cfg config.Config, log *logger.Logger) (*deps, error) {
	bank, err := catalog.LoadBank(cfg.QuestionsPath())
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	glossary, err := catalog.LoadGlossary(cfg.GlossaryPath())
	if err != nil {
		log.Warn("glossary unavailable", "path", cfg.GlossaryPath(), "error", err)
		glossary = nil
	}

	repo, err := openRepo(cfg)
	if err != nil {
		return nil, err
	}

	tracker := mastery.NewTracker(repo, bank, glossary, mastery.WithLogger(log))
	if err := tracker.Init(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("init progress: %w", err)
	}

	return &deps{bank: bank, glossary: glossary, repo: repo, tracker: tracker}, nil
}

func openRepo(cfg config.Config) (store.ProgressRepo, error) {
	path := cfg.ProgressPath()
	if cfg.Store == config.StoreSQLite {
		path = cfg.SQLitePath()
	}
	repo, err := store.Open(cfg.Store, path)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	return repo, nil
}

// cliLogger builds the logger for cfg.LogMode, falling back to a no-op
// logger.
func cliLogger(cfg config.Config) *logger.Logger {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return logger.Nop()
	}
	return log
}
