package screen

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/session"
	"github.com/abhisek/fequiz/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is an optional interface for screens that show a status
// string on the right of the header, such as a running score.
type StatusProvider interface {
	Status() string
}

// Backend is the quiz server as seen by the screens. The HTTP client
// implements it.
type Backend interface {
	session.Source
	session.Submitter
	Categories(ctx context.Context) ([]catalog.Category, error)
	QuestionList(ctx context.Context, f catalog.Filter) ([]mastery.ListedQuestion, error)
	Progress(ctx context.Context) (*mastery.Summary, error)
	History(ctx context.Context, limit int) ([]mastery.HistoryItem, error)
	Glossary(ctx context.Context, category catalog.CategoryID, search string) ([]catalog.Term, error)
}
