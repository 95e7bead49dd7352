package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/fequiz/internal/catalog"
	"github.com/abhisek/fequiz/internal/mastery"
	"github.com/abhisek/fequiz/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Answer questions straight from the dataset (no server, no progress)",
	Long: `Answer questions from questions.json in a plain line-based prompt.

This is a stateless tool for checking dataset content: nothing is recorded and
no server is needed. Use --id to preview a single question.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().Int("count", session.DefaultCount, "Number of questions (0 for all)")
	previewCmd.Flags().String("category", "", "Restrict to one category")
	previewCmd.Flags().String("id", "", "Preview a single question by id")
	previewCmd.Flags().Bool("shuffle", false, "Shuffle answer choices")
}

func runPreview(cmd *cobra.Command, args []string) error {
	count, _ := cmd.Flags().GetInt("count")
	category, _ := cmd.Flags().GetString("category")
	id, _ := cmd.Flags().GetString("id")
	shuffle, _ := cmd.Flags().GetBool("shuffle")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	bank, err := catalog.LoadBank(cfg.QuestionsPath())
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	// The glossary only decorates explanations here.
	glossary, _ := catalog.LoadGlossary(cfg.GlossaryPath())

	sc := session.Config{
		Mode:     session.ModeNormal,
		Category: catalog.CategoryID(category),
		Count:    count,
		Shuffle:  shuffle,
	}
	if sc.Category != "" && !sc.Category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	if id != "" {
		sc.Mode = session.ModeSingle
		sc.QuestionID = id
	}

	local := newOfflineBank(bank, glossary, nil)
	s := session.New(sc, local, local)
	return practice(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
}

// practice runs s to completion on a line-based prompt.
func practice(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	if s.Phase() == session.PhaseEmpty {
		fmt.Fprintln(out, s.EmptyMessage())
		return nil
	}

	scanner := bufio.NewScanner(in)
	for s.Phase() == session.PhasePresenting {
		item := s.Current()
		fmt.Fprintf(out, "── Question %d/%d ──\n", s.Index()+1, s.Len())
		fmt.Fprintf(out, "[%s / %s]\n", item.Question.CategoryName, item.Question.Subcategory)
		fmt.Fprintln(out, item.Question.Text)
		for i, c := range item.Choices {
			fmt.Fprintf(out, "  %d) %s\n", i+1, c)
		}

		fb, err := askUntilAnswered(ctx, s, scanner, out)
		if err != nil {
			return err
		}
		if fb == nil {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}

		if fb.Result.IsCorrect {
			fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
		} else {
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %d) %s\n",
				fb.CorrectPosition+1, item.Choices[fb.CorrectPosition])
		}
		if fb.Result.Explanation != "" {
			fmt.Fprintf(out, "Explanation: %s\n", fb.Result.Explanation)
		}
		for _, t := range fb.Result.RelatedTerms {
			fmt.Fprintf(out, "  • %s: %s\n", t.Term, t.Meaning)
		}
		fmt.Fprintln(out)

		if err := s.Next(); err != nil {
			return err
		}
	}

	sum := s.Summary()
	fmt.Fprintf(out, "── Summary: %d/%d correct (%d%%) ──\n", sum.Correct, sum.Total, sum.Percentage)
	return nil
}

// askUntilAnswered prompts until a valid choice is submitted. It returns nil
// feedback when input runs out.
func askUntilAnswered(ctx context.Context, s *session.Session, scanner *bufio.Scanner, out io.Writer) (*session.Feedback, error) {
	for {
		fmt.Fprint(out, "\nYour answer (1-4): ")
		if !scanner.Scan() {
			return nil, scanner.Err()
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err != nil || s.Select(n-1) != nil {
			fmt.Fprintln(out, "Enter a number from 1 to 4.")
			continue
		}
		return s.Submit(ctx)
	}
}

// offlineBank serves and grades questions directly from the dataset without
// recording anything.
type offlineBank struct {
	bank     *catalog.Bank
	glossary *catalog.Glossary
	rng      *rand.Rand
}

func newOfflineBank(bank *catalog.Bank, glossary *catalog.Glossary, rng *rand.Rand) *offlineBank {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &offlineBank{bank: bank, glossary: glossary, rng: rng}
}

func (o *offlineBank) Random(_ context.Context, category catalog.CategoryID, count int) ([]catalog.PublicQuestion, error) {
	return catalog.PublicQuestions(o.bank.Random(o.rng, category, count)), nil
}

// Weak is always empty: nothing is tracked offline.
func (o *offlineBank) Weak(context.Context) ([]catalog.PublicQuestion, error) {
	return []catalog.PublicQuestion{}, nil
}

func (o *offlineBank) Question(_ context.Context, id string) (catalog.PublicQuestion, error) {
	q, err := o.bank.Question(id)
	if err != nil {
		return catalog.PublicQuestion{}, err
	}
	return q.Public(), nil
}

func (o *offlineBank) Submit(_ context.Context, questionID string, ans mastery.Answer) (*mastery.Result, error) {
	if err := ans.Validate(); err != nil {
		return nil, err
	}
	q, err := o.bank.Question(questionID)
	if err != nil {
		return nil, err
	}
	res := &mastery.Result{
		IsCorrect:     !ans.IsTimeout() && ans.Index() == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		RelatedTerms:  []catalog.Term{},
	}
	if o.glossary != nil {
		res.RelatedTerms = o.glossary.Resolve(q.RelatedTerms)
	}
	return res, nil
}
