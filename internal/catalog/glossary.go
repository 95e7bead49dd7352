package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

type glossaryFile struct {
	Version string `json:"version,omitempty"`
	Terms   []Term `json:"terms"`
}

// Glossary is the read-only term dictionary.
type Glossary struct {
	terms []Term
	byID  map[string]int
}

// LoadGlossary reads and validates the glossary dataset at path.
func LoadGlossary(path string) (*Glossary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glossary: %w", err)
	}
	g, err := ParseGlossary(raw)
	if err != nil {
		var verr *ValidationError
		if asValidation(err, &verr) {
			verr.Source = path
		}
		return nil, err
	}
	return g, nil
}

// ParseGlossary validates and decodes a glossary dataset.
func ParseGlossary(raw []byte) (*Glossary, error) {
	if err := validateDocument(glossarySchema, raw); err != nil {
		return nil, &ValidationError{Source: "glossary", Err: err}
	}
	var f glossaryFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, &ValidationError{Source: "glossary", Err: err}
	}
	if err := checkVersion(f.Version); err != nil {
		return nil, &ValidationError{Source: "glossary", Err: err}
	}

	g := &Glossary{terms: f.Terms, byID: make(map[string]int, len(f.Terms))}
	for i, t := range g.terms {
		if _, dup := g.byID[t.ID]; dup {
			return nil, &ValidationError{Source: "glossary", Err: fmt.Errorf("duplicate term id %q", t.ID)}
		}
		g.byID[t.ID] = i
	}
	return g, nil
}

// Len returns the number of terms.
func (g *Glossary) Len() int { return len(g.terms) }

// Term looks up a term by id.
func (g *Glossary) Term(id string) (Term, error) {
	i, ok := g.byID[id]
	if !ok {
		return Term{}, fmt.Errorf("%w: %s", ErrTermNotFound, id)
	}
	return g.terms[i], nil
}

// Resolve maps term ids to terms, skipping ids that do not resolve.
func (g *Glossary) Resolve(ids []string) []Term {
	out := make([]Term, 0, len(ids))
	for _, id := range ids {
		if i, ok := g.byID[id]; ok {
			out = append(out, g.terms[i])
		}
	}
	return out
}

// Search filters terms by category (empty matches all) and query. The query
// matches the term name case-insensitively, or the meaning and description as
// written.
func (g *Glossary) Search(category CategoryID, query string) []Term {
	lower := strings.ToLower(query)
	out := []Term{}
	for _, t := range g.terms {
		if category != "" && t.Category != category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.Term), lower) &&
			!strings.Contains(t.Meaning, query) &&
			!strings.Contains(t.Description, query) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func asValidation(err error, target **ValidationError) bool {
	return errors.As(err, target)
}
