package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedMajor is the dataset major version this build understands.
const SupportedMajor = "v1"

// schemaDef is a named JSON schema definition.
type schemaDef struct {
	Name       string
	Definition map[string]any
}

var categoryEnum = []any{
	string(CategoryTechnology),
	string(CategoryManagement),
	string(CategoryStrategy),
}

var questionsSchema = schemaDef{
	Name: "questions",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"questions"},
		"properties": map[string]any{
			"version": map[string]any{"type": "string"},
			"categories": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "name"},
					"properties": map[string]any{
						"id":            map[string]any{"enum": categoryEnum},
						"name":          map[string]any{"type": "string"},
						"subcategories": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
			},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "category", "subcategory", "question", "choices", "correctAnswer", "explanation"},
					"properties": map[string]any{
						"id":           map[string]any{"type": "string", "minLength": 1},
						"category":     map[string]any{"enum": categoryEnum},
						"categoryName": map[string]any{"type": "string"},
						"subcategory":  map[string]any{"type": "string"},
						"question":     map[string]any{"type": "string", "minLength": 1},
						"choices": map[string]any{
							"type":     "array",
							"minItems": NumChoices,
							"maxItems": NumChoices,
							"items":    map[string]any{"type": "string"},
						},
						"correctAnswer": map[string]any{"type": "integer", "minimum": 0, "maximum": NumChoices - 1},
						"explanation":   map[string]any{"type": "string"},
						"relatedTerms":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"difficulty":    map[string]any{"enum": []any{"easy", "medium", "hard"}},
					},
				},
			},
		},
	},
}

var glossarySchema = schemaDef{
	Name: "glossary",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"terms"},
		"properties": map[string]any{
			"version": map[string]any{"type": "string"},
			"terms": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"id", "term", "meaning"},
					"properties": map[string]any{
						"id":          map[string]any{"type": "string", "minLength": 1},
						"term":        map[string]any{"type": "string", "minLength": 1},
						"meaning":     map[string]any{"type": "string"},
						"category":    map[string]any{"enum": categoryEnum},
						"description": map[string]any{"type": "string"},
						"examples":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
			},
		},
	},
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// validateDocument checks raw JSON against the schema.
func validateDocument(def schemaDef, raw []byte) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	compiled, err := compiledSchema(def)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", def.Name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compiledSchema(def schemaDef) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(def.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a plain decoded JSON value, so round-trip the Go map.
	defBytes, err := json.Marshal(def.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", def.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(def.Name, compiled)
	return compiled, nil
}

// checkVersion accepts an empty version (unversioned legacy datasets) or a
// semantic version whose major matches SupportedMajor. A leading "v" is optional.
func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	canonical := v
	if !strings.HasPrefix(canonical, "v") {
		canonical = "v" + canonical
	}
	if !semver.IsValid(canonical) {
		return fmt.Errorf("version %q is not a semantic version", v)
	}
	if major := semver.Major(canonical); major != SupportedMajor {
		return fmt.Errorf("dataset version %s is not supported (want %s.x.x)", v, SupportedMajor)
	}
	return nil
}
