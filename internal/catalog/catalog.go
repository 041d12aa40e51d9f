// Package catalog holds the fixed, ordered question set and the story text
// every participant is given.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category groups questions on the questions page
type Category string

const (
	CategorySpontaneous   Category = "spontaneous"
	CategoryComprehension Category = "comprehension"
	CategoryMentalState   Category = "mental_state"
)

// Label is the section heading shown above a run of questions of this category
func (c Category) Label() string {
	switch c {
	case CategorySpontaneous:
		return "Story summary"
	case CategoryMentalState:
		return "Characters' mental states"
	case CategoryComprehension:
		return "Story comprehension"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategorySpontaneous, CategoryComprehension, CategoryMentalState:
		return true
	}
	return false
}

// QuestionDefinition is one open-response question
type QuestionDefinition struct {
	ID       string   `yaml:"id"`
	Category Category `yaml:"category"`
	Prompt   string   `yaml:"prompt"`
	// Samples are canned answers used only by the synthetic data generator
	Samples []string `yaml:"samples,omitempty"`
}

// Story is the text read on the story page
type Story struct {
	Title string `yaml:"title"`
	Text  string `yaml:"text"`
}

// Catalog is the immutable question set for a deployment
type Catalog struct {
	Story     Story                `yaml:"story"`
	Questions []QuestionDefinition `yaml:"questions"`
}

var (
	ErrDuplicateID     = errors.New("duplicate question id")
	ErrInvalidQuestion = errors.New("invalid question definition")
)

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file, or returns the built-in catalog when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// New builds a catalog from definitions, validating ids and categories
func New(story Story, questions ...QuestionDefinition) (*Catalog, error) {
	c := &Catalog{Story: story, Questions: append([]QuestionDefinition(nil), questions...)}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that ids are non-empty and unique and categories are known
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Questions))
	for i, q := range c.Questions {
		id := strings.TrimSpace(q.ID)
		if id == "" {
			return fmt.Errorf("%w: question %d has no id", ErrInvalidQuestion, i+1)
		}
		if id != q.ID {
			return fmt.Errorf("%w: id %q has surrounding whitespace", ErrInvalidQuestion, q.ID)
		}
		if !q.Category.Valid() {
			return fmt.Errorf("%w: question %s has unknown category %q", ErrInvalidQuestion, q.ID, q.Category)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

// Len returns the number of questions
func (c *Catalog) Len() int {
	return len(c.Questions)
}

// IDs returns question ids in catalog order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.Questions))
	for i, q := range c.Questions {
		ids[i] = q.ID
	}
	return ids
}

// Lookup finds a question by id
func (c *Catalog) Lookup(id string) (QuestionDefinition, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return QuestionDefinition{}, false
}

// Section is a run of consecutive questions sharing a category
type Section struct {
	Category  Category
	Label     string
	Questions []NumberedQuestion
}

// NumberedQuestion pairs a question with its 1-based position in the catalog
type NumberedQuestion struct {
	Number int
	QuestionDefinition
}

// Sections groups consecutive questions by category, keeping catalog order
func (c *Catalog) Sections() []Section {
	var sections []Section
	for i, q := range c.Questions {
		if len(sections) == 0 || sections[len(sections)-1].Category != q.Category {
			sections = append(sections, Section{Category: q.Category, Label: q.Category.Label()})
		}
		last := &sections[len(sections)-1]
		last.Questions = append(last.Questions, NumberedQuestion{Number: i + 1, QuestionDefinition: q})
	}
	return sections
}
