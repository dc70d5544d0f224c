// Package catalog holds the immutable, ordered question bank shared by every
// assessment session.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultBank []byte

var (
	ErrOutOfRange   = errors.New("question index out of range")
	ErrInvalidBank  = errors.New("invalid question bank")
	ErrUnknownLabel = errors.New("unknown option label")
)

// Option is one labeled choice of a question. Weight is the option's
// contribution to the raw risk score and is never sent to clients.
type Option struct {
	Label  string `yaml:"label" json:"label"`
	Text   string `yaml:"text" json:"text"`
	Weight int    `yaml:"weight" json:"-"`
}

// Question is a single multiple-choice item.
type Question struct {
	ID      int      `yaml:"id" json:"id"`
	Text    string   `yaml:"text" json:"text"`
	Options []Option `yaml:"options" json:"options"`
}

// Key returns the answer-map key for the question.
func (q Question) Key() string {
	return strconv.Itoa(q.ID)
}

// Option looks up an option by label.
func (q Question) Option(label string) (Option, bool) {
	for _, o := range q.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}

// Weight returns the weight of the option with the given label.
func (q Question) Weight(label string) (int, error) {
	o, ok := q.Option(label)
	if !ok {
		return 0, fmt.Errorf("%w %q for question %d", ErrUnknownLabel, label, q.ID)
	}
	return o.Weight, nil
}

// MinWeight returns the smallest option weight of the question.
func (q Question) MinWeight() int {
	lo := q.Options[0].Weight
	for _, o := range q.Options[1:] {
		lo = min(lo, o.Weight)
	}
	return lo
}

// MaxWeight returns the largest option weight of the question.
func (q Question) MaxWeight() int {
	hi := q.Options[0].Weight
	for _, o := range q.Options[1:] {
		hi = max(hi, o.Weight)
	}
	return hi
}

// Catalog is an ordered, read-only list of questions. It is safe for
// concurrent readers.
type Catalog struct {
	questions []Question
}

type bankFile struct {
	Questions []Question `yaml:"questions"`
}

// New validates the questions and builds a catalog from a private copy.
func New(questions []Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions", ErrInvalidBank)
	}

	seen := make(map[int]struct{}, len(questions))
	qs := make([]Question, len(questions))
	for i, q := range questions {
		if q.ID <= 0 {
			return nil, fmt.Errorf("%w: question at position %d has non-positive id %d", ErrInvalidBank, i, q.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate question id %d", ErrInvalidBank, q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrInvalidBank, q.ID)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("%w: question %d needs at least 2 options", ErrInvalidBank, q.ID)
		}

		labels := make(map[string]struct{}, len(q.Options))
		for _, o := range q.Options {
			if !IsLabel(o.Label) {
				return nil, fmt.Errorf("%w: question %d has malformed label %q", ErrInvalidBank, q.ID, o.Label)
			}
			if _, dup := labels[o.Label]; dup {
				return nil, fmt.Errorf("%w: question %d repeats label %q", ErrInvalidBank, q.ID, o.Label)
			}
			labels[o.Label] = struct{}{}
		}

		q.Options = append([]Option(nil), q.Options...)
		qs[i] = q
	}

	return &Catalog{questions: qs}, nil
}

// Parse decodes a YAML question bank.
func Parse(data []byte) (*Catalog, error) {
	var f bankFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}
	return New(f.Questions)
}

// Load reads a YAML question bank from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}
	return Parse(data)
}

// Default returns the built-in question bank.
func Default() *Catalog {
	c, err := Parse(defaultBank)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in bank is invalid: %v", err))
	}
	return c
}

// LoadOrDefault loads path when set, otherwise returns the built-in bank.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Get returns the question at index.
func (c *Catalog) Get(index int) (Question, error) {
	if index < 0 || index >= len(c.questions) {
		return Question{}, fmt.Errorf("%w: %d (length %d)", ErrOutOfRange, index, len(c.questions))
	}
	return c.questions[index], nil
}

// Len returns the number of questions.
func (c *Catalog) Len() int {
	return len(c.questions)
}

// Questions returns the questions in catalog order. Callers must not modify
// the options of the returned questions.
func (c *Catalog) Questions() []Question {
	return append([]Question(nil), c.questions...)
}

// ByKey finds a question by its answer-map key.
func (c *Catalog) ByKey(key string) (Question, bool) {
	for _, q := range c.questions {
		if q.Key() == key {
			return q, true
		}
	}
	return Question{}, false
}

// IsLabel reports whether s is a well-formed option label: one lowercase letter.
func IsLabel(s string) bool {
	return len(s) == 1 && s[0] >= 'a' && s[0] <= 'z'
}
