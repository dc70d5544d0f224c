// Package scoring turns a completed answer set into a raw score, a standard
// score on [0, 100] and a risk group. Every stage is a pure function of its
// input.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/stemsi/riskprofile-backend/internal/catalog"
)

var (
	ErrIncompleteAnswers  = errors.New("answers do not cover every question")
	ErrRawScoreOutOfRange = errors.New("raw score outside catalog bounds")
)

// Bounds is the closed range a raw score can take for a catalog.
type Bounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Result is the output of the full pipeline.
type Result struct {
	RawScore      int       `json:"raw_score"`
	StandardScore float64   `json:"standard_score"`
	RiskGroup     RiskGroup `json:"risk_group"`
}

// ScoreBounds sums each question's minimum and maximum option weight.
func ScoreBounds(cat *catalog.Catalog) Bounds {
	var b Bounds
	for _, q := range cat.Questions() {
		b.Min += q.MinWeight()
		b.Max += q.MaxWeight()
	}
	return b
}

// RawScore sums the weight of the chosen option of every question, in
// catalog order. A missing answer or an unknown label is an error.
func RawScore(cat *catalog.Catalog, answers map[string]string) (int, error) {
	total := 0
	for _, q := range cat.Questions() {
		label, ok := answers[q.Key()]
		if !ok {
			return 0, fmt.Errorf("%w: question %d unanswered", ErrIncompleteAnswers, q.ID)
		}
		w, err := q.Weight(label)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// StandardScore rescales raw linearly from bounds onto [ScaleMin, ScaleMax],
// rounded to two decimals. A catalog whose bounds coincide maps to ScaleMin.
func StandardScore(raw int, bounds Bounds) (float64, error) {
	if raw < bounds.Min || raw > bounds.Max {
		return 0, fmt.Errorf("%w: %d not in [%d, %d]", ErrRawScoreOutOfRange, raw, bounds.Min, bounds.Max)
	}
	if bounds.Max == bounds.Min {
		return ScaleMin, nil
	}
	span := float64(bounds.Max - bounds.Min)
	scaled := ScaleMin + float64(raw-bounds.Min)/span*(ScaleMax-ScaleMin)
	return math.Round(scaled*100) / 100, nil
}

// Pipeline binds a catalog and band table.
type Pipeline struct {
	catalog *catalog.Catalog
	bounds  Bounds
	bands   []Band
}

// NewPipeline validates bands and precomputes the catalog's raw bounds.
// A nil bands slice selects DefaultBands.
func NewPipeline(cat *catalog.Catalog, bands []Band) (*Pipeline, error) {
	if bands == nil {
		bands = DefaultBands
	}
	if err := ValidateBands(bands); err != nil {
		return nil, err
	}
	return &Pipeline{
		catalog: cat,
		bounds:  ScoreBounds(cat),
		bands:   append([]Band(nil), bands...),
	}, nil
}

// Bounds returns the raw score range of the pipeline's catalog.
func (p *Pipeline) Bounds() Bounds {
	return p.bounds
}

// Bands returns the band table in ascending order.
func (p *Pipeline) Bands() []Band {
	return append([]Band(nil), p.bands...)
}

// Describe returns the band entry for a group label.
func (p *Pipeline) Describe(group RiskGroup) (Band, bool) {
	for _, b := range p.bands {
		if b.Group == group {
			return b, true
		}
	}
	return Band{}, false
}

// Score runs all three stages. Any stage failure aborts scoring.
func (p *Pipeline) Score(answers map[string]string) (Result, error) {
	raw, err := RawScore(p.catalog, answers)
	if err != nil {
		return Result{}, fmt.Errorf("raw score: %w", err)
	}

	std, err := StandardScore(raw, p.bounds)
	if err != nil {
		return Result{}, fmt.Errorf("standard score: %w", err)
	}

	band, err := Classify(p.bands, std)
	if err != nil {
		return Result{}, fmt.Errorf("risk group: %w", err)
	}

	return Result{RawScore: raw, StandardScore: std, RiskGroup: band.Group}, nil
}
