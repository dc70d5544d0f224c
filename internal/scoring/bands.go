package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Reference scale of the standard score.
const (
	ScaleMin = 0.0
	ScaleMax = 100.0
)

// RiskGroup is the qualitative classification of a standard score.
type RiskGroup string

const (
	GroupConservative           RiskGroup = "Conservative"
	GroupModeratelyConservative RiskGroup = "Moderately Conservative"
	GroupModerate               RiskGroup = "Moderate"
	GroupModeratelyAggressive   RiskGroup = "Moderately Aggressive"
	GroupAggressive             RiskGroup = "Aggressive"
)

var (
	ErrStandardScoreOutOfRange = errors.New("standard score outside reference scale")
	ErrInvalidBands            = errors.New("invalid risk bands")
)

// Band is a labeled slice of the reference scale. A band covers
// [Lower, next band's Lower); the last band also includes ScaleMax.
type Band struct {
	Group       RiskGroup `json:"group"`
	Lower       float64   `json:"lower"`
	Description string    `json:"description"`
}

// DefaultBands splits the scale into five equal bands.
var DefaultBands = []Band{
	{
		Group:       GroupConservative,
		Lower:       0,
		Description: "Capital preservation comes first. Expect low volatility and accept modest long-term growth.",
	},
	{
		Group:       GroupModeratelyConservative,
		Lower:       20,
		Description: "Mostly stable holdings with a small growth sleeve. Short-term declines are tolerated only when small.",
	},
	{
		Group:       GroupModerate,
		Lower:       40,
		Description: "A balance of growth and stability. Moderate swings are acceptable in exchange for beating inflation.",
	},
	{
		Group:       GroupModeratelyAggressive,
		Lower:       60,
		Description: "Growth-oriented with meaningful equity exposure. Larger drawdowns are accepted for higher expected returns.",
	},
	{
		Group:       GroupAggressive,
		Lower:       80,
		Description: "Maximum growth. Comfortable with large, prolonged losses in pursuit of the highest long-term returns.",
	},
}

// ValidateBands checks that bands start at ScaleMin, are strictly ascending
// and all begin inside the scale, which makes them exhaustive and
// non-overlapping over [ScaleMin, ScaleMax].
func ValidateBands(bands []Band) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidBands)
	}
	if bands[0].Lower != ScaleMin {
		return fmt.Errorf("%w: first band starts at %v, want %v", ErrInvalidBands, bands[0].Lower, ScaleMin)
	}
	for i, b := range bands {
		if b.Group == "" {
			return fmt.Errorf("%w: band %d has no group", ErrInvalidBands, i)
		}
		if b.Lower >= ScaleMax {
			return fmt.Errorf("%w: band %q starts at or above %v", ErrInvalidBands, b.Group, ScaleMax)
		}
		if i > 0 && b.Lower <= bands[i-1].Lower {
			return fmt.Errorf("%w: band %q does not ascend", ErrInvalidBands, b.Group)
		}
	}
	return nil
}

// Classify returns the band containing score.
func Classify(bands []Band, score float64) (Band, error) {
	if math.IsNaN(score) || score < ScaleMin || score > ScaleMax {
		return Band{}, fmt.Errorf("%w: %v", ErrStandardScoreOutOfRange, score)
	}
	for i := len(bands) - 1; i >= 0; i-- {
		if score >= bands[i].Lower {
			return bands[i], nil
		}
	}
	return Band{}, fmt.Errorf("%w: %v below first band", ErrInvalidBands, score)
}
