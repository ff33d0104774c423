package gadget

import "strings"

// Polarity tells which direction of change is desirable for a metric.
type Polarity int

const (
	// Count metrics (number of gadgets) improve when they decrease.
	Count Polarity = iota
	// Quality metrics improve when their score increases.
	Quality
)

// Class is the visual classification of a metric cell.
type Class int

const (
	None Class = iota
	Neutral
	Improvement
	Regression
)

func (c Class) String() string {
	switch c {
	case Neutral:
		return "neutral"
	case Improvement:
		return "improvement"
	case Regression:
		return "regression"
	default:
		return "none"
	}
}

// PolarityOf derives the polarity of a metric category from its header.
func PolarityOf(header string) Polarity {
	if strings.Contains(strings.ToLower(header), "quality") {
		return Quality
	}
	return Count
}

// ClassifyDelta maps a delta to a class. Only the sign matters.
func ClassifyDelta(p Polarity, delta float64) Class {
	switch {
	case delta == 0:
		return Neutral
	case (p == Quality) == (delta > 0):
		return Improvement
	default:
		return Regression
	}
}

// Classify inspects a cell's text under the given column header. Cells
// without a delta are classified None; malformed deltas are reported.
func Classify(header, value string) (Class, error) {
	delta, ok, err := ExtractDelta(value)
	if err != nil {
		return None, err
	}
	if !ok {
		return None, nil
	}
	return ClassifyDelta(PolarityOf(header), delta), nil
}
