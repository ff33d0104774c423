package gadget

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedDelta is returned when the text between the parentheses of a
// metric cell is not a number.
var ErrMalformedDelta = errors.New("malformed delta")

// Cell is a metric value as emitted by the comparator: an absolute value and,
// for variant columns, the signed difference to the baseline.
type Cell struct {
	Raw       string
	Magnitude float64
	Delta     float64
	HasDelta  bool
}

// ParseCell splits "<value> (<delta>)" into its numeric parts.
// Cells without parentheses carry no delta and keep their raw text.
func ParseCell(s string) (Cell, error) {
	raw := strings.TrimSpace(s)
	c := Cell{Raw: raw}

	deltaText, ok := deltaSubstring(raw)
	if !ok {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			c.Magnitude = v
		}
		return c, nil
	}

	delta, err := strconv.ParseFloat(strings.TrimSpace(deltaText), 64)
	if err != nil {
		return Cell{}, fmt.Errorf("%w: %q in cell %q", ErrMalformedDelta, deltaText, raw)
	}

	magText := strings.TrimSpace(raw[:strings.Index(raw, "(")])
	if magText != "" {
		mag, err := strconv.ParseFloat(magText, 64)
		if err != nil {
			return Cell{}, fmt.Errorf("malformed value %q in cell %q: %w", magText, raw, err)
		}
		c.Magnitude = mag
	}

	c.Delta = delta
	c.HasDelta = true
	return c, nil
}

// String renders the cell the way the comparator formats it.
func (c Cell) String() string {
	if !c.HasDelta {
		return c.Raw
	}
	return fmt.Sprintf("%.3f (%s)", c.Magnitude, FormatDelta(c.Delta))
}

// FormatDelta renders a delta with an explicit sign and three decimals.
// Exactly zero is rendered without a sign.
func FormatDelta(x float64) string {
	switch {
	case x > 0:
		return "+" + strconv.FormatFloat(x, 'f', 3, 64)
	case x < 0:
		return strconv.FormatFloat(x, 'f', 3, 64)
	default:
		// covers -0 as well
		return strconv.FormatFloat(math.Abs(x), 'f', 3, 64)
	}
}

// ExtractDelta returns the parsed delta of a formatted cell. ok is false when
// the text has no parenthesised delta.
func ExtractDelta(s string) (delta float64, ok bool, err error) {
	text, found := deltaSubstring(s)
	if !found {
		return 0, false, nil
	}
	delta, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, true, fmt.Errorf("%w: %q in cell %q", ErrMalformedDelta, text, s)
	}
	return delta, true, nil
}

func deltaSubstring(s string) (string, bool) {
	open := strings.Index(s, "(")
	if open < 0 {
		return "", false
	}
	closing := strings.Index(s, ")")
	if closing < open {
		return "", false
	}
	return s[open+1 : closing], true
}
