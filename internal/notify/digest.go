package notify

import (
	"fmt"
	"strings"
)

// Digest summarises one report run for a chat message.
type Digest struct {
	RunID      string
	Report     string
	Sheet      string
	ExtraFlags string
	Benchmarks []string
	Failures   []string
	Improved   int
	Regressed  int
	Neutral    int
}

// Headline is the one-line plain text form of the digest.
func (d Digest) Headline() string {
	return fmt.Sprintf("Gadget report %q: %d benchmark(s), %d improvement(s), %d regression(s)",
		d.Sheet, len(d.Benchmarks), d.Improved, d.Regressed)
}

// color maps the outcome to a Slack attachment colour.
func (d Digest) color() string {
	switch {
	case len(d.Failures) > 0:
		return "danger"
	case d.Regressed > 0:
		return "warning"
	default:
		return "good"
	}
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
