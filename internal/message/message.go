// Package message assembles the multi-line text blocks sent to players.
package message

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Section is a block of lines, optionally headed by a title.
type Section struct {
	Title string
	Lines []string
}

func (s Section) empty() bool {
	for _, l := range s.Lines {
		if l != "" {
			return false
		}
	}
	return true
}

// Builder composes sections in order. Sections without content are dropped
// when rendering, so callers can add them unconditionally.
type Builder struct {
	sections []Section
}

// Lines appends an untitled section.
func (b *Builder) Lines(lines ...string) *Builder {
	return b.Section("", lines...)
}

// Section appends a titled section.
func (b *Builder) Section(title string, lines ...string) *Builder {
	b.sections = append(b.sections, Section{Title: title, Lines: lines})
	return b
}

// Empty reports whether rendering would produce no text.
func (b *Builder) Empty() bool {
	for _, s := range b.sections {
		if !s.empty() {
			return false
		}
	}
	return true
}

func (b *Builder) String() string {
	blocks := make([]string, 0, len(b.sections))
	for _, s := range b.sections {
		if s.empty() {
			continue
		}
		var sb strings.Builder
		if s.Title != "" {
			sb.WriteString("▒ ")
			sb.WriteString(s.Title)
			sb.WriteString(" ▒\n")
		}
		sb.WriteString(strings.Join(nonEmpty(s.Lines), "\n"))
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n\n")
}

func nonEmpty(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// FormatFloat renders v with the fewest digits needed and at least one
// decimal: 2 -> "2.0", 1.25 -> "1.25".
func FormatFloat(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.0"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatCount abbreviates large values: 999 -> "999", 1234 -> "1.2K",
// 2500000 -> "2.5M". Fractional values below 1000 keep FormatFloat output.
func FormatCount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1000:
		return fmt.Sprintf("%.1fK", v/1000)
	case v == math.Trunc(v):
		return strconv.FormatInt(int64(v), 10)
	default:
		return FormatFloat(v)
	}
}

// Round rounds v to the given number of decimals, half away from zero.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
