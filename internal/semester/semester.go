// Package semester generates the bounded, ordered set of valid semester
// labels ("2024-1", "2024-2") used for form options and validation. Both
// sides must agree, so generation is deterministic for fixed bounds.
package semester

import (
	"fmt"
	"strconv"
	"strings"
)

// Sequence is the inclusive [StartYear, EndYear] semester label range.
type Sequence struct {
	startYear int
	endYear   int
	labels    []string
	valid     map[string]struct{}
}

// NewSequence builds the sequence for the given bounds. It fails when
// endYear precedes startYear.
func NewSequence(startYear, endYear int) (*Sequence, error) {
	if endYear < startYear {
		return nil, fmt.Errorf("invalid semester range: end year %d precedes start year %d", endYear, startYear)
	}

	labels := make([]string, 0, 2*(endYear-startYear+1))
	valid := make(map[string]struct{}, cap(labels))
	for year := startYear; year <= endYear; year++ {
		for half := 1; half <= 2; half++ {
			label := Label(year, half)
			labels = append(labels, label)
			valid[label] = struct{}{}
		}
	}

	return &Sequence{
		startYear: startYear,
		endYear:   endYear,
		labels:    labels,
		valid:     valid,
	}, nil
}

// Label formats a semester label from its parts.
func Label(year, half int) string {
	return fmt.Sprintf("%d-%d", year, half)
}

// Labels returns the ascending sequence: half 1 before half 2 within each
// year. The returned slice is a copy.
func (s *Sequence) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// LabelsDescending returns the most-recent-first view of Labels.
func (s *Sequence) LabelsDescending() []string {
	out := make([]string, len(s.labels))
	for i, label := range s.labels {
		out[len(s.labels)-1-i] = label
	}
	return out
}

// IsValid reports whether label belongs to the generated sequence.
func (s *Sequence) IsValid(label string) bool {
	_, ok := s.valid[label]
	return ok
}

// Parse splits a label into (year, half), validating the format but not
// sequence membership.
func Parse(label string) (year, half int, err error) {
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed semester label %q", label)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed semester year in %q", label)
	}
	half, err = strconv.Atoi(parts[1])
	if err != nil || (half != 1 && half != 2) {
		return 0, 0, fmt.Errorf("malformed semester half in %q", label)
	}
	return year, half, nil
}
