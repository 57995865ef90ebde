// Package bucket encodes and decodes the fixed bucketed schema for salary
// and monthly-hours form selections. Bucket widths are load-bearing:
// reconstruction on edit scans the same fixed bucket lists that produced
// the stored values, so the constants here must not drift.
package bucket

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

const (
	// SalaryBucketWidth is the CLP width of every closed salary bucket.
	SalaryBucketWidth = 10000
	// SalaryOpenMin is the lower bound of the top-open salary bucket.
	SalaryOpenMin = 300000
	// SalaryOpenValue is the wire value of the top-open salary bucket.
	SalaryOpenValue = "300000-plus"
)

// Option is a selectable form option: a wire value plus display label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SalaryBounds are the stored numeric bounds of a salary selection. A nil
// Max with Min set marks the open bucket; both nil means nothing chosen.
type SalaryBounds struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// EncodeSalary translates a salary bucket wire value into stored bounds.
// The empty value encodes to null bounds. Thousands-separator punctuation
// is stripped before parsing.
func EncodeSalary(value string) (SalaryBounds, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return SalaryBounds{}, nil
	}
	if value == SalaryOpenValue {
		min := SalaryOpenMin
		return SalaryBounds{Min: &min}, nil
	}

	parts := strings.SplitN(value, "-", 2)
	if len(parts) != 2 {
		return SalaryBounds{}, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("malformed salary bucket %q", value))
	}

	min, err := parseAmount(parts[0])
	if err != nil {
		return SalaryBounds{}, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, fmt.Sprintf("malformed salary bucket %q", value))
	}
	max, err := parseAmount(parts[1])
	if err != nil {
		return SalaryBounds{}, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, fmt.Sprintf("malformed salary bucket %q", value))
	}
	if max <= min {
		return SalaryBounds{}, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("inverted salary bucket %q", value))
	}

	return SalaryBounds{Min: &min, Max: &max}, nil
}

// DecodeSalary reconstructs the bucket wire value from stored bounds when a
// review is reopened for edit. A min at or above the open-bucket floor with
// no max decodes to the sentinel; absent bounds decode to the empty value.
func DecodeSalary(bounds SalaryBounds) string {
	if bounds.Min == nil {
		return ""
	}
	if bounds.Max == nil {
		if *bounds.Min >= SalaryOpenMin {
			return SalaryOpenValue
		}
		return ""
	}
	return fmt.Sprintf("%d-%d", *bounds.Min, *bounds.Max)
}

// SalaryOptions generates the form option list: thirty closed buckets of
// width 10 000 over [0, 300 000) plus the open top bucket, labelled in
// es-CL formatting.
func SalaryOptions() []Option {
	options := make([]Option, 0, SalaryOpenMin/SalaryBucketWidth+1)
	for min := 0; min < SalaryOpenMin; min += SalaryBucketWidth {
		max := min + SalaryBucketWidth
		options = append(options, Option{
			Value: fmt.Sprintf("%d-%d", min, max),
			Label: fmt.Sprintf("$%s - $%s", formatCLP(min), formatCLP(max)),
		})
	}
	options = append(options, Option{
		Value: SalaryOpenValue,
		Label: fmt.Sprintf("$%s o más", formatCLP(SalaryOpenMin)),
	})
	return options
}

// parseAmount parses a CLP amount, tolerating "10.000" style separators.
func parseAmount(raw string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative amount %q", raw)
	}
	return n, nil
}

// formatCLP renders an integer with dot thousands separators.
func formatCLP(n int) string {
	digits := strconv.Itoa(n)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return b.String()
}
