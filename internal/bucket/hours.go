package bucket

import (
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

const (
	// HoursBucketWidth is the width of every monthly-hours bucket.
	HoursBucketWidth = 5
	// HoursBucketCeiling bounds the covered range [0, 100).
	HoursBucketCeiling = 100
)

// HoursSelection is the raw form state for the monthly-hours field. When
// UseCustom is set the free-form value wins and the bucket is ignored.
type HoursSelection struct {
	Bucket    string `json:"bucket"`
	Custom    string `json:"custom"`
	UseCustom bool   `json:"use_custom"`
}

// HoursReconstruction maps a stored value back to form state: either the
// first bucket containing it, or a custom value when no bucket matches.
type HoursReconstruction struct {
	Bucket string `json:"bucket,omitempty"`
	Custom *int   `json:"custom,omitempty"`
}

// EncodeHours translates an hours selection into the stored integer: the
// floored bucket midpoint for a bucket choice, the literal value for a
// custom one. A nil result means nothing was chosen.
func EncodeHours(sel HoursSelection) (*int, error) {
	if sel.UseCustom {
		raw := strings.TrimSpace(sel.Custom)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("custom hours %q is not a non-negative integer", sel.Custom))
		}
		return &n, nil
	}

	raw := strings.TrimSpace(sel.Bucket)
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, "-") {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("malformed hours value %q", sel.Bucket))
		}
		return &n, nil
	}

	parts := strings.SplitN(raw, "-", 2)
	min, errMin := strconv.Atoi(strings.TrimSpace(parts[0]))
	max, errMax := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errMin != nil || errMax != nil || min < 0 || max <= min {
		return nil, appErrors.Clone(appErrors.ErrInvalidInput, fmt.Sprintf("malformed hours bucket %q", sel.Bucket))
	}

	mid := (min + max) / 2
	return &mid, nil
}

// ReconstructHours scans the fixed bucket list in ascending order and
// returns the first bucket [min, min+5) containing the stored value; when
// none matches the value is reported as custom. Bucket midpoints always
// land inside their generating bucket, so the common-case round trip holds.
func ReconstructHours(stored int) HoursReconstruction {
	for min := 0; min < HoursBucketCeiling; min += HoursBucketWidth {
		max := min + HoursBucketWidth
		if stored >= min && stored < max {
			return HoursReconstruction{Bucket: fmt.Sprintf("%d-%d", min, max)}
		}
	}
	custom := stored
	return HoursReconstruction{Custom: &custom}
}

// HoursOptions generates the form option list: width-5 buckets over [0, 100).
func HoursOptions() []Option {
	options := make([]Option, 0, HoursBucketCeiling/HoursBucketWidth)
	for min := 0; min < HoursBucketCeiling; min += HoursBucketWidth {
		max := min + HoursBucketWidth
		options = append(options, Option{
			Value: fmt.Sprintf("%d-%d", min, max),
			Label: fmt.Sprintf("%d - %d horas", min, max),
		})
	}
	return options
}
