package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

func TestEncodeHoursBucketMidpoint(t *testing.T) {
	got, err := EncodeHours(HoursSelection{Bucket: "5-10"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)

	got, err = EncodeHours(HoursSelection{Bucket: "0-5"})
	require.NoError(t, err)
	assert.Equal(t, 2, *got)
}

func TestEncodeHoursPlainValue(t *testing.T) {
	got, err := EncodeHours(HoursSelection{Bucket: "12"})
	require.NoError(t, err)
	assert.Equal(t, 12, *got)
}

func TestEncodeHoursCustomValue(t *testing.T) {
	got, err := EncodeHours(HoursSelection{Custom: "37", UseCustom: true})
	require.NoError(t, err)
	assert.Equal(t, 37, *got)
}

func TestEncodeHoursCustomTakesPrecedenceOverBucket(t *testing.T) {
	got, err := EncodeHours(HoursSelection{Bucket: "5-10", Custom: "42", UseCustom: true})
	require.NoError(t, err)
	assert.Equal(t, 42, *got)
}

func TestEncodeHoursNothingChosen(t *testing.T) {
	got, err := EncodeHours(HoursSelection{})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = EncodeHours(HoursSelection{UseCustom: true})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEncodeHoursInvalidCustom(t *testing.T) {
	for _, raw := range []string{"abc", "-4", "3.5"} {
		_, err := EncodeHours(HoursSelection{Custom: raw, UseCustom: true})
		require.Error(t, err, raw)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidInput), raw)
	}
}

func TestEncodeHoursMalformedBucket(t *testing.T) {
	for _, raw := range []string{"10-5", "a-b", "5-5"} {
		_, err := EncodeHours(HoursSelection{Bucket: raw})
		assert.Error(t, err, raw)
	}
}

func TestReconstructHoursBucketRoundTrip(t *testing.T) {
	for _, opt := range HoursOptions() {
		encoded, err := EncodeHours(HoursSelection{Bucket: opt.Value})
		require.NoError(t, err, opt.Value)
		require.NotNil(t, encoded)

		rec := ReconstructHours(*encoded)
		assert.Equal(t, opt.Value, rec.Bucket, "midpoint of %s must map back to it", opt.Value)
		assert.Nil(t, rec.Custom)
	}
}

func TestReconstructHoursCustomFallback(t *testing.T) {
	rec := ReconstructHours(120)
	assert.Empty(t, rec.Bucket)
	require.NotNil(t, rec.Custom)
	assert.Equal(t, 120, *rec.Custom)
}

func TestHoursOptionsShape(t *testing.T) {
	options := HoursOptions()
	require.Len(t, options, 20)
	assert.Equal(t, "0-5", options[0].Value)
	assert.Equal(t, "0 - 5 horas", options[0].Label)
	assert.Equal(t, "95-100", options[19].Value)
}
