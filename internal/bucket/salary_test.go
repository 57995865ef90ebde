package bucket

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ayudapp/ayudapp-api/pkg/errors"
)

func TestEncodeSalaryClosedBucket(t *testing.T) {
	bounds, err := EncodeSalary("20000-30000")
	require.NoError(t, err)
	require.NotNil(t, bounds.Min)
	require.NotNil(t, bounds.Max)
	assert.Equal(t, 20000, *bounds.Min)
	assert.Equal(t, 30000, *bounds.Max)
}

func TestEncodeSalaryOpenBucket(t *testing.T) {
	bounds, err := EncodeSalary("300000-plus")
	require.NoError(t, err)
	require.NotNil(t, bounds.Min)
	assert.Equal(t, 300000, *bounds.Min)
	assert.Nil(t, bounds.Max)
}

func TestEncodeSalaryEmptySelection(t *testing.T) {
	bounds, err := EncodeSalary("")
	require.NoError(t, err)
	assert.Nil(t, bounds.Min)
	assert.Nil(t, bounds.Max)
}

func TestEncodeSalaryStripsThousandsSeparators(t *testing.T) {
	bounds, err := EncodeSalary("10.000-20.000")
	require.NoError(t, err)
	assert.Equal(t, 10000, *bounds.Min)
	assert.Equal(t, 20000, *bounds.Max)
}

func TestEncodeSalaryMalformed(t *testing.T) {
	for _, value := range []string{"abc", "10000", "x-y", "30000-20000", "10000-10000"} {
		_, err := EncodeSalary(value)
		require.Error(t, err, value)
		assert.True(t, appErrors.Is(err, appErrors.ErrInvalidInput), value)
	}
}

func TestDecodeSalary(t *testing.T) {
	min, max := 20000, 30000
	assert.Equal(t, "20000-30000", DecodeSalary(SalaryBounds{Min: &min, Max: &max}))

	open := 300000
	assert.Equal(t, "300000-plus", DecodeSalary(SalaryBounds{Min: &open}))

	assert.Equal(t, "", DecodeSalary(SalaryBounds{}))
}

func TestSalaryRoundTripAllGeneratedOptions(t *testing.T) {
	for _, opt := range SalaryOptions() {
		bounds, err := EncodeSalary(opt.Value)
		require.NoError(t, err, opt.Value)
		assert.Equal(t, opt.Value, DecodeSalary(bounds), opt.Value)

		// And the other direction: encode(decode(bounds)) == bounds.
		again, err := EncodeSalary(DecodeSalary(bounds))
		require.NoError(t, err)
		assert.Equal(t, bounds, again, opt.Value)
	}
}

func TestSalaryOptionsShape(t *testing.T) {
	options := SalaryOptions()
	require.Len(t, options, 31)
	assert.Equal(t, "0-10000", options[0].Value)
	assert.Equal(t, "$0 - $10.000", options[0].Label)
	assert.Equal(t, "290000-300000", options[29].Value)
	assert.Equal(t, "$290.000 - $300.000", options[29].Label)
	assert.Equal(t, SalaryOpenValue, options[30].Value)
	assert.Equal(t, "$300.000 o más", options[30].Label)

	// Contiguous fixed-width coverage of [0, 300000).
	for i := 0; i < 30; i++ {
		assert.Equal(t, fmt.Sprintf("%d-%d", i*SalaryBucketWidth, (i+1)*SalaryBucketWidth), options[i].Value)
	}
}
