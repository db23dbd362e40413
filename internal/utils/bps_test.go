// internal/utils/bps_test.go
package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaturatingAddUint64(t *testing.T) {
	assert.Equal(t, uint64(3), SaturatingAddUint64(1, 2))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAddUint64(math.MaxUint64, 1))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAddUint64(math.MaxUint64-5, 10))
	assert.Equal(t, uint64(math.MaxUint64), SaturatingAddUint64(math.MaxUint64, 0))
}

func TestSaturatingSubUint64(t *testing.T) {
	assert.Equal(t, uint64(1), SaturatingSubUint64(3, 2))
	assert.Equal(t, uint64(0), SaturatingSubUint64(2, 3))
	assert.Equal(t, uint64(0), SaturatingSubUint64(0, 1))
}

func TestSaturatingAddUint8(t *testing.T) {
	assert.Equal(t, uint8(11), SaturatingAddUint8(10, 1))
	assert.Equal(t, uint8(255), SaturatingAddUint8(255, 1))
	assert.Equal(t, uint8(255), SaturatingAddUint8(250, 10))
}

func TestCheckedMulDiv(t *testing.T) {
	got, err := CheckedMulDiv(1000, 6000, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), got)

	// 128-bit intermediate survives where 64-bit a*b would overflow
	got, err = CheckedMulDiv(math.MaxUint64, 5000, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64/2), got)

	// Quotient that does not fit in 64 bits
	_, err = CheckedMulDiv(math.MaxUint64, 3, 2)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	// Division by zero
	_, err = CheckedMulDiv(1, 1, 0)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	// Truncation, never rounding
	got, err = CheckedMulDiv(999, 1, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestSplitFeeExact(t *testing.T) {
	split, err := SplitFee(1000, 6000, 1500, 1500)
	require.NoError(t, err)

	assert.Equal(t, uint64(600), split.Creator)
	assert.Equal(t, uint64(150), split.Dao)
	assert.Equal(t, uint64(150), split.Validator)
	assert.Equal(t, uint64(100), split.Burn)
	assert.Equal(t, uint64(1000), split.Total())
}

func TestSplitFeeBurnAbsorbsRemainder(t *testing.T) {
	// 7 does not divide cleanly by any share; burn takes the slack.
	split, err := SplitFee(7, 6000, 1500, 1500)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), split.Creator)   // 7*6000/10000 = 4.2
	assert.Equal(t, uint64(1), split.Dao)       // 7*1500/10000 = 1.05
	assert.Equal(t, uint64(1), split.Validator) // 7*1500/10000 = 1.05
	assert.Equal(t, uint64(1), split.Burn)
	assert.Equal(t, uint64(7), split.Total())
}

func TestSplitFeeZero(t *testing.T) {
	split, err := SplitFee(0, 6000, 1500, 1500)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), split.Total())
}

func TestSplitFeeTotalInvariant(t *testing.T) {
	fees := []uint64{1, 3, 99, 10001, 123456789}
	for _, fee := range fees {
		split, err := SplitFee(fee, 6000, 1500, 1500)
		require.NoError(t, err)
		assert.Equal(t, fee, split.Total(), "fee %d must split losslessly", fee)
	}
}

func TestBpsAmount(t *testing.T) {
	got, err := BpsAmount(10000, 250)
	require.NoError(t, err)
	assert.Equal(t, uint64(250), got)

	got, err = BpsAmount(100, 10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got)
}

func TestBpsToPercentage(t *testing.T) {
	assert.Equal(t, 2.5, BpsToPercentage(250))
	assert.Equal(t, 100.0, BpsToPercentage(10000))
}
