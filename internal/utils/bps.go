// internal/utils/bps.go
package utils

import (
	"errors"
	"math"
	"math/bits"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

var ErrArithmeticOverflow = errors.New("arithmetic overflow")

// SaturatingAddUint64 clamps at the maximum instead of wrapping. Counters
// and accumulators use this so extreme volume degrades gracefully.
func SaturatingAddUint64(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// SaturatingSubUint64 floors at zero instead of wrapping.
func SaturatingSubUint64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}

// SaturatingAddUint8 clamps at 255.
func SaturatingAddUint8(a, b uint8) uint8 {
	if a > math.MaxUint8-b {
		return math.MaxUint8
	}
	return a + b
}

// CheckedMulDiv computes a*b/d with a 128-bit intermediate. Money movement
// must never clamp, so quotients that do not fit in 64 bits are an error.
func CheckedMulDiv(a, b, d uint64) (uint64, error) {
	if d == 0 {
		return 0, ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return 0, ErrArithmeticOverflow
	}
	q, _ := bits.Div64(hi, lo, d)
	return q, nil
}

// BpsAmount returns floor(total * bps / 10000).
func BpsAmount(total uint64, bps uint16) (uint64, error) {
	return CheckedMulDiv(total, uint64(bps), BpsDenominator)
}

// BpsToPercentage converts basis points to a display percentage.
func BpsToPercentage(bps uint16) float64 {
	return float64(bps) / 100.0
}

// FeeDistribution is one exact four-way split of a fee. The burn share
// absorbs the full rounding remainder so the parts always sum to the fee.
type FeeDistribution struct {
	Creator   uint64 `json:"creator"`
	Dao       uint64 `json:"dao"`
	Validator uint64 `json:"validator"`
	Burn      uint64 `json:"burn"`
}

// Total returns the recombined fee.
func (d FeeDistribution) Total() uint64 {
	return d.Creator + d.Dao + d.Validator + d.Burn
}

// SplitFee divides totalFee across creator/dao/validator by their basis
// point shares, with burn taking the remainder. The shares must sum to
// 10000 or less; callers enforce the exact-10000 royalty invariant.
func SplitFee(totalFee uint64, creatorBps, daoBps, validatorBps uint16) (FeeDistribution, error) {
	creator, err := BpsAmount(totalFee, creatorBps)
	if err != nil {
		return FeeDistribution{}, err
	}
	dao, err := BpsAmount(totalFee, daoBps)
	if err != nil {
		return FeeDistribution{}, err
	}
	validator, err := BpsAmount(totalFee, validatorBps)
	if err != nil {
		return FeeDistribution{}, err
	}

	distributed := creator + dao + validator
	if distributed > totalFee {
		return FeeDistribution{}, ErrArithmeticOverflow
	}

	return FeeDistribution{
		Creator:   creator,
		Dao:       dao,
		Validator: validator,
		Burn:      totalFee - distributed,
	}, nil
}
