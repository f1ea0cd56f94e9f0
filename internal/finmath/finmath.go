// Package finmath implements the closed-form time-value-of-money
// projections: systematic investment growth, installment-loan
// amortization and lump-sum compounding.
//
// Computation stays in float64 end to end; results are rounded to the
// nearest whole currency unit only at the presentation boundary via
// Round, so intermediate rounding error never compounds.
package finmath

import (
	"fmt"
	"math"

	"richr/internal/core"
)

// SIPResult is the outcome of a systematic investment plan projection.
type SIPResult struct {
	Invested    float64
	FutureValue float64
	Gain        float64
}

// LoanResult is the outcome of an installment-loan projection.
type LoanResult struct {
	EMI          float64
	TotalPayable float64
	Interest     float64
}

// SIP projects the future value of investing the given amount every
// month for the given number of years at the given annual rate
// (percent), using the annuity-due compounding form. A zero rate is a
// valid input with the linear closed form, not an error: the general
// formula divides by the monthly rate.
func SIP(monthlyAmount, annualRatePct float64, years int) (SIPResult, error) {
	if err := validate(monthlyAmount, annualRatePct, years); err != nil {
		return SIPResult{}, err
	}

	months := float64(years * 12)
	invested := monthlyAmount * months

	i := annualRatePct / 12 / 100
	var fv float64
	if i == 0 {
		fv = invested
	} else {
		fv = monthlyAmount * ((math.Pow(1+i, months) - 1) / i) * (1 + i)
	}

	return SIPResult{
		Invested:    invested,
		FutureValue: fv,
		Gain:        fv - invested,
	}, nil
}

// LoanEMI computes the fixed monthly installment for a loan of the
// given principal over the given number of years at the given annual
// rate (percent). The zero-rate degenerate case is the interest-free
// split principal/months.
func LoanEMI(principal, annualRatePct float64, years int) (LoanResult, error) {
	if err := validate(principal, annualRatePct, years); err != nil {
		return LoanResult{}, err
	}

	months := float64(years * 12)

	mr := annualRatePct / 12 / 100
	var emi float64
	if mr == 0 {
		emi = principal / months
	} else {
		growth := math.Pow(1+mr, months)
		emi = principal * mr * growth / (growth - 1)
	}

	total := emi * months
	return LoanResult{
		EMI:          emi,
		TotalPayable: total,
		Interest:     total - principal,
	}, nil
}

// LumpSum compounds a one-time investment annually for the given
// number of years at the given annual rate (percent).
func LumpSum(principal, annualRatePct float64, years int) (float64, error) {
	if err := validate(principal, annualRatePct, years); err != nil {
		return 0, err
	}
	return principal * math.Pow(1+annualRatePct/100, float64(years)), nil
}

// Round rounds a projected value to the nearest whole currency unit.
// Presentation boundary only.
func Round(v float64) int64 {
	return int64(math.Round(v))
}

func validate(principal, annualRatePct float64, years int) error {
	if years <= 0 {
		return fmt.Errorf("years must be positive, got %d: %w", years, core.ErrInvalidArgument)
	}
	if principal <= 0 {
		return fmt.Errorf("principal must be positive, got %g: %w", principal, core.ErrInvalidArgument)
	}
	if annualRatePct < 0 {
		return fmt.Errorf("rate must not be negative, got %g: %w", annualRatePct, core.ErrInvalidArgument)
	}
	if math.IsNaN(principal) || math.IsInf(principal, 0) || math.IsNaN(annualRatePct) || math.IsInf(annualRatePct, 0) {
		return fmt.Errorf("non-finite input: %w", core.ErrInvalidArgument)
	}
	return nil
}
