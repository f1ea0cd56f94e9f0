package finmath

import (
	"errors"
	"math"
	"testing"

	"richr/internal/core"
)

func TestSIP(t *testing.T) {
	res, err := SIP(5000, 12, 5)
	if err != nil {
		t.Fatalf("SIP() error = %v", err)
	}

	if res.Invested != 300000 {
		t.Errorf("Invested = %g, want 300000", res.Invested)
	}
	// Annuity-due form: 5000 * ((1.01^60 - 1) / 0.01) * 1.01
	if got := Round(res.FutureValue); got != 412432 {
		t.Errorf("FutureValue rounds to %d, want 412432", got)
	}
	if math.Abs(res.Gain-(res.FutureValue-res.Invested)) > 1e-9 {
		t.Errorf("Gain = %g, want FutureValue - Invested", res.Gain)
	}
}

func TestSIP_ZeroRate(t *testing.T) {
	// The closed form divides by the monthly rate; zero rate must use
	// the linear form instead of producing NaN.
	res, err := SIP(1000, 0, 5)
	if err != nil {
		t.Fatalf("SIP() error = %v", err)
	}
	if res.Invested != 60000 {
		t.Errorf("Invested = %g, want 60000", res.Invested)
	}
	if res.FutureValue != 60000 {
		t.Errorf("FutureValue = %g, want 60000", res.FutureValue)
	}
	if res.Gain != 0 {
		t.Errorf("Gain = %g, want 0", res.Gain)
	}
}

func TestLoanEMI(t *testing.T) {
	res, err := LoanEMI(1200000, 9, 20)
	if err != nil {
		t.Fatalf("LoanEMI() error = %v", err)
	}

	if got := Round(res.EMI); got != 10797 {
		t.Errorf("EMI rounds to %d, want 10797", got)
	}
	if math.Abs(res.TotalPayable-res.EMI*240) > 1e-6 {
		t.Errorf("TotalPayable = %g, want EMI * months", res.TotalPayable)
	}
	if math.Abs(res.Interest-(res.TotalPayable-1200000)) > 1e-6 {
		t.Errorf("Interest = %g, want TotalPayable - principal", res.Interest)
	}
}

func TestLoanEMI_ZeroRate(t *testing.T) {
	res, err := LoanEMI(120000, 0, 1)
	if err != nil {
		t.Fatalf("LoanEMI() error = %v", err)
	}
	if res.EMI != 10000 {
		t.Errorf("EMI = %g, want 10000", res.EMI)
	}
	if res.TotalPayable != 120000 {
		t.Errorf("TotalPayable = %g, want 120000", res.TotalPayable)
	}
	if res.Interest != 0 {
		t.Errorf("Interest = %g, want 0", res.Interest)
	}
}

func TestLumpSum(t *testing.T) {
	fv, err := LumpSum(100000, 10, 2)
	if err != nil {
		t.Fatalf("LumpSum() error = %v", err)
	}
	if math.Abs(fv-121000) > 1e-6 {
		t.Errorf("LumpSum() = %g, want 121000", fv)
	}

	// Zero rate keeps the principal flat.
	fv, err = LumpSum(5000, 0, 10)
	if err != nil {
		t.Fatalf("LumpSum() error = %v", err)
	}
	if fv != 5000 {
		t.Errorf("LumpSum() at zero rate = %g, want 5000", fv)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		years     int
	}{
		{"zero years", 1000, 10, 0},
		{"negative years", 1000, 10, -1},
		{"zero principal", 0, 10, 5},
		{"negative principal", -1000, 10, 5},
		{"negative rate", 1000, -1, 5},
		{"nan principal", math.NaN(), 10, 5},
		{"inf rate", 1000, math.Inf(1), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SIP(tt.principal, tt.rate, tt.years); !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("SIP() error = %v, want ErrInvalidArgument", err)
			}
			if _, err := LoanEMI(tt.principal, tt.rate, tt.years); !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("LoanEMI() error = %v, want ErrInvalidArgument", err)
			}
			if _, err := LumpSum(tt.principal, tt.rate, tt.years); !errors.Is(err, core.ErrInvalidArgument) {
				t.Errorf("LumpSum() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{10.4, 10},
		{10.5, 11},
		{10.6, 11},
		{0, 0},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%g) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
