package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// MonthlyPaymentForLoan returns the level monthly payment that repays principal over
// months at annualRatePercent. The function is total:
//   - a negative principal is treated as zero;
//   - a negative or non-finite rate is treated as 0%;
//   - months <= 0 returns the full principal (pay immediately);
//   - a 0% rate returns principal / months.
//
// The result is rounded to cents.
func MonthlyPaymentForLoan(principal decimal.Decimal, months int, annualRatePercent float64) decimal.Decimal {
	if principal.IsNegative() {
		principal = decimal.Zero
	}
	if months <= 0 {
		return principal.Round(2)
	}
	if math.IsNaN(annualRatePercent) || math.IsInf(annualRatePercent, 0) || annualRatePercent < 0 {
		annualRatePercent = 0
	}

	monthlyRate := annualRatePercent / 100 / 12
	straight := principal.Div(decimal.NewFromInt(int64(months))).Round(2)
	if monthlyRate == 0 {
		return straight
	}

	p := principal.InexactFloat64()
	factor := math.Pow(1+monthlyRate, float64(months))
	payment := p * monthlyRate * factor / (factor - 1)
	if !finite(payment) || payment < 0 {
		return straight
	}
	return decimal.NewFromFloat(payment).Round(2)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
