package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	leasingBaseRatePercent    = 3.9
	leasingReferenceMonths    = 36
	leasingRateAdjustPerMonth = 0.05
)

const zeroPayment = "0.00"

type leasingBucket struct {
	months      int
	downPayment float64
	residual    float64
}

// ordered by months ascending
var leasingBuckets = []leasingBucket{
	{months: 12, downPayment: 0.20, residual: 0.60},
	{months: 24, downPayment: 0.15, residual: 0.50},
	{months: 36, downPayment: 0.10, residual: 0.40},
	{months: 48, downPayment: 0.10, residual: 0.30},
}

// bucketFor returns the smallest bucket covering months; longer terms use the last bucket.
func bucketFor(months int) leasingBucket {
	for _, b := range leasingBuckets {
		if months <= b.months {
			return b
		}
	}
	return leasingBuckets[len(leasingBuckets)-1]
}

// LeasingRatePercent is the term-dependent nominal annual rate used by LeasingMonthlyPayment.
func LeasingRatePercent(months int) float64 {
	rate := leasingBaseRatePercent + float64(leasingReferenceMonths-months)*leasingRateAdjustPerMonth
	if rate < 0 {
		return 0
	}
	return rate
}

// LeasingMonthlyPayment computes the closed-form lease payment for basePrice over months,
// accounting for the bucket's down payment and residual value. The result always has
// exactly two fraction digits. Non-positive inputs yield "0.00".
func LeasingMonthlyPayment(months int, basePrice decimal.Decimal) string {
	if months <= 0 || !basePrice.IsPositive() {
		return zeroPayment
	}

	bucket := bucketFor(months)
	i := LeasingRatePercent(months) / 100 / 12

	base := basePrice.InexactFloat64()
	downPayment := base * bucket.downPayment
	residual := base * bucket.residual
	amortized := base - downPayment - residual

	var payment float64
	if i == 0 {
		payment = amortized / float64(months)
	} else {
		payment = amortized*i/(1-math.Pow(1+i, -float64(months))) + residual*i
	}
	if !finite(payment) || payment <= 0 {
		return zeroPayment
	}
	return decimal.NewFromFloat(payment).StringFixed(2)
}

// LeasingQuote is the read model returned for a lease calculation.
type LeasingQuote struct {
	Months              int             `json:"months"`
	BasePrice           decimal.Decimal `json:"base_price"`
	RatePercent         float64         `json:"rate_percent"`
	DownPayment         decimal.Decimal `json:"down_payment"`
	ResidualValue       decimal.Decimal `json:"residual_value"`
	MonthlyPayment      string          `json:"monthly_payment"`
	ClampedInvalidInput bool            `json:"clamped_invalid_input,omitempty"`
}

// QuoteLeasing wraps LeasingMonthlyPayment with the intermediate figures for display.
// ClampedInvalidInput flags requests that were answered with the "0.00" sentinel.
func QuoteLeasing(months int, basePrice decimal.Decimal) LeasingQuote {
	quote := LeasingQuote{
		Months:         months,
		BasePrice:      basePrice,
		MonthlyPayment: LeasingMonthlyPayment(months, basePrice),
	}
	if months <= 0 || !basePrice.IsPositive() {
		quote.DownPayment = decimal.Zero
		quote.ResidualValue = decimal.Zero
		quote.ClampedInvalidInput = true
		return quote
	}
	bucket := bucketFor(months)
	quote.RatePercent = LeasingRatePercent(months)
	quote.DownPayment = basePrice.Mul(decimal.NewFromFloat(bucket.downPayment)).Round(2)
	quote.ResidualValue = basePrice.Mul(decimal.NewFromFloat(bucket.residual)).Round(2)
	return quote
}
