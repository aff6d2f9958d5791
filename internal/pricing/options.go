package pricing

import (
	"fmt"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// LeasingOption is one entry of the static financing-term catalog.
type LeasingOption struct {
	Months            int     `json:"months"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	Label             string  `json:"label"`
}

var leasingOptions = []LeasingOption{
	{Months: 12, AnnualRatePercent: 2.9, Label: "12 months"},
	{Months: 24, AnnualRatePercent: 3.1, Label: "24 months"},
	{Months: 36, AnnualRatePercent: 3.2, Label: "36 months"},
	{Months: 48, AnnualRatePercent: 3.5, Label: "48 months"},
}

// Options returns a copy of the financing-term catalog ordered by term.
func Options() []LeasingOption {
	out := make([]LeasingOption, len(leasingOptions))
	copy(out, leasingOptions)
	return out
}

// IsOfferedTerm reports whether months matches an entry of the catalog exactly.
func IsOfferedTerm(months int) bool {
	for _, opt := range leasingOptions {
		if opt.Months == months {
			return true
		}
	}
	return false
}

// OptionFor returns the catalog entry for months. Terms outside the catalog resolve to
// the nearest offered term (ties go to the shorter one).
func OptionFor(months int) LeasingOption {
	best := leasingOptions[0]
	bestDistance := distance(best.Months, months)
	for _, opt := range leasingOptions[1:] {
		if d := distance(opt.Months, months); d < bestDistance {
			best, bestDistance = opt, d
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// FinancingDetails carries the terms attached to a financed order.
type FinancingDetails struct {
	Months         int             `json:"months"`
	RatePercent    float64         `json:"rate_percent"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Label          string          `json:"label"`
}

// NewFinancingDetails validates the term and prices total against the catalog rate.
// TotalAmount is the financed vehicle price.
func NewFinancingDetails(total decimal.Decimal, months int) (FinancingDetails, error) {
	if !IsOfferedTerm(months) {
		return FinancingDetails{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("financing term of %d months is not offered", months))
	}
	if total.IsNegative() {
		return FinancingDetails{}, pkgerrors.New(pkgerrors.CodeValidation, "financed amount cannot be negative")
	}

	opt := OptionFor(months)
	return FinancingDetails{
		Months:         opt.Months,
		RatePercent:    opt.AnnualRatePercent,
		MonthlyPayment: MonthlyPaymentForLoan(total, opt.Months, opt.AnnualRatePercent),
		TotalAmount:    total.Round(2),
		Label:          opt.Label,
	}, nil
}

// FinancingFor builds the terms attached to an order paid with method. Cash orders carry
// none. Leasing orders use the leasing payment instead of the loan annuity.
func FinancingFor(method enums.PaymentMethod, total decimal.Decimal, months int) (*FinancingDetails, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method %q", method))
	}
	if !method.RequiresFinancing() {
		return nil, nil
	}
	details, err := NewFinancingDetails(total, months)
	if err != nil {
		return nil, err
	}
	if method == enums.PaymentMethodLeasing {
		details.RatePercent = LeasingRatePercent(details.Months)
		details.MonthlyPayment = decimal.RequireFromString(LeasingMonthlyPayment(details.Months, total))
	}
	return &details, nil
}
