package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/configurator-backend/api/responses"
	"github.com/angelmondragon/configurator-backend/api/validators"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	"github.com/angelmondragon/configurator-backend/pkg/config"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

const maxQuoteMonths = 1200

type loanQuoteResponse struct {
	Principal      decimal.Decimal `json:"principal"`
	Months         int             `json:"months"`
	RatePercent    float64         `json:"rate_percent"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
}

// LeasingOptions lists the offered financing terms.
func LeasingOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pricing.Options())
	}
}

// LeasingQuote prices a lease for months and base_price. Out-of-range input is
// answered with the "0.00" payment and the clamped flag, not an error.
func LeasingQuote(cfg config.LeasingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, err := validators.ParseQueryInt(r, "months", cfg.DefaultTermMonths, -maxQuoteMonths, maxQuoteMonths)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		basePrice, err := validators.ParseQueryDecimal(r, "base_price")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pricing.QuoteLeasing(months, basePrice))
	}
}

// LoanQuote prices an amortizing loan. The rate is an annual percentage.
func LoanQuote(cfg config.LeasingConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, err := validators.ParseQueryDecimal(r, "principal")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		months, err := validators.ParseQueryInt(r, "months", cfg.DefaultTermMonths, -maxQuoteMonths, maxQuoteMonths)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rate, err := validators.ParseQueryFloat(r, "rate", pricing.OptionFor(months).AnnualRatePercent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, loanQuoteResponse{
			Principal:      principal,
			Months:         months,
			RatePercent:    rate,
			MonthlyPayment: pricing.MonthlyPaymentForLoan(principal, months, rate),
		})
	}
}
