package pricing

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestMonthlyPaymentForLoan(t *testing.T) {
	cases := []struct {
		name      string
		principal string
		months    int
		rate      float64
		want      string
	}{
		{name: "zero rate divides evenly", principal: "12000", months: 12, rate: 0, want: "1000"},
		{name: "zero rate rounds to cents", principal: "1000", months: 3, rate: 0, want: "333.33"},
		{name: "amortized 36 months", principal: "52950", months: 36, rate: 3.2, want: "1544.52"},
		{name: "amortized 12 months", principal: "12000", months: 12, rate: 2.9, want: "1015.78"},
		{name: "amortized 48 months", principal: "30000", months: 48, rate: 3.5, want: "670.68"},
		{name: "zero months returns principal", principal: "12000", months: 0, rate: 3.2, want: "12000"},
		{name: "negative months returns principal", principal: "999.999", months: -4, rate: 3.2, want: "1000"},
		{name: "negative principal clamps", principal: "-5000", months: 12, rate: 3.2, want: "0"},
		{name: "negative principal with no term", principal: "-5000", months: 0, rate: 3.2, want: "0"},
		{name: "negative rate treated as zero", principal: "1200", months: 12, rate: -4, want: "100"},
		{name: "nan rate treated as zero", principal: "1200", months: 12, rate: math.NaN(), want: "100"},
		{name: "infinite rate falls back", principal: "1200", months: 12, rate: math.Inf(1), want: "100"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MonthlyPaymentForLoan(dec(tc.principal), tc.months, tc.rate)
			assert.True(t, dec(tc.want).Equal(got), "want %s got %s", tc.want, got)
			assert.False(t, got.IsNegative())
		})
	}
}

func TestLeasingMonthlyPayment(t *testing.T) {
	cases := []struct {
		name   string
		months int
		base   string
		want   string
	}{
		{name: "zero base clamps", months: 12, base: "0", want: "0.00"},
		{name: "zero months clamps", months: 0, base: "5000", want: "0.00"},
		{name: "negative base clamps", months: 24, base: "-100", want: "0.00"},
		{name: "negative months clamps", months: -12, base: "5000", want: "0.00"},
		{name: "reference term", months: 36, base: "50000", want: "801.99"},
		{name: "short term", months: 12, base: "30000", want: "590.42"},
		{name: "long term", months: 48, base: "40000", want: "567.41"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, LeasingMonthlyPayment(tc.months, dec(tc.base)))
		})
	}
}

func TestLeasingMonthlyPaymentAlwaysTwoDigits(t *testing.T) {
	for _, months := range []int{1, 6, 12, 18, 24, 30, 36, 48, 60, 120, 200} {
		got := LeasingMonthlyPayment(months, dec("1234.56"))
		_, err := decimal.NewFromString(got)
		require.NoError(t, err, "months=%d produced %q", months, got)
		dot := len(got) - 3
		require.True(t, dot > 0 && got[dot] == '.', "months=%d produced %q", months, got)
	}
}

func TestLeasingBuckets(t *testing.T) {
	assert.Equal(t, 12, bucketFor(1).months)
	assert.Equal(t, 24, bucketFor(13).months)
	assert.Equal(t, 36, bucketFor(36).months)
	assert.Equal(t, 48, bucketFor(72).months)

	assert.InDelta(t, 3.9, LeasingRatePercent(36), 1e-9)
	assert.InDelta(t, 4.5, LeasingRatePercent(24), 1e-9)
	assert.Equal(t, 0.0, LeasingRatePercent(200))
}

func TestQuoteLeasing(t *testing.T) {
	quote := QuoteLeasing(36, dec("50000"))
	assert.Equal(t, "801.99", quote.MonthlyPayment)
	assert.True(t, dec("5000").Equal(quote.DownPayment))
	assert.True(t, dec("20000").Equal(quote.ResidualValue))
	assert.False(t, quote.ClampedInvalidInput)

	clamped := QuoteLeasing(0, dec("5000"))
	assert.Equal(t, "0.00", clamped.MonthlyPayment)
	assert.True(t, clamped.ClampedInvalidInput)
}

func TestOptionFor(t *testing.T) {
	assert.Equal(t, 3.2, OptionFor(36).AnnualRatePercent)
	assert.Equal(t, 12, OptionFor(0).Months)
	assert.Equal(t, 12, OptionFor(18).Months, "ties resolve to the shorter term")
	assert.Equal(t, 24, OptionFor(20).Months)
	assert.Equal(t, 48, OptionFor(96).Months)

	opts := Options()
	opts[0].Months = 99
	assert.Equal(t, 12, Options()[0].Months, "Options must return a copy")
}

func TestNewFinancingDetails(t *testing.T) {
	details, err := NewFinancingDetails(dec("52950"), 36)
	require.NoError(t, err)
	assert.Equal(t, 36, details.Months)
	assert.Equal(t, 3.2, details.RatePercent)
	assert.True(t, dec("1544.52").Equal(details.MonthlyPayment))
	assert.True(t, dec("52950").Equal(details.TotalAmount))
	assert.Equal(t, "36 months", details.Label)

	_, err = NewFinancingDetails(dec("52950"), 30)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = NewFinancingDetails(dec("-1"), 36)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMemoryTermPreferences(t *testing.T) {
	ctx := context.Background()
	prefs := NewMemoryTermPreferences()

	_, ok, err := prefs.Last(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prefs.Remember(ctx, "session-1", 48))
	months, ok, err := prefs.Last(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 48, months)
}

func TestRedisTermPreferences(t *testing.T) {
	ctx := context.Background()
	store := &fakeTermStore{values: map[string]string{}}
	prefs := NewRedisTermPreferences(store)

	_, ok, err := prefs.Last(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, prefs.Remember(ctx, "session-1", 24))
	assert.Equal(t, "24", store.values["cfg:term:session-1"])
	assert.Equal(t, termPreferenceTTL, store.lastTTL)

	months, ok, err := prefs.Last(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24, months)

	store.values["cfg:term:session-2"] = "not-a-number"
	_, ok, err = prefs.Last(ctx, "session-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

type fakeTermStore struct {
	values  map[string]string
	lastTTL time.Duration
}

func (f *fakeTermStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.lastTTL = ttl
	return nil
}

func (f *fakeTermStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeTermStore) TermPreferenceKey(scope string) string {
	return "cfg:term:" + scope
}

func TestFinancingFor(t *testing.T) {
	cash, err := FinancingFor(enums.PaymentMethodCash, dec("52950"), 0)
	require.NoError(t, err)
	assert.Nil(t, cash)

	loan, err := FinancingFor(enums.PaymentMethodLoan, dec("52950"), 36)
	require.NoError(t, err)
	require.NotNil(t, loan)
	assert.True(t, dec("1544.52").Equal(loan.MonthlyPayment))
	assert.Equal(t, 3.2, loan.RatePercent)

	lease, err := FinancingFor(enums.PaymentMethodLeasing, dec("50000"), 36)
	require.NoError(t, err)
	require.NotNil(t, lease)
	assert.True(t, dec("801.99").Equal(lease.MonthlyPayment))
	assert.True(t, dec("50000").Equal(lease.TotalAmount))

	_, err = FinancingFor(enums.PaymentMethodLoan, dec("52950"), 30)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = FinancingFor("barter", dec("52950"), 36)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
