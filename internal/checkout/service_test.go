package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/configurator-backend/internal/configurator"
	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/orders"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSession struct {
	id      uuid.UUID
	state   configurator.CheckoutState
	outcome configurator.SaveOutcome
	saves   int
	saved   []drafts.Draft
}

func (s *stubSession) ID() uuid.UUID { return s.id }

func (s *stubSession) CheckoutState() (configurator.CheckoutState, error) {
	return s.state, nil
}

func (s *stubSession) SaveState(_ context.Context, state configurator.CheckoutState) (configurator.SaveOutcome, error) {
	s.saves++
	s.saved = append(s.saved, state.Draft)
	return s.outcome, nil
}

type stubCustomers struct {
	verified bool
	err      error
}

func (c stubCustomers) IsVerified(context.Context, uuid.UUID) (bool, error) {
	return c.verified, c.err
}

type recordingOrders struct {
	inputs []orders.SubmitInput
	err    error
}

func (o *recordingOrders) Submit(_ context.Context, in orders.SubmitInput) (uuid.UUID, error) {
	if o.err != nil {
		return uuid.Nil, o.err
	}
	o.inputs = append(o.inputs, in)
	return uuid.New(), nil
}

func completeSession() *stubSession {
	modelID := uuid.New()
	return &stubSession{
		id: uuid.New(),
		state: configurator.CheckoutState{
			ModelID:              modelID,
			Draft:                drafts.Draft{Model: drafts.ModelRef{ID: modelID}, TotalPrice: decimal.NewFromInt(52950)},
			TotalPrice:           decimal.NewFromInt(52950),
			CompletionPercentage: 100,
			CanCheckout:          true,
			TermMonths:           36,
		},
		outcome: configurator.SaveOutcome{DraftID: uuid.New(), Saved: true},
	}
}

func newTestService(t *testing.T, customers stubCustomers, submitter *recordingOrders) Service {
	t.Helper()
	svc, err := NewService(customers, submitter, nil)
	require.NoError(t, err)
	return svc
}

func TestCheckoutLoanSubmitsFinancedOrder(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)
	session := completeSession()
	customerID := uuid.New()

	result, err := svc.Checkout(context.Background(), session, CheckoutInput{CustomerID: customerID, PaymentMethod: enums.PaymentMethodLoan})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.OrderID)
	require.NotNil(t, result.DraftID)
	assert.Equal(t, session.outcome.DraftID, *result.DraftID)
	require.NotNil(t, result.Financing)
	assert.Equal(t, 36, result.Financing.Months)
	assert.True(t, decimal.RequireFromString("1544.52").Equal(result.Financing.MonthlyPayment))
	assert.Empty(t, result.Warning)

	require.Len(t, submitter.inputs, 1)
	in := submitter.inputs[0]
	assert.Equal(t, customerID, in.CustomerID)
	assert.Equal(t, session.outcome.DraftID, in.Snapshot.ID)
	assert.Equal(t, enums.PaymentMethodLoan, in.PaymentMethod)
	assert.True(t, decimal.NewFromInt(52950).Equal(in.TotalPrice))

	require.Len(t, session.saved, 1, "the checked-out snapshot is the one saved")
	assert.Equal(t, session.state.Draft, session.saved[0])
	assert.Equal(t, session.saved[0].Model, in.Snapshot.Model)
}

func TestCheckoutCashCarriesNoFinancing(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)

	result, err := svc.Checkout(context.Background(), completeSession(), CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCash})
	require.NoError(t, err)
	assert.Nil(t, result.Financing)
	require.Len(t, submitter.inputs, 1)
	assert.Nil(t, submitter.inputs[0].Financing)
}

func TestCheckoutLeasingUsesRequestedTerm(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)
	session := completeSession()
	session.state.TotalPrice = decimal.NewFromInt(30000)

	result, err := svc.Checkout(context.Background(), session, CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodLeasing, Months: 12})
	require.NoError(t, err)
	require.NotNil(t, result.Financing)
	assert.Equal(t, 12, result.Financing.Months)
	assert.True(t, decimal.RequireFromString("590.42").Equal(result.Financing.MonthlyPayment))
}

func TestCheckoutRejectsIncompleteConfiguration(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)
	session := completeSession()
	session.state.CanCheckout = false
	session.state.CompletionPercentage = 78

	_, err := svc.Checkout(context.Background(), session, CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCash})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Equal(t, map[string]any{"completion_percentage": 78}, pkgerrors.As(err).Details())
	assert.Zero(t, session.saves)
	assert.Empty(t, submitter.inputs)
}

func TestCheckoutRequiresVerifiedCustomer(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: false}, submitter)
	session := completeSession()

	_, err := svc.Checkout(context.Background(), session, CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCash})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	assert.Zero(t, session.saves)
	assert.Empty(t, submitter.inputs)
}

func TestCheckoutRejectsUnofferedTerm(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)

	_, err := svc.Checkout(context.Background(), completeSession(), CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodLoan, Months: 30})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, submitter.inputs)
}

func TestCheckoutDraftSaveFailureIsAWarning(t *testing.T) {
	submitter := &recordingOrders{}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)
	session := completeSession()
	session.outcome = configurator.SaveOutcome{Saved: false, Warning: "draft could not be saved: dependency unavailable"}

	result, err := svc.Checkout(context.Background(), session, CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCash})
	require.NoError(t, err)
	assert.Nil(t, result.DraftID)
	assert.Equal(t, session.outcome.Warning, result.Warning)
	require.Len(t, submitter.inputs, 1)
	assert.Nil(t, submitter.inputs[0].DraftID)
}

func TestCheckoutSubmitFailurePropagates(t *testing.T) {
	submitter := &recordingOrders{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("db down"), "submit order")}
	svc := newTestService(t, stubCustomers{verified: true}, submitter)

	_, err := svc.Checkout(context.Background(), completeSession(), CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCash})
	assert.True(t, pkgerrors.IsRetryable(err))
}

func TestCheckoutValidatesInput(t *testing.T) {
	svc := newTestService(t, stubCustomers{verified: true}, &recordingOrders{})
	ctx := context.Background()

	_, err := svc.Checkout(ctx, nil, CheckoutInput{CustomerID: uuid.New(), PaymentMethod: enums.PaymentMethodCash})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Checkout(ctx, completeSession(), CheckoutInput{PaymentMethod: enums.PaymentMethodCash})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Checkout(ctx, completeSession(), CheckoutInput{CustomerID: uuid.New(), PaymentMethod: "barter"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
