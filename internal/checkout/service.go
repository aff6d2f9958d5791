package checkout

import (
	"context"
	"fmt"

	"github.com/angelmondragon/configurator-backend/internal/configurator"
	"github.com/angelmondragon/configurator-backend/internal/orders"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Configuration is the part of a configurator session checkout reads and saves.
type Configuration interface {
	ID() uuid.UUID
	CheckoutState() (configurator.CheckoutState, error)
	SaveState(ctx context.Context, state configurator.CheckoutState) (configurator.SaveOutcome, error)
}

type verificationChecker interface {
	IsVerified(ctx context.Context, customerID uuid.UUID) (bool, error)
}

type orderSubmitter interface {
	Submit(ctx context.Context, in orders.SubmitInput) (uuid.UUID, error)
}

// Service turns a complete configuration into an order.
type Service interface {
	Checkout(ctx context.Context, session Configuration, input CheckoutInput) (*CheckoutResult, error)
}

// CheckoutInput selects who orders and how they pay. Months of zero uses the session's
// chosen term.
type CheckoutInput struct {
	CustomerID    uuid.UUID
	PaymentMethod enums.PaymentMethod
	Months        int
}

// CheckoutResult reports the submitted order. Warning is set when the draft could not
// be saved; the order is submitted regardless.
type CheckoutResult struct {
	OrderID    uuid.UUID                 `json:"order_id"`
	DraftID    *uuid.UUID                `json:"draft_id,omitempty"`
	TotalPrice decimal.Decimal           `json:"total_price"`
	Financing  *pricing.FinancingDetails `json:"financing,omitempty"`
	Warning    string                    `json:"warning,omitempty"`
}

type service struct {
	customers verificationChecker
	orders    orderSubmitter
	logg      *logger.Logger
}

// NewService builds the checkout service.
func NewService(customers verificationChecker, submitter orderSubmitter, logg *logger.Logger) (Service, error) {
	if customers == nil {
		return nil, fmt.Errorf("customers service required")
	}
	if submitter == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &service{customers: customers, orders: submitter, logg: logg}, nil
}

// Checkout gates on completion and verification, prices financing, saves the draft and
// submits the order. A failed submission leaves the session untouched.
func (s *service) Checkout(ctx context.Context, session Configuration, input CheckoutInput) (*CheckoutResult, error) {
	if session == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "configuration session required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"payment_method": input.PaymentMethod})
	}

	state, err := session.CheckoutState()
	if err != nil {
		return nil, err
	}
	if !state.CanCheckout {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "configuration is not complete").
			WithDetails(map[string]any{"completion_percentage": state.CompletionPercentage})
	}

	verified, err := s.customers.IsVerified(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if !verified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer email is not verified")
	}

	months := input.Months
	if months == 0 {
		months = state.TermMonths
	}
	financing, err := pricing.FinancingFor(input.PaymentMethod, state.TotalPrice, months)
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{TotalPrice: state.TotalPrice, Financing: financing}
	snapshot := state.Draft
	saved, err := session.SaveState(ctx, state)
	if err != nil {
		return nil, err
	}
	if saved.Saved {
		snapshot.ID = saved.DraftID
		id := saved.DraftID
		result.DraftID = &id
	} else {
		result.Warning = saved.Warning
	}

	orderID, err := s.orders.Submit(ctx, orders.SubmitInput{
		CustomerID:    input.CustomerID,
		DraftID:       result.DraftID,
		Snapshot:      snapshot,
		PaymentMethod: input.PaymentMethod,
		Financing:     financing,
		TotalPrice:    state.TotalPrice,
	})
	if err != nil {
		return nil, err
	}
	result.OrderID = orderID

	if s.logg != nil {
		ctx = s.logg.WithSessionID(ctx, session.ID().String())
		ctx = s.logg.WithOrderID(ctx, orderID.String())
		s.logg.Info(s.logg.WithCustomerID(ctx, input.CustomerID.String()), "checkout.completed")
	}
	return result, nil
}
