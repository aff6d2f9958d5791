package orders

import (
	"context"
	"errors"

	"github.com/angelmondragon/configurator-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/metrics"
	"github.com/angelmondragon/configurator-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service records and reads submitted orders.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	ListForCustomer(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo    Repository
	metrics *metrics.ConfiguratorMetrics
	logg    *logger.Logger
}

// NewService wires the orders service. metrics and logg may be nil.
func NewService(repo Repository, m *metrics.ConfiguratorMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("orders repository required")
	}
	return &service{repo: repo, metrics: m, logg: logg}, nil
}

// Submit validates in and stores it as a new order. Repository failures are retryable.
func (s *service) Submit(ctx context.Context, in SubmitInput) (uuid.UUID, error) {
	if err := validateSubmit(in); err != nil {
		return uuid.Nil, err
	}

	order, err := in.toModel(uuid.New())
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build order")
	}
	if err := s.repo.Create(ctx, order); err != nil {
		s.metrics.OrderSubmitted(metrics.ResultFailure)
		if s.logg != nil {
			s.logg.Error(s.logg.WithCustomerID(ctx, in.CustomerID.String()), "orders.submit_failed", err)
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit order")
	}
	s.metrics.OrderSubmitted(metrics.ResultSuccess)
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "payment_method": string(in.PaymentMethod)})
		s.logg.Info(s.logg.WithCustomerID(ctx, in.CustomerID.String()), "orders.submitted")
	}
	return order.ID, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
			WithDetails(map[string]any{"order_id": id})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	dto, err := FromModel(order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order")
	}
	return dto, nil
}

func (s *service) ListForCustomer(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListForCustomer(ctx, params.CustomerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dto, err := FromModel(&rows[i])
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode order")
		}
		items = append(items, *dto)
	}
	result := &ListResult{Items: items}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func validateSubmit(in SubmitInput) error {
	if in.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if in.Snapshot.Model.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "configuration has no model")
	}
	if !in.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
			WithDetails(map[string]any{"payment_method": in.PaymentMethod})
	}
	if in.PaymentMethod.RequiresFinancing() && in.Financing == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "financing terms required for payment method").
			WithDetails(map[string]any{"payment_method": in.PaymentMethod})
	}
	if !in.PaymentMethod.RequiresFinancing() && in.Financing != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cash orders carry no financing terms")
	}
	if in.TotalPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total price cannot be negative")
	}
	return nil
}
