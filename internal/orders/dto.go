package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	"github.com/angelmondragon/configurator-backend/pkg/db/models"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
)

// SubmitInput is everything needed to record an order.
type SubmitInput struct {
	CustomerID    uuid.UUID
	DraftID       *uuid.UUID
	Snapshot      drafts.Draft
	PaymentMethod enums.PaymentMethod
	Financing     *pricing.FinancingDetails
	TotalPrice    decimal.Decimal
}

// OrderDTO is the transport shape of a submitted order.
type OrderDTO struct {
	ID            uuid.UUID                 `json:"id"`
	CustomerID    uuid.UUID                 `json:"customer_id"`
	ModelID       uuid.UUID                 `json:"model_id"`
	DraftID       *uuid.UUID                `json:"draft_id,omitempty"`
	Configuration drafts.Draft              `json:"configuration"`
	PaymentMethod enums.PaymentMethod       `json:"payment_method"`
	Financing     *pricing.FinancingDetails `json:"financing,omitempty"`
	TotalPrice    decimal.Decimal           `json:"total_price"`
	Status        enums.OrderStatus         `json:"status"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// ListParams pages through a customer's orders newest first.
type ListParams struct {
	CustomerID uuid.UUID
	Limit      int
	Cursor     string
}

// ListResult carries one page and the cursor of the next one, empty on the last page.
type ListResult struct {
	Items  []OrderDTO `json:"items"`
	Cursor string     `json:"cursor,omitempty"`
}

func (in SubmitInput) toModel(id uuid.UUID) (*models.Order, error) {
	snapshot, err := json.Marshal(in.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	order := &models.Order{
		ID:            id,
		CustomerID:    in.CustomerID,
		ModelID:       in.Snapshot.Model.ID,
		DraftID:       in.DraftID,
		Snapshot:      string(snapshot),
		PaymentMethod: in.PaymentMethod,
		TotalPrice:    in.TotalPrice.Round(2),
		Status:        enums.OrderStatusSubmitted,
	}
	if in.Financing != nil {
		raw, err := json.Marshal(in.Financing)
		if err != nil {
			return nil, fmt.Errorf("encode financing: %w", err)
		}
		financing := string(raw)
		order.Financing = &financing
	}
	return order, nil
}

func FromModel(o *models.Order) (*OrderDTO, error) {
	if o == nil {
		return nil, nil
	}
	dto := &OrderDTO{
		ID:            o.ID,
		CustomerID:    o.CustomerID,
		ModelID:       o.ModelID,
		DraftID:       o.DraftID,
		PaymentMethod: o.PaymentMethod,
		TotalPrice:    o.TotalPrice,
		Status:        o.Status,
		CreatedAt:     o.CreatedAt,
	}
	if err := json.Unmarshal([]byte(o.Snapshot), &dto.Configuration); err != nil {
		return nil, fmt.Errorf("decode snapshot for order %s: %w", o.ID, err)
	}
	if o.Financing != nil {
		var financing pricing.FinancingDetails
		if err := json.Unmarshal([]byte(*o.Financing), &financing); err != nil {
			return nil, fmt.Errorf("decode financing for order %s: %w", o.ID, err)
		}
		dto.Financing = &financing
	}
	return dto, nil
}
