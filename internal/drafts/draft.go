package drafts

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Store.Get when no draft exists for the id.
var ErrNotFound = errors.New("drafts: not found")

// ModelRef identifies the vehicle model a draft was configured for.
type ModelRef struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	BasePrice decimal.Decimal `json:"base_price"`
}

// OptionRef references a catalog option by id; name and price are kept for listings.
type OptionRef struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	AdditionalPrice decimal.Decimal `json:"additional_price"`
}

// Draft is a resumable snapshot of a configuration. Its JSON shape is the storage
// format of every Store; changing it breaks previously saved drafts.
type Draft struct {
	ID           uuid.UUID       `json:"id"`
	Model        ModelRef        `json:"model"`
	Engine       *OptionRef      `json:"engine,omitempty"`
	Transmission *OptionRef      `json:"transmission,omitempty"`
	Color        *OptionRef      `json:"color,omitempty"`
	Rim          *OptionRef      `json:"rim,omitempty"`
	Interior     *OptionRef      `json:"interior,omitempty"`
	Assistance   []OptionRef     `json:"assistance"`
	Comfort      []OptionRef     `json:"comfort"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	SavedAt      time.Time       `json:"saved_at"`
	// CompletedSteps lists the steps that completed by being visited. Drafts saved
	// without it restore completion from their selections only.
	CompletedSteps []enums.Step `json:"completed_steps,omitempty"`
}

func encode(d Draft) ([]byte, error) {
	if d.Assistance == nil {
		d.Assistance = []OptionRef{}
	}
	if d.Comfort == nil {
		d.Comfort = []OptionRef{}
	}
	return json.Marshal(d)
}

func decode(raw []byte) (Draft, error) {
	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// newestFirst orders drafts by SavedAt descending, then by id for stability.
func newestFirst(list []Draft) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].SavedAt.Equal(list[j].SavedAt) {
			return list[i].SavedAt.After(list[j].SavedAt)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}
