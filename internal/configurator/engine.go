package configurator

import (
	"fmt"

	"github.com/angelmondragon/configurator-backend/internal/catalog"
	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// Engine holds the selection state and completion map for one model's catalog.
// It is not safe for concurrent use; Session serializes access.
type Engine struct {
	catalog    *catalog.Catalog
	selection  Selection
	completion map[enums.Step]bool
}

// NewEngine creates an empty configuration over a loaded catalog.
func NewEngine(c *catalog.Catalog) (*Engine, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog is required")
	}
	return &Engine{
		catalog:    c,
		selection:  emptySelection(),
		completion: map[enums.Step]bool{},
	}, nil
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

func (e *Engine) Model() catalog.Model {
	return e.catalog.Model
}

// Selection returns a copy of the current selection.
func (e *Engine) Selection() Selection {
	return e.selection.clone()
}

// SetSingleSelection replaces the choice for a single-select category and marks its step.
// The option must be offered by the catalog for that category.
func (e *Engine) SetSingleSelection(category enums.OptionCategory, option catalog.Option) error {
	if !category.IsSingleSelect() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a single-select category", category))
	}
	offered, ok := e.catalog.Lookup(category, option.ID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "option is not offered for this model").
			WithDetails(map[string]any{"category": category, "option_id": option.ID})
	}
	*e.selection.singleSlot(category) = &offered
	e.completion[category.Step()] = true
	return nil
}

// ToggleMultiSelection adds feature when absent and removes it when present. A nil
// feature clears the whole set. The category's step is marked in every case.
func (e *Engine) ToggleMultiSelection(category enums.OptionCategory, feature *catalog.Feature) error {
	if !category.IsMultiSelect() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a multi-select category", category))
	}
	slot := e.selection.featureSlot(category)

	if feature == nil {
		*slot = []catalog.Feature{}
		e.completion[category.Step()] = true
		return nil
	}

	offered, ok := e.catalog.LookupFeature(category, feature.ID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "feature is not offered for this model").
			WithDetails(map[string]any{"category": category, "feature_id": feature.ID})
	}

	next := make([]catalog.Feature, 0, len(*slot)+1)
	removed := false
	for _, f := range *slot {
		if f.ID == offered.ID {
			removed = true
			continue
		}
		next = append(next, f)
	}
	if !removed {
		next = append(next, offered)
	}
	*slot = next
	e.completion[category.Step()] = true
	return nil
}

// ComputeTotalPrice returns base price plus every active option and feature price.
func (e *Engine) ComputeTotalPrice() decimal.Decimal {
	total := e.catalog.Model.BasePrice
	for _, category := range enums.SingleSelectCategories() {
		if opt := e.selection.Single(category); opt != nil {
			total = total.Add(opt.AdditionalPrice)
		}
	}
	for _, f := range e.selection.Assistance {
		total = total.Add(f.AdditionalPrice)
	}
	for _, f := range e.selection.Comfort {
		total = total.Add(f.AdditionalPrice)
	}
	return total
}

// ComputeCompletionPercentage is round_half_up(100 * completed / StepCount).
func (e *Engine) ComputeCompletionPercentage() int {
	done := 0
	for _, step := range enums.AllSteps() {
		if e.completion[step] {
			done++
		}
	}
	return (200*done + enums.StepCount) / (2 * enums.StepCount)
}

// CanCheckout reports whether every step is complete.
func (e *Engine) CanCheckout() bool {
	return e.ComputeCompletionPercentage() == 100
}

// MarkVisited marks steps that are complete once reached. It reports whether the step
// qualifies; single-select steps only complete through a selection.
func (e *Engine) MarkVisited(step enums.Step) bool {
	if !step.CompletesOnVisit() {
		return false
	}
	e.completion[step] = true
	return true
}

// Completion returns a copy of the completion map with every step present.
func (e *Engine) Completion() map[enums.Step]bool {
	out := make(map[enums.Step]bool, enums.StepCount)
	for _, step := range enums.AllSteps() {
		out[step] = e.completion[step]
	}
	return out
}

// ResetAll clears every selection and the completion map.
func (e *Engine) ResetAll() {
	e.selection = emptySelection()
	e.completion = map[enums.Step]bool{}
}

// MonthlyPaymentFor prices the live total with the loan formula at the rate the
// leasing table offers for months.
func (e *Engine) MonthlyPaymentFor(months int) decimal.Decimal {
	opt := pricing.OptionFor(months)
	return pricing.MonthlyPaymentForLoan(e.ComputeTotalPrice(), months, opt.AnnualRatePercent)
}

// Snapshot converts the current state into a draft without id or timestamp.
func (e *Engine) Snapshot() drafts.Draft {
	model := e.catalog.Model
	d := drafts.Draft{
		Model: drafts.ModelRef{
			ID:        model.ID,
			Name:      model.Name,
			Brand:     model.Brand,
			BasePrice: model.BasePrice,
		},
		Engine:       optionRef(e.selection.Engine),
		Transmission: optionRef(e.selection.Transmission),
		Color:        optionRef(e.selection.Color),
		Rim:          optionRef(e.selection.Rim),
		Interior:     optionRef(e.selection.Interior),
		Assistance:   featureRefs(e.selection.Assistance),
		Comfort:      featureRefs(e.selection.Comfort),
		TotalPrice:   e.ComputeTotalPrice(),
	}
	for _, step := range enums.AllSteps() {
		if step.CompletesOnVisit() && e.completion[step] {
			d.CompletedSteps = append(d.CompletedSteps, step)
		}
	}
	return d
}

// StaleRef names a draft field that no longer matches the catalog.
type StaleRef struct {
	Category enums.OptionCategory `json:"category"`
	ID       uuid.UUID            `json:"id"`
	Name     string               `json:"name,omitempty"`
}

// AppliedDraft reports the draft fields that were skipped while applying.
type AppliedDraft struct {
	DraftID uuid.UUID  `json:"draft_id"`
	Skipped []StaleRef `json:"skipped"`
}

// Err combines the skipped fields into one STALE_REFERENCE error per field, or nil.
func (a AppliedDraft) Err() error {
	var combined error
	for _, ref := range a.Skipped {
		combined = multierr.Append(combined, pkgerrors.New(pkgerrors.CodeStale,
			fmt.Sprintf("%s option %s is no longer offered", ref.Category, ref.ID)))
	}
	return combined
}

// ApplyDraft replaces the current state with draft. References missing from the
// catalog are skipped and left unset; everything else is applied. Steps are marked for
// applied single selections, non-empty feature groups and the visited steps the draft
// recorded. A feature group emptied by stale references stays incomplete.
func (e *Engine) ApplyDraft(d drafts.Draft) (AppliedDraft, error) {
	if d.Model.ID != e.catalog.Model.ID {
		return AppliedDraft{}, pkgerrors.New(pkgerrors.CodeValidation, "draft belongs to another model").
			WithDetails(map[string]any{"draft_model_id": d.Model.ID, "model_id": e.catalog.Model.ID})
	}

	e.ResetAll()
	result := AppliedDraft{DraftID: d.ID, Skipped: []StaleRef{}}

	singles := []struct {
		category enums.OptionCategory
		ref      *drafts.OptionRef
	}{
		{enums.OptionCategoryEngine, d.Engine},
		{enums.OptionCategoryTransmission, d.Transmission},
		{enums.OptionCategoryColor, d.Color},
		{enums.OptionCategoryRim, d.Rim},
		{enums.OptionCategoryInterior, d.Interior},
	}
	for _, single := range singles {
		if single.ref == nil {
			continue
		}
		offered, ok := e.catalog.Lookup(single.category, single.ref.ID)
		if !ok {
			result.Skipped = append(result.Skipped, StaleRef{Category: single.category, ID: single.ref.ID, Name: single.ref.Name})
			continue
		}
		*e.selection.singleSlot(single.category) = &offered
		e.completion[single.category.Step()] = true
	}

	groups := []struct {
		category enums.OptionCategory
		refs     []drafts.OptionRef
	}{
		{enums.OptionCategoryAssistance, d.Assistance},
		{enums.OptionCategoryComfort, d.Comfort},
	}
	emptied := map[enums.Step]bool{}
	for _, group := range groups {
		slot := e.selection.featureSlot(group.category)
		for _, ref := range group.refs {
			offered, ok := e.catalog.LookupFeature(group.category, ref.ID)
			if !ok {
				result.Skipped = append(result.Skipped, StaleRef{Category: group.category, ID: ref.ID, Name: ref.Name})
				continue
			}
			if e.selection.HasFeature(group.category, offered.ID) {
				continue
			}
			*slot = append(*slot, offered)
		}
		if len(*slot) > 0 {
			e.completion[group.category.Step()] = true
		} else if len(group.refs) > 0 {
			emptied[group.category.Step()] = true
		}
	}

	for _, step := range d.CompletedSteps {
		if step.CompletesOnVisit() && !emptied[step] {
			e.completion[step] = true
		}
	}
	return result, nil
}

func optionRef(opt *catalog.Option) *drafts.OptionRef {
	if opt == nil {
		return nil
	}
	return &drafts.OptionRef{ID: opt.ID, Name: opt.Name, AdditionalPrice: opt.AdditionalPrice}
}

func featureRefs(features []catalog.Feature) []drafts.OptionRef {
	out := make([]drafts.OptionRef, 0, len(features))
	for _, f := range features {
		out = append(out, drafts.OptionRef{ID: f.ID, Name: f.Name, AdditionalPrice: f.AdditionalPrice})
	}
	return out
}
