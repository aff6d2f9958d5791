package configurator

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/configurator-backend/internal/catalog"
	"github.com/angelmondragon/configurator-backend/internal/drafts"
	"github.com/angelmondragon/configurator-backend/internal/pricing"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogLoader resolves the full catalog for a model.
type CatalogLoader interface {
	LoadForModel(ctx context.Context, modelID uuid.UUID) (*catalog.Catalog, error)
}

// Session owns one configuration: the engine for the loaded model, the navigator,
// the active draft id and the chosen financing term. All methods are safe for
// concurrent use; mutations are applied one at a time.
type Session struct {
	id      uuid.UUID
	scope   string
	loader  CatalogLoader
	drafts  drafts.Service
	prefs   pricing.TermPreferences
	metrics *metrics.ConfiguratorMetrics
	logg    *logger.Logger

	mu         sync.Mutex
	generation uint64
	resets     uint64
	pending    uuid.UUID
	engine     *Engine
	nav        *Navigator
	draftID    uuid.UUID
	termMonths int
	closed     bool
	touchedAt  time.Time
}

// LoadResult is the typed outcome of LoadModel.
type LoadResult struct {
	ModelID    uuid.UUID `json:"model_id"`
	Superseded bool      `json:"superseded"`
}

// SaveOutcome reports a draft save. A failed save leaves the session usable and
// carries a user-facing warning instead of an error.
type SaveOutcome struct {
	DraftID    uuid.UUID `json:"draft_id,omitempty"`
	Saved      bool      `json:"saved"`
	Superseded bool      `json:"superseded,omitempty"`
	Warning    string    `json:"warning,omitempty"`
}

// ResumeOutcome reports a resumed draft and the fields skipped as stale.
type ResumeOutcome struct {
	AppliedDraft
	Superseded bool `json:"superseded"`
}

// ResetOutcome reports the reset and the deletion of the active draft.
type ResetOutcome struct {
	DeletedDraftID uuid.UUID `json:"deleted_draft_id,omitempty"`
	Warning        string    `json:"warning,omitempty"`
}

// View is a consistent read of the session state.
type View struct {
	SessionID            uuid.UUID           `json:"session_id"`
	Model                *catalog.Model      `json:"model,omitempty"`
	Selection            Selection           `json:"selection"`
	TotalPrice           decimal.Decimal     `json:"total_price"`
	CompletionPercentage int                 `json:"completion_percentage"`
	Completion           map[enums.Step]bool `json:"completion"`
	Position             Position            `json:"position"`
	IsTerminal           bool                `json:"is_terminal"`
	CanCheckout          bool                `json:"can_checkout"`
	TermMonths           int                 `json:"term_months"`
	MonthlyPayment       decimal.Decimal     `json:"monthly_payment"`
	LeasingPayment       string              `json:"leasing_payment"`
	ActiveDraftID        *uuid.UUID          `json:"active_draft_id,omitempty"`
}

// CheckoutState is what checkout needs from the session, read atomically.
type CheckoutState struct {
	ModelID              uuid.UUID
	Draft                drafts.Draft
	TotalPrice           decimal.Decimal
	CompletionPercentage int
	CanCheckout          bool
	TermMonths           int

	resets uint64
}

const discardedByReset = "draft save discarded by a later reset"

var errNoModel = pkgerrors.New(pkgerrors.CodeStateConflict, "no model loaded")

func (s *Session) ID() uuid.UUID {
	return s.id
}

// LoadModel fetches the catalog for modelID and replaces the engine. A load started
// later supersedes this one: its result is then discarded and reported as superseded.
func (s *Session) LoadModel(ctx context.Context, modelID uuid.UUID) (LoadResult, error) {
	_, result, err := s.loadModel(ctx, modelID)
	return result, err
}

func (s *Session) loadModel(ctx context.Context, modelID uuid.UUID) (uint64, LoadResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, LoadResult{}, errSessionClosed
	}
	s.generation++
	gen := s.generation
	s.pending = modelID
	s.mu.Unlock()

	start := time.Now()
	loaded, err := s.loader.LoadForModel(ctx, modelID)

	s.mu.Lock()
	defer s.mu.Unlock()

	result := LoadResult{ModelID: modelID}
	if s.closed || gen != s.generation || s.pending != modelID || (loaded != nil && loaded.Model.ID != s.pending) {
		result.Superseded = true
		s.metrics.ObserveCatalogLoad(metrics.OutcomeSuperseded, time.Since(start))
		s.logInfo(ctx, modelID, "catalog.load_superseded")
		return gen, result, nil
	}
	if err != nil {
		return gen, result, err
	}

	engine, err := NewEngine(loaded)
	if err != nil {
		return gen, result, err
	}
	s.engine = engine
	s.nav.Reset()
	s.draftID = uuid.Nil
	s.touch()
	return gen, result, nil
}

// SelectOption sets the single-select option with optionID.
func (s *Session) SelectOption(category enums.OptionCategory, optionID uuid.UUID) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return View{}, err
	}
	if err := s.engine.SetSingleSelection(category, catalog.Option{ID: optionID, Category: category}); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(), nil
}

// ToggleFeature toggles featureID in the category's set; nil clears the set.
func (s *Session) ToggleFeature(category enums.OptionCategory, featureID *uuid.UUID) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return View{}, err
	}
	var feature *catalog.Feature
	if featureID != nil {
		feature = &catalog.Feature{Option: catalog.Option{ID: *featureID, Category: category}}
	}
	if err := s.engine.ToggleMultiSelection(category, feature); err != nil {
		return View{}, err
	}
	s.touch()
	return s.viewLocked(), nil
}

// GoTo moves to section/step and marks visit-complete steps.
func (s *Session) GoTo(section enums.Section, step enums.Step) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return View{}, err
	}
	pos, err := s.nav.GoToSection(section, step)
	if err != nil {
		return View{}, err
	}
	s.engine.MarkVisited(pos.Step)
	s.touch()
	return s.viewLocked(), nil
}

// Next advances the navigator. At the terminal step the position is unchanged.
func (s *Session) Next() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return View{}, err
	}
	if pos, moved := s.nav.AdvanceToNext(); moved {
		s.engine.MarkVisited(pos.Step)
	}
	s.touch()
	return s.viewLocked(), nil
}

// SelectTerm chooses the financing term and remembers it for the session's scope.
// Preference failures are logged only.
func (s *Session) SelectTerm(ctx context.Context, months int) (View, error) {
	if !pricing.IsOfferedTerm(months) {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "financing term is not offered").
			WithDetails(map[string]any{"months": months})
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return View{}, errSessionClosed
	}
	s.termMonths = months
	s.touch()
	view := s.viewLocked()
	scope := s.scope
	s.mu.Unlock()

	if s.prefs != nil {
		if err := s.prefs.Remember(ctx, scope, months); err != nil && s.logg != nil {
			s.logg.WarnErr(s.logg.WithSessionID(ctx, s.id.String()), "term_preference.save_failed", err)
		}
	}
	return view, nil
}

// SaveDraft persists a snapshot. The first save creates a draft; later saves overwrite
// it. A store failure becomes a warning on the outcome. A reset that lands while the
// write is in flight wins: the written draft is deleted and the outcome is superseded.
func (s *Session) SaveDraft(ctx context.Context) (SaveOutcome, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return SaveOutcome{}, err
	}
	snapshot := s.engine.Snapshot()
	resets := s.resets
	s.mu.Unlock()

	return s.save(ctx, snapshot, resets)
}

// SaveState persists the snapshot captured by CheckoutState, so the saved draft is the
// exact configuration that was checked out.
func (s *Session) SaveState(ctx context.Context, state CheckoutState) (SaveOutcome, error) {
	return s.save(ctx, state.Draft, state.resets)
}

func (s *Session) save(ctx context.Context, snapshot drafts.Draft, resets uint64) (SaveOutcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SaveOutcome{}, errSessionClosed
	}
	if resets != s.resets {
		s.mu.Unlock()
		return SaveOutcome{Superseded: true, Warning: discardedByReset}, nil
	}
	snapshot.ID = s.draftID
	gen := s.generation
	s.mu.Unlock()

	id, err := s.drafts.Save(ctx, snapshot)
	if err != nil {
		return SaveOutcome{Saved: false, Warning: warningFor("draft could not be saved", err)}, nil
	}

	s.mu.Lock()
	reset := resets != s.resets
	if !reset && gen == s.generation && !s.closed {
		s.draftID = id
	}
	s.mu.Unlock()
	if !reset {
		return SaveOutcome{DraftID: id, Saved: true}, nil
	}

	outcome := SaveOutcome{Superseded: true, Warning: discardedByReset}
	if err := s.drafts.Delete(ctx, id); err != nil {
		outcome.Warning = warningFor("draft discarded by reset could not be deleted", err)
	}
	s.logInfo(ctx, snapshot.Model.ID, "draft.save_discarded_by_reset")
	return outcome, nil
}

// ResumeDraft loads the draft's model and applies the draft. Stale references are
// skipped and reported.
func (s *Session) ResumeDraft(ctx context.Context, draftID uuid.UUID) (ResumeOutcome, error) {
	draft, found, err := s.drafts.LoadByID(ctx, draftID)
	if err != nil {
		return ResumeOutcome{}, err
	}
	if !found {
		return ResumeOutcome{}, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found").
			WithDetails(map[string]any{"draft_id": draftID})
	}

	gen, loaded, err := s.loadModel(ctx, draft.Model.ID)
	if err != nil {
		return ResumeOutcome{}, err
	}
	if loaded.Superseded {
		return ResumeOutcome{Superseded: true}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.closed {
		return ResumeOutcome{Superseded: true}, nil
	}
	applied, err := s.engine.ApplyDraft(*draft)
	if err != nil {
		return ResumeOutcome{}, err
	}
	s.draftID = draft.ID
	s.touch()
	if stale := applied.Err(); stale != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithSessionID(ctx, s.id.String()), "draft.stale_fields_skipped: "+stale.Error())
	}
	return ResumeOutcome{AppliedDraft: applied}, nil
}

// Reset clears the configuration and deletes the active draft. A failed delete is
// reported as a warning; the in-memory reset always happens.
func (s *Session) Reset(ctx context.Context) (ResetOutcome, error) {
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return ResetOutcome{}, err
	}
	s.engine.ResetAll()
	s.nav.Reset()
	s.resets++
	draftID := s.draftID
	s.draftID = uuid.Nil
	s.touch()
	s.mu.Unlock()

	if draftID == uuid.Nil {
		return ResetOutcome{}, nil
	}
	if err := s.drafts.Delete(ctx, draftID); err != nil {
		return ResetOutcome{Warning: warningFor("saved draft could not be deleted", err)}, nil
	}
	return ResetOutcome{DeletedDraftID: draftID}, nil
}

// View returns the current state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// CheckoutState captures the data checkout needs in one read.
func (s *Session) CheckoutState() (CheckoutState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return CheckoutState{}, err
	}
	snapshot := s.engine.Snapshot()
	snapshot.ID = s.draftID
	return CheckoutState{
		ModelID:              s.engine.Model().ID,
		Draft:                snapshot,
		TotalPrice:           s.engine.ComputeTotalPrice(),
		CompletionPercentage: s.engine.ComputeCompletionPercentage(),
		CanCheckout:          s.engine.CanCheckout(),
		TermMonths:           s.termMonths,
		resets:               s.resets,
	}, nil
}

func (s *Session) viewLocked() View {
	view := View{
		SessionID:  s.id,
		Selection:  emptySelection(),
		Completion: map[enums.Step]bool{},
		Position:   s.nav.Current(),
		IsTerminal: s.nav.IsTerminal(),
		TermMonths: s.termMonths,
	}
	if s.draftID != uuid.Nil {
		id := s.draftID
		view.ActiveDraftID = &id
	}
	if s.engine == nil {
		view.TotalPrice = decimal.Zero
		view.MonthlyPayment = decimal.Zero
		view.LeasingPayment = pricing.LeasingMonthlyPayment(s.termMonths, decimal.Zero)
		return view
	}

	model := s.engine.Model()
	total := s.engine.ComputeTotalPrice()
	view.Model = &model
	view.Selection = s.engine.Selection()
	view.TotalPrice = total
	view.CompletionPercentage = s.engine.ComputeCompletionPercentage()
	view.Completion = s.engine.Completion()
	view.CanCheckout = view.CompletionPercentage == 100
	view.MonthlyPayment = s.engine.MonthlyPaymentFor(s.termMonths)
	view.LeasingPayment = pricing.LeasingMonthlyPayment(s.termMonths, total)
	return view
}

func (s *Session) ready() error {
	if s.closed {
		return errSessionClosed
	}
	if s.engine == nil {
		return errNoModel
	}
	return nil
}

func (s *Session) touch() {
	s.touchedAt = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}

func (s *Session) logInfo(ctx context.Context, modelID uuid.UUID, msg string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithSessionID(ctx, s.id.String())
	s.logg.Info(s.logg.WithModelID(ctx, modelID.String()), msg)
}

func warningFor(prefix string, err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return prefix + ": " + typed.Message()
	}
	return prefix
}
