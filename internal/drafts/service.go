package drafts

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/metrics"
	"github.com/google/uuid"
)

// Service is the persistence boundary for drafts. It never checks business rules; store
// failures surface as retryable DEPENDENCY_ERROR values.
type Service interface {
	Save(ctx context.Context, draft Draft) (uuid.UUID, error)
	LoadByID(ctx context.Context, id uuid.UUID) (*Draft, bool, error)
	LoadAllForModel(ctx context.Context, modelID uuid.UUID) ([]Draft, error)
	ListAll(ctx context.Context) ([]Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	store   Store
	metrics *metrics.ConfiguratorMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService wraps store. metrics and logg may be nil.
func NewService(store Store, m *metrics.ConfiguratorMetrics, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, errors.New("draft store required")
	}
	return &service{
		store:   store,
		metrics: m,
		logg:    logg,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Save upserts draft and returns its id. A draft without an id gets a new one, so each
// first save creates a separate draft; re-saving with the same id overwrites it.
func (s *service) Save(ctx context.Context, draft Draft) (uuid.UUID, error) {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	draft.SavedAt = s.now()

	if err := s.store.Put(ctx, draft); err != nil {
		s.metrics.DraftSaved(metrics.ResultFailure)
		s.logError(ctx, draft.ID, "draft.save_failed", err)
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save draft")
	}
	s.metrics.DraftSaved(metrics.ResultSuccess)
	return draft.ID, nil
}

// LoadByID reports found=false for a missing draft instead of an error.
func (s *service) LoadByID(ctx context.Context, id uuid.UUID) (*Draft, bool, error) {
	draft, err := s.store.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.logError(ctx, id, "draft.load_failed", err)
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}
	return &draft, true, nil
}

func (s *service) LoadAllForModel(ctx context.Context, modelID uuid.UUID) ([]Draft, error) {
	list, err := s.store.ListByModel(ctx, modelID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drafts for model")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context) ([]Draft, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drafts")
	}
	return list, nil
}

// Delete is a no-op for unknown ids.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logError(ctx, id, "draft.delete_failed", err)
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete draft")
	}
	return nil
}

func (s *service) logError(ctx context.Context, id uuid.UUID, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithDraftID(ctx, id.String()), msg, err)
}
