package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
	"github.com/angelmondragon/configurator-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
)

// Service exposes catalog reads to the configurator and the HTTP layer.
type Service interface {
	ListModels(ctx context.Context) ([]Model, error)
	GetModel(ctx context.Context, id uuid.UUID) (*Model, error)
	LoadForModel(ctx context.Context, modelID uuid.UUID) (*Catalog, error)
}

type service struct {
	fetcher Fetcher
	metrics *metrics.ConfiguratorMetrics
	logg    *logger.Logger
}

// NewService builds a catalog service over fetcher. metrics and logg may be nil.
func NewService(fetcher Fetcher, m *metrics.ConfiguratorMetrics, logg *logger.Logger) (Service, error) {
	if fetcher == nil {
		return nil, errors.New("catalog fetcher required")
	}
	return &service{fetcher: fetcher, metrics: m, logg: logg}, nil
}

func (s *service) ListModels(ctx context.Context) ([]Model, error) {
	list, err := s.fetcher.FetchModels(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list models")
	}
	return list, nil
}

func (s *service) GetModel(ctx context.Context, id uuid.UUID) (*Model, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model id is required")
	}
	model, err := s.fetcher.FetchModel(ctx, id)
	if errors.Is(err, ErrModelNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "model not found").WithDetails(map[string]any{"model_id": id})
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load model")
	}
	return model, nil
}

// LoadForModel fetches the model and every option list in parallel, keeps the options
// matching the model's brand (unbranded options are universal) and splits features
// into their groups. An unknown model is a NOT_FOUND error, never an empty catalog.
func (s *service) LoadForModel(ctx context.Context, modelID uuid.UUID) (*Catalog, error) {
	start := time.Now()
	catalog, err := s.load(ctx, modelID)

	outcome := metrics.OutcomeLoaded
	switch {
	case pkgerrors.IsCode(err, pkgerrors.CodeNotFound):
		outcome = metrics.OutcomeNotFound
	case err != nil:
		outcome = metrics.OutcomeFailed
	}
	s.metrics.ObserveCatalogLoad(outcome, time.Since(start))

	if err != nil && outcome == metrics.OutcomeFailed && s.logg != nil {
		s.logg.Error(s.logg.WithModelID(ctx, modelID.String()), "catalog.load_failed", err)
	}
	return catalog, err
}

func (s *service) load(ctx context.Context, modelID uuid.UUID) (*Catalog, error) {
	model, err := s.GetModel(ctx, modelID)
	if err != nil {
		return nil, err
	}

	var (
		engines, transmissions, colors, rims, interiors []Option
		features                                        []Feature
	)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	fetchInto := func(dst *[]Option, fetch func(context.Context) ([]Option, error)) {
		p.Go(func(ctx context.Context) error {
			list, err := fetch(ctx)
			if err != nil {
				return err
			}
			*dst = list
			return nil
		})
	}
	fetchInto(&engines, s.fetcher.FetchEngines)
	fetchInto(&transmissions, s.fetcher.FetchTransmissions)
	fetchInto(&colors, s.fetcher.FetchColors)
	fetchInto(&rims, s.fetcher.FetchRims)
	fetchInto(&interiors, s.fetcher.FetchInteriors)
	p.Go(func(ctx context.Context) error {
		list, err := s.fetcher.FetchFeatures(ctx)
		if err != nil {
			return err
		}
		features = list
		return nil
	})
	if err := p.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog options")
	}

	catalog := &Catalog{
		Model:         *model,
		Engines:       forBrand(engines, model.Brand),
		Transmissions: forBrand(transmissions, model.Brand),
		Colors:        forBrand(colors, model.Brand),
		Rims:          forBrand(rims, model.Brand),
		Interiors:     forBrand(interiors, model.Brand),
		Assistance:    []Feature{},
		Comfort:       []Feature{},
	}
	for _, feature := range features {
		if !brandMatches(feature.Brand, model.Brand) {
			continue
		}
		switch feature.FeatureCategory {
		case enums.FeatureCategoryAssistance:
			catalog.Assistance = append(catalog.Assistance, feature)
		case enums.FeatureCategoryComfort:
			catalog.Comfort = append(catalog.Comfort, feature)
		}
	}
	return catalog, nil
}

func forBrand(options []Option, brand string) []Option {
	out := make([]Option, 0, len(options))
	for _, opt := range options {
		if brandMatches(opt.Brand, brand) {
			out = append(out, opt)
		}
	}
	return out
}

func brandMatches(optionBrand, modelBrand string) bool {
	optionBrand = strings.TrimSpace(optionBrand)
	return optionBrand == "" || strings.EqualFold(optionBrand, strings.TrimSpace(modelBrand))
}
