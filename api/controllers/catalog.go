package controllers

import (
	"net/http"

	"github.com/angelmondragon/configurator-backend/api/responses"
	"github.com/angelmondragon/configurator-backend/api/validators"
	"github.com/angelmondragon/configurator-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

// CatalogModels lists every vehicle model that can be configured.
func CatalogModels(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		models, err := svc.ListModels(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, models)
	}
}

// CatalogModel returns one model with the options offered for it.
func CatalogModel(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		modelID, err := validators.ParseUUIDParam(r, "modelId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithModelID(ctx, modelID.String())
		}
		cat, err := svc.LoadForModel(ctx, modelID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, cat)
	}
}
