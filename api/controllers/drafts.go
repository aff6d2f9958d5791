package controllers

import (
	"net/http"

	"github.com/angelmondragon/configurator-backend/api/responses"
	"github.com/angelmondragon/configurator-backend/api/validators"
	"github.com/angelmondragon/configurator-backend/internal/drafts"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

type draftListResponse struct {
	Items []drafts.Draft `json:"items"`
}

// DraftList lists saved drafts newest first, optionally for one model.
func DraftList(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drafts service unavailable"))
			return
		}
		modelID, err := validators.ParseQueryUUID(r, "model_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var list []drafts.Draft
		if modelID != nil {
			list, err = svc.LoadAllForModel(r.Context(), *modelID)
		} else {
			list, err = svc.ListAll(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if list == nil {
			list = []drafts.Draft{}
		}
		responses.WriteSuccess(w, draftListResponse{Items: list})
	}
}

func DraftGet(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drafts service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "draftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		draft, found, err := svc.LoadByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "draft not found"))
			return
		}
		responses.WriteSuccess(w, draft)
	}
}

// DraftDelete removes a draft. Deleting an unknown draft succeeds.
func DraftDelete(svc drafts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "drafts service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "draftId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNoContent(w)
	}
}
