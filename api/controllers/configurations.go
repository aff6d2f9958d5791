package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/configurator-backend/api/middleware"
	"github.com/angelmondragon/configurator-backend/api/responses"
	"github.com/angelmondragon/configurator-backend/api/validators"
	"github.com/angelmondragon/configurator-backend/internal/checkout"
	"github.com/angelmondragon/configurator-backend/internal/configurator"
	"github.com/angelmondragon/configurator-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

const (
	navigationGoTo = "goto"
	navigationNext = "next"
)

type createConfigurationRequest struct {
	ModelID string `json:"model_id" validate:"omitempty,uuid"`
	DraftID string `json:"draft_id" validate:"omitempty,uuid"`
}

type createConfigurationResponse struct {
	Session configurator.View           `json:"session"`
	Resume  *configurator.ResumeOutcome `json:"resume,omitempty"`
}

type loadModelRequest struct {
	ModelID string `json:"model_id" validate:"required,uuid"`
}

type loadModelResponse struct {
	Load    configurator.LoadResult `json:"load"`
	Session configurator.View       `json:"session"`
}

type selectionRequest struct {
	OptionID string `json:"option_id" validate:"required,uuid"`
}

type featureRequest struct {
	FeatureID *string `json:"feature_id" validate:"omitempty,uuid"`
}

type navigationRequest struct {
	Action  string `json:"action" validate:"required,oneof=goto next"`
	Section string `json:"section"`
	Step    string `json:"step"`
}

type termRequest struct {
	Months int `json:"months" validate:"required"`
}

type resetResponse struct {
	configurator.ResetOutcome
	Session configurator.View `json:"session"`
}

type checkoutRequest struct {
	CustomerID    string `json:"customer_id" validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash loan leasing"`
	Months        int    `json:"months" validate:"min=0"`
}

// ConfigurationCreate opens a session for a model, or resumes a saved draft.
func ConfigurationCreate(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createConfigurationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := configurator.CreateInput{ClientID: middleware.ClientIDFromContext(r.Context())}
		if req.ModelID != "" {
			input.ModelID = uuid.MustParse(req.ModelID)
		}
		if req.DraftID != "" {
			input.DraftID = uuid.MustParse(req.DraftID)
		}

		session, resume, err := sessions.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, createConfigurationResponse{
			Session: session.View(),
			Resume:  resume,
		})
	}
}

// ConfigurationGet returns the current state of a session.
func ConfigurationGet(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		responses.WriteSuccess(w, session.View())
	})
}

// ConfigurationDelete closes a session. Saved drafts are kept.
func ConfigurationDelete(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !sessions.Close(id) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "configuration session not found"))
			return
		}
		responses.WriteNoContent(w)
	}
}

// ConfigurationLoadModel switches the session to another model.
func ConfigurationLoadModel(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		var req loadModelRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := session.LoadModel(ctx, uuid.MustParse(req.ModelID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, loadModelResponse{Load: result, Session: session.View()})
	})
}

// ConfigurationSelect sets a single-select option.
func ConfigurationSelect(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		category, err := parseCategory(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !category.IsSingleSelect() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category is not single-select").
				WithDetails(map[string]any{"category": category}))
			return
		}
		var req selectionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := session.SelectOption(category, uuid.MustParse(req.OptionID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	})
}

// ConfigurationToggleFeature toggles one feature; a null feature_id clears the group.
func ConfigurationToggleFeature(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		category, err := parseCategory(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !category.IsMultiSelect() {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category is not a feature group").
				WithDetails(map[string]any{"category": category}))
			return
		}
		var req featureRequest
		if err := validators.DecodeOptionalJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var featureID *uuid.UUID
		if req.FeatureID != nil {
			id := uuid.MustParse(*req.FeatureID)
			featureID = &id
		}
		view, err := session.ToggleFeature(category, featureID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	})
}

// ConfigurationNavigate jumps to a section/step or advances to the next step.
func ConfigurationNavigate(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		var req navigationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var (
			view configurator.View
			err  error
		)
		switch req.Action {
		case navigationNext:
			view, err = session.Next()
		case navigationGoTo:
			var section enums.Section
			var step enums.Step
			section, err = enums.ParseSection(strings.TrimSpace(req.Section))
			if err != nil {
				err = pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid section")
				break
			}
			if raw := strings.TrimSpace(req.Step); raw != "" {
				if step, err = enums.ParseStep(raw); err != nil {
					err = pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid step")
					break
				}
			}
			view, err = session.GoTo(section, step)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	})
}

// ConfigurationSelectTerm chooses the financing term shown with the price.
func ConfigurationSelectTerm(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		var req termRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		view, err := session.SelectTerm(ctx, req.Months)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	})
}

// ConfigurationReset clears every selection and deletes the active draft.
func ConfigurationReset(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		outcome, err := session.Reset(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resetResponse{ResetOutcome: outcome, Session: session.View()})
	})
}

// ConfigurationSaveDraft persists the session. A failed save is reported with a
// warning and status 200; a successful one with 201.
func ConfigurationSaveDraft(sessions *configurator.Manager, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		outcome, err := session.SaveDraft(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if !outcome.Saved {
			responses.WriteSuccess(w, outcome)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, outcome)
	})
}

// ConfigurationCheckout submits the configured vehicle as an order.
func ConfigurationCheckout(sessions *configurator.Manager, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return withSession(sessions, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session) {
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		var req checkoutRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Checkout(ctx, session, checkout.CheckoutInput{
			CustomerID:    uuid.MustParse(req.CustomerID),
			PaymentMethod: enums.PaymentMethod(req.PaymentMethod),
			Months:        req.Months,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	})
}

type sessionHandler func(ctx context.Context, w http.ResponseWriter, r *http.Request, session *configurator.Session)

func withSession(sessions *configurator.Manager, logg *logger.Logger, next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sessions == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "configurator unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "sessionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithSessionID(ctx, id.String())
		}
		session, err := sessions.Get(id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		next(ctx, w, r.WithContext(ctx), session)
	}
}

func parseCategory(r *http.Request) (enums.OptionCategory, error) {
	category, err := enums.ParseOptionCategory(strings.TrimSpace(chi.URLParam(r, "category")))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return category, nil
}
