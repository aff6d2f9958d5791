package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/configurator-backend/api/responses"
	"github.com/angelmondragon/configurator-backend/api/validators"
	"github.com/angelmondragon/configurator-backend/internal/customers"
	pkgerrors "github.com/angelmondragon/configurator-backend/pkg/errors"
	"github.com/angelmondragon/configurator-backend/pkg/logger"
)

const maxVerificationWait = 60 * time.Second

// VerificationWatcher starts a background verification poll.
type VerificationWatcher interface {
	Start(ctx context.Context, customerID uuid.UUID, onVerified func()) *customers.Watch
}

type customerRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

type confirmRequest struct {
	Code string `json:"code" validate:"required,numeric,min=4,max=12"`
}

type verificationStatus struct {
	CustomerID uuid.UUID `json:"customer_id"`
	Verified   bool      `json:"verified"`
}

// CustomerResolve returns the customer for an email, creating it on first use.
func CustomerResolve(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}
		var req customerRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := svc.Resolve(r.Context(), customers.ResolveInput{
			Email:     req.Email,
			FirstName: validators.SanitizeString(req.FirstName, 100),
			LastName:  validators.SanitizeString(req.LastName, 100),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	}
}

func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return withCustomer(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
		customer, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, customer)
	})
}

// CustomerIssueVerification sends a new verification code by email.
func CustomerIssueVerification(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return withCustomer(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
		issued, err := svc.IssueVerification(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, issued)
	})
}

// CustomerConfirmVerification checks a code and marks the email verified.
func CustomerConfirmVerification(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return withCustomer(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
		var req confirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.Verify(ctx, id, req.Code); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, verificationStatus{CustomerID: id, Verified: true})
	})
}

// CustomerVerificationStatus reports whether the email is verified. With ?wait= it
// long-polls until verification, the wait elapses, or the client goes away.
func CustomerVerificationStatus(svc customers.Service, poller VerificationWatcher, logg *logger.Logger) http.HandlerFunc {
	return withCustomer(svc, logg, func(ctx context.Context, w http.ResponseWriter, r *http.Request, id uuid.UUID) {
		wait, err := validators.ParseQueryDuration(r, "wait", 0, maxVerificationWait)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		verified, err := svc.IsVerified(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if verified || wait == 0 || poller == nil {
			responses.WriteSuccess(w, verificationStatus{CustomerID: id, Verified: verified})
			return
		}

		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		watch := poller.Start(waitCtx, id, nil)
		<-watch.Done()
		if ctx.Err() != nil {
			return
		}
		if err := watch.Err(); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, verificationStatus{CustomerID: id, Verified: watch.Verified()})
	})
}

type customerHandler func(ctx context.Context, w http.ResponseWriter, r *http.Request, id uuid.UUID)

func withCustomer(svc customers.Service, logg *logger.Logger, next customerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer service unavailable"))
			return
		}
		id, err := validators.ParseUUIDParam(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCustomerID(ctx, id.String())
		}
		next(ctx, w, r.WithContext(ctx), id)
	}
}
