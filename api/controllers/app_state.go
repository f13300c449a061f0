package controllers

import (
	"net/http"

	"github.com/renewalhq/subtrackr-backend/api/responses"
	"github.com/renewalhq/subtrackr-backend/internal/settings"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
)

// AppState returns the bootstrap payload the frontend loads on start.
func AppState(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, err := svc.AppState(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}

// CompleteOnboarding marks onboarding as finished for the user.
func CompleteOnboarding(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		state, err := svc.CompleteOnboarding(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, state)
	}
}
