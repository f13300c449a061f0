package controllers

import (
	"net/http"

	"github.com/renewalhq/subtrackr-backend/api/responses"
	"github.com/renewalhq/subtrackr-backend/internal/savings"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
)

// SavingsSummary returns the realized savings from cancelled subscriptions.
func SavingsSummary(svc savings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "savings service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.Savings(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// SpendingSummary returns active spend totals and the category breakdown.
func SpendingSummary(svc savings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "savings service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		summary, err := svc.Spending(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
