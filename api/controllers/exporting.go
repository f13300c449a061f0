package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/renewalhq/subtrackr-backend/api/responses"
	"github.com/renewalhq/subtrackr-backend/internal/exporting"
	pkgerrors "github.com/renewalhq/subtrackr-backend/pkg/errors"
	"github.com/renewalhq/subtrackr-backend/pkg/logger"
)

// Export streams the requested format as a file download rather than the
// usual success envelope.
func Export(svc exporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exporting service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		format := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "format")))
		switch format {
		case "csv":
			payload, err := svc.ExportCSV(ctx, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "subscriptions.csv"))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(payload))
		case "json":
			payload, err := svc.ExportJSON(ctx, userID)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "subscriptions.json"))
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(payload)
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "format must be csv or json"))
		}
	}
}

// ImportCSV ingests a CSV body and reports per-row results.
func ImportCSV(svc exporting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "exporting service unavailable"))
			return
		}

		userID, err := authedUserID(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ImportCSV(ctx, userID, r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
