package controllers

import (
	"context"
	"net/http"

	"github.com/turboairmx/quotesync/api/responses"
	"github.com/turboairmx/quotesync/api/validators"
	"github.com/turboairmx/quotesync/internal/tracking"
	"github.com/turboairmx/quotesync/pkg/logger"
)

const maxImportLogs = 500

type trackingService interface {
	Run(ctx context.Context, shareLink string) (tracking.Result, error)
	ListImportLogs(ctx context.Context, limit int) ([]tracking.LogEntry, error)
}

type importTrackingBody struct {
	ShareLink string `json:"shareLink" validate:"omitempty,url"`
}

// ImportTracking runs the spreadsheet import on demand. An empty body uses
// the configured share link.
func ImportTracking(svc trackingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body importTrackingBody
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		result, err := svc.Run(r.Context(), body.ShareLink)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ImportLogs(svc trackingService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxImportLogs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logs, err := svc.ListImportLogs(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"logs": logs})
	}
}
