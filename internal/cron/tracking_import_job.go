package cron

import (
	"context"
	"errors"
	"time"

	"github.com/turboairmx/quotesync/internal/tracking"
	"github.com/turboairmx/quotesync/pkg/logger"
)

const trackingImportJobName = "tracking_import"

type trackingImporter interface {
	Run(ctx context.Context, shareLink string) (tracking.Result, error)
}

type importAlerter interface {
	SendImportAlert(ctx context.Context, cause error, at time.Time) error
}

// TrackingImportJobParams wires the scheduled spreadsheet import.
type TrackingImportJobParams struct {
	Logger   *logger.Logger
	Importer trackingImporter
	// Alerter is optional; without it failures are only logged.
	Alerter importAlerter
	Now     func() time.Time
}

type trackingImportJob struct {
	logg     *logger.Logger
	importer trackingImporter
	alerter  importAlerter
	now      func() time.Time
}

// NewTrackingImportJob builds the job that pulls the configured share link.
func NewTrackingImportJob(params TrackingImportJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Importer == nil {
		return nil, errors.New("tracking importer required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &trackingImportJob{
		logg:     params.Logger,
		importer: params.Importer,
		alerter:  params.Alerter,
		now:      now,
	}, nil
}

func (j *trackingImportJob) Name() string { return trackingImportJobName }

// Run imports using the configured link. On failure an alert email is sent
// and the import error is returned; a failed alert is only logged.
func (j *trackingImportJob) Run(ctx context.Context) error {
	result, err := j.importer.Run(ctx, "")
	if err != nil {
		j.alert(ctx, err)
		return err
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"records_imported": result.RecordsImported,
		"rows_skipped":     result.RowsSkipped,
		"chunks":           result.Chunks,
	}), "tracking import finished")
	return nil
}

func (j *trackingImportJob) alert(ctx context.Context, cause error) {
	if j.alerter == nil {
		return
	}
	if err := j.alerter.SendImportAlert(ctx, cause, j.now()); err != nil {
		j.logg.Error(ctx, "failed to send import failure alert", err)
		return
	}
	j.logg.Warn(ctx, "import failure alert sent")
}
