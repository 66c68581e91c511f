package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/turboairmx/quotesync/internal/tracking"
	"github.com/turboairmx/quotesync/pkg/logger"
)

type stubImporter struct {
	links  []string
	result tracking.Result
	err    error
}

func (s *stubImporter) Run(_ context.Context, shareLink string) (tracking.Result, error) {
	s.links = append(s.links, shareLink)
	return s.result, s.err
}

type stubAlerter struct {
	causes []error
	at     []time.Time
	err    error
}

func (s *stubAlerter) SendImportAlert(_ context.Context, cause error, at time.Time) error {
	s.causes = append(s.causes, cause)
	s.at = append(s.at, at)
	return s.err
}

func TestTrackingImportJobSuccessSendsNoAlert(t *testing.T) {
	importer := &stubImporter{result: tracking.Result{RecordsImported: 4, Chunks: 1}}
	alerter := &stubAlerter{}
	job, err := NewTrackingImportJob(TrackingImportJobParams{Logger: logger.Nop(), Importer: importer, Alerter: alerter})
	require.NoError(t, err)
	require.Equal(t, "tracking_import", job.Name())

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, []string{""}, importer.links)
	require.Empty(t, alerter.causes)
}

func TestTrackingImportJobFailureAlerts(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	boom := errors.New("download failed")
	alerter := &stubAlerter{}
	job, err := NewTrackingImportJob(TrackingImportJobParams{
		Logger:   logger.Nop(),
		Importer: &stubImporter{err: boom},
		Alerter:  alerter,
		Now:      func() time.Time { return at },
	})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.ErrorIs(t, err, boom)
	require.Len(t, alerter.causes, 1)
	require.ErrorIs(t, alerter.causes[0], boom)
	require.True(t, alerter.at[0].Equal(at))
}

func TestTrackingImportJobAlertFailureKeepsImportError(t *testing.T) {
	boom := errors.New("parse failed")
	job, err := NewTrackingImportJob(TrackingImportJobParams{
		Logger:   logger.Nop(),
		Importer: &stubImporter{err: boom},
		Alerter:  &stubAlerter{err: errors.New("smtp down")},
	})
	require.NoError(t, err)
	require.ErrorIs(t, job.Run(context.Background()), boom)
}

func TestNewTrackingImportJobRequiresImporter(t *testing.T) {
	if _, err := NewTrackingImportJob(TrackingImportJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatalf("expected error without importer")
	}
}
