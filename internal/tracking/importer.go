// Package tracking imports the shipment tracking spreadsheet into /tracking.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/turboairmx/quotesync/internal/batch"
	"github.com/turboairmx/quotesync/internal/models"
	"github.com/turboairmx/quotesync/pkg/config"
	"github.com/turboairmx/quotesync/pkg/enums"
	pkgerrors "github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

const (
	Root     = "tracking"
	LogsRoot = "import_logs"

	defaultLogLimit = 50
)

// Fetcher retrieves the raw workbook.
type Fetcher interface {
	Fetch(ctx context.Context, shareLink string) ([]byte, error)
}

type ImporterParams struct {
	Store   treestore.Store
	Sync    *batch.Synchronizer
	Fetcher Fetcher
	Config  config.ImportConfig
	Logger  *logger.Logger
	Now     func() time.Time
}

type Importer struct {
	store   treestore.Store
	sync    *batch.Synchronizer
	fetcher Fetcher
	cfg     config.ImportConfig
	logg    *logger.Logger
	now     func() time.Time
}

func NewImporter(params ImporterParams) (*Importer, error) {
	if params.Store == nil || params.Sync == nil {
		return nil, fmt.Errorf("store and synchronizer required")
	}
	fetcher := params.Fetcher
	if fetcher == nil {
		fetcher = NewDownloader(params.Config.DownloadTimeout)
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Importer{
		store:   params.Store,
		sync:    params.Sync,
		fetcher: fetcher,
		cfg:     params.Config,
		logg:    logg,
		now:     now,
	}, nil
}

// Result describes a completed import.
type Result struct {
	RecordsImported int       `json:"records_imported"`
	RowsSkipped     int       `json:"rows_skipped"`
	Chunks          int       `json:"chunks"`
	Timestamp       time.Time `json:"timestamp"`
}

// Run downloads, parses and writes the spreadsheet. shareLink overrides the
// configured link when set. Every attempt, failed or not, leaves an import log.
func (i *Importer) Run(ctx context.Context, shareLink string) (Result, error) {
	started := i.now()
	link := strings.TrimSpace(shareLink)
	if link == "" {
		link = strings.TrimSpace(i.cfg.ShareLink)
	}
	if link == "" {
		return Result{}, pkgerrors.New(pkgerrors.CodeValidation, "no share link configured")
	}

	ctx = i.logg.WithField(ctx, "import_type", models.ImportTypeTracking)
	i.logg.Info(ctx, "tracking import started")

	res, err := i.run(ctx, link, started)
	entry := models.ImportLog{
		Type:         models.ImportTypeTracking,
		RecordsCount: res.RecordsImported,
		Timestamp:    i.now().UTC(),
		Status:       enums.ImportStatusSuccess,
		DurationMS:   time.Since(started).Milliseconds(),
	}
	if err != nil {
		entry.Status = enums.ImportStatusFailed
		entry.Error = err.Error()
		var commitErr *batch.CommitError
		if errors.As(err, &commitErr) && commitErr.SucceededChunks > 0 {
			entry.Status = enums.ImportStatusPartial
			entry.RecordsCount = commitErr.SucceededPaths
			chunk := commitErr.ChunkIndex
			entry.FailedChunk = &chunk
		}
	}
	if logErr := i.pushLog(ctx, entry); logErr != nil {
		i.logg.Error(ctx, "failed to write import log", logErr)
	}
	if err != nil {
		i.logg.Error(i.logg.WithField(ctx, "error_dump", pkgerrors.Dump(err)), "tracking import failed", err)
		return res, err
	}

	i.logg.Info(i.logg.WithFields(ctx, map[string]any{
		"records":     res.RecordsImported,
		"skipped":     res.RowsSkipped,
		"duration_ms": entry.DurationMS,
	}), "tracking import completed")
	return res, nil
}

func (i *Importer) run(ctx context.Context, link string, started time.Time) (Result, error) {
	data, err := i.fetcher.Fetch(ctx, link)
	if err != nil {
		return Result{}, err
	}
	records, skipped, err := Parse(data, i.cfg.HeaderRow)
	if err != nil {
		return Result{}, err
	}

	stamp := started.UTC()
	update := batch.NewUpdate(Root)
	for idx, rec := range records {
		rec.ImportedAt = stamp
		rec.LastUpdated = stamp
		value, err := models.ToValue(&rec)
		if err != nil {
			return Result{}, err
		}
		update.Set(treestore.Join(Root, RecordKey(rec, stamp, idx)), value)
	}

	commit, err := i.sync.Commit(ctx, update)
	if err != nil {
		return Result{RowsSkipped: skipped, Timestamp: stamp}, err
	}
	return Result{
		RecordsImported: update.Len(),
		RowsSkipped:     skipped,
		Chunks:          commit.Chunks,
		Timestamp:       stamp,
	}, nil
}

func (i *Importer) pushLog(ctx context.Context, entry models.ImportLog) error {
	value, err := models.ToValue(&entry)
	if err != nil {
		return err
	}
	_, err = i.store.Push(ctx, LogsRoot, value)
	return err
}

// LogEntry is an import log with its push key.
type LogEntry struct {
	ID string `json:"id"`
	models.ImportLog
}

// ListImportLogs returns up to limit logs, newest first. Push keys sort by
// creation time, so ordering by key is chronological.
func (i *Importer) ListImportLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = i.cfg.LogLimit
	}
	if limit <= 0 {
		limit = defaultLogLimit
	}
	children, err := i.store.Query(ctx, LogsRoot, treestore.Query{OrderByKey: true, LimitToLast: limit})
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(children))
	for _, child := range children {
		entry, err := models.ImportLogFromValue(child.Value)
		if err != nil {
			i.logg.Warn(i.logg.WithField(ctx, "log_id", child.Key), "skipping malformed import log")
			continue
		}
		out = append(out, LogEntry{ID: child.Key, ImportLog: entry})
	}
	slices.Reverse(out)
	return out, nil
}
