package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/turboairmx/quotesync/pkg/errors"
	"github.com/turboairmx/quotesync/pkg/logger"
	"github.com/turboairmx/quotesync/pkg/metrics"
	"github.com/turboairmx/quotesync/pkg/treestore"
)

const DefaultChunkSize = 100

type SynchronizerParams struct {
	Store     treestore.Store
	ChunkSize int
	Metrics   *metrics.BatchMetrics
	Logger    *logger.Logger
}

// Synchronizer commits updates chunk by chunk in generation order. Chunks
// already written stay written when a later chunk fails.
type Synchronizer struct {
	store     treestore.Store
	chunkSize int
	metrics   *metrics.BatchMetrics
	logg      *logger.Logger
}

func NewSynchronizer(params SynchronizerParams) (*Synchronizer, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	size := params.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Synchronizer{store: params.Store, chunkSize: size, metrics: params.Metrics, logg: logg}, nil
}

func (s *Synchronizer) ChunkSize() int {
	return s.chunkSize
}

// CommitResult summarizes a fully committed update.
type CommitResult struct {
	Chunks int
	Paths  int
}

// Plan validates u and splits it into the chunks Commit would send, without
// writing anything. Groups are never split; a group larger than the chunk
// size travels alone.
func (s *Synchronizer) Plan(u *Update) ([][]Entry, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	var (
		chunks  [][]Entry
		current []Entry
	)
	for _, g := range u.groups {
		if len(current) > 0 && len(current)+len(g) > s.chunkSize {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, g...)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks, nil
}

// Commit validates the whole update, then writes it chunk by chunk. On a
// chunk failure it stops and returns a *CommitError describing how far it got.
func (s *Synchronizer) Commit(ctx context.Context, u *Update) (CommitResult, error) {
	chunks, err := s.Plan(u)
	if err != nil {
		return CommitResult{}, err
	}
	if len(chunks) == 0 {
		return CommitResult{}, nil
	}

	started := time.Now()
	ctx = s.logg.WithFields(ctx, map[string]any{
		"batch_source": u.Source(),
		"total_chunks": len(chunks),
		"total_paths":  u.Len(),
	})

	written := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return CommitResult{Chunks: i, Paths: written}, s.fail(ctx, u, i, len(chunks), written, err)
		}
		updates := make(map[string]any, len(chunk))
		for _, e := range chunk {
			updates[e.Path] = e.Value
		}
		if err := s.store.Update(ctx, updates); err != nil {
			return CommitResult{Chunks: i, Paths: written}, s.fail(ctx, u, i, len(chunks), written, err)
		}
		written += len(chunk)
		s.metrics.ChunkCommitted(u.Source(), len(chunk))
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"chunk_index": i, "chunk_paths": len(chunk)}), "batch chunk committed")
	}

	s.logg.Info(s.logg.WithField(ctx, "duration_ms", time.Since(started).Milliseconds()), "batch committed")
	return CommitResult{Chunks: len(chunks), Paths: written}, nil
}

func (s *Synchronizer) fail(ctx context.Context, u *Update, index, total, written int, cause error) error {
	s.metrics.ChunkFailed(u.Source())
	commitErr := &CommitError{
		ChunkIndex:      index,
		SucceededChunks: index,
		SucceededPaths:  written,
		TotalChunks:     total,
		Cause:           cause,
	}
	s.logg.Error(s.logg.WithField(ctx, "error_dump", errors.Dump(commitErr)), "batch chunk failed", commitErr)
	return commitErr
}

// CommitError reports the chunk that failed. ChunkIndex is zero based, so
// SucceededChunks always equals ChunkIndex.
type CommitError struct {
	ChunkIndex      int
	SucceededChunks int
	SucceededPaths  int
	TotalChunks     int
	Cause           error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("batch chunk %d of %d failed after %d paths: %v", e.ChunkIndex+1, e.TotalChunks, e.SucceededPaths, e.Cause)
}

// Unwrap classifies the failure: partial when earlier chunks landed,
// otherwise the cause as reported by the store.
func (e *CommitError) Unwrap() error {
	if e.SucceededChunks > 0 {
		return errors.Wrap(errors.CodePartialImport, e.Cause, "batch partially applied").
			WithDetails(map[string]int{
				"chunk_index":      e.ChunkIndex,
				"succeeded_chunks": e.SucceededChunks,
				"succeeded_paths":  e.SucceededPaths,
				"total_chunks":     e.TotalChunks,
			})
	}
	return e.Cause
}

func (e *CommitError) ChunkProgress() (index, succeededChunks, succeededPaths, totalChunks int) {
	return e.ChunkIndex, e.SucceededChunks, e.SucceededPaths, e.TotalChunks
}
