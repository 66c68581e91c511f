package errors

import (
	"errors"
	"fmt"
)

// ErrorDump is a log-friendly flattening of an error chain.
type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	ChunkIndex      *int     `json:"chunk_index,omitempty"`
	TotalChunks     int      `json:"total_chunks,omitempty"`
	SucceededChunks int      `json:"succeeded_chunks,omitempty"`
	SucceededPaths  int      `json:"succeeded_paths,omitempty"`
	CollidingPaths  []string `json:"colliding_paths,omitempty"`
}

// ChunkReporter is implemented by errors raised while committing chunked batches.
type ChunkReporter interface {
	ChunkProgress() (index, succeededChunks, succeededPaths, totalChunks int)
}

// CollisionReporter is implemented by errors that reject overlapping batch paths.
type CollisionReporter interface {
	CollidingPaths() (string, string)
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var chunkErr ChunkReporter
	if errors.As(err, &chunkErr) {
		idx, chunks, paths, total := chunkErr.ChunkProgress()
		d.ChunkIndex = &idx
		d.SucceededChunks = chunks
		d.SucceededPaths = paths
		d.TotalChunks = total
	}

	var collision CollisionReporter
	if errors.As(err, &collision) {
		a, b := collision.CollidingPaths()
		d.CollidingPaths = []string{a, b}
	}

	return d
}
