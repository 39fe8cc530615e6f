// Package ingest turns files dropped into an inbox directory into processed career documents.
package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/internal/pipeline"
	"github.com/joseph-ayodele/career-profile/internal/profiles"
)

// FileResult is the per-file outcome of one cycle.
type FileResult struct {
	SourcePath   string
	MovedTo      string
	DocumentID   uuid.UUID
	Deduplicated bool
	HashHex      string
	Status       string
	Err          string
}

// CycleResult summarizes one RunOnce pass over the inbox.
type CycleResult struct {
	Scanned      int
	Matched      int
	Processed    int
	Failed       int
	Deduplicated int
	Rebuilt      bool
	Files        []FileResult
}

// DocumentProcessor runs a pending document through the pipeline.
type DocumentProcessor interface {
	Process(ctx context.Context, id uuid.UUID) (pipeline.Outcome, error)
}

// ProfileRebuilder aggregates processed documents into a profile.
type ProfileRebuilder interface {
	Rebuild(ctx context.Context, profileID uuid.UUID) (profiles.Summary, error)
}
