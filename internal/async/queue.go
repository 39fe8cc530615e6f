package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/career-profile/internal/pipeline"
	"github.com/joseph-ayodele/career-profile/internal/profiles"
)

// ErrClosed is returned by Enqueue once Shutdown has started.
var ErrClosed = errors.New("queue closed")

// Job asks for one career document to be processed.
type Job struct {
	DocumentID  uuid.UUID `json:"document_id"`
	Force       bool      `json:"force,omitempty"` // reset to pending first, even if already completed or failed
	SubmittedAt time.Time `json:"submitted_at"`
	TraceID     string    `json:"trace_id,omitempty"`
}

// NewJob stamps a job with the current time and a fresh trace id.
func NewJob(id uuid.UUID, force bool) Job {
	return Job{DocumentID: id, Force: force, SubmittedAt: time.Now().UTC(), TraceID: uuid.NewString()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Processor is the part of pipeline.Processor the workers need.
type Processor interface {
	Process(ctx context.Context, id uuid.UUID) (pipeline.Outcome, error)
	Reprocess(ctx context.Context, id uuid.UUID) (pipeline.Outcome, error)
}

type Rebuilder interface {
	Rebuild(ctx context.Context, profileID uuid.UUID) (profiles.Summary, error)
}
