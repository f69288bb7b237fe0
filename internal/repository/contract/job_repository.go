package contract

import (
	"ai-studynotes-be/internal/entity"

	"github.com/google/uuid"
)

// JobRepository is the in-memory job tray store. No persistence: a restart
// drops all jobs while the notes themselves survive in Postgres.
type JobRepository interface {
	Save(job *entity.Job)
	Get(id uuid.UUID) (*entity.Job, bool)
	ListByUser(userId uuid.UUID) []*entity.Job
	// SetStatus transitions a job; unknown IDs are a silent no-op. Completed
	// jobs are removed automatically shortly after the transition.
	SetStatus(id uuid.UUID, status entity.JobStatus, errMsg *string)
	// SetProgress mirrors the note's progress checkpoint onto the tray entry.
	// Unknown IDs are a silent no-op.
	SetProgress(id uuid.UUID, progress int, message string)
	Dismiss(id uuid.UUID)
}
