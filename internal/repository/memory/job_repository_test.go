package memory

import (
	"testing"
	"time"

	"ai-studynotes-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(userId uuid.UUID) *entity.Job {
	return &entity.Job{
		Id:        uuid.New(),
		UserId:    userId,
		NoteId:    uuid.New(),
		Title:     "Recording",
		Status:    entity.JobStatusTranscribing,
		CreatedAt: time.Now(),
	}
}

func TestJobRepository_SaveAndGet(t *testing.T) {
	repo := NewJobRepository()
	job := newJob(uuid.New())

	repo.Save(job)

	got, found := repo.Get(job.Id)
	require.True(t, found)
	assert.Equal(t, job.Id, got.Id)
	assert.Equal(t, entity.JobStatusTranscribing, got.Status)
}

func TestJobRepository_ListByUser(t *testing.T) {
	repo := NewJobRepository()
	userA := uuid.New()
	userB := uuid.New()

	first := newJob(userA)
	first.CreatedAt = time.Now().Add(-2 * time.Minute)
	second := newJob(userA)
	second.CreatedAt = time.Now().Add(-1 * time.Minute)
	repo.Save(second)
	repo.Save(first)
	repo.Save(newJob(userB))

	jobs := repo.ListByUser(userA)
	require.Len(t, jobs, 2)
	assert.Equal(t, first.Id, jobs[0].Id, "oldest job first")
	assert.Equal(t, second.Id, jobs[1].Id)
}

func TestJobRepository_SetProgressMirrorsCheckpoint(t *testing.T) {
	repo := NewJobRepository()
	job := newJob(uuid.New())
	repo.Save(job)

	repo.SetProgress(job.Id, 40, "Writing title...")

	got, found := repo.Get(job.Id)
	require.True(t, found)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, "Writing title...", got.Message)

	// Unknown IDs are a silent no-op.
	repo.SetProgress(uuid.New(), 50, "Summarizing...")
}

func TestJobRepository_CompletionSetsFullProgress(t *testing.T) {
	repo := NewJobRepository()
	job := newJob(uuid.New())
	repo.Save(job)
	repo.SetProgress(job.Id, 95, "Creating flashcards...")

	repo.SetStatus(job.Id, entity.JobStatusCompleted, nil)

	got, found := repo.Get(job.Id)
	require.True(t, found)
	assert.Equal(t, 100, got.Progress)
}

func TestJobRepository_SetStatusUnknownIdIsNoop(t *testing.T) {
	repo := NewJobRepository()

	repo.SetStatus(uuid.New(), entity.JobStatusCompleted, nil)

	// Nothing to assert beyond not panicking and no phantom job appearing.
	assert.Empty(t, repo.ListByUser(uuid.New()))
}

func TestJobRepository_CompletedJobIsRemovedAfterDelay(t *testing.T) {
	repo := newJobRepository(30 * time.Millisecond)
	job := newJob(uuid.New())
	repo.Save(job)

	repo.SetStatus(job.Id, entity.JobStatusCompleted, nil)

	// Still visible immediately after completion.
	got, found := repo.Get(job.Id)
	require.True(t, found)
	assert.Equal(t, entity.JobStatusCompleted, got.Status)

	assert.Eventually(t, func() bool {
		_, found := repo.Get(job.Id)
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestJobRepository_ErrorJobStaysUntilDismissed(t *testing.T) {
	repo := newJobRepository(10 * time.Millisecond)
	job := newJob(uuid.New())
	repo.Save(job)

	msg := "transcription failed"
	repo.SetStatus(job.Id, entity.JobStatusError, &msg)

	time.Sleep(50 * time.Millisecond)

	got, found := repo.Get(job.Id)
	require.True(t, found, "error jobs are not auto-removed")
	require.NotNil(t, got.Error)
	assert.Equal(t, msg, *got.Error)

	repo.Dismiss(job.Id)
	_, found = repo.Get(job.Id)
	assert.False(t, found)
}
