package service

import (
	"context"
	"testing"

	"ai-studynotes-be/internal/config"
	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/contract"
	"ai-studynotes-be/internal/repository/memory"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/pkg/studygen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNoteRepo struct {
	contract.NoteRepository
	created []*entity.Note
	fields  map[string]interface{}
}

func (f *fakeNoteRepo) Create(_ context.Context, note *entity.Note) error {
	f.created = append(f.created, note)
	return nil
}

func (f *fakeNoteRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.Note, error) {
	if len(f.created) == 0 {
		return nil, nil
	}
	return f.created[0], nil
}

func (f *fakeNoteRepo) UpdateFields(_ context.Context, _ uuid.UUID, fields map[string]interface{}) error {
	f.fields = fields
	return nil
}

func (f *fakeUow) NoteRepository() contract.NoteRepository { return f.notes }

type pipelineFixture struct {
	pipeline *pipelineService
	uow      *fakeUow
	jobs     *memory.JobRepository
	pub      *fakePublisher
}

func newPipelineFixture(t *testing.T, user *entity.User) *pipelineFixture {
	t.Helper()

	jobs := memory.NewJobRepository()
	pub := &fakePublisher{}
	uow := &fakeUow{
		users: &fakeUserRepo{user: user},
		notes: &fakeNoteRepo{},
	}

	p := NewPipelineService(
		&fakeUowFactory{uow: uow},
		pub,
		jobs,
		config.LimitsConfig{MinRecordingSeconds: 3, MinTranscriptWords: 5, FreeStartingCredits: 3},
		t.TempDir(),
		noopLogger{},
	).(*pipelineService)

	return &pipelineFixture{pipeline: p, uow: uow, jobs: jobs, pub: pub}
}

func TestPipelineShortRecordingRejectedBeforeAnyWork(t *testing.T) {
	user := freeUser()
	fx := newPipelineFixture(t, user)

	_, err := fx.pipeline.ProcessAudio(context.Background(), user.Id, &dto.CaptureAudioRequest{DurationSeconds: 2}, nil)

	require.ErrorIs(t, err, ErrRecordingTooShort)
	assert.Empty(t, fx.uow.notes.created, "no placeholder note for a rejected recording")
	assert.Empty(t, fx.jobs.ListByUser(user.Id))
	assert.Empty(t, fx.pub.payloads)
}

func TestPipelineNoCreditsRejected(t *testing.T) {
	user := &entity.User{Id: uuid.New(), Credits: 0}
	fx := newPipelineFixture(t, user)

	_, err := fx.pipeline.ProcessText(context.Background(), user.Id, &dto.CaptureTextRequest{Text: "Some pasted material."})

	require.ErrorIs(t, err, ErrNoCredits)
	assert.Empty(t, fx.uow.notes.created)
	assert.Empty(t, fx.pub.payloads)

	// The gate is read-only, rejection consumes nothing.
	assert.Equal(t, 0, user.Credits)
}

func TestPipelineTextCaptureCreatesPlaceholderAndJob(t *testing.T) {
	user := freeUser()
	fx := newPipelineFixture(t, user)

	res, err := fx.pipeline.ProcessText(context.Background(), user.Id, &dto.CaptureTextRequest{Text: "Some pasted material."})
	require.NoError(t, err)

	require.Len(t, fx.uow.notes.created, 1)
	note := fx.uow.notes.created[0]
	assert.Equal(t, res.NoteId, note.Id)
	assert.True(t, note.IsProcessing)
	assert.Equal(t, "New Note", note.Title)
	assert.Equal(t, studygen.SourceDocument, note.SourceType)

	job, found := fx.jobs.Get(res.JobId)
	require.True(t, found)
	assert.Equal(t, entity.JobStatusGenerating, job.Status)
	assert.Equal(t, note.Id, job.NoteId)
	assert.Equal(t, "Generating study note...", job.Message)

	require.Len(t, fx.pub.payloads, 1)
	payload := string(fx.pub.payloads[0])
	assert.Contains(t, payload, note.Id.String())
	assert.Contains(t, payload, `"entry_point":"text"`)

	// Credits are only consumed when the worker succeeds.
	assert.Equal(t, 3, user.Credits)
}

func TestPipelineSubscribedUserPassesGateWithoutCredits(t *testing.T) {
	user := &entity.User{Id: uuid.New(), Credits: 0, IsSubscribed: true}
	fx := newPipelineFixture(t, user)

	res, err := fx.pipeline.ProcessLink(context.Background(), user.Id, &dto.CaptureLinkRequest{URL: "https://youtube.com/watch?v=abc"}, "Fetched transcript text here.")
	require.NoError(t, err)

	require.Len(t, fx.uow.notes.created, 1)
	note := fx.uow.notes.created[0]
	assert.Equal(t, "New Video Note", note.Title)
	assert.Equal(t, studygen.SourceYoutube, note.SourceType)
	require.NotNil(t, note.SourceURL)
	assert.Equal(t, "https://youtube.com/watch?v=abc", *note.SourceURL)

	payload := string(fx.pub.payloads[0])
	assert.Contains(t, payload, res.JobId.String())
	assert.Contains(t, payload, "Fetched transcript text here.")
}
