package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"ai-studynotes-be/internal/config"
	"ai-studynotes-be/internal/dto"
	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/internal/repository/contract"
	"ai-studynotes-be/internal/repository/memory"
	"ai-studynotes-be/internal/repository/specification"
	"ai-studynotes-be/internal/repository/unitofwork"
	"ai-studynotes-be/pkg/llm"
	"ai-studynotes-be/pkg/studygen"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fakes embed the interface so only the methods the worker touches need
// real bodies. An unexpected call panics, which is the failure we want.

type fakeNoteService struct {
	INoteService

	progress     []int
	messages     []string
	completed    *studygen.GeneratedNote
	completedURL *string
	failedMsg    string
}

func (f *fakeNoteService) UpdateProgress(_ context.Context, _, _ uuid.UUID, progress int, message string) {
	f.progress = append(f.progress, progress)
	f.messages = append(f.messages, message)
}

func (f *fakeNoteService) CompleteProcessing(_ context.Context, _, _ uuid.UUID, gen *studygen.GeneratedNote, sourceURL *string) error {
	f.completed = gen
	f.completedURL = sourceURL
	return nil
}

func (f *fakeNoteService) FailProcessing(_ context.Context, _, _ uuid.UUID, errMsg string) {
	f.failedMsg = errMsg
}

type fakeTranscriber struct {
	transcript string
	err        error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string, _ io.Reader) (string, error) {
	return f.transcript, f.err
}

type fakeUserRepo struct {
	contract.UserRepository
	user        *entity.User
	decremented int
}

func (f *fakeUserRepo) FindOne(_ context.Context, _ ...specification.Specification) (*entity.User, error) {
	return f.user, nil
}

func (f *fakeUserRepo) DecrementCredits(_ context.Context, _ uuid.UUID, amount int) error {
	if f.user.Credits < amount {
		return errors.New("insufficient credits")
	}
	f.user.Credits -= amount
	f.decremented += amount
	return nil
}

type fakeXpRepo struct {
	contract.XpProfileRepository
	awarded int
}

func (f *fakeXpRepo) AddXp(_ context.Context, _ uuid.UUID, amount int) error {
	f.awarded += amount
	return nil
}

type fakeCreditTxnRepo struct {
	contract.CreditTransactionRepository
	rows []*entity.CreditTransaction
}

func (f *fakeCreditTxnRepo) Create(_ context.Context, txn *entity.CreditTransaction) error {
	f.rows = append(f.rows, txn)
	return nil
}

type fakeUow struct {
	unitofwork.UnitOfWork
	users   *fakeUserRepo
	xp      *fakeXpRepo
	credits *fakeCreditTxnRepo
	notes   *fakeNoteRepo
}

func (f *fakeUow) UserRepository() contract.UserRepository           { return f.users }
func (f *fakeUow) XpProfileRepository() contract.XpProfileRepository { return f.xp }
func (f *fakeUow) CreditTransactionRepository() contract.CreditTransactionRepository {
	return f.credits
}

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(_ context.Context) unitofwork.UnitOfWork { return f.uow }

type fakePublisher struct {
	payloads [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, payload []byte) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

// stubLLM returns canned responses in call order, one per generation stage.
type stubLLM struct {
	responses []string
	calls     int
	failAt    int
}

func (s *stubLLM) Chat(_ context.Context, _ []llm.Message, _ ...llm.Option) (*llm.Completion, error) {
	s.calls++
	if s.failAt != 0 && s.calls == s.failAt {
		return nil, errors.New("provider unavailable")
	}
	content := ""
	if s.calls <= len(s.responses) {
		content = s.responses[s.calls-1]
	}
	return &llm.Completion{Content: content}, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func stageResponses() []string {
	return []string{
		`"Mitosis Explained"`,
		"🧬 Overview\n• Cells divide in phases",
		"🧬 Basics\nProphase condenses chromosomes\nAnaphase separates chromatids",
		`[{"question":"First phase?","options":["Prophase","Anaphase","Telophase","Metaphase"],"correctAnswer":0}]`,
		`[{"front":"Prophase","back":"Chromosomes condense"}]`,
		"Alex: Welcome!\nSam: Today, mitosis.",
		`{"headers":["Phase","Event"],"rows":[["Prophase","Condensation"]]}`,
	}
}

type workerFixture struct {
	worker   *workerService
	notes    *fakeNoteService
	jobs     *memory.JobRepository
	uow      *fakeUow
	embedPub *fakePublisher
}

func newWorkerFixture(t *testing.T, provider llm.Provider, transcriber *fakeTranscriber, user *entity.User) *workerFixture {
	t.Helper()

	notes := &fakeNoteService{}
	jobs := memory.NewJobRepository()
	embedPub := &fakePublisher{}
	uow := &fakeUow{
		users:   &fakeUserRepo{user: user},
		xp:      &fakeXpRepo{},
		credits: &fakeCreditTxnRepo{},
	}

	ws := NewWorkerService(
		nil, "PROCESS_NOTE",
		&fakeUowFactory{uow: uow},
		notes,
		jobs,
		transcriber,
		studygen.NewGenerator(provider),
		embedPub,
		nil,
		config.LimitsConfig{MinRecordingSeconds: 3, MinTranscriptWords: 5, FreeStartingCredits: 3},
		noopLogger{},
	).(*workerService)

	return &workerFixture{worker: ws, notes: notes, jobs: jobs, uow: uow, embedPub: embedPub}
}

func freeUser() *entity.User {
	return &entity.User{Id: uuid.New(), Credits: 3}
}

func TestWorkerTextCaptureCompletes(t *testing.T) {
	user := freeUser()
	fx := newWorkerFixture(t, &stubLLM{responses: stageResponses()}, &fakeTranscriber{}, user)

	payload := &dto.PublishProcessNoteMessage{
		NoteId:     uuid.New(),
		JobId:      uuid.New(),
		UserId:     user.Id,
		EntryPoint: "text",
		Text:       "Cells divide through mitosis in several distinct phases.",
	}
	fx.jobs.Save(&entity.Job{Id: payload.JobId, UserId: user.Id, Status: entity.JobStatusGenerating})

	require.NoError(t, fx.worker.run(context.Background(), payload))

	// Checkpoints move strictly forward through the stage map.
	assert.Equal(t, []int{5, 40, 50, 70, 85, 95, 95, 95}, fx.notes.progress)
	assert.Equal(t, "Preparing content...", fx.notes.messages[0])

	require.NotNil(t, fx.notes.completed)
	assert.Equal(t, "Mitosis Explained", fx.notes.completed.Title)
	assert.Nil(t, fx.notes.completedURL)

	job, ok := fx.jobs.Get(payload.JobId)
	require.True(t, ok)
	assert.Equal(t, entity.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "Building comparison table...", job.Message, "tray mirrors the last stage checkpoint")

	// One credit consumed, ledger row written, pasted text earns 50 XP.
	assert.Equal(t, 2, fx.uow.users.user.Credits)
	require.Len(t, fx.uow.credits.rows, 1)
	assert.Equal(t, -1, fx.uow.credits.rows[0].Amount)
	assert.Equal(t, 50, fx.uow.xp.awarded)

	// Embedding is requested exactly once.
	require.Len(t, fx.embedPub.payloads, 1)
	assert.Contains(t, string(fx.embedPub.payloads[0]), payload.NoteId.String())
}

func TestWorkerAudioCaptureTranscribesAndCleansUp(t *testing.T) {
	user := freeUser()
	transcriber := &fakeTranscriber{transcript: "Cells divide through mitosis in several phases."}
	fx := newWorkerFixture(t, &stubLLM{responses: stageResponses()}, transcriber, user)

	audioPath := filepath.Join(t.TempDir(), "recording.m4a")
	require.NoError(t, os.WriteFile(audioPath, []byte("fake-audio"), 0o644))

	payload := &dto.PublishProcessNoteMessage{
		NoteId:     uuid.New(),
		JobId:      uuid.New(),
		UserId:     user.Id,
		EntryPoint: "audio",
		AudioPath:  audioPath,
	}
	fx.jobs.Save(&entity.Job{Id: payload.JobId, UserId: user.Id, Status: entity.JobStatusTranscribing})

	require.NoError(t, fx.worker.run(context.Background(), payload))

	assert.Equal(t, "Transcribing audio...", fx.notes.messages[0])
	assert.Equal(t, 20, fx.uow.xp.awarded)

	// Upload is deleted once transcription is done.
	_, err := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(err))
}

func TestWorkerShortTranscriptFailsJob(t *testing.T) {
	user := freeUser()
	transcriber := &fakeTranscriber{transcript: "too short"}
	fx := newWorkerFixture(t, &stubLLM{responses: stageResponses()}, transcriber, user)

	audioPath := filepath.Join(t.TempDir(), "recording.m4a")
	require.NoError(t, os.WriteFile(audioPath, []byte("fake-audio"), 0o644))

	payload := &dto.PublishProcessNoteMessage{
		NoteId:     uuid.New(),
		JobId:      uuid.New(),
		UserId:     user.Id,
		EntryPoint: "audio",
		AudioPath:  audioPath,
	}
	fx.jobs.Save(&entity.Job{Id: payload.JobId, UserId: user.Id, Status: entity.JobStatusTranscribing})

	err := fx.worker.run(context.Background(), payload)
	require.ErrorIs(t, err, ErrTranscriptTooShort)
	fx.worker.fail(context.Background(), payload, err)

	assert.Equal(t, ErrTranscriptTooShort.Error(), fx.notes.failedMsg)
	job, ok := fx.jobs.Get(payload.JobId)
	require.True(t, ok)
	assert.Equal(t, entity.JobStatusError, job.Status)
	require.NotNil(t, job.Error)

	// Nothing is charged and nothing is embedded on failure.
	assert.Equal(t, 3, fx.uow.users.user.Credits)
	assert.Empty(t, fx.embedPub.payloads)
}

func TestWorkerSubscribedUserIsNeverCharged(t *testing.T) {
	user := &entity.User{Id: uuid.New(), Credits: 0, IsSubscribed: true}
	fx := newWorkerFixture(t, &stubLLM{responses: stageResponses()}, &fakeTranscriber{}, user)

	payload := &dto.PublishProcessNoteMessage{
		NoteId:     uuid.New(),
		JobId:      uuid.New(),
		UserId:     user.Id,
		EntryPoint: "document",
		Text:       "Cells divide through mitosis in several distinct phases.",
	}
	fx.jobs.Save(&entity.Job{Id: payload.JobId, UserId: user.Id, Status: entity.JobStatusGenerating})

	require.NoError(t, fx.worker.run(context.Background(), payload))

	assert.Equal(t, 0, fx.uow.users.user.Credits)
	assert.Empty(t, fx.uow.credits.rows)
	assert.Equal(t, 10, fx.uow.xp.awarded)
}

func TestWorkerProviderFailureLeavesCreditsIntact(t *testing.T) {
	user := freeUser()
	fx := newWorkerFixture(t, &stubLLM{responses: stageResponses(), failAt: 2}, &fakeTranscriber{}, user)

	payload := &dto.PublishProcessNoteMessage{
		NoteId:     uuid.New(),
		JobId:      uuid.New(),
		UserId:     user.Id,
		EntryPoint: "text",
		Text:       "Cells divide through mitosis in several distinct phases.",
	}
	fx.jobs.Save(&entity.Job{Id: payload.JobId, UserId: user.Id, Status: entity.JobStatusGenerating})

	err := fx.worker.run(context.Background(), payload)
	require.Error(t, err)
	fx.worker.fail(context.Background(), payload, err)

	assert.Equal(t, 3, fx.uow.users.user.Credits, "failed runs are free")
	assert.NotEmpty(t, fx.notes.failedMsg)
}

func TestWorkerBadPayloadIsAckedWithoutSideEffects(t *testing.T) {
	fx := newWorkerFixture(t, &stubLLM{}, &fakeTranscriber{}, freeUser())

	msg := message.NewMessage(watermill.NewUUID(), []byte("not json"))
	fx.worker.processMessage(context.Background(), msg)

	select {
	case <-msg.Acked():
	default:
		t.Fatal("undecodable message must be acked, never redelivered")
	}
	assert.Empty(t, fx.notes.progress)
	assert.Empty(t, fx.notes.failedMsg)
}
