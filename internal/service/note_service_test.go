package service

import (
	"context"
	"encoding/json"
	"testing"

	"ai-studynotes-be/internal/entity"
	"ai-studynotes-be/pkg/llm"
	"ai-studynotes-be/pkg/studygen"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completedNote(userId uuid.UUID, quiz []studygen.QuizItem) *entity.Note {
	return &entity.Note{
		Id:      uuid.New(),
		UserId:  userId,
		Content: "Plants convert light into chemical energy.",
		Quiz:    quiz,
	}
}

func newNoteFixture(note *entity.Note, provider llm.Provider) (INoteService, *fakeUow) {
	uow := &fakeUow{notes: &fakeNoteRepo{created: []*entity.Note{note}}}
	svc := NewNoteService(&fakeUowFactory{uow: uow}, studygen.NewGenerator(provider), nil, nil, nil, noopLogger{})
	return svc, uow
}

func TestAdditionalQuizPersistsMergedAndReturnsOnlyNewItems(t *testing.T) {
	userId := uuid.New()
	existing := []studygen.QuizItem{
		{Question: "What do plants convert?", Options: []string{"Light", "Sound", "Heat", "Mass"}, CorrectAnswer: 0},
		{Question: "Where do light reactions occur?", Options: []string{"Nucleus", "Thylakoid", "Ribosome", "Vacuole"}, CorrectAnswer: 1},
	}
	note := completedNote(userId, existing)
	svc, uow := newNoteFixture(note, &stubLLM{
		responses: []string{`[{"question":"What fixes carbon?","options":["Calvin cycle","Krebs cycle","Glycolysis","Osmosis"],"correctAnswer":0}]`},
	})

	res, err := svc.AdditionalQuiz(context.Background(), userId, note.Id, 1)
	require.NoError(t, err)

	require.Len(t, res.Quiz, 1, "response carries only the new questions")
	assert.Equal(t, "What fixes carbon?", res.Quiz[0].Question)

	raw, ok := uow.notes.fields["quiz"].([]byte)
	require.True(t, ok, "merged quiz list is persisted")
	var persisted []studygen.QuizItem
	require.NoError(t, json.Unmarshal(raw, &persisted))
	require.Len(t, persisted, 3)
	assert.Equal(t, existing[0].Question, persisted[0].Question)
	assert.Equal(t, "What fixes carbon?", persisted[2].Question)
}

func TestAdditionalQuizAtCeilingSkipsGenerationAndWrite(t *testing.T) {
	userId := uuid.New()
	full := make([]studygen.QuizItem, 10)
	for i := range full {
		full[i] = studygen.QuizItem{Question: "q", Options: []string{"a", "b", "c", "d"}}
	}
	note := completedNote(userId, full)
	svc, uow := newNoteFixture(note, &stubLLM{})

	res, err := svc.AdditionalQuiz(context.Background(), userId, note.Id, 3)
	require.NoError(t, err)

	assert.Empty(t, res.Quiz)
	assert.Nil(t, uow.notes.fields, "a full quiz writes nothing")
}

func TestAdditionalQuizRejectsProcessingNote(t *testing.T) {
	userId := uuid.New()
	note := completedNote(userId, nil)
	note.IsProcessing = true
	svc, _ := newNoteFixture(note, &stubLLM{})

	_, err := svc.AdditionalQuiz(context.Background(), userId, note.Id, 3)
	require.Error(t, err)
}

func TestUpdateProgressKeepsNoteInProcessingState(t *testing.T) {
	userId := uuid.New()
	note := completedNote(userId, nil)
	svc, uow := newNoteFixture(note, &stubLLM{})

	svc.UpdateProgress(context.Background(), note.Id, userId, 40, "Transcribing audio...")

	fields := uow.notes.fields
	require.NotNil(t, fields)
	assert.Equal(t, true, fields["is_processing"])
	assert.Equal(t, 40, fields["processing_progress"])
	assert.Equal(t, "Transcribing audio...", fields["processing_message"])

	// The error column is cleared on every step, not left from a prior run.
	val, present := fields["processing_error"]
	assert.True(t, present)
	assert.Nil(t, val)
}
