package studygen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ai-studynotes-be/pkg/llm"
	"ai-studynotes-be/pkg/textutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned responses in call order and records every
// request it sees.
type fakeProvider struct {
	responses []string
	calls     [][]llm.Message
	failAt    int // 1-based call index that errors; 0 = never
	usage     int
}

func (f *fakeProvider) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (*llm.Completion, error) {
	f.calls = append(f.calls, history)
	n := len(f.calls)
	if f.failAt != 0 && n == f.failAt {
		return nil, errors.New("provider unavailable")
	}
	content := ""
	if n <= len(f.responses) {
		content = f.responses[n-1]
	}
	return &llm.Completion{Content: content, Usage: llm.Usage{TotalTokens: f.usage}}, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (*llm.Completion, error) {
	return f.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func happyResponses() []string {
	return []string{
		`"Photosynthesis In Six Words"`,
		"🌱 Overview\n• Plants convert light to energy",
		"🌱 Basics\nLight reactions happen in thylakoids\nCalvin cycle fixes carbon",
		`Here you go: [{"question":"What do plants convert?","options":["Light","Sound","Heat","Mass"],"correctAnswer":0},{"question":"Where do light reactions occur?","options":["Nucleus","Thylakoid","Ribosome","Vacuole"],"correctAnswer":1}]`,
		`[{"front":"Thylakoid","back":"Membrane site of light reactions"},{"front":"Calvin cycle","back":"Carbon fixation pathway"}]`,
		"Alex: Welcome back!\nSam: Today, photosynthesis.",
		`{"headers":["Stage","Location"],"rows":[["Light reactions","Thylakoid"],["Calvin cycle","Stroma"]]}`,
	}
}

func TestGenerateHappyPath(t *testing.T) {
	provider := &fakeProvider{responses: happyResponses(), usage: 100}
	gen := NewGenerator(provider)

	var stages []Stage
	out, err := gen.Generate(context.Background(), GenerateRequest{
		Text:       "Plants convert light into chemical energy.",
		SourceType: SourceAudio,
		OnStage:    func(s Stage) { stages = append(stages, s) },
	})
	require.NoError(t, err)

	assert.Equal(t, "Photosynthesis In Six Words", out.Title, "title must be quote-stripped")
	assert.Contains(t, out.Summary, "•")
	assert.Len(t, out.KeyPoints, 3)
	require.Len(t, out.Quiz, 2)
	assert.Equal(t, 1, out.Quiz[1].CorrectAnswer)
	assert.Len(t, out.Flashcards, 2)
	require.NotNil(t, out.Table)
	assert.Equal(t, []string{"Stage", "Location"}, out.Table.Headers)
	assert.Equal(t, 700, out.TotalTokens)

	// Stages execute strictly sequentially in the fixed order.
	assert.Equal(t, []Stage{StageTitle, StageSummary, StageKeyPoints, StageQuiz, StageFlashcards, StagePodcast, StageTable}, stages)

	// Assembled document carries the fixed section headers.
	for _, header := range []string{"Summary", "Key Points", "Quiz", "Flashcards", "Transcript", "Podcast Script"} {
		assert.Contains(t, out.Content, header)
	}
}

func TestGenerateStageParseFailureDegradesSilently(t *testing.T) {
	responses := happyResponses()
	responses[3] = "I could not produce questions this time, sorry!" // no JSON array
	responses[6] = "no table here either"                            // no JSON object

	gen := NewGenerator(&fakeProvider{responses: responses})
	out, err := gen.Generate(context.Background(), GenerateRequest{Text: "material", SourceType: SourceAudio})
	require.NoError(t, err, "parse failures must not abort orchestration")

	assert.Empty(t, out.Quiz)
	assert.Nil(t, out.Table)
	assert.Len(t, out.Flashcards, 2, "other stages keep their output")
}

func TestGenerateProviderErrorAborts(t *testing.T) {
	gen := NewGenerator(&fakeProvider{responses: happyResponses(), failAt: 3})
	out, err := gen.Generate(context.Background(), GenerateRequest{Text: "material", SourceType: SourceAudio})

	require.Error(t, err)
	assert.Nil(t, out, "no partial result on provider failure")
	assert.Contains(t, err.Error(), "key points stage")
}

func TestGenerateDocumentBudgetAppliedBeforeAICalls(t *testing.T) {
	provider := &fakeProvider{responses: happyResponses()}
	gen := NewGenerator(provider)

	longText := strings.Repeat("x", 120_000)
	out, err := gen.Generate(context.Background(), GenerateRequest{Text: longText, SourceType: SourceDocument})
	require.NoError(t, err)

	assert.LessOrEqual(t, len(out.Transcript), 50_000)
	assert.True(t, strings.HasSuffix(out.Transcript, textutil.TruncationMarker))

	// Every AI call must already operate on the truncated text.
	for _, call := range provider.calls {
		for _, msg := range call {
			assert.LessOrEqual(t, len(msg.Content), 51_000)
		}
	}
}

func TestGeneratePersonalizationInjection(t *testing.T) {
	provider := &fakeProvider{responses: happyResponses()}
	gen := NewGenerator(provider)

	_, err := gen.Generate(context.Background(), GenerateRequest{
		Text:       "material",
		SourceType: SourceAudio,
		Profile:    &StudyProfile{LearningGoal: "pass finals"},
	})
	require.NoError(t, err)

	// Summary stage (call 2) gets the personalization block.
	assert.Contains(t, provider.calls[1][0].Content, "pass finals")
	// Podcast stage (call 6) does not.
	assert.NotContains(t, provider.calls[5][0].Content, "pass finals")
}

func TestGenerateNilProfileMatchesEmptyBlock(t *testing.T) {
	var p *StudyProfile
	assert.Equal(t, "", p.Block())
	assert.Equal(t, "", (&StudyProfile{}).Block())
}

func TestAdditionalQuizCap(t *testing.T) {
	tests := []struct {
		name      string
		existing  int
		requested int
		generated int // items the provider returns
		wantLen   int
	}{
		{name: "room for all", existing: 3, requested: 4, generated: 4, wantLen: 7},
		{name: "clamped to ceiling", existing: 8, requested: 5, generated: 5, wantLen: 10},
		{name: "already full", existing: 10, requested: 3, generated: 0, wantLen: 10},
		{name: "from empty", existing: 0, requested: 15, generated: 10, wantLen: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := make([]QuizItem, tt.existing)
			for i := range existing {
				existing[i] = QuizItem{Question: "Q", Options: []string{"A", "B", "C", "D"}}
			}

			var sb strings.Builder
			sb.WriteString("[")
			for i := 0; i < tt.generated; i++ {
				if i > 0 {
					sb.WriteString(",")
				}
				sb.WriteString(`{"question":"New","options":["A","B","C","D"],"correctAnswer":0}`)
			}
			sb.WriteString("]")

			provider := &fakeProvider{responses: []string{sb.String()}}
			gen := NewGenerator(provider)

			got, err := gen.AdditionalQuiz(context.Background(), "material", existing, tt.requested)
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)

			if tt.existing >= 10 {
				assert.Empty(t, provider.calls, "no AI call once at the ceiling")
			}
		})
	}
}

func TestAdditionalFlashcardsCap(t *testing.T) {
	existing := make([]Flashcard, 9)
	for i := range existing {
		existing[i] = Flashcard{Front: "F", Back: "B"}
	}

	provider := &fakeProvider{responses: []string{
		`[{"front":"N1","back":"B1"},{"front":"N2","back":"B2"},{"front":"N3","back":"B3"}]`,
	}}
	gen := NewGenerator(provider)

	got, err := gen.AdditionalFlashcards(context.Background(), "material", existing, 3)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestParseQuizDropsMalformedItems(t *testing.T) {
	raw := `[
		{"question":"ok","options":["A","B","C","D"],"correctAnswer":3},
		{"question":"three options","options":["A","B","C"],"correctAnswer":0},
		{"question":"bad index","options":["A","B","C","D"],"correctAnswer":4},
		{"question":"","options":["A","B","C","D"],"correctAnswer":0}
	]`
	items := parseQuiz(raw)
	require.Len(t, items, 1)
	assert.Equal(t, "ok", items[0].Question)
}
