package studygen

import (
	"context"
	"fmt"
	"strings"

	"ai-studynotes-be/pkg/llm"
	"ai-studynotes-be/pkg/textutil"
)

const (
	// Character budgets applied before any AI call is issued.
	generalCharBudget  = 100_000
	documentCharBudget = 50_000

	quizQuestionCount = 5
	maxStudyItems     = 10 // ceiling for quiz questions / flashcards per note
)

// Generator runs the fixed sequence of generation stages against a text
// provider and assembles the results into one structured note payload.
type Generator struct {
	provider llm.Provider

	// lastUsage holds the token total of the most recent provider call.
	// Stages run sequentially on one goroutine, so a plain field is fine.
	lastUsage int
}

func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// GenerateRequest is one orchestration input.
type GenerateRequest struct {
	Text       string
	SourceType SourceType
	Profile    *StudyProfile

	// OnStage, when set, is invoked at the start of each stage. Stages run
	// strictly sequentially, so callbacks arrive in execution order.
	OnStage func(stage Stage)
}

// Generate transforms raw text into a fully structured note payload.
//
// Any provider error aborts the run and propagates; no partial result is
// returned in that case. JSON parse failures inside a stage never abort:
// that one stage degrades to an empty value and the run continues.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedNote, error) {
	budget := generalCharBudget
	if req.SourceType == SourceDocument {
		budget = documentCharBudget
	}
	text := textutil.Truncate(req.Text, budget)
	personalization := req.Profile.Block()

	out := &GeneratedNote{Transcript: text}

	stage := func(s Stage) {
		if req.OnStage != nil {
			req.OnStage(s)
		}
	}

	// 1. Title
	stage(StageTitle)
	title, err := g.complete(ctx, titleSystemPrompt, text, "", llm.WithMaxTokens(32), llm.WithTemperature(0.5))
	if err != nil {
		return nil, fmt.Errorf("title stage: %w", err)
	}
	out.Title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), `"'`))
	out.TotalTokens += g.lastUsage

	// 2. Summary
	stage(StageSummary)
	summary, err := g.complete(ctx, summarySystemPrompt, text, personalization)
	if err != nil {
		return nil, fmt.Errorf("summary stage: %w", err)
	}
	out.Summary = strings.TrimSpace(summary)
	out.TotalTokens += g.lastUsage

	// 3. Key points
	stage(StageKeyPoints)
	keyPoints, err := g.complete(ctx, keyPointsSystemPrompt, text, personalization)
	if err != nil {
		return nil, fmt.Errorf("key points stage: %w", err)
	}
	out.KeyPoints = splitLines(keyPoints)
	out.TotalTokens += g.lastUsage

	// 4. Quiz
	stage(StageQuiz)
	quizPrompt := fmt.Sprintf("Write exactly %d questions for this material:\n\n%s", quizQuestionCount, text)
	quizRaw, err := g.complete(ctx, quizSystemPrompt, quizPrompt, personalization)
	if err != nil {
		return nil, fmt.Errorf("quiz stage: %w", err)
	}
	out.Quiz = parseQuiz(quizRaw)
	out.TotalTokens += g.lastUsage

	// 5. Flashcards
	stage(StageFlashcards)
	cardsPrompt := fmt.Sprintf("Write 6 to 8 flashcards for this material:\n\n%s", text)
	cardsRaw, err := g.complete(ctx, flashcardsSystemPrompt, cardsPrompt, personalization)
	if err != nil {
		return nil, fmt.Errorf("flashcards stage: %w", err)
	}
	out.Flashcards = parseFlashcards(cardsRaw)
	out.TotalTokens += g.lastUsage

	// 6. Podcast script
	stage(StagePodcast)
	podcast, err := g.complete(ctx, podcastSystemPrompt, text, "")
	if err != nil {
		return nil, fmt.Errorf("podcast stage: %w", err)
	}
	out.PodcastScript = strings.TrimSpace(podcast)
	out.TotalTokens += g.lastUsage

	// 7. Table
	stage(StageTable)
	tableRaw, err := g.complete(ctx, tableSystemPrompt, text, "")
	if err != nil {
		return nil, fmt.Errorf("table stage: %w", err)
	}
	out.Table = parseTable(tableRaw)
	out.TotalTokens += g.lastUsage

	out.Content = assembleContent(out)
	return out, nil
}

// AdditionalQuiz generates up to `count` extra questions, avoiding duplicates
// of the existing list on a best-effort basis. The merged result never exceeds
// 10 questions; once at the ceiling no AI call is made.
func (g *Generator) AdditionalQuiz(ctx context.Context, text string, existing []QuizItem, count int) ([]QuizItem, error) {
	allowed := maxStudyItems - len(existing)
	if allowed <= 0 {
		return existing, nil
	}
	if count > allowed {
		count = allowed
	}

	var avoid []string
	for _, q := range existing {
		avoid = append(avoid, "- "+q.Question)
	}
	prompt := fmt.Sprintf(
		"Write exactly %d NEW questions for this material. Do not repeat any of these existing questions:\n%s\n\nMaterial:\n\n%s",
		count, strings.Join(avoid, "\n"), text,
	)

	raw, err := g.complete(ctx, quizSystemPrompt, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("additional quiz: %w", err)
	}

	extra := parseQuiz(raw)
	if len(extra) > allowed {
		extra = extra[:allowed]
	}
	return append(existing, extra...), nil
}

// AdditionalFlashcards is AdditionalQuiz for flashcards, with the same ceiling.
func (g *Generator) AdditionalFlashcards(ctx context.Context, text string, existing []Flashcard, count int) ([]Flashcard, error) {
	allowed := maxStudyItems - len(existing)
	if allowed <= 0 {
		return existing, nil
	}
	if count > allowed {
		count = allowed
	}

	var avoid []string
	for _, c := range existing {
		avoid = append(avoid, "- "+c.Front)
	}
	prompt := fmt.Sprintf(
		"Write exactly %d NEW flashcards for this material. Do not repeat any of these existing fronts:\n%s\n\nMaterial:\n\n%s",
		count, strings.Join(avoid, "\n"), text,
	)

	raw, err := g.complete(ctx, flashcardsSystemPrompt, prompt, "")
	if err != nil {
		return nil, fmt.Errorf("additional flashcards: %w", err)
	}

	extra := parseFlashcards(raw)
	if len(extra) > allowed {
		extra = extra[:allowed]
	}
	return append(existing, extra...), nil
}

func (g *Generator) complete(ctx context.Context, system, user, personalization string, opts ...llm.Option) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: system + personalization},
		{Role: "user", Content: user},
	}
	res, err := g.provider.Chat(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	g.lastUsage = res.Usage.TotalTokens
	return res.Content, nil
}
