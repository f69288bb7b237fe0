package studygen

import (
	"fmt"
	"strings"
)

// SourceType identifies how a note's raw content originated. Closed set.
type SourceType string

const (
	SourceAudio      SourceType = "audio"
	SourceYoutube    SourceType = "youtube"
	SourceDocument   SourceType = "document"
	SourceScreenshot SourceType = "screenshot"
)

// QuizItem is one multiple-choice question. Options always has 4 entries and
// CorrectAnswer is a zero-based index into it. Duplicate avoidance across a
// quiz is a best-effort prompt instruction, not a structural guarantee.
type QuizItem struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// Flashcard is a front/back study card.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// TableData is a two-column comparison table parsed out of free-form model
// output. Absent (nil) when parsing fails.
type TableData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// StudyProfile carries onboarding-derived personalization. A nil profile makes
// generation behave identically to the non-personalized path.
type StudyProfile struct {
	LearningGoal   string
	StudentType    string
	Struggle       string
	DesiredOutcome string
	Obstacles      string
}

// Block renders the personalization text appended to generation prompts.
// Returns "" for a nil or empty profile.
func (p *StudyProfile) Block() string {
	if p == nil {
		return ""
	}

	var lines []string
	add := func(label, value string) {
		if strings.TrimSpace(value) != "" {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, value))
		}
	}
	add("Learning goal", p.LearningGoal)
	add("Student type", p.StudentType)
	add("Current struggle", p.Struggle)
	add("Desired outcome", p.DesiredOutcome)
	add("Obstacles", p.Obstacles)

	if len(lines) == 0 {
		return ""
	}
	return "\n\nTailor the output to this learner:\n" + strings.Join(lines, "\n")
}

// GeneratedNote is the assembled result of one orchestration run.
type GeneratedNote struct {
	Title         string
	Summary       string
	KeyPoints     []string
	Quiz          []QuizItem
	Flashcards    []Flashcard
	PodcastScript string
	Table         *TableData
	Transcript    string // possibly truncated input text
	Content       string // full document under fixed section headers
	TotalTokens   int    // summed across all stages
}

// Stage names one orchestration step, in execution order.
type Stage string

const (
	StageTitle      Stage = "title"
	StageSummary    Stage = "summary"
	StageKeyPoints  Stage = "key_points"
	StageQuiz       Stage = "quiz"
	StageFlashcards Stage = "flashcards"
	StagePodcast    Stage = "podcast"
	StageTable      Stage = "table"
)
