package studygen

import (
	"fmt"
	"strings"

	"ai-studynotes-be/pkg/jsonx"
)

// parseQuiz recovers quiz items from raw model output. Items without exactly
// 4 options or with an out-of-range answer index are dropped. A missing or
// malformed JSON array yields an empty slice, never an error.
func parseQuiz(raw string) []QuizItem {
	var items []QuizItem
	if !jsonx.DecodeArray(raw, &items) {
		return []QuizItem{}
	}

	valid := make([]QuizItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Question) == "" {
			continue
		}
		if len(item.Options) != 4 {
			continue
		}
		if item.CorrectAnswer < 0 || item.CorrectAnswer > 3 {
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

// parseFlashcards recovers flashcards from raw model output, dropping cards
// with an empty side. Malformed output yields an empty slice.
func parseFlashcards(raw string) []Flashcard {
	var cards []Flashcard
	if !jsonx.DecodeArray(raw, &cards) {
		return []Flashcard{}
	}

	valid := make([]Flashcard, 0, len(cards))
	for _, card := range cards {
		if strings.TrimSpace(card.Front) == "" || strings.TrimSpace(card.Back) == "" {
			continue
		}
		valid = append(valid, card)
	}
	return valid
}

// parseTable recovers a two-column table, or nil when the output holds no
// valid JSON object or the shape is off. Rows with a column count other than
// two are dropped rather than failing the whole table.
func parseTable(raw string) *TableData {
	var table TableData
	if !jsonx.DecodeObject(raw, &table) {
		return nil
	}
	if len(table.Headers) != 2 {
		return nil
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if len(row) == 2 {
			rows = append(rows, row)
		}
	}
	table.Rows = rows
	return &table
}

func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// assembleContent concatenates all stage outputs into one free-text document
// under fixed section headers. Clients treat this as the note body.
func assembleContent(n *GeneratedNote) string {
	var b strings.Builder

	section := func(header, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(header)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(body))
	}

	section("Summary", n.Summary)
	section("Key Points", strings.Join(n.KeyPoints, "\n"))

	if len(n.Quiz) > 0 {
		var quiz strings.Builder
		for i, q := range n.Quiz {
			if i > 0 {
				quiz.WriteString("\n\n")
			}
			fmt.Fprintf(&quiz, "%d. %s", i+1, q.Question)
			for j, opt := range q.Options {
				marker := " "
				if j == q.CorrectAnswer {
					marker = "*"
				}
				fmt.Fprintf(&quiz, "\n%s %c) %s", marker, 'A'+j, opt)
			}
		}
		section("Quiz", quiz.String())
	}

	if len(n.Flashcards) > 0 {
		var cards strings.Builder
		for i, c := range n.Flashcards {
			if i > 0 {
				cards.WriteString("\n")
			}
			fmt.Fprintf(&cards, "%s :: %s", c.Front, c.Back)
		}
		section("Flashcards", cards.String())
	}

	section("Transcript", n.Transcript)
	section("Podcast Script", n.PodcastScript)

	return b.String()
}
