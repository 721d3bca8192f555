package survey

import (
	"fmt"
	"math"
	"strings"

	"github.com/dmorenog/bancalocal/store"
)

// Grade scores a quiz submission against the questions' recorded correct
// options. An unanswered question counts as wrong; a timed-out submission
// therefore grades the same way as any other.
func Grade(questions []Question, options map[int64][]Option, answers map[string]any) Results {
	correct := 0
	for _, q := range questions {
		answer, ok := answers[AnswerKey(q.ID)]
		if ok && isCorrect(q, options[q.ID], answer) {
			correct++
		}
	}
	return Results{
		TotalQuestions: len(questions),
		TotalCorrect:   correct,
		Percentage:     Percentage(correct, len(questions)),
	}
}

func isCorrect(q Question, options []Option, answer any) bool {
	switch q.Type {
	case TypeShortAnswer:
		// The correct option's value is the expected text.
		got := strings.TrimSpace(fmt.Sprint(answer))
		for _, o := range options {
			if o.Correct && o.Value != "" && strings.EqualFold(got, strings.TrimSpace(o.Value)) {
				return true
			}
		}
		return false
	default:
		// multiple_choice and true_false: the answer is an option value.
		for _, o := range options {
			if o.Correct && store.LooseEqual(answer, o.Value) {
				return true
			}
		}
		return false
	}
}

// Percentage is the rounded score: round(correct/total*100).
func Percentage(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
