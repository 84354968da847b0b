package assessment

import (
	"fmt"

	"restart50-service/internal/domain"
)

// Result is the outcome of grading one quiz submission.
type Result struct {
	Raw     int `json:"raw"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// Grade pairs answers with the course quiz by position. Missing or
// out-of-range answers count as wrong; answers beyond the quiz are ignored.
func Grade(course domain.Course, answers []int) Result {
	total := len(course.Quiz)
	raw := 0
	for i, q := range course.Quiz {
		if i < len(answers) && answers[i] == q.Answer {
			raw++
		}
	}
	return Result{Raw: raw, Total: total, Percent: Percent(raw, total)}
}

// Percent is floor(raw/total*100), and 0 for an empty quiz.
func Percent(raw, total int) int {
	if total <= 0 {
		return 0
	}
	return raw * 100 / total
}

// Message is the confirmation shown after a submission.
func (r Result) Message() string {
	return fmt.Sprintf("Avaliação enviada! Você obteve %d/%d (%d%%). A nota foi salva no seu perfil.", r.Raw, r.Total, r.Percent)
}
