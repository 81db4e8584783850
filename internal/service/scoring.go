package service

import (
	"math"

	"github.com/google/uuid"

	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// Score computes the percentage score for correct answers out of total
// questions, rounded half up. An empty question set scores zero.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Grade compares a session's recorded selections against the answer key and
// returns the per-question verdicts alongside the aggregate outcome. Questions
// with no selection, and rows holding only a review flag, count as wrong.
func Grade(answers []model.Answer, answerKey map[uuid.UUID]model.AnswerOption, status model.SessionStatus) (questionIDs []uuid.UUID, verdicts []bool, out repository.Outcome) {
	correct := 0
	for _, a := range answers {
		if a.SelectedAnswer == nil {
			continue
		}
		isCorrect := answerKey[a.QuestionID] == *a.SelectedAnswer
		if isCorrect {
			correct++
		}
		questionIDs = append(questionIDs, a.QuestionID)
		verdicts = append(verdicts, isCorrect)
	}

	total := len(answerKey)
	out = repository.Outcome{
		Status:         status,
		TotalQuestions: total,
		CorrectAnswers: correct,
		Score:          Score(correct, total),
	}
	return questionIDs, verdicts, out
}
