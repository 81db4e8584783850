package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// QuestionService handles question authoring. Writes invalidate the cached
// question set so active sessions see a consistent snapshot on next rebuild.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	quizService  *QuizService
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, quizService *QuizService) *QuestionService {
	return &QuestionService{questionRepo: questionRepo, quizService: quizService}
}

// List returns every question including correct answers, admin view.
func (s *QuestionService) List(ctx context.Context) ([]model.QuizQuestion, error) {
	return s.questionRepo.List(ctx)
}

// Create authors a new question and invalidates the cached set.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.QuizQuestion, error) {
	q := &model.QuizQuestion{
		Title:         req.Title,
		Description:   req.Description,
		OptionA:       req.OptionA,
		OptionB:       req.OptionB,
		OptionC:       req.OptionC,
		OptionD:       req.OptionD,
		CorrectAnswer: model.AnswerOption(req.CorrectAnswer),
		Category:      req.Category,
		Difficulty:    req.Difficulty,
	}
	if q.Difficulty == 0 {
		q.Difficulty = 1
	}

	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	if err := s.quizService.InvalidateCache(ctx); err != nil {
		return nil, fmt.Errorf("invalidate question cache: %w", err)
	}
	return q, nil
}

// Delete removes a question and invalidates the cached set. Returns false
// if the question does not exist.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.questionRepo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete question: %w", err)
	}
	if deleted {
		if err := s.quizService.InvalidateCache(ctx); err != nil {
			return false, fmt.Errorf("invalidate question cache: %w", err)
		}
	}
	return deleted, nil
}
