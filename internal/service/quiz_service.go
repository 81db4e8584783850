package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// ErrQuestionSetEmpty is returned when no questions have been authored yet.
var ErrQuestionSetEmpty = errors.New("question set is empty")

// QuizService serves the shared question set. The set and its answer key are
// cached in Redis so that session traffic never touches PostgreSQL for
// question reads; authoring invalidates both.
type QuizService struct {
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
}

// NewQuizService creates a new QuizService.
func NewQuizService(questionRepo *repository.QuestionRepository, rdb *redis.Client) *QuizService {
	return &QuizService{questionRepo: questionRepo, rdb: rdb}
}

// GetQuestionSet returns the full question set with correct answers stripped,
// in the fixed authoring order every student sees.
func (s *QuizService) GetQuestionSet(ctx context.Context) ([]model.QuestionForStudent, error) {
	cached, err := s.rdb.Get(ctx, config.CacheKey.QuestionSetKey()).Result()
	if err == nil {
		var questions []model.QuestionForStudent
		if err := json.Unmarshal([]byte(cached), &questions); err == nil {
			return questions, nil
		}
		// Corrupt cache entry, rebuild below.
	} else if !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get question set cache: %w", err)
	}

	questions, _, err := s.rebuildCache(ctx)
	return questions, err
}

// GetAnswerKey returns the correct option per question ID.
func (s *QuizService) GetAnswerKey(ctx context.Context) (map[uuid.UUID]model.AnswerOption, error) {
	entries, err := s.rdb.HGetAll(ctx, config.CacheKey.AnswerKeyKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("get answer key cache: %w", err)
	}
	if len(entries) == 0 {
		_, key, err := s.rebuildCache(ctx)
		return key, err
	}

	key := make(map[uuid.UUID]model.AnswerOption, len(entries))
	for id, option := range entries {
		qid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid question id in answer key: %w", err)
		}
		key[qid] = model.AnswerOption(option)
	}
	return key, nil
}

// PrewarmCache loads the question set and answer key into Redis. Called on
// startup so the first session does not pay the rebuild cost.
func (s *QuizService) PrewarmCache(ctx context.Context) error {
	_, _, err := s.rebuildCache(ctx)
	if errors.Is(err, ErrQuestionSetEmpty) {
		return nil
	}
	return err
}

// InvalidateCache drops both cache entries; the next read rebuilds them.
func (s *QuizService) InvalidateCache(ctx context.Context) error {
	return s.rdb.Del(ctx, config.CacheKey.QuestionSetKey(), config.CacheKey.AnswerKeyKey()).Err()
}

func (s *QuizService) rebuildCache(ctx context.Context) ([]model.QuestionForStudent, map[uuid.UUID]model.AnswerOption, error) {
	all, err := s.questionRepo.List(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list questions: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, ErrQuestionSetEmpty
	}

	questions := make([]model.QuestionForStudent, 0, len(all))
	answerKey := make(map[uuid.UUID]model.AnswerOption, len(all))
	keyFields := make(map[string]string, len(all))
	for _, q := range all {
		questions = append(questions, q.ForStudent())
		answerKey[q.ID] = q.CorrectAnswer
		keyFields[q.ID.String()] = string(q.CorrectAnswer)
	}

	payload, err := json.Marshal(questions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal question set: %w", err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, config.CacheKey.QuestionSetKey(), payload, 0)
	pipe.Del(ctx, config.CacheKey.AnswerKeyKey())
	pipe.HSet(ctx, config.CacheKey.AnswerKeyKey(), keyFields)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, nil, fmt.Errorf("warm question cache: %w", err)
	}

	return questions, answerKey, nil
}
