package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
)

func newTestQuizService(t *testing.T) (*QuizService, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	// No repository: these tests exercise the warm-cache paths only.
	return NewQuizService(nil, rdb), mr
}

func TestGetQuestionSetFromWarmCache(t *testing.T) {
	svc, mr := newTestQuizService(t)
	ctx := context.Background()

	want := []model.QuestionForStudent{
		{ID: uuid.New(), Title: "Launch window alignment", Category: "mission-planning"},
		{ID: uuid.New(), Title: "Habitat pressure loss", Category: "life-support"},
	}
	payload, err := json.Marshal(want)
	require.NoError(t, err)
	mr.Set(config.CacheKey.QuestionSetKey(), string(payload))

	got, err := svc.GetQuestionSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetAnswerKeyFromWarmCache(t *testing.T) {
	svc, mr := newTestQuizService(t)
	ctx := context.Background()

	q1 := uuid.New()
	q2 := uuid.New()
	mr.HSet(config.CacheKey.AnswerKeyKey(), q1.String(), "A")
	mr.HSet(config.CacheKey.AnswerKeyKey(), q2.String(), "D")

	key, err := svc.GetAnswerKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[uuid.UUID]model.AnswerOption{
		q1: model.OptionA,
		q2: model.OptionD,
	}, key)
}

func TestGetAnswerKeyRejectsGarbageEntries(t *testing.T) {
	svc, mr := newTestQuizService(t)
	ctx := context.Background()

	mr.HSet(config.CacheKey.AnswerKeyKey(), "not-a-uuid", "A")

	_, err := svc.GetAnswerKey(ctx)
	assert.Error(t, err)
}

func TestInvalidateCache(t *testing.T) {
	svc, mr := newTestQuizService(t)
	ctx := context.Background()

	mr.Set(config.CacheKey.QuestionSetKey(), "[]")
	mr.HSet(config.CacheKey.AnswerKeyKey(), uuid.New().String(), "B")

	require.NoError(t, svc.InvalidateCache(ctx))

	assert.False(t, mr.Exists(config.CacheKey.QuestionSetKey()))
	assert.False(t, mr.Exists(config.CacheKey.AnswerKeyKey()))
}
