package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentLoginKey returns the cache key holding a student's active login JTI
func (r *CacheKeyStruct) StudentLoginKey(studentID string) string {
	return fmt.Sprintf("login:%s", studentID)
}

// SessionStartKey returns the cache key for a quiz session's start timestamp
func (r *CacheKeyStruct) SessionStartKey(sessionID string) string {
	return fmt.Sprintf("session:%s:started_at", sessionID)
}

// SessionAnswersKey returns the cache key for a session's autosaved answers
func (r *CacheKeyStruct) SessionAnswersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:answers", sessionID)
}

// SessionReviewKey returns the cache key for a session's review-flagged questions
func (r *CacheKeyStruct) SessionReviewKey(sessionID string) string {
	return fmt.Sprintf("session:%s:review", sessionID)
}

// QuestionSetKey returns the cache key for the published question set payload
func (r *CacheKeyStruct) QuestionSetKey() string {
	return "quiz:question_set"
}

// AnswerKeyKey returns the cache key for the question set's correct answers
func (r *CacheKeyStruct) AnswerKeyKey() string {
	return "quiz:answer_key"
}

// SessionMonitorChannel returns the Redis PubSub channel for a university's
// live session events
func (r *CacheKeyStruct) SessionMonitorChannel(universityID string) string {
	return fmt.Sprintf("university:%s:sessions:monitor", universityID)
}

var CacheKey = NewCacheKeyStruct()
