package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionStatusTerminal(t *testing.T) {
	assert.False(t, SessionStatusNotStarted.Terminal())
	assert.False(t, SessionStatusActive.Terminal())
	assert.False(t, SessionStatusPaused.Terminal())
	assert.True(t, SessionStatusCompleted.Terminal())
	assert.True(t, SessionStatusExpired.Terminal())
}

func TestSessionTransitionGuards(t *testing.T) {
	s := &QuizSession{Status: SessionStatusNotStarted}
	assert.True(t, s.CanStart())
	assert.False(t, s.CanSubmit())

	s.Status = SessionStatusActive
	assert.False(t, s.CanStart())
	assert.True(t, s.CanSubmit())

	s.Status = SessionStatusCompleted
	assert.False(t, s.CanStart())
	assert.False(t, s.CanSubmit())

	s.Status = SessionStatusExpired
	assert.False(t, s.CanStart())
	assert.False(t, s.CanSubmit())
}

func TestSessionRemaining(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := &QuizSession{
		Status:          SessionStatusActive,
		StartedAt:       &started,
		DurationMinutes: 55,
	}

	assert.Equal(t, 55*time.Minute, s.Remaining(started))
	assert.Equal(t, 25*time.Minute, s.Remaining(started.Add(30*time.Minute)))
	assert.Equal(t, time.Duration(0), s.Remaining(started.Add(55*time.Minute)))

	// Past the deadline clamps at zero instead of going negative.
	assert.Equal(t, time.Duration(0), s.Remaining(started.Add(2*time.Hour)))
}

func TestSessionRemainingNotStarted(t *testing.T) {
	s := &QuizSession{Status: SessionStatusNotStarted, DurationMinutes: 40}

	// A session that has not started still has its full allotment.
	assert.Equal(t, 40*time.Minute, s.Remaining(time.Now()))
	assert.True(t, s.Deadline().IsZero())
}
