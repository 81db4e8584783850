package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Ayushant/skillspan-hub/internal/model"
)

func TestRecordSelectionRejectsInvalidOption(t *testing.T) {
	svc := NewSessionService(nil, nil, nil, nil, zerolog.Nop())

	for _, bad := range []string{"E", "a", "AB", ""} {
		err := svc.RecordSelection(context.Background(), uuid.New(), uuid.New(), model.AnswerOption(bad))
		assert.ErrorIs(t, err, ErrInvalidOption, "option %q", bad)
	}

	// A missing question is a different failure, reported as such.
	assert.NotErrorIs(t, ErrUnknownQuestion, ErrInvalidOption)
}
