package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// Common session errors.
var (
	ErrNoSession        = errors.New("no quiz session has been granted")
	ErrAlreadyGranted   = errors.New("student already holds an open session")
	ErrAlreadyStarted   = errors.New("session has already been started")
	ErrSessionNotActive = errors.New("session is not active")
	ErrUnknownQuestion  = errors.New("question is not part of the quiz")
	ErrInvalidOption    = errors.New("answer option must be A, B, C or D")
)

// MonitorEvent is published to the university's Redis channel whenever a
// session changes, feeding the admin live monitor stream.
type MonitorEvent struct {
	Type      string              `json:"type"`
	SessionID uuid.UUID           `json:"session_id"`
	StudentID uuid.UUID           `json:"student_id"`
	Status    model.SessionStatus `json:"status"`
	Score     *int                `json:"score,omitempty"`
	At        time.Time           `json:"at"`
}

// answerQueuePayload is the persist_answers_queue wire format consumed by the
// autosave worker.
type answerQueuePayload struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// SessionService owns the quiz session lifecycle. During an active session
// Redis is the hot write path (selections land in a hash and a persistence
// queue); the PostgreSQL ledger is made authoritative again at every terminal
// transition.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	answerRepo  *repository.AnswerRepository
	quizService *QuizService
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	answerRepo *repository.AnswerRepository,
	quizService *QuizService,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		answerRepo:  answerRepo,
		quizService: quizService,
		rdb:         rdb,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// GetCurrent returns the student's single open session.
func (s *SessionService) GetCurrent(ctx context.Context, studentID uuid.UUID) (*model.QuizSession, error) {
	session, err := s.sessionRepo.GetCurrentByStudent(ctx, studentID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("get current session: %w", err)
	}
	return session, nil
}

// Start transitions the student's granted session to active and stamps the
// server-side start time. The countdown begins here, never on the client.
func (s *SessionService) Start(ctx context.Context, studentID uuid.UUID) (*model.QuizSession, error) {
	session, err := s.GetCurrent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	startedAt, ok, err := s.sessionRepo.Start(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyStarted
	}

	session.Status = model.SessionStatusActive
	session.StartedAt = startedAt

	// Cache the start time so state rehydration skips PostgreSQL. TTL covers
	// the full allotment plus slack for the expiry sweep.
	ttl := time.Duration(session.DurationMinutes)*time.Minute + 10*time.Minute
	if err := s.rdb.Set(ctx, config.CacheKey.SessionStartKey(session.ID.String()), startedAt.Unix(), ttl).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("cache start time failed")
	}

	s.publish(ctx, session, "session_started")
	return session, nil
}

// GetQuestions returns the question set for an active session, correct
// answers stripped.
func (s *SessionService) GetQuestions(ctx context.Context, studentID uuid.UUID) ([]model.QuestionForStudent, error) {
	session, err := s.GetCurrent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !session.CanSubmit() {
		return nil, ErrSessionNotActive
	}
	return s.quizService.GetQuestionSet(ctx)
}

// RecordSelection records the student's option for a question. The selection
// is last-write-wins: repeating the call replaces the previous choice. The
// write lands in Redis synchronously and reaches PostgreSQL through the
// autosave queue.
func (s *SessionService) RecordSelection(ctx context.Context, studentID, questionID uuid.UUID, option model.AnswerOption) error {
	if !option.Valid() {
		return ErrInvalidOption
	}

	session, err := s.activeSession(ctx, studentID)
	if err != nil {
		return err
	}

	answerKey, err := s.quizService.GetAnswerKey(ctx)
	if err != nil {
		return err
	}
	if _, ok := answerKey[questionID]; !ok {
		return ErrUnknownQuestion
	}

	if err := s.rdb.HSet(ctx, config.CacheKey.SessionAnswersKey(session.ID.String()),
		questionID.String(), string(option)).Err(); err != nil {
		return fmt.Errorf("autosave answer: %w", err)
	}

	payload, _ := json.Marshal(answerQueuePayload{
		SessionID:  session.ID.String(),
		QuestionID: questionID.String(),
		Answer:     string(option),
	})
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAnswersQueue, payload).Err(); err != nil {
		// The Redis hash still holds the answer; the submit-time flush will
		// persist it even if the queue push failed.
		s.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("enqueue answer failed")
	}

	return nil
}

// ToggleReview flips the review flag on a question and returns the new value.
// The flag never affects scoring.
func (s *SessionService) ToggleReview(ctx context.Context, studentID, questionID uuid.UUID) (bool, error) {
	session, err := s.activeSession(ctx, studentID)
	if err != nil {
		return false, err
	}

	answerKey, err := s.quizService.GetAnswerKey(ctx)
	if err != nil {
		return false, err
	}
	if _, ok := answerKey[questionID]; !ok {
		return false, ErrUnknownQuestion
	}

	marked, err := s.answerRepo.ToggleReview(ctx, session.ID, questionID)
	if err != nil {
		return false, fmt.Errorf("toggle review: %w", err)
	}

	reviewKey := config.CacheKey.SessionReviewKey(session.ID.String())
	if marked {
		err = s.rdb.SAdd(ctx, reviewKey, questionID.String()).Err()
	} else {
		err = s.rdb.SRem(ctx, reviewKey, questionID.String()).Err()
	}
	if err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID.String()).Msg("mirror review flag failed")
	}

	return marked, nil
}

// GetState rehydrates everything a reconnecting client needs: status,
// server-computed remaining time, autosaved answers, and review flags.
func (s *SessionService) GetState(ctx context.Context, studentID uuid.UUID) (*model.SessionState, error) {
	session, err := s.GetCurrent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	state := &model.SessionState{
		SessionID:       session.ID,
		Status:          session.Status,
		Answers:         map[string]model.AnswerOption{},
		MarkedForReview: []string{},
	}

	if session.Status == model.SessionStatusNotStarted {
		state.RemainingSeconds = session.Remaining(time.Now()).Seconds()
		return state, nil
	}

	remaining, err := s.remaining(ctx, session)
	if err != nil {
		return nil, err
	}
	state.RemainingSeconds = remaining.Seconds()

	answers, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(session.ID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get autosaved answers: %w", err)
	}
	if len(answers) == 0 {
		// Cache miss (eviction or restart): fall back to the ledger and
		// self-heal the hash.
		rows, err := s.answerRepo.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("list answers: %w", err)
		}
		heal := map[string]string{}
		for _, row := range rows {
			if row.SelectedAnswer != nil {
				answers[row.QuestionID.String()] = string(*row.SelectedAnswer)
				heal[row.QuestionID.String()] = string(*row.SelectedAnswer)
			}
			if row.MarkedForReview {
				state.MarkedForReview = append(state.MarkedForReview, row.QuestionID.String())
			}
		}
		if len(heal) > 0 {
			_ = s.rdb.HSet(ctx, config.CacheKey.SessionAnswersKey(session.ID.String()), heal).Err()
		}
	} else {
		review, err := s.rdb.SMembers(ctx, config.CacheKey.SessionReviewKey(session.ID.String())).Result()
		if err != nil {
			return nil, fmt.Errorf("get review flags: %w", err)
		}
		state.MarkedForReview = review
	}

	for id, option := range answers {
		state.Answers[id] = model.AnswerOption(option)
	}
	return state, nil
}

// Submit finishes the student's active session and returns the graded result.
// A submit that races the deadline or the expiry sweep is a no-op: the
// already-terminal session is returned unchanged.
func (s *SessionService) Submit(ctx context.Context, studentID uuid.UUID) (*model.QuizSession, error) {
	session, err := s.sessionRepo.GetCurrentByStudent(ctx, studentID)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, fmt.Errorf("get current session: %w", err)
		}
		// No open session: surface the latest finished attempt so a
		// double-submit still sees its score.
		finished, listErr := s.sessionRepo.ListFinishedByStudent(ctx, studentID)
		if listErr != nil || len(finished) == 0 {
			return nil, ErrNoSession
		}
		return &finished[0], nil
	}
	if session.Status != model.SessionStatusActive {
		return nil, ErrSessionNotActive
	}

	// A submit always lands the session in completed, even one fired at the
	// countdown's last instant; expired is reserved for the deadline sweep.
	finished, ok, err := s.finish(ctx, session, model.SessionStatusCompleted, "session_submitted")
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against the expiry sweep; return the terminal row.
		return s.sessionRepo.GetByID(ctx, session.ID)
	}
	return finished, nil
}

// ForceStop terminates a student's active session on behalf of an admin. The
// session completes with a score computed from whatever the ledger holds at
// stop time. Returns false if the session was not active.
func (s *SessionService) ForceStop(ctx context.Context, sessionID uuid.UUID) (*model.QuizSession, bool, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, false, ErrNoSession
		}
		return nil, false, fmt.Errorf("get session: %w", err)
	}
	if session.Status != model.SessionStatusActive {
		return session, false, nil
	}

	finished, ok, err := s.finish(ctx, session, model.SessionStatusCompleted, "session_force_stopped")
	if err != nil {
		return nil, false, err
	}
	if !ok {
		session, err := s.sessionRepo.GetByID(ctx, sessionID)
		return session, false, err
	}
	return finished, true, nil
}

// GetSession returns one session by ID.
func (s *SessionService) GetSession(ctx context.Context, sessionID uuid.UUID) (*model.QuizSession, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	return session, nil
}

// StopAll force-stops every active session of a university and returns the
// number actually stopped.
func (s *SessionService) StopAll(ctx context.Context, universityID uuid.UUID) (int, error) {
	active, err := s.sessionRepo.ListActiveByUniversity(ctx, universityID)
	if err != nil {
		return 0, fmt.Errorf("list active sessions: %w", err)
	}

	stopped := 0
	for i := range active {
		_, ok, err := s.finish(ctx, &active[i], model.SessionStatusCompleted, "session_force_stopped")
		if err != nil {
			s.log.Error().Err(err).Str("session_id", active[i].ID.String()).Msg("stop-all: finish failed")
			continue
		}
		if ok {
			stopped++
		}
	}
	return stopped, nil
}

// Grant creates a not_started session for a single student, typically to
// allow a retake after a force stop or an expiry.
func (s *SessionService) Grant(ctx context.Context, studentID, universityID uuid.UUID, durationMinutes int) (*model.QuizSession, error) {
	session, err := s.sessionRepo.Grant(ctx, studentID, universityID, durationMinutes)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAlreadyGranted
		}
		return nil, fmt.Errorf("grant session: %w", err)
	}
	return session, nil
}

// GrantAll creates not_started sessions for every actively licensed student
// of a university. Students with an open session are skipped.
func (s *SessionService) GrantAll(ctx context.Context, universityID uuid.UUID, durationMinutes int) (int64, error) {
	return s.sessionRepo.GrantForUniversity(ctx, universityID, durationMinutes)
}

// Expire transitions an overdue active session to expired, scoring whatever
// was recorded. Used by the deadline sweep.
func (s *SessionService) Expire(ctx context.Context, session *model.QuizSession) (bool, error) {
	_, ok, err := s.finish(ctx, session, model.SessionStatusExpired, "session_expired")
	return ok, err
}

// ListOverdue exposes the repository sweep query to the expiry worker.
func (s *SessionService) ListOverdue(ctx context.Context, limit int) ([]model.QuizSession, error) {
	return s.sessionRepo.ListOverdue(ctx, limit)
}

// ListByUniversity returns a university's sessions for the admin results
// screen.
func (s *SessionService) ListByUniversity(ctx context.Context, universityID uuid.UUID, status *model.SessionStatus, page, perPage int) ([]repository.SessionResult, int64, error) {
	return s.sessionRepo.ListByUniversity(ctx, universityID, status, page, perPage)
}

// Remaining returns the server-side countdown value for an open session.
func (s *SessionService) Remaining(ctx context.Context, session *model.QuizSession) (time.Duration, error) {
	if session.Status != model.SessionStatusActive {
		return session.Remaining(time.Now()), nil
	}
	return s.remaining(ctx, session)
}

// activeSession loads the current session and enforces the active-state and
// deadline guards shared by all in-quiz writes.
func (s *SessionService) activeSession(ctx context.Context, studentID uuid.UUID) (*model.QuizSession, error) {
	session, err := s.GetCurrent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusActive {
		return nil, ErrSessionNotActive
	}
	remaining, err := s.remaining(ctx, session)
	if err != nil {
		return nil, err
	}
	if remaining == 0 {
		return nil, ErrSessionNotActive
	}
	return session, nil
}

// remaining computes time left from the cached start time, falling back to
// the database row and self-healing the cache on a miss.
func (s *SessionService) remaining(ctx context.Context, session *model.QuizSession) (time.Duration, error) {
	startKey := config.CacheKey.SessionStartKey(session.ID.String())

	val, err := s.rdb.Get(ctx, startKey).Result()
	if errors.Is(err, redis.Nil) {
		if session.StartedAt == nil {
			return 0, ErrSessionNotActive
		}
		ttl := time.Duration(session.DurationMinutes)*time.Minute + 10*time.Minute
		_ = s.rdb.Set(ctx, startKey, session.StartedAt.Unix(), ttl).Err()
		return session.Remaining(time.Now()), nil
	}
	if err != nil {
		return 0, fmt.Errorf("get start time: %w", err)
	}

	var startUnix int64
	if _, err := fmt.Sscanf(val, "%d", &startUnix); err != nil {
		return 0, fmt.Errorf("invalid start time in cache: %w", err)
	}
	started := time.Unix(startUnix, 0)
	deadline := started.Add(time.Duration(session.DurationMinutes) * time.Minute)
	remaining := time.Until(deadline)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// finish runs the shared terminal transition: flush the autosave hash into
// the ledger, grade against the answer key, flip the guarded status, stamp
// verdicts, and clean up the session's Redis keys.
func (s *SessionService) finish(ctx context.Context, session *model.QuizSession, status model.SessionStatus, event string) (*model.QuizSession, bool, error) {
	answers, err := s.collectAnswers(ctx, session.ID)
	if err != nil {
		return nil, false, err
	}

	answerKey, err := gradableAnswerKey(s.quizService.GetAnswerKey(ctx))
	if err != nil {
		return nil, false, err
	}

	questionIDs, verdicts, outcome := Grade(answers, answerKey, status)

	finished, ok, err := s.sessionRepo.Finish(ctx, session.ID, outcome)
	if err != nil {
		return nil, false, fmt.Errorf("finish session: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	// Make the ledger reflect exactly what was graded.
	ids := make([]uuid.UUID, 0, len(answers))
	options := make([]string, 0, len(answers))
	for _, a := range answers {
		if a.SelectedAnswer != nil {
			ids = append(ids, a.QuestionID)
			options = append(options, string(*a.SelectedAnswer))
		}
	}
	if err := s.answerRepo.BulkUpsertSelections(ctx, session.ID, ids, options); err != nil {
		return nil, false, fmt.Errorf("flush answers: %w", err)
	}
	if err := s.answerRepo.StampCorrectness(ctx, session.ID, questionIDs, verdicts); err != nil {
		return nil, false, fmt.Errorf("stamp correctness: %w", err)
	}

	s.cleanupSessionKeys(ctx, session.ID)
	s.publish(ctx, finished, event)
	return finished, true, nil
}

// gradableAnswerKey adapts an answer-key lookup for grading. An unauthored
// question set is not a fault here: grading an empty key yields score 0, so
// the terminal transition still goes through.
func gradableAnswerKey(key map[uuid.UUID]model.AnswerOption, err error) (map[uuid.UUID]model.AnswerOption, error) {
	if errors.Is(err, ErrQuestionSetEmpty) {
		return nil, nil
	}
	return key, err
}

// collectAnswers builds the gradable answer set, preferring the Redis hash
// (which always has the freshest selections) over the ledger.
func (s *SessionService) collectAnswers(ctx context.Context, sessionID uuid.UUID) ([]model.Answer, error) {
	cached, err := s.rdb.HGetAll(ctx, config.CacheKey.SessionAnswersKey(sessionID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("get autosaved answers: %w", err)
	}

	if len(cached) == 0 {
		return s.answerRepo.ListBySession(ctx, sessionID)
	}

	answers := make([]model.Answer, 0, len(cached))
	for id, raw := range cached {
		qid, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		option := model.AnswerOption(raw)
		if !option.Valid() {
			continue
		}
		answers = append(answers, model.Answer{
			SessionID:      sessionID,
			QuestionID:     qid,
			SelectedAnswer: &option,
		})
	}
	return answers, nil
}

func (s *SessionService) cleanupSessionKeys(ctx context.Context, sessionID uuid.UUID) {
	id := sessionID.String()
	if err := s.rdb.Del(ctx,
		config.CacheKey.SessionStartKey(id),
		config.CacheKey.SessionAnswersKey(id),
		config.CacheKey.SessionReviewKey(id),
	).Err(); err != nil {
		s.log.Error().Err(err).Str("session_id", id).Msg("cleanup session keys failed")
	}
}

func (s *SessionService) publish(ctx context.Context, session *model.QuizSession, event string) {
	payload, err := json.Marshal(MonitorEvent{
		Type:      event,
		SessionID: session.ID,
		StudentID: session.StudentID,
		Status:    session.Status,
		Score:     session.Score,
		At:        time.Now(),
	})
	if err != nil {
		return
	}
	channel := config.CacheKey.SessionMonitorChannel(session.UniversityID.String())
	if err := s.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		s.log.Error().Err(err).Str("channel", channel).Msg("publish monitor event failed")
	}
}
