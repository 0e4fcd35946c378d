package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cpptutor/cpptutor-backend/internal/config"
	"github.com/cpptutor/cpptutor-backend/internal/llm"
	"github.com/cpptutor/cpptutor-backend/internal/model"
	"github.com/cpptutor/cpptutor-backend/internal/repository"
)

// Domain errors.
var (
	// ErrBadQuizFormat means the generator returned JSON that is neither
	// a bare item list nor an object with a "questions" list, or no item
	// survived validation.
	ErrBadQuizFormat = errors.New("quiz generator returned an unexpected format")
	// ErrNoActiveQuiz means the user has no stashed quiz to display or grade.
	ErrNoActiveQuiz = errors.New("no active quiz in session")
)

// quizItemCount is the number of items requested per quiz. The endpoint
// is asked for exactly this many; a short or long response is accepted
// after validation but logged.
const quizItemCount = 20

const quizSystemPrompt = "You are a helpful assistant that returns valid JSON only."

const quizPromptTemplate = `Generate %d unique multiple-choice C++ questions for %s level.
Each question should be in the following JSON format:
[
  {
    "question": "What is the output of ...?",
    "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
    "answer": "A"
  },
  ...
]
Return only the JSON array, nothing else.`

// QuizService generates, stashes, and grades quizzes. Generated items
// live in Redis under the user's quiz key until overwritten or expired;
// graded attempts are summarized to PostgreSQL.
type QuizService struct {
	completer   llm.Completer
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
	quizTTL     time.Duration
	log         zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(
	completer llm.Completer,
	attemptRepo *repository.AttemptRepository,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *QuizService {
	return &QuizService{
		completer:   completer,
		attemptRepo: attemptRepo,
		rdb:         rdb,
		quizTTL:     cfg.QuizTTL,
		log:         log.With().Str("component", "quiz_service").Logger(),
	}
}

// Generate requests a fresh item set for the difficulty, validates and
// shuffles it, and stashes it under the user's session. Any previous
// quiz is overwritten.
func (s *QuizService) Generate(ctx context.Context, userID int, difficulty string) (*model.QuizStash, error) {
	prompt := fmt.Sprintf(quizPromptTemplate, quizItemCount, difficulty)

	raw, err := s.completer.CompleteJSON(ctx, quizSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	items, err := ParseQuizPayload([]byte(raw))
	if err != nil {
		return nil, err
	}

	if len(items) != quizItemCount {
		s.log.Warn().
			Int("want", quizItemCount).
			Int("got", len(items)).
			Str("difficulty", difficulty).
			Msg("Generator returned unexpected item count")
	}

	shuffleItems(items)

	stash := &model.QuizStash{
		Difficulty:  difficulty,
		Items:       items,
		GeneratedAt: time.Now(),
	}

	if err := s.saveStash(ctx, userID, stash); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Str("difficulty", difficulty).
		Int("items", len(items)).
		Msg("Quiz generated")
	return stash, nil
}

// ActiveQuiz returns the user's stashed quiz, or ErrNoActiveQuiz.
func (s *QuizService) ActiveQuiz(ctx context.Context, userID int) (*model.QuizStash, error) {
	data, err := s.rdb.Get(ctx, config.CacheKey.UserQuizKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoActiveQuiz
		}
		return nil, fmt.Errorf("get quiz stash: %w", err)
	}

	var stash model.QuizStash
	if err := json.Unmarshal(data, &stash); err != nil {
		return nil, fmt.Errorf("unmarshal quiz stash: %w", err)
	}
	if len(stash.Items) == 0 {
		return nil, ErrNoActiveQuiz
	}
	return &stash, nil
}

// PaperFor strips correct labels from a stash for display.
func PaperFor(stash *model.QuizStash) []model.QuizItemForDisplay {
	paper := make([]model.QuizItemForDisplay, len(stash.Items))
	for i, item := range stash.Items {
		paper[i] = model.QuizItemForDisplay{
			Index:    i,
			Question: item.Question,
			Options:  item.Options,
		}
	}
	return paper
}

// Grade replays the stashed items against submitted answers. Comparison
// is an exact label match per item index; an unanswered item counts as
// incorrect. Grading does not consume the stash, so resubmitting the
// same answers yields the same score.
func (s *QuizService) Grade(ctx context.Context, userID int, answers map[int]string) (*model.QuizResult, error) {
	stash, err := s.ActiveQuiz(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := GradeItems(stash.Items, answers)

	attempt := &model.QuizAttempt{
		UserID:     userID,
		Difficulty: stash.Difficulty,
		Score:      result.Score,
		Total:      result.Total,
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		// History is best-effort; the graded result is still returned.
		s.log.Error().Err(err).Int("user_id", userID).Msg("Failed to persist quiz attempt")
	}

	return result, nil
}

// GradeItems computes the score for a submission against an item set.
func GradeItems(items []model.QuizItem, answers map[int]string) *model.QuizResult {
	result := &model.QuizResult{
		Total: len(items),
		Items: make([]model.GradedItem, len(items)),
	}

	for i, item := range items {
		selected := answers[i]
		correct := selected == item.Answer
		if correct {
			result.Score++
		}
		result.Items[i] = model.GradedItem{
			Index:    i,
			Question: item.Question,
			Options:  item.Options,
			Answer:   item.Answer,
			Selected: selected,
			Correct:  correct,
		}
	}
	return result
}

// ParseQuizPayload decodes generator output into a validated item set.
// Accepted shapes are a bare JSON array of items or an object with a
// "questions" array; anything else is ErrBadQuizFormat. Items that fail
// validation are dropped; an empty result is ErrBadQuizFormat.
func ParseQuizPayload(raw []byte) ([]model.QuizItem, error) {
	trimmed := strings.TrimSpace(string(raw))

	var parsed []model.QuizItem
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadQuizFormat, err)
		}
	case strings.HasPrefix(trimmed, "{"):
		var envelope struct {
			Questions []model.QuizItem `json:"questions"`
		}
		if err := json.Unmarshal([]byte(trimmed), &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadQuizFormat, err)
		}
		if envelope.Questions == nil {
			return nil, fmt.Errorf("%w: object has no questions list", ErrBadQuizFormat)
		}
		parsed = envelope.Questions
	default:
		return nil, fmt.Errorf("%w: neither array nor object", ErrBadQuizFormat)
	}

	items := make([]model.QuizItem, 0, len(parsed))
	for _, item := range parsed {
		item.Answer = strings.TrimSpace(item.Answer)
		if validQuizItem(item) {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no well-formed items", ErrBadQuizFormat)
	}
	return items, nil
}

// shuffleItems permutes the item set in place. The seed is not
// persisted, so a regenerated quiz is never reproducible.
func shuffleItems(items []model.QuizItem) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// validQuizItem enforces the item invariants: non-empty question text,
// exactly 4 options, and an answer label present among the option labels.
func validQuizItem(item model.QuizItem) bool {
	if strings.TrimSpace(item.Question) == "" || len(item.Options) != 4 || item.Answer == "" {
		return false
	}
	for _, opt := range item.Options {
		if optionLabel(opt) == item.Answer {
			return true
		}
	}
	return false
}

// optionLabel extracts the label prefix from an option string like
// "A) Option 1".
func optionLabel(option string) string {
	label, _, found := strings.Cut(option, ")")
	if !found {
		return ""
	}
	return strings.TrimSpace(label)
}

func (s *QuizService) saveStash(ctx context.Context, userID int, stash *model.QuizStash) error {
	data, err := json.Marshal(stash)
	if err != nil {
		return fmt.Errorf("marshal quiz stash: %w", err)
	}
	if err := s.rdb.Set(ctx, config.CacheKey.UserQuizKey(userID), data, s.quizTTL).Err(); err != nil {
		return fmt.Errorf("stash quiz: %w", err)
	}
	return nil
}
