package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/cpptutor/cpptutor-backend/internal/llm"
)

// tutorPersona pins the assistant to the C++ domain. Questions are
// forwarded verbatim under this instruction.
const tutorPersona = "You are a helpful C++ tutor. Only answer C++ questions. " +
	"If the user asks anything else, respond: 'Sorry, I can only help with C++ programming questions.'"

const tutorTemperature = 0.7

// TutorService forwards user questions to the language-model endpoint
// under a fixed persona and returns the raw reply text.
type TutorService struct {
	completer llm.Completer
	log       zerolog.Logger
}

// NewTutorService creates a new TutorService.
func NewTutorService(completer llm.Completer, log zerolog.Logger) *TutorService {
	return &TutorService{
		completer: completer,
		log:       log.With().Str("component", "tutor_service").Logger(),
	}
}

// Ask returns the tutor's reply to a question. Question content is not
// validated locally; the persona instruction constrains the domain.
func (s *TutorService) Ask(ctx context.Context, question string) (string, error) {
	reply, err := s.completer.Complete(ctx, tutorPersona, question, tutorTemperature)
	if err != nil {
		return "", err
	}
	s.log.Debug().Int("question_len", len(question)).Int("reply_len", len(reply)).Msg("Tutor reply generated")
	return reply, nil
}

// AskStream streams the tutor's reply chunk by chunk.
func (s *TutorService) AskStream(ctx context.Context, question string, fn func(chunk string) error) error {
	return s.completer.CompleteStream(ctx, tutorPersona, question, tutorTemperature, fn)
}
