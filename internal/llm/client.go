package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"

	"github.com/cpptutor/cpptutor-backend/internal/config"
)

// ErrRemoteService wraps any failure of the language-model endpoint.
// Callers surface it as a generic user-facing message; the underlying
// cause stays in the logs.
var ErrRemoteService = errors.New("language model service unavailable")

// Completer is the opaque text-completion side of the endpoint.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
	CompleteJSON(ctx context.Context, system, user string) (string, error)
	CompleteStream(ctx context.Context, system, user string, temperature float32, fn func(chunk string) error) error
}

// SpeechClient is the audio side of the endpoint, used by the voice bridge.
type SpeechClient interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}

// Client wraps the OpenAI API with per-call timeouts and one bounded
// retry on transient failures.
type Client struct {
	api       *openai.Client
	chatModel string
	quizModel string
	timeout   time.Duration
	log       zerolog.Logger
}

// NewClient creates a Client from application config.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		api:       openai.NewClient(cfg.OpenAIKey),
		chatModel: cfg.ChatModel,
		quizModel: cfg.QuizModel,
		timeout:   cfg.LLMTimeout,
		log:       log.With().Str("component", "llm").Logger(),
	}
}

// Complete sends a system + user message pair and returns the reply text.
func (c *Client) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	return c.complete(ctx, c.chatModel, system, user, temperature, nil)
}

// CompleteJSON is Complete with the endpoint's JSON output mode enabled.
// It uses the quiz model, which may differ from the dialogue model.
func (c *Client) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, c.quizModel, system, user, 0, &openai.ChatCompletionResponseFormat{
		Type: openai.ChatCompletionResponseFormatTypeJSONObject,
	})
}

func (c *Client) complete(ctx context.Context, model, system, user string, temperature float32, format *openai.ChatCompletionResponseFormat) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: format,
	}

	var content string
	err := c.withRetry(ctx, func(callCtx context.Context) error {
		resp, err := c.api.CreateChatCompletion(callCtx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("completion returned no choices")
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		c.log.Error().Err(err).Str("model", model).Msg("Chat completion failed")
		return "", fmt.Errorf("%w: %v", ErrRemoteService, err)
	}
	return content, nil
}

// CompleteStream streams the reply, invoking fn for each content chunk.
// Streaming calls are not retried: partial output may already have been
// delivered to the caller.
func (c *Client) CompleteStream(ctx context.Context, system, user string, temperature float32, fn func(chunk string) error) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stream, err := c.api.CreateChatCompletionStream(callCtx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Stream: true,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Chat stream failed to open")
		return fmt.Errorf("%w: %v", ErrRemoteService, err)
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			c.log.Error().Err(err).Msg("Chat stream receive failed")
			return fmt.Errorf("%w: %v", ErrRemoteService, err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if chunk := resp.Choices[0].Delta.Content; chunk != "" {
			if err := fn(chunk); err != nil {
				return err
			}
		}
	}
}

// Transcribe sends a recorded audio file to the transcription endpoint.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateTranscription(callCtx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Transcription failed")
		return "", fmt.Errorf("%w: %v", ErrRemoteService, err)
	}
	return resp.Text, nil
}

// Synthesize converts reply text to WAV audio. The caller owns the reader.
func (c *Client) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateSpeech(callCtx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.VoiceAlloy,
		ResponseFormat: openai.SpeechResponseFormatWav,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("Speech synthesis failed")
		return nil, fmt.Errorf("%w: %v", ErrRemoteService, err)
	}
	return resp, nil
}

// withRetry runs fn with a per-call timeout and a single retry on
// transient failures (network errors, 429, 5xx).
func (c *Client) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(1, retry.NewConstant(500*time.Millisecond))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := fn(callCtx)
		if err == nil {
			return nil
		}
		if isTransient(err) {
			c.log.Warn().Err(err).Msg("Transient LLM error, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
