package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cpptutor/cpptutor-backend/internal/llm"
)

// Typed failures. The CLI collapses both into fixed apology strings, but
// callers that care can tell silence from an unreachable service.
var (
	// ErrNoSpeech means the capture produced no intelligible utterance.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrServiceUnavailable means the recognition or synthesis endpoint
	// could not be reached.
	ErrServiceUnavailable = errors.New("speech service unavailable")
)

// Recorder captures one utterance from the microphone into an audio file
// and blocks until the utterance ends. The audio hardware is an opaque
// capability; the default implementation shells out to arecord.
type Recorder interface {
	Record(ctx context.Context, destPath string) error
}

// Player plays an audio stream to completion. The default implementation
// shells out to aplay.
type Player interface {
	Play(ctx context.Context, audio io.Reader) error
}

// Bridge connects microphone capture and speaker playback to the speech
// endpoints. Operations are strictly sequential and blocking.
type Bridge struct {
	speech   llm.SpeechClient
	recorder Recorder
	player   Player
	log      zerolog.Logger
}

// NewBridge creates a Bridge.
func NewBridge(speech llm.SpeechClient, recorder Recorder, player Player, log zerolog.Logger) *Bridge {
	return &Bridge{
		speech:   speech,
		recorder: recorder,
		player:   player,
		log:      log.With().Str("component", "voice_bridge").Logger(),
	}
}

// Transcribe records one utterance and returns its transcription.
func (b *Bridge) Transcribe(ctx context.Context) (string, error) {
	tmp, err := os.CreateTemp("", "utterance-*.wav")
	if err != nil {
		return "", fmt.Errorf("create capture file: %w", err)
	}
	tmp.Close()
	defer os.Remove(tmp.Name())

	if err := b.recorder.Record(ctx, tmp.Name()); err != nil {
		b.log.Error().Err(err).Msg("Capture failed")
		return "", fmt.Errorf("%w: %v", ErrNoSpeech, err)
	}

	text, err := b.speech.Transcribe(ctx, tmp.Name())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoSpeech
	}

	b.log.Debug().Int("len", len(text)).Msg("Utterance transcribed")
	return text, nil
}

// Speak synthesizes the text and blocks until playback completes.
func (b *Bridge) Speak(ctx context.Context, text string) error {
	audio, err := b.speech.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer audio.Close()

	if err := b.player.Play(ctx, audio); err != nil {
		b.log.Error().Err(err).Msg("Playback failed")
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}

// ExecRecorder captures audio with the arecord utility.
type ExecRecorder struct {
	// MaxSeconds bounds a single utterance capture.
	MaxSeconds int
}

// Record runs arecord until the duration bound elapses.
func (r *ExecRecorder) Record(ctx context.Context, destPath string) error {
	seconds := r.MaxSeconds
	if seconds <= 0 {
		seconds = 10
	}
	cmd := exec.CommandContext(ctx, "arecord",
		"-f", "cd",
		"-d", fmt.Sprint(seconds),
		"-q",
		filepath.Clean(destPath),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("arecord: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ExecPlayer plays audio with the aplay utility.
type ExecPlayer struct{}

// Play streams WAV audio to aplay and blocks until playback completes.
func (p *ExecPlayer) Play(ctx context.Context, audio io.Reader) error {
	cmd := exec.CommandContext(ctx, "aplay", "-q")
	cmd.Stdin = audio
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("aplay: %v: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
