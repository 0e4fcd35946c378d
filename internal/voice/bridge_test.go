package voice

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSpeech struct {
	text          string
	transcribeErr error
	audio         []byte
	synthErr      error
	synthesized   string
}

func (f *fakeSpeech) Transcribe(_ context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", err
	}
	return f.text, f.transcribeErr
}

func (f *fakeSpeech) Synthesize(_ context.Context, text string) (io.ReadCloser, error) {
	f.synthesized = text
	if f.synthErr != nil {
		return nil, f.synthErr
	}
	return io.NopCloser(bytes.NewReader(f.audio)), nil
}

type fakeRecorder struct {
	err error
}

func (r *fakeRecorder) Record(_ context.Context, destPath string) error {
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(destPath, []byte("RIFF"), 0o600)
}

type fakePlayer struct {
	played []byte
	err    error
}

func (p *fakePlayer) Play(_ context.Context, audio io.Reader) error {
	if p.err != nil {
		return p.err
	}
	data, err := io.ReadAll(audio)
	if err != nil {
		return err
	}
	p.played = data
	return nil
}

func newTestBridge(speech *fakeSpeech, rec *fakeRecorder, player *fakePlayer) *Bridge {
	return NewBridge(speech, rec, player, zerolog.Nop())
}

func TestTranscribe(t *testing.T) {
	bridge := newTestBridge(&fakeSpeech{text: "what is a pointer"}, &fakeRecorder{}, &fakePlayer{})

	text, err := bridge.Transcribe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "what is a pointer", text)
}

func TestTranscribe_EmptyUtteranceIsNoSpeech(t *testing.T) {
	bridge := newTestBridge(&fakeSpeech{text: "   "}, &fakeRecorder{}, &fakePlayer{})

	_, err := bridge.Transcribe(context.Background())
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestTranscribe_CaptureFailureIsNoSpeech(t *testing.T) {
	bridge := newTestBridge(&fakeSpeech{}, &fakeRecorder{err: errors.New("mic busy")}, &fakePlayer{})

	_, err := bridge.Transcribe(context.Background())
	assert.ErrorIs(t, err, ErrNoSpeech)
}

func TestTranscribe_EndpointFailureIsUnavailable(t *testing.T) {
	bridge := newTestBridge(&fakeSpeech{transcribeErr: errors.New("dns failure")}, &fakeRecorder{}, &fakePlayer{})

	_, err := bridge.Transcribe(context.Background())
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestSpeak_PlaysSynthesizedAudio(t *testing.T) {
	speech := &fakeSpeech{audio: []byte("wav-bytes")}
	player := &fakePlayer{}
	bridge := newTestBridge(speech, &fakeRecorder{}, player)

	err := bridge.Speak(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", speech.synthesized)
	assert.Equal(t, []byte("wav-bytes"), player.played)
}

func TestSpeak_SynthesisFailureIsUnavailable(t *testing.T) {
	bridge := newTestBridge(&fakeSpeech{synthErr: errors.New("tts down")}, &fakeRecorder{}, &fakePlayer{})

	err := bridge.Speak(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestSpeak_PlaybackFailure(t *testing.T) {
	bridge := newTestBridge(&fakeSpeech{audio: []byte("x")}, &fakeRecorder{}, &fakePlayer{err: errors.New("no device")})

	err := bridge.Speak(context.Background(), "hello")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrServiceUnavailable)
}
