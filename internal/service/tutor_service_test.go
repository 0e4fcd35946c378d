package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCompleter records the last call and returns canned output.
type stubCompleter struct {
	system      string
	user        string
	temperature float32
	reply       string
	chunks      []string
	err         error
}

func (s *stubCompleter) Complete(_ context.Context, system, user string, temperature float32) (string, error) {
	s.system, s.user, s.temperature = system, user, temperature
	return s.reply, s.err
}

func (s *stubCompleter) CompleteJSON(_ context.Context, system, user string) (string, error) {
	s.system, s.user = system, user
	return s.reply, s.err
}

func (s *stubCompleter) CompleteStream(_ context.Context, system, user string, temperature float32, fn func(string) error) error {
	s.system, s.user, s.temperature = system, user, temperature
	if s.err != nil {
		return s.err
	}
	for _, chunk := range s.chunks {
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}

func TestTutorAsk_ForwardsQuestionUnderPersona(t *testing.T) {
	stub := &stubCompleter{reply: "Use std::vector."}
	svc := NewTutorService(stub, zerolog.Nop())

	reply, err := svc.Ask(context.Background(), "How do I store a list of ints?")
	require.NoError(t, err)
	assert.Equal(t, "Use std::vector.", reply)

	assert.Equal(t, "How do I store a list of ints?", stub.user)
	assert.Contains(t, stub.system, "C++ tutor")
	assert.InDelta(t, 0.7, stub.temperature, 0.001)
}

func TestTutorAsk_PropagatesError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("upstream down")}
	svc := NewTutorService(stub, zerolog.Nop())

	_, err := svc.Ask(context.Background(), "question")
	assert.Error(t, err)
}

func TestTutorAskStream_DeliversChunksInOrder(t *testing.T) {
	stub := &stubCompleter{chunks: []string{"Use ", "std::", "vector."}}
	svc := NewTutorService(stub, zerolog.Nop())

	var got []string
	err := svc.AskStream(context.Background(), "q", func(chunk string) error {
		got = append(got, chunk)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Use ", "std::", "vector."}, got)
}

func TestTutorAskStream_StopsOnCallbackError(t *testing.T) {
	stub := &stubCompleter{chunks: []string{"a", "b", "c"}}
	svc := NewTutorService(stub, zerolog.Nop())

	stop := errors.New("client gone")
	var got []string
	err := svc.AskStream(context.Background(), "q", func(chunk string) error {
		got = append(got, chunk)
		if len(got) == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Len(t, got, 2)
}
