package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cpptutor/cpptutor-backend/internal/config"
	"github.com/cpptutor/cpptutor-backend/internal/llm"
	"github.com/cpptutor/cpptutor-backend/internal/logger"
	"github.com/cpptutor/cpptutor-backend/internal/service"
	"github.com/cpptutor/cpptutor-backend/internal/voice"
)

// Fixed spoken fallbacks. These go to the speaker as-is so the user
// hears why nothing happened instead of getting silence.
const (
	msgNoSpeech    = "Sorry, I couldn't understand your voice."
	msgUnavailable = "Sorry, speech recognition service is not available."
)

func main() {
	var (
		once       bool
		maxSeconds int
	)
	flag.BoolVar(&once, "once", false, "Handle a single question and exit")
	flag.IntVar(&maxSeconds, "max-seconds", 10, "Maximum capture length per utterance")
	flag.Parse()

	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// ─── Wire Services ─────────────────────────────────────────────────
	llmClient := llm.NewClient(cfg, log)
	tutorService := service.NewTutorService(llmClient, log)
	bridge := voice.NewBridge(
		llmClient,
		&voice.ExecRecorder{MaxSeconds: maxSeconds},
		&voice.ExecPlayer{},
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := handleQuestion(ctx, bridge, tutorService); err != nil {
			if ctx.Err() != nil {
				fmt.Println("\nBye.")
				return
			}
			log.Error().Err(err).Msg("Voice turn failed")
		}
		if once {
			return
		}
	}
}

// handleQuestion runs one listen, ask, speak cycle. Recognition
// failures are spoken back instead of aborting the loop.
func handleQuestion(ctx context.Context, bridge *voice.Bridge, tutor *service.TutorService) error {
	fmt.Println("Listening for your C++ question...")

	question, err := bridge.Transcribe(ctx)
	if err != nil {
		// Shutdown surfaces as a capture failure; it must not be spoken
		// back as an apology or the loop never exits.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch {
		case errors.Is(err, voice.ErrNoSpeech):
			return apologize(ctx, bridge, msgNoSpeech)
		case errors.Is(err, voice.ErrServiceUnavailable):
			return apologize(ctx, bridge, msgUnavailable)
		default:
			return err
		}
	}

	fmt.Printf("You asked: %s\n", question)

	reply, err := tutor.Ask(ctx, question)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return apologize(ctx, bridge, msgUnavailable)
	}

	fmt.Printf("Tutor says: %s\n", reply)
	return bridge.Speak(ctx, reply)
}

func apologize(ctx context.Context, bridge *voice.Bridge, msg string) error {
	fmt.Println(msg)
	// Best effort; the printed line already carries the message.
	_ = bridge.Speak(ctx, msg)
	return nil
}
