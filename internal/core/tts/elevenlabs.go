package tts

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/haguro/elevenlabs-go"

	"github.com/suiscan-ai/suiscan/internal/core"
)

// Redaction patterns: hex addresses, long base58/base64-ish hashes and code
// blocks are unpleasant to hear and leak nothing useful when spoken.
var (
	codeBlockRe = regexp.MustCompile("(?s)```.*?```")
	addressRe   = regexp.MustCompile(`0x[a-fA-F0-9.]{8,}`)
	digestRe    = regexp.MustCompile(`\b[A-Za-z0-9]{30,}\b`)
	markdownRe  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	asteriskRe  = regexp.MustCompile(`\*`)
)

// PrepareTextForSpeech strips code blocks, addresses and long hashes before
// synthesis.
func PrepareTextForSpeech(raw string) string {
	out := codeBlockRe.ReplaceAllString(raw, "code block")
	out = addressRe.ReplaceAllString(out, "this wallet address")
	out = digestRe.ReplaceAllString(out, "transaction hash")
	out = asteriskRe.ReplaceAllString(out, "")
	out = markdownRe.ReplaceAllString(out, "$1")
	return out
}

// ElevenLabsSynthesizer streams MP3 audio from the ElevenLabs API.
type ElevenLabsSynthesizer struct {
	apiKey  string
	voiceID string
}

func NewElevenLabsSynthesizer(apiKey, voiceID string) *ElevenLabsSynthesizer {
	return &ElevenLabsSynthesizer{apiKey: apiKey, voiceID: voiceID}
}

func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string, w io.Writer) error {
	if s.apiKey == "" {
		return fmt.Errorf("elevenlabs: api key not configured")
	}

	client := elevenlabs.NewClient(ctx, s.apiKey, 60*time.Second)
	err := client.TextToSpeechStream(w, s.voiceID, elevenlabs.TextToSpeechRequest{
		Text:    PrepareTextForSpeech(text),
		ModelID: "eleven_turbo_v2",
	})
	if err != nil {
		return fmt.Errorf("elevenlabs synthesize: %w", err)
	}
	return nil
}

var _ core.SpeechSynthesizer = (*ElevenLabsSynthesizer)(nil)
