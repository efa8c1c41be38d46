package core

import (
	"context"
	"io"

	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
)

// ChatTurn is one prior message handed to the LLM.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}

// LLMProvider abstracts the generative-text backend.
type LLMProvider interface {
	// Generate produces a complete answer in one shot.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	// StreamChat streams an answer for a conversation, invoking onDelta for
	// each text chunk, and returns the full accumulated text on clean finish.
	StreamChat(ctx context.Context, systemPrompt string, history []ChatTurn, prompt string, onDelta func(string) error) (string, error)
}

// ChainClient abstracts the Sui fullnode.
type ChainClient interface {
	GetTransactionBlock(ctx context.Context, digest string) (*suiclient.TransactionBlock, error)
	QueryTransactionBlocks(ctx context.Context, address string, limit int) ([]suiclient.TransactionBlock, error)
}

// EmailSender delivers transactional email. Failures are always non-fatal to
// the surrounding flow.
type EmailSender interface {
	SendWelcome(ctx context.Context, to, name string, method string) error
	SendTransactionAlert(ctx context.Context, to, digest, txType, walletName string) error
}

// SpeechSynthesizer streams synthesized audio for a piece of text.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string, w io.Writer) error
}

// SaltProvider resolves the per-user zkLogin salt for an ID token.
type SaltProvider interface {
	GetSalt(ctx context.Context, idToken string) (string, error)
}
