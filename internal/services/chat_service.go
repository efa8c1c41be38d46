package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/core"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
	"github.com/suiscan-ai/suiscan/internal/models"
)

// QuotaExceededError terminates the pipeline at the quota gate. RequiresAuth
// tells the caller whether signing in would help (guest exhausted) or the plan
// limit itself was hit.
type QuotaExceededError struct {
	RequiresAuth bool
}

func (e *QuotaExceededError) Error() string {
	return "usage limit reached"
}

// ChatRequest is one inbound chat turn plus its identity context. UserID is
// the resolved session identity; empty means guest (or fully anonymous).
type ChatRequest struct {
	Messages []core.ChatTurn
	ChatID   string
	TxDigest string
	GuestID  string
	UserID   string
}

// ChatService runs the answer pipeline: quota gate, chat resolution, context
// assembly, durable user turn, streamed generation, durable assistant turn.
type ChatService struct {
	db    db.DbClient
	txs   *TransactionService
	usage *UsageService
	llm   core.LLMProvider
	log   *logrus.Logger
}

func NewChatService(dbclient db.DbClient, txs *TransactionService, usage *UsageService, llm core.LLMProvider, log *logrus.Logger) *ChatService {
	return &ChatService{db: dbclient, txs: txs, usage: usage, llm: llm, log: log}
}

// Answer executes the pipeline for one request. onStart fires once the chat
// and quota are resolved, before the first delta, so the caller can emit
// response headers; onDelta receives each streamed chunk. The assistant turn
// is persisted only on a clean finish: a disconnect mid-stream discards the
// partial answer, while the user's turn is already durable.
func (s *ChatService) Answer(ctx context.Context, req ChatRequest, onStart func(chatID string, remaining int) error, onDelta func(string) error) error {
	if len(req.Messages) == 0 {
		return fmt.Errorf("no messages supplied")
	}
	last := req.Messages[len(req.Messages)-1]

	decision, err := s.usage.CheckAndReport(ctx, req.UserID, req.GuestID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return &QuotaExceededError{RequiresAuth: req.UserID == ""}
	}

	chat, err := s.resolveChat(ctx, req)
	if err != nil {
		return err
	}

	// Context assembly is best-effort: a fullnode hiccup must not block the
	// answer, it just degrades to a context-free one.
	var txContext, txType string
	if req.TxDigest != "" && suiclient.IsValidDigest(req.TxDigest) {
		if _, block, err := s.txs.GetOrFetch(ctx, req.TxDigest); err != nil {
			s.log.WithError(err).WithField("digest", req.TxDigest).Warn("transaction context unavailable")
		} else {
			txContext = Summarize(block)
			txType = Classify(block)
		}
	}

	// The user's turn must be durable before the model is invoked so a crash
	// mid-stream never loses it.
	userMsg := &models.Message{
		ID:       uuid.NewString(),
		ChatID:   chat.ID,
		Role:     "user",
		Content:  last.Content,
		TxDigest: req.TxDigest,
	}
	if err := s.db.CreateMessage(ctx, userMsg); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}

	if err := onStart(chat.ID, decision.Remaining); err != nil {
		return err
	}

	history := req.Messages[:len(req.Messages)-1]
	prompt := BuildUserPrompt(last.Content, txContext)
	answer, err := s.llm.StreamChat(ctx, SystemPrompt, history, prompt, onDelta)
	if err != nil {
		return fmt.Errorf("generate answer: %w", err)
	}

	// Quota is only consumed once generation has actually succeeded.
	if err := s.usage.Increment(context.WithoutCancel(ctx), req.UserID); err != nil {
		s.log.WithError(err).WithField("user", req.UserID).Warn("failed to increment usage")
	}

	assistantMsg := &models.Message{
		ID:      uuid.NewString(),
		ChatID:  chat.ID,
		Role:    "assistant",
		Content: answer,
	}
	if err := s.db.CreateMessage(context.WithoutCancel(ctx), assistantMsg); err != nil {
		return fmt.Errorf("persist assistant message: %w", err)
	}

	if txType != "" && isPlaceholderTitle(chat.Title) {
		if err := s.db.UpdateChatTitle(context.WithoutCancel(ctx), chat.ID, txType+" Analysis"); err != nil {
			s.log.WithError(err).WithField("chat", chat.ID).Warn("failed to rename chat")
		}
	}
	return nil
}

func (s *ChatService) resolveChat(ctx context.Context, req ChatRequest) (*models.Chat, error) {
	if req.ChatID != "" {
		chat, err := s.db.GetChat(ctx, req.ChatID)
		if err != nil {
			return nil, fmt.Errorf("resolve chat: %w", err)
		}
		if chat != nil {
			return chat, nil
		}
	}

	title := "New Chat"
	if req.TxDigest != "" && len(req.TxDigest) >= 8 {
		title = "Transaction " + req.TxDigest[:8] + "..."
	}
	chat := &models.Chat{
		ID:    uuid.NewString(),
		Title: title,
	}
	if req.UserID != "" {
		chat.UserID = req.UserID
	} else {
		chat.GuestID = req.GuestID
	}
	if err := s.db.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func isPlaceholderTitle(title string) bool {
	return strings.HasPrefix(title, "New Chat") || strings.HasPrefix(title, "Transaction ")
}
