package db

import (
	"context"
	"time"

	"github.com/suiscan-ai/suiscan/internal/models"
)

// DbClient defines all persistence operations the services need. It abstracts
// Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	// Users. Lookups return (nil, nil) when no row exists.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByAddress(ctx context.Context, address string) (*models.User, error)
	// CreateUser inserts the user unless the address is already taken; the
	// unique constraint on sui_address is the concurrency guard. Returns
	// false when another caller created the row first.
	CreateUser(ctx context.Context, user *models.User) (bool, error)
	// BackfillUserProfile fills email/name/avatar only where currently empty.
	BackfillUserProfile(ctx context.Context, id, email, name, avatar string) error
	// ResetAndGetUsage atomically zeroes the daily counter when the stored
	// reset date predates dayStart, then returns the counter and plan. The
	// reset and read happen in one statement so concurrent requests at the
	// midnight boundary cannot double-reset.
	ResetAndGetUsage(ctx context.Context, userID string, dayStart time.Time) (int, models.Plan, bool, error)
	IncrementUsage(ctx context.Context, userID string) error

	// Guests have no profile; their usage is the count of messages in chats
	// they own.
	CountGuestMessages(ctx context.Context, guestID string) (int, error)

	// Chats.
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	CreateChat(ctx context.Context, chat *models.Chat) error
	UpdateChatTitle(ctx context.Context, id, title string) error
	// DeleteChatOwned removes the chat only when userID owns it; returns
	// false otherwise so the handler can answer 404.
	DeleteChatOwned(ctx context.Context, id, userID string) (bool, error)
	ListChatsByUser(ctx context.Context, userID string, limit int) ([]models.ChatSummary, error)

	// Messages. CreateMessage also bumps the parent chat's updated_at.
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessagesByChat(ctx context.Context, chatID string) ([]models.Message, error)

	// Transaction cache.
	GetTransaction(ctx context.Context, digest string) (*models.Transaction, error)
	// InsertTransaction tolerates a concurrent insert of the same digest and
	// reports false in that case (idempotent upsert semantics).
	InsertTransaction(ctx context.Context, tx *models.Transaction) (bool, error)
	SetTransactionExplanation(ctx context.Context, digest, explanation string) error

	// Monitoring.
	ListMonitoredWallets(ctx context.Context) ([]models.Wallet, error)
	CreateNotification(ctx context.Context, n *models.Notification) error

	Close() error
}
