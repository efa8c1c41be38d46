package models

import (
	"encoding/json"
	"time"
)

// AuthMethod tags how a user proved control of their Sui address.
type AuthMethod string

const (
	AuthMethodWallet  AuthMethod = "WALLET"
	AuthMethodZkLogin AuthMethod = "ZKLOGIN"
)

// Plan is the subscription tier that scales the daily usage allowance.
type Plan string

const (
	PlanFree Plan = "FREE"
	PlanPro  Plan = "PRO"
)

// User represents an authenticated account. SuiAddress is unique and immutable
// after creation; profile fields are only ever backfilled, never overwritten.
type User struct {
	ID            string     `db:"id" json:"id"`
	SuiAddress    string     `db:"sui_address" json:"suiAddress"`
	AuthMethod    AuthMethod `db:"auth_method" json:"authMethod"`
	Email         string     `db:"email" json:"email,omitempty"`
	Name          string     `db:"name" json:"name,omitempty"`
	Avatar        string     `db:"avatar" json:"avatar,omitempty"`
	Plan          Plan       `db:"plan" json:"plan"`
	DailyUsage    int        `db:"daily_usage" json:"dailyUsage"`
	LastUsageDate time.Time  `db:"last_usage_date" json:"-"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

// Chat is one conversation thread, owned by either a user or a guest
// identifier, never both.
type Chat struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId,omitempty"`
	GuestID   string    `db:"guest_id" json:"guestId,omitempty"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// ChatSummary is the list-view projection of a chat.
type ChatSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
}

// Message is one turn in a chat. Rows are append-only; the assistant turn is
// written only after streaming completes.
type Message struct {
	ID        string    `db:"id" json:"id"`
	ChatID    string    `db:"chat_id" json:"chatId"`
	Role      string    `db:"role" json:"role"` // "user", "assistant" or "system"
	Content   string    `db:"content" json:"content"`
	TxDigest  string    `db:"tx_digest" json:"txDigest,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Transaction is a cache entry for a fetched transaction block. The cache is
// permanent: once a digest is stored it is never re-fetched from the fullnode.
type Transaction struct {
	Digest      string          `db:"digest" json:"digest"`
	Sender      string          `db:"sender" json:"sender"`
	Status      string          `db:"status" json:"status"` // "success", "failure" or "unknown"
	GasUsed     string          `db:"gas_used" json:"gasUsed"`
	Timestamp   time.Time       `db:"timestamp" json:"timestamp"`
	RawData     json.RawMessage `db:"raw_data" json:"rawData"`
	Explanation string          `db:"explanation" json:"explanation,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Wallet is an address a user has flagged for background monitoring.
type Wallet struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Address    string    `db:"address" json:"address"`
	Name       string    `db:"name" json:"name,omitempty"`
	Monitoring bool      `db:"monitoring" json:"monitoring"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Notification is emitted by the monitor when a new transaction shows up on a
// monitored wallet.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	TxDigest  string    `db:"tx_digest" json:"txDigest,omitempty"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
