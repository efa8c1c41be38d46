package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/suiscan-ai/suiscan/internal/config"
	"github.com/suiscan-ai/suiscan/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

const userColumns = `id, sui_address, auth_method, COALESCE(email, ''), COALESCE(name, ''), COALESCE(avatar, ''), plan, daily_usage, last_usage_date, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.SuiAddress, &u.AuthMethod, &u.Email, &u.Name, &u.Avatar,
		&u.Plan, &u.DailyUsage, &u.LastUsageDate, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(c.db.QueryRowContext(ctx, q, id))
}

func (c *DatabaseClient) GetUserByAddress(ctx context.Context, address string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE sui_address = $1`
	return scanUser(c.db.QueryRowContext(ctx, q, address))
}

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) (bool, error) {
	if user == nil {
		return false, errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, sui_address, auth_method, email, name, avatar, plan, daily_usage, last_usage_date)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, 0, now())
		ON CONFLICT (sui_address) DO NOTHING
	`
	res, err := c.db.ExecContext(ctx, q,
		user.ID, user.SuiAddress, user.AuthMethod, user.Email, user.Name, user.Avatar, user.Plan)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (c *DatabaseClient) BackfillUserProfile(ctx context.Context, id, email, name, avatar string) error {
	const q = `
		UPDATE users SET
			email  = COALESCE(email, NULLIF($2, '')),
			name   = COALESCE(name, NULLIF($3, '')),
			avatar = COALESCE(avatar, NULLIF($4, '')),
			updated_at = now()
		WHERE id = $1
	`
	_, err := c.db.ExecContext(ctx, q, id, email, name, avatar)
	return err
}

func (c *DatabaseClient) ResetAndGetUsage(ctx context.Context, userID string, dayStart time.Time) (int, models.Plan, bool, error) {
	// Single round-trip read-modify-write: the rollover and the read the
	// allow decision depends on cannot interleave with another request.
	const q = `
		UPDATE users SET
			daily_usage     = CASE WHEN last_usage_date < $2 THEN 0 ELSE daily_usage END,
			last_usage_date = CASE WHEN last_usage_date < $2 THEN now() ELSE last_usage_date END,
			updated_at      = now()
		WHERE id = $1
		RETURNING daily_usage, plan
	`
	var usage int
	var plan models.Plan
	err := c.db.QueryRowContext(ctx, q, userID, dayStart).Scan(&usage, &plan)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, err
	}
	return usage, plan, true, nil
}

func (c *DatabaseClient) IncrementUsage(ctx context.Context, userID string) error {
	const q = `UPDATE users SET daily_usage = daily_usage + 1, updated_at = now() WHERE id = $1`
	_, err := c.db.ExecContext(ctx, q, userID)
	return err
}

// Guests

func (c *DatabaseClient) CountGuestMessages(ctx context.Context, guestID string) (int, error) {
	const q = `
		SELECT COUNT(*) FROM messages m
		JOIN chats c ON c.id = m.chat_id
		WHERE c.guest_id = $1 AND m.role = 'user'
	`
	var n int
	if err := c.db.QueryRowContext(ctx, q, guestID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Chats

func (c *DatabaseClient) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	const q = `
		SELECT id, COALESCE(user_id::text, ''), COALESCE(guest_id, ''), title, created_at, updated_at
		FROM chats WHERE id = $1
	`
	var ch models.Chat
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&ch.ID, &ch.UserID, &ch.GuestID, &ch.Title, &ch.CreatedAt, &ch.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (c *DatabaseClient) CreateChat(ctx context.Context, chat *models.Chat) error {
	if chat == nil {
		return errors.New("nil chat")
	}
	const q = `
		INSERT INTO chats (id, user_id, guest_id, title)
		VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, ''), $4)
	`
	_, err := c.db.ExecContext(ctx, q, chat.ID, chat.UserID, chat.GuestID, chat.Title)
	return err
}

func (c *DatabaseClient) UpdateChatTitle(ctx context.Context, id, title string) error {
	const q = `UPDATE chats SET title = $2, updated_at = now() WHERE id = $1`
	_, err := c.db.ExecContext(ctx, q, id, title)
	return err
}

func (c *DatabaseClient) DeleteChatOwned(ctx context.Context, id, userID string) (bool, error) {
	const q = `DELETE FROM chats WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (c *DatabaseClient) ListChatsByUser(ctx context.Context, userID string, limit int) ([]models.ChatSummary, error) {
	const q = `
		SELECT c.id, c.title, c.created_at, c.updated_at, COUNT(m.id)
		FROM chats c
		LEFT JOIN messages m ON m.chat_id = c.id
		WHERE c.user_id = $1
		GROUP BY c.id
		ORDER BY c.updated_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChatSummary
	for rows.Next() {
		var s models.ChatSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Messages

func (c *DatabaseClient) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const insertQ = `
		INSERT INTO messages (id, chat_id, role, content, tx_digest)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`
	if _, err := tx.ExecContext(ctx, insertQ, msg.ID, msg.ChatID, msg.Role, msg.Content, msg.TxDigest); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at = now() WHERE id = $1`, msg.ChatID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) ListMessagesByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	const q = `
		SELECT id, chat_id, role, content, COALESCE(tx_digest, ''), created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.TxDigest, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Transaction cache

func (c *DatabaseClient) GetTransaction(ctx context.Context, digest string) (*models.Transaction, error) {
	const q = `
		SELECT digest, sender, status, gas_used, timestamp, raw_data, COALESCE(explanation, ''), created_at
		FROM transactions WHERE digest = $1
	`
	var t models.Transaction
	err := c.db.QueryRowContext(ctx, q, digest).Scan(
		&t.Digest, &t.Sender, &t.Status, &t.GasUsed, &t.Timestamp, &t.RawData, &t.Explanation, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *DatabaseClient) InsertTransaction(ctx context.Context, tx *models.Transaction) (bool, error) {
	if tx == nil {
		return false, errors.New("nil transaction")
	}
	const q = `
		INSERT INTO transactions (digest, sender, status, gas_used, timestamp, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (digest) DO NOTHING
	`
	res, err := c.db.ExecContext(ctx, q,
		tx.Digest, tx.Sender, tx.Status, tx.GasUsed, tx.Timestamp, []byte(tx.RawData))
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (c *DatabaseClient) SetTransactionExplanation(ctx context.Context, digest, explanation string) error {
	const q = `UPDATE transactions SET explanation = $2 WHERE digest = $1`
	_, err := c.db.ExecContext(ctx, q, digest, explanation)
	return err
}

// Monitoring

func (c *DatabaseClient) ListMonitoredWallets(ctx context.Context) ([]models.Wallet, error) {
	const q = `
		SELECT id, user_id, address, COALESCE(name, ''), monitoring, created_at
		FROM wallets
		WHERE monitoring = TRUE
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Wallet
	for rows.Next() {
		var w models.Wallet
		if err := rows.Scan(&w.ID, &w.UserID, &w.Address, &w.Name, &w.Monitoring, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	const q = `
		INSERT INTO notifications (id, user_id, type, title, message, tx_digest)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	`
	_, err := c.db.ExecContext(ctx, q, n.ID, n.UserID, n.Type, n.Title, n.Message, n.TxDigest)
	return err
}
