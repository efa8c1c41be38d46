package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/core"
	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
	"github.com/suiscan-ai/suiscan/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeDB is an in-memory DbClient with the same conflict semantics as the
// Postgres implementation: idempotent inserts keyed on address and digest.
type fakeDB struct {
	mu            sync.Mutex
	users         map[string]*models.User
	chats         map[string]*models.Chat
	messages      []models.Message
	transactions  map[string]*models.Transaction
	wallets       []models.Wallet
	notifications []models.Notification

	resetErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:        map[string]*models.User{},
		chats:        map[string]*models.Chat{},
		transactions: map[string]*models.Transaction{},
	}
}

func (f *fakeDB) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) GetUserByAddress(_ context.Context, address string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SuiAddress == address {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeDB) CreateUser(_ context.Context, user *models.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.SuiAddress == user.SuiAddress {
			return false, nil
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return true, nil
}

func (f *fakeDB) BackfillUserProfile(_ context.Context, id, email, name, avatar string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("no such user %s", id)
	}
	if u.Email == "" {
		u.Email = email
	}
	if u.Name == "" {
		u.Name = name
	}
	if u.Avatar == "" {
		u.Avatar = avatar
	}
	return nil
}

func (f *fakeDB) ResetAndGetUsage(_ context.Context, userID string, dayStart time.Time) (int, models.Plan, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resetErr != nil {
		return 0, "", false, f.resetErr
	}
	u, ok := f.users[userID]
	if !ok {
		return 0, "", false, nil
	}
	if u.LastUsageDate.Before(dayStart) {
		u.DailyUsage = 0
		u.LastUsageDate = dayStart
	}
	return u.DailyUsage, u.Plan, true, nil
}

func (f *fakeDB) IncrementUsage(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("no such user %s", userID)
	}
	u.DailyUsage++
	return nil
}

func (f *fakeDB) CountGuestMessages(_ context.Context, guestID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, m := range f.messages {
		if m.Role != "user" {
			continue
		}
		if chat, ok := f.chats[m.ChatID]; ok && chat.GuestID == guestID {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) GetChat(_ context.Context, id string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) CreateChat(_ context.Context, chat *models.Chat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *chat
	f.chats[chat.ID] = &copied
	return nil
}

func (f *fakeDB) UpdateChatTitle(_ context.Context, id, title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[id]; ok {
		c.Title = title
	}
	return nil
}

func (f *fakeDB) DeleteChatOwned(_ context.Context, id, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.chats[id]
	if !ok || c.UserID != userID {
		return false, nil
	}
	delete(f.chats, id)
	return true, nil
}

func (f *fakeDB) ListChatsByUser(_ context.Context, userID string, limit int) ([]models.ChatSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ChatSummary
	for _, c := range f.chats {
		if c.UserID != userID {
			continue
		}
		out = append(out, models.ChatSummary{ID: c.ID, Title: c.Title})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeDB) CreateMessage(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeDB) ListMessagesByChat(_ context.Context, chatID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDB) GetTransaction(_ context.Context, digest string) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx, ok := f.transactions[digest]; ok {
		copied := *tx
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDB) InsertTransaction(_ context.Context, tx *models.Transaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.transactions[tx.Digest]; ok {
		return false, nil
	}
	copied := *tx
	f.transactions[tx.Digest] = &copied
	return true, nil
}

func (f *fakeDB) SetTransactionExplanation(_ context.Context, digest, explanation string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tx, ok := f.transactions[digest]; ok {
		tx.Explanation = explanation
	}
	return nil
}

func (f *fakeDB) ListMonitoredWallets(_ context.Context) ([]models.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Wallet(nil), f.wallets...), nil
}

func (f *fakeDB) CreateNotification(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifications = append(f.notifications, *n)
	return nil
}

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) userMessages(chatID string) []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// fakeChain serves canned transaction blocks and counts fullnode round-trips.
type fakeChain struct {
	mu         sync.Mutex
	blocks     map[string]*suiclient.TransactionBlock
	byAddress  map[string][]suiclient.TransactionBlock
	getCalls   int
	queryCalls int
	err        error
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		blocks:    map[string]*suiclient.TransactionBlock{},
		byAddress: map[string][]suiclient.TransactionBlock{},
	}
}

func (f *fakeChain) GetTransactionBlock(_ context.Context, digest string) (*suiclient.TransactionBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.err != nil {
		return nil, f.err
	}
	block, ok := f.blocks[digest]
	if !ok {
		return nil, fmt.Errorf("unknown digest %s", digest)
	}
	return block, nil
}

func (f *fakeChain) QueryTransactionBlocks(_ context.Context, address string, limit int) ([]suiclient.TransactionBlock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if f.err != nil {
		return nil, f.err
	}
	blocks := f.byAddress[address]
	if len(blocks) > limit {
		blocks = blocks[:limit]
	}
	return blocks, nil
}

// fakeLLM echoes a fixed answer, optionally streaming it in two chunks.
type fakeLLM struct {
	answer    string
	err       error
	lastSys   string
	lastHist  []core.ChatTurn
	lastInput string
}

func (f *fakeLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.lastSys = systemPrompt
	f.lastInput = userPrompt
	return f.answer, f.err
}

func (f *fakeLLM) StreamChat(_ context.Context, systemPrompt string, history []core.ChatTurn, prompt string, onDelta func(string) error) (string, error) {
	f.lastSys = systemPrompt
	f.lastHist = history
	f.lastInput = prompt
	if f.err != nil {
		return "", f.err
	}
	half := len(f.answer) / 2
	for _, chunk := range []string{f.answer[:half], f.answer[half:]} {
		if chunk == "" {
			continue
		}
		if err := onDelta(chunk); err != nil {
			return "", err
		}
	}
	return f.answer, nil
}

// fakeEmail records deliveries.
type fakeEmail struct {
	mu       sync.Mutex
	welcomes []string
	alerts   []string
}

func (f *fakeEmail) SendWelcome(_ context.Context, to, name, method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.welcomes = append(f.welcomes, to)
	return nil
}

func (f *fakeEmail) SendTransactionAlert(_ context.Context, to, digest, txType, walletName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, strings.Join([]string{to, digest, txType}, "|"))
	return nil
}
