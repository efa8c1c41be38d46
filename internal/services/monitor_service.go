package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/suiscan-ai/suiscan/internal/core"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
	"github.com/suiscan-ai/suiscan/internal/models"
)

// maxConcurrentWallets bounds how many wallets are scanned at once.
const maxConcurrentWallets = 4

// MonitorService rescans monitored wallets on a fixed cadence and emits one
// notification per newly seen transaction. The transaction cache is the dedup
// key, so reruns over unchanged chain state are no-ops.
type MonitorService struct {
	db       db.DbClient
	chain    core.ChainClient
	txs      *TransactionService
	email    core.EmailSender
	log      *logrus.Logger
	lookback int
}

func NewMonitorService(dbclient db.DbClient, chain core.ChainClient, txs *TransactionService, email core.EmailSender, log *logrus.Logger, lookback int) *MonitorService {
	if lookback <= 0 {
		lookback = 5
	}
	return &MonitorService{db: dbclient, chain: chain, txs: txs, email: email, log: log, lookback: lookback}
}

// Run starts the fixed-interval loop and blocks until ctx is cancelled.
func (s *MonitorService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ScanOnce(ctx)
			if err != nil {
				s.log.WithError(err).Error("monitor scan failed")
				continue
			}
			s.log.WithField("wallets", n).Debug("monitor scan complete")
		}
	}
}

// ScanOnce processes every monitoring-enabled wallet. Wallets are independent
// units of work: one failing never aborts the rest. Returns the number of
// wallets scanned.
func (s *MonitorService) ScanOnce(ctx context.Context) (int, error) {
	wallets, err := s.db.ListMonitoredWallets(ctx)
	if err != nil {
		return 0, fmt.Errorf("list monitored wallets: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWallets)
	for _, wallet := range wallets {
		wallet := wallet
		g.Go(func() error {
			if err := s.scanWallet(gctx, wallet); err != nil {
				// Logged, not returned: a bad wallet must not cancel the group.
				s.log.WithError(err).WithField("address", wallet.Address).Warn("wallet scan failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return len(wallets), nil
}

func (s *MonitorService) scanWallet(ctx context.Context, wallet models.Wallet) error {
	blocks, err := s.chain.QueryTransactionBlocks(ctx, wallet.Address, s.lookback)
	if err != nil {
		return fmt.Errorf("fetch recent transactions: %w", err)
	}

	for i := range blocks {
		block := &blocks[i]
		inserted, err := s.txs.CacheIfAbsent(ctx, block)
		if err != nil {
			s.log.WithError(err).WithField("digest", block.Digest).Warn("failed to cache transaction")
			continue
		}
		if !inserted {
			// Already known: either a prior scan or the chat path saw it.
			continue
		}
		s.notify(ctx, wallet, block)
	}
	return nil
}

func (s *MonitorService) notify(ctx context.Context, wallet models.Wallet, block *suiclient.TransactionBlock) {
	txType := Classify(block)
	walletName := wallet.Name
	if walletName == "" && len(wallet.Address) >= 8 {
		walletName = wallet.Address[:8] + "..."
	} else if walletName == "" {
		walletName = wallet.Address
	}

	n := &models.Notification{
		ID:       uuid.NewString(),
		UserID:   wallet.UserID,
		Type:     "transaction",
		Title:    "New " + txType,
		Message:  fmt.Sprintf("Transaction detected on %s", walletName),
		TxDigest: block.Digest,
	}
	if err := s.db.CreateNotification(ctx, n); err != nil {
		s.log.WithError(err).WithField("digest", block.Digest).Warn("failed to create notification")
		return
	}

	user, err := s.db.GetUserByID(ctx, wallet.UserID)
	if err != nil || user == nil || user.Email == "" {
		return
	}
	if err := s.email.SendTransactionAlert(ctx, user.Email, block.Digest, txType, walletName); err != nil {
		s.log.WithError(err).WithField("digest", block.Digest).Warn("failed to send alert email")
	}
}
