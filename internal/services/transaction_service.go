package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/core"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
	"github.com/suiscan-ai/suiscan/internal/models"
)

// TransactionService is the write-through cache in front of the fullnode plus
// the context-assembly helpers built on top of it.
type TransactionService struct {
	db    db.DbClient
	chain core.ChainClient
	llm   core.LLMProvider
	log   *logrus.Logger
}

func NewTransactionService(dbclient db.DbClient, chain core.ChainClient, llm core.LLMProvider, log *logrus.Logger) *TransactionService {
	return &TransactionService{db: dbclient, chain: chain, llm: llm, log: log}
}

// GetOrFetch returns the cached record for a digest, fetching from the
// fullnode and persisting on first miss. A concurrent first-time lookup may
// race on the insert; the duplicate-key conflict falls back to a read and
// never errors the request.
func (s *TransactionService) GetOrFetch(ctx context.Context, digest string) (*models.Transaction, *suiclient.TransactionBlock, error) {
	cached, err := s.db.GetTransaction(ctx, digest)
	if err != nil {
		return nil, nil, fmt.Errorf("cache lookup %s: %w", digest, err)
	}
	if cached != nil {
		var block suiclient.TransactionBlock
		if err := json.Unmarshal(cached.RawData, &block); err != nil {
			return nil, nil, fmt.Errorf("decode cached transaction %s: %w", digest, err)
		}
		return cached, &block, nil
	}

	block, err := s.chain.GetTransactionBlock(ctx, digest)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch transaction %s: %w", digest, err)
	}

	record, err := recordFromBlock(block)
	if err != nil {
		return nil, nil, err
	}
	inserted, err := s.db.InsertTransaction(ctx, record)
	if err != nil {
		return nil, nil, fmt.Errorf("cache transaction %s: %w", digest, err)
	}
	if !inserted {
		// Lost the race; the other writer's row is authoritative.
		if cached, err = s.db.GetTransaction(ctx, digest); err == nil && cached != nil {
			return cached, block, nil
		}
	}
	return record, block, nil
}

// CacheIfAbsent stores a block already fetched elsewhere (the monitor path).
// Reports whether this call inserted the row.
func (s *TransactionService) CacheIfAbsent(ctx context.Context, block *suiclient.TransactionBlock) (bool, error) {
	record, err := recordFromBlock(block)
	if err != nil {
		return false, err
	}
	inserted, err := s.db.InsertTransaction(ctx, record)
	if err != nil {
		return false, fmt.Errorf("cache transaction %s: %w", block.Digest, err)
	}
	return inserted, nil
}

// ListByAddress returns an address's recent transactions with a type label per
// entry. Results are not cached; this is a listing, not an explanation target.
func (s *TransactionService) ListByAddress(ctx context.Context, address string, limit int) ([]AddressTransaction, error) {
	blocks, err := s.chain.QueryTransactionBlocks(ctx, address, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", address, err)
	}
	out := make([]AddressTransaction, 0, len(blocks))
	for i := range blocks {
		block := &blocks[i]
		out = append(out, AddressTransaction{
			Digest:    block.Digest,
			Timestamp: block.TimestampMs,
			Type:      Classify(block),
			Status:    block.StatusString(),
		})
	}
	return out, nil
}

// AddressTransaction is one entry of an address listing.
type AddressTransaction struct {
	Digest    string `json:"digest"`
	Timestamp string `json:"timestamp,omitempty"`
	Type      string `json:"type"`
	Status    string `json:"status"`
}

// Explain generates a standalone explanation for a cached digest and attaches
// it to the record for future lookups.
func (s *TransactionService) Explain(ctx context.Context, digest string) (string, error) {
	_, block, err := s.GetOrFetch(ctx, digest)
	if err != nil {
		return "", err
	}

	prompt := Summarize(block) + "\n\nPlease provide a comprehensive explanation of this transaction."
	explanation, err := s.llm.Generate(ctx, SystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("explain %s: %w", digest, err)
	}

	if err := s.db.SetTransactionExplanation(ctx, digest, explanation); err != nil {
		// The explanation was produced; failing to attach it is not fatal.
		s.log.WithError(err).WithField("digest", digest).Warn("failed to store explanation")
	}
	return explanation, nil
}

func recordFromBlock(block *suiclient.TransactionBlock) (*models.Transaction, error) {
	raw, err := json.Marshal(block)
	if err != nil {
		return nil, fmt.Errorf("encode transaction %s: %w", block.Digest, err)
	}

	gas := "0"
	if block.Effects != nil && block.Effects.GasUsed.ComputationCost != "" {
		gas = block.Effects.GasUsed.ComputationCost
	}

	ts := time.Now()
	if block.TimestampMs != "" {
		var ms int64
		if _, err := fmt.Sscanf(block.TimestampMs, "%d", &ms); err == nil {
			ts = time.UnixMilli(ms)
		}
	}

	return &models.Transaction{
		Digest:    block.Digest,
		Sender:    block.SenderAddress(),
		Status:    block.StatusString(),
		GasUsed:   gas,
		Timestamp: ts,
		RawData:   raw,
	}, nil
}
