package services

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
)

// Transaction type labels produced by Classify.
const (
	TypeDEXSwap             = "DEX Swap"
	TypeStaking             = "Staking"
	TypeNFTMint             = "NFT Mint"
	TypeTransfer            = "Transfer"
	TypeDeFiLending         = "DeFi Lending"
	TypeLiquidity           = "Liquidity"
	TypeTokenSwap           = "Token Swap"
	TypeNFTTransaction      = "NFT Transaction"
	TypeSuiTransfer         = "SUI Transfer"
	TypeContractInteraction = "Contract Interaction"
)

// eventRules are scanned in order; the first substring hit wins. A record can
// match several patterns, so the order is load-bearing for reproducible labels.
var eventRules = []struct {
	substrings []string
	label      string
}{
	{[]string{"swap"}, TypeDEXSwap},
	{[]string{"stake", "staking"}, TypeStaking},
	{[]string{"mint"}, TypeNFTMint},
	{[]string{"transfer"}, TypeTransfer},
	{[]string{"borrow", "lend"}, TypeDeFiLending},
	{[]string{"pool", "liquidity"}, TypeLiquidity},
}

// Classify assigns exactly one type label to a transaction. Precedence:
// event-type substrings, then multi-asset movement, then NFT-ish object types,
// then a two-sided offsetting balance pair, then the generic fallback.
func Classify(tx *suiclient.TransactionBlock) string {
	for _, event := range tx.Events {
		eventType := strings.ToLower(event.Type)
		for _, rule := range eventRules {
			for _, sub := range rule.substrings {
				if strings.Contains(eventType, sub) {
					return rule.label
				}
			}
		}
	}

	uniqueCoins := map[string]struct{}{}
	for _, bc := range tx.BalanceChanges {
		uniqueCoins[bc.CoinType] = struct{}{}
	}
	if len(uniqueCoins) > 1 {
		return TypeTokenSwap
	}

	for _, oc := range tx.ObjectChanges {
		objType := strings.ToLower(oc.ObjectType)
		if strings.Contains(objType, "nft") || strings.Contains(objType, "kiosk") {
			return TypeNFTTransaction
		}
	}

	if len(tx.BalanceChanges) == 2 {
		a, aok := new(big.Int).SetString(tx.BalanceChanges[0].Amount, 10)
		b, bok := new(big.Int).SetString(tx.BalanceChanges[1].Amount, 10)
		if aok && bok && a.CmpAbs(b) == 0 && a.Sign() == -b.Sign() && a.Sign() != 0 {
			return TypeSuiTransfer
		}
	}

	return TypeContractInteraction
}

// Summarize bounds for large transactions: the digest feeds a prompt with a
// token budget, so event and object lists are truncated.
const (
	maxSummaryObjects = 5
	maxSummaryEvents  = 5
)

// Summarize renders a fixed-structure markdown digest of a transaction for
// prompt inclusion.
func Summarize(tx *suiclient.TransactionBlock) string {
	var b strings.Builder

	b.WriteString("## Transaction Details\n")
	fmt.Fprintf(&b, "- **Digest**: %s\n", tx.Digest)
	fmt.Fprintf(&b, "- **Status**: %s\n", tx.StatusString())
	fmt.Fprintf(&b, "- **Timestamp**: %s\n", formatTimestamp(tx.TimestampMs))

	if tx.Effects != nil {
		if gas, ok := netGas(tx.Effects.GasUsed); ok {
			fmt.Fprintf(&b, "- **Gas Used**: %s SUI\n", suiclient.FormatSui(gas))
		}
	}
	if sender := tx.SenderAddress(); sender != "" {
		fmt.Fprintf(&b, "- **Sender**: %s\n", sender)
	}

	if len(tx.BalanceChanges) > 0 {
		b.WriteString("\n## Balance Changes\n")
		for _, change := range tx.BalanceChanges {
			owner := change.Owner.AddressOwner
			if owner == "" {
				owner = "unknown"
			}
			sign := ""
			if !strings.HasPrefix(change.Amount, "-") {
				sign = "+"
			}
			fmt.Fprintf(&b, "- %s: %s%s %s\n",
				suiclient.ShortenAddress(owner), sign, suiclient.FormatSui(change.Amount), suiclient.CoinSymbol(change.CoinType))
		}
	}

	if len(tx.ObjectChanges) > 0 {
		b.WriteString("\n## Object Changes\n")
		var created []suiclient.ObjectChange
		mutated, deleted := 0, 0
		for _, oc := range tx.ObjectChanges {
			switch oc.Type {
			case "created":
				created = append(created, oc)
			case "mutated":
				mutated++
			case "deleted":
				deleted++
			}
		}
		if len(created) > 0 {
			fmt.Fprintf(&b, "### Created (%d)\n", len(created))
			for i, oc := range created {
				if i == maxSummaryObjects {
					break
				}
				fmt.Fprintf(&b, "- %s\n", suiclient.TypeSuffix(oc.ObjectType))
			}
		}
		if mutated > 0 {
			fmt.Fprintf(&b, "### Modified (%d)\n", mutated)
		}
		if deleted > 0 {
			fmt.Fprintf(&b, "### Deleted (%d)\n", deleted)
		}
	}

	if len(tx.Events) > 0 {
		fmt.Fprintf(&b, "\n## Events (%d)\n", len(tx.Events))
		for i, event := range tx.Events {
			if i == maxSummaryEvents {
				break
			}
			fmt.Fprintf(&b, "- %s\n", suiclient.TypeSuffix(event.Type))
		}
	}

	return b.String()
}

// netGas computes computation + storage - rebate in MIST.
func netGas(gas suiclient.GasCostSummary) (string, bool) {
	comp, ok1 := new(big.Int).SetString(gas.ComputationCost, 10)
	store, ok2 := new(big.Int).SetString(gas.StorageCost, 10)
	rebate, ok3 := new(big.Int).SetString(gas.StorageRebate, 10)
	if !ok1 || !ok2 || !ok3 {
		return "", false
	}
	total := new(big.Int).Add(comp, store)
	total.Sub(total, rebate)
	return total.String(), true
}

func formatTimestamp(timestampMs string) string {
	if timestampMs == "" {
		return "unknown"
	}
	var ms int64
	if _, err := fmt.Sscanf(timestampMs, "%d", &ms); err != nil {
		return "unknown"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
