package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
)

func TestClassifyEventPrecedence(t *testing.T) {
	// A swap event outranks everything else, including an offsetting balance
	// pair that would otherwise classify as a plain transfer.
	tx := &suiclient.TransactionBlock{
		Events: []suiclient.Event{
			{Type: "0xdee9::clob_v2::SwapEvent"},
		},
		BalanceChanges: []suiclient.BalanceChange{
			{CoinType: "0x2::sui::SUI", Amount: "-1000000000"},
			{CoinType: "0x2::sui::SUI", Amount: "1000000000"},
		},
	}
	assert.Equal(t, TypeDEXSwap, Classify(tx))
}

func TestClassifyEventRules(t *testing.T) {
	cases := []struct {
		eventType string
		want      string
	}{
		{"0x3::validator::StakingRequestEvent", TypeStaking},
		{"0xabc::collection::MintEvent", TypeNFTMint},
		{"0x2::coin::TransferEvent", TypeTransfer},
		{"0xdef::market::BorrowEvent", TypeDeFiLending},
		{"0xdef::amm::LiquidityAdded", TypeLiquidity},
	}
	for _, tc := range cases {
		tx := &suiclient.TransactionBlock{Events: []suiclient.Event{{Type: tc.eventType}}}
		assert.Equal(t, tc.want, Classify(tx), tc.eventType)
	}
}

func TestClassifyMultiCoinIsTokenSwap(t *testing.T) {
	tx := &suiclient.TransactionBlock{
		BalanceChanges: []suiclient.BalanceChange{
			{CoinType: "0x2::sui::SUI", Amount: "-5000"},
			{CoinType: "0xa::usdc::USDC", Amount: "3"},
		},
	}
	assert.Equal(t, TypeTokenSwap, Classify(tx))
}

func TestClassifyNFTObjectTypes(t *testing.T) {
	tx := &suiclient.TransactionBlock{
		ObjectChanges: []suiclient.ObjectChange{
			{Type: "mutated", ObjectType: "0x2::kiosk::Kiosk"},
		},
	}
	assert.Equal(t, TypeNFTTransaction, Classify(tx))
}

func TestClassifyOffsettingPairIsSuiTransfer(t *testing.T) {
	tx := &suiclient.TransactionBlock{
		BalanceChanges: []suiclient.BalanceChange{
			{CoinType: "0x2::sui::SUI", Amount: "-2000000000"},
			{CoinType: "0x2::sui::SUI", Amount: "2000000000"},
		},
	}
	assert.Equal(t, TypeSuiTransfer, Classify(tx))
}

func TestClassifyZeroPairIsNotTransfer(t *testing.T) {
	tx := &suiclient.TransactionBlock{
		BalanceChanges: []suiclient.BalanceChange{
			{CoinType: "0x2::sui::SUI", Amount: "0"},
			{CoinType: "0x2::sui::SUI", Amount: "0"},
		},
	}
	assert.Equal(t, TypeContractInteraction, Classify(tx))
}

func TestClassifyFallback(t *testing.T) {
	assert.Equal(t, TypeContractInteraction, Classify(&suiclient.TransactionBlock{}))
}

func TestSummarizeStructure(t *testing.T) {
	tx := &suiclient.TransactionBlock{
		Digest:      strings.Repeat("A", 43),
		TimestampMs: "1700000000000",
		Transaction: &suiclient.TransactionEnv{Data: suiclient.TransactionData{Sender: "0x" + strings.Repeat("a", 64)}},
		Effects: &suiclient.Effects{
			Status:  suiclient.ExecutionStatus{Status: "success"},
			GasUsed: suiclient.GasCostSummary{ComputationCost: "1000000", StorageCost: "2000000", StorageRebate: "500000"},
		},
		BalanceChanges: []suiclient.BalanceChange{
			{Owner: suiclient.Owner{AddressOwner: "0x" + strings.Repeat("a", 64)}, CoinType: "0x2::sui::SUI", Amount: "-1000000000"},
		},
	}

	out := Summarize(tx)
	require.Contains(t, out, "## Transaction Details")
	assert.Contains(t, out, "- **Status**: success")
	assert.Contains(t, out, "- **Timestamp**: 2023-11-14T22:13:20Z")
	// 1000000 + 2000000 - 500000 = 2500000 MIST
	assert.Contains(t, out, "- **Gas Used**: 0.0025 SUI")
	assert.Contains(t, out, "## Balance Changes")
	assert.Contains(t, out, "-1 SUI")
}

func TestSummarizeBoundsLists(t *testing.T) {
	tx := &suiclient.TransactionBlock{Digest: strings.Repeat("B", 43)}
	for i := 0; i < 20; i++ {
		tx.Events = append(tx.Events, suiclient.Event{Type: "0xabc::module::SomethingHappened"})
		tx.ObjectChanges = append(tx.ObjectChanges, suiclient.ObjectChange{Type: "created", ObjectType: "0xabc::module::Widget"})
	}

	out := Summarize(tx)
	assert.Contains(t, out, "## Events (20)")
	assert.Contains(t, out, "### Created (20)")
	assert.Equal(t, maxSummaryEvents, strings.Count(out, "- module::SomethingHappened"))
	assert.Equal(t, maxSummaryObjects, strings.Count(out, "- module::Widget"))
}
