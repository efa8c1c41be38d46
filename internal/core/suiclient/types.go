package suiclient

// Types mirror the JSON shape returned by a Sui fullnode for
// sui_getTransactionBlock / suix_queryTransactionBlocks with the show* options
// enabled. Only the fields the explainer needs are modeled; the full payload is
// kept verbatim as the cache's raw blob.

// TransactionBlock is one settled transaction as reported by the fullnode.
type TransactionBlock struct {
	Digest         string          `json:"digest"`
	Transaction    *TransactionEnv `json:"transaction,omitempty"`
	Effects        *Effects        `json:"effects,omitempty"`
	Events         []Event         `json:"events,omitempty"`
	ObjectChanges  []ObjectChange  `json:"objectChanges,omitempty"`
	BalanceChanges []BalanceChange `json:"balanceChanges,omitempty"`
	TimestampMs    string          `json:"timestampMs,omitempty"`
}

// TransactionEnv wraps the signed transaction data envelope.
type TransactionEnv struct {
	Data TransactionData `json:"data"`
}

// TransactionData carries the sender and inputs of the transaction.
type TransactionData struct {
	Sender string `json:"sender"`
}

// Effects summarizes execution results.
type Effects struct {
	Status  ExecutionStatus `json:"status"`
	GasUsed GasCostSummary  `json:"gasUsed"`
}

// ExecutionStatus is "success" or "failure".
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GasCostSummary holds the gas components in MIST as decimal strings.
type GasCostSummary struct {
	ComputationCost string `json:"computationCost"`
	StorageCost     string `json:"storageCost"`
	StorageRebate   string `json:"storageRebate"`
}

// Event is one emitted Move event; Type is the fully qualified event type.
type Event struct {
	Type      string `json:"type"`
	PackageID string `json:"packageId,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// ObjectChange describes a created/mutated/deleted object.
type ObjectChange struct {
	Type       string `json:"type"` // "created", "mutated", "deleted", ...
	ObjectType string `json:"objectType,omitempty"`
	ObjectID   string `json:"objectId,omitempty"`
}

// BalanceChange is a net coin movement for one owner.
type BalanceChange struct {
	Owner    Owner  `json:"owner"`
	CoinType string `json:"coinType"`
	Amount   string `json:"amount"` // signed decimal string in base units
}

// Owner identifies who a balance change belongs to.
type Owner struct {
	AddressOwner string `json:"AddressOwner,omitempty"`
	ObjectOwner  string `json:"ObjectOwner,omitempty"`
}

// Sender returns the transaction sender, or "" when the envelope is absent.
func (t *TransactionBlock) SenderAddress() string {
	if t.Transaction == nil {
		return ""
	}
	return t.Transaction.Data.Sender
}

// StatusString returns the execution status, defaulting to "unknown".
func (t *TransactionBlock) StatusString() string {
	if t.Effects == nil || t.Effects.Status.Status == "" {
		return "unknown"
	}
	return t.Effects.Status.Status
}
