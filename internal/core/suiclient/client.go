package suiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fullnode JSON-RPC endpoints per network.
var fullnodeURLs = map[string]string{
	"mainnet": "https://fullnode.mainnet.sui.io:443",
	"testnet": "https://fullnode.testnet.sui.io:443",
	"devnet":  "https://fullnode.devnet.sui.io:443",
}

// FullnodeURL resolves a network name to its RPC endpoint, defaulting to mainnet.
func FullnodeURL(network string) string {
	if u, ok := fullnodeURLs[network]; ok {
		return u
	}
	return fullnodeURLs["mainnet"]
}

// Client talks JSON-RPC to a Sui fullnode.
type Client struct {
	url    string
	client *http.Client
}

// NewClient builds a fullnode client for the given RPC URL.
func NewClient(url string) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// showOptions asks the node for everything the context assembler reads.
var showOptions = map[string]bool{
	"showInput":          true,
	"showEffects":        true,
	"showEvents":         true,
	"showObjectChanges":  true,
	"showBalanceChanges": true,
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("call %s: fullnode returned %d: %s", method, resp.StatusCode, string(b))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("call %s: %w", method, rpcResp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("unmarshal %s result: %w", method, err)
		}
	}
	return nil
}

// GetTransactionBlock fetches one transaction by digest with full detail.
func (c *Client) GetTransactionBlock(ctx context.Context, digest string) (*TransactionBlock, error) {
	var tx TransactionBlock
	if err := c.call(ctx, "sui_getTransactionBlock", []interface{}{digest, showOptions}, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

type queryResult struct {
	Data []TransactionBlock `json:"data"`
}

// QueryTransactionBlocks returns an address's most recent sent transactions,
// newest first.
func (c *Client) QueryTransactionBlocks(ctx context.Context, address string, limit int) ([]TransactionBlock, error) {
	query := map[string]interface{}{
		"filter":  map[string]interface{}{"FromAddress": address},
		"options": showOptions,
	}
	var res queryResult
	err := c.call(ctx, "suix_queryTransactionBlocks", []interface{}{query, nil, limit, true}, &res)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}
