// Package chain fetches the dragon contract documents from a Zilliqa
// style JSON-RPC node. One client instance is shared by the snapshot
// builder and the refresh scheduler.
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetryStep = 1 * time.Second
	DefaultRetryMax  = 14 * time.Second
)

// RetryPolicy bounds the delay between fetch attempts. Fetches retry
// until the context is cancelled; the delay grows by Step per attempt
// and holds at Max.
type RetryPolicy struct {
	Step time.Duration
	Max  time.Duration
}

func (p RetryPolicy) next(d time.Duration) time.Duration {
	d += p.Step
	if d > p.Max {
		d = p.Max
	}
	return d
}

// Contracts holds the deployed contract addresses the five state
// documents are read from.
type Contracts struct {
	Main   string
	Battle string
	Breed  string
	Market string
	Names  string
}

type Client struct {
	endpoint string
	inner    *http.Client
	retry    RetryPolicy

	// Request payloads are fixed per client, serialized once here.
	reqMain   []byte
	reqBattle []byte
	reqBreed  []byte
	reqMarket []byte
	reqNames  []byte
	reqHeight []byte
}

type Option func(*Client)

func WithHTTPClient(inner *http.Client) Option {
	return func(c *Client) { c.inner = inner }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

func NewClient(endpoint string, contracts Contracts, opts ...Option) *Client {
	c := &Client{
		endpoint:  endpoint,
		inner:     &http.Client{Timeout: DefaultTimeout},
		retry:     RetryPolicy{Step: DefaultRetryStep, Max: DefaultRetryMax},
		reqMain:   marshalRequest("GetSmartContractState", []any{contracts.Main}),
		reqBattle: marshalRequest("GetSmartContractSubState", []any{contracts.Battle, "waiting_list", []any{}}),
		reqBreed:  marshalRequest("GetSmartContractSubState", []any{contracts.Breed, "waiting_list", []any{}}),
		reqMarket: marshalRequest("GetSmartContractSubState", []any{contracts.Market, "orderbook", []any{}}),
		reqNames:  marshalRequest("GetSmartContractSubState", []any{contracts.Names, "dragons_name", []any{}}),
		reqHeight: marshalRequest("GetCurrentMiniEpoch", []any{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	ID      string `json:"id"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcEnvelope struct {
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

func marshalRequest(method string, params []any) []byte {
	body, err := json.Marshal(rpcRequest{ID: "1", JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		// Static methods and params, cannot fail.
		panic(err)
	}
	return body
}

// fetch posts one fixed payload and returns the raw response body.
// Transport errors and non-200 statuses are retried until the context
// is cancelled; the remote node is assumed to eventually answer.
func (c *Client) fetch(ctx context.Context, payload []byte) ([]byte, error) {
	delay := time.Duration(0)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = c.retry.next(delay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.inner.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", delay).Msg("rpc request failed, retrying")
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt).Msg("rpc response read failed, retrying")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			log.Warn().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("rpc non-ok status, retrying")
			continue
		}
		return body, nil
	}
}

// call fetches one payload and decodes the envelope result into out.
func (c *Client) call(ctx context.Context, payload []byte, doc string, out any) error {
	body, err := c.fetch(ctx, payload)
	if err != nil {
		return err
	}
	var env rpcEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc, err)
	}
	if env.Error != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc, env.Error)
	}
	if env.Result == nil {
		return fmt.Errorf("%w: %s: missing result", ErrMalformedDocument, doc)
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedDocument, doc, err)
	}
	return nil
}

// Height returns the current transaction block number of the chain.
func (c *Client) Height(ctx context.Context) (uint64, error) {
	var raw string
	if err := c.call(ctx, c.reqHeight, "height", &raw); err != nil {
		return 0, err
	}
	h, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: height: %v", ErrMalformedDocument, err)
	}
	return h, nil
}
