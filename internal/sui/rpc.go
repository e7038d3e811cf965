package sui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultRetries = 3
)

// Client talks to a single Sui fullnode over JSON-RPC. Construction does not
// touch the network.
type Client struct {
	endpoint string
	client   *retryablehttp.Client
	log      *zap.Logger
}

type options struct {
	log        *zap.Logger
	retries    int
	timeout    time.Duration
	httpClient *http.Client
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithRetries(n int) Option {
	return func(o *options) { o.retries = n }
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient replaces the underlying transport client. Its Timeout is
// left untouched.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if _, err := url.Parse(endpoint); err != nil {
		return nil, err
	}

	o := options{log: zap.NewNop(), retries: DefaultRetries, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.retries < 0 {
		o.retries = 0
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = o.retries
	rc.Logger = leveledLogger{o.log.Sugar()}
	if o.httpClient != nil {
		rc.HTTPClient = o.httpClient
	} else {
		rc.HTTPClient = &http.Client{
			Transport: cleanhttp.DefaultPooledTransport(),
			Timeout:   o.timeout,
		}
	}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		endpoint: endpoint,
		client:   rc,
		log:      o.log,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Call performs a JSON-RPC request and decodes the result into out. A null
// result leaves out untouched.
func (c *Client) Call(ctx context.Context, method string, params []any, out any) error {
	if params == nil {
		params = []any{}
	}
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", method, err)
	}
	c.log.Debug("rpc call",
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var env rpcResponse
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if env.Error != nil {
		return env.Error
	}
	if out == nil || len(env.Result) == 0 || bytes.Equal(env.Result, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", method, err)
	}
	return nil
}

func (c *Client) ChainIdentifier(ctx context.Context) (string, error) {
	var out string
	if err := c.Call(ctx, "sui_getChainIdentifier", nil, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) LatestCheckpointSequenceNumber(ctx context.Context) (uint64, error) {
	var out string
	if err := c.Call(ctx, "sui_getLatestCheckpointSequenceNumber", nil, &out); err != nil {
		return 0, err
	}
	return parseUint64(out)
}

// GetCheckpoint accepts either a sequence number or a checkpoint digest.
func (c *Client) GetCheckpoint(ctx context.Context, id string) (*Checkpoint, error) {
	var out rpcCheckpoint
	if err := c.Call(ctx, "sui_getCheckpoint", []any{id}, &out); err != nil {
		return nil, err
	}
	return decodeCheckpoint(out)
}

func (c *Client) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	var out string
	if err := c.Call(ctx, "suix_getReferenceGasPrice", nil, &out); err != nil {
		return 0, err
	}
	return parseUint64(out)
}

func (c *Client) TotalTransactionBlocks(ctx context.Context) (uint64, error) {
	var out string
	if err := c.Call(ctx, "sui_getTotalTransactionBlocks", nil, &out); err != nil {
		return 0, err
	}
	return parseUint64(out)
}

func (c *Client) QueryEvents(ctx context.Context, filter EventFilter, cursor *EventID, limit int, descending bool) (*EventPage, error) {
	if filter.IsEmpty() {
		return nil, ErrEmptyFilter
	}
	if limit < 1 {
		limit = 50
	}
	var cur any
	if cursor != nil {
		cur = *cursor
	}

	var out rpcEventPage
	if err := c.Call(ctx, "suix_queryEvents", []any{filter, cur, limit, descending}, &out); err != nil {
		return nil, err
	}

	page := &EventPage{HasNextPage: out.HasNextPage}
	for _, ev := range out.Data {
		e, err := decodeEvent(ev)
		if err != nil {
			return nil, err
		}
		page.Events = append(page.Events, e)
	}
	if out.NextCursor != nil {
		seq, err := parseUint64(out.NextCursor.EventSeq)
		if err != nil {
			return nil, err
		}
		page.NextCursor = &EventID{TxDigest: out.NextCursor.TxDigest, EventSeq: seq}
	}
	return page, nil
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
