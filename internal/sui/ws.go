package sui

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

const subscribeEventMethod = "suix_subscribeEvent"

type WSClient struct {
	Endpoint string
	Conn     *websocket.Conn

	closeOnce sync.Once
	done      chan struct{}
}

func NewWSClient(endpoint string) *WSClient {
	return &WSClient{Endpoint: endpoint, done: make(chan struct{})}
}

// Connect dials the endpoint. The connection is closed when ctx is done so
// that a blocked Read returns.
func (c *WSClient) Connect(ctx context.Context) error {
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, c.Endpoint, nil)
	if err != nil {
		return err
	}
	c.Conn = conn
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()
	return nil
}

func (c *WSClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

// SubscribeEvents sends a subscription request and waits for the ack,
// returning the subscription id assigned by the node.
func (c *WSClient) SubscribeEvents(ctx context.Context, filter EventFilter) (uint64, error) {
	if filter.IsEmpty() {
		return 0, ErrEmptyFilter
	}
	payload := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  subscribeEventMethod,
		"params":  []any{filter},
	}
	if err := c.Conn.WriteJSON(payload); err != nil {
		return 0, err
	}

	msg, err := c.Read(ctx)
	if err != nil {
		return 0, err
	}
	var ack struct {
		Result *uint64   `json:"result"`
		Error  *RPCError `json:"error"`
	}
	if err := json.Unmarshal(msg, &ack); err != nil {
		return 0, err
	}
	if ack.Error != nil {
		return 0, ack.Error
	}
	if ack.Result == nil {
		return 0, errors.New("subscribe ack without subscription id")
	}
	return *ack.Result, nil
}

func (c *WSClient) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, msg, err := c.Conn.ReadMessage()
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return msg, err
}

// ParseEventNotification extracts the event carried by a subscription
// notification. Messages that are not event notifications yield ok=false.
func ParseEventNotification(msg []byte) (*Event, bool, error) {
	var env struct {
		Method string `json:"method"`
		Params struct {
			Subscription uint64          `json:"subscription"`
			Result       json.RawMessage `json:"result"`
		} `json:"params"`
		Error *RPCError `json:"error"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, false, err
	}
	if env.Error != nil {
		return nil, false, env.Error
	}
	if env.Method != subscribeEventMethod || len(env.Params.Result) == 0 {
		return nil, false, nil
	}

	var raw rpcEvent
	if err := json.Unmarshal(env.Params.Result, &raw); err != nil {
		return nil, false, err
	}
	ev, err := decodeEvent(raw)
	if err != nil {
		return nil, false, err
	}
	return &ev, true, nil
}
