package sui

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MultiClient spreads reads over several fullnodes, moving to the next
// endpoint whenever a call fails.
type MultiClient struct {
	clients       []*Client
	index         int
	failCount     int
	failThreshold int
	log           *zap.Logger
	mu            sync.Mutex
}

func NewMultiClient(endpoints []string, failThreshold int, opts ...Option) (*MultiClient, error) {
	list := sanitizeEndpoints(endpoints)
	if len(list) == 0 {
		return nil, ErrNoEndpoints
	}
	if failThreshold <= 0 {
		failThreshold = 3
	}
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	clients := make([]*Client, 0, len(list))
	for _, ep := range list {
		c, err := NewClient(ep, opts...)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return &MultiClient{
		clients:       clients,
		failThreshold: failThreshold,
		log:           o.log,
	}, nil
}

func (m *MultiClient) Endpoint() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[m.index].endpoint
}

func (m *MultiClient) Endpoints() []string {
	out := make([]string, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c.endpoint)
	}
	return out
}

func (m *MultiClient) ChainIdentifier(ctx context.Context) (string, error) {
	return withFailover(m, func(c *Client) (string, error) {
		return c.ChainIdentifier(ctx)
	})
}

func (m *MultiClient) LatestCheckpointSequenceNumber(ctx context.Context) (uint64, error) {
	return withFailover(m, func(c *Client) (uint64, error) {
		return c.LatestCheckpointSequenceNumber(ctx)
	})
}

func (m *MultiClient) GetCheckpoint(ctx context.Context, id string) (*Checkpoint, error) {
	return withFailover(m, func(c *Client) (*Checkpoint, error) {
		return c.GetCheckpoint(ctx, id)
	})
}

func (m *MultiClient) ReferenceGasPrice(ctx context.Context) (uint64, error) {
	return withFailover(m, func(c *Client) (uint64, error) {
		return c.ReferenceGasPrice(ctx)
	})
}

func (m *MultiClient) TotalTransactionBlocks(ctx context.Context) (uint64, error) {
	return withFailover(m, func(c *Client) (uint64, error) {
		return c.TotalTransactionBlocks(ctx)
	})
}

func (m *MultiClient) QueryEvents(ctx context.Context, filter EventFilter, cursor *EventID, limit int, descending bool) (*EventPage, error) {
	return withFailover(m, func(c *Client) (*EventPage, error) {
		return c.QueryEvents(ctx, filter, cursor, limit, descending)
	})
}

// withFailover tries each endpoint at most once, starting at the current one.
func withFailover[T any](m *MultiClient, call func(*Client) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempts := 0; attempts < len(m.clients); attempts++ {
		client, idx := m.currentClient()
		out, err := call(client)
		if err == nil {
			m.resetFailures(idx)
			return out, nil
		}
		lastErr = err
		m.noteFailure(idx)
		m.log.Warn("rpc endpoint failed", zap.String("endpoint", client.endpoint), zap.Error(err))
		if len(m.clients) > 1 || m.shouldRotate() {
			m.rotate(idx)
		}
	}
	return zero, lastErr
}

func (m *MultiClient) currentClient() (*Client, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[m.index], m.index
}

func (m *MultiClient) resetFailures(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == idx {
		m.failCount = 0
	}
}

func (m *MultiClient) noteFailure(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index == idx {
		m.failCount++
	}
}

func (m *MultiClient) shouldRotate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failCount >= m.failThreshold
}

// rotate advances past idx unless another caller already moved on.
func (m *MultiClient) rotate(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != idx {
		return
	}
	m.index = (m.index + 1) % len(m.clients)
	m.failCount = 0
}

func sanitizeEndpoints(endpoints []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		ep = strings.TrimSpace(ep)
		if ep == "" {
			continue
		}
		ep = strings.TrimRight(ep, "/")
		if _, ok := seen[ep]; ok {
			continue
		}
		seen[ep] = struct{}{}
		out = append(out, ep)
	}
	return out
}
