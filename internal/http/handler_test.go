package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/interest-protocol/memez-fun/internal/models"
)

type mockChain struct {
	mock.Mock
}

func (m *mockChain) ChainIdentifier(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockChain) LatestCheckpointSequenceNumber(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	return args.Get(0).(uint64), args.Error(1)
}

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) GetCursor(ctx context.Context) (*models.Cursor, error) {
	args := m.Called(ctx)
	cur, _ := args.Get(0).(*models.Cursor)
	return cur, args.Error(1)
}

func (m *mockEvents) ListEvents(ctx context.Context, eventType string, limit int) ([]*models.Event, error) {
	args := m.Called(ctx, eventType, limit)
	evs, _ := args.Get(0).([]*models.Event)
	return evs, args.Error(1)
}

func (m *mockEvents) CountEvents(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewServer(h).Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, NewHandler(&mockChain{}, &mockEvents{}, nil), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	chain := &mockChain{}
	events := &mockEvents{}
	chain.On("ChainIdentifier", mock.Anything).Return("4c78adac", nil)
	chain.On("LatestCheckpointSequenceNumber", mock.Anything).Return(uint64(99), nil)
	events.On("CountEvents", mock.Anything).Return(int64(12), nil)
	events.On("GetCursor", mock.Anything).Return(&models.Cursor{TxDigest: "Dg", EventSeq: 1}, nil)

	rec := serve(t, NewHandler(chain, events, nil), "/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"chainId": "4c78adac",
		"latestCheckpoint": "99",
		"indexedEvents": 12,
		"cursor": {"txDigest": "Dg", "eventSeq": 1}
	}`, rec.Body.String())
}

func TestStatusFullnodeDown(t *testing.T) {
	chain := &mockChain{}
	chain.On("ChainIdentifier", mock.Anything).Return("", errors.New("dial tcp: refused"))

	rec := serve(t, NewHandler(chain, &mockEvents{}, nil), "/status")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"error":"fullnode unavailable"}`, rec.Body.String())
}

func TestListEvents(t *testing.T) {
	events := &mockEvents{}
	events.On("ListEvents", mock.Anything, "0xabc::events::Pump", 5).Return([]*models.Event{
		{TxDigest: "Dg1", EventSeq: 0, Type: "0xabc::events::Pump"},
	}, nil)

	rec := serve(t, NewHandler(&mockChain{}, events, nil), "/events?type=0xabc::events::Pump&limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []models.Event `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, "Dg1", body.Events[0].TxDigest)
}

func TestListEventsDefaultsAndEmpty(t *testing.T) {
	events := &mockEvents{}
	events.On("ListEvents", mock.Anything, "", defaultLimit).Return(nil, nil)

	rec := serve(t, NewHandler(&mockChain{}, events, nil), "/events")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"events":[]}`, rec.Body.String())
}

func TestListEventsBadLimit(t *testing.T) {
	for _, limit := range []string{"0", "501", "abc"} {
		rec := serve(t, NewHandler(&mockChain{}, &mockEvents{}, nil), "/events?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}
