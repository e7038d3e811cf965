package indexer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/interest-protocol/memez-fun/internal/models"
	"github.com/interest-protocol/memez-fun/internal/sui"
)

type mockChain struct {
	mock.Mock
}

func (m *mockChain) QueryEvents(ctx context.Context, filter sui.EventFilter, cursor *sui.EventID, limit int, descending bool) (*sui.EventPage, error) {
	args := m.Called(ctx, filter, cursor, limit, descending)
	page, _ := args.Get(0).(*sui.EventPage)
	return page, args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetCursor(ctx context.Context) (*models.Cursor, error) {
	args := m.Called(ctx)
	cur, _ := args.Get(0).(*models.Cursor)
	return cur, args.Error(1)
}

func (m *mockStore) SaveEventPage(ctx context.Context, events []models.Event, cursor *models.Cursor) (int64, error) {
	args := m.Called(ctx, events, cursor)
	return args.Get(0).(int64), args.Error(1)
}

var testFilter = sui.EventFilter{MoveEventModule: &sui.MoveModule{Package: "0xabc", Module: "events"}}

func suiEvent(digest string, seq uint64, at time.Time) sui.Event {
	return sui.Event{
		ID:                sui.EventID{TxDigest: digest, EventSeq: seq},
		PackageID:         "0xabc",
		TransactionModule: "memez_fun",
		Sender:            "0x1",
		Type:              "0xabc::events::New",
		Timestamp:         at,
	}
}

func TestSyncOnceFromScratchPagesUntilDone(t *testing.T) {
	ctx := context.Background()
	at := time.UnixMilli(1700000000000).UTC()
	chain := &mockChain{}
	st := &mockStore{}

	first := &sui.EventPage{
		Events:      []sui.Event{suiEvent("Dg1", 0, at), suiEvent("Dg1", 1, at)},
		NextCursor:  &sui.EventID{TxDigest: "Dg1", EventSeq: 1},
		HasNextPage: true,
	}
	second := &sui.EventPage{
		Events:     []sui.Event{suiEvent("Dg2", 0, time.Time{})},
		NextCursor: &sui.EventID{TxDigest: "Dg2", EventSeq: 0},
	}

	st.On("GetCursor", ctx).Return(nil, nil).Once()
	chain.On("QueryEvents", ctx, testFilter, (*sui.EventID)(nil), 2, false).Return(first, nil).Once()
	chain.On("QueryEvents", ctx, testFilter, &sui.EventID{TxDigest: "Dg1", EventSeq: 1}, 2, false).Return(second, nil).Once()
	st.On("SaveEventPage", ctx, mock.MatchedBy(func(evs []models.Event) bool {
		return len(evs) == 2 && evs[0].TxDigest == "Dg1" && evs[1].EventSeq == 1 && evs[0].EmittedAt.Equal(at)
	}), &models.Cursor{TxDigest: "Dg1", EventSeq: 1}).Return(int64(2), nil).Once()
	st.On("SaveEventPage", ctx, mock.MatchedBy(func(evs []models.Event) bool {
		return len(evs) == 1 && evs[0].TxDigest == "Dg2" && evs[0].EmittedAt == nil
	}), &models.Cursor{TxDigest: "Dg2", EventSeq: 0}).Return(int64(1), nil).Once()

	ix := &Indexer{Chain: chain, Store: st, Filter: testFilter, PageSize: 2}
	n, err := ix.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	chain.AssertExpectations(t)
	st.AssertExpectations(t)
}

func TestSyncOnceResumesFromStoredCursor(t *testing.T) {
	ctx := context.Background()
	chain := &mockChain{}
	st := &mockStore{}

	cursor := &sui.EventID{TxDigest: "Dg5", EventSeq: 3}
	st.On("GetCursor", ctx).Return(&models.Cursor{TxDigest: "Dg5", EventSeq: 3}, nil)
	chain.On("QueryEvents", ctx, testFilter, cursor, 50, false).
		Return(&sui.EventPage{NextCursor: cursor}, nil).Once()

	ix := &Indexer{Chain: chain, Store: st, Filter: testFilter}
	n, err := ix.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	st.AssertNotCalled(t, "SaveEventPage", mock.Anything, mock.Anything, mock.Anything)
	chain.AssertExpectations(t)
}

func TestSyncOnceDerivesCursorFromLastEvent(t *testing.T) {
	ctx := context.Background()
	chain := &mockChain{}
	st := &mockStore{}

	st.On("GetCursor", ctx).Return(nil, nil)
	chain.On("QueryEvents", ctx, testFilter, (*sui.EventID)(nil), 50, false).
		Return(&sui.EventPage{Events: []sui.Event{suiEvent("Dg7", 4, time.Time{})}}, nil).Once()
	st.On("SaveEventPage", ctx, mock.Anything, &models.Cursor{TxDigest: "Dg7", EventSeq: 4}).
		Return(int64(1), nil).Once()

	ix := &Indexer{Chain: chain, Store: st, Filter: testFilter}
	n, err := ix.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	st.AssertExpectations(t)
}

func TestSyncOnceRespectsMaxPages(t *testing.T) {
	ctx := context.Background()
	chain := &mockChain{}
	st := &mockStore{}

	next := &sui.EventID{TxDigest: "Dg1", EventSeq: 0}
	st.On("GetCursor", ctx).Return(nil, nil)
	chain.On("QueryEvents", ctx, testFilter, (*sui.EventID)(nil), 1, false).
		Return(&sui.EventPage{Events: []sui.Event{suiEvent("Dg1", 0, time.Time{})}, NextCursor: next, HasNextPage: true}, nil).Once()
	st.On("SaveEventPage", ctx, mock.Anything, &models.Cursor{TxDigest: "Dg1", EventSeq: 0}).Return(int64(1), nil).Once()

	ix := &Indexer{Chain: chain, Store: st, Filter: testFilter, PageSize: 1, MaxPagesPerTick: 1}
	n, err := ix.SyncOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	chain.AssertNumberOfCalls(t, "QueryEvents", 1)
}

func TestSyncOncePropagatesErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	st := &mockStore{}
	st.On("GetCursor", ctx).Return(nil, boom)
	_, err := (&Indexer{Chain: &mockChain{}, Store: st, Filter: testFilter}).SyncOnce(ctx)
	assert.ErrorIs(t, err, boom)

	st = &mockStore{}
	chain := &mockChain{}
	st.On("GetCursor", ctx).Return(nil, nil)
	chain.On("QueryEvents", ctx, testFilter, (*sui.EventID)(nil), 50, false).Return(nil, boom)
	_, err = (&Indexer{Chain: chain, Store: st, Filter: testFilter}).SyncOnce(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestRunStopsOnCancel(t *testing.T) {
	chain := &mockChain{}
	st := &mockStore{}
	st.On("GetCursor", mock.Anything).Return(nil, nil)
	var calls atomic.Int32
	chain.On("QueryEvents", mock.Anything, testFilter, (*sui.EventID)(nil), 50, false).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return(&sui.EventPage{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	ix := &Indexer{Chain: chain, Store: st, Filter: testFilter, Interval: 10 * time.Millisecond}

	done := make(chan error, 1)
	go func() { done <- ix.Run(ctx) }()

	require.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
