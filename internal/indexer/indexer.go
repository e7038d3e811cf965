package indexer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/interest-protocol/memez-fun/internal/models"
	"github.com/interest-protocol/memez-fun/internal/sui"
)

type Chain interface {
	QueryEvents(ctx context.Context, filter sui.EventFilter, cursor *sui.EventID, limit int, descending bool) (*sui.EventPage, error)
}

type Store interface {
	GetCursor(ctx context.Context) (*models.Cursor, error)
	SaveEventPage(ctx context.Context, events []models.Event, cursor *models.Cursor) (int64, error)
}

// Indexer copies the events matched by Filter into Store, oldest first.
type Indexer struct {
	Chain           Chain
	Store           Store
	Filter          sui.EventFilter
	PageSize        int
	MaxPagesPerTick int
	Interval        time.Duration
	WSEndpoint      string
	Log             *zap.Logger

	trigger chan struct{}
}

// Run polls every Interval until ctx is done. With a WSEndpoint it also
// subscribes to the filter and syncs as soon as a matching event is pushed.
func (ix *Indexer) Run(ctx context.Context) error {
	ix.trigger = make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ix.poll(ctx)
		return nil
	})
	if ix.WSEndpoint != "" {
		g.Go(func() error {
			ix.RunWS(ctx)
			return nil
		})
	} else {
		ix.logger().Info("ws disabled: ws endpoint is empty")
	}
	return g.Wait()
}

func (ix *Indexer) poll(ctx context.Context) {
	interval := ix.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		n, err := ix.SyncOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			ix.logger().Error("sync failed", zap.Error(err))
		} else if n > 0 {
			ix.logger().Info("synced events", zap.Int64("inserted", n))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-ix.trigger:
		}
	}
}

// notify wakes the poll loop without blocking; one pending wake-up is
// enough since a sync drains every available page.
func (ix *Indexer) notify() {
	if ix.trigger == nil {
		return
	}
	select {
	case ix.trigger <- struct{}{}:
	default:
	}
}

// SyncOnce pages forward from the stored cursor and returns the number of
// newly stored events.
func (ix *Indexer) SyncOnce(ctx context.Context) (int64, error) {
	stored, err := ix.Store.GetCursor(ctx)
	if err != nil {
		return 0, err
	}
	var cursor *sui.EventID
	if stored != nil {
		cursor = &sui.EventID{TxDigest: stored.TxDigest, EventSeq: stored.EventSeq}
	}

	pageSize := ix.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	var inserted int64
	for pages := 0; ix.MaxPagesPerTick <= 0 || pages < ix.MaxPagesPerTick; pages++ {
		page, err := ix.Chain.QueryEvents(ctx, ix.Filter, cursor, pageSize, false)
		if err != nil {
			return inserted, err
		}

		next := page.NextCursor
		if next == nil && len(page.Events) > 0 {
			last := page.Events[len(page.Events)-1].ID
			next = &last
		}
		if len(page.Events) == 0 && sameCursor(next, cursor) {
			break
		}

		var newCursor *models.Cursor
		if next != nil {
			newCursor = &models.Cursor{TxDigest: next.TxDigest, EventSeq: next.EventSeq}
		}
		n, err := ix.Store.SaveEventPage(ctx, toModels(page.Events), newCursor)
		if err != nil {
			return inserted, err
		}
		inserted += n
		ix.logger().Debug("stored page",
			zap.Int("events", len(page.Events)),
			zap.Int64("inserted", n),
			zap.Bool("has_next", page.HasNextPage))

		if !page.HasNextPage || next == nil {
			break
		}
		cursor = next
	}
	return inserted, nil
}

func (ix *Indexer) logger() *zap.Logger {
	if ix.Log == nil {
		return zap.NewNop()
	}
	return ix.Log
}

func sameCursor(a, b *sui.EventID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func toModels(events []sui.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		m := models.Event{
			TxDigest:          ev.ID.TxDigest,
			EventSeq:          int64(ev.ID.EventSeq),
			PackageID:         ev.PackageID,
			TransactionModule: ev.TransactionModule,
			Sender:            ev.Sender,
			Type:              ev.Type,
			ParsedJSON:        ev.ParsedJSON,
			BCS:               ev.BCS,
		}
		if !ev.Timestamp.IsZero() {
			ts := ev.Timestamp
			m.EmittedAt = &ts
		}
		out = append(out, m)
	}
	return out
}
