package indexer

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/interest-protocol/memez-fun/internal/sui"
)

var errConnectionLost = errors.New("ws connection lost")

// RunWS keeps an event subscription open until ctx is done, reconnecting
// with exponential backoff.
func (ix *Indexer) RunWS(ctx context.Context) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.MaxInterval = time.Minute
	eb.MaxElapsedTime = 0

	op := func() error {
		client := sui.NewWSClient(ix.WSEndpoint)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close()

		sub, err := client.SubscribeEvents(ctx, ix.Filter)
		if err != nil {
			return err
		}
		ix.logger().Info("ws subscribed", zap.String("endpoint", ix.WSEndpoint), zap.Uint64("subscription", sub))
		eb.Reset()
		// Catch up on anything emitted while disconnected.
		ix.notify()

		for {
			msg, err := client.Read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return backoff.Permanent(ctx.Err())
				}
				return errors.Join(errConnectionLost, err)
			}
			ev, ok, err := sui.ParseEventNotification(msg)
			if err != nil {
				ix.logger().Warn("ws parse failed", zap.Error(err))
				continue
			}
			if !ok {
				continue
			}
			ix.logger().Debug("ws event", zap.String("type", ev.Type), zap.String("tx", ev.ID.TxDigest))
			ix.notify()
		}
	}

	notify := func(err error, wait time.Duration) {
		ix.logger().Warn("ws disconnected", zap.Error(err), zap.Duration("retry_in", wait))
	}
	if err := backoff.RetryNotify(op, backoff.WithContext(eb, ctx), notify); err != nil && ctx.Err() == nil {
		ix.logger().Error("ws stopped", zap.Error(err))
	}
}
