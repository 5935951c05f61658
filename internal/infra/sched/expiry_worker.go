// File: internal/infra/sched/expiry_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/repository"
	"vendpay-gateway/internal/infra/metrics"
	"vendpay-gateway/internal/infra/worker"
)

// ExpiryWorker cancels PENDING transactions whose payment link has lapsed.
// Cancellation reuses the same conditional transition as the webhook path, so
// a webhook racing the expiry scan still wins at most once.
type ExpiryWorker struct {
	txs      repository.TransactionRepository
	pool     *worker.Pool
	interval time.Duration
	linkTTL  time.Duration
	log      *zerolog.Logger
}

func NewExpiryWorker(txs repository.TransactionRepository, pool *worker.Pool, interval, linkTTL time.Duration, logger *zerolog.Logger) *ExpiryWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	wl := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		txs:      txs,
		pool:     pool,
		interval: interval,
		linkTTL:  linkTTL,
		log:      &wl,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	cutoff := time.Now().Add(-w.linkTTL).Unix()
	stale, err := w.txs.ListPendingOlderThan(ctx, nil, cutoff, 200)
	if err != nil {
		w.log.Error().Err(err).Msg("list stale pending failed")
		return
	}
	for _, t := range stale {
		billID := t.BillID
		err := w.pool.Submit(func(ctx context.Context) error {
			applied, err := w.txs.TransitionIfPending(ctx, nil, billID, model.TransactionStatusCancelled, time.Now().Unix())
			if err != nil {
				return err
			}
			if applied {
				metrics.AddPendingExpired(1)
				w.log.Info().Int64("bill_id", billID).Msg("stale pending transaction cancelled")
			}
			return nil
		})
		if err != nil {
			w.log.Warn().Err(err).Int64("bill_id", billID).Msg("expiry submit failed")
			return
		}
	}
}
