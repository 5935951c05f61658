// File: internal/usecase/confirm_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/adapter"
	"vendpay-gateway/internal/domain/ports/repository"
	"vendpay-gateway/internal/infra/logging"
	"vendpay-gateway/internal/infra/metrics"
)

// Compile-time check
var _ ConfirmUseCase = (*confirmUC)(nil)

// WebhookData mirrors the provider's nested payload.
type WebhookData struct {
	OrderCode     int64  `json:"orderCode"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
	AccountNumber string `json:"accountNumber"`
}

type WebhookPayload struct {
	Data      WebhookData `json:"data"`
	Success   bool        `json:"success"`
	Signature string      `json:"signature"`
}

// ConfirmResult reports what the webhook actually did. Applied=false is the
// benign idempotent-replay path (unknown order or already-terminal row).
type ConfirmResult struct {
	Applied     bool
	Status      model.TransactionStatus
	Dispatched  bool
	DispatchErr error
}

type ConfirmUseCase interface {
	// Confirm authenticates and applies one webhook delivery. A non-nil result
	// may accompany a non-nil error: a transaction can reach PAID and still
	// have no machine bound to it, which is surfaced without rolling back.
	Confirm(ctx context.Context, p WebhookPayload) (*ConfirmResult, error)
}

type confirmUC struct {
	txs        repository.TransactionRepository
	channels   repository.ChannelRepository
	txm        repository.TransactionManager
	verifier   adapter.WebhookVerifier
	dispatcher adapter.DeviceDispatcher
	log        *zerolog.Logger
}

func NewConfirmUseCase(
	txs repository.TransactionRepository,
	channels repository.ChannelRepository,
	txm repository.TransactionManager,
	verifier adapter.WebhookVerifier,
	dispatcher adapter.DeviceDispatcher,
	logger *zerolog.Logger,
) *confirmUC {
	return &confirmUC{
		txs:        txs,
		channels:   channels,
		txm:        txm,
		verifier:   verifier,
		dispatcher: dispatcher,
		log:        logger,
	}
}

func (u *confirmUC) Confirm(ctx context.Context, p WebhookPayload) (*ConfirmResult, error) {
	defer logging.TraceDuration(u.log, "ConfirmUC.Confirm")()
	log := logging.With(logging.WithBillID(ctx, p.Data.OrderCode), u.log)

	tx, err := u.txs.FindByBillID(ctx, nil, p.Data.OrderCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown order: same benign outcome as a replay. No state exists
			// to mutate and nothing must be dispatched.
			metrics.IncWebhookResult("replay")
			log.Info().Msg("webhook for unknown order")
			return &ConfirmResult{Applied: false}, nil
		}
		return nil, err
	}

	cfg, err := u.channels.FindByID(ctx, nil, tx.PayChannel)
	if err != nil {
		return nil, err
	}

	// Webhooks MUST be authenticated before any state mutation. The upstream
	// deployment skipped this; that was a vulnerability, not a contract.
	ok, err := u.verifier.VerifyWebhook(cfg, p.Data.OrderCode, p.Data.Amount, p.Data.Description, p.Signature)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.IncWebhookResult("unauthorized")
		log.Warn().Str("channel", tx.PayChannel).Msg("webhook signature mismatch")
		return nil, domain.ErrInvalidSignature
	}

	status := model.StatusForOutcome(p.Success)

	// The conditional transition and the device-binding read share one
	// database transaction. A missing binding is captured, not returned, so
	// the rollback path never undoes an applied PAID.
	var (
		applied   bool
		target    *model.DeviceTarget
		deviceErr error
	)
	err = u.txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, dbtx repository.Tx) error {
		var txErr error
		applied, txErr = u.txs.TransitionIfPending(ctx, dbtx, p.Data.OrderCode, status, time.Now().Unix())
		if txErr != nil {
			return txErr
		}
		if !applied || status != model.TransactionStatusPaid {
			return nil
		}
		target, deviceErr = u.txs.FindDeviceTarget(ctx, dbtx, p.Data.OrderCode)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		metrics.IncWebhookResult("replay")
		log.Info().Str("target", string(status)).Msg("transition skipped, transaction already terminal")
		return &ConfirmResult{Applied: false}, nil
	}

	res := &ConfirmResult{Applied: true, Status: status}
	if status == model.TransactionStatusCancelled {
		metrics.IncWebhookResult("cancelled")
		log.Info().Msg("transaction cancelled")
		return res, nil
	}
	metrics.IncWebhookResult("paid")

	if deviceErr != nil {
		// The payment happened; PAID must stand. Surface the missing binding
		// for manual reconciliation instead of hiding it behind a rollback.
		log.Error().Err(deviceErr).Msg("transaction paid but no machine bound")
		return res, fmt.Errorf("device lookup for bill %d: %w", p.Data.OrderCode, deviceErr)
	}

	cmd := fmt.Sprintf("%s,%d,%s", target.CommandPrefix, p.Data.Amount, p.Data.Description)
	if err := u.dispatcher.Dispatch(ctx, target, cmd); err != nil {
		// Absorbed: the provider's ack must not depend on the device call.
		res.DispatchErr = err
		log.Error().Err(err).Str("cmd", cmd).Msg("device dispatch failed")
		return res, nil
	}
	res.Dispatched = true
	log.Info().Str("cmd", cmd).Msg("device dispatch ok")
	return res, nil
}
