// File: internal/usecase/billing_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/adapter"
	"vendpay-gateway/internal/domain/ports/repository"
	"vendpay-gateway/internal/infra/logging"
	"vendpay-gateway/internal/infra/metrics"
)

// Compile-time check
var _ BillingUseCase = (*billingUC)(nil)

// BillIDGenerator issues globally unique order identifiers.
type BillIDGenerator interface {
	NextBillID() int64
}

// CreateBillResult carries the provider artifacts the machine UI needs.
type CreateBillResult struct {
	OrderCode  int64
	QRCode     string
	PaymentURL string
}

type BillingUseCase interface {
	// CreateBill persists a PENDING transaction and creates the hosted payment
	// link for it.
	CreateBill(ctx context.Context, channelID, machineID string, amount int64, descSuffix string) (*CreateBillResult, error)
	// ListRecent returns the newest transactions for the ops log view.
	ListRecent(ctx context.Context, limit int) ([]*model.Transaction, error)
}

type billingUC struct {
	txs        repository.TransactionRepository
	channels   repository.ChannelRepository
	gateway    adapter.PaymentGateway
	ids        BillIDGenerator
	descPrefix string
	log        *zerolog.Logger
}

func NewBillingUseCase(
	txs repository.TransactionRepository,
	channels repository.ChannelRepository,
	gateway adapter.PaymentGateway,
	ids BillIDGenerator,
	descPrefix string,
	logger *zerolog.Logger,
) *billingUC {
	return &billingUC{
		txs:        txs,
		channels:   channels,
		gateway:    gateway,
		ids:        ids,
		descPrefix: descPrefix,
		log:        logger,
	}
}

// maxIDRetries bounds the fresh-id retry loop on bill id collisions. With
// snowflake ids a collision means a misconfigured duplicate node id, so this
// exists to fail loudly rather than spin.
const maxIDRetries = 3

func (u *billingUC) CreateBill(ctx context.Context, channelID, machineID string, amount int64, descSuffix string) (*CreateBillResult, error) {
	defer logging.TraceDuration(u.log, "BillingUC.CreateBill")()

	if channelID == "" || machineID == "" || amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}

	cfg, err := u.channels.FindByID(ctx, nil, channelID)
	if err != nil {
		return nil, err
	}

	description := u.descPrefix + descSuffix

	var billID int64
	for attempt := 0; ; attempt++ {
		billID = u.ids.NextBillID()
		t := &model.Transaction{
			BillID:     billID,
			MachineID:  machineID,
			PayChannel: channelID,
			Status:     model.TransactionStatusPending,
			TimeCreate: time.Now().Unix(),
		}
		err = u.txs.Create(ctx, nil, t)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateBill) || attempt+1 >= maxIDRetries {
			return nil, fmt.Errorf("create transaction: %w", err)
		}
		u.log.Warn().Int64("bill_id", billID).Msg("bill id collision, regenerating")
	}

	link, err := u.gateway.CreatePaymentLink(ctx, cfg, billID, amount, description)
	if err != nil {
		// The PENDING row stays behind on purpose: the provider never saw the
		// order, and the expiry worker will cancel it later. Deleting here
		// could race a slow provider-side create that did in fact land.
		u.log.Error().Err(err).Int64("bill_id", billID).Str("channel", channelID).Msg("payment link creation failed")
		return nil, err
	}

	metrics.IncBillCreated(channelID)
	u.log.Info().Int64("bill_id", billID).Str("channel", channelID).Int64("amount", amount).Msg("bill created")

	return &CreateBillResult{
		OrderCode:  billID,
		QRCode:     link.QRCode,
		PaymentURL: link.PaymentURL,
	}, nil
}

func (u *billingUC) ListRecent(ctx context.Context, limit int) ([]*model.Transaction, error) {
	return u.txs.ListRecent(ctx, nil, limit)
}
