//go:build !integration

package web_test

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/usecase"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockBillingUC struct {
	CreateBillFunc func(ctx context.Context, channelID, machineID string, amount int64, descSuffix string) (*usecase.CreateBillResult, error)
	ListRecentFunc func(ctx context.Context, limit int) ([]*model.Transaction, error)
}

var _ usecase.BillingUseCase = (*mockBillingUC)(nil)

func (m *mockBillingUC) CreateBill(ctx context.Context, channelID, machineID string, amount int64, descSuffix string) (*usecase.CreateBillResult, error) {
	if m.CreateBillFunc != nil {
		return m.CreateBillFunc(ctx, channelID, machineID, amount, descSuffix)
	}
	return &usecase.CreateBillResult{OrderCode: 1001, QRCode: "qr-data", PaymentURL: "https://pay.example/x"}, nil
}

func (m *mockBillingUC) ListRecent(ctx context.Context, limit int) ([]*model.Transaction, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, limit)
	}
	return []*model.Transaction{}, nil
}

type mockConfirmUC struct {
	ConfirmFunc func(ctx context.Context, p usecase.WebhookPayload) (*usecase.ConfirmResult, error)

	Got []usecase.WebhookPayload
}

var _ usecase.ConfirmUseCase = (*mockConfirmUC)(nil)

func (m *mockConfirmUC) Confirm(ctx context.Context, p usecase.WebhookPayload) (*usecase.ConfirmResult, error) {
	m.Got = append(m.Got, p)
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, p)
	}
	return &usecase.ConfirmResult{Applied: true, Status: model.TransactionStatusPaid, Dispatched: true}, nil
}
