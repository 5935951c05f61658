//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/adapter"
	"vendpay-gateway/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

// =============================
// Repositories
// =============================

// MockTransactionRepo is an in-memory TransactionRepository. Behavior can be
// overridden per-test through the XxxFunc fields.
type MockTransactionRepo struct {
	mu      sync.Mutex
	byID    map[int64]*model.Transaction
	devices map[int64]*model.DeviceTarget

	CreateFunc              func(ctx context.Context, tx repository.Tx, t *model.Transaction) error
	FindByBillIDFunc        func(ctx context.Context, tx repository.Tx, billID int64) (*model.Transaction, error)
	TransitionIfPendingFunc func(ctx context.Context, tx repository.Tx, billID int64, status model.TransactionStatus, timePay int64) (bool, error)
	FindDeviceTargetFunc    func(ctx context.Context, tx repository.Tx, billID int64) (*model.DeviceTarget, error)

	Calls struct {
		Create     int
		Transition int
		Device     int
	}
}

var _ repository.TransactionRepository = (*MockTransactionRepo)(nil)

func newMockTransactionRepo() *MockTransactionRepo {
	return &MockTransactionRepo{
		byID:    map[int64]*model.Transaction{},
		devices: map[int64]*model.DeviceTarget{},
	}
}

func (m *MockTransactionRepo) bindDevice(billID int64, target *model.DeviceTarget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[billID] = target
}

func (m *MockTransactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	m.mu.Lock()
	m.Calls.Create++
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byID[t.BillID]; exists {
		return domain.ErrDuplicateBill
	}
	cp := *t
	m.byID[t.BillID] = &cp
	return nil
}

func (m *MockTransactionRepo) FindByBillID(ctx context.Context, tx repository.Tx, billID int64) (*model.Transaction, error) {
	if m.FindByBillIDFunc != nil {
		return m.FindByBillIDFunc(ctx, tx, billID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[billID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTransactionRepo) TransitionIfPending(ctx context.Context, tx repository.Tx, billID int64, status model.TransactionStatus, timePay int64) (bool, error) {
	m.mu.Lock()
	m.Calls.Transition++
	m.mu.Unlock()
	if m.TransitionIfPendingFunc != nil {
		return m.TransitionIfPendingFunc(ctx, tx, billID, status, timePay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[billID]
	if !ok || t.Status != model.TransactionStatusPending {
		return false, nil
	}
	t.Status = status
	t.TimePay = timePay
	return true, nil
}

func (m *MockTransactionRepo) FindDeviceTarget(ctx context.Context, tx repository.Tx, billID int64) (*model.DeviceTarget, error) {
	m.mu.Lock()
	m.Calls.Device++
	m.mu.Unlock()
	if m.FindDeviceTargetFunc != nil {
		return m.FindDeviceTargetFunc(ctx, tx, billID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[billID]
	if !ok {
		return nil, domain.ErrDeviceNotBound
	}
	cp := *d
	return &cp, nil
}

func (m *MockTransactionRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Transaction, 0, len(m.byID))
	for _, t := range m.byID {
		cp := *t
		out = append(out, &cp)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockTransactionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, cutoffEpoch int64, limit int) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Transaction{}
	for _, t := range m.byID {
		if t.Status == model.TransactionStatusPending && t.TimeCreate < cutoffEpoch {
			cp := *t
			out = append(out, &cp)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---- Mock ChannelRepository ----

type MockChannelRepo struct {
	byID map[string]*model.ProviderConfig

	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.ProviderConfig, error)
}

var _ repository.ChannelRepository = (*MockChannelRepo)(nil)

func newMockChannelRepo(cfgs ...*model.ProviderConfig) *MockChannelRepo {
	m := &MockChannelRepo{byID: map[string]*model.ProviderConfig{}}
	for _, c := range cfgs {
		m.byID[c.ID] = c
	}
	return m
}

func (m *MockChannelRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ProviderConfig, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tx, id)
	}
	c, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrChannelNotFound
	}
	cp := *c
	return &cp, nil
}

// ---- Mock TransactionManager ----

type noTx struct{}

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, noTx{})
}

// =============================
// Adapters
// =============================

// ---- Mock PaymentGateway ----

type MockGateway struct {
	CreatePaymentLinkFunc func(ctx context.Context, cfg *model.ProviderConfig, orderCode int64, amount int64, description string) (*adapter.PaymentLink, error)

	Calls int
}

var _ adapter.PaymentGateway = (*MockGateway)(nil)

func (m *MockGateway) Name() string { return "mock" }

func (m *MockGateway) CreatePaymentLink(ctx context.Context, cfg *model.ProviderConfig, orderCode int64, amount int64, description string) (*adapter.PaymentLink, error) {
	m.Calls++
	if m.CreatePaymentLinkFunc != nil {
		return m.CreatePaymentLinkFunc(ctx, cfg, orderCode, amount, description)
	}
	return &adapter.PaymentLink{
		OrderCode:  orderCode,
		QRCode:     "qr-data",
		PaymentURL: "https://pay.example/checkout",
	}, nil
}

// ---- Mock WebhookVerifier ----

type MockVerifier struct {
	VerifyWebhookFunc func(cfg *model.ProviderConfig, orderCode int64, amount int64, description, signature string) (bool, error)
}

var _ adapter.WebhookVerifier = (*MockVerifier)(nil)

func (m *MockVerifier) VerifyWebhook(cfg *model.ProviderConfig, orderCode int64, amount int64, description, signature string) (bool, error) {
	if m.VerifyWebhookFunc != nil {
		return m.VerifyWebhookFunc(cfg, orderCode, amount, description, signature)
	}
	return true, nil
}

// ---- Mock DeviceDispatcher ----

type MockDispatcher struct {
	mu       sync.Mutex
	Commands []string
	Targets  []*model.DeviceTarget

	DispatchFunc func(ctx context.Context, target *model.DeviceTarget, cmd string) error
}

var _ adapter.DeviceDispatcher = (*MockDispatcher)(nil)

func (m *MockDispatcher) Dispatch(ctx context.Context, target *model.DeviceTarget, cmd string) error {
	m.mu.Lock()
	m.Commands = append(m.Commands, cmd)
	m.Targets = append(m.Targets, target)
	m.mu.Unlock()
	if m.DispatchFunc != nil {
		return m.DispatchFunc(ctx, target, cmd)
	}
	return nil
}

// ---- Fixed ID generator ----

type seqIDGen struct {
	mu   sync.Mutex
	next int64
}

func (g *seqIDGen) NextBillID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return g.next
}
