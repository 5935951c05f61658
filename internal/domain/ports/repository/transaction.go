package repository

import (
	"context"

	"vendpay-gateway/internal/domain/model"
)

// -----------------------------
// Transactions
// -----------------------------

type TransactionRepository interface {
	// Create inserts a new PENDING transaction. Returns domain.ErrDuplicateBill
	// when the bill id is already taken.
	Create(ctx context.Context, qx Tx, t *model.Transaction) error
	FindByBillID(ctx context.Context, qx Tx, billID int64) (*model.Transaction, error)
	// TransitionIfPending atomically moves the transaction to a terminal status
	// and sets time_pay, only if the current status is PENDING. It reports
	// whether the row was changed. Implementations MUST execute this as a single
	// conditional statement so concurrent webhook deliveries race safely.
	TransitionIfPending(ctx context.Context, qx Tx, billID int64, status model.TransactionStatus, timePay int64) (bool, error)
	// FindDeviceTarget resolves the machine bound to a transaction.
	FindDeviceTarget(ctx context.Context, qx Tx, billID int64) (*model.DeviceTarget, error)
	ListRecent(ctx context.Context, qx Tx, limit int) ([]*model.Transaction, error)
	// ListPendingOlderThan feeds the expiry worker.
	ListPendingOlderThan(ctx context.Context, qx Tx, cutoffEpoch int64, limit int) ([]*model.Transaction, error)
}
