package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const uniqueViolation = "23505"

func (r *transactionRepo) Create(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (bill_id, machine_id, pay_channel, status, time_create)
VALUES ($1,$2,$3,$4,$5);`

	_, err := execSQL(ctx, r.pool, tx, q, t.BillID, t.MachineID, t.PayChannel, string(t.Status), t.TimeCreate)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateBill
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *transactionRepo) FindByBillID(ctx context.Context, tx repository.Tx, billID int64) (*model.Transaction, error) {
	const q = `SELECT bill_id, machine_id, pay_channel, status, time_create, COALESCE(time_pay, 0) FROM transactions WHERE bill_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, billID)
	if err != nil {
		return nil, err
	}

	t := &model.Transaction{}
	var status string
	if err := row.Scan(&t.BillID, &t.MachineID, &t.PayChannel, &status, &t.TimeCreate, &t.TimePay); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	t.Status = model.TransactionStatus(status)
	return t, nil
}

// TransitionIfPending atomically moves a transaction to a terminal status only
// when it is still PENDING. The WHERE clause is the whole synchronization
// story: of N concurrent webhook deliveries exactly one sees RowsAffected==1.
func (r *transactionRepo) TransitionIfPending(
	ctx context.Context, tx repository.Tx, billID int64, status model.TransactionStatus, timePay int64,
) (bool, error) {
	const q = `
    UPDATE transactions
       SET status = $2,
           time_pay = $3
     WHERE bill_id = $1
       AND status = 'PENDING';`

	cmd, err := execSQL(ctx, r.pool, tx, q, billID, string(status), timePay)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *transactionRepo) FindDeviceTarget(ctx context.Context, tx repository.Tx, billID int64) (*model.DeviceTarget, error) {
	const q = `
SELECT m.io_id, m.io_key, m.pre_cmd
  FROM transactions t
  JOIN machines m ON t.machine_id = m.id
 WHERE t.bill_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, billID)
	if err != nil {
		return nil, err
	}

	d := &model.DeviceTarget{}
	if err := row.Scan(&d.EndpointID, &d.DeviceKey, &d.CommandPrefix); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeviceNotBound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return d, nil
}

func (r *transactionRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `SELECT bill_id, machine_id, pay_channel, status, time_create, COALESCE(time_pay, 0) FROM transactions ORDER BY time_create DESC LIMIT $1;`
	rows, err := queryRows(ctx, r.pool, tx, q, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (r *transactionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, cutoffEpoch int64, limit int) ([]*model.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT bill_id, machine_id, pay_channel, status, time_create, COALESCE(time_pay, 0) FROM transactions WHERE status='PENDING' AND time_create < $1 ORDER BY time_create ASC LIMIT $2;`
	rows, err := queryRows(ctx, r.pool, tx, q, cutoffEpoch, limit)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return nil, err
		}
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for rows.Next() {
		t := new(model.Transaction)
		var status string
		if err := rows.Scan(&t.BillID, &t.MachineID, &t.PayChannel, &status, &t.TimeCreate, &t.TimePay); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		t.Status = model.TransactionStatus(status)
		out = append(out, t)
	}
	return out, nil
}
