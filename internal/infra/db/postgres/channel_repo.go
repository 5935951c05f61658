package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/repository"
)

var _ repository.ChannelRepository = (*channelRepo)(nil)

type channelRepo struct{ pool *pgxpool.Pool }

func NewChannelRepo(pool *pgxpool.Pool) *channelRepo {
	return &channelRepo{pool: pool}
}

func (r *channelRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.ProviderConfig, error) {
	const q = `SELECT id, api_key, client_id, checksum_key FROM pay_channels WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}

	c := &model.ProviderConfig{}
	if err := row.Scan(&c.ID, &c.APIKey, &c.ClientID, &c.ChecksumKey); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrChannelNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return c, nil
}
