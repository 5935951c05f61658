package repository

import (
	"context"

	"vendpay-gateway/internal/domain/model"
)

// -----------------------------
// Pay channels
// -----------------------------

type ChannelRepository interface {
	// FindByID loads the provider credentials for a channel. Returns
	// domain.ErrChannelNotFound for unknown ids.
	FindByID(ctx context.Context, qx Tx, id string) (*model.ProviderConfig, error)
}
