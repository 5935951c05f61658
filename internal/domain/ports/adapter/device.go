package adapter

import (
	"context"

	"vendpay-gateway/internal/domain/model"
)

// DeviceDispatcher is the hex port for the downstream machine-control API.
// Implementations retry internally; a returned error means the command was
// given up on, not that it was never delivered (the call is at-least-once).
type DeviceDispatcher interface {
	Dispatch(ctx context.Context, target *model.DeviceTarget, cmd string) error
}
