package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrDuplicateBill      = errors.New("bill id already exists")
	ErrChannelNotFound    = errors.New("pay channel not found")
	ErrDeviceNotBound     = errors.New("no machine bound to transaction")
	ErrMissingSecret      = errors.New("channel checksum key is empty")
	ErrInvalidSignature   = errors.New("webhook signature mismatch")
	ErrUpstreamProvider   = errors.New("payment provider rejected request")
	ErrDispatchExhausted  = errors.New("device dispatch failed after all attempts")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
