package adapter

import (
	"context"

	"vendpay-gateway/internal/domain/model"
)

// PaymentLink is the minimal provider-agnostic result of creating a hosted
// payment page for an order.
type PaymentLink struct {
	OrderCode  int64  // echoed provider-side order identifier
	QRCode     string // raw QR payload for on-machine display
	PaymentURL string // hosted checkout URL
}

// PaymentGateway is the hex port for payment-link providers.
type PaymentGateway interface {
	Name() string

	// CreatePaymentLink registers the order with the provider using the channel
	// credentials and returns the hosted checkout artifacts.
	CreatePaymentLink(ctx context.Context, cfg *model.ProviderConfig, orderCode int64, amount int64, description string) (*PaymentLink, error)
}

// WebhookVerifier authenticates an inbound confirmation webhook against the
// channel's signing secret. Pure; no side effects.
type WebhookVerifier interface {
	VerifyWebhook(cfg *model.ProviderConfig, orderCode int64, amount int64, description, signature string) (bool, error)
}
