// File: internal/infra/adapters/payment/payos_gateway.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*PayOSGateway)(nil)

// PayOSGateway implements adapter.PaymentGateway against the PayOS
// merchant REST API (v2 payment-requests).
type PayOSGateway struct {
	apiBase string
	linkTTL time.Duration
	signer  *Signer
	client  *http.Client
}

func NewPayOSGateway(apiBase string, linkTTL time.Duration, signer *Signer) *PayOSGateway {
	return &PayOSGateway{
		apiBase: apiBase,
		linkTTL: linkTTL,
		signer:  signer,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *PayOSGateway) Name() string { return "payos" }

// CreatePaymentLink calls POST /v2/payment-requests with channel credentials
// in headers and the checksum in the body, and returns the hosted checkout
// artifacts.
func (g *PayOSGateway) CreatePaymentLink(ctx context.Context, cfg *model.ProviderConfig, orderCode int64, amount int64, description string) (*adapter.PaymentLink, error) {
	signature, err := g.signer.Sign(SignedFields{OrderCode: orderCode, Amount: amount, Description: description}, cfg.ChecksumKey)
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"orderCode":   orderCode,
		"amount":      amount,
		"description": description,
		"returnUrl":   g.signer.placeholder,
		"cancelUrl":   g.signer.placeholder,
		"expiredAt":   time.Now().Add(g.linkTTL).Unix(),
		"signature":   signature,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiBase+"/v2/payment-requests", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-client-id", cfg.ClientID)
	req.Header.Set("x-api-key", cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d", domain.ErrUpstreamProvider, resp.StatusCode)
	}

	var out struct {
		Data struct {
			OrderCode   int64  `json:"orderCode"`
			QRCode      string `json:"qrCode"`
			CheckoutURL string `json:"checkoutUrl"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrUpstreamProvider, err)
	}
	if out.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: empty checkout url", domain.ErrUpstreamProvider)
	}
	return &adapter.PaymentLink{
		OrderCode:  out.Data.OrderCode,
		QRCode:     out.Data.QRCode,
		PaymentURL: out.Data.CheckoutURL,
	}, nil
}
