// File: internal/infra/adapters/payment/signer.go
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/adapter"
)

var _ adapter.WebhookVerifier = (*Signer)(nil)

// SignedFields is the fixed field set PayOS signs, for both outbound link
// creation and inbound webhook verification.
type SignedFields struct {
	OrderCode   int64
	Amount      int64
	Description string
}

// Signer computes the PayOS HMAC-SHA256 checksum over the canonical
// query-string encoding of SignedFields. The cancel/return URL slots carry a
// literal placeholder agreed with the provider, not real redirect URLs; the
// provider signs the same literal, so it must match byte for byte.
type Signer struct {
	placeholder string
}

func NewSigner(placeholderURL string) *Signer {
	return &Signer{placeholder: placeholderURL}
}

// canonical serializes fields in the provider-mandated alphabetical order.
func (s *Signer) canonical(f SignedFields) string {
	return fmt.Sprintf("amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		f.Amount, s.placeholder, f.Description, f.OrderCode, s.placeholder)
}

// Sign returns the lowercase hex HMAC-SHA256 digest of the canonical encoding.
func (s *Signer) Sign(f SignedFields, secret string) (string, error) {
	if secret == "" {
		return "", domain.ErrMissingSecret
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(s.canonical(f)))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the digest and compares in constant time.
func (s *Signer) Verify(f SignedFields, secret, candidate string) (bool, error) {
	want, err := s.Sign(f, secret)
	if err != nil {
		return false, err
	}
	return hmac.Equal([]byte(want), []byte(candidate)), nil
}

// VerifyWebhook implements adapter.WebhookVerifier.
func (s *Signer) VerifyWebhook(cfg *model.ProviderConfig, orderCode int64, amount int64, description, signature string) (bool, error) {
	return s.Verify(SignedFields{OrderCode: orderCode, Amount: amount, Description: description}, cfg.ChecksumKey, signature)
}
