//go:build !integration

package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
)

func TestSigner_SignAndVerify(t *testing.T) {
	s := NewSigner("abc")
	f := SignedFields{OrderCode: 1001, Amount: 50000, Description: "CFPAYOS42"}

	sig, err := s.Sign(f, "secret-key")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != 64 {
		t.Fatalf("want 64 hex chars, got %d (%q)", len(sig), sig)
	}

	ok, err := s.Verify(f, "secret-key", sig)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("round-trip signature did not verify")
	}
}

func TestSigner_KnownCanonicalString(t *testing.T) {
	// The provider signs the exact canonical encoding, placeholder included.
	s := NewSigner("abc")
	f := SignedFields{OrderCode: 7, Amount: 1500, Description: "CFPAYOS1"}

	mac := hmac.New(sha256.New, []byte("k"))
	mac.Write([]byte("amount=1500&cancelUrl=abc&description=CFPAYOS1&orderCode=7&returnUrl=abc"))
	want := hex.EncodeToString(mac.Sum(nil))

	got, err := s.Sign(f, "k")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if got != want {
		t.Fatalf("canonical encoding drifted: got %s want %s", got, want)
	}
}

func TestSigner_RejectsMutations(t *testing.T) {
	s := NewSigner("abc")
	f := SignedFields{OrderCode: 1001, Amount: 50000, Description: "CFPAYOS42"}
	sig, err := s.Sign(f, "secret-key")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	t.Run("flipped signature byte", func(t *testing.T) {
		bad := []byte(sig)
		if bad[0] == 'a' {
			bad[0] = 'b'
		} else {
			bad[0] = 'a'
		}
		ok, err := s.Verify(f, "secret-key", string(bad))
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("tampered signature verified")
		}
	})

	t.Run("changed amount", func(t *testing.T) {
		mutated := f
		mutated.Amount = 50001
		ok, err := s.Verify(mutated, "secret-key", sig)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("signature verified against a different amount")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		ok, err := s.Verify(f, "other-key", sig)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ok {
			t.Fatal("signature verified under a different secret")
		}
	})
}

func TestSigner_EmptySecret(t *testing.T) {
	s := NewSigner("abc")
	f := SignedFields{OrderCode: 1, Amount: 1, Description: "x"}

	if _, err := s.Sign(f, ""); !errors.Is(err, domain.ErrMissingSecret) {
		t.Fatalf("want ErrMissingSecret, got %v", err)
	}
	if _, err := s.Verify(f, "", "deadbeef"); !errors.Is(err, domain.ErrMissingSecret) {
		t.Fatalf("want ErrMissingSecret, got %v", err)
	}
}

func TestSigner_VerifyWebhook(t *testing.T) {
	s := NewSigner("abc")
	cfg := &model.ProviderConfig{ID: "ch1", ChecksumKey: "secret-key"}

	sig, err := s.Sign(SignedFields{OrderCode: 1001, Amount: 50000, Description: "CFPAYOS42"}, cfg.ChecksumKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	ok, err := s.VerifyWebhook(cfg, 1001, 50000, "CFPAYOS42", sig)
	if err != nil {
		t.Fatalf("verify webhook: %v", err)
	}
	if !ok {
		t.Fatal("webhook signature did not verify")
	}

	ok, err = s.VerifyWebhook(cfg, 1002, 50000, "CFPAYOS42", sig)
	if err != nil {
		t.Fatalf("verify webhook: %v", err)
	}
	if ok {
		t.Fatal("webhook signature verified for a different order")
	}
}
