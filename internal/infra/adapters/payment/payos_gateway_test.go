//go:build !integration

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
)

func providerConfig() *model.ProviderConfig {
	return &model.ProviderConfig{ID: "payos-main", APIKey: "api-k", ClientID: "cli-1", ChecksumKey: "secret"}
}

func TestPayOSGateway_CreatePaymentLink(t *testing.T) {
	signer := NewSigner("abc")
	var gotPath, gotClientID, gotAPIKey string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotClientID = r.Header.Get("x-client-id")
		gotAPIKey = r.Header.Get("x-api-key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"orderCode":   1001,
				"qrCode":      "qr-data",
				"checkoutUrl": "https://pay.example/x",
			},
		})
	}))
	defer srv.Close()

	g := NewPayOSGateway(srv.URL, 7*24*time.Hour, signer)
	link, err := g.CreatePaymentLink(context.Background(), providerConfig(), 1001, 50000, "CFPAYOS42")
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if gotPath != "/v2/payment-requests" {
		t.Fatalf("wrong path %s", gotPath)
	}
	if gotClientID != "cli-1" || gotAPIKey != "api-k" {
		t.Fatalf("credentials not forwarded: %s %s", gotClientID, gotAPIKey)
	}
	if link.OrderCode != 1001 || link.QRCode != "qr-data" || link.PaymentURL != "https://pay.example/x" {
		t.Fatalf("unexpected link: %+v", link)
	}

	if gotBody["returnUrl"] != "abc" || gotBody["cancelUrl"] != "abc" {
		t.Fatalf("placeholder URLs not sent: %+v", gotBody)
	}
	wantSig, _ := signer.Sign(SignedFields{OrderCode: 1001, Amount: 50000, Description: "CFPAYOS42"}, "secret")
	if gotBody["signature"] != wantSig {
		t.Fatalf("body signature mismatch: got %v want %s", gotBody["signature"], wantSig)
	}
	exp, ok := gotBody["expiredAt"].(float64)
	if !ok || int64(exp) <= time.Now().Unix() {
		t.Fatalf("expiredAt not in the future: %v", gotBody["expiredAt"])
	}
}

func TestPayOSGateway_UpstreamErrors(t *testing.T) {
	t.Run("http error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		g := NewPayOSGateway(srv.URL, time.Hour, NewSigner("abc"))
		_, err := g.CreatePaymentLink(context.Background(), providerConfig(), 1, 1, "x")
		if !errors.Is(err, domain.ErrUpstreamProvider) {
			t.Fatalf("want ErrUpstreamProvider, got %v", err)
		}
	})

	t.Run("empty checkout url", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{}})
		}))
		defer srv.Close()

		g := NewPayOSGateway(srv.URL, time.Hour, NewSigner("abc"))
		_, err := g.CreatePaymentLink(context.Background(), providerConfig(), 1, 1, "x")
		if !errors.Is(err, domain.ErrUpstreamProvider) {
			t.Fatalf("want ErrUpstreamProvider, got %v", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		g := NewPayOSGateway("http://unused", time.Hour, NewSigner("abc"))
		cfg := providerConfig()
		cfg.ChecksumKey = ""
		_, err := g.CreatePaymentLink(context.Background(), cfg, 1, 1, "x")
		if !errors.Is(err, domain.ErrMissingSecret) {
			t.Fatalf("want ErrMissingSecret, got %v", err)
		}
	})
}
