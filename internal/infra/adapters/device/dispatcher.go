// File: internal/infra/adapters/device/dispatcher.go
package device

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/domain/model"
	"vendpay-gateway/internal/domain/ports/adapter"
	"vendpay-gateway/internal/infra/metrics"
)

var _ adapter.DeviceDispatcher = (*Dispatcher)(nil)

// BackoffPolicy yields the delay to wait before the next attempt.
// attempt is 1-based and names the attempt that just failed.
type BackoffPolicy interface {
	Delay(attempt int) time.Duration
}

// FixedBackoff waits the same duration between every attempt. The device API
// is slow to recover from brown-outs; a flat 20s matches its behavior better
// than a ramp, and keeps the attempt-count contract trivial to reason about.
type FixedBackoff time.Duration

func (f FixedBackoff) Delay(int) time.Duration { return time.Duration(f) }

// Dispatcher delivers machine commands over the IoT control API with bounded
// retries. Attempts are not deduplicated: the call is at-least-once, and a
// non-idempotent device command may double-apply if the device acks slowly.
type Dispatcher struct {
	endpointBase string
	maxAttempts  int
	backoff      BackoffPolicy
	client       *http.Client
	log          *zerolog.Logger
}

func NewDispatcher(endpointBase string, maxAttempts int, backoff BackoffPolicy, logger *zerolog.Logger) *Dispatcher {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if backoff == nil {
		backoff = FixedBackoff(20 * time.Second)
	}
	dl := logger.With().Str("component", "DeviceDispatcher").Logger()
	return &Dispatcher{
		endpointBase: endpointBase,
		maxAttempts:  maxAttempts,
		backoff:      backoff,
		client:       &http.Client{Timeout: 15 * time.Second},
		log:          &dl,
	}
}

// Dispatch POSTs {"cmd": cmd} to {base}/{endpointID}?apiKey={deviceKey},
// retrying up to maxAttempts with the configured backoff between attempts
// (never after the last). Context cancellation aborts remaining attempts.
func (d *Dispatcher) Dispatch(ctx context.Context, target *model.DeviceTarget, cmd string) error {
	endpoint := fmt.Sprintf("%s/%s?apiKey=%s", d.endpointBase, url.PathEscape(target.EndpointID), url.QueryEscape(target.DeviceKey))
	body, _ := json.Marshal(map[string]string{"cmd": cmd})

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		metrics.IncDispatchAttempt()
		lastErr = d.post(ctx, endpoint, body)
		if lastErr == nil {
			metrics.IncDispatchResult("ok")
			metrics.ObserveDispatchLatency(time.Since(start).Milliseconds())
			return nil
		}
		d.log.Warn().Err(lastErr).Int("attempt", attempt).Int("max_attempts", d.maxAttempts).Msg("device call failed")

		if attempt == d.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			metrics.IncDispatchResult("exhausted")
			return fmt.Errorf("%w: %v", domain.ErrDispatchExhausted, ctx.Err())
		case <-time.After(d.backoff.Delay(attempt)):
		}
	}
	metrics.IncDispatchResult("exhausted")
	metrics.ObserveDispatchLatency(time.Since(start).Milliseconds())
	return fmt.Errorf("%w: %v", domain.ErrDispatchExhausted, lastErr)
}

func (d *Dispatcher) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("device api http %d", resp.StatusCode)
	}
	return nil
}
