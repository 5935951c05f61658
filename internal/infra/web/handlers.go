// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"vendpay-gateway/internal/domain"
	"vendpay-gateway/internal/infra/logging"
	"vendpay-gateway/internal/infra/metrics"
	"vendpay-gateway/internal/usecase"
)

// The machine firmware speaks positional c1..c4 parameters, not named fields.
// c1=channel id, c2=machine id, c3=amount, c4=optional description suffix.
type createBillRequest struct {
	C1 string `json:"c1"`
	C2 string `json:"c2"`
	C3 string `json:"c3"`
	C4 string `json:"c4"`
}

type createBillResponse struct {
	C1 int64  `json:"c1"` // order code
	C2 string `json:"c2"` // QR payload
	C3 string `json:"c3"` // checkout URL
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	default:
		// the deployed machines post form-encoded bodies
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.C1 = r.PostFormValue("c1")
		req.C2 = r.PostFormValue("c2")
		req.C3 = r.PostFormValue("c3")
		req.C4 = r.PostFormValue("c4")
	}

	amount, err := strconv.ParseInt(strings.TrimSpace(req.C3), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	res, err := s.billingUC.CreateBill(r.Context(), req.C1, req.C2, amount, req.C4)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrChannelNotFound):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.log.Error().Err(err).Msg("create bill failed")
			writeError(w, http.StatusInternalServerError, "failed to create bill")
		}
		return
	}

	writeJSON(w, http.StatusOK, createBillResponse{
		C1: res.OrderCode,
		C2: res.QRCode,
		C3: res.PaymentURL,
	})
}

func (s *Server) handleBillConfirm(w http.ResponseWriter, r *http.Request) {
	var payload usecase.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.IncWebhookResult("malformed")
		writeError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	// Confirmation runs on the app context: the provider hanging up must not
	// cancel state transitions or dispatch retries already underway.
	ctx := logging.CarryTrace(r.Context(), s.appCtx)
	res, err := s.confirmUC.Confirm(ctx, payload)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			writeError(w, http.StatusUnauthorized, "invalid signature")
		case errors.Is(err, domain.ErrDeviceNotBound):
			// PAID stood; the missing machine binding is surfaced, not rolled back.
			writeError(w, http.StatusBadRequest, "no device bound to transaction")
		case errors.Is(err, domain.ErrChannelNotFound):
			writeError(w, http.StatusBadRequest, "unknown pay channel")
		default:
			s.log.Error().Err(err).Msg("webhook confirmation failed")
			writeError(w, http.StatusInternalServerError, "confirmation failed")
		}
		return
	}

	// Applied=false is the idempotent-replay path. Dispatch failures are
	// deliberately absorbed so the provider does not redeliver.
	writeJSON(w, http.StatusOK, map[string]bool{"success": res.Applied})
}

func (s *Server) handleSuccess(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Payment successful. You can close this page.")
}

func (s *Server) handleCancel(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "Payment cancelled.")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleOpsLogin exchanges the raw ops key for a short-lived session cookie.
func (s *Server) handleOpsLogin(w http.ResponseWriter, r *http.Request) {
	if s.opsKey == "" {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	key := bearerKey(r)
	if key == "" {
		var body struct {
			Key string `json:"key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
			key = body.Key
		}
	}
	if !keyEqual(key, s.opsKey) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		http.Error(w, "Failed to mint session", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

const recentLogsLimit = 20

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	txs, err := s.billingUC.ListRecent(r.Context(), recentLogsLimit)
	if err != nil {
		s.log.Error().Err(err).Msg("list recent transactions failed")
		writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func bearerKey(r *http.Request) string {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return ""
	}
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
