package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tonpocket/internal/domain"
	"tonpocket/internal/services/operation"
	"tonpocket/internal/wallet"
)

func newTestServer(t *testing.T) *Server {
	return newTestServerWithLatency(t, time.Millisecond)
}

func newTestServerWithLatency(t *testing.T, latency time.Duration) *Server {
	w, err := wallet.New(wallet.Config{
		Nickname: "test",
		SeedAssets: []domain.Asset{
			{ID: "tether", Symbol: "USDT", Name: "Tether", Balance: decimal.Zero, PriceUsd: decimal.NewFromInt(1), Change24h: decimal.NewFromFloat(0.01)},
			{ID: "toncoin", Symbol: "TON", Name: "Toncoin", Balance: decimal.Zero, PriceUsd: decimal.NewFromFloat(5.42), Change24h: decimal.NewFromFloat(-1.24)},
		},
		StableAssetID:   "tether",
		DisplayRate:     decimal.NewFromFloat(92.5),
		Latencies:       operation.Latencies{Deposit: latency, Withdraw: latency, Swap: latency},
		NotificationTTL: time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return NewServer(":0", w, zap.NewNop())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHandleDeposit(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleDeposit, "/api/deposit", depositRequest{Amount: "100", Method: "sbp"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp receiptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "deposit", resp.Kind)
	assert.Equal(t, "100", resp.Amount)
	assert.NotEmpty(t, resp.ID)
}

func TestHandleDeposit_ClientDisconnectDoesNotAbortCommit(t *testing.T) {
	s := newTestServerWithLatency(t, 200*time.Millisecond)

	payload, err := json.Marshal(depositRequest{Amount: "100", Method: "sbp"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/deposit", bytes.NewReader(payload)).WithContext(ctx)
	rec := httptest.NewRecorder()

	// drop the client mid-latency; the validated operation must still commit
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	s.handleDeposit(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := s.Wallet.Summary()
	assert.True(t, summary.TotalUsd.Equal(decimal.NewFromInt(100)), "total usd %s", summary.TotalUsd)
}

func TestHandleDeposit_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleDeposit, "/api/deposit", depositRequest{Amount: "abc", Method: "sbp"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = postJSON(t, s.handleDeposit, "/api/deposit", depositRequest{Amount: "100", Method: "paypal"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleWithdraw_InsufficientBalance(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleWithdraw, "/api/withdraw",
		withdrawRequest{AssetID: "tether", Amount: "10", Address: "someaddressvalue"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "insufficient")
}

func TestHandleSwap(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleDeposit, "/api/deposit", depositRequest{Amount: "100", Method: "sbp"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, s.handleSwap, "/api/swap", swapRequest{FromID: "tether", ToID: "toncoin", Amount: "50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp receiptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "swap", resp.Kind)
	assert.NotEmpty(t, resp.Received)
}

func TestHandleSwap_SamePair(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s.handleSwap, "/api/swap", swapRequest{FromID: "tether", ToID: "tether", Amount: "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleToggleHidden(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/hidden/toggle", nil)
	rec := httptest.NewRecorder()
	s.handleToggleHidden(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp["hidden"])
}

func TestHandleMethods(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/methods", nil)
	rec := httptest.NewRecorder()
	s.handleMethods(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var methods []map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &methods))
	assert.Len(t, methods, 4)
}

func TestRejectsNonPost(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/deposit", nil)
	rec := httptest.NewRecorder()
	s.handleDeposit(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleIndex(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleIndex(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tonpocket")
}
