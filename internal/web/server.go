// Package web exposes the wallet over HTTP: an embedded single-page UI, SSE
// streams for wallet snapshots and notifications, and JSON endpoints driving
// the operation pipeline.
package web

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"tonpocket/internal/domain"
	"tonpocket/internal/events"
	"tonpocket/internal/wallet"
)

const snapshotPollInterval = 1 * time.Second

// Server exposes HTTP endpoints serving the HTML UI, SSE streams and the
// operation API.
type Server struct {
	Addr   string
	Wallet *wallet.Wallet
	Logger *zap.Logger
}

// NewServer creates a new web server instance.
func NewServer(addr string, w *wallet.Wallet, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{Addr: addr, Wallet: w, Logger: logger}
}

func (s *Server) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/wallet/stream", s.handleWalletStream)
	mux.HandleFunc("/notifications/stream", s.handleNotificationStream)
	mux.HandleFunc("/api/deposit", s.handleDeposit)
	mux.HandleFunc("/api/withdraw", s.handleWithdraw)
	mux.HandleFunc("/api/swap", s.handleSwap)
	mux.HandleFunc("/api/hidden/toggle", s.handleToggleHidden)
	mux.HandleFunc("/api/methods", s.handleMethods)
	return mux
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is
// cancelled.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	server := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartWithAutoTLS runs an HTTPS server with automatic TLS certificates via
// ACME, plus an HTTP server on port 80 for HTTP-01 challenges.
func (s *Server) StartWithAutoTLS(ctx context.Context, domains []string, cacheDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(domains) == 0 {
		return fmt.Errorf("no domains provided for automatic TLS")
	}
	if cacheDir == "" {
		cacheDir = "cert-cache"
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
		Cache:      autocert.DirCache(cacheDir),
	}

	httpSrv := &http.Server{
		Addr:              ":80",
		Handler:           manager.HTTPHandler(nil),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	httpsSrv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.mux(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig:         tlsConfig,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server shutdown", zap.Error(err))
		}
		if err := httpsSrv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("https server shutdown", zap.Error(err))
		}
	}()

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Warn("http (acme) server", zap.Error(err))
		}
	}()

	if err := httpsSrv.ListenAndServeTLS("", ""); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, indexHTML)
}

func sseHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

func (s *Server) handleWalletStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sseHeaders(w)

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	pollTicker := time.NewTicker(snapshotPollInterval)
	defer pollTicker.Stop()

	lastIndex := parseLastEventID(r.Header.Get("Last-Event-ID"), r.URL.Query().Get("last_event_id"))
	sendSnapshots := func() error {
		records := s.Wallet.Journal().SnapshotsAfter(lastIndex)
		for _, record := range records {
			payload, err := json.Marshal(record.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "id: %d\n", record.Index)
			fmt.Fprintf(w, "event: wallet\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			lastIndex = record.Index
		}
		return nil
	}

	if err := sendSnapshots(); err != nil {
		s.Logger.Warn("wallet stream initial load", zap.Error(err))
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case <-pollTicker.C:
			if err := sendSnapshots(); err != nil {
				s.Logger.Warn("wallet stream poll", zap.Error(err))
			}
		}
	}
}

func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	sseHeaders(w)

	broadcaster := s.Wallet.Notifications()
	ch := broadcaster.Subscribe()
	defer broadcaster.Unsubscribe(ch)

	// replay the active notification so late joiners see it
	if current, ok := s.Wallet.Notification(); ok && current.Visible {
		if payload, err := json.Marshal(events.NotificationEvent{
			Message:   current.Message,
			Visible:   true,
			Timestamp: current.CreatedAt,
		}); err == nil {
			fmt.Fprintf(w, "event: notification\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}

	heartbeat := time.NewTicker(20 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			flusher.Flush()
		case e, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(e)
			if err != nil {
				s.Logger.Warn("encode notification event", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "event: notification\n")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

type depositRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
}

type withdrawRequest struct {
	AssetID string `json:"asset_id"`
	Amount  string `json:"amount"`
	Address string `json:"address"`
}

type swapRequest struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
	Amount string `json:"amount"`
}

type receiptResponse struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Amount   string `json:"amount"`
	Received string `json:"received,omitempty"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req depositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	// a validated operation must commit even if the client drops mid-latency;
	// only process teardown cancels the pipeline
	receipt, err := s.Wallet.Deposit(context.WithoutCancel(r.Context()), req.Amount, req.Method)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}
	writeReceipt(w, receipt)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	receipt, err := s.Wallet.Withdraw(context.WithoutCancel(r.Context()), req.AssetID, req.Amount, req.Address)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}
	writeReceipt(w, receipt)
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	receipt, err := s.Wallet.Swap(context.WithoutCancel(r.Context()), req.FromID, req.ToID, req.Amount)
	if err != nil {
		s.writeOperationError(w, err)
		return
	}
	writeReceipt(w, receipt)
}

func (s *Server) handleToggleHidden(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	hidden := s.Wallet.ToggleHidden()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"hidden": hidden})
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	type methodView struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	methods := s.Wallet.PaymentMethods()
	out := make([]methodView, 0, len(methods))
	for _, m := range methods {
		out = append(out, methodView{ID: m.ID, Name: m.Name})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func writeReceipt(w http.ResponseWriter, receipt domain.Receipt) {
	resp := receiptResponse{
		ID:     receipt.ID,
		Kind:   receipt.Kind.String(),
		Amount: receipt.Amount.String(),
	}
	if receipt.Kind == domain.OperationSwap {
		resp.Received = receipt.Received.String()
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// writeOperationError maps the validation taxonomy onto HTTP statuses.
// Validation errors never escape the operation surface as 5xx: the worst
// case is a rejected request the client can retry.
func (s *Server) writeOperationError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrBusy):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidAssetPair),
		errors.Is(err, domain.ErrMissingAddress),
		errors.Is(err, domain.ErrUnknownAsset),
		errors.Is(err, domain.ErrUnknownMethod):
		status = http.StatusUnprocessableEntity
	default:
		s.Logger.Error("operation failed", zap.Error(err))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func parseLastEventID(header, query string) uint64 {
	for _, v := range []string{header, query} {
		if v == "" {
			continue
		}
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			return id
		}
	}
	return 0
}
