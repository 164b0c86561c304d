package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"token-ledger/internal/domain"
	"token-ledger/internal/ledger"
	"token-ledger/internal/storage"
)

// routes builds the HTTP mux: mutating actions under /v1/actions/, read
// queries under /v1/, plus health, status, metrics and the event stream.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/actions/create", s.handleCreate)
	mux.HandleFunc("POST /v1/actions/issue", s.handleIssue)
	mux.HandleFunc("POST /v1/actions/retire", s.handleRetire)
	mux.HandleFunc("POST /v1/actions/transfer", s.handleTransfer)
	mux.HandleFunc("POST /v1/actions/open", s.handleOpen)
	mux.HandleFunc("POST /v1/actions/close", s.handleClose)
	mux.HandleFunc("POST /v1/actions/freeze", s.handleFreeze)
	mux.HandleFunc("POST /v1/actions/unfreeze", s.handleUnfreeze)
	mux.HandleFunc("POST /v1/actions/pause", s.handlePause)
	mux.HandleFunc("POST /v1/actions/unpause", s.handleUnpause)

	mux.HandleFunc("GET /v1/stats/{symbol}", s.handleStats)
	mux.HandleFunc("GET /v1/balances/{owner}", s.handleBalances)
	mux.HandleFunc("GET /v1/balances/{owner}/{symbol}", s.handleBalance)
	mux.HandleFunc("GET /v1/frozen", s.handleFrozen)
	mux.HandleFunc("GET /v1/quota/{account}", s.handleQuota)
	mux.HandleFunc("GET /v1/journal/symbol/{symbol}", s.handleJournalBySymbol)
	mux.HandleFunc("GET /v1/journal/account/{account}", s.handleJournalByAccount)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.Handle("GET /ws", s.hub)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError maps ledger error kinds to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var lerr *ledger.Error
	if errors.As(err, &lerr) {
		status := http.StatusBadRequest
		switch lerr.Kind {
		case ledger.KindAuthorization:
			status = http.StatusForbidden
		case ledger.KindStateConflict:
			status = http.StatusConflict
		}
		writeJSON(w, status, errorResponse{Error: lerr.Reason, Kind: lerr.Kind.String()})
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	s.logger.Printf("internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

// parseQuantity parses an asset string like "1.000 TKN" from a request.
func parseQuantity(w http.ResponseWriter, str string) (domain.Asset, bool) {
	quantity, err := domain.ParseAsset(str)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: ledger.KindValidation.String()})
		return domain.Asset{}, false
	}
	return quantity, true
}

func parseSymbolField(w http.ResponseWriter, str string) (domain.Symbol, bool) {
	symbol, err := domain.ParseSymbol(str)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: ledger.KindValidation.String()})
		return domain.Symbol{}, false
	}
	return symbol, true
}

type appliedResponse struct {
	Applied bool `json:"applied"`
}

func (s *Server) writeApplied(w http.ResponseWriter, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appliedResponse{Applied: true})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller    string `json:"caller"`
		Issuer    string `json:"issuer"`
		MaxSupply string `json:"max_supply"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	maxSupply, ok := parseQuantity(w, req.MaxSupply)
	if !ok {
		return
	}

	err := s.token.Create(r.Context(), domain.AccountName(req.Caller), domain.AccountName(req.Issuer), maxSupply)
	s.writeApplied(w, err)
}

func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller   string `json:"caller"`
		To       string `json:"to"`
		Quantity string `json:"quantity"`
		Memo     string `json:"memo"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	quantity, ok := parseQuantity(w, req.Quantity)
	if !ok {
		return
	}

	err := s.token.Issue(r.Context(), domain.AccountName(req.Caller), domain.AccountName(req.To), quantity, req.Memo)
	s.writeApplied(w, err)
}

func (s *Server) handleRetire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller   string `json:"caller"`
		Quantity string `json:"quantity"`
		Memo     string `json:"memo"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	quantity, ok := parseQuantity(w, req.Quantity)
	if !ok {
		return
	}

	err := s.token.Retire(r.Context(), domain.AccountName(req.Caller), quantity, req.Memo)
	s.writeApplied(w, err)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller   string `json:"caller"`
		From     string `json:"from"`
		To       string `json:"to"`
		Quantity string `json:"quantity"`
		Memo     string `json:"memo"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	quantity, ok := parseQuantity(w, req.Quantity)
	if !ok {
		return
	}

	err := s.token.Transfer(r.Context(), domain.AccountName(req.Caller),
		domain.AccountName(req.From), domain.AccountName(req.To), quantity, req.Memo)
	s.writeApplied(w, err)
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Owner  string `json:"owner"`
		Symbol string `json:"symbol"`
		Payer  string `json:"payer"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	symbol, ok := parseSymbolField(w, req.Symbol)
	if !ok {
		return
	}

	err := s.token.Open(r.Context(), domain.AccountName(req.Caller),
		domain.AccountName(req.Owner), symbol, domain.AccountName(req.Payer))
	s.writeApplied(w, err)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Owner  string `json:"owner"`
		Symbol string `json:"symbol"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	symbol, ok := parseSymbolField(w, req.Symbol)
	if !ok {
		return
	}

	err := s.token.Close(r.Context(), domain.AccountName(req.Caller), domain.AccountName(req.Owner), symbol)
	s.writeApplied(w, err)
}

func (s *Server) handleFreeze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Owner  string `json:"owner"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.token.Freeze(r.Context(), domain.AccountName(req.Caller), domain.AccountName(req.Owner))
	s.writeApplied(w, err)
}

func (s *Server) handleUnfreeze(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller string `json:"caller"`
		Owner  string `json:"owner"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.token.Unfreeze(r.Context(), domain.AccountName(req.Caller), domain.AccountName(req.Owner))
	s.writeApplied(w, err)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller     string `json:"caller"`
		SymbolCode string `json:"symbol_code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.token.Pause(r.Context(), domain.AccountName(req.Caller), req.SymbolCode)
	s.writeApplied(w, err)
}

func (s *Server) handleUnpause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Caller     string `json:"caller"`
		SymbolCode string `json:"symbol_code"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.token.Unpause(r.Context(), domain.AccountName(req.Caller), req.SymbolCode)
	s.writeApplied(w, err)
}

type statsResponse struct {
	Supply    string `json:"supply"`
	MaxSupply string `json:"max_supply"`
	Issuer    string `json:"issuer"`
	Paused    bool   `json:"paused"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.token.Stats(r.Context(), r.PathValue("symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Supply:    stats.Supply.String(),
		MaxSupply: stats.MaxSupply.String(),
		Issuer:    string(stats.Issuer),
		Paused:    stats.Paused,
	})
}

type balanceResponse struct {
	Owner   string `json:"owner"`
	Balance string `json:"balance"`
	Payer   string `json:"payer"`
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	account, err := s.token.Balance(r.Context(), domain.AccountName(r.PathValue("owner")), r.PathValue("symbol"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		Owner:   string(account.Owner),
		Balance: account.Balance.String(),
		Payer:   string(account.Payer),
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.token.Balances(r.Context(), domain.AccountName(r.PathValue("owner")))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]balanceResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, balanceResponse{
			Owner:   string(account.Owner),
			Balance: account.Balance.String(),
			Payer:   string(account.Payer),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFrozen(w http.ResponseWriter, r *http.Request) {
	frozen, err := s.token.FrozenAccounts(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]string, 0, len(frozen))
	for _, owner := range frozen {
		resp = append(resp, string(owner))
	}
	writeJSON(w, http.StatusOK, resp)
}

type quotaResponse struct {
	Bytes int64 `json:"bytes"`
	Net   int64 `json:"net"`
	CPU   int64 `json:"cpu"`
}

func (s *Server) handleQuota(w http.ResponseWriter, r *http.Request) {
	quota, err := s.limits.GetQuota(r.Context(), domain.AccountName(r.PathValue("account")))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quotaResponse{Bytes: quota.Bytes, Net: quota.Net, CPU: quota.CPU})
}

type journalEntryResponse struct {
	ID         string `json:"id"`
	Seq        uint64 `json:"seq"`
	Action     string `json:"action"`
	SymbolCode string `json:"symbol_code,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Quantity   int64  `json:"quantity"`
	Precision  uint8  `json:"precision"`
	Memo       string `json:"memo,omitempty"`
	AppliedAt  int64  `json:"applied_at"`
}

func (s *Server) writeJournal(w http.ResponseWriter, records []*domain.ActionRecord, err error) {
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]journalEntryResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, journalEntryResponse{
			ID:         r.ID,
			Seq:        r.Seq,
			Action:     r.Action,
			SymbolCode: r.SymbolCode,
			From:       string(r.From),
			To:         string(r.To),
			Quantity:   r.Quantity,
			Precision:  r.Precision,
			Memo:       r.Memo,
			AppliedAt:  r.AppliedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleJournalBySymbol(w http.ResponseWriter, r *http.Request) {
	records, err := s.journal.GetBySymbol(r.Context(), r.PathValue("symbol"))
	s.writeJournal(w, records, err)
}

func (s *Server) handleJournalByAccount(w http.ResponseWriter, r *http.Request) {
	records, err := s.journal.GetByAccount(r.Context(), domain.AccountName(r.PathValue("account")))
	s.writeJournal(w, records, err)
}
