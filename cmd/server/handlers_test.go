package main

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"token-ledger/internal/authz"
	"token-ledger/internal/domain"
	"token-ledger/internal/events"
	"token-ledger/internal/ledger"
	"token-ledger/internal/resource"
	"token-ledger/internal/storage/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	limits := resource.NewMemoryLimits()
	journal := memory.NewJournalStore()
	hub := events.NewHub(nil)
	t.Cleanup(hub.Close)

	token, err := ledger.New(ledger.Params{
		Admin:    "admin",
		Registry: ledger.NewRegistry(memory.NewStatStore()),
		Accounts: ledger.NewAccounts(memory.NewAccountStore(), memory.NewFrozenStore()),
		Gate:     authz.NewStaticGate(),
		Resource: resource.New(resource.DefaultConfig(), limits, resource.NewStaticOptOut()),
		Journal:  journal,
		Notify:   hub.Broadcast,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	server := &Server{
		token:   token,
		journal: journal,
		limits:  limits,
		hub:     hub,
		logger:  log.New(os.Stderr, "[test] ", log.LstdFlags),
	}

	ts := httptest.NewServer(server.routes())
	t.Cleanup(ts.Close)
	return ts
}

func postAction(t *testing.T, ts *httptest.Server, action, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(ts.URL+"/v1/actions/"+action, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", action, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func requireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("Expected status %d, got %d", want, resp.StatusCode)
	}
}

func TestServer_CreateIssueTransferFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := postAction(t, ts, "create", `{"caller":"alice","issuer":"alice","max_supply":"1000.000 TKN"}`)
	requireStatus(t, resp, http.StatusOK)

	resp = postAction(t, ts, "issue", `{"caller":"alice","to":"alice","quantity":"500.000 TKN","memo":"mint"}`)
	requireStatus(t, resp, http.StatusOK)

	resp = postAction(t, ts, "transfer", `{"caller":"alice","from":"alice","to":"bob","quantity":"100.000 TKN"}`)
	requireStatus(t, resp, http.StatusOK)

	resp, err := http.Get(ts.URL + "/v1/stats/TKN")
	if err != nil {
		t.Fatalf("GET stats failed: %v", err)
	}
	defer resp.Body.Close()
	requireStatus(t, resp, http.StatusOK)

	var stats statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("Decode stats failed: %v", err)
	}
	if stats.Supply != "500.000 TKN" || stats.Issuer != "alice" {
		t.Errorf("Unexpected stats: %+v", stats)
	}

	resp, err = http.Get(ts.URL + "/v1/balances/bob/TKN")
	if err != nil {
		t.Fatalf("GET balance failed: %v", err)
	}
	defer resp.Body.Close()
	requireStatus(t, resp, http.StatusOK)

	var balance balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		t.Fatalf("Decode balance failed: %v", err)
	}
	if balance.Balance != "100.000 TKN" {
		t.Errorf("Expected balance 100.000 TKN, got %s", balance.Balance)
	}
}

func TestServer_ErrorStatusMapping(t *testing.T) {
	ts := newTestServer(t)

	// Authorization failure -> 403
	resp := postAction(t, ts, "create", `{"caller":"mallory","issuer":"alice","max_supply":"100 TKN"}`)
	requireStatus(t, resp, http.StatusForbidden)

	// Validation failure -> 400
	resp = postAction(t, ts, "create", `{"caller":"alice","issuer":"alice","max_supply":"-100 TKN"}`)
	requireStatus(t, resp, http.StatusBadRequest)

	// State conflict -> 409
	resp = postAction(t, ts, "issue", `{"caller":"alice","to":"alice","quantity":"1 TKN"}`)
	requireStatus(t, resp, http.StatusConflict)

	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode error body failed: %v", err)
	}
	if body.Error != "token with symbol does not exist, create token before issue" {
		t.Errorf("Unexpected error message: %q", body.Error)
	}
	if body.Kind != "state_conflict" {
		t.Errorf("Unexpected error kind: %q", body.Kind)
	}

	// Malformed body -> 400
	resp = postAction(t, ts, "transfer", `{not json`)
	requireStatus(t, resp, http.StatusBadRequest)

	// Unknown balance -> 404
	getResp, err := http.Get(ts.URL + "/v1/balances/ghost/TKN")
	if err != nil {
		t.Fatalf("GET balance failed: %v", err)
	}
	defer getResp.Body.Close()
	requireStatus(t, getResp, http.StatusNotFound)
}

func TestServer_FreezeAndJournalEndpoints(t *testing.T) {
	ts := newTestServer(t)

	resp := postAction(t, ts, "create", `{"caller":"alice","issuer":"alice","max_supply":"1000.000 TKN"}`)
	requireStatus(t, resp, http.StatusOK)

	resp = postAction(t, ts, "freeze", `{"caller":"admin","owner":"bob"}`)
	requireStatus(t, resp, http.StatusOK)

	getResp, err := http.Get(ts.URL + "/v1/frozen")
	if err != nil {
		t.Fatalf("GET frozen failed: %v", err)
	}
	defer getResp.Body.Close()
	requireStatus(t, getResp, http.StatusOK)

	var frozen []string
	if err := json.NewDecoder(getResp.Body).Decode(&frozen); err != nil {
		t.Fatalf("Decode frozen failed: %v", err)
	}
	if len(frozen) != 1 || frozen[0] != "bob" {
		t.Errorf("Expected frozen [bob], got %v", frozen)
	}

	getResp, err = http.Get(ts.URL + "/v1/journal/symbol/TKN")
	if err != nil {
		t.Fatalf("GET journal failed: %v", err)
	}
	defer getResp.Body.Close()
	requireStatus(t, getResp, http.StatusOK)

	var entries []journalEntryResponse
	if err := json.NewDecoder(getResp.Body).Decode(&entries); err != nil {
		t.Fatalf("Decode journal failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != domain.ActionCreate {
		t.Errorf("Expected single create record, got %+v", entries)
	}
}

func TestServer_QuotaEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postAction(t, ts, "create", `{"caller":"issuer","issuer":"issuer","max_supply":"1000.00000000 RAM"}`)
	requireStatus(t, resp, http.StatusOK)

	resp = postAction(t, ts, "issue", `{"caller":"issuer","to":"alice","quantity":"2.00000000 RAM"}`)
	requireStatus(t, resp, http.StatusOK)

	getResp, err := http.Get(ts.URL + "/v1/quota/alice")
	if err != nil {
		t.Fatalf("GET quota failed: %v", err)
	}
	defer getResp.Body.Close()
	requireStatus(t, getResp, http.StatusOK)

	var quota quotaResponse
	if err := json.NewDecoder(getResp.Body).Decode(&quota); err != nil {
		t.Fatalf("Decode quota failed: %v", err)
	}
	if quota.Bytes != 2048 {
		t.Errorf("Expected 2048 quota bytes, got %d", quota.Bytes)
	}
}
