// Package main provides the ledger service: the token action API, queries,
// the applied-action WebSocket stream and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"token-ledger/internal/authz"
	"token-ledger/internal/domain"
	"token-ledger/internal/events"
	"token-ledger/internal/ledger"
	"token-ledger/internal/observability"
	"token-ledger/internal/resource"
	"token-ledger/internal/storage"
	chstore "token-ledger/internal/storage/clickhouse"
	"token-ledger/internal/storage/memory"
	"token-ledger/internal/storage/migrations"
	pgstore "token-ledger/internal/storage/postgres"
)

// Server holds the wired ledger and its HTTP surface.
type Server struct {
	token   *ledger.Token
	journal storage.JournalStore
	limits  resource.LimitLedger
	hub     *events.Hub
	metrics *observability.Metrics
	logger  *log.Logger
}

// allStores holds all storage implementations.
type allStores struct {
	statStore    storage.StatStore
	accountStore storage.AccountStore
	frozenStore  storage.FrozenStore
	journalStore storage.JournalStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	admin := flag.String("admin", envOr("LEDGER_ADMIN", "admin"), "Deployment admin account (freeze/unfreeze authority)")
	keysFile := flag.String("keys-file", os.Getenv("LEDGER_KEYS_FILE"), "Optional account-key registry file (lines of: account base58-pubkey)")
	backingSymbol := flag.String("backing-symbol", envOr("BACKING_SYMBOL", "8,RAM"), "Resource-backing token symbol")
	bytesPerToken := flag.Int64("bytes-per-token", 1024, "Quota bytes represented by one whole backing token")
	quotaOptOut := flag.String("quota-opt-out", os.Getenv("QUOTA_OPT_OUT"), "Comma-separated accounts excluded from quota sync")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	gate, err := createGate(*keysFile)
	if err != nil {
		logger.Fatalf("Failed to create authorization gate: %v", err)
	}

	symbol, err := domain.ParseSymbol(*backingSymbol)
	if err != nil {
		logger.Fatalf("Invalid --backing-symbol: %v", err)
	}

	limits := resource.NewMemoryLimits()
	optOut := resource.NewStaticOptOut(splitAccounts(*quotaOptOut)...)
	quotaSync := resource.New(resource.Config{
		BackingSymbol: symbol,
		BytesPerToken: *bytesPerToken,
	}, limits, optOut)

	metrics := observability.NewMetrics("")
	hub := events.NewHub(nil)
	defer hub.Close()

	token, err := ledger.New(ledger.Params{
		Admin:    domain.AccountName(*admin),
		Registry: ledger.NewRegistry(stores.statStore),
		Accounts: ledger.NewAccounts(stores.accountStore, stores.frozenStore),
		Gate:     gate,
		Resource: quotaSync,
		Journal:  stores.journalStore,
		Metrics:  metrics,
		Notify:   hub.Broadcast,
	})
	if err != nil {
		logger.Fatalf("Failed to create ledger: %v", err)
	}

	server := &Server{
		token:   token,
		journal: stores.journalStore,
		limits:  limits,
		hub:     hub,
		metrics: metrics,
		logger:  logger,
	}

	httpServer := &http.Server{
		Addr:    *listenAddr,
		Handler: server.routes(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Listening on %s (admin=%s, backing=%s)", *listenAddr, *admin, symbol)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			statStore:    memory.NewStatStore(),
			accountStore: memory.NewAccountStore(),
			frozenStore:  memory.NewFrozenStore(),
			journalStore: memory.NewJournalStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL: currency, balance and frozen rows
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse: append-only action journal
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		statStore:    pgstore.NewStatStore(pool),
		accountStore: pgstore.NewAccountStore(pool),
		frozenStore:  pgstore.NewFrozenStore(pool),
		journalStore: chstore.NewJournalStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// createGate builds the authorization gate. With a keys file every listed
// account authorizes through its registered key; otherwise accounts only
// act for themselves.
func createGate(keysFile string) (authz.Gate, error) {
	if keysFile == "" {
		return authz.NewStaticGate(), nil
	}

	data, err := os.ReadFile(keysFile)
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	gate := authz.NewKeyGate()
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("keys file line %d: expected 'account pubkey'", i+1)
		}
		if err := gate.RegisterKey(domain.AccountName(fields[0]), fields[1]); err != nil {
			return nil, fmt.Errorf("keys file line %d: %w", i+1, err)
		}
	}
	return gate, nil
}

func splitAccounts(list string) []domain.AccountName {
	var accounts []domain.AccountName
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			accounts = append(accounts, domain.AccountName(part))
		}
	}
	return accounts
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
