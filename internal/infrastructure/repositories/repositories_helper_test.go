package repositories

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"payflow.backend/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createFlowAndAccountTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE flows (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uuid TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		wallet_provider TEXT,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT NOT NULL UNIQUE,
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT NOT NULL,
		network TEXT NOT NULL,
		smart BOOLEAN NOT NULL,
		safe BOOLEAN NOT NULL,
		safe_version TEXT,
		safe_salt_nonce TEXT,
		safe_deployed BOOLEAN NOT NULL,
		flow_id INTEGER NOT NULL REFERENCES flows(id),
		account_id INTEGER REFERENCES accounts(id),
		version INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		CONSTRAINT uq_wallets_network_address UNIQUE (network, address)
	);`)
}

func createWalletSchema(t *testing.T, db *gorm.DB) {
	createFlowAndAccountTables(t, db)
	createWalletTable(t, db)
}

func seedFlow(t *testing.T, db *gorm.DB, name string) *entities.Flow {
	t.Helper()
	flow := &entities.Flow{Name: name, WalletProvider: "safe"}
	require.NoError(t, NewFlowRepository(db).Create(context.Background(), flow))
	return flow
}

func seedAccount(t *testing.T, db *gorm.DB, address string) *entities.Account {
	t.Helper()
	account := &entities.Account{Address: address}
	require.NoError(t, NewAccountRepository(db).Create(context.Background(), account))
	return account
}
