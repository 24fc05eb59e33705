package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/satriaputra/tokopos-backend/pkg/migrate"
)

func TestTransactionsMigrationContainsSchemas(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_transactions_table.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no transactions migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS transactions",
		"CREATE TABLE IF NOT EXISTS transaction_items",
		"CHECK (status IN ('pending', 'completed', 'cancelled', 'expired'))",
		"CHECK (payment_method IN ('cash', 'bank_transfer', 'virtual_account'))",
		"CREATE INDEX IF NOT EXISTS idx_transactions_store_created",
		"CREATE INDEX IF NOT EXISTS idx_transactions_status_expires",
		"CREATE INDEX IF NOT EXISTS idx_transaction_items_store_product",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
