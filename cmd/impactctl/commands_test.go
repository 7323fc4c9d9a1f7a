package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"pawshearts/internal/impact"
	"pawshearts/internal/middleware"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func fileEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LEDGER_DRIVER", "file")
	t.Setenv("LEDGER_PATH", filepath.Join(t.TempDir(), "impact-log.json"))
	t.Setenv("LEDGER_SEED_DEMO", "false")
	t.Setenv("LEDGER_MONTHLY_GOAL", "500")
	t.Setenv("LEDGER_TIMEZONE", "UTC")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ADMIN_JWT_SECRET", "cli-secret")
}

func TestReceiptAddAndStats(t *testing.T) {
	fileEnv(t)

	out, err := runCLI(t, "receipt", "add", "--amount", "25", "--items", "Dry food", "--meals", "12")
	if err != nil {
		t.Fatalf("receipt add: %v", err)
	}
	var receipt struct {
		Meals    int64
		Supplier string
	}
	if err := json.Unmarshal([]byte(out), &receipt); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if receipt.Meals != 12 || receipt.Supplier != "Local Pet Supply Store" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}

	out, err = runCLI(t, "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var stats impact.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Overview.PurchasesMade != 1 || stats.Overview.MealsProvided != 12 {
		t.Fatalf("unexpected overview %+v", stats.Overview)
	}
}

func TestReceiptAddRequiresFlags(t *testing.T) {
	fileEnv(t)
	if _, err := runCLI(t, "receipt", "add", "--amount", "5"); err == nil {
		t.Fatalf("expected missing --items error")
	}
	if _, err := runCLI(t, "receipt", "add", "--amount", "abc", "--items", "x"); err == nil {
		t.Fatalf("expected invalid amount error")
	}
}

func TestGoalSetAndCommissionTrack(t *testing.T) {
	fileEnv(t)
	out, err := runCLI(t, "goal", "set", "650")
	if err != nil {
		t.Fatalf("goal set: %v", err)
	}
	if !strings.Contains(out, "650.00") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCLI(t, "commission", "track", "--order", "114-1", "--amount", "7.5", "--asin", "B0002AQPA2")
	if err != nil {
		t.Fatalf("commission track: %v", err)
	}
	if !strings.Contains(out, `"status": "pending"`) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestTokenMint(t *testing.T) {
	fileEnv(t)
	out, err := runCLI(t, "token", "mint", "--ttl", "1h", "--subject", "ops")
	if err != nil {
		t.Fatalf("token mint: %v", err)
	}
	claims, err := middleware.VerifyAdminToken("cli-secret", strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("verify minted token: %v", err)
	}
	if claims.Subject != "ops" {
		t.Fatalf("subject = %q", claims.Subject)
	}
}

func TestMigrateAndPinterestNeedSQL(t *testing.T) {
	fileEnv(t)
	if _, err := runCLI(t, "migrate"); err == nil {
		t.Fatalf("expected migrate to fail for the file driver")
	}
	if _, err := runCLI(t, "token", "pinterest", "--token", "x"); err == nil {
		t.Fatalf("expected pinterest token to require postgres")
	}
}

func TestMigrateSQLite(t *testing.T) {
	fileEnv(t)
	t.Setenv("LEDGER_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "impact.db"))
	out, err := runCLI(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "sqlite migrations applied") {
		t.Fatalf("unexpected output %q", out)
	}
}
