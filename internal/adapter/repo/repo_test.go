package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
	"pawshearts/internal/impact"
	"pawshearts/internal/sqlinline"
)

func TestUpdateLedgerLocksRowAndInsertsReceipts(t *testing.T) {
	db := newFakeDB()
	last := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	db.row["from ledger"] = []any{"100.00", int64(40), int64(5), int64(3), "20.00", "500.00", last}
	existing := uuid.NewString()
	db.rows["from receipts"] = [][]any{{existing, last, "10.00", "Kibble", "Store", int64(4), nil, true}}

	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	receipt, err := impact.NewReceipt(impact.ReceiptInput{Amount: decimal.NewFromInt(5), Items: "Wet food"}, now)
	if err != nil {
		t.Fatalf("NewReceipt: %v", err)
	}

	repo := NewLedgerRepository(db)
	got, err := repo.UpdateLedger(context.Background(), func(l *domain.ImpactLedger) error {
		if len(l.Receipts) != 0 {
			t.Fatalf("expected totals only, got %d receipts", len(l.Receipts))
		}
		impact.Apply(l, receipt, now)
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateLedger error: %v", err)
	}
	if db.txBegins != 1 {
		t.Fatalf("expected one transaction, got %d", db.txBegins)
	}

	queries := db.queries()
	want := []string{sqlinline.QSelectLedgerForUpdate, sqlinline.QUpdateLedger, sqlinline.QInsertReceipt, sqlinline.QListReceipts}
	if len(queries) != len(want) {
		t.Fatalf("expected %d statements, got %d", len(want), len(queries))
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Fatalf("statement %d mismatch:\n%s", i, queries[i])
		}
	}

	update := db.calls[1].args
	if total := decimal.RequireFromString(update[0].(string)); !total.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("expected total 105, got %s", total)
	}
	if meals := update[1].(int64); meals != 42 {
		t.Fatalf("expected 42 meals, got %d", meals)
	}
	if pets := update[2].(int64); pets != 6 {
		t.Fatalf("expected 6 pets, got %d", pets)
	}
	if monthly := decimal.RequireFromString(update[4].(string)); !monthly.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected monthly 25, got %s", monthly)
	}

	insert := db.calls[2].args
	if insert[0] != receipt.ID || insert[6] != "" || insert[7] != true {
		t.Fatalf("unexpected insert args %#v", insert)
	}
	if len(got.Receipts) != 1 || got.Receipts[0].ID != existing {
		t.Fatalf("expected receipts re-read from the table, got %#v", got.Receipts)
	}
	if got.Receipts[0].ReceiptImage != nil {
		t.Fatalf("expected nil receipt image")
	}
}

func TestUpdateLedgerCallbackErrorSkipsWrites(t *testing.T) {
	db := newFakeDB()
	db.row["from ledger"] = []any{"0", int64(0), int64(0), int64(0), "0", "500", time.Now()}
	boom := errors.New("boom")

	_, err := NewLedgerRepository(db).UpdateLedger(context.Background(), func(*domain.ImpactLedger) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(db.calls) != 1 {
		t.Fatalf("expected only the select, got %d statements", len(db.calls))
	}
}

func TestLedgerMissingRow(t *testing.T) {
	_, err := NewLedgerRepository(newFakeDB()).Ledger(context.Background())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEnsureSeed(t *testing.T) {
	db := newFakeDB()
	if err := NewLedgerRepository(db).EnsureSeed(context.Background(), impact.DemoLedger(time.Now())); err != nil {
		t.Fatalf("EnsureSeed error: %v", err)
	}
	if len(db.calls) != 1 || db.calls[0].query != sqlinline.QEnsureLedger {
		t.Fatalf("expected a single insert attempt, got %v", db.queries())
	}
	if db.calls[0].args[0] != "2847.5" {
		t.Fatalf("expected demo total, got %v", db.calls[0].args[0])
	}

	seeded := newFakeDB()
	seeded.row["returning id"] = []any{1}
	seed := impact.NewLedger(decimal.NewFromInt(500), time.Now())
	seed.Receipts = []domain.Receipt{{ID: uuid.NewString(), Amount: decimal.NewFromInt(10), Items: "Kibble", Verified: true}}
	if err := NewLedgerRepository(seeded).EnsureSeed(context.Background(), seed); err != nil {
		t.Fatalf("EnsureSeed error: %v", err)
	}
	if len(seeded.calls) != 2 || seeded.calls[1].query != sqlinline.QInsertReceipt {
		t.Fatalf("expected seed receipts to be inserted, got %v", seeded.queries())
	}
}

func TestCommissionRepository(t *testing.T) {
	db := newFakeDB()
	repo := NewCommissionRepository(db)
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)

	c := &domain.Commission{ID: uuid.NewString(), OrderID: "111-222", Amount: decimal.RequireFromString("4.20"), Date: now, Status: domain.CommissionPending, Meals: 1, CreatedAt: now}
	if err := repo.CreateCommission(context.Background(), c); err != nil {
		t.Fatalf("CreateCommission error: %v", err)
	}
	args := db.calls[0].args
	if args[2] != "4.2" || args[3] != "" || args[5] != "pending" {
		t.Fatalf("unexpected insert args %#v", args)
	}

	asin := "B08XYZ"
	db.rows["from commissions"] = [][]any{{c.ID, "111-222", "4.20", asin, now, "pending", nil, int64(1), now}}
	items, err := repo.ListCommissions(context.Background(), domain.CommissionFilter{Status: domain.CommissionPending, Limit: -3})
	if err != nil {
		t.Fatalf("ListCommissions error: %v", err)
	}
	if len(items) != 1 || items[0].ProductASIN == nil || *items[0].ProductASIN != asin || items[0].WithdrawnAt != nil {
		t.Fatalf("unexpected commissions %#v", items)
	}
	listArgs := db.calls[1].args
	if listArgs[0] != "pending" || listArgs[1] != 0 {
		t.Fatalf("unexpected list args %#v", listArgs)
	}
}

func pinRow(id string, scheduled time.Time, status string) []any {
	created := scheduled.Add(-time.Hour)
	return []any{id, "1", "Cat Toy", "caption", "https://img", "https://link", "cat", "Board", scheduled, status, "", "", "", created, nil}
}

func TestClaimDuePinsSortsBySchedule(t *testing.T) {
	db := newFakeDB()
	now := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	first, second := uuid.NewString(), uuid.NewString()
	db.rows["with due as"] = [][]any{
		pinRow(second, now.Add(-time.Minute), "publishing"),
		pinRow(first, now.Add(-time.Hour), "publishing"),
	}

	pins, err := NewPinRepository(db).ClaimDuePins(context.Background(), now, 0)
	if err != nil {
		t.Fatalf("ClaimDuePins error: %v", err)
	}
	if len(pins) != 2 || pins[0].ID != first || pins[1].ID != second {
		t.Fatalf("unexpected order %#v", pins)
	}
	if pins[0].Status != domain.PinPublishing || pins[0].PublishedAt != nil {
		t.Fatalf("unexpected pin state %#v", pins[0])
	}
	if db.calls[0].args[1] != 1 {
		t.Fatalf("expected limit clamped to 1, got %v", db.calls[0].args[1])
	}
}

func TestPinRepositoryNotFound(t *testing.T) {
	db := newFakeDB()
	repo := NewPinRepository(db)
	ctx := context.Background()

	if _, err := repo.GetPin(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if len(db.calls) != 0 {
		t.Fatalf("malformed ids must not reach the database")
	}
	if _, err := repo.GetPin(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}

	db.execTag = pgconn.NewCommandTag("UPDATE 0")
	if err := repo.MarkPinFailed(ctx, uuid.NewString(), "boom"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.MarkPinPublished(ctx, uuid.NewString(), "r", "u", time.Now()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.RequeuePin(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRequeuePinOnlyTouchesPublishingPins(t *testing.T) {
	db := newFakeDB()
	repo := NewPinRepository(db)
	id := uuid.NewString()

	if err := repo.RequeuePin(context.Background(), id); err != nil {
		t.Fatalf("RequeuePin: %v", err)
	}
	if len(db.calls) != 1 || db.calls[0].query != sqlinline.QRequeuePin {
		t.Fatalf("unexpected calls %#v", db.calls)
	}
	if !strings.Contains(db.calls[0].query, "status = 'publishing'") || db.calls[0].args[0] != id {
		t.Fatalf("requeue must be limited to the claimed pin")
	}
	if err := repo.RequeuePin(context.Background(), "bad"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestEnqueuePinsSingleTransaction(t *testing.T) {
	db := newFakeDB()
	now := time.Now()
	pins := []domain.ScheduledPin{
		{ID: uuid.NewString(), ProductTitle: "A", ScheduledFor: now, Status: domain.PinQueued, CreatedAt: now},
		{ID: uuid.NewString(), ProductTitle: "B", ScheduledFor: now, Status: domain.PinQueued, CreatedAt: now},
	}
	if err := NewPinRepository(db).EnqueuePins(context.Background(), pins); err != nil {
		t.Fatalf("EnqueuePins error: %v", err)
	}
	if db.txBegins != 1 || len(db.calls) != 2 {
		t.Fatalf("expected 2 inserts in 1 tx, got %d calls in %d tx", len(db.calls), db.txBegins)
	}
	for _, c := range db.calls {
		if !strings.Contains(c.query, "insert into pins") {
			t.Fatalf("unexpected statement %s", c.query)
		}
	}
}
