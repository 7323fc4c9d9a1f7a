package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
	"pawshearts/internal/infra"
	"pawshearts/internal/sqlinline"
)

// LedgerRepositoryPG implements domain.LedgerStore on PostgreSQL. The ledger
// is a single row locked with SELECT ... FOR UPDATE during updates.
type LedgerRepositoryPG struct {
	db infra.Transactor
}

// NewLedgerRepository creates a ledger repository backed by PostgreSQL.
func NewLedgerRepository(db infra.Transactor) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{db: db}
}

// EnsureSeed stores seed as the ledger when the table is still empty.
func (r *LedgerRepositoryPG) EnsureSeed(ctx context.Context, seed domain.ImpactLedger) error {
	if seed.LastUpdated.IsZero() {
		seed.LastUpdated = time.Now().UTC()
	}
	return r.db.WithTx(ctx, func(tx infra.SQLExecutor) error {
		var id int
		err := tx.QueryRow(ctx, sqlinline.QEnsureLedger,
			seed.TotalRaised.String(), seed.MealsProvided, seed.PetsHelped, seed.PurchasesMade,
			seed.MonthlyRaised.String(), seed.MonthlyGoal.String(), seed.LastUpdated,
		).Scan(&id)
		if infra.IsNoRows(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("seed ledger: %w", err)
		}
		return insertReceipts(ctx, tx, seed.Receipts)
	})
}

// Ledger returns the totals and every receipt, newest first.
func (r *LedgerRepositoryPG) Ledger(ctx context.Context) (*domain.ImpactLedger, error) {
	l, err := selectTotals(ctx, r.db, sqlinline.QSelectLedger)
	if err != nil {
		return nil, err
	}
	if l.Receipts, err = listReceipts(ctx, r.db); err != nil {
		return nil, err
	}
	return l, nil
}

// UpdateLedger locks the ledger row, hands fn the totals and stores the result
// together with any receipts fn prepended.
func (r *LedgerRepositoryPG) UpdateLedger(ctx context.Context, fn func(*domain.ImpactLedger) error) (*domain.ImpactLedger, error) {
	var out *domain.ImpactLedger
	err := r.db.WithTx(ctx, func(tx infra.SQLExecutor) error {
		l, err := selectTotals(ctx, tx, sqlinline.QSelectLedgerForUpdate)
		if err != nil {
			return err
		}
		l.Receipts = []domain.Receipt{}
		if err := fn(l); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, sqlinline.QUpdateLedger,
			l.TotalRaised.String(), l.MealsProvided, l.PetsHelped, l.PurchasesMade,
			l.MonthlyRaised.String(), l.MonthlyGoal.String(), l.LastUpdated,
		); err != nil {
			return fmt.Errorf("update ledger: %w", err)
		}
		if err := insertReceipts(ctx, tx, l.Receipts); err != nil {
			return err
		}
		if l.Receipts, err = listReceipts(ctx, tx); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func selectTotals(ctx context.Context, db infra.SQLExecutor, query string) (*domain.ImpactLedger, error) {
	var (
		l                          domain.ImpactLedger
		totalRaised, monthly, goal string
	)
	err := db.QueryRow(ctx, query).Scan(
		&totalRaised,
		&l.MealsProvided,
		&l.PetsHelped,
		&l.PurchasesMade,
		&monthly,
		&goal,
		&l.LastUpdated,
	)
	if infra.IsNoRows(err) {
		return nil, fmt.Errorf("ledger row: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select ledger: %w", err)
	}
	if l.TotalRaised, err = decimal.NewFromString(totalRaised); err != nil {
		return nil, fmt.Errorf("parse total_raised: %w", err)
	}
	if l.MonthlyRaised, err = decimal.NewFromString(monthly); err != nil {
		return nil, fmt.Errorf("parse monthly_raised: %w", err)
	}
	if l.MonthlyGoal, err = decimal.NewFromString(goal); err != nil {
		return nil, fmt.Errorf("parse monthly_goal: %w", err)
	}
	return &l, nil
}

func listReceipts(ctx context.Context, db infra.SQLExecutor) ([]domain.Receipt, error) {
	rows, err := db.Query(ctx, sqlinline.QListReceipts)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	items := []domain.Receipt{}
	for rows.Next() {
		var (
			receipt domain.Receipt
			amount  string
		)
		if err := rows.Scan(
			&receipt.ID,
			&receipt.Date,
			&amount,
			&receipt.Items,
			&receipt.Supplier,
			&receipt.Meals,
			&receipt.ReceiptImage,
			&receipt.Verified,
		); err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		if receipt.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse receipt amount: %w", err)
		}
		items = append(items, receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipts: %w", err)
	}
	return items, nil
}

// insertReceipts stores receipts given newest first, oldest row first.
func insertReceipts(ctx context.Context, db infra.SQLExecutor, receipts []domain.Receipt) error {
	for i := len(receipts) - 1; i >= 0; i-- {
		receipt := receipts[i]
		image := ""
		if receipt.ReceiptImage != nil {
			image = *receipt.ReceiptImage
		}
		if _, err := db.Exec(ctx, sqlinline.QInsertReceipt,
			receipt.ID,
			receipt.Date,
			receipt.Amount.String(),
			receipt.Items,
			receipt.Supplier,
			receipt.Meals,
			image,
			receipt.Verified,
		); err != nil {
			return fmt.Errorf("insert receipt %s: %w", receipt.ID, err)
		}
	}
	return nil
}
