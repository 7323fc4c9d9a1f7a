package repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
	"pawshearts/internal/infra"
	"pawshearts/internal/sqlinline"
)

// CommissionRepositoryPG implements domain.CommissionStore using PostgreSQL.
type CommissionRepositoryPG struct {
	db infra.SQLExecutor
}

// NewCommissionRepository creates a new commission repo.
func NewCommissionRepository(db infra.SQLExecutor) *CommissionRepositoryPG {
	return &CommissionRepositoryPG{db: db}
}

// CreateCommission inserts a new commission record.
func (r *CommissionRepositoryPG) CreateCommission(ctx context.Context, c *domain.Commission) error {
	if c == nil {
		return fmt.Errorf("%w: commission is required", domain.ErrInvalidInput)
	}
	asin := ""
	if c.ProductASIN != nil {
		asin = *c.ProductASIN
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertCommission,
		c.ID,
		c.OrderID,
		c.Amount.String(),
		asin,
		c.Date,
		string(c.Status),
		c.WithdrawnAt,
		c.Meals,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert commission: %w", err)
	}
	return nil
}

// ListCommissions returns commissions newest first.
func (r *CommissionRepositoryPG) ListCommissions(ctx context.Context, filter domain.CommissionFilter) ([]domain.Commission, error) {
	limit := filter.Limit
	if limit < 0 {
		limit = 0
	}
	rows, err := r.db.Query(ctx, sqlinline.QListCommissions, string(filter.Status), limit)
	if err != nil {
		return nil, fmt.Errorf("list commissions: %w", err)
	}
	defer rows.Close()

	items := []domain.Commission{}
	for rows.Next() {
		var (
			c      domain.Commission
			amount string
			status string
		)
		if err := rows.Scan(
			&c.ID,
			&c.OrderID,
			&amount,
			&c.ProductASIN,
			&c.Date,
			&status,
			&c.WithdrawnAt,
			&c.Meals,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan commission: %w", err)
		}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse commission amount: %w", err)
		}
		c.Status = domain.CommissionStatus(status)
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
