package impact

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
)

// CommissionInput is the caller-supplied part of a commission.
type CommissionInput struct {
	OrderID     string
	Amount      decimal.Decimal
	ProductASIN string
	// Date is RFC 3339; empty means now.
	Date string
}

// NewCommission validates in and returns a pending commission.
func NewCommission(in CommissionInput, now time.Time) (domain.Commission, error) {
	orderID := strings.TrimSpace(in.OrderID)
	if orderID == "" {
		return domain.Commission{}, fmt.Errorf("%w: order id is required", domain.ErrInvalidInput)
	}
	if !in.Amount.IsPositive() {
		return domain.Commission{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	date := now
	if raw := strings.TrimSpace(in.Date); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return domain.Commission{}, fmt.Errorf("%w: date must be RFC 3339", domain.ErrInvalidInput)
		}
		date = parsed
	}
	var asin *string
	if v := strings.TrimSpace(in.ProductASIN); v != "" {
		asin = &v
	}
	return domain.Commission{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		Amount:      in.Amount,
		ProductASIN: asin,
		Date:        date,
		Status:      domain.CommissionPending,
		Meals:       Meals(in.Amount),
		CreatedAt:   now,
	}, nil
}

// PendingTotal sums the commissions not yet spent on food.
func PendingTotal(list []domain.Commission) decimal.Decimal {
	total := decimal.Zero
	for _, c := range list {
		if c.Status == domain.CommissionPending {
			total = total.Add(c.Amount)
		}
	}
	return total
}
