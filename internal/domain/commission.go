package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionStatus tracks whether a commission has been spent on food yet.
type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionWithdrawn CommissionStatus = "withdrawn"
)

// Commission is an affiliate payout attributed to an order.
type Commission struct {
	ID          string           `json:"id"`
	OrderID     string           `json:"orderId"`
	Amount      decimal.Decimal  `json:"amount"`
	ProductASIN *string          `json:"productASIN"`
	Date        time.Time        `json:"date"`
	Status      CommissionStatus `json:"status"`
	WithdrawnAt *time.Time       `json:"withdrawnAt"`
	Meals       int64            `json:"meals"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// CommissionFilter narrows commission listings. Zero values match everything.
type CommissionFilter struct {
	Status CommissionStatus
	Limit  int
}
