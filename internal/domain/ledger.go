package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The storefront reads money values as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// DefaultSupplier is recorded when a receipt does not name a supplier.
const DefaultSupplier = "Local Pet Supply Store"

// Receipt is a pet food purchase paid for with affiliate commissions.
type Receipt struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	Items        string          `json:"items"`
	Supplier     string          `json:"supplier"`
	Meals        int64           `json:"meals"`
	ReceiptImage *string         `json:"receiptImage"`
	Verified     bool            `json:"verified"`
}

// ImpactLedger holds the cumulative and monthly donation totals.
type ImpactLedger struct {
	TotalRaised   decimal.Decimal `json:"totalRaised"`
	MealsProvided int64           `json:"mealsProvided"`
	PetsHelped    int64           `json:"petsHelped"`
	PurchasesMade int64           `json:"purchasesMade"`
	MonthlyRaised decimal.Decimal `json:"monthlyRaised"`
	MonthlyGoal   decimal.Decimal `json:"monthlyGoal"`
	Receipts      []Receipt       `json:"receipts"`
	LastUpdated   time.Time       `json:"lastUpdated"`
}

// Clone returns a copy that does not share the receipts backing array.
func (l ImpactLedger) Clone() ImpactLedger {
	out := l
	if l.Receipts != nil {
		out.Receipts = make([]Receipt, len(l.Receipts))
		copy(out.Receipts, l.Receipts)
	}
	return out
}
