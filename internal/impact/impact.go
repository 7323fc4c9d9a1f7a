// Package impact holds the meal-equivalent arithmetic and the impact ledger
// accumulator shared by every store and handler.
package impact

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
)

// MealsPerPet is the average number of meals that counts as one pet helped.
const MealsPerPet = 7

// MealCost is the commission, in dollars, that pays for one meal.
var MealCost = decimal.RequireFromString("2.5")

// Meals converts an amount of money into whole meal equivalents.
func Meals(amount decimal.Decimal) int64 {
	if !amount.IsPositive() {
		return 0
	}
	return amount.Div(MealCost).Floor().IntPart()
}

// PetsHelped converts meals into whole pets helped.
func PetsHelped(meals int64) int64 {
	if meals <= 0 {
		return 0
	}
	return meals / MealsPerPet
}

// SameMonth reports whether a and b fall in the same calendar month of the
// location of b.
func SameMonth(a, b time.Time) bool {
	ay, am, _ := a.In(b.Location()).Date()
	by, bm, _ := b.Date()
	return ay == by && am == bm
}

// NewLedger returns an empty ledger with the given monthly goal.
func NewLedger(goal decimal.Decimal, now time.Time) domain.ImpactLedger {
	return domain.ImpactLedger{
		TotalRaised:   decimal.Zero,
		MonthlyRaised: decimal.Zero,
		MonthlyGoal:   goal,
		Receipts:      []domain.Receipt{},
		LastUpdated:   now,
	}
}

// DemoLedger returns the figures the storefront launched with.
func DemoLedger(now time.Time) domain.ImpactLedger {
	return domain.ImpactLedger{
		TotalRaised:   decimal.RequireFromString("2847.50"),
		MealsProvided: 1893,
		PetsHelped:    247,
		PurchasesMade: 89,
		MonthlyRaised: decimal.RequireFromString("347.20"),
		MonthlyGoal:   decimal.NewFromInt(500),
		Receipts:      []domain.Receipt{},
		LastUpdated:   now,
	}
}

// ReceiptInput is the caller-supplied part of a receipt.
type ReceiptInput struct {
	Amount       decimal.Decimal
	Items        string
	Supplier     string
	Meals        *int64
	ReceiptImage string
}

// NewReceipt validates the input and fills the defaults.
func NewReceipt(in ReceiptInput, now time.Time) (domain.Receipt, error) {
	if !in.Amount.IsPositive() {
		return domain.Receipt{}, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}
	items := strings.TrimSpace(in.Items)
	if items == "" {
		return domain.Receipt{}, fmt.Errorf("%w: items are required", domain.ErrInvalidInput)
	}
	meals := Meals(in.Amount)
	if in.Meals != nil {
		if *in.Meals < 0 {
			return domain.Receipt{}, fmt.Errorf("%w: meals cannot be negative", domain.ErrInvalidInput)
		}
		if *in.Meals > 0 {
			meals = *in.Meals
		}
	}
	supplier := strings.TrimSpace(in.Supplier)
	if supplier == "" {
		supplier = domain.DefaultSupplier
	}
	var image *string
	if v := strings.TrimSpace(in.ReceiptImage); v != "" {
		image = &v
	}
	return domain.Receipt{
		ID:           uuid.NewString(),
		Date:         now,
		Amount:       in.Amount,
		Items:        items,
		Supplier:     supplier,
		Meals:        meals,
		ReceiptImage: image,
		Verified:     true,
	}, nil
}

// Apply records r in l. The monthly total restarts when now is in a different
// calendar month than the previous update.
func Apply(l *domain.ImpactLedger, r domain.Receipt, now time.Time) {
	l.Receipts = append([]domain.Receipt{r}, l.Receipts...)
	l.TotalRaised = l.TotalRaised.Add(r.Amount)
	l.MealsProvided += r.Meals
	l.PurchasesMade++
	l.PetsHelped = PetsHelped(l.MealsProvided)
	if SameMonth(l.LastUpdated, now) {
		l.MonthlyRaised = l.MonthlyRaised.Add(r.Amount)
	} else {
		l.MonthlyRaised = r.Amount
	}
	l.LastUpdated = now
}

// Current returns l as seen at now: a monthly total from an earlier month
// reads as zero.
func Current(l domain.ImpactLedger, now time.Time) domain.ImpactLedger {
	if !l.LastUpdated.IsZero() && !SameMonth(l.LastUpdated, now) {
		l.MonthlyRaised = decimal.Zero
	}
	if l.Receipts == nil {
		l.Receipts = []domain.Receipt{}
	}
	return l
}
