package impact

import (
	"time"

	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
)

const recentReceiptLimit = 10

type Overview struct {
	TotalRaised   decimal.Decimal `json:"totalRaised"`
	MealsProvided int64           `json:"mealsProvided"`
	PetsHelped    int64           `json:"petsHelped"`
	PurchasesMade int64           `json:"purchasesMade"`
}

type MonthSummary struct {
	Raised    decimal.Decimal `json:"raised"`
	Purchases int             `json:"purchases"`
	Meals     int64           `json:"meals"`
}

type Monthly struct {
	Current  MonthSummary    `json:"current"`
	Previous MonthSummary    `json:"previous"`
	Goal     decimal.Decimal `json:"goal"`
	Progress decimal.Decimal `json:"progress"`
}

type Averages struct {
	PerReceipt      decimal.Decimal `json:"perReceipt"`
	MealsPerReceipt decimal.Decimal `json:"mealsPerReceipt"`
}

type Transparency struct {
	AllReceiptsPublic bool `json:"allReceiptsPublic"`
	VerificationRate  int  `json:"verificationRate"`
	AdminFee          int  `json:"adminFee"`
	DirectToAnimals   int  `json:"directToAnimals"`
}

// Stats is the detailed report behind the impact page.
type Stats struct {
	Overview       Overview         `json:"overview"`
	Monthly        Monthly          `json:"monthly"`
	Averages       Averages         `json:"averages"`
	RecentReceipts []domain.Receipt `json:"recentReceipts"`
	Transparency   Transparency     `json:"transparency"`
}

// ComputeStats summarizes l as of now.
func ComputeStats(l domain.ImpactLedger, now time.Time) Stats {
	l = Current(l, now)
	prev := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, now.Location())

	var current, previous MonthSummary
	current.Raised, previous.Raised = decimal.Zero, decimal.Zero
	sum := decimal.Zero
	var meals int64
	for _, r := range l.Receipts {
		sum = sum.Add(r.Amount)
		meals += r.Meals
		switch {
		case SameMonth(r.Date, now):
			current.Raised = current.Raised.Add(r.Amount)
			current.Purchases++
			current.Meals += r.Meals
		case SameMonth(r.Date, prev):
			previous.Raised = previous.Raised.Add(r.Amount)
			previous.Purchases++
			previous.Meals += r.Meals
		}
	}

	progress := decimal.Zero
	if l.MonthlyGoal.IsPositive() {
		progress = l.MonthlyRaised.Div(l.MonthlyGoal).Mul(decimal.NewFromInt(100)).Round(2)
	}

	averages := Averages{PerReceipt: decimal.Zero, MealsPerReceipt: decimal.Zero}
	if n := int64(len(l.Receipts)); n > 0 {
		count := decimal.NewFromInt(n)
		averages.PerReceipt = sum.Div(count).Round(2)
		averages.MealsPerReceipt = decimal.NewFromInt(meals).Div(count).Round(1)
	}

	recent := l.Receipts
	if len(recent) > recentReceiptLimit {
		recent = recent[:recentReceiptLimit]
	}

	return Stats{
		Overview: Overview{
			TotalRaised:   l.TotalRaised,
			MealsProvided: l.MealsProvided,
			PetsHelped:    l.PetsHelped,
			PurchasesMade: l.PurchasesMade,
		},
		Monthly: Monthly{
			Current:  current,
			Previous: previous,
			Goal:     l.MonthlyGoal,
			Progress: progress,
		},
		Averages:       averages,
		RecentReceipts: recent,
		Transparency: Transparency{
			AllReceiptsPublic: true,
			VerificationRate:  100,
			AdminFee:          0,
			DirectToAnimals:   100,
		},
	}
}
