package impact

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pawshearts/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMeals(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"-5", 0},
		{"2.49", 0},
		{"2.5", 1},
		{"2.00", 0},
		{"3.60", 1},
		{"127.50", 51},
		{"89.20", 35},
		{"10", 4},
	}
	for _, tc := range tests {
		if got := Meals(dec(tc.amount)); got != tc.want {
			t.Fatalf("Meals(%s) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestPetsHelped(t *testing.T) {
	tests := map[int64]int64{0: 0, -3: 0, 6: 0, 7: 1, 1893: 270, 1900: 271}
	for meals, want := range tests {
		if got := PetsHelped(meals); got != want {
			t.Fatalf("PetsHelped(%d) = %d, want %d", meals, got, want)
		}
	}
}

func TestNewReceiptDefaults(t *testing.T) {
	now := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	r, err := NewReceipt(ReceiptInput{Amount: dec("127.50"), Items: " Pet food "}, now)
	if err != nil {
		t.Fatalf("NewReceipt error: %v", err)
	}
	if r.Meals != 51 {
		t.Fatalf("meals = %d, want 51", r.Meals)
	}
	if r.Supplier != domain.DefaultSupplier {
		t.Fatalf("supplier = %q", r.Supplier)
	}
	if r.Items != "Pet food" || !r.Verified || r.ReceiptImage != nil || r.ID == "" {
		t.Fatalf("unexpected receipt: %#v", r)
	}
	if !r.Date.Equal(now) {
		t.Fatalf("date = %v, want %v", r.Date, now)
	}
}

func TestNewReceiptExplicitMeals(t *testing.T) {
	meals := int64(60)
	r, err := NewReceipt(ReceiptInput{Amount: dec("127.50"), Items: "food", Meals: &meals, Supplier: "Corner Shop", ReceiptImage: "https://img/r.png"}, time.Now())
	if err != nil {
		t.Fatalf("NewReceipt error: %v", err)
	}
	if r.Meals != 60 || r.Supplier != "Corner Shop" || r.ReceiptImage == nil || *r.ReceiptImage != "https://img/r.png" {
		t.Fatalf("unexpected receipt: %#v", r)
	}
}

func TestNewReceiptValidation(t *testing.T) {
	negative := int64(-1)
	tests := []struct {
		name string
		in   ReceiptInput
	}{
		{"zero amount", ReceiptInput{Amount: decimal.Zero, Items: "food"}},
		{"negative amount", ReceiptInput{Amount: dec("-1"), Items: "food"}},
		{"blank items", ReceiptInput{Amount: dec("10"), Items: "  "}},
		{"negative meals", ReceiptInput{Amount: dec("10"), Items: "food", Meals: &negative}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewReceipt(tc.in, time.Now())
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func receiptAt(amount string, meals int64, at time.Time) domain.Receipt {
	return domain.Receipt{ID: at.String(), Date: at, Amount: dec(amount), Items: "food", Meals: meals, Verified: true}
}

func TestApplySameMonthAccumulates(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	l := DemoLedger(start)
	now := start.Add(48 * time.Hour)
	Apply(&l, receiptAt("10", 4, now), now)

	if !l.TotalRaised.Equal(dec("2857.50")) {
		t.Fatalf("totalRaised = %s", l.TotalRaised)
	}
	if l.MealsProvided != 1897 || l.PurchasesMade != 90 {
		t.Fatalf("meals=%d purchases=%d", l.MealsProvided, l.PurchasesMade)
	}
	if l.PetsHelped != 1897/7 {
		t.Fatalf("petsHelped = %d", l.PetsHelped)
	}
	if !l.MonthlyRaised.Equal(dec("357.20")) {
		t.Fatalf("monthlyRaised = %s", l.MonthlyRaised)
	}
	if len(l.Receipts) != 1 || !l.LastUpdated.Equal(now) {
		t.Fatalf("receipts=%d lastUpdated=%v", len(l.Receipts), l.LastUpdated)
	}
}

func TestApplyMonthRollover(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
	}{
		{"next month", time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC), time.Date(2026, 2, 1, 0, 30, 0, 0, time.UTC)},
		{"skipped months", time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"same month next year", time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"year boundary", time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC), time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := DemoLedger(tc.last)
			Apply(&l, receiptAt("25", 10, tc.now), tc.now)
			if !l.MonthlyRaised.Equal(dec("25")) {
				t.Fatalf("monthlyRaised = %s, want 25", l.MonthlyRaised)
			}
			if !l.TotalRaised.Equal(dec("2872.50")) {
				t.Fatalf("totalRaised = %s", l.TotalRaised)
			}
		})
	}
}

func TestApplyIsMonotonic(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	l := NewLedger(decimal.NewFromInt(500), now)
	var lastMeals, lastPets int64
	for i := 0; i < 30; i++ {
		at := now.Add(time.Duration(i) * 24 * time.Hour)
		Apply(&l, receiptAt("3.75", Meals(dec("3.75")), at), at)
		if l.MealsProvided < lastMeals || l.PetsHelped < lastPets {
			t.Fatalf("counters decreased at %d: meals %d->%d pets %d->%d", i, lastMeals, l.MealsProvided, lastPets, l.PetsHelped)
		}
		lastMeals, lastPets = l.MealsProvided, l.PetsHelped
	}
	if l.MealsProvided != 30 || l.PetsHelped != 4 {
		t.Fatalf("meals=%d pets=%d", l.MealsProvided, l.PetsHelped)
	}
}

func TestCurrentZeroesStaleMonth(t *testing.T) {
	l := DemoLedger(time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	got := Current(l, time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	if !got.MonthlyRaised.IsZero() {
		t.Fatalf("monthlyRaised = %s, want 0", got.MonthlyRaised)
	}
	same := Current(l, time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC))
	if !same.MonthlyRaised.Equal(dec("347.20")) {
		t.Fatalf("monthlyRaised = %s, want 347.20", same.MonthlyRaised)
	}
}

func TestSameMonthUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	utc := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, loc)
	if !SameMonth(utc, now) {
		t.Fatalf("expected %v to fall in February in %s", utc, loc)
	}
}
