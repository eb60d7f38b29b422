package stats

import (
	"testing"
	"time"

	"github.com/agrigestion/farm-api/internal/repository"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestForCultureRevenueAndMargin(t *testing.T) {
	c := &repository.Culture{
		Charges: []*repository.Charge{
			{Amount: 30, Date: day("2025-03-01")},
			{Amount: 12.5, Date: day("2025-04-15")},
		},
		Recoltes: []*repository.Recolte{
			{Quantity: 10, Price: 5, Date: day("2025-06-01")},
			{Quantity: 2, Price: 3, Date: day("2025-06-20")},
		},
	}
	got := ForCulture(c, Window{})
	if got.TotalRevenue != 56 {
		t.Fatalf("TotalRevenue = %v, want 56", got.TotalRevenue)
	}
	if got.TotalCharges != 42.5 {
		t.Fatalf("TotalCharges = %v, want 42.5", got.TotalCharges)
	}
	if got.Margin != 56-42.5 {
		t.Fatalf("Margin = %v, want %v", got.Margin, 56-42.5)
	}
}

func TestForCultureEmptyChildren(t *testing.T) {
	got := ForCulture(&repository.Culture{}, Window{})
	if got.TotalCharges != 0 || got.TotalRevenue != 0 || got.Margin != 0 {
		t.Fatalf("empty culture should produce zero totals, got %+v", got)
	}
}

func TestWindowBoundsInclusive(t *testing.T) {
	start := day("2025-05-01")
	end := day("2025-05-31")
	w := Window{Start: &start, End: &end}

	cases := []struct {
		date string
		in   bool
	}{
		{"2025-04-30", false},
		{"2025-05-01", true},
		{"2025-05-15", true},
		{"2025-05-31", true},
		{"2025-06-01", false},
	}
	for _, tc := range cases {
		if got := w.Contains(day(tc.date)); got != tc.in {
			t.Fatalf("Contains(%s) = %v, want %v", tc.date, got, tc.in)
		}
	}
}

func TestWindowFiltersCharges(t *testing.T) {
	start := day("2025-05-01")
	end := day("2025-05-31")
	c := &repository.Culture{
		Charges: []*repository.Charge{
			{Amount: 100, Date: day("2025-04-30")}, // before window
			{Amount: 7, Date: day("2025-05-01")},   // on the boundary
			{Amount: 5, Date: day("2025-05-20")},
		},
		Recoltes: []*repository.Recolte{
			{Quantity: 4, Price: 2, Date: day("2025-05-31")},
			{Quantity: 9, Price: 9, Date: day("2025-06-01")}, // after window
		},
	}
	got := ForCulture(c, Window{Start: &start, End: &end})
	if got.TotalCharges != 12 {
		t.Fatalf("TotalCharges = %v, want 12", got.TotalCharges)
	}
	if got.TotalRevenue != 8 {
		t.Fatalf("TotalRevenue = %v, want 8", got.TotalRevenue)
	}
}

func TestForCulturesMarginIdentity(t *testing.T) {
	cultures := []*repository.Culture{
		{
			Charges:  []*repository.Charge{{Amount: 10, Date: day("2025-01-01")}},
			Recoltes: []*repository.Recolte{{Quantity: 3, Price: 5, Date: day("2025-02-01")}},
		},
		{
			Charges:  []*repository.Charge{{Amount: 4, Date: day("2025-01-10")}},
			Recoltes: []*repository.Recolte{{Quantity: 1, Price: 2, Date: day("2025-03-01")}},
		},
		{}, // culture with no activity contributes zero
	}
	sum := ForCultures(cultures, Window{})
	var want Totals
	for _, c := range cultures {
		want.Add(ForCulture(c, Window{}))
	}
	if sum != want {
		t.Fatalf("ForCultures = %+v, want the sum of per-culture totals %+v", sum, want)
	}
	if sum.Margin != sum.TotalRevenue-sum.TotalCharges {
		t.Fatalf("margin identity broken: %+v", sum)
	}
}
