// Package stats computes revenue/cost/margin rollups over already-fetched,
// ownership-filtered rows. Totals compose upward: per-culture figures sum
// into per-exploitation figures, which sum into the platform-wide figures
// served to admins.
package stats

import (
	"time"

	"github.com/agrigestion/farm-api/internal/repository"
)

// Totals holds the aggregate figures for one scope (a culture, an
// exploitation or the whole platform). Margin is always revenue minus
// charges.
type Totals struct {
	TotalCharges float64 `json:"totalCharges"`
	TotalRevenue float64 `json:"totalRevenue"`
	Margin       float64 `json:"margin"`
}

// Window is an optional inclusive [Start, End] date restriction. A nil
// bound means unbounded on that side.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// Contains reports whether t falls inside the window. Bounds are
// inclusive so a charge dated exactly on Start or End still counts.
func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

// Add merges another Totals into the receiver and recomputes the margin.
func (t *Totals) Add(o Totals) {
	t.TotalCharges += o.TotalCharges
	t.TotalRevenue += o.TotalRevenue
	t.Margin = t.TotalRevenue - t.TotalCharges
}

// ForCulture computes the totals of one culture from its child rows.
// Missing child slices contribute zero; they are not an error.
func ForCulture(c *repository.Culture, w Window) Totals {
	var t Totals
	for _, ch := range c.Charges {
		if w.Contains(ch.Date) {
			t.TotalCharges += ch.Amount
		}
	}
	for _, rc := range c.Recoltes {
		if w.Contains(rc.Date) {
			t.TotalRevenue += rc.Quantity * rc.Price
		}
	}
	t.Margin = t.TotalRevenue - t.TotalCharges
	return t
}

// ForCultures sums the totals of a set of cultures.
func ForCultures(cultures []*repository.Culture, w Window) Totals {
	var t Totals
	for _, c := range cultures {
		t.Add(ForCulture(c, w))
	}
	return t
}
