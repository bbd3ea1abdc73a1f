// Package garnish applies ordered, capped deductions against disposable
// earnings. The calculation is a fold over the priority-sorted garnishments
// with the remaining ceiling as accumulator.
package garnish

import "sort"

// Garnishment is one active order against an employee's disposable
// earnings. Exactly one of AmountCents or PercentMilliPct is the effective
// basis; a positive fixed amount wins. TotalOwedCents == 0 means no balance
// is tracked.
type Garnishment struct {
	ID              string
	Type            string
	AmountCents     int64
	PercentMilliPct int64
	Priority        int64
	TotalOwedCents  int64
	TotalPaidCents  int64
}

type Detail struct {
	GarnishmentID string
	Type          string
	AmountCents   int64
}

type Outcome struct {
	TotalDeductionCents int64
	Details             []Detail
}

// CeilingPolicy maps garnishment type to the ceiling as milli-percent of
// disposable earnings. Types absent from the map use Default.
type CeilingPolicy struct {
	Default         int64
	PerTypeMilliPct map[string]int64
}

// DefaultCeilingPolicy caps every garnishment type at a flat 25% of
// disposable earnings. Statutory child-support ceilings run higher; the
// per-type map exists for that, but the shipped default keeps the flat cap.
func DefaultCeilingPolicy() CeilingPolicy {
	return CeilingPolicy{Default: 25_000}
}

func (p CeilingPolicy) milliPct(garnishmentType string) int64 {
	if v, ok := p.PerTypeMilliPct[garnishmentType]; ok {
		return v
	}
	return p.Default
}

// Apply deducts garnishments in priority order (lower first) until the
// ceiling is exhausted. Each candidate amount is clamped to the remaining
// tracked balance and to the remaining ceiling; clamps to zero or below are
// skipped without a detail line. The total never exceeds the highest
// applicable ceiling, so net pay cannot go negative.
func Apply(disposableCents int64, garnishments []Garnishment, policy CeilingPolicy) Outcome {
	if disposableCents <= 0 || len(garnishments) == 0 {
		return Outcome{}
	}

	ordered := make([]Garnishment, len(garnishments))
	copy(ordered, garnishments)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})

	var out Outcome
	for _, g := range ordered {
		// Ceilings share one budget: whatever earlier garnishments took
		// counts against this one's ceiling too.
		ceiling := mulMilliPctRoundHalfUp(disposableCents, policy.milliPct(g.Type))
		headroom := ceiling - out.TotalDeductionCents
		if headroom <= 0 {
			continue
		}

		amount := g.AmountCents
		if amount <= 0 {
			amount = mulMilliPctRoundHalfUp(disposableCents, g.PercentMilliPct)
		}
		if g.TotalOwedCents > 0 {
			balance := g.TotalOwedCents - g.TotalPaidCents
			if balance <= 0 {
				continue
			}
			if amount > balance {
				amount = balance
			}
		}
		if amount > headroom {
			amount = headroom
		}
		if amount <= 0 {
			continue
		}

		out.TotalDeductionCents += amount
		out.Details = append(out.Details, Detail{GarnishmentID: g.ID, Type: g.Type, AmountCents: amount})
	}
	return out
}

func mulMilliPctRoundHalfUp(amountCents, rateMilliPct int64) int64 {
	if amountCents <= 0 || rateMilliPct <= 0 {
		return 0
	}
	n := amountCents * rateMilliPct
	q := n / 100_000
	if n%100_000 >= 50_000 {
		return q + 1
	}
	return q
}
