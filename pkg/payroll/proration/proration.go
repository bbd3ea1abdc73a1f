// Package proration computes the fraction of a pay period an employee was
// actively employed, by inclusive calendar-day counts.
package proration

import "time"

// Factor returns the eligible fraction of [periodStart, periodEnd] as an
// exact day-count pair (num/den). num == 0 means no overlap: hired after the
// period ended or terminated before it started. That is a legitimate skip
// for the caller, not an error.
func Factor(periodStart, periodEnd, hireDate time.Time, termination *time.Time) (num, den int64) {
	den = daysInclusive(periodStart, periodEnd)
	if den <= 0 {
		return 0, 1
	}

	if hireDate.After(periodEnd) {
		return 0, den
	}
	if termination != nil && termination.Before(periodStart) {
		return 0, den
	}

	from := periodStart
	if hireDate.After(from) {
		from = hireDate
	}
	to := periodEnd
	if termination != nil && termination.Before(to) {
		to = *termination
	}

	num = daysInclusive(from, to)
	if num < 0 {
		num = 0
	}
	return num, den
}

// Apply prorates cents by num/den, rounding half-up.
func Apply(amountCents, num, den int64) int64 {
	if amountCents <= 0 || num <= 0 || den <= 0 {
		return 0
	}
	if num >= den {
		return amountCents
	}
	n := amountCents * num
	q := n / den
	if (n%den)*2 >= den {
		return q + 1
	}
	return q
}

func daysInclusive(from, to time.Time) int64 {
	from = dateOnly(from)
	to = dateOnly(to)
	if to.Before(from) {
		return 0
	}
	return int64(to.Sub(from)/(24*time.Hour)) + 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
