// Package tax computes per-jurisdiction withholding for one pay period.
// All monetary values are int64 cents; all rates are int64 milli-percent
// (1000 = 1%). Every monetary output is rounded half-up.
package tax

type FilingStatus string

const (
	FilingSingle            FilingStatus = "SINGLE"
	FilingMarriedJointly    FilingStatus = "MARRIED_FILING_JOINTLY"
	FilingMarriedSeparately FilingStatus = "MARRIED_FILING_SEPARATELY"
	FilingHeadOfHousehold   FilingStatus = "HEAD_OF_HOUSEHOLD"
)

// JurisdictionFederal dispatches to the federal rule; every other supported
// code is a two-letter state code (plus DC).
const JurisdictionFederal = "US"

type Input struct {
	GrossPayCents      int64
	PayPeriodsPerYear  int64
	FilingStatus       FilingStatus
	Allowances         int64
	YTDGrossWagesCents int64
}

type Result struct {
	IncomeTaxCents       int64
	SocialSecurityCents  int64
	MedicareCents        int64
	SDICents             int64
	SUICents             int64
	TotalCents           int64
	TaxableWagesCents    int64
	MarginalRateMilliPct int64
}

// Rule is one jurisdiction's withholding computation for a single period.
// Compute is total over all real inputs: it never errors and clamps
// negative intermediates to zero.
type Rule interface {
	Compute(in Input) Result
}

func max0(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mulRateRoundHalfUpCents multiplies cents by a milli-percent rate and
// rounds half-up to the nearest cent.
func mulRateRoundHalfUpCents(amountCents, rateMilliPct int64) int64 {
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

// divRoundHalfUpCents divides cents by a positive divisor, rounding half-up.
func divRoundHalfUpCents(amountCents, div int64) int64 {
	if amountCents <= 0 || div <= 0 {
		return 0
	}
	q := amountCents / div
	if (amountCents%div)*2 >= div {
		return q + 1
	}
	return q
}

func (in Input) periodsPerYear() int64 {
	if in.PayPeriodsPerYear <= 0 {
		return 1
	}
	return in.PayPeriodsPerYear
}

func (r Result) withTotal() Result {
	r.TotalCents = r.IncomeTaxCents + r.SocialSecurityCents + r.MedicareCents + r.SDICents + r.SUICents
	return r
}
