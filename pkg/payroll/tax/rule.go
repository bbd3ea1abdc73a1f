package tax

// band is one marginal bracket over annual taxable wages, half-open on the
// lower bound: (MinCents, MaxCents]. MaxCents == 0 means unbounded.
// BaseCents is the cumulative annual tax at MinCents, filled in when a table
// is sealed so band literals only carry the threshold and rate.
type band struct {
	MinCents     int64
	MaxCents     int64
	RateMilliPct int64
	BaseCents    int64
}

// bandSpec is the literal form used by jurisdiction tables: tax at
// RateMilliPct up to UpToCents of annual taxable wages. UpToCents == 0 on
// the last entry means the rate applies without bound.
type bandSpec struct {
	UpToCents    int64
	RateMilliPct int64
}

func sealBands(specs []bandSpec) []band {
	out := make([]band, 0, len(specs))
	var min, base int64
	for _, s := range specs {
		b := band{MinCents: min, MaxCents: s.UpToCents, RateMilliPct: s.RateMilliPct, BaseCents: base}
		out = append(out, b)
		if s.UpToCents > 0 {
			base += mulRateRoundHalfUpCents(s.UpToCents-min, s.RateMilliPct)
			min = s.UpToCents
		}
	}
	return out
}

func locateBand(bands []band, annualTaxableCents int64) band {
	for _, b := range bands {
		if b.MaxCents == 0 || annualTaxableCents <= b.MaxCents {
			return b
		}
	}
	// The top band applies to anything past the table.
	return bands[len(bands)-1]
}

// cappedContribution is a wage-base-capped withholding such as disability
// or unemployment insurance. Only wages up to WageBaseCents per year are
// subject; YTD wages consume the base first.
type cappedContribution struct {
	RateMilliPct  int64
	WageBaseCents int64
}

func (c cappedContribution) compute(periodGrossCents, ytdWagesCents int64) int64 {
	subject := clamp(c.WageBaseCents-max0(ytdWagesCents), 0, max0(periodGrossCents))
	return mulRateRoundHalfUpCents(subject, c.RateMilliPct)
}

// statusTable resolves a per-filing-status map with the SINGLE fallback:
// a status absent from the table uses SINGLE's entry, and jurisdictions
// that do not distinguish MARRIED_FILING_SEPARATELY inherit SINGLE.
func statusTable[V any](m map[FilingStatus]V, status FilingStatus) V {
	if v, ok := m[status]; ok {
		return v
	}
	return m[FilingSingle]
}

// jurisdictionRule is the generic state rule. Exactly one of Bands (per
// status) or FlatRateMilliPct drives the income tax; both zero means a
// no-income-tax jurisdiction that may still carry capped contributions.
type jurisdictionRule struct {
	code string

	bands            map[FilingStatus][]band
	flatRateMilliPct int64

	deductionCents             map[FilingStatus]int64
	exemptionPerAllowanceCents int64
	creditCents                map[FilingStatus]int64

	sdi *cappedContribution
	sui *cappedContribution
}

func (j *jurisdictionRule) Compute(in Input) Result {
	periods := in.periodsPerYear()

	annualDeduction := statusTable(j.deductionCents, in.FilingStatus) +
		j.exemptionPerAllowanceCents*max0(in.Allowances)
	periodDeduction := divRoundHalfUpCents(annualDeduction, periods)
	taxable := max0(in.GrossPayCents - periodDeduction)

	var out Result
	out.TaxableWagesCents = taxable

	switch {
	case len(j.bands) > 0:
		annualTaxable := taxable * periods
		b := locateBand(statusTable(j.bands, in.FilingStatus), annualTaxable)
		annualTax := b.BaseCents + mulRateRoundHalfUpCents(annualTaxable-b.MinCents, b.RateMilliPct)
		out.IncomeTaxCents = divRoundHalfUpCents(annualTax, periods)
		out.MarginalRateMilliPct = b.RateMilliPct
	case j.flatRateMilliPct > 0:
		out.IncomeTaxCents = mulRateRoundHalfUpCents(taxable, j.flatRateMilliPct)
		out.MarginalRateMilliPct = j.flatRateMilliPct
	}

	if annualCredit := statusTable(j.creditCents, in.FilingStatus); annualCredit > 0 {
		out.IncomeTaxCents = max0(out.IncomeTaxCents - divRoundHalfUpCents(annualCredit, periods))
	}

	if j.sdi != nil {
		out.SDICents = j.sdi.compute(in.GrossPayCents, in.YTDGrossWagesCents)
	}
	if j.sui != nil {
		out.SUICents = j.sui.compute(in.GrossPayCents, in.YTDGrossWagesCents)
	}

	return out.withTotal()
}
