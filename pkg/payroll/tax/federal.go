package tax

// Federal withholding for tax year 2025: progressive brackets per filing
// status, standard deduction, social security up to the annual wage base,
// medicare with the additional 0.9% above the annual threshold. Allowances
// are ignored at the federal level (post-2020 W-4).
type federalRule struct {
	bands          map[FilingStatus][]band
	deductionCents map[FilingStatus]int64

	socialSecurity cappedContribution

	medicareRateMilliPct             int64
	additionalMedicareRateMilliPct   int64
	additionalMedicareThresholdCents int64
}

func newFederalRule2025() *federalRule {
	single := sealBands([]bandSpec{
		{1_192_500, 10_000},
		{4_847_500, 12_000},
		{10_335_000, 22_000},
		{19_730_000, 24_000},
		{25_052_500, 32_000},
		{62_635_000, 35_000},
		{0, 37_000},
	})
	joint := sealBands([]bandSpec{
		{2_385_000, 10_000},
		{9_695_000, 12_000},
		{20_670_000, 22_000},
		{39_460_000, 24_000},
		{50_105_000, 32_000},
		{75_160_000, 35_000},
		{0, 37_000},
	})
	head := sealBands([]bandSpec{
		{1_700_000, 10_000},
		{6_485_000, 12_000},
		{10_335_000, 22_000},
		{19_730_000, 24_000},
		{25_052_500, 32_000},
		{62_635_000, 35_000},
		{0, 37_000},
	})

	return &federalRule{
		bands: map[FilingStatus][]band{
			FilingSingle:          single,
			FilingMarriedJointly:  joint,
			FilingHeadOfHousehold: head,
		},
		deductionCents: map[FilingStatus]int64{
			FilingSingle:          1_500_000,
			FilingMarriedJointly:  3_000_000,
			FilingHeadOfHousehold: 2_250_000,
		},
		socialSecurity: cappedContribution{
			RateMilliPct:  6_200,
			WageBaseCents: 17_610_000,
		},
		medicareRateMilliPct:             1_450,
		additionalMedicareRateMilliPct:   900,
		additionalMedicareThresholdCents: 20_000_000,
	}
}

func (f *federalRule) Compute(in Input) Result {
	periods := in.periodsPerYear()

	periodDeduction := divRoundHalfUpCents(statusTable(f.deductionCents, in.FilingStatus), periods)
	taxable := max0(in.GrossPayCents - periodDeduction)

	annualTaxable := taxable * periods
	b := locateBand(statusTable(f.bands, in.FilingStatus), annualTaxable)
	annualTax := b.BaseCents + mulRateRoundHalfUpCents(annualTaxable-b.MinCents, b.RateMilliPct)

	var out Result
	out.TaxableWagesCents = taxable
	out.IncomeTaxCents = divRoundHalfUpCents(annualTax, periods)
	out.MarginalRateMilliPct = b.RateMilliPct

	out.SocialSecurityCents = f.socialSecurity.compute(in.GrossPayCents, in.YTDGrossWagesCents)

	medicare := mulRateRoundHalfUpCents(max0(in.GrossPayCents), f.medicareRateMilliPct)
	annualGross := max0(in.GrossPayCents) * periods
	if excess := max0(annualGross - f.additionalMedicareThresholdCents); excess > 0 {
		annualSurtax := mulRateRoundHalfUpCents(excess, f.additionalMedicareRateMilliPct)
		medicare += divRoundHalfUpCents(annualSurtax, periods)
	}
	out.MedicareCents = medicare

	return out.withTotal()
}
