package tax

import (
	"errors"
	"testing"
)

func TestSealBands(t *testing.T) {
	bands := sealBands([]bandSpec{
		{1_000_00, 10_000},
		{5_000_00, 20_000},
		{0, 30_000},
	})

	if len(bands) != 3 {
		t.Fatalf("len=%d", len(bands))
	}
	if bands[0].BaseCents != 0 || bands[0].MinCents != 0 {
		t.Fatalf("band0=%+v", bands[0])
	}
	if bands[1].BaseCents != 10_000 {
		t.Fatalf("band1 base=%d", bands[1].BaseCents)
	}
	if bands[2].BaseCents != 10_000+80_000 {
		t.Fatalf("band2 base=%d", bands[2].BaseCents)
	}
	if bands[2].MaxCents != 0 {
		t.Fatalf("band2 max=%d", bands[2].MaxCents)
	}
}

func TestLocateBand(t *testing.T) {
	bands := sealBands([]bandSpec{
		{1_000_00, 10_000},
		{5_000_00, 20_000},
		{0, 30_000},
	})

	cases := []struct {
		name     string
		annual   int64
		wantRate int64
	}{
		{"zero", 0, 10_000},
		{"at first max", 1_000_00, 10_000},
		{"just past first max", 1_000_01, 20_000},
		{"at second max", 5_000_00, 20_000},
		{"top band unbounded", 9_999_999_999, 30_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := locateBand(bands, tc.annual); got.RateMilliPct != tc.wantRate {
				t.Fatalf("rate=%d", got.RateMilliPct)
			}
		})
	}
}

func TestEngineFlatStateScenario(t *testing.T) {
	// Biweekly $104,000/year salary, SINGLE, in a flat 5% state with a
	// $14,600 annual standard deduction.
	eng, err := NewEngine(Override{
		Code:                   "XX",
		Year:                   2025,
		FlatRateMilliPct:       5_000,
		StandardDeductionCents: map[string]int64{"SINGLE": 1_460_000},
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	in := Input{
		GrossPayCents:     400_000,
		PayPeriodsPerYear: 26,
		FilingStatus:      FilingSingle,
	}
	out, err := eng.Compute("XX", 2025, in)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	if out.TaxableWagesCents != 343_846 {
		t.Fatalf("taxable=%d", out.TaxableWagesCents)
	}
	if out.IncomeTaxCents != 17_192 {
		t.Fatalf("tax=%d", out.IncomeTaxCents)
	}
	if out.MarginalRateMilliPct != 5_000 {
		t.Fatalf("rate=%d", out.MarginalRateMilliPct)
	}
	if out.TotalCents != 17_192 {
		t.Fatalf("total=%d", out.TotalCents)
	}
}

func TestEngineFederal2025Biweekly(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	in := Input{
		GrossPayCents:     400_000,
		PayPeriodsPerYear: 26,
		FilingStatus:      FilingSingle,
	}
	out, err := eng.Compute(JurisdictionFederal, 2025, in)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	// $15,000 deduction / 26 = $576.92; taxable $3,423.08; annualized
	// $89,000.08 lands in the 22% band.
	if out.TaxableWagesCents != 342_308 {
		t.Fatalf("taxable=%d", out.TaxableWagesCents)
	}
	if out.MarginalRateMilliPct != 22_000 {
		t.Fatalf("rate=%d", out.MarginalRateMilliPct)
	}
	if out.IncomeTaxCents != 55_746 {
		t.Fatalf("income=%d", out.IncomeTaxCents)
	}
	if out.SocialSecurityCents != 24_800 {
		t.Fatalf("ss=%d", out.SocialSecurityCents)
	}
	if out.MedicareCents != 5_800 {
		t.Fatalf("medicare=%d", out.MedicareCents)
	}
	if out.TotalCents != 55_746+24_800+5_800 {
		t.Fatalf("total=%d", out.TotalCents)
	}
}

func TestEngineAdditionalMedicare(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	// $520,000/year biweekly: $20,000 gross per period, annualized well past
	// the $200,000 additional-medicare threshold.
	in := Input{
		GrossPayCents:     2_000_000,
		PayPeriodsPerYear: 26,
		FilingStatus:      FilingSingle,
	}
	out, err := eng.Compute(JurisdictionFederal, 2025, in)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	base := mulRateRoundHalfUpCents(2_000_000, 1_450)
	surtaxAnnual := mulRateRoundHalfUpCents(52_000_000-20_000_000, 900)
	want := base + divRoundHalfUpCents(surtaxAnnual, 26)
	if out.MedicareCents != want {
		t.Fatalf("medicare=%d want=%d", out.MedicareCents, want)
	}
}

func TestEngineSocialSecurityWageBase(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	t.Run("past the cap", func(t *testing.T) {
		in := Input{
			GrossPayCents:      500_000,
			PayPeriodsPerYear:  26,
			FilingStatus:       FilingSingle,
			YTDGrossWagesCents: 17_610_000,
		}
		out, err := eng.Compute(JurisdictionFederal, 2025, in)
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		if out.SocialSecurityCents != 0 {
			t.Fatalf("ss=%d", out.SocialSecurityCents)
		}
	})

	t.Run("straddling the cap", func(t *testing.T) {
		in := Input{
			GrossPayCents:      500_000,
			PayPeriodsPerYear:  26,
			FilingStatus:       FilingSingle,
			YTDGrossWagesCents: 17_610_000 - 200_000,
		}
		out, err := eng.Compute(JurisdictionFederal, 2025, in)
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		if want := mulRateRoundHalfUpCents(200_000, 6_200); out.SocialSecurityCents != want {
			t.Fatalf("ss=%d want=%d", out.SocialSecurityCents, want)
		}
	})
}

func TestEngineCapOrderIndependence(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	compute := func(gross, ytd int64) int64 {
		out, err := eng.Compute("CA", 2025, Input{
			GrossPayCents:      gross,
			PayPeriodsPerYear:  26,
			FilingStatus:       FilingSingle,
			YTDGrossWagesCents: ytd,
		})
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		return out.SDICents
	}

	// Wages crossing the SDI base split over two periods withhold the same
	// as one combined period, within a cent of rounding.
	ytd := int64(15_316_400 - 300_000)
	split := compute(200_000, ytd) + compute(200_000, ytd+200_000)
	combined := compute(400_000, ytd)
	if diff := split - combined; diff < -1 || diff > 1 {
		t.Fatalf("split=%d combined=%d", split, combined)
	}
}

func TestEngineNoIncomeTaxState(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	out, err := eng.Compute("TX", 2025, Input{
		GrossPayCents:     400_000,
		PayPeriodsPerYear: 26,
		FilingStatus:      FilingSingle,
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if out.IncomeTaxCents != 0 || out.TotalCents != 0 {
		t.Fatalf("out=%+v", out)
	}
}

func TestEngineFilingStatusFallback(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	in := Input{
		GrossPayCents:     600_000,
		PayPeriodsPerYear: 24,
	}
	in.FilingStatus = FilingSingle
	single, err := eng.Compute("CA", 2025, in)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	in.FilingStatus = FilingMarriedSeparately
	separate, err := eng.Compute("CA", 2025, in)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if single != separate {
		t.Fatalf("single=%+v separate=%+v", single, separate)
	}
}

func TestEngineRecomputeIsIdentical(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	in := Input{
		GrossPayCents:     733_333,
		PayPeriodsPerYear: 26,
		FilingStatus:      FilingMarriedJointly,
		Allowances:        2,
	}
	for _, code := range []string{JurisdictionFederal, "CA", "NJ", "PA", "TX", "OH"} {
		a, err := eng.Compute(code, 2025, in)
		if err != nil {
			t.Fatalf("%s err=%v", code, err)
		}
		b, err := eng.Compute(code, 2025, in)
		if err != nil {
			t.Fatalf("%s err=%v", code, err)
		}
		if a != b {
			t.Fatalf("%s a=%+v b=%+v", code, a, b)
		}
	}
}

func TestEngineUnsupportedJurisdiction(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	_, err = eng.Compute("ZZ", 2025, Input{GrossPayCents: 1000, PayPeriodsPerYear: 26})
	var unsupported *UnsupportedError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err=%v", err)
	}
	if unsupported.Jurisdiction != "ZZ" || unsupported.Year != 2025 {
		t.Fatalf("unsupported=%+v", unsupported)
	}

	if _, err := eng.Compute("CA", 1999, Input{}); err == nil {
		t.Fatalf("expected error for unsupported year")
	}

	if !eng.Supports("ca", 2025) {
		t.Fatalf("expected lowercase code to resolve")
	}
}

func TestEngineEveryStateRegistered(t *testing.T) {
	eng, err := NewEngine()
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	codes := []string{
		"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC", "FL", "GA",
		"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA",
		"MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY",
		"NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX",
		"UT", "VT", "VA", "WA", "WV", "WI", "WY",
	}
	for _, code := range codes {
		if !eng.Supports(code, 2025) {
			t.Fatalf("missing %s", code)
		}
	}
	if !eng.Supports(JurisdictionFederal, 2025) {
		t.Fatalf("missing federal")
	}
}

func TestRounding(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		rate   int64
		want   int64
	}{
		{"exact", 100_000, 5_000, 5_000},
		{"round up at half", 10, 5_000, 1},
		{"round down below half", 9, 5_000, 0},
		{"zero amount", 0, 5_000, 0},
		{"zero rate", 100, 0, 0},
		{"negative clamps", -100, 5_000, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := mulRateRoundHalfUpCents(tc.amount, tc.rate); got != tc.want {
				t.Fatalf("got=%d", got)
			}
		})
	}

	if got := divRoundHalfUpCents(1_460_000, 26); got != 56_154 {
		t.Fatalf("div got=%d", got)
	}
	if got := divRoundHalfUpCents(3, 2); got != 2 {
		t.Fatalf("div got=%d", got)
	}
}
