package tax

// Tax year 2025 state tables. Bracket thresholds are annual taxable wages in
// cents; rates are milli-percent. States that publish only one bracket table
// fall back to SINGLE for every status via statusTable.

func dedSJ(single, joint int64) map[FilingStatus]int64 {
	return map[FilingStatus]int64{
		FilingSingle:         single,
		FilingMarriedJointly: joint,
	}
}

func singleBands(specs []bandSpec) map[FilingStatus][]band {
	return map[FilingStatus][]band{FilingSingle: sealBands(specs)}
}

func noIncomeTaxStates2025() map[string]Rule {
	out := map[string]Rule{}
	for _, code := range []string{"AK", "FL", "NV", "NH", "SD", "TN", "TX", "WA", "WY"} {
		out[code] = &jurisdictionRule{code: code}
	}
	return out
}

func flatStates2025() map[string]Rule {
	out := map[string]Rule{}
	add := func(r *jurisdictionRule) { out[r.code] = r }

	add(&jurisdictionRule{code: "AZ", flatRateMilliPct: 2_500, deductionCents: dedSJ(1_500_000, 3_000_000)})
	add(&jurisdictionRule{code: "CO", flatRateMilliPct: 4_400, deductionCents: dedSJ(1_500_000, 3_000_000)})
	add(&jurisdictionRule{code: "GA", flatRateMilliPct: 5_390, deductionCents: dedSJ(1_200_000, 2_400_000)})
	add(&jurisdictionRule{code: "IA", flatRateMilliPct: 3_800})
	add(&jurisdictionRule{code: "ID", flatRateMilliPct: 5_695, deductionCents: dedSJ(1_500_000, 3_000_000)})
	add(&jurisdictionRule{code: "IL", flatRateMilliPct: 4_950, exemptionPerAllowanceCents: 277_500})
	add(&jurisdictionRule{code: "IN", flatRateMilliPct: 3_000, exemptionPerAllowanceCents: 100_000})
	add(&jurisdictionRule{code: "KY", flatRateMilliPct: 4_000, deductionCents: dedSJ(327_000, 327_000)})
	add(&jurisdictionRule{code: "LA", flatRateMilliPct: 3_000, deductionCents: dedSJ(1_250_000, 2_500_000)})
	add(&jurisdictionRule{code: "MA", flatRateMilliPct: 5_000, deductionCents: dedSJ(440_000, 880_000)})
	add(&jurisdictionRule{code: "MI", flatRateMilliPct: 4_250, exemptionPerAllowanceCents: 580_000})
	add(&jurisdictionRule{code: "MS", flatRateMilliPct: 4_400, deductionCents: dedSJ(1_230_000, 2_460_000)})
	add(&jurisdictionRule{code: "NC", flatRateMilliPct: 4_250, deductionCents: dedSJ(1_275_000, 2_550_000)})
	add(&jurisdictionRule{code: "PA", flatRateMilliPct: 3_070})
	add(&jurisdictionRule{code: "UT", flatRateMilliPct: 4_550, creditCents: dedSJ(87_600, 175_200)})

	return out
}

func progressiveStates2025() map[string]Rule {
	out := map[string]Rule{}
	add := func(r *jurisdictionRule) { out[r.code] = r }

	add(&jurisdictionRule{
		code:           "AL",
		deductionCents: dedSJ(300_000, 850_000),
		bands: singleBands([]bandSpec{
			{50_000, 2_000},
			{300_000, 4_000},
			{0, 5_000},
		}),
	})
	add(&jurisdictionRule{
		code:           "AR",
		deductionCents: dedSJ(234_000, 468_000),
		bands: singleBands([]bandSpec{
			{510_000, 2_000},
			{1_030_000, 3_000},
			{0, 3_900},
		}),
	})
	add(&jurisdictionRule{
		code:           "CA",
		deductionCents: dedSJ(554_000, 1_108_000),
		bands: map[FilingStatus][]band{
			FilingSingle: sealBands([]bandSpec{
				{1_075_600, 1_000},
				{2_549_900, 2_000},
				{4_024_500, 4_000},
				{5_586_600, 6_000},
				{7_060_600, 8_000},
				{36_065_900, 9_300},
				{43_278_700, 10_300},
				{72_131_400, 11_300},
				{0, 12_300},
			}),
			FilingMarriedJointly: sealBands([]bandSpec{
				{2_151_200, 1_000},
				{5_099_800, 2_000},
				{8_049_000, 4_000},
				{11_173_200, 6_000},
				{14_121_200, 8_000},
				{72_131_800, 9_300},
				{86_557_400, 10_300},
				{144_262_800, 11_300},
				{0, 12_300},
			}),
		},
		sdi: &cappedContribution{RateMilliPct: 1_100, WageBaseCents: 15_316_400},
	})
	add(&jurisdictionRule{
		code:                       "CT",
		exemptionPerAllowanceCents: 1_500_000,
		bands: singleBands([]bandSpec{
			{1_000_000, 2_000},
			{5_000_000, 4_500},
			{10_000_000, 5_500},
			{20_000_000, 6_000},
			{25_000_000, 6_500},
			{50_000_000, 6_900},
			{0, 6_990},
		}),
	})
	add(&jurisdictionRule{
		code:           "DC",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{1_000_000, 4_000},
			{4_000_000, 6_000},
			{6_000_000, 6_500},
			{25_000_000, 8_500},
			{50_000_000, 9_250},
			{100_000_000, 9_750},
			{0, 10_750},
		}),
	})
	add(&jurisdictionRule{
		code:           "DE",
		deductionCents: dedSJ(325_000, 650_000),
		bands: singleBands([]bandSpec{
			{200_000, 0},
			{500_000, 2_200},
			{1_000_000, 3_900},
			{2_000_000, 4_800},
			{2_500_000, 5_200},
			{6_000_000, 5_550},
			{0, 6_600},
		}),
	})
	add(&jurisdictionRule{
		code:           "HI",
		deductionCents: dedSJ(440_000, 880_000),
		bands: singleBands([]bandSpec{
			{960_000, 1_400},
			{1_440_000, 3_200},
			{1_920_000, 5_500},
			{2_400_000, 6_400},
			{3_600_000, 6_800},
			{4_800_000, 7_200},
			{12_500_000, 7_600},
			{17_500_000, 7_900},
			{0, 8_250},
		}),
	})
	add(&jurisdictionRule{
		code:           "KS",
		deductionCents: dedSJ(360_500, 824_000),
		bands: singleBands([]bandSpec{
			{2_300_000, 5_200},
			{0, 5_580},
		}),
	})
	add(&jurisdictionRule{
		code:           "MD",
		deductionCents: dedSJ(270_000, 540_000),
		bands: singleBands([]bandSpec{
			{100_000, 2_000},
			{200_000, 3_000},
			{300_000, 4_000},
			{10_000_000, 4_750},
			{12_500_000, 5_000},
			{15_000_000, 5_250},
			{25_000_000, 5_500},
			{0, 5_750},
		}),
	})
	add(&jurisdictionRule{
		code:           "ME",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{2_680_000, 5_800},
			{6_345_000, 6_750},
			{0, 7_150},
		}),
	})
	add(&jurisdictionRule{
		code:           "MN",
		deductionCents: dedSJ(1_495_000, 2_990_000),
		bands: singleBands([]bandSpec{
			{3_257_000, 5_350},
			{10_699_000, 6_800},
			{19_863_000, 7_850},
			{0, 9_850},
		}),
	})
	add(&jurisdictionRule{
		code:           "MO",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{127_300, 2_000},
			{254_600, 2_500},
			{381_900, 3_000},
			{509_200, 3_500},
			{636_500, 4_000},
			{763_800, 4_500},
			{0, 4_700},
		}),
	})
	add(&jurisdictionRule{
		code:           "MT",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{2_110_000, 4_700},
			{0, 5_900},
		}),
	})
	add(&jurisdictionRule{
		code:           "NE",
		deductionCents: dedSJ(835_000, 1_670_000),
		bands: singleBands([]bandSpec{
			{403_000, 2_460},
			{2_412_000, 3_510},
			{3_887_000, 5_010},
			{0, 5_200},
		}),
	})
	add(&jurisdictionRule{
		code:                       "NJ",
		exemptionPerAllowanceCents: 100_000,
		bands: map[FilingStatus][]band{
			FilingSingle: sealBands([]bandSpec{
				{2_000_000, 1_400},
				{3_500_000, 1_750},
				{4_000_000, 3_500},
				{7_500_000, 5_525},
				{50_000_000, 6_370},
				{100_000_000, 8_970},
				{0, 10_750},
			}),
			FilingMarriedJointly: sealBands([]bandSpec{
				{2_000_000, 1_400},
				{5_000_000, 1_750},
				{7_000_000, 2_450},
				{8_000_000, 3_500},
				{15_000_000, 5_525},
				{50_000_000, 6_370},
				{100_000_000, 8_970},
				{0, 10_750},
			}),
		},
		sdi: &cappedContribution{RateMilliPct: 230, WageBaseCents: 16_540_000},
		sui: &cappedContribution{RateMilliPct: 425, WageBaseCents: 4_330_000},
	})
	add(&jurisdictionRule{
		code:           "NM",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{550_000, 1_500},
			{1_650_000, 3_200},
			{3_350_000, 4_300},
			{6_650_000, 4_700},
			{21_000_000, 4_900},
			{0, 5_900},
		}),
	})
	add(&jurisdictionRule{
		code:           "NY",
		deductionCents: dedSJ(800_000, 1_605_000),
		bands: singleBands([]bandSpec{
			{850_000, 4_000},
			{1_170_000, 4_500},
			{1_390_000, 5_250},
			{8_065_000, 5_500},
			{21_540_000, 6_000},
			{107_755_000, 6_850},
			{500_000_000, 9_650},
			{2_500_000_000, 10_300},
			{0, 10_900},
		}),
	})
	add(&jurisdictionRule{
		code:           "ND",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{4_847_500, 0},
			{24_482_500, 1_950},
			{0, 2_500},
		}),
	})
	add(&jurisdictionRule{
		code:                       "OH",
		exemptionPerAllowanceCents: 240_000,
		bands: singleBands([]bandSpec{
			{2_605_000, 0},
			{10_000_000, 2_750},
			{0, 3_500},
		}),
	})
	add(&jurisdictionRule{
		code:           "OK",
		deductionCents: dedSJ(635_000, 1_270_000),
		bands: singleBands([]bandSpec{
			{100_000, 250},
			{250_000, 750},
			{375_000, 1_750},
			{490_000, 2_750},
			{720_000, 3_750},
			{0, 4_750},
		}),
	})
	add(&jurisdictionRule{
		code:           "OR",
		deductionCents: dedSJ(280_500, 561_000),
		bands: singleBands([]bandSpec{
			{440_000, 4_750},
			{1_105_000, 6_750},
			{12_500_000, 8_750},
			{0, 9_900},
		}),
	})
	add(&jurisdictionRule{
		code:           "RI",
		deductionCents: dedSJ(1_090_000, 2_180_000),
		bands: singleBands([]bandSpec{
			{7_990_000, 3_750},
			{18_165_000, 4_750},
			{0, 5_990},
		}),
	})
	add(&jurisdictionRule{
		code:           "SC",
		deductionCents: dedSJ(1_500_000, 3_000_000),
		bands: singleBands([]bandSpec{
			{356_000, 0},
			{1_783_000, 3_000},
			{0, 6_200},
		}),
	})
	add(&jurisdictionRule{
		code:           "VA",
		deductionCents: dedSJ(850_000, 1_700_000),
		bands: singleBands([]bandSpec{
			{300_000, 2_000},
			{500_000, 3_000},
			{1_700_000, 5_000},
			{0, 5_750},
		}),
	})
	add(&jurisdictionRule{
		code:           "VT",
		deductionCents: dedSJ(740_000, 1_485_000),
		bands: singleBands([]bandSpec{
			{4_790_000, 3_350},
			{11_600_000, 6_600},
			{24_200_000, 7_600},
			{0, 8_750},
		}),
	})
	add(&jurisdictionRule{
		code: "WV",
		bands: singleBands([]bandSpec{
			{1_000_000, 2_360},
			{2_500_000, 3_150},
			{4_000_000, 3_540},
			{6_000_000, 4_720},
			{0, 5_120},
		}),
	})
	add(&jurisdictionRule{
		code:           "WI",
		deductionCents: dedSJ(1_323_000, 2_449_000),
		bands: singleBands([]bandSpec{
			{1_468_000, 3_500},
			{2_937_000, 4_400},
			{32_329_000, 5_300},
			{0, 7_650},
		}),
	})

	return out
}

func stateRules2025() map[string]Rule {
	out := map[string]Rule{}
	for code, r := range noIncomeTaxStates2025() {
		out[code] = r
	}
	for code, r := range flatStates2025() {
		out[code] = r
	}
	for code, r := range progressiveStates2025() {
		out[code] = r
	}
	return out
}
