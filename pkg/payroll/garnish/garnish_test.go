package garnish

import "testing"

func TestApplyFixedAmountUnderCeiling(t *testing.T) {
	// Disposable $3,000, one fixed $500 order: ceiling $750, full deduction.
	out := Apply(300_000, []Garnishment{
		{ID: "g1", Type: "CREDITOR", AmountCents: 50_000, Priority: 1},
	}, DefaultCeilingPolicy())

	if out.TotalDeductionCents != 50_000 {
		t.Fatalf("total=%d", out.TotalDeductionCents)
	}
	if len(out.Details) != 1 || out.Details[0].GarnishmentID != "g1" || out.Details[0].AmountCents != 50_000 {
		t.Fatalf("details=%+v", out.Details)
	}
}

func TestApplyCeilingClamp(t *testing.T) {
	out := Apply(300_000, []Garnishment{
		{ID: "g1", Type: "CREDITOR", AmountCents: 200_000, Priority: 1},
	}, DefaultCeilingPolicy())

	if out.TotalDeductionCents != 75_000 {
		t.Fatalf("total=%d", out.TotalDeductionCents)
	}
}

func TestApplyPriorityOrder(t *testing.T) {
	out := Apply(300_000, []Garnishment{
		{ID: "low", Type: "CREDITOR", AmountCents: 60_000, Priority: 5},
		{ID: "high", Type: "CHILD_SUPPORT", AmountCents: 50_000, Priority: 1},
	}, DefaultCeilingPolicy())

	// $750 ceiling: high priority takes $500, low priority the $250 left.
	if out.TotalDeductionCents != 75_000 {
		t.Fatalf("total=%d", out.TotalDeductionCents)
	}
	if len(out.Details) != 2 {
		t.Fatalf("details=%+v", out.Details)
	}
	if out.Details[0].GarnishmentID != "high" || out.Details[0].AmountCents != 50_000 {
		t.Fatalf("details[0]=%+v", out.Details[0])
	}
	if out.Details[1].GarnishmentID != "low" || out.Details[1].AmountCents != 25_000 {
		t.Fatalf("details[1]=%+v", out.Details[1])
	}
}

func TestApplyPercentBasis(t *testing.T) {
	out := Apply(300_000, []Garnishment{
		{ID: "g1", Type: "CREDITOR", PercentMilliPct: 10_000, Priority: 1},
	}, DefaultCeilingPolicy())

	if out.TotalDeductionCents != 30_000 {
		t.Fatalf("total=%d", out.TotalDeductionCents)
	}
}

func TestApplyBalanceClamp(t *testing.T) {
	t.Run("remaining balance caps the deduction", func(t *testing.T) {
		out := Apply(300_000, []Garnishment{
			{ID: "g1", Type: "CREDITOR", AmountCents: 50_000, Priority: 1, TotalOwedCents: 120_000, TotalPaidCents: 100_000},
		}, DefaultCeilingPolicy())
		if out.TotalDeductionCents != 20_000 {
			t.Fatalf("total=%d", out.TotalDeductionCents)
		}
	})

	t.Run("paid off contributes nothing", func(t *testing.T) {
		out := Apply(300_000, []Garnishment{
			{ID: "g1", Type: "CREDITOR", AmountCents: 50_000, Priority: 1, TotalOwedCents: 100_000, TotalPaidCents: 100_000},
		}, DefaultCeilingPolicy())
		if out.TotalDeductionCents != 0 || len(out.Details) != 0 {
			t.Fatalf("out=%+v", out)
		}
	})
}

func TestApplyCeilingInvariant(t *testing.T) {
	garnishments := []Garnishment{
		{ID: "a", Type: "CHILD_SUPPORT", AmountCents: 90_000, Priority: 1},
		{ID: "b", Type: "CREDITOR", PercentMilliPct: 15_000, Priority: 2},
		{ID: "c", Type: "TAX_LEVY", AmountCents: 40_000, Priority: 3},
	}
	for _, disposable := range []int64{0, 1, 99, 10_000, 123_457, 300_000, 1_000_000} {
		out := Apply(disposable, garnishments, DefaultCeilingPolicy())
		ceiling := mulMilliPctRoundHalfUp(disposable, 25_000)
		if out.TotalDeductionCents > ceiling {
			t.Fatalf("disposable=%d total=%d ceiling=%d", disposable, out.TotalDeductionCents, ceiling)
		}
	}
}

func TestApplyPerTypeCeiling(t *testing.T) {
	policy := DefaultCeilingPolicy()
	policy.PerTypeMilliPct = map[string]int64{"CHILD_SUPPORT": 50_000}

	out := Apply(300_000, []Garnishment{
		{ID: "cs", Type: "CHILD_SUPPORT", AmountCents: 140_000, Priority: 1},
		{ID: "cr", Type: "CREDITOR", AmountCents: 50_000, Priority: 2},
	}, policy)

	// Child support may take up to 50% ($1,500); the creditor's 25% ceiling
	// is already consumed by then.
	if out.TotalDeductionCents != 140_000 {
		t.Fatalf("total=%d", out.TotalDeductionCents)
	}
	if len(out.Details) != 1 || out.Details[0].GarnishmentID != "cs" {
		t.Fatalf("details=%+v", out.Details)
	}
}

func TestApplyZeroDisposable(t *testing.T) {
	out := Apply(0, []Garnishment{{ID: "g1", AmountCents: 100, Priority: 1}}, DefaultCeilingPolicy())
	if out.TotalDeductionCents != 0 || out.Details != nil {
		t.Fatalf("out=%+v", out)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	garnishments := []Garnishment{
		{ID: "b", Type: "CREDITOR", AmountCents: 10_000, Priority: 2},
		{ID: "a", Type: "CREDITOR", AmountCents: 10_000, Priority: 1},
	}
	Apply(300_000, garnishments, DefaultCeilingPolicy())
	if garnishments[0].ID != "b" || garnishments[1].ID != "a" {
		t.Fatalf("input reordered: %+v", garnishments)
	}
}
