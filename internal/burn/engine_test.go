package burn

import (
	"math"
	"testing"
	"time"

	"github.com/nurpe/contract-tracker/internal/clock"
	"github.com/nurpe/contract-tracker/internal/model"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const actor = "tester"

func newContract(t *testing.T, start, end time.Time, total, funded float64) *model.Contract {
	t.Helper()
	c, err := model.NewContract(model.NewContractInput{
		Number:          "C-100",
		CustomerName:    "Agency",
		PrimeContractor: "Prime Co",
		Type:            model.ContractTypeTimeAndMaterials,
		StartDate:       start,
		EndDate:         end,
		TotalValue:      total,
	}, actor, start)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	if funded > 0 {
		if _, err := c.UpdateFunding(model.UpdateFundingInput{FundedValue: funded, Justification: "initial"}, actor, start); err != nil {
			t.Fatalf("fund contract: %v", err)
		}
	}
	return c
}

// resource with a burdened cost of exactly 100/hr.
func newResource(t *testing.T) *model.Resource {
	t.Helper()
	r, err := model.NewResource(model.NewResourceInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Category:  model.ResourceCategoryFixedPrice,
		PayRate:   100,
		StartDate: testNow.AddDate(-1, 0, 0),
	}, actor, testNow)
	if err != nil {
		t.Fatalf("new resource: %v", err)
	}
	return r
}

func assign(t *testing.T, c *model.Contract, r *model.Resource, pct float64, hours *float64) {
	t.Helper()
	if _, err := c.AssignResource(model.AssignInput{
		ResourceID:  r.ID,
		Percentage:  pct,
		StartDate:   testNow,
		AnnualHours: hours,
	}, actor, testNow); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestMonthlyBurnSingleFullTimeResource(t *testing.T) {
	c := newContract(t, testNow, testNow.AddDate(3, 0, 0), 1_000_000, 500_000)
	r := newResource(t)
	hours := 1912.0
	assign(t, c, r, 100, &hours)

	engine := NewEngine(clock.Fixed(testNow), Options{})
	monthly := engine.MonthlyBurn(c, IndexResources([]*model.Resource{r}))
	if !approx(monthly, 15933.33) {
		t.Fatalf("expected monthly burn ~15933.33, got %v", monthly)
	}
	if got := engine.QuarterlyBurn(c, IndexResources([]*model.Resource{r})); !approx(got, monthly*3) {
		t.Fatalf("expected quarterly = 3x monthly, got %v", got)
	}
	if got := engine.AnnualBurn(c, IndexResources([]*model.Resource{r})); !approx(got, monthly*12) {
		t.Fatalf("expected annual = 12x monthly, got %v", got)
	}
}

func TestAnalyzeNoElapsedTime(t *testing.T) {
	c := newContract(t, testNow, testNow.AddDate(3, 0, 0), 1_000_000, 500_000)
	r := newResource(t)
	hours := 1912.0
	assign(t, c, r, 100, &hours)

	engine := NewEngine(clock.Fixed(testNow), Options{})
	a := engine.Analyze(c, IndexResources([]*model.Resource{r}))

	if a.RemainingFunds != 500_000 {
		t.Fatalf("expected remaining 500000, got %v", a.RemainingFunds)
	}
	if a.MonthsUntilDepleted == nil || *a.MonthsUntilDepleted != 31 {
		t.Fatalf("expected 31 months until depleted, got %v", a.MonthsUntilDepleted)
	}
	if a.WarningLevel != WarningNone {
		t.Fatalf("expected NONE, got %s", a.WarningLevel)
	}
	if !a.WillExceedFunding {
		t.Fatalf("expected depletion before a 36 month end date")
	}
	if a.Shortfall <= 0 {
		t.Fatalf("expected positive shortfall, got %v", a.Shortfall)
	}
}

func TestAnalyzeLowFundingIsCritical(t *testing.T) {
	c := newContract(t, testNow, testNow.AddDate(3, 0, 0), 1_000_000, 500_000)
	r := newResource(t)
	hours := 1912.0
	assign(t, c, r, 100, &hours)
	if _, err := c.UpdateFunding(model.UpdateFundingInput{FundedValue: 30_000, Justification: "descope"}, actor, testNow); err != nil {
		t.Fatalf("update funding: %v", err)
	}

	engine := NewEngine(clock.Fixed(testNow), Options{})
	a := engine.Analyze(c, IndexResources([]*model.Resource{r}))
	if a.MonthsUntilDepleted == nil || *a.MonthsUntilDepleted != 1 {
		t.Fatalf("expected 1 month until depleted, got %v", a.MonthsUntilDepleted)
	}
	if a.WarningLevel != WarningCritical {
		t.Fatalf("expected CRITICAL, got %s", a.WarningLevel)
	}
}

func TestAnalyzeNoBurnIsUnbounded(t *testing.T) {
	c := newContract(t, testNow, testNow.AddDate(1, 0, 0), 100_000, 10)
	engine := NewEngine(clock.Fixed(testNow), Options{})
	a := engine.Analyze(c, nil)
	if a.MonthsUntilDepleted != nil || a.ProjectedDepletionDate != nil {
		t.Fatalf("expected unbounded depletion, got %v", a.MonthsUntilDepleted)
	}
	if a.WarningLevel != WarningNone || a.WillExceedFunding {
		t.Fatalf("expected no risk, got %+v", a)
	}
	if a.MonthsUntilEnd != 12 {
		t.Fatalf("expected 12 months until end, got %d", a.MonthsUntilEnd)
	}
}

func TestAnalyzeNegligibleBurnIsUnbounded(t *testing.T) {
	c := newContract(t, testNow, testNow.AddDate(1, 0, 0), 1_000_000, 500_000)
	r := newResource(t)
	tiny := 1e-15
	if _, err := c.AssignResource(model.AssignInput{
		ResourceID:         r.ID,
		Percentage:         100,
		StartDate:          testNow,
		FixedMonthlyAmount: &tiny,
	}, actor, testNow); err != nil {
		t.Fatalf("assign: %v", err)
	}

	engine := NewEngine(clock.Fixed(testNow), Options{})
	a := engine.Analyze(c, IndexResources([]*model.Resource{r}))
	if a.MonthlyBurn <= 0 {
		t.Fatalf("expected positive burn, got %v", a.MonthlyBurn)
	}
	if a.MonthsUntilDepleted != nil || a.ProjectedDepletionDate != nil {
		t.Fatalf("expected unbounded runway, got %v months", *a.MonthsUntilDepleted)
	}
	if a.WarningLevel != WarningNone || a.WillExceedFunding {
		t.Fatalf("expected no risk, got %+v", a)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	start := testNow.AddDate(0, -4, 0)
	c := newContract(t, start, testNow.AddDate(1, 0, 0), 1_000_000, 200_000)
	r := newResource(t)
	assign(t, c, r, 50, nil)

	engine := NewEngine(clock.Fixed(testNow), Options{})
	idx := IndexResources([]*model.Resource{r})
	first := engine.Analyze(c, idx)
	second := engine.Analyze(c, idx)
	if first.MonthlyBurn != second.MonthlyBurn ||
		first.RemainingFunds != second.RemainingFunds ||
		*first.MonthsUntilDepleted != *second.MonthsUntilDepleted ||
		!first.ProjectedDepletionDate.Equal(*second.ProjectedDepletionDate) ||
		first.WarningLevel != second.WarningLevel {
		t.Fatalf("expected identical analyses, got %+v and %+v", first, second)
	}
}

func TestTotalBurnedClamping(t *testing.T) {
	r := newResource(t)
	hours := 1200.0
	engine := NewEngine(clock.Fixed(testNow), Options{})

	t.Run("not started", func(t *testing.T) {
		c := newContract(t, testNow.AddDate(0, 1, 0), testNow.AddDate(1, 0, 0), 100_000, 0)
		if _, err := c.AssignResource(model.AssignInput{ResourceID: r.ID, Percentage: 100, AnnualHours: &hours, StartDate: testNow.AddDate(0, 1, 0)}, actor, testNow); err != nil {
			t.Fatalf("assign: %v", err)
		}
		if got := engine.TotalBurned(c, IndexResources([]*model.Resource{r})); got != 0 {
			t.Fatalf("expected zero burn before start, got %v", got)
		}
	})

	t.Run("capped at end date", func(t *testing.T) {
		start := testNow.AddDate(0, 0, -120)
		end := testNow.AddDate(0, 0, -60)
		c := newContract(t, start, end, 100_000, 50_000)
		assign(t, c, r, 100, &hours)
		monthly := engine.MonthlyBurn(c, IndexResources([]*model.Resource{r}))
		got := engine.TotalBurned(c, IndexResources([]*model.Resource{r}))
		if !approx(got, monthly*2) {
			t.Fatalf("expected two months of burn, got %v (monthly %v)", got, monthly)
		}
	})
}

func TestAllocationMonthlyCost(t *testing.T) {
	engine := NewEngine(clock.Fixed(testNow), Options{})
	fixed := 4200.0
	w2, err := model.NewResource(model.NewResourceInput{
		FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		Category: model.ResourceCategoryW2Internal, PayRate: 50,
	}, actor, testNow)
	if err != nil {
		t.Fatalf("new resource: %v", err)
	}

	cases := []struct {
		name  string
		alloc model.Allocation
		res   *model.Resource
		want  float64
	}{
		{
			name:  "fixed amount wins",
			alloc: model.Allocation{AnnualHours: 1912, Percentage: 100, FixedMonthlyAmount: &fixed},
			res:   w2,
			want:  4200,
		},
		{
			name:  "burdened w2 cost",
			alloc: model.Allocation{AnnualHours: 1200, Percentage: 50},
			res:   w2,
			want:  (1200.0 / 12) * 50 * 2.28 * 0.5,
		},
		{
			name:  "unknown resource falls back",
			alloc: model.Allocation{AnnualHours: 1200, Percentage: 100},
			res:   nil,
			want:  (1200.0 / 12) * DefaultHourlyRate,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.AllocationMonthlyCost(tc.alloc, tc.res); !approx(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestWarningLevelFor(t *testing.T) {
	months := func(v int) *int { return &v }
	cases := []struct {
		in   *int
		want WarningLevel
	}{
		{nil, WarningNone},
		{months(-3), WarningCritical},
		{months(2), WarningCritical},
		{months(3), WarningHigh},
		{months(6), WarningMedium},
		{months(12), WarningLow},
		{months(13), WarningNone},
	}
	for _, tc := range cases {
		if got := WarningLevelFor(tc.in); got != tc.want {
			t.Fatalf("WarningLevelFor(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestWarningLevelMonotonicInRemainingFunds(t *testing.T) {
	r := newResource(t)
	hours := 1912.0
	engine := NewEngine(clock.Fixed(testNow), Options{})
	idx := IndexResources([]*model.Resource{r})

	prev := -1
	for funded := 900_000.0; funded >= 0; funded -= 7_500 {
		c := newContract(t, testNow, testNow.AddDate(5, 0, 0), 1_000_000, 0)
		if funded > 0 {
			if _, err := c.UpdateFunding(model.UpdateFundingInput{FundedValue: funded, Justification: "step"}, actor, testNow); err != nil {
				t.Fatalf("fund: %v", err)
			}
		}
		assign(t, c, r, 100, &hours)
		sev := engine.Analyze(c, idx).WarningLevel.Severity()
		if sev < prev {
			t.Fatalf("severity decreased from %d to %d at funded=%v", prev, sev, funded)
		}
		prev = sev
	}
}

func TestBillRateResolution(t *testing.T) {
	engine := NewEngine(clock.Fixed(testNow), Options{DefaultHourlyRate: 140})
	lcat, err := model.NewLCAT(model.NewLCATInput{Code: "SE2", Name: "Engineer II"}, actor, testNow)
	if err != nil {
		t.Fatalf("new lcat: %v", err)
	}
	c := newContract(t, testNow.AddDate(0, -1, 0), testNow.AddDate(1, 0, 0), 100_000, 0)

	if got := engine.BillRate(c, nil); got != 140 {
		t.Fatalf("expected default for missing lcat, got %v", got)
	}
	if got := engine.BillRate(c, lcat); got != 140 {
		t.Fatalf("expected default for lcat without rates, got %v", got)
	}
	if _, err := lcat.AddRate(model.RateKindDefaultBill, 175, testNow.AddDate(0, -2, 0), "", actor, testNow); err != nil {
		t.Fatalf("add rate: %v", err)
	}
	if got := engine.BillRate(c, lcat); got != 175 {
		t.Fatalf("expected lcat default bill rate, got %v", got)
	}
	if _, err := c.AddRateOverride(lcat.ID, 190, testNow.AddDate(0, 0, -1), "negotiated", actor, testNow); err != nil {
		t.Fatalf("add override: %v", err)
	}
	if got := engine.BillRate(c, lcat); got != 190 {
		t.Fatalf("expected contract override, got %v", got)
	}
	if got := engine.BillRate(nil, lcat); got != 175 {
		t.Fatalf("expected lcat rate without contract, got %v", got)
	}
}

func TestReportBreaksDownActiveAllocations(t *testing.T) {
	c := newContract(t, testNow, testNow.AddDate(2, 0, 0), 1_000_000, 400_000)
	big := newResource(t)
	hours := 1200.0
	assign(t, c, big, 100, &hours)

	l, err := model.NewLCAT(model.NewLCATInput{Code: "DEV2", Name: "Developer II"}, actor, testNow)
	if err != nil {
		t.Fatalf("new lcat: %v", err)
	}
	if _, err := l.AddRate(model.RateKindDefaultBill, 140, testNow.AddDate(-1, 0, 0), "", actor, testNow); err != nil {
		t.Fatalf("add rate: %v", err)
	}
	small, err := model.NewResource(model.NewResourceInput{
		FirstName: "Alan",
		LastName:  "Turing",
		Email:     "alan@example.com",
		Category:  model.ResourceCategoryFixedPrice,
		LCATID:    &l.ID,
		PayRate:   50,
		StartDate: testNow.AddDate(-1, 0, 0),
	}, actor, testNow)
	if err != nil {
		t.Fatalf("new resource: %v", err)
	}
	assign(t, c, small, 50, &hours)

	engine := NewEngine(clock.Fixed(testNow), Options{})
	resources := IndexResources([]*model.Resource{big, small})
	report := engine.Report(c, resources, IndexLCATs([]*model.LCAT{l}))

	if len(report.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(report.Lines))
	}
	first, second := report.Lines[0], report.Lines[1]
	if first.ResourceID != big.ID || !approx(first.MonthlyCost, 10_000) {
		t.Fatalf("expected costliest line first, got %+v", first)
	}
	if second.LCAT != "DEV2" || second.BillRate != 140 || !approx(second.MonthlyCost, 2_500) {
		t.Fatalf("unexpected second line: %+v", second)
	}
	if first.BillRate != DefaultHourlyRate || first.ResourceName != "Ada Lovelace" {
		t.Fatalf("resource without lcat should bill the default rate: %+v", first)
	}
	if !approx(report.Analysis.MonthlyBurn, 12_500) {
		t.Fatalf("analysis does not match lines: %v", report.Analysis.MonthlyBurn)
	}
}
