package portfolio

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/clock"
	"github.com/nurpe/contract-tracker/internal/model"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const actor = "tester"

func newAggregator(log zerolog.Logger, workers int) *Aggregator {
	engine := burn.NewEngine(clock.Fixed(testNow), burn.Options{})
	return New(engine, log, Options{Workers: workers})
}

func newContract(t *testing.T, number string, total, funded float64, end time.Time) *model.Contract {
	t.Helper()
	c, err := model.NewContract(model.NewContractInput{
		Number:          number,
		CustomerName:    "Agency",
		PrimeContractor: "Prime Co",
		Type:            model.ContractTypeTimeAndMaterials,
		StartDate:       testNow,
		EndDate:         end,
		TotalValue:      total,
	}, actor, testNow)
	if err != nil {
		t.Fatalf("new contract: %v", err)
	}
	if funded > 0 {
		if _, err := c.UpdateFunding(model.UpdateFundingInput{FundedValue: funded, Justification: "initial"}, actor, testNow); err != nil {
			t.Fatalf("fund: %v", err)
		}
	}
	return c
}

func activeContract(t *testing.T, number string, total, funded float64, end time.Time) *model.Contract {
	t.Helper()
	c := newContract(t, number, total, funded, end)
	if err := c.Activate(actor, testNow); err != nil {
		t.Fatalf("activate: %v", err)
	}
	return c
}

func newLCAT(t *testing.T, code string, billRate float64) *model.LCAT {
	t.Helper()
	l, err := model.NewLCAT(model.NewLCATInput{Code: code, Name: code + " Engineer"}, actor, testNow)
	if err != nil {
		t.Fatalf("new lcat: %v", err)
	}
	if _, err := l.AddRate(model.RateKindDefaultBill, billRate, testNow.AddDate(-1, 0, 0), "", actor, testNow); err != nil {
		t.Fatalf("add bill rate: %v", err)
	}
	return l
}

func newResource(t *testing.T, email string, category model.ResourceCategory, pay float64, lcat *model.LCAT) *model.Resource {
	t.Helper()
	in := model.NewResourceInput{
		FirstName: "Res",
		LastName:  strings.Split(email, "@")[0],
		Email:     email,
		Category:  category,
		PayRate:   pay,
		StartDate: testNow.AddDate(-1, 0, 0),
	}
	if lcat != nil {
		id := lcat.ID
		in.LCATID = &id
	}
	r, err := model.NewResource(in, actor, testNow)
	if err != nil {
		t.Fatalf("new resource: %v", err)
	}
	return r
}

func assign(t *testing.T, c *model.Contract, r *model.Resource, pct float64) {
	t.Helper()
	if _, err := c.AssignResource(model.AssignInput{ResourceID: r.ID, Percentage: pct, StartDate: testNow}, actor, testNow); err != nil {
		t.Fatalf("assign: %v", err)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func threeYears() time.Time { return testNow.AddDate(3, 0, 0) }

func TestDashboardMetricsEmptyPortfolio(t *testing.T) {
	m := newAggregator(zerolog.Nop(), 0).DashboardMetrics(Snapshot{})

	if m.OverallHealth != HealthGood {
		t.Fatalf("expected empty portfolio to be Good, got %s", m.OverallHealth)
	}
	if m.TotalContractValue != 0 || m.ActiveContracts != 0 || m.MonthlyBurnRate != 0 {
		t.Fatalf("expected zero metrics, got %+v", m)
	}
	if !m.CalculatedAt.Equal(testNow) {
		t.Fatalf("expected calculation time from the clock, got %s", m.CalculatedAt)
	}
}

func TestDashboardMetricsTotals(t *testing.T) {
	r := newResource(t, "ada@example.com", model.ResourceCategoryFixedPrice, 100, nil)

	active := activeContract(t, "A-1", 1_000_000, 500_000, threeYears())
	assign(t, active, r, 100)

	draft := newContract(t, "D-1", 200_000, 0, threeYears())

	closed := activeContract(t, "C-1", 300_000, 100_000, threeYears())
	if err := closed.Close(actor, testNow); err != nil {
		t.Fatalf("close: %v", err)
	}

	m := newAggregator(zerolog.Nop(), 2).DashboardMetrics(Snapshot{
		Contracts: []*model.Contract{active, draft, closed},
		Resources: []*model.Resource{r},
	})

	if m.TotalContractValue != 1_500_000 || m.TotalFundedValue != 600_000 {
		t.Fatalf("unexpected totals: %+v", m)
	}
	if m.ActiveContracts != 1 || m.DraftContracts != 1 || m.ClosedContracts != 1 {
		t.Fatalf("unexpected status counts: %+v", m)
	}
	if !approx(m.MonthlyBurnRate, 1912.0/12*100) {
		t.Fatalf("expected monthly burn of the active contract, got %v", m.MonthlyBurnRate)
	}
	if !approx(m.QuarterlyBurnRate, m.MonthlyBurnRate*3) {
		t.Fatalf("quarterly burn should be three months, got %v", m.QuarterlyBurnRate)
	}

	days := float64(int(threeYears().Sub(testNow) / (24 * time.Hour)))
	wantRevenue := 500_000 / (days / 30)
	if !approx(m.ProjectedMonthlyRevenue, wantRevenue) {
		t.Fatalf("expected revenue %v, got %v", wantRevenue, m.ProjectedMonthlyRevenue)
	}
	if !approx(m.ProjectedMonthlyProfit, wantRevenue-100*DefaultMonthlyHours) {
		t.Fatalf("unexpected profit %v", m.ProjectedMonthlyProfit)
	}
	if m.OverallHealth != HealthExcellent {
		t.Fatalf("expected Excellent, got %s", m.OverallHealth)
	}
}

func TestDashboardMetricsCountsCritical(t *testing.T) {
	r := newResource(t, "ada@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	critical := activeContract(t, "CRIT-1", 1_000_000, 30_000, threeYears())
	assign(t, critical, r, 100)

	m := newAggregator(zerolog.Nop(), 0).DashboardMetrics(Snapshot{
		Contracts: []*model.Contract{critical},
		Resources: []*model.Resource{r},
	})
	if m.CriticalContracts != 1 {
		t.Fatalf("expected one critical contract, got %d", m.CriticalContracts)
	}
	if m.OverallHealth != HealthCritical {
		t.Fatalf("expected Critical portfolio, got %s", m.OverallHealth)
	}
}

func TestPortfolioHealthThresholds(t *testing.T) {
	cases := []struct {
		name              string
		critical, warning int
		open              int
		want              PortfolioHealth
	}{
		{"empty", 0, 0, 0, HealthGood},
		{"all healthy", 0, 0, 20, HealthExcellent},
		{"critical over 30%", 4, 0, 10, HealthCritical},
		{"critical over 15%", 2, 0, 10, HealthPoor},
		{"warning over 50%", 0, 6, 10, HealthPoor},
		{"critical over 5%", 1, 0, 10, HealthFair},
		{"warning over 25%", 0, 3, 10, HealthFair},
		{"warning over 10%", 0, 2, 10, HealthGood},
		{"warning at 10%", 0, 1, 10, HealthExcellent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := portfolioHealth(tc.critical, tc.warning, tc.open); got != tc.want {
				t.Fatalf("portfolioHealth(%d, %d, %d) = %s, want %s", tc.critical, tc.warning, tc.open, got, tc.want)
			}
		})
	}
}

func TestHealthCardsSortedBySeverity(t *testing.T) {
	r1 := newResource(t, "one@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	r2 := newResource(t, "two@example.com", model.ResourceCategoryFixedPrice, 100, nil)

	healthy := activeContract(t, "OK-1", 1_000_000, 500_000, threeYears())
	assign(t, healthy, r1, 100)
	critical := activeContract(t, "CRIT-1", 1_000_000, 30_000, threeYears())
	assign(t, critical, r2, 100)
	idle := newContract(t, "IDLE-1", 100_000, 0, threeYears())

	cards := newAggregator(zerolog.Nop(), 0).ContractHealthCards(Snapshot{
		Contracts: []*model.Contract{healthy, idle, critical},
		Resources: []*model.Resource{r1, r2},
	})
	if len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d", len(cards))
	}
	if cards[0].ContractNumber != "CRIT-1" {
		t.Fatalf("expected critical contract first, got %s", cards[0].ContractNumber)
	}
	if cards[2].ContractNumber != "IDLE-1" {
		t.Fatalf("expected unbounded runway last, got %s", cards[2].ContractNumber)
	}

	crit := cards[0]
	if crit.Trend != TrendDeclining {
		t.Fatalf("expected declining trend, got %s", crit.Trend)
	}
	if crit.ResourceCount != 1 || crit.ResourceUtilization != 100 {
		t.Fatalf("unexpected resource stats: %d %v", crit.ResourceCount, crit.ResourceUtilization)
	}
	if !hasPrefix(crit.Alerts, "Critical: funding depletes in 1 months") {
		t.Fatalf("expected critical alert, got %v", crit.Alerts)
	}
	if !hasPrefix(crit.Alerts, "Projected shortfall: $") {
		t.Fatalf("expected shortfall alert, got %v", crit.Alerts)
	}
	if !hasPrefix(crit.Alerts, "High resource utilization") {
		t.Fatalf("expected utilization alert, got %v", crit.Alerts)
	}
	if !hasPrefix(crit.Alerts, "Negative margin") {
		t.Fatalf("expected negative margin alert, got %v", crit.Alerts)
	}

	idleCard := cards[2]
	if idleCard.Trend != TrendStable || idleCard.ProfitMargin != 0 || len(idleCard.Alerts) != 0 {
		t.Fatalf("unexpected idle card: %+v", idleCard)
	}
}

func TestHealthCardFlagsExpiringContract(t *testing.T) {
	c := activeContract(t, "EXP-1", 100_000, 50_000, testNow.AddDate(0, 0, 20))

	cards := newAggregator(zerolog.Nop(), 0).ContractHealthCards(Snapshot{Contracts: []*model.Contract{c}})
	if len(cards) != 1 || !hasPrefix(cards[0].Alerts, "Contract expires in 20 days") {
		t.Fatalf("expected expiring alert, got %+v", cards)
	}
}

func TestAggregationSkipsMalformedContracts(t *testing.T) {
	good := activeContract(t, "GOOD-1", 1_000_000, 500_000, threeYears())

	state := newContract(t, "BAD-1", 100_000, 0, threeYears()).State()
	state.FundedValue = 250_000
	bad := model.RestoreContract(state)

	var buf bytes.Buffer
	agg := newAggregator(zerolog.New(&buf), 0)
	cards := agg.ContractHealthCards(Snapshot{Contracts: []*model.Contract{bad, nil, good}})

	if len(cards) != 1 || cards[0].ContractNumber != "GOOD-1" {
		t.Fatalf("expected only the valid contract, got %+v", cards)
	}
	if !strings.Contains(buf.String(), "skipping contract") || !strings.Contains(buf.String(), "BAD-1") {
		t.Fatalf("expected skip to be logged, got %q", buf.String())
	}
}

func TestAggregationAcrossManyContracts(t *testing.T) {
	r := newResource(t, "ada@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	var contracts []*model.Contract
	for i := 0; i < 50; i++ {
		c := activeContract(t, fmt.Sprintf("BULK-%02d", i), 1_000_000, 500_000, threeYears())
		assign(t, c, r, 1)
		contracts = append(contracts, c)
	}

	m := newAggregator(zerolog.Nop(), 4).DashboardMetrics(Snapshot{
		Contracts: contracts,
		Resources: []*model.Resource{r},
	})
	if m.ActiveContracts != 50 {
		t.Fatalf("expected 50 active contracts, got %d", m.ActiveContracts)
	}
	if !approx(m.MonthlyBurnRate, 50*(1912.0/12*100*0.01)) {
		t.Fatalf("unexpected portfolio burn %v", m.MonthlyBurnRate)
	}
}

func TestResourceUtilization(t *testing.T) {
	lcat := newLCAT(t, "SE", 200)
	busy := newResource(t, "busy@example.com", model.ResourceCategoryFixedPrice, 100, lcat)
	split := newResource(t, "split@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	bench := newResource(t, "bench@example.com", model.ResourceCategorySubcontractor, 100, lcat)
	gone := newResource(t, "gone@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	if err := gone.Terminate(testNow, actor, testNow); err != nil {
		t.Fatalf("terminate: %v", err)
	}

	x := activeContract(t, "X-1", 1_000_000, 500_000, threeYears())
	y := activeContract(t, "Y-1", 1_000_000, 500_000, threeYears())
	assign(t, x, busy, 100)
	assign(t, x, split, 20)
	assign(t, y, split, 20)

	u := newAggregator(zerolog.Nop(), 0).ResourceUtilization(Snapshot{
		Contracts: []*model.Contract{x, y},
		Resources: []*model.Resource{busy, split, bench, gone},
		LCATs:     []*model.LCAT{lcat},
	})

	if u.TotalResources != 3 || u.ActiveResources != 2 || u.BenchResources != 1 {
		t.Fatalf("unexpected counts: %+v", u)
	}
	if !approx(u.AverageUtilization, (100.0+40.0+0.0)/3) {
		t.Fatalf("unexpected average utilization %v", u.AverageUtilization)
	}

	wantCost := 100*DefaultMonthlyHours*2 + 115*DefaultMonthlyHours
	if !approx(u.TotalMonthlyCost, wantCost) {
		t.Fatalf("expected cost %v, got %v", wantCost, u.TotalMonthlyCost)
	}
	if !approx(u.TotalMonthlyRevenue, 200*DefaultMonthlyHours) {
		t.Fatalf("expected revenue from the busy resource only, got %v", u.TotalMonthlyRevenue)
	}
	if u.UnderwaterResources != 2 {
		t.Fatalf("expected split and bench underwater, got %d", u.UnderwaterResources)
	}

	if len(u.TopUtilized) != 1 || u.TopUtilized[0].ResourceID != busy.ID {
		t.Fatalf("expected busy resource top utilized, got %+v", u.TopUtilized)
	}
	if u.TopUtilized[0].LCATName != lcat.Name {
		t.Fatalf("expected lcat name, got %q", u.TopUtilized[0].LCATName)
	}
	if len(u.Underutilized) != 2 || u.Underutilized[0].ResourceID != bench.ID || u.Underutilized[1].ContractCount != 2 {
		t.Fatalf("expected bench then split underutilized, got %+v", u.Underutilized)
	}

	fixed := u.ByCategory[model.ResourceCategoryFixedPrice]
	if fixed.Count != 2 || !approx(fixed.UtilizationPercentage, 70) {
		t.Fatalf("unexpected fixed price metrics: %+v", fixed)
	}
	if _, ok := u.ByCategory[model.ResourceCategorySubcontractor]; !ok {
		t.Fatalf("expected subcontractor metrics")
	}
}

func TestResourceRevenueUsesContractOverride(t *testing.T) {
	lcat := newLCAT(t, "SE", 200)
	r := newResource(t, "ada@example.com", model.ResourceCategoryFixedPrice, 100, lcat)
	c := activeContract(t, "X-1", 1_000_000, 500_000, threeYears())
	assign(t, c, r, 50)
	if _, err := c.AddRateOverride(lcat.ID, 300, testNow.AddDate(0, 0, -1), "negotiated", actor, testNow); err != nil {
		t.Fatalf("override: %v", err)
	}

	u := newAggregator(zerolog.Nop(), 0).ResourceUtilization(Snapshot{
		Contracts: []*model.Contract{c},
		Resources: []*model.Resource{r},
		LCATs:     []*model.LCAT{lcat},
	})
	if !approx(u.TotalMonthlyRevenue, 300*DefaultMonthlyHours*0.5) {
		t.Fatalf("expected override rate revenue, got %v", u.TotalMonthlyRevenue)
	}
}

func TestFinancialProjections(t *testing.T) {
	r1 := newResource(t, "one@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	r2 := newResource(t, "two@example.com", model.ResourceCategoryFixedPrice, 100, nil)

	steady := activeContract(t, "STEADY-1", 1_000_000, 500_000, threeYears())
	assign(t, steady, r1, 100)
	critical := activeContract(t, "CRIT-1", 1_000_000, 30_000, testNow.AddDate(0, 2, 0))
	assign(t, critical, r2, 100)
	draft := newContract(t, "DRAFT-1", 1_000_000, 500_000, threeYears())

	agg := newAggregator(zerolog.Nop(), 0)
	snap := Snapshot{
		Contracts: []*model.Contract{steady, critical, draft},
		Resources: []*model.Resource{r1, r2},
	}
	p := agg.FinancialProjections(snap, 12)

	if p.MonthsProjected != 12 || len(p.Months) != 12 {
		t.Fatalf("expected 12 months, got %d/%d", p.MonthsProjected, len(p.Months))
	}
	if p.Months[0].ActiveContractCount != 2 {
		t.Fatalf("expected both active contracts in month 0, got %d", p.Months[0].ActiveContractCount)
	}
	if p.Months[3].ActiveContractCount != 1 {
		t.Fatalf("expected critical contract gone by month 3, got %d", p.Months[3].ActiveContractCount)
	}
	if got := p.Months[2].ExpiringContracts; len(got) != 1 || got[0] != "CRIT-1" {
		t.Fatalf("expected CRIT-1 expiring in month 2, got %v", got)
	}
	if got := p.Months[1].DepletingContracts; len(got) != 1 || got[0] != "CRIT-1" {
		t.Fatalf("expected CRIT-1 depleting in month 1, got %v", got)
	}
	if !p.Months[0].Month.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected month bucket at first of month, got %s", p.Months[0].Month)
	}

	last := p.Months[len(p.Months)-1]
	if !approx(last.CumulativeRevenue, p.TotalProjectedRevenue) || !approx(last.CumulativeCost, p.TotalProjectedCost) {
		t.Fatalf("cumulative totals should end at the projection totals")
	}
	if !approx(p.TotalProjectedProfit, p.TotalProjectedRevenue-p.TotalProjectedCost) {
		t.Fatalf("profit should be revenue minus cost")
	}

	if len(p.DepletionSchedule) != 1 {
		t.Fatalf("expected only CRIT-1 in a 12 month schedule, got %+v", p.DepletionSchedule)
	}
	if d := p.DepletionSchedule[0]; d.ContractNumber != "CRIT-1" || d.ImpactSeverity != ImpactHigh || d.DaysUntilDepletion != 31 {
		t.Fatalf("unexpected depletion entry: %+v", d)
	}

	long := agg.FinancialProjections(snap, 36)
	if len(long.DepletionSchedule) != 2 || long.DepletionSchedule[1].ContractNumber != "STEADY-1" {
		t.Fatalf("expected STEADY-1 to deplete within 36 months, got %+v", long.DepletionSchedule)
	}
	if long.DepletionSchedule[1].ImpactSeverity != ImpactLow {
		t.Fatalf("expected low impact for long runway, got %s", long.DepletionSchedule[1].ImpactSeverity)
	}
}

func TestFinancialProjectionsContractEndingOnFirstOfMonth(t *testing.T) {
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	c := activeContract(t, "EDGE-1", 1_000_000, 500_000, end)

	p := newAggregator(zerolog.Nop(), 0).FinancialProjections(Snapshot{Contracts: []*model.Contract{c}}, 3)

	if len(p.Months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(p.Months))
	}
	if p.Months[0].ActiveContractCount != 1 || len(p.Months[0].ExpiringContracts) != 0 {
		t.Fatalf("expected EDGE-1 active but not expiring in March, got %+v", p.Months[0])
	}
	april := p.Months[1]
	if !april.Month.Equal(end) {
		t.Fatalf("expected April bucket at %s, got %s", end, april.Month)
	}
	if april.ActiveContractCount != 1 {
		t.Fatalf("expected EDGE-1 active on its final day, got %d", april.ActiveContractCount)
	}
	if got := april.ExpiringContracts; len(got) != 1 || got[0] != "EDGE-1" {
		t.Fatalf("expected EDGE-1 expiring in April, got %v", got)
	}
	if p.Months[2].ActiveContractCount != 0 {
		t.Fatalf("expected no active contracts in May, got %d", p.Months[2].ActiveContractCount)
	}
}

func TestFinancialProjectionsClampsHorizon(t *testing.T) {
	agg := newAggregator(zerolog.Nop(), 0)
	if p := agg.FinancialProjections(Snapshot{}, 0); p.MonthsProjected != 1 {
		t.Fatalf("expected horizon clamped to 1, got %d", p.MonthsProjected)
	}
	if p := agg.FinancialProjections(Snapshot{}, 100); p.MonthsProjected != MaxProjectionMonths {
		t.Fatalf("expected horizon clamped to %d, got %d", MaxProjectionMonths, p.MonthsProjected)
	}
}

func TestDepletionImpact(t *testing.T) {
	cases := []struct {
		total  float64
		months int
		want   Impact
	}{
		{6_000_000, 20, ImpactHigh},
		{100_000, 1, ImpactHigh},
		{2_000_000, 20, ImpactMedium},
		{100_000, 3, ImpactMedium},
		{100_000, 4, ImpactLow},
		{1_000_000, 12, ImpactLow},
	}
	for _, tc := range cases {
		if got := depletionImpact(tc.total, tc.months); got != tc.want {
			t.Errorf("depletionImpact(%v, %d) = %s, want %s", tc.total, tc.months, got, tc.want)
		}
	}
}

func TestCriticalAlerts(t *testing.T) {
	lcat := newLCAT(t, "SE", 200)
	funded := newResource(t, "one@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	overbooked := newResource(t, "over@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	underwater := newResource(t, "under@example.com", model.ResourceCategoryW2Internal, 100, lcat)

	critical := activeContract(t, "CRIT-1", 1_000_000, 30_000, threeYears())
	assign(t, critical, funded, 100)
	other := activeContract(t, "OTHER-1", 1_000_000, 900_000, threeYears())
	assign(t, critical, overbooked, 60)
	assign(t, other, overbooked, 60)
	assign(t, other, underwater, 100)
	expiring := activeContract(t, "EXP-1", 100_000, 90_000, testNow.AddDate(0, 0, 45))
	draft := newContract(t, "DRAFT-1", 100_000, 0, testNow.AddDate(0, 0, 10))

	alerts := newAggregator(zerolog.Nop(), 0).CriticalAlerts(Snapshot{
		Contracts: []*model.Contract{expiring, other, critical, draft},
		Resources: []*model.Resource{funded, overbooked, underwater},
		LCATs:     []*model.LCAT{lcat},
	})

	byType := map[AlertType][]Alert{}
	for _, a := range alerts {
		byType[a.Type] = append(byType[a.Type], a)
	}

	if got := byType[AlertFundingCritical]; len(got) != 1 || got[0].EntityID != critical.ID() {
		t.Fatalf("expected one funding alert for CRIT-1, got %+v", got)
	}
	if got := byType[AlertContractExpiring]; len(got) != 1 || got[0].Severity != SeverityWarning {
		t.Fatalf("expected one warning-level expiring alert, got %+v", got)
	}
	if got := byType[AlertOverAllocation]; len(got) != 1 || got[0].EntityID != overbooked.ID {
		t.Fatalf("expected over-allocation alert, got %+v", got)
	}
	if got := byType[AlertOverAllocation][0].Message; got != "Resource is allocated at 120% across contracts" {
		t.Fatalf("unexpected over-allocation message %q", got)
	}
	if got := byType[AlertResourceUnderwater]; len(got) != 1 || got[0].EntityID != underwater.ID {
		t.Fatalf("expected underwater alert, got %+v", got)
	}

	for i := 1; i < len(alerts); i++ {
		if alerts[i-1].Severity.rank() > alerts[i].Severity.rank() {
			t.Fatalf("alerts not sorted by severity: %s before %s", alerts[i-1].Severity, alerts[i].Severity)
		}
	}
	if alerts[0].Severity != SeverityCritical {
		t.Fatalf("expected critical alert first, got %s", alerts[0].Severity)
	}
}

func TestClearanceExpiredAlert(t *testing.T) {
	lapsed := newResource(t, "lapsed@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	bench := newResource(t, "bench@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	current := newResource(t, "current@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	expired := testNow.AddDate(0, -1, 0)
	valid := testNow.AddDate(1, 0, 0)
	for _, r := range []*model.Resource{lapsed, bench} {
		r.ClearanceLevel = "SECRET"
		r.ClearanceExpiration = &expired
	}
	current.ClearanceLevel = "SECRET"
	current.ClearanceExpiration = &valid

	c := activeContract(t, "SEC-1", 1_000_000, 900_000, threeYears())
	assign(t, c, lapsed, 50)
	assign(t, c, current, 50)

	alerts := newAggregator(zerolog.Nop(), 0).CriticalAlerts(Snapshot{
		Contracts: []*model.Contract{c},
		Resources: []*model.Resource{lapsed, bench, current},
	})

	var got []Alert
	for _, a := range alerts {
		if a.Type == AlertClearanceExpired {
			got = append(got, a)
		}
	}
	if len(got) != 1 || got[0].EntityID != lapsed.ID || got[0].Severity != SeverityHigh {
		t.Fatalf("expected one clearance alert for the allocated lapsed resource, got %+v", got)
	}
	if want := "SECRET clearance expired on 2025-02-01"; got[0].Message != want {
		t.Fatalf("expected message %q, got %q", want, got[0].Message)
	}
}

func TestCompleteDashboard(t *testing.T) {
	r := newResource(t, "ada@example.com", model.ResourceCategoryFixedPrice, 100, nil)
	c := activeContract(t, "A-1", 1_000_000, 500_000, threeYears())
	assign(t, c, r, 100)

	d := newAggregator(zerolog.Nop(), 0).Complete(Snapshot{
		Contracts: []*model.Contract{c},
		Resources: []*model.Resource{r},
	}, 6)
	if d.Metrics.ActiveContracts != 1 || len(d.HealthCards) != 1 || len(d.Projections.Months) != 6 {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
	if d.Utilization.TotalResources != 1 || d.Alerts == nil {
		t.Fatalf("unexpected utilization or alerts: %+v", d)
	}
}

func hasPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
