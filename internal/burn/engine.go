// Package burn computes labor cost burn for contracts and projects when
// funding runs out.
package burn

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/clock"
	"github.com/nurpe/contract-tracker/internal/model"
)

const (
	DefaultHourlyRate = 150.0
	daysPerMonth      = 30
	// maxRunwayMonths is a thousand years of runway.
	maxRunwayMonths = 12 * 1000
)

type WarningLevel string

const (
	WarningNone     WarningLevel = "NONE"
	WarningLow      WarningLevel = "LOW"
	WarningMedium   WarningLevel = "MEDIUM"
	WarningHigh     WarningLevel = "HIGH"
	WarningCritical WarningLevel = "CRITICAL"
)

// Severity orders warning levels, None lowest.
func (w WarningLevel) Severity() int {
	switch w {
	case WarningLow:
		return 1
	case WarningMedium:
		return 2
	case WarningHigh:
		return 3
	case WarningCritical:
		return 4
	default:
		return 0
	}
}

// WarningLevelFor classifies months of runway. Nil means unbounded.
func WarningLevelFor(monthsUntilDepleted *int) WarningLevel {
	if monthsUntilDepleted == nil {
		return WarningNone
	}
	switch m := *monthsUntilDepleted; {
	case m <= 2:
		return WarningCritical
	case m <= 3:
		return WarningHigh
	case m <= 6:
		return WarningMedium
	case m <= 12:
		return WarningLow
	default:
		return WarningNone
	}
}

// Analysis is recomputed on every request and never stored.
type Analysis struct {
	ContractID             uuid.UUID    `json:"contract_id"`
	AsOf                   time.Time    `json:"as_of"`
	MonthlyBurn            float64      `json:"monthly_burn"`
	QuarterlyBurn          float64      `json:"quarterly_burn"`
	AnnualBurn             float64      `json:"annual_burn"`
	TotalBurned            float64      `json:"total_burned"`
	RemainingFunds         float64      `json:"remaining_funds"`
	MonthsUntilEnd         int          `json:"months_until_end"`
	MonthsUntilDepleted    *int         `json:"months_until_depleted"`
	ProjectedDepletionDate *time.Time   `json:"projected_depletion_date"`
	WillExceedFunding      bool         `json:"will_exceed_funding"`
	Shortfall              float64      `json:"shortfall"`
	WarningLevel           WarningLevel `json:"warning_level"`
}

// Resources looks up resources by ID. Missing entries fall back to the
// default hourly rate.
type Resources map[uuid.UUID]*model.Resource

func IndexResources(list []*model.Resource) Resources {
	idx := make(Resources, len(list))
	for _, r := range list {
		if r != nil {
			idx[r.ID] = r
		}
	}
	return idx
}

type LCATs map[uuid.UUID]*model.LCAT

func IndexLCATs(list []*model.LCAT) LCATs {
	idx := make(LCATs, len(list))
	for _, l := range list {
		if l != nil {
			idx[l.ID] = l
		}
	}
	return idx
}

type Options struct {
	DefaultHourlyRate float64
}

type Engine struct {
	clock       clock.Clock
	defaultRate float64
}

func NewEngine(c clock.Clock, opts Options) *Engine {
	if c == nil {
		c = clock.System{}
	}
	rate := opts.DefaultHourlyRate
	if rate <= 0 {
		rate = DefaultHourlyRate
	}
	return &Engine{clock: c, defaultRate: rate}
}

func (e *Engine) Now() time.Time {
	return e.clock.Now().UTC()
}

func (e *Engine) DefaultHourlyRate() float64 {
	return e.defaultRate
}

// AllocationMonthlyCost is the fixed fee when set, otherwise monthly hours
// times burdened cost scaled by the allocation percentage.
func (e *Engine) AllocationMonthlyCost(a model.Allocation, r *model.Resource) float64 {
	if a.FixedMonthlyAmount != nil {
		return *a.FixedMonthlyAmount
	}
	rate := e.defaultRate
	if r != nil {
		if cost := r.BurdenedCost(); cost > 0 {
			rate = cost
		}
	}
	return (a.AnnualHours / 12) * rate * (a.Percentage / 100)
}

func (e *Engine) MonthlyBurn(c *model.Contract, resources Resources) float64 {
	return e.monthlyBurnAt(c, resources, e.Now())
}

func (e *Engine) monthlyBurnAt(c *model.Contract, resources Resources, now time.Time) float64 {
	total := 0.0
	for _, a := range c.ActiveAllocations(now) {
		total += e.AllocationMonthlyCost(a, resources[a.ResourceID])
	}
	return total
}

func (e *Engine) QuarterlyBurn(c *model.Contract, resources Resources) float64 {
	return e.MonthlyBurn(c, resources) * 3
}

func (e *Engine) AnnualBurn(c *model.Contract, resources Resources) float64 {
	return e.MonthlyBurn(c, resources) * 12
}

// MonthsElapsed counts 30-day months from start to now, capped at the end
// date. A contract that has not started yet has zero.
func (e *Engine) MonthsElapsed(c *model.Contract) float64 {
	return monthsElapsed(c, e.Now())
}

func monthsElapsed(c *model.Contract, now time.Time) float64 {
	until := now
	if c.EndDate().Before(until) {
		until = c.EndDate()
	}
	if !until.After(c.StartDate()) {
		return 0
	}
	return float64(wholeDays(until.Sub(c.StartDate()))) / daysPerMonth
}

// TotalBurned estimates spend to date from the current burn rate. There is
// no actuals feed, so it drifts when allocations change mid-contract.
func (e *Engine) TotalBurned(c *model.Contract, resources Resources) float64 {
	now := e.Now()
	return e.monthlyBurnAt(c, resources, now) * monthsElapsed(c, now)
}

func (e *Engine) Analyze(c *model.Contract, resources Resources) Analysis {
	now := e.Now()
	monthly := e.monthlyBurnAt(c, resources, now)
	burned := monthly * monthsElapsed(c, now)
	remaining := c.FundedValue() - burned

	monthsUntilEnd := wholeDays(c.EndDate().Sub(now)) / daysPerMonth
	if monthsUntilEnd < 0 {
		monthsUntilEnd = 0
	}

	analysis := Analysis{
		ContractID:     c.ID(),
		AsOf:           now,
		MonthlyBurn:    monthly,
		QuarterlyBurn:  monthly * 3,
		AnnualBurn:     monthly * 12,
		TotalBurned:    burned,
		RemainingFunds: remaining,
		MonthsUntilEnd: monthsUntilEnd,
	}

	if monthly > 0 {
		analysis.setDepletion(math.Floor(remaining/monthly), monthly, now, c.EndDate(), monthsUntilEnd)
	}
	analysis.WarningLevel = WarningLevelFor(analysis.MonthsUntilDepleted)
	return analysis
}

// setDepletion fills the runway fields. A runway longer than
// maxRunwayMonths counts as unbounded: the int conversion would wrap and the
// projected date would fall outside what JSON can encode.
func (a *Analysis) setDepletion(quotient, monthly float64, now, end time.Time, monthsUntilEnd int) {
	if math.IsNaN(quotient) || quotient > maxRunwayMonths {
		return
	}
	months := int(quotient)
	depletion := now.AddDate(0, months, 0)
	a.MonthsUntilDepleted = &months
	a.ProjectedDepletionDate = &depletion
	a.WillExceedFunding = depletion.Before(end)
	if a.WillExceedFunding {
		a.Shortfall = monthly*float64(monthsUntilEnd) - a.RemainingFunds
	}
}

// BillRate resolves what is billed for an LCAT on a contract: the contract
// override, then the LCAT default bill rate, then the default hourly rate.
func (e *Engine) BillRate(c *model.Contract, l *model.LCAT) float64 {
	now := e.Now()
	if l == nil {
		return e.defaultRate
	}
	if c != nil {
		if rec, ok := c.CurrentRateOverride(l.ID, now); ok {
			return rec.Rate
		}
	}
	if rate := l.CurrentBillRate(now); rate > 0 {
		return rate
	}
	return e.defaultRate
}

func wholeDays(d time.Duration) int {
	return int(d / (24 * time.Hour))
}
