// Package portfolio rolls burn analysis up across every contract and
// resource into dashboard summaries, projections and alerts.
package portfolio

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/model"
)

const (
	DefaultMonthlyHours = 174.0
	DefaultWorkers      = 8
	MaxProjectionMonths = 36
	expiringSoonDays    = 60
	expiringUrgentDays  = 30
	overAllocatedPct    = 100.0
	topUtilizedPct      = 90.0
	underutilizedPct    = 50.0
	rankedListSize      = 10
)

// Snapshot is the loaded state the queries run over. The aggregator never
// mutates it.
type Snapshot struct {
	Contracts []*model.Contract
	Resources []*model.Resource
	LCATs     []*model.LCAT
}

type Options struct {
	MonthlyHours float64
	Workers      int
}

type Aggregator struct {
	engine       *burn.Engine
	log          zerolog.Logger
	monthlyHours float64
	workers      int
}

func New(engine *burn.Engine, log zerolog.Logger, opts Options) *Aggregator {
	hours := opts.MonthlyHours
	if hours <= 0 {
		hours = DefaultMonthlyHours
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Aggregator{
		engine:       engine,
		log:          log.With().Str("component", "portfolio").Logger(),
		monthlyHours: hours,
		workers:      workers,
	}
}

// contractView is one contract with its analysis, computed once per query.
type contractView struct {
	contract    *model.Contract
	analysis    burn.Analysis
	monthlyCost float64
}

// assignment is an active allocation seen from the resource side.
type assignment struct {
	contract   *model.Contract
	allocation model.Allocation
}

// state holds everything derived from a snapshot for a single query.
type state struct {
	now         time.Time
	views       []contractView
	resources   burn.Resources
	lcats       burn.LCATs
	assignments map[uuid.UUID][]assignment
}

func (a *Aggregator) prepare(snap Snapshot) state {
	st := state{
		now:       a.engine.Now(),
		resources: burn.IndexResources(snap.Resources),
		lcats:     burn.IndexLCATs(snap.LCATs),
	}
	st.views = a.analyzeAll(snap.Contracts, st.resources)

	st.assignments = make(map[uuid.UUID][]assignment)
	for _, v := range st.views {
		if v.contract.Status() == model.ContractStatusClosed {
			continue
		}
		for _, alloc := range v.contract.ActiveAllocations(st.now) {
			st.assignments[alloc.ResourceID] = append(st.assignments[alloc.ResourceID], assignment{
				contract:   v.contract,
				allocation: alloc,
			})
		}
	}
	return st
}

// analyzeAll runs the burn engine over every contract on a bounded worker
// group. Contracts that fail validation or panic are logged and dropped;
// the result keeps the input order.
func (a *Aggregator) analyzeAll(contracts []*model.Contract, resources burn.Resources) []contractView {
	results := make([]*contractView, len(contracts))

	var g errgroup.Group
	g.SetLimit(a.workers)
	for i, c := range contracts {
		if c == nil {
			continue
		}
		g.Go(func() error {
			view, err := a.analyzeOne(c, resources)
			if err != nil {
				a.log.Warn().
					Err(err).
					Str("contract_id", c.ID().String()).
					Str("contract_number", c.Number()).
					Msg("skipping contract in portfolio aggregation")
				return nil
			}
			results[i] = &view
			return nil
		})
	}
	_ = g.Wait()

	views := make([]contractView, 0, len(contracts))
	for _, v := range results {
		if v != nil {
			views = append(views, *v)
		}
	}
	return views
}

func (a *Aggregator) analyzeOne(c *model.Contract, resources burn.Resources) (view contractView, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panicked: %v\n%s", r, debug.Stack())
		}
	}()
	if err := c.Validate(); err != nil {
		return contractView{}, err
	}
	analysis := a.engine.Analyze(c, resources)
	return contractView{
		contract:    c,
		analysis:    analysis,
		monthlyCost: analysis.MonthlyBurn,
	}, nil
}

// contractMonthlyRevenue estimates revenue as funded value spread evenly
// over the period of performance. Only active contracts earn.
func contractMonthlyRevenue(c *model.Contract) float64 {
	if c.Status() != model.ContractStatusActive {
		return 0
	}
	days := int(c.EndDate().Sub(c.StartDate()) / (24 * time.Hour))
	months := float64(days) / 30
	if months <= 0 {
		return 0
	}
	return c.FundedValue() / months
}

func (a *Aggregator) resourceMonthlyCost(r *model.Resource) float64 {
	return r.BurdenedCost() * a.monthlyHours
}

// resourceMonthlyRevenue bills each active allocation at the contract's
// resolved rate for the resource's LCAT. Resources without an LCAT earn
// nothing.
func (a *Aggregator) resourceMonthlyRevenue(st state, r *model.Resource) float64 {
	if r.LCATID == nil {
		return 0
	}
	lcat, ok := st.lcats[*r.LCATID]
	if !ok {
		return 0
	}
	total := 0.0
	for _, as := range st.assignments[r.ID] {
		rate := a.engine.BillRate(as.contract, lcat)
		total += rate * a.monthlyHours * as.allocation.Percentage / 100
	}
	return total
}

func totalAllocation(st state, resourceID uuid.UUID) float64 {
	total := 0.0
	for _, as := range st.assignments[resourceID] {
		total += as.allocation.Percentage
	}
	return total
}

func activeResources(list []*model.Resource) []*model.Resource {
	result := make([]*model.Resource, 0, len(list))
	for _, r := range list {
		if r != nil && r.IsActive {
			result = append(result, r)
		}
	}
	return result
}

func daysUntil(from, to time.Time) int {
	return int(to.Sub(from) / (24 * time.Hour))
}

// Dashboard bundles every query for a single page load, sharing one
// analysis pass.
type Dashboard struct {
	Metrics     DashboardMetrics    `json:"metrics"`
	HealthCards []ContractHealth    `json:"contract_health"`
	Utilization ResourceUtilization `json:"resource_utilization"`
	Projections FinancialProjection `json:"financial_projections"`
	Alerts      []Alert             `json:"alerts"`
}

func (a *Aggregator) Complete(snap Snapshot, monthsAhead int) Dashboard {
	st := a.prepare(snap)
	return Dashboard{
		Metrics:     a.metrics(st, snap),
		HealthCards: a.healthCards(st),
		Utilization: a.utilization(st, snap),
		Projections: a.projections(st, monthsAhead),
		Alerts:      a.alerts(st, snap),
	}
}
