package portfolio

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
)

type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"
)

type MonthlyProjection struct {
	Month               time.Time `json:"month"`
	ProjectedRevenue    float64   `json:"projected_revenue"`
	ProjectedCost       float64   `json:"projected_cost"`
	ProjectedProfit     float64   `json:"projected_profit"`
	CumulativeRevenue   float64   `json:"cumulative_revenue"`
	CumulativeCost      float64   `json:"cumulative_cost"`
	ActiveContractCount int       `json:"active_contract_count"`
	ExpiringContracts   []string  `json:"expiring_contracts"`
	DepletingContracts  []string  `json:"depleting_contracts"`
}

type ContractDepletion struct {
	ContractID             uuid.UUID `json:"contract_id"`
	ContractNumber         string    `json:"contract_number"`
	EstimatedDepletionDate time.Time `json:"estimated_depletion_date"`
	RemainingFunds         float64   `json:"remaining_funds"`
	DaysUntilDepletion     int       `json:"days_until_depletion"`
	ImpactSeverity         Impact    `json:"impact_severity"`
}

type FinancialProjection struct {
	ProjectionDate        time.Time           `json:"projection_date"`
	MonthsProjected       int                 `json:"months_projected"`
	Months                []MonthlyProjection `json:"months"`
	TotalProjectedRevenue float64             `json:"total_projected_revenue"`
	TotalProjectedCost    float64             `json:"total_projected_cost"`
	TotalProjectedProfit  float64             `json:"total_projected_profit"`
	DepletionSchedule     []ContractDepletion `json:"depletion_schedule"`
}

// FinancialProjections projects active contracts monthsAhead months forward.
// The horizon is clamped to [1, MaxProjectionMonths].
func (a *Aggregator) FinancialProjections(snap Snapshot, monthsAhead int) FinancialProjection {
	return a.projections(a.prepare(snap), monthsAhead)
}

func (a *Aggregator) projections(st state, monthsAhead int) FinancialProjection {
	monthsAhead = min(max(monthsAhead, 1), MaxProjectionMonths)

	var active []contractView
	for _, v := range st.views {
		if v.contract.Status() == model.ContractStatusActive {
			active = append(active, v)
		}
	}

	p := FinancialProjection{
		ProjectionDate:    st.now,
		MonthsProjected:   monthsAhead,
		Months:            make([]MonthlyProjection, 0, monthsAhead),
		DepletionSchedule: []ContractDepletion{},
	}

	var cumulativeRevenue, cumulativeCost float64
	first := time.Date(st.now.Year(), st.now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for month := 0; month < monthsAhead; month++ {
		monthStart := first.AddDate(0, month, 0)
		nextMonth := monthStart.AddDate(0, 1, 0)
		mp := MonthlyProjection{
			Month:              monthStart,
			ExpiringContracts:  []string{},
			DepletingContracts: []string{},
		}
		for _, v := range active {
			c := v.contract
			// Active when [start, end] overlaps [monthStart, nextMonth).
			if !c.StartDate().Before(nextMonth) || c.EndDate().Before(monthStart) {
				continue
			}
			mp.ProjectedRevenue += contractMonthlyRevenue(c)
			mp.ProjectedCost += v.monthlyCost
			mp.ActiveContractCount++

			if inMonth(c.EndDate(), monthStart, nextMonth) {
				mp.ExpiringContracts = append(mp.ExpiringContracts, c.Number())
			}
			if d := v.analysis.ProjectedDepletionDate; d != nil && inMonth(*d, monthStart, nextMonth) {
				mp.DepletingContracts = append(mp.DepletingContracts, c.Number())
			}
		}
		mp.ProjectedProfit = mp.ProjectedRevenue - mp.ProjectedCost
		cumulativeRevenue += mp.ProjectedRevenue
		cumulativeCost += mp.ProjectedCost
		mp.CumulativeRevenue = cumulativeRevenue
		mp.CumulativeCost = cumulativeCost

		p.TotalProjectedRevenue += mp.ProjectedRevenue
		p.TotalProjectedCost += mp.ProjectedCost
		p.Months = append(p.Months, mp)
	}
	p.TotalProjectedProfit = p.TotalProjectedRevenue - p.TotalProjectedCost

	horizon := st.now.AddDate(0, monthsAhead, 0)
	for _, v := range active {
		d := v.analysis.ProjectedDepletionDate
		if d == nil || d.After(horizon) {
			continue
		}
		p.DepletionSchedule = append(p.DepletionSchedule, ContractDepletion{
			ContractID:             v.contract.ID(),
			ContractNumber:         v.contract.Number(),
			EstimatedDepletionDate: *d,
			RemainingFunds:         v.analysis.RemainingFunds,
			DaysUntilDepletion:     daysUntil(st.now, *d),
			ImpactSeverity:         depletionImpact(v.contract.TotalValue(), *v.analysis.MonthsUntilDepleted),
		})
	}
	sort.SliceStable(p.DepletionSchedule, func(i, j int) bool {
		return p.DepletionSchedule[i].EstimatedDepletionDate.Before(p.DepletionSchedule[j].EstimatedDepletionDate)
	})
	return p
}

func depletionImpact(totalValue float64, monthsUntilDepleted int) Impact {
	switch {
	case totalValue > 5_000_000 || monthsUntilDepleted <= 1:
		return ImpactHigh
	case totalValue > 1_000_000 || monthsUntilDepleted <= 3:
		return ImpactMedium
	default:
		return ImpactLow
	}
}

func inMonth(t, monthStart, nextMonth time.Time) bool {
	return !t.Before(monthStart) && t.Before(nextMonth)
}
