package portfolio

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/money"
)

type CategoryMetrics struct {
	Category              model.ResourceCategory `json:"category"`
	Count                 int                    `json:"count"`
	AverageCost           float64                `json:"average_cost"`
	AverageRevenue        float64                `json:"average_revenue"`
	AverageMargin         float64                `json:"average_margin"`
	UtilizationPercentage float64                `json:"utilization_percentage"`
}

type ResourceAllocation struct {
	ResourceID      uuid.UUID `json:"resource_id"`
	ResourceName    string    `json:"resource_name"`
	LCATName        string    `json:"lcat_name"`
	TotalAllocation float64   `json:"total_allocation"`
	ContractCount   int       `json:"contract_count"`
	MonthlyCost     float64   `json:"monthly_cost"`
	MonthlyRevenue  float64   `json:"monthly_revenue"`
	IsUnderwater    bool      `json:"is_underwater"`
}

type ResourceUtilization struct {
	TotalResources      int                                        `json:"total_resources"`
	ActiveResources     int                                        `json:"active_resources"`
	BenchResources      int                                        `json:"bench_resources"`
	AverageUtilization  float64                                    `json:"average_utilization"`
	TotalMonthlyCost    float64                                    `json:"total_monthly_cost"`
	TotalMonthlyRevenue float64                                    `json:"total_monthly_revenue"`
	UnderwaterResources int                                        `json:"underwater_resources"`
	ByCategory          map[model.ResourceCategory]CategoryMetrics `json:"by_category"`
	TopUtilized         []ResourceAllocation                       `json:"top_utilized"`
	Underutilized       []ResourceAllocation                       `json:"underutilized"`
}

func (a *Aggregator) ResourceUtilization(snap Snapshot) ResourceUtilization {
	return a.utilization(a.prepare(snap), snap)
}

func (a *Aggregator) utilization(st state, snap Snapshot) ResourceUtilization {
	resources := activeResources(snap.Resources)
	u := ResourceUtilization{
		TotalResources: len(resources),
		ByCategory:     make(map[model.ResourceCategory]CategoryMetrics),
		TopUtilized:    []ResourceAllocation{},
		Underutilized:  []ResourceAllocation{},
	}

	type categorySums struct {
		count                    int
		cost, revenue, allocated float64
	}
	sums := make(map[model.ResourceCategory]*categorySums)
	utilizationTotal := 0.0

	for _, r := range resources {
		allocated := totalAllocation(st, r.ID)
		cost := a.resourceMonthlyCost(r)
		revenue := a.resourceMonthlyRevenue(st, r)

		if len(st.assignments[r.ID]) > 0 {
			u.ActiveResources++
		} else {
			u.BenchResources++
		}
		utilizationTotal += allocated
		u.TotalMonthlyCost += cost
		u.TotalMonthlyRevenue += revenue

		row := ResourceAllocation{
			ResourceID:      r.ID,
			ResourceName:    r.FullName(),
			LCATName:        a.lcatName(st, r),
			TotalAllocation: allocated,
			ContractCount:   len(st.assignments[r.ID]),
			MonthlyCost:     cost,
			MonthlyRevenue:  revenue,
			IsUnderwater:    revenue < cost,
		}
		if row.IsUnderwater {
			u.UnderwaterResources++
		}
		switch {
		case allocated >= topUtilizedPct:
			u.TopUtilized = append(u.TopUtilized, row)
		case allocated < underutilizedPct:
			u.Underutilized = append(u.Underutilized, row)
		}

		s, ok := sums[r.Category]
		if !ok {
			s = &categorySums{}
			sums[r.Category] = s
		}
		s.count++
		s.cost += cost
		s.revenue += revenue
		s.allocated += allocated
	}

	if len(resources) > 0 {
		u.AverageUtilization = utilizationTotal / float64(len(resources))
	}
	for category, s := range sums {
		n := float64(s.count)
		m := CategoryMetrics{
			Category:              category,
			Count:                 s.count,
			AverageCost:           s.cost / n,
			AverageRevenue:        s.revenue / n,
			UtilizationPercentage: s.allocated / n,
		}
		if m.AverageRevenue > 0 {
			m.AverageMargin = money.Percent(m.AverageRevenue-m.AverageCost, m.AverageRevenue)
		}
		u.ByCategory[category] = m
	}

	sort.SliceStable(u.TopUtilized, func(i, j int) bool {
		return u.TopUtilized[i].TotalAllocation > u.TopUtilized[j].TotalAllocation
	})
	sort.SliceStable(u.Underutilized, func(i, j int) bool {
		return u.Underutilized[i].TotalAllocation < u.Underutilized[j].TotalAllocation
	})
	if len(u.TopUtilized) > rankedListSize {
		u.TopUtilized = u.TopUtilized[:rankedListSize]
	}
	if len(u.Underutilized) > rankedListSize {
		u.Underutilized = u.Underutilized[:rankedListSize]
	}
	return u
}

func (a *Aggregator) lcatName(st state, r *model.Resource) string {
	if r.LCATID != nil {
		if l, ok := st.lcats[*r.LCATID]; ok {
			return l.Name
		}
	}
	return "Unassigned"
}
