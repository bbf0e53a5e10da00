package portfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/money"
)

type PortfolioHealth string

const (
	HealthExcellent PortfolioHealth = "EXCELLENT"
	HealthGood      PortfolioHealth = "GOOD"
	HealthFair      PortfolioHealth = "FAIR"
	HealthPoor      PortfolioHealth = "POOR"
	HealthCritical  PortfolioHealth = "CRITICAL"
)

type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
	TrendDeclining Trend = "DECLINING"
)

type DashboardMetrics struct {
	TotalContractValue      float64         `json:"total_contract_value"`
	TotalFundedValue        float64         `json:"total_funded_value"`
	TotalBurnedAmount       float64         `json:"total_burned_amount"`
	ActiveContracts         int             `json:"active_contracts"`
	DraftContracts          int             `json:"draft_contracts"`
	ClosedContracts         int             `json:"closed_contracts"`
	MonthlyBurnRate         float64         `json:"monthly_burn_rate"`
	QuarterlyBurnRate       float64         `json:"quarterly_burn_rate"`
	CriticalContracts       int             `json:"critical_contracts"`
	WarningContracts        int             `json:"warning_contracts"`
	ProjectedMonthlyRevenue float64         `json:"projected_monthly_revenue"`
	ProjectedMonthlyProfit  float64         `json:"projected_monthly_profit"`
	OverallHealth           PortfolioHealth `json:"overall_health"`
	CalculatedAt            time.Time       `json:"calculated_at"`
}

func (a *Aggregator) DashboardMetrics(snap Snapshot) DashboardMetrics {
	return a.metrics(a.prepare(snap), snap)
}

func (a *Aggregator) metrics(st state, snap Snapshot) DashboardMetrics {
	m := DashboardMetrics{CalculatedAt: st.now}

	for _, v := range st.views {
		c := v.contract
		m.TotalContractValue += c.TotalValue()
		m.TotalFundedValue += c.FundedValue()
		m.TotalBurnedAmount += v.analysis.TotalBurned

		switch c.Status() {
		case model.ContractStatusActive:
			m.ActiveContracts++
			m.MonthlyBurnRate += v.analysis.MonthlyBurn
			m.QuarterlyBurnRate += v.analysis.QuarterlyBurn
			m.ProjectedMonthlyRevenue += contractMonthlyRevenue(c)
		case model.ContractStatusDraft:
			m.DraftContracts++
		case model.ContractStatusClosed:
			m.ClosedContracts++
			continue
		}

		switch v.analysis.WarningLevel {
		case burn.WarningCritical:
			m.CriticalContracts++
		case burn.WarningHigh:
			m.WarningContracts++
		}
	}

	cost := 0.0
	for _, r := range activeResources(snap.Resources) {
		cost += a.resourceMonthlyCost(r)
	}
	m.ProjectedMonthlyProfit = m.ProjectedMonthlyRevenue - cost
	m.OverallHealth = portfolioHealth(m.CriticalContracts, m.WarningContracts, m.ActiveContracts+m.DraftContracts)
	return m
}

// portfolioHealth grades the share of open contracts in critical or high
// warning. A portfolio with no open contracts is Good.
func portfolioHealth(critical, warning, open int) PortfolioHealth {
	if open == 0 {
		return HealthGood
	}
	criticalRatio := float64(critical) / float64(open)
	warningRatio := float64(warning) / float64(open)

	switch {
	case criticalRatio > 0.3:
		return HealthCritical
	case criticalRatio > 0.15 || warningRatio > 0.5:
		return HealthPoor
	case criticalRatio > 0.05 || warningRatio > 0.25:
		return HealthFair
	case warningRatio > 0.1:
		return HealthGood
	default:
		return HealthExcellent
	}
}

type ContractHealth struct {
	ContractID          uuid.UUID            `json:"contract_id"`
	ContractNumber      string               `json:"contract_number"`
	Name                string               `json:"name"`
	CustomerName        string               `json:"customer_name"`
	PrimeContractor     string               `json:"prime_contractor"`
	IsPrime             bool                 `json:"is_prime"`
	Status              model.ContractStatus `json:"status"`
	TotalValue          float64              `json:"total_value"`
	FundedValue         float64              `json:"funded_value"`
	Analysis            burn.Analysis        `json:"analysis"`
	ResourceCount       int                  `json:"resource_count"`
	ResourceUtilization float64              `json:"resource_utilization"`
	ProfitMargin        float64              `json:"profit_margin"`
	Trend               Trend                `json:"trend"`
	Alerts              []string             `json:"alerts"`
}

func (a *Aggregator) ContractHealthCards(snap Snapshot) []ContractHealth {
	return a.healthCards(a.prepare(snap))
}

func (a *Aggregator) healthCards(st state) []ContractHealth {
	cards := make([]ContractHealth, 0, len(st.views))
	for _, v := range st.views {
		c := v.contract
		allocs := c.ActiveAllocations(st.now)

		card := ContractHealth{
			ContractID:      c.ID(),
			ContractNumber:  c.Number(),
			Name:            c.Name(),
			CustomerName:    c.CustomerName(),
			PrimeContractor: c.PrimeContractor(),
			IsPrime:         c.IsPrime(),
			Status:          c.Status(),
			TotalValue:      c.TotalValue(),
			FundedValue:     c.FundedValue(),
			Analysis:        v.analysis,
			ResourceCount:   len(allocs),
			Trend:           contractTrend(v.analysis),
			Alerts:          []string{},
		}
		if len(allocs) > 0 {
			card.ResourceUtilization = model.AllocationPercentTotal(allocs, st.now) / float64(len(allocs))
		}
		if v.analysis.MonthlyBurn > 0 {
			revenue := contractMonthlyRevenue(c)
			if revenue > 0 {
				card.ProfitMargin = money.Percent(revenue-v.monthlyCost, revenue)
			}
		}
		card.Alerts = contractAlerts(card, st.now, c.EndDate())
		cards = append(cards, card)
	}

	sort.SliceStable(cards, func(i, j int) bool {
		si, sj := cards[i].Analysis.WarningLevel.Severity(), cards[j].Analysis.WarningLevel.Severity()
		if si != sj {
			return si > sj
		}
		return runwayLess(cards[i].Analysis.MonthsUntilDepleted, cards[j].Analysis.MonthsUntilDepleted)
	})
	return cards
}

// runwayLess orders shorter runway first. Unbounded runway sorts last.
func runwayLess(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

func contractTrend(an burn.Analysis) Trend {
	switch {
	case an.WillExceedFunding:
		return TrendDeclining
	case an.MonthsUntilDepleted == nil || *an.MonthsUntilDepleted > 6:
		return TrendStable
	default:
		return TrendImproving
	}
}

func contractAlerts(card ContractHealth, now, end time.Time) []string {
	an := card.Analysis
	alerts := []string{}

	if an.WarningLevel == burn.WarningCritical && an.MonthsUntilDepleted != nil {
		alerts = append(alerts, fmt.Sprintf("Critical: funding depletes in %d months", *an.MonthsUntilDepleted))
	}
	if an.WillExceedFunding {
		alerts = append(alerts, fmt.Sprintf("Projected shortfall: $%s", money.Format(an.Shortfall, 0)))
	}
	if card.ResourceUtilization > topUtilizedPct {
		alerts = append(alerts, "High resource utilization")
	}
	if card.ProfitMargin > 0 && card.ProfitMargin < 10 {
		alerts = append(alerts, fmt.Sprintf("Low margin: %.1f%%", card.ProfitMargin))
	}
	if card.ProfitMargin < 0 {
		alerts = append(alerts, fmt.Sprintf("Negative margin: %.1f%%", card.ProfitMargin))
	}
	if card.Status != model.ContractStatusClosed {
		if days := daysUntil(now, end); days >= 0 && days <= expiringSoonDays {
			alerts = append(alerts, fmt.Sprintf("Contract expires in %d days", days))
		}
	}
	return alerts
}
