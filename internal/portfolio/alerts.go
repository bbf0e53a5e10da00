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

type AlertType string

const (
	AlertFundingCritical    AlertType = "FUNDING_CRITICAL"
	AlertContractExpiring   AlertType = "CONTRACT_EXPIRING"
	AlertOverAllocation     AlertType = "OVER_ALLOCATION"
	AlertResourceUnderwater AlertType = "RESOURCE_UNDERWATER"
	AlertClearanceExpired   AlertType = "CLEARANCE_EXPIRED"
)

type AlertSeverity string

const (
	SeverityCritical AlertSeverity = "CRITICAL"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityWarning  AlertSeverity = "WARNING"
	SeverityInfo     AlertSeverity = "INFO"
)

func (s AlertSeverity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityWarning:
		return 2
	default:
		return 3
	}
}

// Alert is derived on every call and never stored.
type Alert struct {
	ID         uuid.UUID      `json:"id"`
	Type       AlertType      `json:"type"`
	Severity   AlertSeverity  `json:"severity"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	CreatedAt  time.Time      `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func (a *Aggregator) CriticalAlerts(snap Snapshot) []Alert {
	return a.alerts(a.prepare(snap), snap)
}

func (a *Aggregator) alerts(st state, snap Snapshot) []Alert {
	alerts := []Alert{}

	for _, v := range st.views {
		c := v.contract
		if c.Status() != model.ContractStatusActive {
			continue
		}
		an := v.analysis

		if an.WarningLevel == burn.WarningCritical {
			meta := map[string]any{
				"remaining_funds": money.Round(an.RemainingFunds),
				"monthly_burn":    money.Round(an.MonthlyBurn),
			}
			if an.ProjectedDepletionDate != nil {
				meta["depletion_date"] = an.ProjectedDepletionDate.Format(time.DateOnly)
			}
			alerts = append(alerts, Alert{
				ID:         uuid.New(),
				Type:       AlertFundingCritical,
				Severity:   SeverityCritical,
				Title:      fmt.Sprintf("Critical Funding Alert: %s", c.Number()),
				Message:    fmt.Sprintf("Contract will deplete funding in %d months", *an.MonthsUntilDepleted),
				EntityType: "Contract",
				EntityID:   c.ID(),
				CreatedAt:  st.now,
				Metadata:   meta,
			})
		}

		if days := daysUntil(st.now, c.EndDate()); days <= expiringSoonDays {
			severity := SeverityWarning
			if days <= expiringUrgentDays {
				severity = SeverityHigh
			}
			msg := fmt.Sprintf("Contract expires in %d days", days)
			if days < 0 {
				msg = fmt.Sprintf("Contract period of performance ended %d days ago", -days)
			}
			alerts = append(alerts, Alert{
				ID:         uuid.New(),
				Type:       AlertContractExpiring,
				Severity:   severity,
				Title:      fmt.Sprintf("Contract Expiring: %s", c.Number()),
				Message:    msg,
				EntityType: "Contract",
				EntityID:   c.ID(),
				CreatedAt:  st.now,
			})
		}
	}

	for _, r := range activeResources(snap.Resources) {
		allocated := totalAllocation(st, r.ID)
		if allocated > overAllocatedPct {
			alerts = append(alerts, Alert{
				ID:         uuid.New(),
				Type:       AlertOverAllocation,
				Severity:   SeverityHigh,
				Title:      fmt.Sprintf("Resource Over-Allocated: %s", r.FullName()),
				Message:    fmt.Sprintf("Resource is allocated at %s%% across contracts", money.Format(allocated, 0)),
				EntityType: "Resource",
				EntityID:   r.ID,
				CreatedAt:  st.now,
			})
		}

		if allocated > 0 && r.ClearanceExpired(st.now) {
			alerts = append(alerts, Alert{
				ID:         uuid.New(),
				Type:       AlertClearanceExpired,
				Severity:   SeverityHigh,
				Title:      fmt.Sprintf("Clearance Expired: %s", r.FullName()),
				Message:    fmt.Sprintf("%s clearance expired on %s", r.ClearanceLevel, r.ClearanceExpiration.Format(time.DateOnly)),
				EntityType: "Resource",
				EntityID:   r.ID,
				CreatedAt:  st.now,
			})
		}

		cost := a.resourceMonthlyCost(r)
		revenue := a.resourceMonthlyRevenue(st, r)
		if revenue > 0 && revenue < cost {
			margin := money.Percent(revenue-cost, revenue)
			alerts = append(alerts, Alert{
				ID:         uuid.New(),
				Type:       AlertResourceUnderwater,
				Severity:   SeverityWarning,
				Title:      fmt.Sprintf("Underwater Resource: %s", r.FullName()),
				Message:    fmt.Sprintf("Resource margin is %.1f%% (losing $%s/month)", margin, money.Format(cost-revenue, 2)),
				EntityType: "Resource",
				EntityID:   r.ID,
				CreatedAt:  st.now,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		ri, rj := alerts[i].Severity.rank(), alerts[j].Severity.rank()
		if ri != rj {
			return ri < rj
		}
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})
	return alerts
}
