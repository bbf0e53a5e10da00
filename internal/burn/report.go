package burn

import (
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
)

// Line is the burn contribution of one active allocation.
type Line struct {
	AllocationID uuid.UUID `json:"allocation_id"`
	ResourceID   uuid.UUID `json:"resource_id"`
	ResourceName string    `json:"resource_name"`
	LCAT         string    `json:"lcat"`
	Percentage   float64   `json:"percentage"`
	AnnualHours  float64   `json:"annual_hours"`
	HourlyCost   float64   `json:"hourly_cost"`
	BillRate     float64   `json:"bill_rate"`
	FixedMonthly bool      `json:"fixed_monthly"`
	MonthlyCost  float64   `json:"monthly_cost"`
}

// Report is the burn analysis of a contract with its per-allocation
// breakdown, the input to exported burn-rate documents.
type Report struct {
	Contract *model.Contract `json:"-"`
	Analysis Analysis        `json:"analysis"`
	Lines    []Line          `json:"lines"`
}

func (e *Engine) Report(c *model.Contract, resources Resources, lcats LCATs) Report {
	now := e.Now()
	active := c.ActiveAllocations(now)
	lines := make([]Line, 0, len(active))
	for _, a := range active {
		r := resources[a.ResourceID]
		line := Line{
			AllocationID: a.ID,
			ResourceID:   a.ResourceID,
			ResourceName: a.ResourceID.String(),
			Percentage:   a.Percentage,
			AnnualHours:  a.AnnualHours,
			HourlyCost:   e.defaultRate,
			BillRate:     e.defaultRate,
			FixedMonthly: a.FixedMonthlyAmount != nil,
			MonthlyCost:  e.AllocationMonthlyCost(a, r),
		}
		if r != nil {
			line.ResourceName = r.FullName()
			if cost := r.BurdenedCost(); cost > 0 {
				line.HourlyCost = cost
			}
			if r.LCATID != nil {
				if l := lcats[*r.LCATID]; l != nil {
					line.LCAT = l.Code
					line.BillRate = e.BillRate(c, l)
				}
			}
		}
		lines = append(lines, line)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].MonthlyCost > lines[j].MonthlyCost
	})

	return Report{
		Contract: c,
		Analysis: e.Analyze(c, resources),
		Lines:    lines,
	}
}
