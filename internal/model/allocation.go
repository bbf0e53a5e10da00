package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const MaxAnnualHours = 2080

// Allocation is the edge between a contract and a resource. Ending it keeps
// the record as history.
type Allocation struct {
	ID                 uuid.UUID
	ContractID         uuid.UUID
	ResourceID         uuid.UUID
	Percentage         float64
	AnnualHours        float64
	StartDate          time.Time
	EndDate            *time.Time
	FixedMonthlyAmount *float64
	Audit              Audit
}

func (a Allocation) IsActive(at time.Time) bool {
	return a.EndDate == nil || a.EndDate.After(at)
}

type AssignInput struct {
	ResourceID         uuid.UUID
	Percentage         float64
	StartDate          time.Time
	AnnualHours        *float64
	FixedMonthlyAmount *float64
}

// validPercentage accepts (0, 100] in hundredths, the precision the
// percentage column stores.
func validPercentage(pct float64) bool {
	return pct > 0 && pct <= 100 && math.Abs(pct*100-math.Round(pct*100)) < 1e-6
}

func roundHundredths(v float64) float64 {
	return math.Round(v*100) / 100
}

func validAnnualHours(hours float64) bool {
	return hours > 0 && hours <= MaxAnnualHours
}

// AllocationPercentTotal sums the percentages of allocations active at at.
func AllocationPercentTotal(allocations []Allocation, at time.Time) float64 {
	total := 0.0
	for _, a := range allocations {
		if a.IsActive(at) {
			total += a.Percentage
		}
	}
	return total
}
