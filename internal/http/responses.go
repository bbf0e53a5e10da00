package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/service"
)

type auditResponse struct {
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	ModifiedAt time.Time `json:"modified_at"`
	ModifiedBy string    `json:"modified_by"`
}

func toAudit(a model.Audit) auditResponse {
	return auditResponse{
		CreatedAt:  a.CreatedAt,
		CreatedBy:  a.CreatedBy,
		ModifiedAt: a.ModifiedAt,
		ModifiedBy: a.ModifiedBy,
	}
}

type rateResponse struct {
	ID            uuid.UUID      `json:"id"`
	LCATID        *uuid.UUID     `json:"lcat_id,omitempty"`
	Kind          model.RateKind `json:"rate_type"`
	Rate          float64        `json:"rate"`
	EffectiveDate time.Time      `json:"effective_date"`
	EndDate       *time.Time     `json:"end_date"`
	Notes         string         `json:"notes,omitempty"`
	CreatedBy     string         `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

func toRate(r model.RateRecord) rateResponse {
	return rateResponse{
		ID:            r.ID,
		Kind:          r.Kind,
		Rate:          r.Rate,
		EffectiveDate: r.EffectiveDate,
		EndDate:       r.EndDate,
		Notes:         r.Notes,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
	}
}

func toRateOverride(o model.RateOverride) rateResponse {
	resp := toRate(o.RateRecord)
	lcatID := o.LCATID
	resp.LCATID = &lcatID
	return resp
}

type allocationResponse struct {
	ID                 uuid.UUID     `json:"id"`
	ContractID         uuid.UUID     `json:"contract_id"`
	ResourceID         uuid.UUID     `json:"resource_id"`
	Percentage         float64       `json:"allocation_percentage"`
	AnnualHours        float64       `json:"annual_hours"`
	StartDate          time.Time     `json:"start_date"`
	EndDate            *time.Time    `json:"end_date"`
	FixedMonthlyAmount *float64      `json:"fixed_monthly_amount"`
	Audit              auditResponse `json:"audit"`
}

func toAllocation(a model.Allocation) allocationResponse {
	return allocationResponse{
		ID:                 a.ID,
		ContractID:         a.ContractID,
		ResourceID:         a.ResourceID,
		Percentage:         a.Percentage,
		AnnualHours:        a.AnnualHours,
		StartDate:          a.StartDate,
		EndDate:            a.EndDate,
		FixedMonthlyAmount: a.FixedMonthlyAmount,
		Audit:              toAudit(a.Audit),
	}
}

func toAllocations(list []model.Allocation) []allocationResponse {
	out := make([]allocationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAllocation(a))
	}
	return out
}

type modificationResponse struct {
	ID            uuid.UUID              `json:"id"`
	Number        string                 `json:"modification_number"`
	Type          model.ModificationType `json:"modification_type"`
	PreviousValue float64                `json:"previous_value"`
	NewValue      float64                `json:"new_value"`
	Justification string                 `json:"justification"`
	CreatedBy     string                 `json:"created_by"`
	CreatedAt     time.Time              `json:"created_at"`
}

func toModification(m model.Modification) modificationResponse {
	return modificationResponse{
		ID:            m.ID,
		Number:        m.Number,
		Type:          m.Type,
		PreviousValue: m.PreviousValue,
		NewValue:      m.NewValue,
		Justification: m.Justification,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

type contractResponse struct {
	ID               uuid.UUID              `json:"id"`
	Number           string                 `json:"contract_number"`
	Name             string                 `json:"name"`
	CustomerName     string                 `json:"customer_name"`
	PrimeContractor  string                 `json:"prime_contractor"`
	IsPrime          bool                   `json:"is_prime"`
	Type             model.ContractType     `json:"contract_type"`
	Status           model.ContractStatus   `json:"status"`
	StartDate        time.Time              `json:"start_date"`
	EndDate          time.Time              `json:"end_date"`
	TotalValue       float64                `json:"total_value"`
	FundedValue      float64                `json:"funded_value"`
	StandardFTEHours float64                `json:"standard_fte_hours"`
	Description      string                 `json:"description"`
	Allocations      []allocationResponse   `json:"allocations"`
	RateOverrides    []rateResponse         `json:"rate_overrides"`
	Modifications    []modificationResponse `json:"modifications"`
	Audit            auditResponse          `json:"audit"`
}

func toContract(c *model.Contract) contractResponse {
	overrides := c.RateOverrides()
	rates := make([]rateResponse, 0, len(overrides))
	for _, o := range overrides {
		rates = append(rates, toRateOverride(o))
	}
	mods := c.Modifications()
	modifications := make([]modificationResponse, 0, len(mods))
	for _, m := range mods {
		modifications = append(modifications, toModification(m))
	}
	return contractResponse{
		ID:               c.ID(),
		Number:           c.Number(),
		Name:             c.Name(),
		CustomerName:     c.CustomerName(),
		PrimeContractor:  c.PrimeContractor(),
		IsPrime:          c.IsPrime(),
		Type:             c.Type(),
		Status:           c.Status(),
		StartDate:        c.StartDate(),
		EndDate:          c.EndDate(),
		TotalValue:       c.TotalValue(),
		FundedValue:      c.FundedValue(),
		StandardFTEHours: c.StandardFTEHours(),
		Description:      c.Description(),
		Allocations:      toAllocations(c.Allocations()),
		RateOverrides:    rates,
		Modifications:    modifications,
		Audit:            toAudit(c.Audit()),
	}
}

type assignResponse struct {
	Allocation      allocationResponse `json:"allocation"`
	TotalAllocation float64            `json:"total_allocation"`
	OverAllocated   bool               `json:"over_allocated"`
}

func toAssign(r *service.AssignResult) assignResponse {
	return assignResponse{
		Allocation:      toAllocation(r.Allocation),
		TotalAllocation: r.TotalAllocation,
		OverAllocated:   r.OverAllocated,
	}
}

type resourceResponse struct {
	ID                  uuid.UUID              `json:"id"`
	FirstName           string                 `json:"first_name"`
	LastName            string                 `json:"last_name"`
	Email               string                 `json:"email"`
	Category            model.ResourceCategory `json:"resource_type"`
	LCATID              *uuid.UUID             `json:"lcat_id"`
	PayRate             float64                `json:"pay_rate"`
	BurdenedCost        float64                `json:"burdened_cost"`
	ClearanceLevel      string                 `json:"clearance_level,omitempty"`
	ClearanceExpiration *time.Time             `json:"clearance_expiration,omitempty"`
	StartDate           time.Time              `json:"start_date"`
	EndDate             *time.Time             `json:"end_date"`
	IsActive            bool                   `json:"is_active"`
	Audit               auditResponse          `json:"audit"`
}

func toResource(r *model.Resource) resourceResponse {
	return resourceResponse{
		ID:                  r.ID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Email:               r.Email,
		Category:            r.Category,
		LCATID:              r.LCATID,
		PayRate:             r.PayRate,
		BurdenedCost:        r.BurdenedCost(),
		ClearanceLevel:      r.ClearanceLevel,
		ClearanceExpiration: r.ClearanceExpiration,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		IsActive:            r.IsActive,
		Audit:               toAudit(r.Audit),
	}
}

type positionTitleResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toPositionTitle(t model.PositionTitle) positionTitleResponse {
	return positionTitleResponse{
		ID:        t.ID,
		Title:     t.Title,
		IsActive:  t.IsActive,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

type lcatResponse struct {
	ID             uuid.UUID               `json:"id"`
	Code           string                  `json:"code"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	Category       string                  `json:"category"`
	IsActive       bool                    `json:"is_active"`
	Rates          []rateResponse          `json:"rates"`
	PositionTitles []positionTitleResponse `json:"position_titles"`
	Audit          auditResponse           `json:"audit"`
}

func toLCAT(l *model.LCAT) lcatResponse {
	records := l.Rates()
	rates := make([]rateResponse, 0, len(records))
	for _, r := range records {
		rates = append(rates, toRate(r))
	}
	list := l.PositionTitles()
	titles := make([]positionTitleResponse, 0, len(list))
	for _, t := range list {
		titles = append(titles, toPositionTitle(t))
	}
	return lcatResponse{
		ID:             l.ID,
		Code:           l.Code,
		Name:           l.Name,
		Description:    l.Description,
		Category:       l.Category,
		IsActive:       l.IsActive,
		Rates:          rates,
		PositionTitles: titles,
		Audit:          toAudit(l.Audit),
	}
}
