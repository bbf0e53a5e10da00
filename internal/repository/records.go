package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/contract-tracker/internal/model"
)

type contractRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractNumber   string    `gorm:"uniqueIndex;not null"`
	Name             string
	CustomerName     string
	PrimeContractor  string
	IsPrime          bool
	ContractType     string
	StartDate        time.Time
	EndDate          time.Time
	TotalValue       float64
	FundedValue      float64
	StandardFTEHours float64 `gorm:"column:standard_fte_hours"`
	Description      string
	Status           string    `gorm:"index"`
	CreatedAt        time.Time `gorm:"autoCreateTime:false"`
	CreatedBy        string
	ModifiedAt       time.Time
	ModifiedBy       string
}

func (contractRecord) TableName() string { return "contracts" }

type allocationRecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID         uuid.UUID `gorm:"type:uuid;index;not null"`
	ResourceID         uuid.UUID `gorm:"type:uuid;index;not null"`
	Percentage         float64
	AnnualHours        float64
	StartDate          time.Time
	EndDate            *time.Time
	FixedMonthlyAmount *float64
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	CreatedBy          string
	ModifiedAt         time.Time
	ModifiedBy         string
}

func (allocationRecord) TableName() string { return "contract_resources" }

type rateOverrideRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID    uuid.UUID `gorm:"type:uuid;index;not null"`
	LCATID        uuid.UUID `gorm:"column:lcat_id;type:uuid;index;not null"`
	Rate          float64
	EffectiveDate time.Time
	EndDate       *time.Time
	Justification string
	CreatedBy     string
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	UpdatedBy     string
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (rateOverrideRecord) TableName() string { return "contract_lcat_rates" }

type modificationRecord struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID         uuid.UUID `gorm:"type:uuid;index;not null"`
	ModificationNumber string
	ModificationType   string
	PreviousValue      float64
	NewValue           float64
	Justification      string
	CreatedBy          string
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
}

func (modificationRecord) TableName() string { return "contract_modifications" }

type resourceRecord struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	FirstName           string     `gorm:"not null"`
	LastName            string     `gorm:"not null"`
	Email               string     `gorm:"uniqueIndex;not null"`
	Category            string     `gorm:"not null"`
	LCATID              *uuid.UUID `gorm:"column:lcat_id;type:uuid;index"`
	PayRate             float64
	ClearanceLevel      string
	ClearanceExpiration *time.Time
	StartDate           time.Time
	EndDate             *time.Time
	IsActive            bool
	CreatedAt           time.Time `gorm:"autoCreateTime:false"`
	CreatedBy           string
	ModifiedAt          time.Time
	ModifiedBy          string
}

func (resourceRecord) TableName() string { return "resources" }

type lcatRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code        string    `gorm:"uniqueIndex;not null"`
	Name        string    `gorm:"not null"`
	Description string
	Category    string
	IsActive    bool
	CreatedAt   time.Time `gorm:"autoCreateTime:false"`
	CreatedBy   string
	ModifiedAt  time.Time
	ModifiedBy  string
}

func (lcatRecord) TableName() string { return "lcats" }

type lcatRateRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	LCATID        uuid.UUID `gorm:"column:lcat_id;type:uuid;index;not null"`
	Kind          string
	Rate          float64
	EffectiveDate time.Time
	EndDate       *time.Time
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time `gorm:"autoCreateTime:false"`
	UpdatedBy     string
	UpdatedAt     time.Time `gorm:"autoUpdateTime:false"`
}

func (lcatRateRecord) TableName() string { return "lcat_rates" }

type positionTitleRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	LCATID    uuid.UUID `gorm:"column:lcat_id;type:uuid;index;not null"`
	Title     string
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time `gorm:"autoCreateTime:false"`
}

func (positionTitleRecord) TableName() string { return "position_titles" }

// Models lists the table records for AutoMigrate. Production schemas come
// from the SQL migrations in internal/db.
func Models() []any {
	return []any{
		&lcatRecord{},
		&lcatRateRecord{},
		&positionTitleRecord{},
		&resourceRecord{},
		&contractRecord{},
		&allocationRecord{},
		&rateOverrideRecord{},
		&modificationRecord{},
	}
}

func toContractRecord(s model.ContractState) contractRecord {
	return contractRecord{
		ID:               s.ID,
		ContractNumber:   s.Number,
		Name:             s.Name,
		CustomerName:     s.CustomerName,
		PrimeContractor:  s.PrimeContractor,
		IsPrime:          s.IsPrime,
		ContractType:     string(s.Type),
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		TotalValue:       s.TotalValue,
		FundedValue:      s.FundedValue,
		StandardFTEHours: s.StandardFTEHours,
		Description:      s.Description,
		Status:           string(s.Status),
		CreatedAt:        s.Audit.CreatedAt,
		CreatedBy:        s.Audit.CreatedBy,
		ModifiedAt:       s.Audit.ModifiedAt,
		ModifiedBy:       s.Audit.ModifiedBy,
	}
}

func (r contractRecord) state() model.ContractState {
	return model.ContractState{
		ID:               r.ID,
		Number:           r.ContractNumber,
		Name:             r.Name,
		CustomerName:     r.CustomerName,
		PrimeContractor:  r.PrimeContractor,
		IsPrime:          r.IsPrime,
		Type:             model.ContractType(r.ContractType),
		StartDate:        r.StartDate.UTC(),
		EndDate:          r.EndDate.UTC(),
		TotalValue:       r.TotalValue,
		FundedValue:      r.FundedValue,
		StandardFTEHours: r.StandardFTEHours,
		Description:      r.Description,
		Status:           model.ContractStatus(r.Status),
		Audit: model.Audit{
			CreatedAt:  r.CreatedAt.UTC(),
			CreatedBy:  r.CreatedBy,
			ModifiedAt: r.ModifiedAt.UTC(),
			ModifiedBy: r.ModifiedBy,
		},
	}
}

func toAllocationRecord(a model.Allocation) allocationRecord {
	return allocationRecord{
		ID:                 a.ID,
		ContractID:         a.ContractID,
		ResourceID:         a.ResourceID,
		Percentage:         a.Percentage,
		AnnualHours:        a.AnnualHours,
		StartDate:          a.StartDate,
		EndDate:            a.EndDate,
		FixedMonthlyAmount: a.FixedMonthlyAmount,
		CreatedAt:          a.Audit.CreatedAt,
		CreatedBy:          a.Audit.CreatedBy,
		ModifiedAt:         a.Audit.ModifiedAt,
		ModifiedBy:         a.Audit.ModifiedBy,
	}
}

func (r allocationRecord) allocation() model.Allocation {
	return model.Allocation{
		ID:                 r.ID,
		ContractID:         r.ContractID,
		ResourceID:         r.ResourceID,
		Percentage:         r.Percentage,
		AnnualHours:        r.AnnualHours,
		StartDate:          r.StartDate.UTC(),
		EndDate:            utcPtr(r.EndDate),
		FixedMonthlyAmount: r.FixedMonthlyAmount,
		Audit: model.Audit{
			CreatedAt:  r.CreatedAt.UTC(),
			CreatedBy:  r.CreatedBy,
			ModifiedAt: r.ModifiedAt.UTC(),
			ModifiedBy: r.ModifiedBy,
		},
	}
}

func toRateOverrideRecord(contractID uuid.UUID, o model.RateOverride) rateOverrideRecord {
	return rateOverrideRecord{
		ID:            o.ID,
		ContractID:    contractID,
		LCATID:        o.LCATID,
		Rate:          o.Rate,
		EffectiveDate: o.EffectiveDate,
		EndDate:       o.EndDate,
		Justification: o.Notes,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedBy:     o.UpdatedBy,
		UpdatedAt:     o.UpdatedAt,
	}
}

func (r rateOverrideRecord) override() model.RateOverride {
	return model.RateOverride{
		LCATID: r.LCATID,
		RateRecord: model.RateRecord{
			ID:            r.ID,
			Kind:          model.RateKindContractBill,
			Rate:          r.Rate,
			EffectiveDate: r.EffectiveDate.UTC(),
			EndDate:       utcPtr(r.EndDate),
			Notes:         r.Justification,
			CreatedBy:     r.CreatedBy,
			CreatedAt:     r.CreatedAt.UTC(),
			UpdatedBy:     r.UpdatedBy,
			UpdatedAt:     r.UpdatedAt.UTC(),
		},
	}
}

func toModificationRecord(m model.Modification) modificationRecord {
	return modificationRecord{
		ID:                 m.ID,
		ContractID:         m.ContractID,
		ModificationNumber: m.Number,
		ModificationType:   string(m.Type),
		PreviousValue:      m.PreviousValue,
		NewValue:           m.NewValue,
		Justification:      m.Justification,
		CreatedBy:          m.CreatedBy,
		CreatedAt:          m.CreatedAt,
	}
}

func (r modificationRecord) modification() model.Modification {
	return model.Modification{
		ID:            r.ID,
		ContractID:    r.ContractID,
		Number:        r.ModificationNumber,
		Type:          model.ModificationType(r.ModificationType),
		PreviousValue: r.PreviousValue,
		NewValue:      r.NewValue,
		Justification: r.Justification,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func toResourceRecord(r *model.Resource) resourceRecord {
	return resourceRecord{
		ID:                  r.ID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Email:               r.Email,
		Category:            string(r.Category),
		LCATID:              r.LCATID,
		PayRate:             r.PayRate,
		ClearanceLevel:      r.ClearanceLevel,
		ClearanceExpiration: r.ClearanceExpiration,
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		IsActive:            r.IsActive,
		CreatedAt:           r.Audit.CreatedAt,
		CreatedBy:           r.Audit.CreatedBy,
		ModifiedAt:          r.Audit.ModifiedAt,
		ModifiedBy:          r.Audit.ModifiedBy,
	}
}

func (r resourceRecord) resource() *model.Resource {
	return &model.Resource{
		ID:                  r.ID,
		FirstName:           r.FirstName,
		LastName:            r.LastName,
		Email:               r.Email,
		Category:            model.ResourceCategory(r.Category),
		LCATID:              r.LCATID,
		PayRate:             r.PayRate,
		ClearanceLevel:      r.ClearanceLevel,
		ClearanceExpiration: utcPtr(r.ClearanceExpiration),
		StartDate:           r.StartDate.UTC(),
		EndDate:             utcPtr(r.EndDate),
		IsActive:            r.IsActive,
		Audit: model.Audit{
			CreatedAt:  r.CreatedAt.UTC(),
			CreatedBy:  r.CreatedBy,
			ModifiedAt: r.ModifiedAt.UTC(),
			ModifiedBy: r.ModifiedBy,
		},
	}
}

func toLCATRecord(l *model.LCAT) lcatRecord {
	return lcatRecord{
		ID:          l.ID,
		Code:        l.Code,
		Name:        l.Name,
		Description: l.Description,
		Category:    l.Category,
		IsActive:    l.IsActive,
		CreatedAt:   l.Audit.CreatedAt,
		CreatedBy:   l.Audit.CreatedBy,
		ModifiedAt:  l.Audit.ModifiedAt,
		ModifiedBy:  l.Audit.ModifiedBy,
	}
}

func (r lcatRecord) lcat(rates []lcatRateRecord, titles []positionTitleRecord) *model.LCAT {
	history := make([]model.RateRecord, 0, len(rates))
	for _, rr := range rates {
		history = append(history, model.RateRecord{
			ID:            rr.ID,
			Kind:          model.RateKind(rr.Kind),
			Rate:          rr.Rate,
			EffectiveDate: rr.EffectiveDate.UTC(),
			EndDate:       utcPtr(rr.EndDate),
			Notes:         rr.Notes,
			CreatedBy:     rr.CreatedBy,
			CreatedAt:     rr.CreatedAt.UTC(),
			UpdatedBy:     rr.UpdatedBy,
			UpdatedAt:     rr.UpdatedAt.UTC(),
		})
	}
	pts := make([]model.PositionTitle, 0, len(titles))
	for _, t := range titles {
		pts = append(pts, model.PositionTitle{
			ID:        t.ID,
			Title:     t.Title,
			IsActive:  t.IsActive,
			CreatedBy: t.CreatedBy,
			CreatedAt: t.CreatedAt.UTC(),
		})
	}
	return model.RestoreLCAT(model.LCAT{
		ID:          r.ID,
		Code:        r.Code,
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		IsActive:    r.IsActive,
		Audit: model.Audit{
			CreatedAt:  r.CreatedAt.UTC(),
			CreatedBy:  r.CreatedBy,
			ModifiedAt: r.ModifiedAt.UTC(),
			ModifiedBy: r.ModifiedBy,
		},
	}, history, pts)
}

func toLCATRateRecord(lcatID uuid.UUID, rr model.RateRecord) lcatRateRecord {
	return lcatRateRecord{
		ID:            rr.ID,
		LCATID:        lcatID,
		Kind:          string(rr.Kind),
		Rate:          rr.Rate,
		EffectiveDate: rr.EffectiveDate,
		EndDate:       rr.EndDate,
		Notes:         rr.Notes,
		CreatedBy:     rr.CreatedBy,
		CreatedAt:     rr.CreatedAt,
		UpdatedBy:     rr.UpdatedBy,
		UpdatedAt:     rr.UpdatedAt,
	}
}

func toPositionTitleRecord(lcatID uuid.UUID, t model.PositionTitle) positionTitleRecord {
	return positionTitleRecord{
		ID:        t.ID,
		LCATID:    lcatID,
		Title:     t.Title,
		IsActive:  t.IsActive,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
