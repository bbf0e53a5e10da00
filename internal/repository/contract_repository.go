package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/contract-tracker/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

type ContractFilter struct {
	Status *model.ContractStatus
}

func (r *ContractRepository) Create(ctx context.Context, c *model.Contract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state := c.State()
		record := toContractRecord(state)
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return saveChildren(tx, state)
	})
}

func (r *ContractRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&contractRecord{}).
		Where("contract_number = ?", number).
		Count(&count).Error
	return count > 0, err
}

func (r *ContractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	return loadContract(r.db.WithContext(ctx), id)
}

// Update loads the contract under a row lock, applies fn and writes the
// aggregate back in the same transaction. Concurrent writers to one
// contract are serialized; fn returning an error rolls everything back.
func (r *ContractRepository) Update(ctx context.Context, id uuid.UUID, fn func(c *model.Contract) error) (*model.Contract, error) {
	var updated *model.Contract
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := loadContract(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		state := c.State()
		record := toContractRecord(state)
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if err := saveChildren(tx, state); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ContractRepository) List(ctx context.Context, filter ContractFilter) ([]*model.Contract, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&contractRecord{}).Order("contract_number ASC")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}

	var rows []contractRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*model.Contract{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	children, err := loadChildren(db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]*model.Contract, 0, len(rows))
	for _, row := range rows {
		state := row.state()
		children.apply(&state)
		result = append(result, model.RestoreContract(state))
	}
	return result, nil
}

// Delete removes a contract and everything it owns.
func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&allocationRecord{}, &rateOverrideRecord{}, &modificationRecord{}} {
			if err := tx.Where("contract_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&contractRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// ContractsWithActiveAllocation returns the IDs of contracts where the
// resource holds an allocation active at at.
func (r *ContractRepository) ContractsWithActiveAllocation(ctx context.Context, resourceID uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&allocationRecord{}).
		Distinct("contract_id").
		Where("resource_id = ? AND (end_date IS NULL OR end_date > ?)", resourceID, at).
		Pluck("contract_id", &ids).Error
	return ids, err
}

// AllocationTotal sums the resource's active allocation percentages across
// all non-closed contracts.
func (r *ContractRepository) AllocationTotal(ctx context.Context, resourceID uuid.UUID, at time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&allocationRecord{}).
		Joins("JOIN contracts ON contracts.id = contract_resources.contract_id").
		Where("contract_resources.resource_id = ? AND (contract_resources.end_date IS NULL OR contract_resources.end_date > ?)", resourceID, at).
		Where("contracts.status <> ?", string(model.ContractStatusClosed)).
		Select("COALESCE(SUM(contract_resources.percentage), 0)").
		Scan(&total).Error
	return total, err
}

func (r *ContractRepository) LCATReferenced(ctx context.Context, lcatID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rateOverrideRecord{}).
		Where("lcat_id = ?", lcatID).
		Count(&count).Error
	return count > 0, err
}

func loadContract(db *gorm.DB, id uuid.UUID) (*model.Contract, error) {
	var row contractRecord
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	children, err := loadChildren(db.Session(&gorm.Session{NewDB: true}), []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	state := row.state()
	children.apply(&state)
	return model.RestoreContract(state), nil
}

type contractChildren struct {
	allocations   map[uuid.UUID][]model.Allocation
	overrides     map[uuid.UUID][]model.RateOverride
	modifications map[uuid.UUID][]model.Modification
}

func (cc contractChildren) apply(s *model.ContractState) {
	s.Allocations = cc.allocations[s.ID]
	s.RateOverrides = cc.overrides[s.ID]
	s.Modifications = cc.modifications[s.ID]
}

func loadChildren(db *gorm.DB, ids []uuid.UUID) (contractChildren, error) {
	cc := contractChildren{
		allocations:   make(map[uuid.UUID][]model.Allocation),
		overrides:     make(map[uuid.UUID][]model.RateOverride),
		modifications: make(map[uuid.UUID][]model.Modification),
	}

	var allocs []allocationRecord
	if err := db.Where("contract_id IN ?", ids).Order("start_date ASC, created_at ASC").Find(&allocs).Error; err != nil {
		return cc, err
	}
	for _, a := range allocs {
		cc.allocations[a.ContractID] = append(cc.allocations[a.ContractID], a.allocation())
	}

	var overrides []rateOverrideRecord
	if err := db.Where("contract_id IN ?", ids).Order("effective_date ASC").Find(&overrides).Error; err != nil {
		return cc, err
	}
	for _, o := range overrides {
		cc.overrides[o.ContractID] = append(cc.overrides[o.ContractID], o.override())
	}

	var mods []modificationRecord
	if err := db.Where("contract_id IN ?", ids).Order("created_at ASC").Find(&mods).Error; err != nil {
		return cc, err
	}
	for _, m := range mods {
		cc.modifications[m.ContractID] = append(cc.modifications[m.ContractID], m.modification())
	}
	return cc, nil
}

// saveChildren upserts allocations and overrides by ID. Modifications are
// append-only, so existing rows are left untouched.
func saveChildren(tx *gorm.DB, s model.ContractState) error {
	if len(s.Allocations) > 0 {
		records := make([]allocationRecord, len(s.Allocations))
		for i, a := range s.Allocations {
			records[i] = toAllocationRecord(a)
		}
		if err := upsertByID(tx).Create(&records).Error; err != nil {
			return err
		}
	}

	if len(s.RateOverrides) > 0 {
		records := make([]rateOverrideRecord, len(s.RateOverrides))
		for i, o := range s.RateOverrides {
			records[i] = toRateOverrideRecord(s.ID, o)
		}
		if err := upsertByID(tx).Create(&records).Error; err != nil {
			return err
		}
	}

	if len(s.Modifications) > 0 {
		records := make([]modificationRecord, len(s.Modifications))
		for i, m := range s.Modifications {
			records[i] = toModificationRecord(m)
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error; err != nil {
			return err
		}
	}
	return nil
}

// IsNotFound reports whether err means the row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
