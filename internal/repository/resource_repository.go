package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-tracker/internal/model"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

type ResourceFilter struct {
	Active *bool
	LCATID *uuid.UUID
}

func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	record := toResourceRecord(res)
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *ResourceRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&resourceRecord{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

func (r *ResourceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	var row resourceRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return row.resource(), nil
}

func (r *ResourceRepository) List(ctx context.Context, filter ResourceFilter) ([]*model.Resource, error) {
	query := r.db.WithContext(ctx).Model(&resourceRecord{}).Order("last_name ASC, first_name ASC")
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.LCATID != nil {
		query = query.Where("lcat_id = ?", *filter.LCATID)
	}

	var rows []resourceRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*model.Resource, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.resource())
	}
	return result, nil
}

// Update applies fn to the locked resource row and saves it.
func (r *ResourceRepository) Update(ctx context.Context, id uuid.UUID, fn func(res *model.Resource) error) (*model.Resource, error) {
	var updated *model.Resource
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row resourceRecord
		if err := forUpdate(tx).Where("id = ?", id).Take(&row).Error; err != nil {
			return err
		}
		res := row.resource()
		if err := fn(res); err != nil {
			return err
		}
		record := toResourceRecord(res)
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete refuses to remove a resource that still holds an active
// allocation. Ended allocations are history and are removed with it.
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active int64
		if err := tx.Model(&allocationRecord{}).
			Where("resource_id = ? AND (end_date IS NULL OR end_date > ?)", id, now).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrReferenced
		}
		if err := tx.Where("resource_id = ?", id).Delete(&allocationRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&resourceRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
