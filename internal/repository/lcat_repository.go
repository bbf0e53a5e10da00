package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/contract-tracker/internal/model"
)

type LCATRepository struct {
	db *gorm.DB
}

func NewLCATRepository(db *gorm.DB) *LCATRepository {
	return &LCATRepository{db: db}
}

func (r *LCATRepository) Create(ctx context.Context, l *model.LCAT) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record := toLCATRecord(l)
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return saveLCATChildren(tx, l)
	})
}

func (r *LCATRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&lcatRecord{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

func (r *LCATRepository) Get(ctx context.Context, id uuid.UUID) (*model.LCAT, error) {
	return loadLCAT(r.db.WithContext(ctx), id)
}

func (r *LCATRepository) List(ctx context.Context, active *bool) ([]*model.LCAT, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&lcatRecord{}).Order("code ASC")
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}

	var rows []lcatRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []*model.LCAT{}, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	var rates []lcatRateRecord
	if err := db.Where("lcat_id IN ?", ids).Order("effective_date ASC, created_at ASC").Find(&rates).Error; err != nil {
		return nil, err
	}
	var titles []positionTitleRecord
	if err := db.Where("lcat_id IN ?", ids).Order("created_at ASC").Find(&titles).Error; err != nil {
		return nil, err
	}

	ratesByLCAT := make(map[uuid.UUID][]lcatRateRecord)
	for _, rr := range rates {
		ratesByLCAT[rr.LCATID] = append(ratesByLCAT[rr.LCATID], rr)
	}
	titlesByLCAT := make(map[uuid.UUID][]positionTitleRecord)
	for _, t := range titles {
		titlesByLCAT[t.LCATID] = append(titlesByLCAT[t.LCATID], t)
	}

	result := make([]*model.LCAT, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.lcat(ratesByLCAT[row.ID], titlesByLCAT[row.ID]))
	}
	return result, nil
}

// Update applies fn to the locked LCAT and writes back its details, rate
// history and titles.
func (r *LCATRepository) Update(ctx context.Context, id uuid.UUID, fn func(l *model.LCAT) error) (*model.LCAT, error) {
	var updated *model.LCAT
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		l, err := loadLCAT(forUpdate(tx), id)
		if err != nil {
			return err
		}
		if err := fn(l); err != nil {
			return err
		}
		record := toLCATRecord(l)
		if err := tx.Save(&record).Error; err != nil {
			return err
		}
		if err := saveLCATChildren(tx, l); err != nil {
			return err
		}
		updated = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an LCAT that no resource or contract override uses.
func (r *LCATRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&resourceRecord{}).Where("lcat_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs == 0 {
			if err := tx.Model(&rateOverrideRecord{}).Where("lcat_id = ?", id).Count(&refs).Error; err != nil {
				return err
			}
		}
		if refs > 0 {
			return ErrReferenced
		}

		if err := tx.Where("lcat_id = ?", id).Delete(&lcatRateRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lcat_id = ?", id).Delete(&positionTitleRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&lcatRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func loadLCAT(db *gorm.DB, id uuid.UUID) (*model.LCAT, error) {
	var row lcatRecord
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	plain := db.Session(&gorm.Session{NewDB: true})

	var rates []lcatRateRecord
	if err := plain.Where("lcat_id = ?", id).Order("effective_date ASC, created_at ASC").Find(&rates).Error; err != nil {
		return nil, err
	}
	var titles []positionTitleRecord
	if err := plain.Where("lcat_id = ?", id).Order("created_at ASC").Find(&titles).Error; err != nil {
		return nil, err
	}
	return row.lcat(rates, titles), nil
}

func saveLCATChildren(tx *gorm.DB, l *model.LCAT) error {
	if rates := l.Rates(); len(rates) > 0 {
		records := make([]lcatRateRecord, len(rates))
		for i, rr := range rates {
			records[i] = toLCATRateRecord(l.ID, rr)
		}
		if err := upsertByID(tx).Create(&records).Error; err != nil {
			return err
		}
	}
	if titles := l.PositionTitles(); len(titles) > 0 {
		records := make([]positionTitleRecord, len(titles))
		for i, t := range titles {
			records[i] = toPositionTitleRecord(l.ID, t)
		}
		if err := upsertByID(tx).Create(&records).Error; err != nil {
			return err
		}
	}
	return nil
}
