package model

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type RateKind string

const (
	RateKindPublished    RateKind = "PUBLISHED"
	RateKindDefaultBill  RateKind = "DEFAULT_BILL"
	RateKindContractBill RateKind = "CONTRACT_BILL"
)

func (k RateKind) Valid() bool {
	switch k {
	case RateKindPublished, RateKindDefaultBill, RateKindContractBill:
		return true
	default:
		return false
	}
}

// RateRecord is an effective-dated rate valid over [EffectiveDate, EndDate).
type RateRecord struct {
	ID            uuid.UUID
	Kind          RateKind
	Rate          float64
	EffectiveDate time.Time
	EndDate       *time.Time
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedBy     string
	UpdatedAt     time.Time
}

func (r RateRecord) IsEffective(at time.Time) bool {
	if r.EffectiveDate.After(at) {
		return false
	}
	return r.EndDate == nil || r.EndDate.After(at)
}

// NewRateRecord builds a validated record. The ID is generated when absent.
func NewRateRecord(kind RateKind, rate float64, effectiveDate time.Time, endDate *time.Time, notes, actor string, now time.Time) (RateRecord, error) {
	if err := requireActor(actor); err != nil {
		return RateRecord{}, err
	}
	if !kind.Valid() {
		return RateRecord{}, validationf("unknown rate kind %q", kind)
	}
	if rate <= 0 {
		return RateRecord{}, validationf("rate must be positive")
	}
	if effectiveDate.IsZero() {
		return RateRecord{}, validationf("effective date is required")
	}
	effectiveDate = effectiveDate.UTC()
	if endDate != nil {
		end := endDate.UTC()
		if !end.After(effectiveDate) {
			return RateRecord{}, ErrInvalidDateRange
		}
		endDate = &end
	}
	return RateRecord{
		ID:            uuid.New(),
		Kind:          kind,
		Rate:          rate,
		EffectiveDate: effectiveDate,
		EndDate:       endDate,
		Notes:         notes,
		CreatedBy:     actor,
		CreatedAt:     now.UTC(),
		UpdatedBy:     actor,
		UpdatedAt:     now.UTC(),
	}, nil
}

// CurrentRate returns the record of kind effective at asOf. The latest
// effective date wins; among equal dates the most recently created wins.
func CurrentRate(records []RateRecord, kind RateKind, asOf time.Time) (RateRecord, bool) {
	var (
		best  RateRecord
		found bool
	)
	for _, rec := range records {
		if rec.Kind != kind || !rec.IsEffective(asOf) {
			continue
		}
		if !found ||
			rec.EffectiveDate.After(best.EffectiveDate) ||
			(rec.EffectiveDate.Equal(best.EffectiveDate) && rec.CreatedAt.After(best.CreatedAt)) {
			best = rec
			found = true
		}
	}
	return best, found
}

// AddRate appends rec to a copy of records and end-dates the latest record of
// the same kind at rec.EffectiveDate. The input slice is never modified, so a
// rejected call leaves the history untouched.
func AddRate(records []RateRecord, rec RateRecord) ([]RateRecord, error) {
	if rec.Rate <= 0 {
		return nil, validationf("rate must be positive")
	}
	if rec.EndDate != nil && !rec.EndDate.After(rec.EffectiveDate) {
		return nil, ErrInvalidDateRange
	}

	next := make([]RateRecord, len(records), len(records)+1)
	copy(next, records)

	latest := -1
	for i, existing := range next {
		if existing.Kind != rec.Kind {
			continue
		}
		if latest == -1 || existing.EffectiveDate.After(next[latest].EffectiveDate) {
			latest = i
		}
	}

	if latest >= 0 {
		prev := next[latest]
		if !rec.EffectiveDate.After(prev.EffectiveDate) {
			return nil, validationf("effective date must be after %s", prev.EffectiveDate.Format(time.DateOnly))
		}
		if prev.EndDate == nil || prev.EndDate.After(rec.EffectiveDate) {
			end := rec.EffectiveDate
			prev.EndDate = &end
			prev.UpdatedBy = rec.CreatedBy
			prev.UpdatedAt = rec.CreatedAt
			next[latest] = prev
		}
	}

	next = append(next, rec)
	return next, nil
}

// RateHistory returns the records of kind ordered by effective date.
func RateHistory(records []RateRecord, kind RateKind) []RateRecord {
	result := make([]RateRecord, 0, len(records))
	for _, rec := range records {
		if rec.Kind == kind {
			result = append(result, rec)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EffectiveDate.Before(result[j].EffectiveDate)
	})
	return result
}
