package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PositionTitle struct {
	ID        uuid.UUID
	Title     string
	IsActive  bool
	CreatedBy string
	CreatedAt time.Time
}

// LCAT is a labor category with its own rate history and title aliases.
type LCAT struct {
	ID          uuid.UUID
	Code        string
	Name        string
	Description string
	Category    string
	IsActive    bool
	Audit       Audit

	rates  []RateRecord
	titles []PositionTitle
}

type NewLCATInput struct {
	Code        string
	Name        string
	Description string
	Category    string
}

func NewLCAT(input NewLCATInput, actor string, now time.Time) (*LCAT, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" {
		return nil, validationf("lcat code is required")
	}
	if name == "" {
		return nil, validationf("lcat name is required")
	}
	return &LCAT{
		ID:          uuid.New(),
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		IsActive:    true,
		Audit:       newAudit(actor, now),
	}, nil
}

// RestoreLCAT rebuilds an LCAT loaded from storage.
func RestoreLCAT(l LCAT, rates []RateRecord, titles []PositionTitle) *LCAT {
	restored := l
	restored.rates = append([]RateRecord(nil), rates...)
	restored.titles = append([]PositionTitle(nil), titles...)
	return &restored
}

func (l *LCAT) Rates() []RateRecord {
	return append([]RateRecord(nil), l.rates...)
}

func (l *LCAT) PositionTitles() []PositionTitle {
	return append([]PositionTitle(nil), l.titles...)
}

func (l *LCAT) UpdateDetails(input NewLCATInput, actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	code := strings.TrimSpace(input.Code)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return validationf("lcat code and name are required")
	}
	l.Code = code
	l.Name = name
	l.Description = strings.TrimSpace(input.Description)
	l.Category = strings.TrimSpace(input.Category)
	l.Audit.touch(actor, now)
	return nil
}

func (l *LCAT) Deactivate(actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	l.IsActive = false
	l.Audit.touch(actor, now)
	return nil
}

func (l *LCAT) Reactivate(actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	l.IsActive = true
	l.Audit.touch(actor, now)
	return nil
}

// AddRate records a new Published or DefaultBill rate and closes the
// previous one of the same kind.
func (l *LCAT) AddRate(kind RateKind, rate float64, effectiveDate time.Time, notes, actor string, now time.Time) (RateRecord, error) {
	if kind != RateKindPublished && kind != RateKindDefaultBill {
		return RateRecord{}, validationf("lcat rates must be %s or %s", RateKindPublished, RateKindDefaultBill)
	}
	rec, err := NewRateRecord(kind, rate, effectiveDate, nil, notes, actor, now)
	if err != nil {
		return RateRecord{}, err
	}
	next, err := AddRate(l.rates, rec)
	if err != nil {
		return RateRecord{}, err
	}
	l.rates = next
	l.Audit.touch(actor, now)
	return rec, nil
}

func (l *LCAT) CurrentRate(kind RateKind, asOf time.Time) (RateRecord, bool) {
	return CurrentRate(l.rates, kind, asOf)
}

// CurrentBillRate is the DefaultBill rate effective at asOf, or zero.
func (l *LCAT) CurrentBillRate(asOf time.Time) float64 {
	rec, ok := l.CurrentRate(RateKindDefaultBill, asOf)
	if !ok {
		return 0
	}
	return rec.Rate
}

func (l *LCAT) AddPositionTitle(title, actor string, now time.Time) (PositionTitle, error) {
	if err := requireActor(actor); err != nil {
		return PositionTitle{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return PositionTitle{}, validationf("position title is required")
	}
	for _, existing := range l.titles {
		if existing.IsActive && strings.EqualFold(existing.Title, title) {
			return PositionTitle{}, validationf("position title %q already exists", title)
		}
	}
	pt := PositionTitle{
		ID:        uuid.New(),
		Title:     title,
		IsActive:  true,
		CreatedBy: actor,
		CreatedAt: now.UTC(),
	}
	l.titles = append(l.titles, pt)
	l.Audit.touch(actor, now)
	return pt, nil
}

// DeactivatePositionTitle soft-removes a title. Unknown IDs are ignored.
func (l *LCAT) DeactivatePositionTitle(titleID uuid.UUID, actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	for i := range l.titles {
		if l.titles[i].ID == titleID {
			l.titles[i].IsActive = false
			l.Audit.touch(actor, now)
			return nil
		}
	}
	return nil
}
