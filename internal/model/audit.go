package model

import "time"

type Audit struct {
	CreatedAt  time.Time
	CreatedBy  string
	ModifiedAt time.Time
	ModifiedBy string
}

func newAudit(actor string, now time.Time) Audit {
	now = now.UTC()
	return Audit{
		CreatedAt:  now,
		CreatedBy:  actor,
		ModifiedAt: now,
		ModifiedBy: actor,
	}
}

func (a *Audit) touch(actor string, now time.Time) {
	a.ModifiedAt = now.UTC()
	a.ModifiedBy = actor
}
