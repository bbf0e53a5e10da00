package model

import (
	"time"

	"github.com/google/uuid"
)

type ModificationType string

const (
	ModificationTypeFundingChange ModificationType = "FUNDING_CHANGE"
	ModificationTypePeriodChange  ModificationType = "PERIOD_OF_PERFORMANCE_CHANGE"
	ModificationTypeScopeChange   ModificationType = "SCOPE_CHANGE"
	ModificationTypeRateChange    ModificationType = "RATE_CHANGE"
	ModificationTypeOther         ModificationType = "OTHER"
)

// Modification is an append-only audit record of a contract change.
type Modification struct {
	ID            uuid.UUID
	ContractID    uuid.UUID
	Number        string
	Type          ModificationType
	PreviousValue float64
	NewValue      float64
	Justification string
	CreatedBy     string
	CreatedAt     time.Time
}
