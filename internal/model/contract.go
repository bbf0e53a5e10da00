package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ContractType string

const (
	ContractTypeFixedPrice       ContractType = "FIXED_PRICE"
	ContractTypeTimeAndMaterials ContractType = "TIME_AND_MATERIALS"
	ContractTypeCostPlus         ContractType = "COST_PLUS"
	ContractTypeLaborHourOnly    ContractType = "LABOR_HOUR_ONLY"
)

func (t ContractType) Valid() bool {
	switch t {
	case ContractTypeFixedPrice, ContractTypeTimeAndMaterials, ContractTypeCostPlus, ContractTypeLaborHourOnly:
		return true
	default:
		return false
	}
}

type ContractStatus string

const (
	ContractStatusDraft  ContractStatus = "DRAFT"
	ContractStatusActive ContractStatus = "ACTIVE"
	ContractStatusClosed ContractStatus = "CLOSED"
)

const DefaultStandardFTEHours = 1912

// RateOverride is a contract-specific bill rate for one LCAT.
type RateOverride struct {
	LCATID uuid.UUID
	RateRecord
}

// ContractState is the storage shape of a contract aggregate.
type ContractState struct {
	ID               uuid.UUID
	Number           string
	Name             string
	CustomerName     string
	PrimeContractor  string
	IsPrime          bool
	Type             ContractType
	StartDate        time.Time
	EndDate          time.Time
	TotalValue       float64
	FundedValue      float64
	StandardFTEHours float64
	Description      string
	Status           ContractStatus
	Audit            Audit

	Allocations   []Allocation
	RateOverrides []RateOverride
	Modifications []Modification
}

// Contract is the aggregate root for allocations, rate overrides and
// funding modifications. All changes go through its methods.
type Contract struct {
	s ContractState
}

type NewContractInput struct {
	Number           string
	Name             string
	CustomerName     string
	PrimeContractor  string
	IsPrime          bool
	Type             ContractType
	StartDate        time.Time
	EndDate          time.Time
	TotalValue       float64
	StandardFTEHours float64
	Description      string
}

// NewContract creates a Draft contract with no funding. Funding is applied
// with UpdateFunding so that it lands in the modification ledger.
func NewContract(input NewContractInput, actor string, now time.Time) (*Contract, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(input.Number)
	if number == "" {
		return nil, validationf("contract number is required")
	}
	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		return nil, validationf("customer name is required")
	}
	prime := strings.TrimSpace(input.PrimeContractor)
	if prime == "" {
		return nil, validationf("prime contractor is required")
	}
	if !input.Type.Valid() {
		return nil, validationf("unknown contract type %q", input.Type)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, validationf("start and end dates are required")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrInvalidDateRange)
	}
	if input.TotalValue <= 0 {
		return nil, validationf("total value must be positive")
	}
	hours := input.StandardFTEHours
	if hours == 0 {
		hours = DefaultStandardFTEHours
	}
	if !validAnnualHours(hours) {
		return nil, validationf("standard hours must be between 0 and %d", MaxAnnualHours)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = number
	}

	return RestoreContract(ContractState{
		ID:               uuid.New(),
		Number:           number,
		Name:             name,
		CustomerName:     customer,
		PrimeContractor:  prime,
		IsPrime:          input.IsPrime,
		Type:             input.Type,
		StartDate:        input.StartDate.UTC(),
		EndDate:          input.EndDate.UTC(),
		TotalValue:       input.TotalValue,
		StandardFTEHours: hours,
		Description:      strings.TrimSpace(input.Description),
		Status:           ContractStatusDraft,
		Audit:            newAudit(actor, now),
	}), nil
}

// RestoreContract rebuilds an aggregate from its stored state.
func RestoreContract(s ContractState) *Contract {
	s.Allocations = append([]Allocation(nil), s.Allocations...)
	s.RateOverrides = append([]RateOverride(nil), s.RateOverrides...)
	s.Modifications = append([]Modification(nil), s.Modifications...)
	return &Contract{s: s}
}

// State returns a copy of the aggregate for persistence.
func (c *Contract) State() ContractState {
	s := c.s
	s.Allocations = c.Allocations()
	s.RateOverrides = c.RateOverrides()
	s.Modifications = c.Modifications()
	return s
}

func (c *Contract) ID() uuid.UUID             { return c.s.ID }
func (c *Contract) Number() string            { return c.s.Number }
func (c *Contract) Name() string              { return c.s.Name }
func (c *Contract) CustomerName() string      { return c.s.CustomerName }
func (c *Contract) PrimeContractor() string   { return c.s.PrimeContractor }
func (c *Contract) IsPrime() bool             { return c.s.IsPrime }
func (c *Contract) Type() ContractType        { return c.s.Type }
func (c *Contract) StartDate() time.Time      { return c.s.StartDate }
func (c *Contract) EndDate() time.Time        { return c.s.EndDate }
func (c *Contract) TotalValue() float64       { return c.s.TotalValue }
func (c *Contract) FundedValue() float64      { return c.s.FundedValue }
func (c *Contract) StandardFTEHours() float64 { return c.s.StandardFTEHours }
func (c *Contract) Description() string       { return c.s.Description }
func (c *Contract) Status() ContractStatus    { return c.s.Status }
func (c *Contract) Audit() Audit              { return c.s.Audit }

func (c *Contract) Allocations() []Allocation {
	result := make([]Allocation, len(c.s.Allocations))
	for i, a := range c.s.Allocations {
		result[i] = copyAllocation(a)
	}
	return result
}

func (c *Contract) ActiveAllocations(at time.Time) []Allocation {
	result := make([]Allocation, 0, len(c.s.Allocations))
	for _, a := range c.s.Allocations {
		if a.IsActive(at) {
			result = append(result, copyAllocation(a))
		}
	}
	return result
}

// AllocationHistory lists every allocation of the resource on this contract,
// oldest first, ended ones included.
func (c *Contract) AllocationHistory(resourceID uuid.UUID) []Allocation {
	var result []Allocation
	for _, a := range c.s.Allocations {
		if a.ResourceID == resourceID {
			result = append(result, copyAllocation(a))
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result
}

func (c *Contract) ActiveAllocationFor(resourceID uuid.UUID, at time.Time) (Allocation, bool) {
	i := c.activeAllocationIndex(resourceID, at)
	if i < 0 {
		return Allocation{}, false
	}
	return copyAllocation(c.s.Allocations[i]), true
}

func (c *Contract) activeAllocationIndex(resourceID uuid.UUID, at time.Time) int {
	for i, a := range c.s.Allocations {
		if a.ResourceID == resourceID && a.IsActive(at) {
			return i
		}
	}
	return -1
}

func (c *Contract) RateOverrides() []RateOverride {
	result := make([]RateOverride, len(c.s.RateOverrides))
	for i, o := range c.s.RateOverrides {
		result[i] = o
		result[i].EndDate = copyTime(o.EndDate)
	}
	return result
}

func (c *Contract) Modifications() []Modification {
	return append([]Modification(nil), c.s.Modifications...)
}

// Validate reports whether the stored state satisfies the aggregate invariants.
func (c *Contract) Validate() error {
	switch {
	case c.s.ID == uuid.Nil:
		return validationf("contract id is empty")
	case !c.s.EndDate.After(c.s.StartDate):
		return fmt.Errorf("%w: contract %s ends before it starts", ErrInvalidDateRange, c.s.Number)
	case c.s.TotalValue <= 0 || isBad(c.s.TotalValue):
		return validationf("contract %s has invalid total value", c.s.Number)
	case c.s.FundedValue < 0 || isBad(c.s.FundedValue):
		return validationf("contract %s has invalid funded value", c.s.Number)
	case c.s.FundedValue > c.s.TotalValue:
		return ErrFundingExceedsTotal
	}
	for _, a := range c.s.Allocations {
		if !validPercentage(a.Percentage) || a.AnnualHours < 0 || isBad(a.AnnualHours) {
			return fmt.Errorf("%w: allocation %s", ErrInvalidAllocation, a.ID)
		}
	}
	return nil
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func (c *Contract) Activate(actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if c.s.Status != ContractStatusDraft {
		return fmt.Errorf("%w: only draft contracts can be activated", ErrInvalidTransition)
	}
	if c.s.FundedValue <= 0 {
		return ErrFundingRequired
	}
	c.s.Status = ContractStatusActive
	c.s.Audit.touch(actor, now)
	return nil
}

func (c *Contract) Close(actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if c.s.Status != ContractStatusActive {
		return fmt.Errorf("%w: only active contracts can be closed", ErrInvalidTransition)
	}
	c.s.Status = ContractStatusClosed
	c.s.Audit.touch(actor, now)
	return nil
}

type UpdateFundingInput struct {
	FundedValue        float64
	Justification      string
	ModificationNumber string
}

// UpdateFunding is the only way funded value changes. It appends an
// immutable modification record before applying the new value.
func (c *Contract) UpdateFunding(input UpdateFundingInput, actor string, now time.Time) (Modification, error) {
	if err := requireActor(actor); err != nil {
		return Modification{}, err
	}
	if c.s.Status == ContractStatusClosed {
		return Modification{}, fmt.Errorf("%w: closed contracts cannot change funding", ErrInvalidTransition)
	}
	if input.FundedValue < 0 || isBad(input.FundedValue) {
		return Modification{}, validationf("funded value cannot be negative")
	}
	if input.FundedValue > c.s.TotalValue {
		return Modification{}, ErrFundingExceedsTotal
	}
	justification := strings.TrimSpace(input.Justification)
	if justification == "" {
		return Modification{}, validationf("justification is required")
	}
	number := strings.TrimSpace(input.ModificationNumber)
	if number == "" {
		number = fmt.Sprintf("MOD-%03d", len(c.s.Modifications)+1)
	}

	mod := Modification{
		ID:            uuid.New(),
		ContractID:    c.s.ID,
		Number:        number,
		Type:          ModificationTypeFundingChange,
		PreviousValue: c.s.FundedValue,
		NewValue:      input.FundedValue,
		Justification: justification,
		CreatedBy:     actor,
		CreatedAt:     now.UTC(),
	}
	c.s.Modifications = append(c.s.Modifications, mod)
	c.s.FundedValue = input.FundedValue
	c.s.Audit.touch(actor, now)
	return mod, nil
}

func (c *Contract) SetStandardHours(hours float64, actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if c.s.Status == ContractStatusClosed {
		return fmt.Errorf("%w: closed contracts cannot change standard hours", ErrInvalidTransition)
	}
	if !validAnnualHours(hours) {
		return validationf("standard hours must be between 0 and %d", MaxAnnualHours)
	}
	c.s.StandardFTEHours = hours
	c.s.Audit.touch(actor, now)
	return nil
}

// AssignResource opens a new allocation. A second active allocation for the
// same resource fails with ErrDuplicateAssignment.
func (c *Contract) AssignResource(input AssignInput, actor string, now time.Time) (Allocation, error) {
	if err := requireActor(actor); err != nil {
		return Allocation{}, err
	}
	if c.s.Status == ContractStatusClosed {
		return Allocation{}, fmt.Errorf("%w: closed contracts cannot take assignments", ErrInvalidTransition)
	}
	if input.ResourceID == uuid.Nil {
		return Allocation{}, validationf("resource id is required")
	}
	if !validPercentage(input.Percentage) {
		return Allocation{}, fmt.Errorf("%w: allocation percentage must be in (0, 100] with at most two decimals", ErrInvalidAllocation)
	}
	if c.activeAllocationIndex(input.ResourceID, now) >= 0 {
		return Allocation{}, ErrDuplicateAssignment
	}

	hours := roundHundredths(c.s.StandardFTEHours * input.Percentage / 100)
	if input.AnnualHours != nil {
		if !validAnnualHours(*input.AnnualHours) {
			return Allocation{}, fmt.Errorf("%w: annual hours must be between 0 and %d", ErrInvalidAllocation, MaxAnnualHours)
		}
		hours = *input.AnnualHours
	}
	var fixed *float64
	if input.FixedMonthlyAmount != nil {
		if *input.FixedMonthlyAmount <= 0 {
			return Allocation{}, fmt.Errorf("%w: fixed monthly amount must be positive", ErrInvalidAllocation)
		}
		amount := *input.FixedMonthlyAmount
		fixed = &amount
	}
	start := input.StartDate
	if start.IsZero() {
		start = now
	}

	a := Allocation{
		ID:                 uuid.New(),
		ContractID:         c.s.ID,
		ResourceID:         input.ResourceID,
		Percentage:         input.Percentage,
		AnnualHours:        hours,
		StartDate:          start.UTC(),
		FixedMonthlyAmount: fixed,
		Audit:              newAudit(actor, now),
	}
	c.s.Allocations = append(c.s.Allocations, a)
	c.s.Audit.touch(actor, now)
	return copyAllocation(a), nil
}

// RemoveResource ends the active allocation of the resource at endDate.
func (c *Contract) RemoveResource(resourceID uuid.UUID, endDate time.Time, actor string, now time.Time) (Allocation, error) {
	if err := requireActor(actor); err != nil {
		return Allocation{}, err
	}
	i := c.activeAllocationIndex(resourceID, now)
	if i < 0 {
		return Allocation{}, ErrNotAssigned
	}
	a := c.s.Allocations[i]
	endDate = endDate.UTC()
	if endDate.Before(a.StartDate) {
		return Allocation{}, fmt.Errorf("%w: end date cannot be before start date", ErrInvalidDateRange)
	}
	a.EndDate = &endDate
	a.Audit.touch(actor, now)
	c.s.Allocations[i] = a
	c.s.Audit.touch(actor, now)
	return copyAllocation(a), nil
}

// SetFixedMonthlyAmount switches the active allocation of a resource to a
// flat monthly fee. A nil amount goes back to hours times rate.
func (c *Contract) SetFixedMonthlyAmount(resourceID uuid.UUID, amount *float64, actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if c.s.Status == ContractStatusClosed {
		return fmt.Errorf("%w: closed contracts cannot change allocations", ErrInvalidTransition)
	}
	i := c.activeAllocationIndex(resourceID, now)
	if i < 0 {
		return ErrNotAssigned
	}
	if amount != nil && *amount <= 0 {
		return fmt.Errorf("%w: fixed monthly amount must be positive", ErrInvalidAllocation)
	}
	a := c.s.Allocations[i]
	if amount == nil {
		a.FixedMonthlyAmount = nil
	} else {
		v := *amount
		a.FixedMonthlyAmount = &v
	}
	a.Audit.touch(actor, now)
	c.s.Allocations[i] = a
	c.s.Audit.touch(actor, now)
	return nil
}

// AddRateOverride sets a contract bill rate for an LCAT. A record with the
// same effective date is updated in place; otherwise the new record closes
// the previous one.
func (c *Contract) AddRateOverride(lcatID uuid.UUID, rate float64, effectiveDate time.Time, justification, actor string, now time.Time) (RateOverride, error) {
	if c.s.Status == ContractStatusClosed {
		return RateOverride{}, fmt.Errorf("%w: closed contracts cannot change rates", ErrInvalidTransition)
	}
	if lcatID == uuid.Nil {
		return RateOverride{}, validationf("lcat id is required")
	}
	rec, err := NewRateRecord(RateKindContractBill, rate, effectiveDate, nil, justification, actor, now)
	if err != nil {
		return RateOverride{}, err
	}

	for i, o := range c.s.RateOverrides {
		if o.LCATID == lcatID && o.EffectiveDate.Equal(rec.EffectiveDate) {
			o.Rate = rate
			o.Notes = justification
			o.UpdatedBy = actor
			o.UpdatedAt = now.UTC()
			c.s.RateOverrides[i] = o
			c.s.Audit.touch(actor, now)
			return o, nil
		}
	}

	var (
		history []RateRecord
		others  []RateOverride
	)
	for _, o := range c.s.RateOverrides {
		if o.LCATID == lcatID {
			history = append(history, o.RateRecord)
		} else {
			others = append(others, o)
		}
	}
	next, err := AddRate(history, rec)
	if err != nil {
		return RateOverride{}, err
	}
	for _, r := range next {
		others = append(others, RateOverride{LCATID: lcatID, RateRecord: r})
	}
	c.s.RateOverrides = others
	c.s.Audit.touch(actor, now)
	return RateOverride{LCATID: lcatID, RateRecord: rec}, nil
}

// CurrentRateOverride resolves the contract bill rate for an LCAT at asOf.
func (c *Contract) CurrentRateOverride(lcatID uuid.UUID, asOf time.Time) (RateRecord, bool) {
	var history []RateRecord
	for _, o := range c.s.RateOverrides {
		if o.LCATID == lcatID {
			history = append(history, o.RateRecord)
		}
	}
	return CurrentRate(history, RateKindContractBill, asOf)
}

func copyAllocation(a Allocation) Allocation {
	a.EndDate = copyTime(a.EndDate)
	if a.FixedMonthlyAmount != nil {
		v := *a.FixedMonthlyAmount
		a.FixedMonthlyAmount = &v
	}
	return a
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
