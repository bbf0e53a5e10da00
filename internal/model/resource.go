package model

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ResourceCategory string

const (
	ResourceCategoryW2Internal     ResourceCategory = "W2_INTERNAL"
	ResourceCategorySubcontractor  ResourceCategory = "SUBCONTRACTOR"
	ResourceCategoryContractor1099 ResourceCategory = "CONTRACTOR_1099"
	ResourceCategoryFixedPrice     ResourceCategory = "FIXED_PRICE"
)

// WrapRate is the overhead multiplier applied to pay rate for the category.
func (c ResourceCategory) WrapRate() float64 {
	switch c {
	case ResourceCategoryW2Internal:
		return 2.28
	case ResourceCategorySubcontractor, ResourceCategoryContractor1099:
		return 1.15
	default:
		return 1.0
	}
}

func (c ResourceCategory) Valid() bool {
	switch c {
	case ResourceCategoryW2Internal, ResourceCategorySubcontractor,
		ResourceCategoryContractor1099, ResourceCategoryFixedPrice:
		return true
	default:
		return false
	}
}

type Resource struct {
	ID                  uuid.UUID
	FirstName           string
	LastName            string
	Email               string
	Category            ResourceCategory
	LCATID              *uuid.UUID
	PayRate             float64
	ClearanceLevel      string
	ClearanceExpiration *time.Time
	StartDate           time.Time
	EndDate             *time.Time
	IsActive            bool
	Audit               Audit
}

type NewResourceInput struct {
	FirstName           string
	LastName            string
	Email               string
	Category            ResourceCategory
	LCATID              *uuid.UUID
	PayRate             float64
	ClearanceLevel      string
	ClearanceExpiration *time.Time
	StartDate           time.Time
}

func NewResource(input NewResourceInput, actor string, now time.Time) (*Resource, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" || last == "" {
		return nil, validationf("first and last name are required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("invalid email %q", input.Email)
	}
	if !input.Category.Valid() {
		return nil, validationf("unknown resource category %q", input.Category)
	}
	if input.PayRate <= 0 {
		return nil, validationf("pay rate must be positive")
	}
	start := input.StartDate
	if start.IsZero() {
		start = now
	}
	var expiration *time.Time
	if input.ClearanceExpiration != nil {
		exp := input.ClearanceExpiration.UTC()
		expiration = &exp
	}
	return &Resource{
		ID:                  uuid.New(),
		FirstName:           first,
		LastName:            last,
		Email:               email,
		Category:            input.Category,
		LCATID:              input.LCATID,
		PayRate:             input.PayRate,
		ClearanceLevel:      strings.TrimSpace(input.ClearanceLevel),
		ClearanceExpiration: expiration,
		StartDate:           start.UTC(),
		IsActive:            true,
		Audit:               newAudit(actor, now),
	}, nil
}

func (r *Resource) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// BurdenedCost is the hourly cost to the business: pay rate times wrap rate.
func (r *Resource) BurdenedCost() float64 {
	return r.PayRate * r.Category.WrapRate()
}

func (r *Resource) ClearanceExpired(at time.Time) bool {
	return r.ClearanceExpiration != nil && !r.ClearanceExpiration.After(at)
}

// Terminate marks the resource inactive. Ending its allocations is the
// caller's job since those belong to contracts.
func (r *Resource) Terminate(endDate time.Time, actor string, now time.Time) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !r.IsActive {
		return ErrInvalidTransition
	}
	endDate = endDate.UTC()
	if endDate.Before(r.StartDate) {
		return ErrInvalidDateRange
	}
	r.EndDate = &endDate
	r.IsActive = false
	r.Audit.touch(actor, now)
	return nil
}
