package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-tracker/internal/burn"
	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/repository"
)

const initialFundingJustification = "Initial funding"

type ContractService struct {
	store         *repository.Store
	engine        *burn.Engine
	pdf           PDFGenerator
	log           zerolog.Logger
	standardHours float64
}

type ContractOptions struct {
	// StandardFTEHours applies to new contracts that do not set their own.
	StandardFTEHours float64
}

func NewContractService(store *repository.Store, engine *burn.Engine, pdf PDFGenerator, log zerolog.Logger, opts ContractOptions) *ContractService {
	return &ContractService{
		store:         store,
		engine:        engine,
		pdf:           pdf,
		log:           log.With().Str("component", "contracts").Logger(),
		standardHours: opts.StandardFTEHours,
	}
}

type CreateContractInput struct {
	model.NewContractInput
	FundedValue float64
}

func (s *ContractService) Create(ctx context.Context, p model.Principal, input CreateContractInput) (*model.Contract, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	now := s.engine.Now()
	if input.StandardFTEHours == 0 {
		input.StandardFTEHours = s.standardHours
	}

	c, err := model.NewContract(input.NewContractInput, p.Actor(), now)
	if err != nil {
		return nil, err
	}
	if input.FundedValue != 0 {
		if _, err := c.UpdateFunding(model.UpdateFundingInput{
			FundedValue:   input.FundedValue,
			Justification: initialFundingJustification,
		}, p.Actor(), now); err != nil {
			return nil, err
		}
	}

	exists, err := s.store.Contracts.NumberExists(ctx, c.Number())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: contract number %s already exists", ErrConflict, c.Number())
	}
	if err := s.store.Contracts.Create(ctx, c); err != nil {
		return nil, storageError(err)
	}

	s.log.Info().
		Str("contract_id", c.ID().String()).
		Str("contract_number", c.Number()).
		Str("actor", p.Actor()).
		Msg("contract created")
	return c, nil
}

func (s *ContractService) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	c, err := s.store.Contracts.Get(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return c, nil
}

func (s *ContractService) List(ctx context.Context, status *model.ContractStatus) ([]*model.Contract, error) {
	if status != nil {
		switch *status {
		case model.ContractStatusDraft, model.ContractStatusActive, model.ContractStatusClosed:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
		}
	}
	return s.store.Contracts.List(ctx, repository.ContractFilter{Status: status})
}

// mutate runs fn against the locked contract. The error from fn is returned
// as is, so domain kinds reach the handler.
func (s *ContractService) mutate(ctx context.Context, p model.Principal, id uuid.UUID, fn func(c *model.Contract, actor string, now time.Time) error) (*model.Contract, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	now := s.engine.Now()
	c, err := s.store.Contracts.Update(ctx, id, func(c *model.Contract) error {
		return fn(c, p.Actor(), now)
	})
	if err != nil {
		return nil, storageError(err)
	}
	return c, nil
}

func (s *ContractService) Activate(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, error) {
	return s.mutate(ctx, p, id, func(c *model.Contract, actor string, now time.Time) error {
		return c.Activate(actor, now)
	})
}

func (s *ContractService) Close(ctx context.Context, p model.Principal, id uuid.UUID) (*model.Contract, error) {
	return s.mutate(ctx, p, id, func(c *model.Contract, actor string, now time.Time) error {
		return c.Close(actor, now)
	})
}

func (s *ContractService) UpdateFunding(ctx context.Context, p model.Principal, id uuid.UUID, input model.UpdateFundingInput) (model.Modification, error) {
	var mod model.Modification
	_, err := s.mutate(ctx, p, id, func(c *model.Contract, actor string, now time.Time) error {
		var err error
		mod, err = c.UpdateFunding(input, actor, now)
		return err
	})
	if err != nil {
		return model.Modification{}, err
	}
	s.log.Info().
		Str("contract_id", id.String()).
		Str("modification", mod.Number).
		Float64("previous_value", mod.PreviousValue).
		Float64("new_value", mod.NewValue).
		Msg("funding updated")
	return mod, nil
}

func (s *ContractService) SetStandardHours(ctx context.Context, p model.Principal, id uuid.UUID, hours float64) (*model.Contract, error) {
	return s.mutate(ctx, p, id, func(c *model.Contract, actor string, now time.Time) error {
		return c.SetStandardHours(hours, actor, now)
	})
}

// SetFixedMonthlyAmount switches the resource's active allocation to a flat
// monthly fee, or back to hours times rate when amount is nil.
func (s *ContractService) SetFixedMonthlyAmount(ctx context.Context, p model.Principal, contractID, resourceID uuid.UUID, amount *float64) (model.Allocation, error) {
	var at time.Time
	c, err := s.mutate(ctx, p, contractID, func(c *model.Contract, actor string, now time.Time) error {
		at = now
		return c.SetFixedMonthlyAmount(resourceID, amount, actor, now)
	})
	if err != nil {
		return model.Allocation{}, err
	}
	alloc, _ := c.ActiveAllocationFor(resourceID, at)
	return alloc, nil
}

type AssignResult struct {
	Allocation      model.Allocation
	TotalAllocation float64
	OverAllocated   bool
}

// AssignResource opens an allocation and reports the resource's resulting
// load across contracts. Going over 100% is allowed and only flagged.
func (s *ContractService) AssignResource(ctx context.Context, p model.Principal, contractID uuid.UUID, input model.AssignInput) (*AssignResult, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	res, err := s.store.Resources.Get(ctx, input.ResourceID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, fmt.Errorf("%w: resource %s does not exist", ErrInvalidInput, input.ResourceID)
		}
		return nil, err
	}
	if !res.IsActive {
		return nil, fmt.Errorf("%w: resource %s is not active", ErrInvalidInput, res.FullName())
	}

	var alloc model.Allocation
	if _, err := s.mutate(ctx, p, contractID, func(c *model.Contract, actor string, now time.Time) error {
		var err error
		alloc, err = c.AssignResource(input, actor, now)
		return err
	}); err != nil {
		return nil, err
	}

	total, err := s.store.Contracts.AllocationTotal(ctx, input.ResourceID, s.engine.Now())
	if err != nil {
		return nil, err
	}
	result := &AssignResult{Allocation: alloc, TotalAllocation: total, OverAllocated: total > 100}
	if result.OverAllocated {
		s.log.Warn().
			Str("resource_id", input.ResourceID.String()).
			Float64("total_allocation", total).
			Msg("resource over-allocated")
	}
	return result, nil
}

func (s *ContractService) RemoveResource(ctx context.Context, p model.Principal, contractID, resourceID uuid.UUID, endDate time.Time) (model.Allocation, error) {
	var alloc model.Allocation
	_, err := s.mutate(ctx, p, contractID, func(c *model.Contract, actor string, now time.Time) error {
		end := endDate
		if end.IsZero() {
			end = now
		}
		var err error
		alloc, err = c.RemoveResource(resourceID, end, actor, now)
		return err
	})
	return alloc, err
}

func (s *ContractService) AllocationHistory(ctx context.Context, contractID, resourceID uuid.UUID) ([]model.Allocation, error) {
	c, err := s.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return c.AllocationHistory(resourceID), nil
}

type RateOverrideInput struct {
	LCATID        uuid.UUID
	Rate          float64
	EffectiveDate time.Time
	Justification string
}

func (s *ContractService) SetRateOverride(ctx context.Context, p model.Principal, contractID uuid.UUID, input RateOverrideInput) (model.RateOverride, error) {
	if err := requireWriter(p); err != nil {
		return model.RateOverride{}, err
	}
	if _, err := s.store.LCATs.Get(ctx, input.LCATID); err != nil {
		if repository.IsNotFound(err) {
			return model.RateOverride{}, fmt.Errorf("%w: lcat %s does not exist", ErrInvalidInput, input.LCATID)
		}
		return model.RateOverride{}, err
	}

	var override model.RateOverride
	_, err := s.mutate(ctx, p, contractID, func(c *model.Contract, actor string, now time.Time) error {
		eff := input.EffectiveDate
		if eff.IsZero() {
			eff = now
		}
		var err error
		override, err = c.AddRateOverride(input.LCATID, input.Rate, eff, strings.TrimSpace(input.Justification), actor, now)
		return err
	})
	return override, err
}

// BurnRate analyzes the contract against current resource and LCAT data.
func (s *ContractService) BurnRate(ctx context.Context, id uuid.UUID) (burn.Report, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return burn.Report{}, err
	}
	resources, err := s.store.Resources.List(ctx, repository.ResourceFilter{})
	if err != nil {
		return burn.Report{}, err
	}
	lcats, err := s.store.LCATs.List(ctx, nil)
	if err != nil {
		return burn.Report{}, err
	}
	return s.engine.Report(c, burn.IndexResources(resources), burn.IndexLCATs(lcats)), nil
}

func (s *ContractService) BurnRatePDF(ctx context.Context, id uuid.UUID) (*FileResult, error) {
	report, err := s.BurnRate(ctx, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(report)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName:    burnReportFileName(report.Contract.Number(), report.Analysis.AsOf),
		ContentType: contentTypePDF,
		Content:     content,
	}, nil
}

// Delete removes a Draft contract with its children. Active and closed
// contracts are kept for the audit trail.
func (s *ContractService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	if err := requireWriter(p); err != nil {
		return err
	}
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Contracts.Get(ctx, id)
		if err != nil {
			return storageError(err)
		}
		if c.Status() != model.ContractStatusDraft {
			return fmt.Errorf("%w: only draft contracts can be deleted", ErrConflict)
		}
		if err := tx.Contracts.Delete(ctx, id); err != nil {
			return storageError(err)
		}
		s.log.Info().Str("contract_id", id.String()).Str("actor", p.Actor()).Msg("contract deleted")
		return nil
	})
}
