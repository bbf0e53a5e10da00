package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-tracker/internal/clock"
	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/repository"
)

type ResourceService struct {
	store *repository.Store
	clock clock.Clock
	log   zerolog.Logger
}

func NewResourceService(store *repository.Store, clk clock.Clock, log zerolog.Logger) *ResourceService {
	return &ResourceService{
		store: store,
		clock: clk,
		log:   log.With().Str("component", "resources").Logger(),
	}
}

func (s *ResourceService) Create(ctx context.Context, p model.Principal, input model.NewResourceInput) (*model.Resource, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	r, err := model.NewResource(input, p.Actor(), s.clock.Now())
	if err != nil {
		return nil, err
	}

	if r.LCATID != nil {
		l, err := s.store.LCATs.Get(ctx, *r.LCATID)
		if err != nil {
			if repository.IsNotFound(err) {
				return nil, fmt.Errorf("%w: lcat %s does not exist", ErrInvalidInput, *r.LCATID)
			}
			return nil, err
		}
		if !l.IsActive {
			return nil, fmt.Errorf("%w: lcat %s is inactive", ErrInvalidInput, l.Code)
		}
	}

	exists, err := s.store.Resources.EmailExists(ctx, r.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: email %s is already registered", ErrConflict, r.Email)
	}
	if err := s.store.Resources.Create(ctx, r); err != nil {
		return nil, storageError(err)
	}
	return r, nil
}

func (s *ResourceService) Get(ctx context.Context, id uuid.UUID) (*model.Resource, error) {
	r, err := s.store.Resources.Get(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return r, nil
}

func (s *ResourceService) List(ctx context.Context, active *bool) ([]*model.Resource, error) {
	return s.store.Resources.List(ctx, repository.ResourceFilter{Active: active})
}

// Terminate deactivates the resource and ends its active allocations on
// every contract. Either all of it is applied or none.
func (s *ResourceService) Terminate(ctx context.Context, p model.Principal, id uuid.UUID, endDate time.Time) (*model.Resource, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if endDate.IsZero() {
		endDate = now
	}
	endDate = endDate.UTC()

	var (
		terminated *model.Resource
		ended      int
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		r, err := tx.Resources.Update(ctx, id, func(r *model.Resource) error {
			return r.Terminate(endDate, p.Actor(), now)
		})
		if err != nil {
			return storageError(err)
		}
		terminated = r

		contractIDs, err := tx.Contracts.ContractsWithActiveAllocation(ctx, id, now)
		if err != nil {
			return err
		}
		for _, contractID := range contractIDs {
			if _, err := tx.Contracts.Update(ctx, contractID, func(c *model.Contract) error {
				a, ok := c.ActiveAllocationFor(id, now)
				if !ok {
					return nil
				}
				end := endDate
				if end.Before(a.StartDate) {
					end = a.StartDate
				}
				_, err := c.RemoveResource(id, end, p.Actor(), now)
				return err
			}); err != nil {
				return storageError(err)
			}
			ended++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("resource_id", id.String()).
		Int("allocations_ended", ended).
		Str("actor", p.Actor()).
		Msg("resource terminated")
	return terminated, nil
}

func (s *ResourceService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	if err := requireWriter(p); err != nil {
		return err
	}
	return storageError(s.store.Resources.Delete(ctx, id, s.clock.Now()))
}
