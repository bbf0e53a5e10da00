package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/contract-tracker/internal/clock"
	"github.com/nurpe/contract-tracker/internal/model"
	"github.com/nurpe/contract-tracker/internal/repository"
)

type LCATService struct {
	store *repository.Store
	clock clock.Clock
	log   zerolog.Logger
}

func NewLCATService(store *repository.Store, clk clock.Clock, log zerolog.Logger) *LCATService {
	return &LCATService{
		store: store,
		clock: clk,
		log:   log.With().Str("component", "lcats").Logger(),
	}
}

type CreateLCATInput struct {
	model.NewLCATInput
	PublishedRate   *float64
	DefaultBillRate *float64
	EffectiveDate   time.Time
	PositionTitles  []string
}

func (s *LCATService) Create(ctx context.Context, p model.Principal, input CreateLCATInput) (*model.LCAT, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	actor := p.Actor()

	l, err := model.NewLCAT(input.NewLCATInput, actor, now)
	if err != nil {
		return nil, err
	}
	eff := input.EffectiveDate
	if eff.IsZero() {
		eff = now
	}
	if input.PublishedRate != nil {
		if _, err := l.AddRate(model.RateKindPublished, *input.PublishedRate, eff, "", actor, now); err != nil {
			return nil, err
		}
	}
	if input.DefaultBillRate != nil {
		if _, err := l.AddRate(model.RateKindDefaultBill, *input.DefaultBillRate, eff, "", actor, now); err != nil {
			return nil, err
		}
	}
	for _, title := range input.PositionTitles {
		if _, err := l.AddPositionTitle(title, actor, now); err != nil {
			return nil, err
		}
	}

	exists, err := s.store.LCATs.CodeExists(ctx, l.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: lcat code %s already exists", ErrConflict, l.Code)
	}
	if err := s.store.LCATs.Create(ctx, l); err != nil {
		return nil, storageError(err)
	}
	return l, nil
}

func (s *LCATService) Get(ctx context.Context, id uuid.UUID) (*model.LCAT, error) {
	l, err := s.store.LCATs.Get(ctx, id)
	if err != nil {
		return nil, storageError(err)
	}
	return l, nil
}

func (s *LCATService) List(ctx context.Context, active *bool) ([]*model.LCAT, error) {
	return s.store.LCATs.List(ctx, active)
}

func (s *LCATService) mutate(ctx context.Context, p model.Principal, id uuid.UUID, fn func(l *model.LCAT, actor string, now time.Time) error) (*model.LCAT, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	l, err := s.store.LCATs.Update(ctx, id, func(l *model.LCAT) error {
		return fn(l, p.Actor(), now)
	})
	if err != nil {
		return nil, storageError(err)
	}
	return l, nil
}

// UpdateDetails replaces the descriptive fields. A code change must not
// collide with another LCAT.
func (s *LCATService) UpdateDetails(ctx context.Context, p model.Principal, id uuid.UUID, input model.NewLCATInput) (*model.LCAT, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if code := strings.TrimSpace(input.Code); code != "" && code != current.Code {
		exists, err := s.store.LCATs.CodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: lcat code %s already exists", ErrConflict, code)
		}
	}
	return s.mutate(ctx, p, id, func(l *model.LCAT, actor string, now time.Time) error {
		return l.UpdateDetails(input, actor, now)
	})
}

type AddLCATRateInput struct {
	Kind          model.RateKind
	Rate          float64
	EffectiveDate time.Time
	Notes         string
}

func (s *LCATService) AddRate(ctx context.Context, p model.Principal, id uuid.UUID, input AddLCATRateInput) (model.RateRecord, error) {
	var rec model.RateRecord
	_, err := s.mutate(ctx, p, id, func(l *model.LCAT, actor string, now time.Time) error {
		eff := input.EffectiveDate
		if eff.IsZero() {
			eff = now
		}
		var err error
		rec, err = l.AddRate(input.Kind, input.Rate, eff, strings.TrimSpace(input.Notes), actor, now)
		return err
	})
	return rec, err
}

// RateHistory lists the LCAT's rates of one kind, oldest first.
func (s *LCATService) RateHistory(ctx context.Context, id uuid.UUID, kind model.RateKind) ([]model.RateRecord, error) {
	switch kind {
	case model.RateKindPublished, model.RateKindDefaultBill:
	default:
		return nil, fmt.Errorf("%w: unknown rate type %q", ErrInvalidInput, kind)
	}
	l, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.RateHistory(l.Rates(), kind), nil
}

type BatchRateUpdate struct {
	LCATID uuid.UUID
	AddLCATRateInput
}

// BatchUpdateRates applies every rate change in one transaction. Any invalid
// entry rolls the whole batch back.
func (s *LCATService) BatchUpdateRates(ctx context.Context, p model.Principal, updates []BatchRateUpdate) ([]model.RateRecord, error) {
	if err := requireWriter(p); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%w: no rate updates given", ErrInvalidInput)
	}
	now := s.clock.Now()
	actor := p.Actor()

	records := make([]model.RateRecord, 0, len(updates))
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		for i, u := range updates {
			var rec model.RateRecord
			_, err := tx.LCATs.Update(ctx, u.LCATID, func(l *model.LCAT) error {
				eff := u.EffectiveDate
				if eff.IsZero() {
					eff = now
				}
				var err error
				rec, err = l.AddRate(u.Kind, u.Rate, eff, strings.TrimSpace(u.Notes), actor, now)
				return err
			})
			if err != nil {
				return fmt.Errorf("rate update %d for lcat %s: %w", i+1, u.LCATID, storageError(err))
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Int("updates", len(records)).Str("actor", actor).Msg("lcat rates batch updated")
	return records, nil
}

func (s *LCATService) AddPositionTitle(ctx context.Context, p model.Principal, id uuid.UUID, title string) (model.PositionTitle, error) {
	var pt model.PositionTitle
	_, err := s.mutate(ctx, p, id, func(l *model.LCAT, actor string, now time.Time) error {
		var err error
		pt, err = l.AddPositionTitle(title, actor, now)
		return err
	})
	return pt, err
}

func (s *LCATService) DeactivatePositionTitle(ctx context.Context, p model.Principal, id, titleID uuid.UUID) (*model.LCAT, error) {
	return s.mutate(ctx, p, id, func(l *model.LCAT, actor string, now time.Time) error {
		return l.DeactivatePositionTitle(titleID, actor, now)
	})
}

func (s *LCATService) Deactivate(ctx context.Context, p model.Principal, id uuid.UUID) (*model.LCAT, error) {
	return s.mutate(ctx, p, id, func(l *model.LCAT, actor string, now time.Time) error {
		return l.Deactivate(actor, now)
	})
}

func (s *LCATService) Reactivate(ctx context.Context, p model.Principal, id uuid.UUID) (*model.LCAT, error) {
	return s.mutate(ctx, p, id, func(l *model.LCAT, actor string, now time.Time) error {
		return l.Reactivate(actor, now)
	})
}

func (s *LCATService) Delete(ctx context.Context, p model.Principal, id uuid.UUID) error {
	if err := requireWriter(p); err != nil {
		return err
	}
	if err := s.store.LCATs.Delete(ctx, id); err != nil {
		return storageError(err)
	}
	s.log.Info().Str("lcat_id", id.String()).Str("actor", p.Actor()).Msg("lcat deleted")
	return nil
}
