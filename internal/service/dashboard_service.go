package service

import (
	"context"
	"fmt"

	"github.com/nurpe/contract-tracker/internal/portfolio"
	"github.com/nurpe/contract-tracker/internal/repository"
)

const DefaultProjectionMonths = 12

type DashboardService struct {
	store      *repository.Store
	aggregator *portfolio.Aggregator
	excel      ExcelGenerator
}

func NewDashboardService(store *repository.Store, aggregator *portfolio.Aggregator, excel ExcelGenerator) *DashboardService {
	return &DashboardService{store: store, aggregator: aggregator, excel: excel}
}

func (s *DashboardService) snapshot(ctx context.Context) (portfolio.Snapshot, error) {
	contracts, err := s.store.Contracts.List(ctx, repository.ContractFilter{})
	if err != nil {
		return portfolio.Snapshot{}, err
	}
	resources, err := s.store.Resources.List(ctx, repository.ResourceFilter{})
	if err != nil {
		return portfolio.Snapshot{}, err
	}
	lcats, err := s.store.LCATs.List(ctx, nil)
	if err != nil {
		return portfolio.Snapshot{}, err
	}
	return portfolio.Snapshot{Contracts: contracts, Resources: resources, LCATs: lcats}, nil
}

func validateMonths(months int) error {
	if months < 1 || months > portfolio.MaxProjectionMonths {
		return fmt.Errorf("%w: months must be between 1 and %d", ErrInvalidInput, portfolio.MaxProjectionMonths)
	}
	return nil
}

func (s *DashboardService) Metrics(ctx context.Context) (portfolio.DashboardMetrics, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return portfolio.DashboardMetrics{}, err
	}
	return s.aggregator.DashboardMetrics(snap), nil
}

func (s *DashboardService) HealthCards(ctx context.Context) ([]portfolio.ContractHealth, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregator.ContractHealthCards(snap), nil
}

func (s *DashboardService) Utilization(ctx context.Context) (portfolio.ResourceUtilization, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return portfolio.ResourceUtilization{}, err
	}
	return s.aggregator.ResourceUtilization(snap), nil
}

func (s *DashboardService) Projections(ctx context.Context, months int) (portfolio.FinancialProjection, error) {
	if err := validateMonths(months); err != nil {
		return portfolio.FinancialProjection{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return portfolio.FinancialProjection{}, err
	}
	return s.aggregator.FinancialProjections(snap, months), nil
}

func (s *DashboardService) Alerts(ctx context.Context) ([]portfolio.Alert, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.aggregator.CriticalAlerts(snap), nil
}

func (s *DashboardService) Complete(ctx context.Context, months int) (portfolio.Dashboard, error) {
	if err := validateMonths(months); err != nil {
		return portfolio.Dashboard{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return portfolio.Dashboard{}, err
	}
	return s.aggregator.Complete(snap, months), nil
}

// Export renders the complete dashboard as a spreadsheet.
func (s *DashboardService) Export(ctx context.Context, months int) (*FileResult, error) {
	dashboard, err := s.Complete(ctx, months)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(dashboard)
	if err != nil {
		return nil, err
	}
	return &FileResult{
		FileName:    dashboardFileName(dashboard.Metrics.CalculatedAt),
		ContentType: contentTypeXLSX,
		Content:     content,
	}, nil
}
