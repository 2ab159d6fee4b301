package service

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/report"
	"backend/internal/repository"
)

// ReportService materializes the profitability rollup and dashboard
// summary from the live collections. Nothing is cached: the dataset is
// small and the numbers must reflect every saved order immediately.
type ReportService interface {
	Profitability(ctx context.Context, opts report.Options, search string) ([]report.Row, error)
	Summary(ctx context.Context) (report.Summary, error)
}

type reportService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewReportService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) ReportService {
	return &reportService{orderRepo: orderRepo, productRepo: productRepo}
}

func (s *reportService) Profitability(ctx context.Context, opts report.Options, search string) ([]report.Row, error) {
	catalog, err := s.productRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	orders, err := s.orderRepo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	rows := report.Rollup(catalog, orders, opts)
	if search == "" {
		return rows, nil
	}

	needle := strings.ToLower(search)
	filtered := rows[:0]
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.ProductName), needle) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func (s *reportService) Summary(ctx context.Context) (report.Summary, error) {
	orders, err := s.orderRepo.Snapshot(ctx)
	if err != nil {
		return report.Summary{}, fmt.Errorf("failed to load orders: %w", err)
	}
	return report.Summarize(orders), nil
}
