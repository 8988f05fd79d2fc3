package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

const (
	trendMonths   = 12
	revenueMonths = 6
)

type Service interface {
	// GetStats computes the dashboard figures. Nothing is cached.
	GetStats(ctx context.Context) (*model.DashboardStats, error)
}

type Option func(*service)

// WithClock replaces time.Now. Windows are computed in the location of the
// returned time.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

type service struct {
	repo        repository.DashboardRepository
	metrics     *metrics.Metrics
	parallelism int
	now         func() time.Time
}

func NewService(repo repository.DashboardRepository, m *metrics.Metrics, parallelism int, opts ...Option) Service {
	if parallelism <= 0 {
		parallelism = 1
	}
	s := &service{
		repo:        repo,
		metrics:     m,
		parallelism: parallelism,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	timer := prometheus.NewTimer(s.metrics.DashboardDuration)
	defer timer.ObserveDuration()

	now := s.now()
	today := startOfDay(now)
	month := startOfMonth(now)

	stats := &model.DashboardStats{
		MonthlyVisitTrends: make([]model.MonthlyVisits, trendMonths),
		RevenueData:        make([]model.MonthlyRevenue, revenueMonths),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	g.Go(func() error {
		n, err := s.repo.CountPatients(gctx)
		if err != nil {
			return fmt.Errorf("failed to count patients: %w", err)
		}
		stats.TotalPatients = n
		return nil
	})

	g.Go(func() error {
		sum, err := s.repo.SumPaymentsSince(gctx, month)
		if err != nil {
			return fmt.Errorf("failed to sum monthly revenue: %w", err)
		}
		stats.MonthlyRevenue = model.NewMoney(sum)
		return nil
	})

	g.Go(func() error {
		totals, err := s.repo.Totals(gctx)
		if err != nil {
			return fmt.Errorf("failed to compute totals: %w", err)
		}
		stats.OutstandingBalance = model.NewMoney(clamp(totals.Charges.Sub(totals.Payments)))
		return nil
	})

	g.Go(func() error {
		n, err := s.repo.CountVisitsBetween(gctx, today, today.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("failed to count today's visits: %w", err)
		}
		stats.TodaysVisits = n
		return nil
	})

	// Each goroutine writes only its own slot.
	for i := 0; i < trendMonths; i++ {
		i := i
		start := month.AddDate(0, i-(trendMonths-1), 0)
		g.Go(func() error {
			n, err := s.repo.CountVisitsBetween(gctx, start, start.AddDate(0, 1, 0))
			if err != nil {
				return fmt.Errorf("failed to count visits for %s: %w", start.Format("2006-01"), err)
			}
			stats.MonthlyVisitTrends[i] = model.MonthlyVisits{Month: monthLabel(start), Visits: n}
			return nil
		})
	}

	for i := 0; i < revenueMonths; i++ {
		i := i
		start := month.AddDate(0, i-(revenueMonths-1), 0)
		g.Go(func() error {
			figures, err := s.repo.MonthFigures(gctx, start, start.AddDate(0, 1, 0))
			if err != nil {
				return fmt.Errorf("failed to compute revenue for %s: %w", start.Format("2006-01"), err)
			}
			stats.RevenueData[i] = model.MonthlyRevenue{
				Month:       monthLabel(start),
				Revenue:     model.NewMoney(figures.Revenue),
				Outstanding: model.NewMoney(clamp(figures.VisitCharges.Sub(figures.VisitPayments))),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func monthLabel(t time.Time) string {
	return t.Format("Jan")
}

func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
