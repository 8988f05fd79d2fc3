package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/internal/repository/mocks"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func monthStart(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

// expectMonths stubs every per-month query for a clock set in March 2024.
func expectMonths(repo *mocks.DashboardRepository, loc *time.Location) {
	first := monthStart(2023, time.April, loc)
	for i := 0; i < trendMonths; i++ {
		start := first.AddDate(0, i, 0)
		repo.On("CountVisitsBetween", mock.Anything, start, start.AddDate(0, 1, 0)).Return(int64(i+1), nil)
	}

	first = monthStart(2023, time.October, loc)
	for i := 0; i < revenueMonths; i++ {
		start := first.AddDate(0, i, 0)
		figures := &model.MonthFigures{
			Revenue:       decimal.NewFromInt(int64(100 * (i + 1))),
			VisitCharges:  dec("500"),
			VisitPayments: dec("200"),
		}
		if i == revenueMonths-1 {
			// Payments can exceed charges within a month.
			figures.VisitPayments = dec("650")
		}
		repo.On("MonthFigures", mock.Anything, start, start.AddDate(0, 1, 0)).Return(figures, nil)
	}
}

func TestGetStats(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	today := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)

	repo := new(mocks.DashboardRepository)
	repo.On("CountPatients", mock.Anything).Return(int64(42), nil)
	repo.On("SumPaymentsSince", mock.Anything, monthStart(2024, time.March, time.UTC)).Return(dec("1250.50"), nil)
	repo.On("Totals", mock.Anything).Return(&model.Totals{Charges: dec("900"), Payments: dec("400")}, nil)
	repo.On("CountVisitsBetween", mock.Anything, today, today.AddDate(0, 0, 1)).Return(int64(3), nil)
	expectMonths(repo, time.UTC)

	svc := NewService(repo, metrics.NewNop(), 4, WithClock(func() time.Time { return now }))
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(42), stats.TotalPatients)
	assert.True(t, stats.MonthlyRevenue.Equal(dec("1250.50")))
	assert.True(t, stats.OutstandingBalance.Equal(dec("500")))
	assert.Equal(t, int64(3), stats.TodaysVisits)

	require.Len(t, stats.MonthlyVisitTrends, 12)
	assert.Equal(t, "Apr", stats.MonthlyVisitTrends[0].Month)
	assert.Equal(t, "Mar", stats.MonthlyVisitTrends[11].Month)
	var total int64
	for i, mv := range stats.MonthlyVisitTrends {
		assert.Equal(t, int64(i+1), mv.Visits)
		total += mv.Visits
	}
	assert.Equal(t, int64(78), total)

	require.Len(t, stats.RevenueData, 6)
	assert.Equal(t, "Oct", stats.RevenueData[0].Month)
	assert.True(t, stats.RevenueData[0].Revenue.Equal(dec("100")))
	assert.True(t, stats.RevenueData[0].Outstanding.Equal(dec("300")))
	assert.Equal(t, "Mar", stats.RevenueData[5].Month)
	assert.True(t, stats.RevenueData[5].Outstanding.IsZero())

	repo.AssertExpectations(t)
}

func TestGetStatsClampsOutstanding(t *testing.T) {
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	repo := new(mocks.DashboardRepository)
	repo.On("CountPatients", mock.Anything).Return(int64(1), nil)
	repo.On("SumPaymentsSince", mock.Anything, mock.Anything).Return(decimal.Zero, nil)
	repo.On("Totals", mock.Anything).Return(&model.Totals{Charges: dec("100"), Payments: dec("250")}, nil)
	repo.On("CountVisitsBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("MonthFigures", mock.Anything, mock.Anything, mock.Anything).Return(&model.MonthFigures{}, nil)

	svc := NewService(repo, metrics.NewNop(), 2, WithClock(func() time.Time { return now }))
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.OutstandingBalance.IsZero())
}

func TestGetStatsUsesClockLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	// 22:00 UTC on the 31st is already April 1st in UTC+5.
	now := time.Date(2024, time.March, 31, 22, 0, 0, 0, time.UTC).In(loc)
	today := time.Date(2024, time.April, 1, 0, 0, 0, 0, loc)

	repo := new(mocks.DashboardRepository)
	repo.On("CountPatients", mock.Anything).Return(int64(0), nil)
	repo.On("SumPaymentsSince", mock.Anything, monthStart(2024, time.April, loc)).Return(decimal.Zero, nil)
	repo.On("Totals", mock.Anything).Return(&model.Totals{}, nil)
	repo.On("CountVisitsBetween", mock.Anything, today, today.AddDate(0, 0, 1)).Return(int64(7), nil).Once()
	repo.On("CountVisitsBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("MonthFigures", mock.Anything, mock.Anything, mock.Anything).Return(&model.MonthFigures{}, nil)

	svc := NewService(repo, metrics.NewNop(), 4, WithClock(func() time.Time { return now }))
	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TodaysVisits)
	assert.Equal(t, "Apr", stats.MonthlyVisitTrends[11].Month)
	assert.Equal(t, "May", stats.MonthlyVisitTrends[0].Month)
}

func TestGetStatsFailsWhenAnyQueryFails(t *testing.T) {
	repo := new(mocks.DashboardRepository)
	repo.On("CountPatients", mock.Anything).Return(int64(0), errors.New("connection refused"))
	repo.On("SumPaymentsSince", mock.Anything, mock.Anything).Return(decimal.Zero, nil).Maybe()
	repo.On("Totals", mock.Anything).Return(&model.Totals{}, nil).Maybe()
	repo.On("CountVisitsBetween", mock.Anything, mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	repo.On("MonthFigures", mock.Anything, mock.Anything, mock.Anything).Return(&model.MonthFigures{}, nil).Maybe()

	svc := NewService(repo, metrics.NewNop(), 1)
	stats, err := svc.GetStats(context.Background())
	require.Error(t, err)
	assert.Nil(t, stats)
	assert.Contains(t, err.Error(), "connection refused")
}
