package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/pkg/logger"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

type mockEmail struct {
	mock.Mock
}

func (m *mockEmail) SendCustom(ctx context.Context, to []string, subject string, content string) error {
	return m.Called(ctx, to, subject, content).Error(0)
}

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	ch, _ := args.Get(0).(chan []byte)
	return ch, args.Error(1)
}

func (m *mockBroker) Close() error {
	return m.Called().Error(0)
}

var recipients = []string{"front-desk@clinic.test"}

func alertPayload(t *testing.T, stock int) []byte {
	t.Helper()
	data, err := json.Marshal(model.LowStockAlert{
		ItemID:        3,
		Name:          "Gauze",
		Category:      "supplies",
		CurrentStock:  stock,
		MinStockLevel: 5,
		ReducedBy:     2,
		OccurredAt:    time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return data
}

func TestHandleLowStock(t *testing.T) {
	emailSvc := new(mockEmail)
	m := metrics.NewNop()
	svc := NewService(new(mockBroker), emailSvc, recipients, logger.Nop(), m)

	emailSvc.On("SendCustom", mock.Anything, recipients, "Low stock: Gauze",
		mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "Current stock: 0") && strings.Contains(body, "out of stock")
		})).Return(nil)

	require.NoError(t, svc.HandleLowStock(context.Background(), alertPayload(t, 0)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AlertsSent.WithLabelValues("sent")))
	emailSvc.AssertExpectations(t)
}

func TestHandleLowStockErrors(t *testing.T) {
	t.Run("invalid payload", func(t *testing.T) {
		emailSvc := new(mockEmail)
		m := metrics.NewNop()
		svc := NewService(new(mockBroker), emailSvc, recipients, logger.Nop(), m)

		assert.Error(t, svc.HandleLowStock(context.Background(), []byte("{")))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.AlertsSent.WithLabelValues("invalid")))
		emailSvc.AssertNotCalled(t, "SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("smtp failure", func(t *testing.T) {
		emailSvc := new(mockEmail)
		m := metrics.NewNop()
		svc := NewService(new(mockBroker), emailSvc, recipients, logger.Nop(), m)
		emailSvc.On("SendCustom", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("dial tcp: connection refused"))

		err := svc.HandleLowStock(context.Background(), alertPayload(t, 4))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "item 3")
		assert.Equal(t, float64(1), testutil.ToFloat64(m.AlertsSent.WithLabelValues("error")))
	})
}

func TestRunConsumesLowStockChannel(t *testing.T) {
	broker := new(mockBroker)
	emailSvc := new(mockEmail)
	svc := NewService(broker, emailSvc, recipients, logger.Nop(), metrics.NewNop())

	ch := make(chan []byte, 2)
	ch <- alertPayload(t, 1)
	ch <- []byte("not json")
	close(ch)

	broker.On("Subscribe", mock.Anything, model.EventInventoryLowStock).Return(ch, nil)
	emailSvc.On("SendCustom", mock.Anything, recipients, "Low stock: Gauze", mock.Anything).Return(nil).Once()

	require.NoError(t, svc.Run(context.Background()))
	broker.AssertExpectations(t)
	emailSvc.AssertExpectations(t)
}
