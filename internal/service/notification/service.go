package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/physiotrack/clinic-api/internal/email"
	"github.com/physiotrack/clinic-api/internal/model"
	"github.com/physiotrack/clinic-api/pkg/logger"
	"github.com/physiotrack/clinic-api/pkg/messaging"
	"github.com/physiotrack/clinic-api/pkg/metrics"
)

// Service turns low stock events from the broker into emails.
type Service interface {
	// Run consumes events until ctx is done.
	Run(ctx context.Context) error
	HandleLowStock(ctx context.Context, payload []byte) error
}

type service struct {
	broker     messaging.Broker
	emailSvc   email.Service
	recipients []string
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(broker messaging.Broker, emailSvc email.Service, recipients []string, log *logger.Logger, m *metrics.Metrics) Service {
	return &service{
		broker:     broker,
		emailSvc:   emailSvc,
		recipients: recipients,
		logger:     log,
		metrics:    m,
	}
}

func (s *service) Run(ctx context.Context) error {
	s.logger.Info("Starting low stock notifier", "channel", model.EventInventoryLowStock)
	return messaging.Consume(ctx, s.broker, model.EventInventoryLowStock, s.HandleLowStock, func(err error) {
		s.logger.Error(err, "Failed to deliver low stock alert")
	})
}

func (s *service) HandleLowStock(ctx context.Context, payload []byte) error {
	var alert model.LowStockAlert
	if err := json.Unmarshal(payload, &alert); err != nil {
		s.metrics.AlertsSent.WithLabelValues("invalid").Inc()
		return fmt.Errorf("invalid low stock payload: %w", err)
	}

	subject, body := renderAlert(&alert)
	if err := s.emailSvc.SendCustom(ctx, s.recipients, subject, body); err != nil {
		s.metrics.AlertsSent.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to email alert for item %d: %w", alert.ItemID, err)
	}

	s.metrics.AlertsSent.WithLabelValues("sent").Inc()
	s.logger.Info("Low stock alert sent", "item_id", alert.ItemID, "current_stock", alert.CurrentStock)
	return nil
}

func renderAlert(alert *model.LowStockAlert) (string, string) {
	subject := fmt.Sprintf("Low stock: %s", alert.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) is running low.\n\n", alert.Name, alert.Category)
	fmt.Fprintf(&b, "Current stock: %d\n", alert.CurrentStock)
	fmt.Fprintf(&b, "Minimum level: %d\n", alert.MinStockLevel)
	if alert.CurrentStock == 0 {
		b.WriteString("\nThe item is out of stock.\n")
	}
	fmt.Fprintf(&b, "\nReported at %s.\n", alert.OccurredAt.Format("2006-01-02 15:04 MST"))
	return subject, b.String()
}
