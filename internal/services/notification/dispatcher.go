package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Dispatcher delivers user-facing events through the Notifier port. It is
// invoked from queued task handlers; a failure for one recipient never aborts
// delivery to the remaining recipients.
type Dispatcher struct {
	notifier ports.Notifier
	logger   *zap.Logger
}

// NewDispatcher creates a new notification dispatcher
func NewDispatcher(notifier ports.Notifier, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger}
}

// Dispatch sends one event to one recipient
func (d *Dispatcher) Dispatch(ctx context.Context, recipient, eventType string, data map[string]string) error {
	if err := d.notifier.Send(ctx, recipient, eventType, data); err != nil {
		return fmt.Errorf("send %s to %s: %w", eventType, recipient, err)
	}
	d.logger.Info("notification delivered",
		zap.String("recipient", recipient),
		zap.String("event_type", eventType),
	)
	return nil
}

// DispatchToRecipients sends one event to several recipients, isolating
// per-recipient failures. It returns an error only if every delivery failed,
// so a retried task does not re-notify recipients that already succeeded on a
// best-effort basis.
func (d *Dispatcher) DispatchToRecipients(ctx context.Context, recipients []string, eventType string, data map[string]string) error {
	if len(recipients) == 0 {
		return nil
	}

	var failed []string
	for _, recipient := range recipients {
		if err := d.Dispatch(ctx, recipient, eventType, data); err != nil {
			d.logger.Error("notification delivery failed",
				zap.String("recipient", recipient),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
			failed = append(failed, recipient)
		}
	}

	if len(failed) == len(recipients) {
		return fmt.Errorf("all %d deliveries failed for %s (recipients: %s)",
			len(recipients), eventType, strings.Join(failed, ","))
	}
	return nil
}
