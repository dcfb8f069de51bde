package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/services/aggregation"
	"github.com/fundhive/donation-service/internal/services/notification"
)

// NewHandlers wires task types to their executors
func NewHandlers(aggregator *aggregation.Service, dispatcher *notification.Dispatcher) map[domain.TaskType]Handler {
	return map[domain.TaskType]Handler{
		domain.TaskTypeCampaignAggregation: aggregationHandler(aggregator),
		domain.TaskTypeNotification:        notificationHandler(dispatcher),
	}
}

// aggregationHandler recomputes a campaign's running total. Recomputation is
// a full re-sum, so re-delivery of the same task is harmless.
func aggregationHandler(aggregator *aggregation.Service) Handler {
	return func(ctx context.Context, task *domain.Task) error {
		campaignID := task.Payload[domain.TaskKeyCampaignID]
		if campaignID == "" {
			return fmt.Errorf("aggregation task %s missing campaign id", task.ID)
		}
		return aggregator.RecomputeCampaignAmount(ctx, campaignID)
	}
}

// notificationHandler delivers one queued notification. The recipient field
// may carry several recipients separated by commas; the task fails only when
// no recipient could be reached.
func notificationHandler(dispatcher *notification.Dispatcher) Handler {
	return func(ctx context.Context, task *domain.Task) error {
		recipients := splitRecipients(task.Payload[domain.TaskKeyRecipient])
		eventType := task.Payload[domain.TaskKeyEventType]
		if len(recipients) == 0 || eventType == "" {
			return fmt.Errorf("notification task %s missing recipient or event type", task.ID)
		}

		data := make(map[string]string, len(task.Payload))
		for k, v := range task.Payload {
			if k == domain.TaskKeyRecipient || k == domain.TaskKeyEventType {
				continue
			}
			data[k] = v
		}

		return dispatcher.DispatchToRecipients(ctx, recipients, eventType, data)
	}
}

func splitRecipients(field string) []string {
	var out []string
	for _, r := range strings.Split(field, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
