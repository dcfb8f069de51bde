package domain

import (
	"time"
)

// TaskType identifies the asynchronous work a queued task carries
type TaskType string

const (
	TaskTypeCampaignAggregation TaskType = "campaign.aggregate"
	TaskTypeNotification        TaskType = "notification.send"
)

// TaskStatus is the delivery state of a queued task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusSucceeded TaskStatus = "succeeded"
	// TaskStatusFailed marks a task that exhausted its attempts. Failed tasks
	// are kept for inspection and never re-queued.
	TaskStatusFailed TaskStatus = "failed"
)

// Task is an asynchronous job message. It carries the minimal identifiers the
// handler needs plus enough context to avoid re-fetching entities; handlers
// stay idempotent by checking current state before acting.
type Task struct {
	ID      string            `json:"id"`
	Type    TaskType          `json:"type"`
	Payload map[string]string `json:"payload"`

	Status      TaskStatus `json:"status"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	LastError   *string    `json:"last_error"`

	NextRetryAt time.Time `json:"next_retry_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Payload keys shared between enqueuers and task handlers
const (
	TaskKeyCampaignID = "campaign_id"
	TaskKeyPaymentID  = "payment_id"
	TaskKeyDonationID = "donation_id"
	TaskKeyRecipient  = "recipient"
	TaskKeyEventType  = "event_type"
	TaskKeyAmount     = "amount"
	TaskKeyCurrency   = "currency"
)

// Notification event types dispatched by the callback flow
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
	EventDonationReceived = "donation.received"
)
