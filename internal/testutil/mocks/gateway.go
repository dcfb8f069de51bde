package mocks

import (
	"context"
	"sync"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// Gateway is a configurable PaymentGateway stub
type Gateway struct {
	GatewayName string
	Method      domain.PaymentMethod

	ProcessResult *ports.ProcessResult
	ProcessErr    error
	RefundResult  *ports.RefundResult
	RefundErr     error
	VerifyResult  *ports.VerifyResult
	VerifyErr     error

	ProcessCalls int
	RefundCalls  int
}

func (g *Gateway) Name() string {
	if g.GatewayName == "" {
		return "mock"
	}
	return g.GatewayName
}

func (g *Gateway) Supports(method domain.PaymentMethod) bool {
	return method == g.Method
}

func (g *Gateway) ProcessPayment(ctx context.Context, payment *domain.Payment, req *ports.ProcessRequest) (*ports.ProcessResult, error) {
	g.ProcessCalls++
	if g.ProcessErr != nil {
		return nil, g.ProcessErr
	}
	return g.ProcessResult, nil
}

func (g *Gateway) RefundPayment(ctx context.Context, payment *domain.Payment, spec *ports.RefundSpec) (*ports.RefundResult, error) {
	g.RefundCalls++
	if g.RefundErr != nil {
		return nil, g.RefundErr
	}
	amount := spec.Amount
	if amount.IsZero() {
		amount = payment.Amount
	}
	if err := domain.ValidateRefund(payment, amount); err != nil {
		return nil, err
	}
	if g.RefundResult != nil {
		return g.RefundResult, nil
	}
	return &ports.RefundResult{RefundTransactionID: "mock-refund"}, nil
}

func (g *Gateway) VerifyPaymentStatus(ctx context.Context, payment *domain.Payment) (*ports.VerifyResult, error) {
	if g.VerifyErr != nil {
		return nil, g.VerifyErr
	}
	if g.VerifyResult != nil {
		return g.VerifyResult, nil
	}
	return &ports.VerifyResult{Status: payment.Status}, nil
}

// CallbackHandler is a configurable CallbackHandler stub
type CallbackHandler struct {
	Valid  bool
	Result *domain.CallbackResult
	Err    error

	// OnHandle runs inside HandleCallback, letting tests mutate backing
	// state between the guard check and the transactional apply
	OnHandle func(payment *domain.Payment, req *domain.CallbackRequest)
}

func (h *CallbackHandler) ValidateCallback(payment *domain.Payment, req *domain.CallbackRequest) bool {
	return h.Valid
}

func (h *CallbackHandler) HandleCallback(payment *domain.Payment, req *domain.CallbackRequest) (*domain.CallbackResult, error) {
	if h.OnHandle != nil {
		h.OnHandle(payment, req)
	}
	if h.Err != nil {
		return nil, h.Err
	}
	return h.Result, nil
}

// EnqueuedTask records one Enqueue call
type EnqueuedTask struct {
	Type    string
	Payload map[string]string
}

// TaskQueue records enqueued tasks
type TaskQueue struct {
	mu       sync.Mutex
	Enqueued []EnqueuedTask

	EnqueueErr error
}

func (q *TaskQueue) Enqueue(ctx context.Context, taskType string, payload map[string]string) error {
	if q.EnqueueErr != nil {
		return q.EnqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Enqueued = append(q.Enqueued, EnqueuedTask{Type: taskType, Payload: payload})
	return nil
}

// ByType returns the enqueued tasks of the given type
func (q *TaskQueue) ByType(taskType string) []EnqueuedTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []EnqueuedTask
	for _, t := range q.Enqueued {
		if t.Type == taskType {
			out = append(out, t)
		}
	}
	return out
}

// Notifier records Send calls
type Notifier struct {
	mu    sync.Mutex
	Sent  []SentNotification
	Fail  bool
	Calls int

	// FailFor fails deliveries to specific recipients
	FailFor map[string]bool
}

// SentNotification records one delivered event
type SentNotification struct {
	Recipient string
	EventType string
	Data      map[string]string
}

func (n *Notifier) Send(ctx context.Context, recipient, eventType string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Calls++
	if n.Fail || n.FailFor[recipient] {
		return context.DeadlineExceeded
	}
	n.Sent = append(n.Sent, SentNotification{Recipient: recipient, EventType: eventType, Data: data})
	return nil
}
