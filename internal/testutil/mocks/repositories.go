package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundhive/donation-service/internal/domain"
	"github.com/fundhive/donation-service/internal/domain/ports"
)

// PaymentRepository is an in-memory PaymentRepository
type PaymentRepository struct {
	mu       sync.Mutex
	payments map[string]domain.Payment

	GetErr    error
	UpdateErr error
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]domain.Payment)}
}

// Put seeds a payment directly into the store
func (r *PaymentRepository) Put(p *domain.Payment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[p.ID] = *p
}

func (r *PaymentRepository) Create(ctx context.Context, db ports.DBTX, payment *domain.Payment) error {
	r.Put(payment)
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Payment, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	copied := p
	return &copied, nil
}

func (r *PaymentRepository) GetByIDForUpdate(ctx context.Context, db ports.DBTX, id string) (*domain.Payment, error) {
	return r.GetByID(ctx, db, id)
}

func (r *PaymentRepository) Update(ctx context.Context, db ports.DBTX, payment *domain.Payment) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.payments[payment.ID]; !ok {
		return domain.ErrPaymentNotFound
	}
	r.payments[payment.ID] = *payment
	return nil
}

// DonationRepository is an in-memory DonationRepository
type DonationRepository struct {
	mu        sync.Mutex
	donations map[string]domain.Donation

	GetErr    error
	UpdateErr error
	SumErr    error
}

func NewDonationRepository() *DonationRepository {
	return &DonationRepository{donations: make(map[string]domain.Donation)}
}

func (r *DonationRepository) Put(d *domain.Donation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.donations[d.ID] = *d
}

func (r *DonationRepository) Create(ctx context.Context, db ports.DBTX, donation *domain.Donation) error {
	r.Put(donation)
	return nil
}

func (r *DonationRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Donation, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.donations[id]
	if !ok {
		return nil, domain.ErrDonationNotFound
	}
	copied := d
	return &copied, nil
}

func (r *DonationRepository) Update(ctx context.Context, db ports.DBTX, donation *domain.Donation) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.donations[donation.ID]; !ok {
		return domain.ErrDonationNotFound
	}
	r.donations[donation.ID] = *donation
	return nil
}

func (r *DonationRepository) SumSucceededByCampaign(ctx context.Context, db ports.DBTX, campaignID string) (decimal.Decimal, error) {
	if r.SumErr != nil {
		return decimal.Zero, r.SumErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, d := range r.donations {
		if d.CampaignID == campaignID && d.Status == domain.DonationStatusSuccess {
			total = total.Add(d.Amount)
		}
	}
	return total, nil
}

// CampaignRepository is an in-memory CampaignRepository
type CampaignRepository struct {
	mu        sync.Mutex
	campaigns map[string]domain.Campaign

	GetErr error
}

func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{campaigns: make(map[string]domain.Campaign)}
}

func (r *CampaignRepository) Put(c *domain.Campaign) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = *c
}

func (r *CampaignRepository) Get(id string) (domain.Campaign, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	return c, ok
}

func (r *CampaignRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Campaign, error) {
	if r.GetErr != nil {
		return nil, r.GetErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	copied := c
	return &copied, nil
}

func (r *CampaignRepository) GetByIDForUpdate(ctx context.Context, db ports.DBTX, id string) (*domain.Campaign, error) {
	return r.GetByID(ctx, db, id)
}

func (r *CampaignRepository) UpdateCurrentAmount(ctx context.Context, db ports.DBTX, id string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	c.CurrentAmount = amount
	r.campaigns[id] = c
	return nil
}

// TaskRepository is an in-memory TaskRepository
type TaskRepository struct {
	mu    sync.Mutex
	tasks map[string]domain.Task

	CreateErr error
	UpdateErr error
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]domain.Task)}
}

func (r *TaskRepository) Put(t *domain.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = *t
}

func (r *TaskRepository) Get(id string) (domain.Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	return t, ok
}

func (r *TaskRepository) All() []domain.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out
}

func (r *TaskRepository) Create(ctx context.Context, db ports.DBTX, task *domain.Task) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.Put(task)
	return nil
}

func (r *TaskRepository) FetchDue(ctx context.Context, db ports.DBTX, limit int) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*domain.Task
	for _, t := range r.tasks {
		if len(due) >= limit {
			break
		}
		if t.Status == domain.TaskStatusPending && !t.NextRetryAt.After(time.Now()) {
			copied := t
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *TaskRepository) Update(ctx context.Context, db ports.DBTX, task *domain.Task) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = *task
	return nil
}
