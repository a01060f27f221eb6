package client

import (
	"context"
	"sync"
	"time"

	"billtrack/internal/domain"
)

// Binder holds the last fetched collection and exposes the bucketed
// views plus mutation actions. Every successful mutation forces a full
// re-fetch; there is no optimistic local merge, so overlapping
// refreshes are idempotent and the last response wins.
type Binder struct {
	client *Client
	now    func() time.Time

	mu    sync.RWMutex
	bills []domain.BillDTO
}

func NewBinder(c *Client) *Binder {
	return &Binder{client: c, now: time.Now}
}

// Refresh re-fetches the full collection.
func (b *Binder) Refresh(ctx context.Context) error {
	bills, err := b.client.ListBills(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.bills = bills
	b.mu.Unlock()
	return nil
}

// Bills returns the last fetched collection.
func (b *Binder) Bills() []domain.BillDTO {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]domain.BillDTO(nil), b.bills...)
}

// Views buckets the last fetched collection against the current time.
func (b *Binder) Views() domain.Views {
	return domain.Bucket(b.Bills(), b.now())
}

// ViewsFor buckets and then filters every bucket to one assignee.
func (b *Binder) ViewsFor(assignee domain.Assignee) domain.Views {
	return b.Views().ForAssignee(assignee)
}

// AddBill creates a bill and re-fetches.
func (b *Binder) AddBill(ctx context.Context, req *domain.CreateBillRequest) error {
	if _, err := b.client.CreateBill(ctx, req); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// UpdateBill patches a bill and re-fetches.
func (b *Binder) UpdateBill(ctx context.Context, id string, patch *domain.UpdateBillRequest) error {
	if _, err := b.client.UpdateBill(ctx, id, patch); err != nil {
		return err
	}
	return b.Refresh(ctx)
}

// RemoveBill deletes a bill and re-fetches.
func (b *Binder) RemoveBill(ctx context.Context, id string) error {
	if err := b.client.DeleteBill(ctx, id); err != nil {
		return err
	}
	return b.Refresh(ctx)
}
