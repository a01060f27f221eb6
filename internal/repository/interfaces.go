package repository

import (
	"context"

	"github.com/google/uuid"

	"billtrack/internal/domain"
)

// BillRepository defines the interface for bill data operations
type BillRepository interface {
	// List retrieves all bills ordered by ascending due date
	List(ctx context.Context) ([]*domain.Bill, error)

	// GetByID retrieves a bill by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error)

	// Create persists a new bill
	Create(ctx context.Context, bill *domain.Bill) error

	// Update persists the full merged state of an existing bill
	Update(ctx context.Context, bill *domain.Bill) error

	// Delete removes a bill, reporting whether a row existed
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// DeleteAll removes every bill atomically and returns the
	// pre-purge count
	DeleteAll(ctx context.Context) (int64, error)
}
