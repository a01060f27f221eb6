package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billtrack/internal/domain"
)

type billRepository struct {
	db *sqlx.DB
}

func NewBillRepository(db *sqlx.DB) BillRepository {
	return &billRepository{db: db}
}

const billColumns = `id, name, amount, currency, due_date, status, paid_at, category, installment, assignee, provider, notes, source, created_at, updated_at`

func (r *billRepository) List(ctx context.Context) ([]*domain.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		ORDER BY due_date ASC
	`

	bills := []*domain.Bill{}
	err := r.db.SelectContext(ctx, &bills, query)
	if err != nil {
		return nil, err
	}

	return bills, nil
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bill, error) {
	query := `
		SELECT ` + billColumns + `
		FROM bills
		WHERE id = $1
	`

	var bill domain.Bill
	err := r.db.GetContext(ctx, &bill, query, id)
	if err != nil {
		return nil, err
	}

	return &bill, nil
}

func (r *billRepository) Create(ctx context.Context, bill *domain.Bill) error {
	query := `
		INSERT INTO bills (` + billColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.ExecContext(ctx, query,
		bill.ID,
		bill.Name,
		bill.Amount,
		bill.Currency,
		bill.DueDate,
		bill.Status,
		bill.PaidAt,
		bill.Category,
		bill.Installment,
		bill.Assignee,
		bill.Provider,
		bill.Notes,
		bill.Source,
		bill.CreatedAt,
		bill.UpdatedAt,
	)

	return err
}

func (r *billRepository) Update(ctx context.Context, bill *domain.Bill) error {
	query := `
		UPDATE bills
		SET name = $2, amount = $3, currency = $4, due_date = $5, status = $6,
		    paid_at = $7, category = $8, installment = $9, assignee = $10,
		    provider = $11, notes = $12, updated_at = $13
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		bill.ID,
		bill.Name,
		bill.Amount,
		bill.Currency,
		bill.DueDate,
		bill.Status,
		bill.PaidAt,
		bill.Category,
		bill.Installment,
		bill.Assignee,
		bill.Provider,
		bill.Notes,
		bill.UpdatedAt,
	)

	return err
}

func (r *billRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM bills WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// DeleteAll counts and deletes inside one transaction so the reported
// count matches what was removed and a failure leaves the table intact.
func (r *billRepository) DeleteAll(ctx context.Context) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var count int64
	if err = tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM bills`); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM bills`); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	return count, nil
}
