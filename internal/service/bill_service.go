package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billtrack/internal/config"
	"billtrack/internal/domain"
	"billtrack/internal/repository"
	apperrors "billtrack/pkg/errors"
	"billtrack/pkg/utils"
)

// BillService owns the bill lifecycle: validation, defaulting, the
// category/installment rule, the status/paidAt invariant, and purge.
type BillService struct {
	repo     repository.BillRepository
	cfg      *config.Config
	validate *validator.Validate
	loc      *time.Location
	now      func() time.Time
}

func NewBillService(repo repository.BillRepository, cfg *config.Config) *BillService {
	v := validator.New()

	// Field errors are keyed by JSON name so they line up with what the
	// caller actually sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &BillService{
		repo:     repo,
		cfg:      cfg,
		validate: v,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

// ListBills returns all bills ordered by ascending due date.
func (s *BillService) ListBills(ctx context.Context) ([]domain.BillDTO, error) {
	bills, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	dtos := make([]domain.BillDTO, 0, len(bills))
	for _, b := range bills {
		dtos = append(dtos, *b.DTO())
	}
	return dtos, nil
}

// GetBill returns one bill by id.
func (s *BillService) GetBill(ctx context.Context, id uuid.UUID) (*domain.BillDTO, error) {
	bill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapBillNotFound(id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return bill.DTO(), nil
}

// CreateBill validates the input, applies defaults and persists a new
// bill.
func (s *BillService) CreateBill(ctx context.Context, req *domain.CreateBillRequest) (*domain.BillDTO, error) {
	vErr := apperrors.NewValidationError()
	if err := s.collectFieldErrors(req, vErr); err != nil {
		return nil, err
	}

	if msg := domain.CheckInstallmentRule(req.Category, req.Installment); msg != "" {
		vErr.Add("installment", msg)
	}

	if vErr.HasErrors() {
		return nil, vErr
	}

	dueDate, err := utils.ParseDate(req.DueDate, s.loc)
	if err != nil {
		vErr.Add("dueDate", "must be a yyyy-mm-dd date")
		return nil, vErr
	}

	assignee := req.Assignee
	if assignee == "" {
		assignee = domain.AssigneeUnassigned
	}

	source := domain.SourceForCategory(req.Category)
	now := s.now().In(s.loc)

	bill := &domain.Bill{
		ID:          uuid.New(),
		Name:        req.Name,
		Amount:      decimal.NewFromFloat(req.Amount).Round(2),
		Currency:    s.cfg.Business.DefaultCurrency,
		DueDate:     dueDate,
		Status:      domain.StatusUnpaid,
		Category:    req.Category,
		Installment: req.Installment,
		Assignee:    assignee,
		Provider:    req.Provider,
		Notes:       req.Notes,
		Source:      &source,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, bill); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return bill.DTO(), nil
}

// UpdateBill applies a partial patch to an existing bill. The
// category/installment rule is checked against the merged state, and
// the status/paidAt coupling is enforced unconditionally: paid without
// a date stamps today, unpaid always clears the date.
func (s *BillService) UpdateBill(ctx context.Context, id uuid.UUID, patch *domain.UpdateBillRequest) (*domain.BillDTO, error) {
	vErr := apperrors.NewValidationError()
	if err := s.collectFieldErrors(patch, vErr); err != nil {
		return nil, err
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	bill, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapBillNotFound(id.String())
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	if patch.Name != nil {
		bill.Name = *patch.Name
	}
	if patch.Amount != nil {
		bill.Amount = decimal.NewFromFloat(*patch.Amount).Round(2)
	}
	if patch.DueDate != nil {
		due, err := utils.ParseDate(*patch.DueDate, s.loc)
		if err != nil {
			vErr.Add("dueDate", "must be a yyyy-mm-dd date")
			return nil, vErr
		}
		bill.DueDate = due
	}
	if patch.Assignee != nil {
		bill.Assignee = *patch.Assignee
	}

	// Empty strings on nullable free-text fields are an explicit clear.
	if patch.Has("provider") {
		bill.Provider = normalizeNullable(patch.Provider)
	}
	if patch.Has("notes") {
		bill.Notes = normalizeNullable(patch.Notes)
	}

	// Supplying a plan together with a category that cannot carry one is
	// rejected outright, never silently dropped.
	if patch.Category != nil && !patch.Category.RequiresInstallment() &&
		patch.Has("installment") && patch.Installment != nil {
		vErr.Add("installment", domain.MsgInstallmentOmitted)
		return nil, vErr
	}

	if patch.Category != nil {
		bill.Category = *patch.Category
	}
	if patch.Has("installment") {
		bill.Installment = patch.Installment
	}
	// Moving away from the installment-purchase category drops a stored
	// plan the patch did not mention.
	if patch.Category != nil && !bill.Category.RequiresInstallment() {
		bill.Installment = nil
	}
	if msg := domain.CheckInstallmentRule(bill.Category, bill.Installment); msg != "" {
		vErr.Add("installment", msg)
		return nil, vErr
	}

	if patch.Status != nil {
		bill.Status = *patch.Status
	}
	if patch.Has("paidAt") {
		if patch.PaidAt == nil {
			bill.PaidAt = nil
		} else {
			paidAt, err := utils.ParseDate(*patch.PaidAt, s.loc)
			if err != nil {
				vErr.Add("paidAt", "must be a yyyy-mm-dd date")
				return nil, vErr
			}
			bill.PaidAt = &paidAt
		}
	}
	if bill.Status == domain.StatusPaid && bill.PaidAt == nil {
		today := utils.StartOfDay(s.now().In(s.loc))
		bill.PaidAt = &today
	}
	if bill.Status == domain.StatusUnpaid {
		bill.PaidAt = nil
	}

	bill.UpdatedAt = s.now().In(s.loc)

	if err := s.repo.Update(ctx, bill); err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}

	return bill.DTO(), nil
}

// DeleteBill removes a bill by id. Deleting an absent id reports
// not-found, on the first call and on every repeat.
func (s *BillService) DeleteBill(ctx context.Context, id uuid.UUID) error {
	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return apperrors.WrapDatabaseError(err)
	}
	if !existed {
		return apperrors.WrapBillNotFound(id.String())
	}
	return nil
}

// PurgeBills removes every bill as one atomic unit and returns the
// pre-purge count.
func (s *BillService) PurgeBills(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, apperrors.WrapDatabaseError(err)
	}
	return count, nil
}

// collectFieldErrors runs struct validation and folds the result into
// vErr. Non-field validator failures are returned as-is.
func (s *BillService) collectFieldErrors(v interface{}, vErr *apperrors.ValidationError) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	for _, fe := range fieldErrs {
		vErr.Add(fe.Field(), messageForTag(fe))
	}
	return nil
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than 0"
	case "min":
		return "must not be empty"
	case "datetime":
		return "must be a yyyy-mm-dd date"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return "is invalid"
	}
}

func normalizeNullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
