package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnpaid Status = "unpaid"
	StatusPaid   Status = "paid"
)

type Category string

const (
	CategoryInstallmentPurchase Category = "installment_purchase"
	CategoryElectricity         Category = "electricity"
	CategoryWater               Category = "water"
	CategoryInternet            Category = "internet"
	CategoryGrocery             Category = "grocery"
	CategoryOther               Category = "other"
)

type Installment string

const (
	InstallmentNoInterest   Installment = "no_interest"
	InstallmentThreeMonths  Installment = "three_months"
	InstallmentSixMonths    Installment = "six_months"
	InstallmentTwelveMonths Installment = "twelve_months"
)

type Assignee string

const (
	AssigneeMemberA    Assignee = "member_a"
	AssigneeMemberB    Assignee = "member_b"
	AssigneeUnassigned Assignee = "unassigned"
)

// Source values recorded at creation, derived from the category.
const (
	SourceInstallmentPurchase = "installment_purchase"
	SourceManual              = "manual"
)

// Bill is the persisted entity. DueDate and PaidAt are date-only values
// stored at local midnight.
type Bill struct {
	ID          uuid.UUID       `db:"id"`
	Name        string          `db:"name"`
	Amount      decimal.Decimal `db:"amount"`
	Currency    string          `db:"currency"`
	DueDate     time.Time       `db:"due_date"`
	Status      Status          `db:"status"`
	PaidAt      *time.Time      `db:"paid_at"`
	Category    Category        `db:"category"`
	Installment *Installment    `db:"installment"`
	Assignee    Assignee        `db:"assignee"`
	Provider    *string         `db:"provider"`
	Notes       *string         `db:"notes"`
	Source      *string         `db:"source"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// BillDTO is the wire shape of a bill: amount as a plain number, dueDate
// and paidAt as "YYYY-MM-DD" strings, timestamps as RFC3339.
type BillDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Amount      float64      `json:"amount"`
	Currency    string       `json:"currency"`
	DueDate     string       `json:"dueDate"`
	Status      Status       `json:"status"`
	PaidAt      *string      `json:"paidAt"`
	Category    Category     `json:"category"`
	Installment *Installment `json:"installment"`
	Assignee    Assignee     `json:"assignee"`
	Provider    *string      `json:"provider"`
	Notes       *string      `json:"notes"`
	Source      *string      `json:"source"`
	CreatedAt   string       `json:"createdAt"`
	UpdatedAt   string       `json:"updatedAt"`
}

const dateLayout = "2006-01-02"

// DTO normalizes the entity for the wire. This is the single place where
// decimal amounts become numbers and dates become date-only strings.
func (b *Bill) DTO() *BillDTO {
	dto := &BillDTO{
		ID:          b.ID.String(),
		Name:        b.Name,
		Amount:      b.Amount.InexactFloat64(),
		Currency:    b.Currency,
		DueDate:     b.DueDate.Format(dateLayout),
		Status:      b.Status,
		Category:    b.Category,
		Installment: b.Installment,
		Assignee:    b.Assignee,
		Provider:    b.Provider,
		Notes:       b.Notes,
		Source:      b.Source,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   b.UpdatedAt.Format(time.RFC3339),
	}
	if b.PaidAt != nil {
		s := b.PaidAt.Format(dateLayout)
		dto.PaidAt = &s
	}
	return dto
}

// DTOs for requests

type CreateBillRequest struct {
	Name        string       `json:"name" validate:"required"`
	Amount      float64      `json:"amount" validate:"gt=0"`
	DueDate     string       `json:"dueDate" validate:"required,datetime=2006-01-02"`
	Category    Category     `json:"category" validate:"required,oneof=installment_purchase electricity water internet grocery other"`
	Assignee    Assignee     `json:"assignee" validate:"omitempty,oneof=member_a member_b unassigned"`
	Provider    *string      `json:"provider"`
	Notes       *string      `json:"notes"`
	Installment *Installment `json:"installment" validate:"omitnil,oneof=no_interest three_months six_months twelve_months"`
}

// UpdateBillRequest is a partial patch. A nil pointer means either
// "absent" or "explicit null"; Has distinguishes the two so nullable
// fields (provider, notes, paidAt, installment) can be cleared.
type UpdateBillRequest struct {
	Name        *string      `json:"name" validate:"omitnil,min=1"`
	Amount      *float64     `json:"amount" validate:"omitnil,gt=0"`
	DueDate     *string      `json:"dueDate" validate:"omitnil,datetime=2006-01-02"`
	Category    *Category    `json:"category" validate:"omitnil,oneof=installment_purchase electricity water internet grocery other"`
	Assignee    *Assignee    `json:"assignee" validate:"omitnil,oneof=member_a member_b unassigned"`
	Status      *Status      `json:"status" validate:"omitnil,oneof=unpaid paid"`
	PaidAt      *string      `json:"paidAt" validate:"omitnil,datetime=2006-01-02"`
	Provider    *string      `json:"provider"`
	Notes       *string      `json:"notes"`
	Installment *Installment `json:"installment" validate:"omitnil,oneof=no_interest three_months six_months twelve_months"`

	present map[string]bool
}

func (r *UpdateBillRequest) UnmarshalJSON(data []byte) error {
	type alias UpdateBillRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*r = UpdateBillRequest(a)
	r.present = make(map[string]bool, len(keys))
	for k := range keys {
		r.present[k] = true
	}
	return nil
}

// MarshalJSON emits only the fields that carry a value or were marked
// present, so a patch built in code never sends accidental nulls for
// fields it does not touch.
func (r UpdateBillRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{})

	include := func(key string, isNil bool, v interface{}) {
		if !isNil {
			out[key] = v
		} else if r.present[key] {
			out[key] = nil
		}
	}

	include("name", r.Name == nil, r.Name)
	include("amount", r.Amount == nil, r.Amount)
	include("dueDate", r.DueDate == nil, r.DueDate)
	include("category", r.Category == nil, r.Category)
	include("assignee", r.Assignee == nil, r.Assignee)
	include("status", r.Status == nil, r.Status)
	include("paidAt", r.PaidAt == nil, r.PaidAt)
	include("provider", r.Provider == nil, r.Provider)
	include("notes", r.Notes == nil, r.Notes)
	include("installment", r.Installment == nil, r.Installment)

	return json.Marshal(out)
}

// Has reports whether the JSON key was supplied in the patch body.
func (r *UpdateBillRequest) Has(field string) bool {
	return r.present[field]
}

// Set marks a field as present. Intended for building patches in code
// (tests, the client binder) rather than from a JSON body.
func (r *UpdateBillRequest) Set(field string) {
	if r.present == nil {
		r.present = make(map[string]bool)
	}
	r.present[field] = true
}

// SourceForCategory derives the provenance tag recorded at creation.
func SourceForCategory(c Category) string {
	if c == CategoryInstallmentPurchase {
		return SourceInstallmentPurchase
	}
	return SourceManual
}

// RequiresInstallment reports whether the category must carry an
// installment plan.
func (c Category) RequiresInstallment() bool {
	return c == CategoryInstallmentPurchase
}

// Messages surfaced on the installment field when the pairing rule fails.
const (
	MsgInstallmentRequired = `installment is required when category is "installment_purchase"`
	MsgInstallmentOmitted  = `installment must be omitted unless category is "installment_purchase"`
)

// CheckInstallmentRule validates the category/installment pairing on a
// merged record: installment is non-nil iff the category is the
// installment-purchase category. It returns a message for the
// installment field, or "" when the rule holds. Both the create and
// update paths go through here so the invariant has a single owner.
func CheckInstallmentRule(c Category, installment *Installment) string {
	if c.RequiresInstallment() && installment == nil {
		return MsgInstallmentRequired
	}
	if !c.RequiresInstallment() && installment != nil {
		return MsgInstallmentOmitted
	}
	return ""
}
