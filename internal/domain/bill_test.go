package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInstallmentRule(t *testing.T) {
	plan := InstallmentThreeMonths

	tests := []struct {
		name        string
		category    Category
		installment *Installment
		wantMessage string
	}{
		{"installment purchase with plan", CategoryInstallmentPurchase, &plan, ""},
		{"installment purchase without plan", CategoryInstallmentPurchase, nil, MsgInstallmentRequired},
		{"other category without plan", CategoryGrocery, nil, ""},
		{"other category with plan", CategoryGrocery, &plan, MsgInstallmentOmitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, CheckInstallmentRule(tt.category, tt.installment))
		})
	}
}

func TestBillDTO(t *testing.T) {
	paidAt := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	notes := "paid over the counter"
	bill := &Bill{
		ID:        uuid.New(),
		Name:      "Water",
		Amount:    decimal.RequireFromString("350.50"),
		Currency:  "PHP",
		DueDate:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:    StatusPaid,
		PaidAt:    &paidAt,
		Category:  CategoryWater,
		Assignee:  AssigneeMemberB,
		Notes:     &notes,
		CreatedAt: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC),
	}

	dto := bill.DTO()

	assert.Equal(t, bill.ID.String(), dto.ID)
	assert.Equal(t, 350.50, dto.Amount)
	assert.Equal(t, "2025-03-15", dto.DueDate)
	require.NotNil(t, dto.PaidAt)
	assert.Equal(t, "2025-03-09", *dto.PaidAt)
	assert.Nil(t, dto.Installment)
	assert.Equal(t, "2025-02-01T09:30:00Z", dto.CreatedAt)

	// Amount crosses the wire as a plain number.
	raw, err := json.Marshal(dto)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"amount":350.5`)
}

func TestUpdateBillRequest_Presence(t *testing.T) {
	var patch UpdateBillRequest
	require.NoError(t, json.Unmarshal([]byte(`{"provider":null,"name":"renamed"}`), &patch))

	assert.True(t, patch.Has("provider"))
	assert.Nil(t, patch.Provider)
	assert.True(t, patch.Has("name"))
	require.NotNil(t, patch.Name)
	assert.Equal(t, "renamed", *patch.Name)
	assert.False(t, patch.Has("notes"))
}

func TestUpdateBillRequest_MarshalRoundTrip(t *testing.T) {
	name := "renamed"
	patch := UpdateBillRequest{Name: &name}
	patch.Set("installment") // explicit null to clear

	raw, err := json.Marshal(patch)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "name")
	assert.Contains(t, decoded, "installment")
	assert.Equal(t, "null", string(decoded["installment"]))
	assert.NotContains(t, decoded, "provider")
}

func TestSourceForCategory(t *testing.T) {
	assert.Equal(t, SourceInstallmentPurchase, SourceForCategory(CategoryInstallmentPurchase))
	assert.Equal(t, SourceManual, SourceForCategory(CategoryElectricity))
	assert.Equal(t, SourceManual, SourceForCategory(CategoryOther))
}
