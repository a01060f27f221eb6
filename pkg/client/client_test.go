package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"billtrack/internal/domain"
)

func TestListBills_NormalizesWireVariants(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bare array with timestamp dates",
			body: `[{"id":"1","name":"Internet","amount":1999,"dueDate":"2025-03-15T00:00:00Z","status":"unpaid","category":"internet","paidAt":null}]`,
		},
		{
			name: "wrapped object with date-only dates",
			body: `{"bills":[{"id":"1","name":"Internet","amount":1999,"dueDate":"2025-03-15","status":"unpaid","category":"internet"}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			bills, err := New(server.URL).ListBills(context.Background())

			require.NoError(t, err)
			require.Len(t, bills, 1)
			assert.Equal(t, "2025-03-15", bills[0].DueDate)
			assert.Equal(t, float64(1999), bills[0].Amount)
			assert.Equal(t, domain.AssigneeUnassigned, bills[0].Assignee)
		})
	}
}

func TestClient_ValidationErrorSurfacesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  "validation failed",
			"fields": map[string][]string{"installment": {domain.MsgInstallmentRequired}},
		})
	}))
	defer server.Close()

	_, err := New(server.URL).CreateBill(context.Background(), &domain.CreateBillRequest{
		Name:     "Phone",
		Amount:   32000,
		DueDate:  "2025-04-01",
		Category: domain.CategoryInstallmentPurchase,
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, apiErr.Fields, "installment")
}

func TestClient_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	}))
	defer server.Close()

	err := New(server.URL).DeleteBill(context.Background(), "missing")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
}

func TestBinder_RefetchesAfterEveryMutation(t *testing.T) {
	var lists atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/bills":
			lists.Add(1)
			_, _ = w.Write([]byte(`[{"id":"1","name":"Internet","amount":1999,"dueDate":"2025-03-15","status":"unpaid","category":"internet"}]`))
		case r.Method == http.MethodPost && r.URL.Path == "/bills":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"2","name":"Water","amount":500,"dueDate":"2025-03-20","status":"unpaid","category":"water"}`))
		case r.Method == http.MethodPut:
			_, _ = w.Write([]byte(`{"id":"1","name":"Internet","amount":1999,"dueDate":"2025-03-15","status":"paid","category":"internet"}`))
		case r.Method == http.MethodDelete:
			_, _ = w.Write([]byte(`{"ok":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	b := NewBinder(New(server.URL))
	ctx := context.Background()

	require.NoError(t, b.Refresh(ctx))
	assert.Equal(t, int64(1), lists.Load())

	require.NoError(t, b.AddBill(ctx, &domain.CreateBillRequest{
		Name: "Water", Amount: 500, DueDate: "2025-03-20", Category: domain.CategoryWater,
	}))
	assert.Equal(t, int64(2), lists.Load())

	paid := domain.StatusPaid
	require.NoError(t, b.UpdateBill(ctx, "1", &domain.UpdateBillRequest{Status: &paid}))
	assert.Equal(t, int64(3), lists.Load())

	require.NoError(t, b.RemoveBill(ctx, "1"))
	assert.Equal(t, int64(4), lists.Load())

	require.Len(t, b.Bills(), 1)
}

func TestBinder_MutationFailureSkipsRefetch(t *testing.T) {
	var lists atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			lists.Add(1)
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"validation failed"}`))
	}))
	defer server.Close()

	b := NewBinder(New(server.URL))

	err := b.AddBill(context.Background(), &domain.CreateBillRequest{Name: "x"})

	require.Error(t, err)
	assert.Zero(t, lists.Load())
}

func TestBinder_Views(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"1","name":"overdue","amount":100,"dueDate":"2025-03-08","status":"unpaid","category":"water","assignee":"member_a"},
			{"id":"2","name":"this month","amount":200,"dueDate":"2025-03-20","status":"unpaid","category":"internet","assignee":"member_b"},
			{"id":"3","name":"upcoming","amount":300,"dueDate":"2025-04-02","status":"unpaid","category":"grocery","assignee":"member_a"},
			{"id":"4","name":"settled","amount":400,"dueDate":"2025-03-01","status":"paid","category":"other","assignee":"member_a"}
		]`))
	}))
	defer server.Close()

	b := NewBinder(New(server.URL))
	b.now = func() time.Time { return time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC) }
	require.NoError(t, b.Refresh(context.Background()))

	v := b.Views()
	require.Len(t, v.Overdue, 1)
	assert.Equal(t, "overdue", v.Overdue[0].Name)
	require.Len(t, v.UnpaidThisMonth, 1)
	require.Len(t, v.UnpaidUpcoming, 1)
	require.Len(t, v.Paid, 1)

	forA := b.ViewsFor(domain.AssigneeMemberA)
	require.Len(t, forA.Overdue, 1)
	assert.Empty(t, forA.UnpaidThisMonth)
	require.Len(t, forA.Paid, 1)

	totals := forA.Totals()
	assert.Equal(t, 100.0, totals.Overdue)
	assert.Equal(t, 400.0, totals.Paid)
}
