package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"billtrack/internal/domain"
	apperrors "billtrack/pkg/errors"
	"billtrack/pkg/response"
)

// BillService is the service surface the HTTP layer depends on.
type BillService interface {
	ListBills(ctx context.Context) ([]domain.BillDTO, error)
	GetBill(ctx context.Context, id uuid.UUID) (*domain.BillDTO, error)
	CreateBill(ctx context.Context, req *domain.CreateBillRequest) (*domain.BillDTO, error)
	UpdateBill(ctx context.Context, id uuid.UUID, patch *domain.UpdateBillRequest) (*domain.BillDTO, error)
	DeleteBill(ctx context.Context, id uuid.UUID) error
	PurgeBills(ctx context.Context) (int64, error)
}

type BillHandler struct {
	service BillService
}

func NewBillHandler(service BillService) *BillHandler {
	return &BillHandler{service: service}
}

// ListBills handles GET /bills
func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.service.ListBills(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, bills)
}

// GetBill handles GET /bills/{id}
func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	bill, err := h.service.GetBill(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, bill)
}

// CreateBill handles POST /bills
func (h *BillHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	bill, err := h.service.CreateBill(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, bill)
}

// UpdateBill handles PUT /bills/{id}
func (h *BillHandler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	var patch domain.UpdateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	bill, err := h.service.UpdateBill(r.Context(), id, &patch)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, bill)
}

// DeleteBill handles DELETE /bills/{id}
func (h *BillHandler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	id, ok := billID(r)
	if !ok {
		response.NotFound(w)
		return
	}

	if err := h.service.DeleteBill(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.OK(w)
}

// billID parses the path id. Ids are opaque, so anything that cannot be
// a stored id is treated as not found rather than a bad request.
func billID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var vErr *apperrors.ValidationError
	if errors.As(err, &vErr) {
		response.ValidationFailed(w, vErr.Fields)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrBillNotFound):
		response.NotFound(w)
	case errors.Is(err, apperrors.ErrUnauthorized):
		response.Unauthorized(w)
	default:
		response.InternalServerError(w)
	}
}
