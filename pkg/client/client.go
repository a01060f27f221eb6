// Package client is the data binder for the bills API: it fetches the
// full collection, normalizes wire shapes, derives the bucketed views,
// and re-fetches after every successful mutation so the local state
// always reflects server truth after the round trip completes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"billtrack/internal/domain"
	"billtrack/pkg/utils"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("api error %d: %s (%d field errors)", e.Status, e.Message, len(e.Fields))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether the server answered 404.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// Client is a thin HTTP client for the bills API.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListBills fetches the full collection. The payload may be a bare
// array or wrapped as {"bills": [...]}; dates may be date-only or full
// timestamps. Both tolerances are normalized away here, once.
func (c *Client) ListBills(ctx context.Context) ([]domain.BillDTO, error) {
	raw, err := c.do(ctx, http.MethodGet, "/bills", nil)
	if err != nil {
		return nil, err
	}

	var bills []domain.BillDTO
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Bills []domain.BillDTO `json:"bills"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding bill list: %w", err)
		}
		bills = wrapped.Bills
	} else if err := json.Unmarshal(raw, &bills); err != nil {
		return nil, fmt.Errorf("decoding bill list: %w", err)
	}

	for i := range bills {
		normalize(&bills[i])
	}
	return bills, nil
}

// GetBill fetches one bill by id.
func (c *Client) GetBill(ctx context.Context, id string) (*domain.BillDTO, error) {
	raw, err := c.do(ctx, http.MethodGet, "/bills/"+id, nil)
	if err != nil {
		return nil, err
	}

	var bill domain.BillDTO
	if err := json.Unmarshal(raw, &bill); err != nil {
		return nil, fmt.Errorf("decoding bill: %w", err)
	}
	normalize(&bill)
	return &bill, nil
}

// CreateBill creates a new bill.
func (c *Client) CreateBill(ctx context.Context, req *domain.CreateBillRequest) (*domain.BillDTO, error) {
	raw, err := c.do(ctx, http.MethodPost, "/bills", req)
	if err != nil {
		return nil, err
	}

	var bill domain.BillDTO
	if err := json.Unmarshal(raw, &bill); err != nil {
		return nil, fmt.Errorf("decoding bill: %w", err)
	}
	normalize(&bill)
	return &bill, nil
}

// UpdateBill applies a partial patch.
func (c *Client) UpdateBill(ctx context.Context, id string, patch *domain.UpdateBillRequest) (*domain.BillDTO, error) {
	raw, err := c.do(ctx, http.MethodPut, "/bills/"+id, patch)
	if err != nil {
		return nil, err
	}

	var bill domain.BillDTO
	if err := json.Unmarshal(raw, &bill); err != nil {
		return nil, fmt.Errorf("decoding bill: %w", err)
	}
	normalize(&bill)
	return &bill, nil
}

// DeleteBill removes a bill by id.
func (c *Client) DeleteBill(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/bills/"+id, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var errBody struct {
			Error  string              `json:"error"`
			Fields map[string][]string `json:"fields"`
		}
		if json.Unmarshal(raw, &errBody) == nil && errBody.Error != "" {
			apiErr.Message = errBody.Error
			apiErr.Fields = errBody.Fields
		}
		return nil, apiErr
	}

	return raw, nil
}

// normalize reduces tolerated wire variants to the canonical DTO shape.
func normalize(b *domain.BillDTO) {
	b.DueDate = utils.NormalizeDateString(b.DueDate)
	if b.PaidAt != nil {
		p := utils.NormalizeDateString(*b.PaidAt)
		b.PaidAt = &p
	}
	if b.Currency == "" {
		b.Currency = "PHP"
	}
	if b.Assignee == "" {
		b.Assignee = domain.AssigneeUnassigned
	}
}
