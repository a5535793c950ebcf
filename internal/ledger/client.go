// Package ledger implements the HTTP client for the BillPrepared Ledger
// Service, the durable owner of transactions, recurring rules and settings.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RocketCaptain/BillPrepared/internal/common"
	"github.com/RocketCaptain/BillPrepared/internal/model"
	"github.com/RocketCaptain/BillPrepared/internal/service"
)

var _ service.Ledger = (*Client)(nil)

// Client talks to the Ledger Service over HTTP with JSON bodies.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryOpts  service.RetryOptions
}

// APIError is a non-2xx response from the Ledger Service.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger API error: %d - %s", e.StatusCode, e.Message)
}

// NewClient creates a Ledger Service client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: ledger URL is required", common.ErrMissingConfig)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Balance fetches the current balance.
func (c *Client) Balance(ctx context.Context) (float64, error) {
	var resp struct {
		Balance float64 `json:"balance"`
	}
	err := common.WithRetry(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, "/api/balance", nil, nil, &resp)
	}, c.retryOpts)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return resp.Balance, nil
}

// SetBalance updates the current balance.
func (c *Client) SetBalance(ctx context.Context, balance float64) error {
	if err := model.ValidateAmount(balance); err != nil {
		return err
	}
	body := map[string]float64{"balance": balance}
	if err := c.doJSON(ctx, http.MethodPut, "/api/balance", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

// Transactions fetches the transaction window between start and end. The
// forecast period is forwarded so the server materializes recurring
// occurrences out to the fetch horizon.
func (c *Client) Transactions(ctx context.Context, start, end model.Date, forecastPeriod int) ([]model.Transaction, error) {
	q := url.Values{}
	q.Set("start_date", start.String())
	q.Set("end_date", end.String())
	q.Set("forecast_period", fmt.Sprintf("%d", forecastPeriod))

	slog.Debug("Requesting transaction window",
		"start_date", start,
		"end_date", end,
		"forecast_period", forecastPeriod)

	var transactions []model.Transaction
	err := common.WithRetry(ctx, func() error {
		transactions = nil
		return c.doJSON(ctx, http.MethodGet, "/api/transactions", q, nil, &transactions)
	}, c.retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return transactions, nil
}

// CreateTransaction creates a single transaction and returns it with the
// server-assigned id.
func (c *Client) CreateTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return model.Transaction{}, err
	}

	body := map[string]any{
		"description": tx.Description,
		"amount":      tx.Amount,
		"date":        tx.Date.String(),
	}
	if tx.Label != "" {
		body["label"] = tx.Label
	}
	if tx.IsConfirmed {
		body["is_confirmed"] = true
	}

	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/transactions", nil, body, &resp); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	tx.ID = resp.ID
	return tx, nil
}

// UpdateTransaction edits a transaction. With edit_type "future" the server
// propagates the change to the rule's forward-generated occurrences.
func (c *Client) UpdateTransaction(ctx context.Context, tx model.Transaction, editType model.EditType) error {
	if err := tx.Validate(); err != nil {
		return err
	}

	body := map[string]any{
		"description": tx.Description,
		"amount":      tx.Amount,
		"date":        tx.Date.String(),
		"label":       tx.Label,
		"edit_type":   string(editType),
	}
	path := fmt.Sprintf("/api/transactions/%d", tx.ID)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to update transaction %d: %w", tx.ID, err)
	}
	return nil
}

// ConfirmTransaction marks a transaction confirmed via the optimized
// no-body endpoint.
func (c *Client) ConfirmTransaction(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/transactions/%d/confirm", id)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to confirm transaction %d: %w", id, err)
	}
	return nil
}

// UnconfirmTransaction reverts a confirmation.
func (c *Client) UnconfirmTransaction(ctx context.Context, id int64) error {
	body := map[string]any{"is_confirmed": false}
	path := fmt.Sprintf("/api/transactions/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return fmt.Errorf("failed to unconfirm transaction %d: %w", id, err)
	}
	return nil
}

// DeleteTransaction deletes one occurrence or, with delete_type "future",
// the occurrence and everything the rule generated after it.
func (c *Client) DeleteTransaction(ctx context.Context, id int64, deleteType model.DeleteType) error {
	q := url.Values{}
	q.Set("delete_type", string(deleteType))
	path := fmt.Sprintf("/api/transactions/%d", id)
	if err := c.doJSON(ctx, http.MethodDelete, path, q, nil, nil); err != nil {
		return fmt.Errorf("failed to delete transaction %d: %w", id, err)
	}
	return nil
}

// CreateRecurring creates a recurring rule; the server materializes forward
// occurrences before responding.
func (c *Client) CreateRecurring(ctx context.Context, rule model.RecurringRule) (int64, error) {
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/recurring", nil, rule, &resp); err != nil {
		return 0, fmt.Errorf("failed to create recurring rule: %w", err)
	}
	return resp.ID, nil
}

// UpdateRecurring updates a recurring rule and regenerates its future
// occurrences.
func (c *Client) UpdateRecurring(ctx context.Context, id int64, rule model.RecurringRule) error {
	path := fmt.Sprintf("/api/recurring/%d", id)
	if err := c.doJSON(ctx, http.MethodPut, path, nil, rule, nil); err != nil {
		return fmt.Errorf("failed to update recurring rule %d: %w", id, err)
	}
	return nil
}

// DeleteRecurring deletes a recurring rule and all its occurrences.
func (c *Client) DeleteRecurring(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/recurring/%d", id)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete recurring rule %d: %w", id, err)
	}
	return nil
}

// DetectRecurring uploads a CSV for recurring-pattern detection. Never
// retried: re-upload produces duplicate candidates.
func (c *Client) DetectRecurring(ctx context.Context, filename string, file io.Reader) ([]model.RecurringCandidate, error) {
	var resp struct {
		RecurringCandidates []model.RecurringCandidate `json:"recurring_candidates"`
	}
	if err := c.uploadCSV(ctx, "/api/import/csv/recurring", filename, file, &resp); err != nil {
		return nil, fmt.Errorf("failed to detect recurring patterns: %w", err)
	}
	return resp.RecurringCandidates, nil
}

// MatchTransactions uploads a CSV for auto-confirm matching. Never retried:
// re-upload may confirm or flag rows twice.
func (c *Client) MatchTransactions(ctx context.Context, filename string, file io.Reader) (model.ImportResult, error) {
	var resp model.ImportResult
	if err := c.uploadCSV(ctx, "/api/import/csv/confirm", filename, file, &resp); err != nil {
		return model.ImportResult{}, fmt.Errorf("failed to match transactions: %w", err)
	}
	return resp, nil
}

// ConfirmUpdate applies a user decision for a potential update. Issued
// exactly once per resolution; the caller owns retries.
func (c *Client) ConfirmUpdate(ctx context.Context, decision model.UpdateDecision) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/import/confirm_update", nil, decision, nil); err != nil {
		return fmt.Errorf("failed to apply update decision for transaction %d: %w", decision.TransactionID, err)
	}
	return nil
}

// Settings fetches the server-owned application settings.
func (c *Client) Settings(ctx context.Context) (model.Settings, error) {
	var settings model.Settings
	err := common.WithRetry(ctx, func() error {
		return c.doJSON(ctx, http.MethodGet, "/api/settings", nil, nil, &settings)
	}, c.retryOpts)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings writes settings after client-side validation.
func (c *Client) UpdateSettings(ctx context.Context, settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/settings", nil, settings, nil); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// doJSON issues a request with an optional JSON body and decodes the
// response into out when non-nil. Non-2xx responses become APIError,
// wrapped retryable for 5xx and terminal for 4xx.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

// uploadCSV posts a multipart file to an import endpoint.
func (c *Client) uploadCSV(ctx context.Context, path, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read CSV file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: %v", common.ErrLedgerConnection, err),
			Retryable: true,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw),
		}
		return &common.RetryableError{
			Err:       apiErr,
			Retryable: resp.StatusCode >= 500,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage extracts the server's error field, falling back to the raw
// body.
func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
