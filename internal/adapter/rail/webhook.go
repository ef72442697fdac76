package rail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iho/paycore/internal/domain"
)

// DefaultTimeout bounds one call to the rail.
const DefaultTimeout = 5 * time.Second

// settlementRequest is the body POSTed to the rail.
type settlementRequest struct {
	SettlementID  string `json:"settlement_id"`
	TransferID    string `json:"transfer_id"`
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Attempt       int    `json:"attempt"`
}

// WebhookExecutor POSTs each settlement to an external rail endpoint. Any
// non-2xx answer is a failed attempt.
type WebhookExecutor struct {
	url    string
	client *http.Client
}

// NewWebhookExecutor creates a WebhookExecutor. A nil client gets one with
// DefaultTimeout.
func NewWebhookExecutor(url string, client *http.Client) *WebhookExecutor {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &WebhookExecutor{url: url, client: client}
}

// Execute implements usecase.SettlementExecutor.
func (e *WebhookExecutor) Execute(ctx context.Context, s *domain.Settlement) error {
	body, err := json.Marshal(settlementRequest{
		SettlementID:  s.ID,
		TransferID:    s.TransferID,
		FromAccountID: s.FromAccountID,
		ToAccountID:   s.ToAccountID,
		Amount:        s.Amount.String(),
		Currency:      s.Currency,
		Attempt:       s.RetryCount + 1,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "paycore-settlement/1.0")
	// the rail deduplicates retries of the same settlement
	req.Header.Set("Idempotency-Key", s.ID)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("rail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("rail returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
}
