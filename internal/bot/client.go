// File: internal/bot/client.go
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/balancy/login-via-telegram/internal/domain/models"
)

// Outcome classifies a backend answer to an auth submission.
type Outcome int

const (
	// OutcomeSuccess means the backend accepted the token and linked the
	// account.
	OutcomeSuccess Outcome = iota
	// OutcomeInvalidToken means the backend rejected the token (unknown,
	// expired or already claimed).
	OutcomeInvalidToken
	// OutcomeUnexpected covers every other backend answer.
	OutcomeUnexpected
)

// Client submits auth requests to the backend. One attempt per
// submission; connection failures are returned as errors and never
// retried here.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a backend client.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// SubmitAuth relays the token and Telegram identity to the backend and
// classifies the response.
func (c *Client) SubmitAuth(ctx context.Context, req models.TelegramAuthRequest) (Outcome, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return OutcomeUnexpected, fmt.Errorf("failed to marshal auth request: %w", err)
	}

	url := c.baseURL + "/api/v1/auth/telegram-auth"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return OutcomeUnexpected, fmt.Errorf("failed to build auth request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return OutcomeUnexpected, fmt.Errorf("failed to reach backend: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return OutcomeSuccess, nil
	case http.StatusBadRequest:
		return OutcomeInvalidToken, nil
	default:
		c.logger.Warn("Unexpected backend status", zap.Int("status", resp.StatusCode))
		return OutcomeUnexpected, nil
	}
}
