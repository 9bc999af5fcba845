/**
 * @description
 * This package provides a client for the payment-switch SDK (scheme adapter)
 * outbound API: initiating a transfer and continuing (accepting or rejecting)
 * a previously quoted one.
 *
 * Failures surface as *sdkclient.Error. The orchestration layer relies on
 * that type to decide whether a post-debit failure must be compensated, so
 * every non-2xx and transport-level failure of the continuation call is
 * wrapped in it.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - internal/domain: Shared connector models.
 */
package sdkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paystream/core-connector/internal/domain"
)

// Error is a failure raised by the switch-SDK integration.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("switch sdk error: status=%d message=%s", e.StatusCode, e.Message)
}

// Client is a client for the switch SDK outbound API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new switch-SDK client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type continuationRequest struct {
	AcceptQuote bool `json:"acceptQuote"`
}

// InitiateTransfer starts an outbound transfer on the switch and returns the
// quoted transfer.
func (c *Client) InitiateTransfer(ctx context.Context, transfer *domain.SwitchTransferRequest) (*domain.SwitchTransfer, error) {
	body, err := json.Marshal(transfer)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("transfer request failed: %v", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read transfer response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "transfer initiation rejected"}
	}

	var result domain.SwitchTransfer
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode transfer response: %v", err)}
	}
	return &result, nil
}

// ContinueTransfer accepts or rejects the quote of a previously initiated
// transfer.
func (c *Client) ContinueTransfer(ctx context.Context, transferID string, acceptQuote bool) (*domain.TransferContinuationResponse, error) {
	body, err := json.Marshal(continuationRequest{AcceptQuote: acceptQuote})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal continuation request: %w", err)
	}

	url := fmt.Sprintf("%s/transfers/%s", c.baseURL, transferID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create continuation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("continuation request failed: %v", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read continuation response: %v", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "transfer continuation rejected"}
	}

	var result domain.TransferContinuationResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to decode continuation response: %v", err)}
	}
	return &result, nil
}
