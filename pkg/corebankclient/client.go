/**
 * @description
 * This package provides a client for the core-banking ledger API. It covers
 * the four operations the connector needs: savings-account lookup,
 * withdrawal-fee quoting, debit (withdrawal) and credit (deposit/refund).
 *
 * Debit and credit return the upstream HTTP status code rather than folding
 * non-success into an error: the orchestration layer owns the decision of
 * what a non-200 means at each step of the continuation sequence.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - github.com/shopspring/decimal: Decimal-exact fee amounts.
 * - internal/domain: Shared connector models.
 */
package corebankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/paystream/core-connector/internal/domain"
)

// Error is a failure reported by the core-banking API.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("core-banking error: status=%d message=%s", e.StatusCode, e.Message)
}

// Config holds the core-banking endpoint and credentials.
type Config struct {
	BaseURL  string
	TenantID string
	Username string
	Password string
}

// Client is a client for the core-banking ledger API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new core-banking client.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type savingsAccountResponse struct {
	ID        json.Number `json:"id"`
	AccountNo string      `json:"accountNo"`
	Status    struct {
		Active bool `json:"active"`
	} `json:"status"`
	SubStatus struct {
		BlockCredit bool `json:"blockCredit"`
		BlockDebit  bool `json:"blockDebit"`
	} `json:"subStatus"`
	Summary struct {
		AvailableBalance decimal.Decimal `json:"availableBalance"`
	} `json:"summary"`
}

type withdrawQuoteRequest struct {
	Amount string `json:"amount"`
}

type withdrawQuoteResponse struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// GetSavingsAccount fetches a savings account by id.
func (c *Client) GetSavingsAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	url := fmt.Sprintf("%s/v1/savingsaccounts/%s", c.cfg.BaseURL, accountID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create savings account request: %w", err)
	}
	c.setDefaultHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute savings account request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read savings account response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "savings account lookup failed"}
	}

	var account savingsAccountResponse
	if err := json.Unmarshal(bodyBytes, &account); err != nil {
		return nil, fmt.Errorf("failed to decode savings account response: %w", err)
	}

	return &domain.Account{
		ID:               account.ID.String(),
		AccountNo:        account.AccountNo,
		Active:           account.Status.Active,
		BlockCredit:      account.SubStatus.BlockCredit,
		BlockDebit:       account.SubStatus.BlockDebit,
		AvailableBalance: account.Summary.AvailableBalance,
	}, nil
}

// CalculateWithdrawQuote asks the ledger for the fee-inclusive total of
// withdrawing the given amount.
func (c *Client) CalculateWithdrawQuote(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	payload := withdrawQuoteRequest{Amount: amount.String()}
	body, err := json.Marshal(payload)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to marshal withdraw quote request: %w", err)
	}

	url := c.cfg.BaseURL + "/v1/savingsaccounts/withdraw-quote"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create withdraw quote request: %w", err)
	}
	c.setDefaultHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to execute withdraw quote request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read withdraw quote response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &Error{StatusCode: resp.StatusCode, Message: "withdraw quote failed"}
	}

	var quote withdrawQuoteResponse
	if err := json.Unmarshal(bodyBytes, &quote); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode withdraw quote response: %w", err)
	}
	return quote.TotalAmount, nil
}

// Withdraw debits the account described by the ledger transaction and returns
// the upstream status code.
func (c *Client) Withdraw(ctx context.Context, txn *domain.LedgerTransaction) (int, error) {
	return c.postTransaction(ctx, txn, "withdrawal")
}

// Deposit credits the account described by the ledger transaction and returns
// the upstream status code. The connector uses it both for inbound credits
// and for compensating refunds.
func (c *Client) Deposit(ctx context.Context, txn *domain.LedgerTransaction) (int, error) {
	return c.postTransaction(ctx, txn, "deposit")
}

func (c *Client) postTransaction(ctx context.Context, txn *domain.LedgerTransaction, command string) (int, error) {
	body, err := json.Marshal(txn.Transaction)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal %s request: %w", command, err)
	}

	url := fmt.Sprintf("%s/v1/savingsaccounts/%s/transactions?command=%s", c.cfg.BaseURL, txn.AccountID, command)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create %s request: %w", command, err)
	}
	c.setDefaultHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute %s request: %w", command, err)
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused; the caller only needs
	// the status code.
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (c *Client) setDefaultHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Fineract-Platform-TenantId", c.cfg.TenantID)
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
}
