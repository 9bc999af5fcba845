/**
 * @description
 * This package provides a client for the mobile-money provider API. It
 * encapsulates OAuth2 token acquisition, KYC/identity lookup, and B2C
 * disbursement ("send money") calls, handling request construction, bearer
 * authentication, and response parsing.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - internal/domain: Shared connector models.
 */
package momoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/paystream/core-connector/internal/domain"
)

// Provider API routes.
const (
	routeToken        = "/auth/oauth2/token"
	routeKyc          = "/standard/v1/users/"
	routeDisbursement = "/standard/v1/disbursements/"
)

// Error is a failure reported by the mobile-money provider. The orchestration
// layer treats it as a provider-specific error kind.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mobile-money provider error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

// Config holds the provider credentials and scheme headers.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	GrantType    string
	Country      string
	Currency     string
}

// Client is a client for the mobile-money provider API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	tokenCache TokenCache
	logger     *zap.Logger
}

// NewClient creates a new mobile-money client. cache may be nil, in which case
// a token is requested for every authenticated call.
func NewClient(cfg Config, cache TokenCache, logger *zap.Logger) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokenCache: cache,
		logger:     logger,
	}
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

type kycResponse struct {
	Data struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		IsBarred  bool   `json:"is_barred"`
		Grade     string `json:"grade"`
	} `json:"data"`
	Status struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Success bool   `json:"success"`
	} `json:"status"`
}

type disbursementResponse struct {
	Status struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Success bool   `json:"success"`
	} `json:"status"`
}

// GetToken requests a fresh OAuth2 access token using the configured
// client-credentials grant.
func (c *Client) GetToken(ctx context.Context) (string, time.Duration, error) {
	payload := tokenRequest{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		GrantType:    c.cfg.GrantType,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+routeToken, bytes.NewBuffer(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	c.setDefaultHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("token acquisition failed",
			zap.Int("status", resp.StatusCode),
		)
		return "", 0, &Error{StatusCode: resp.StatusCode, Message: "token acquisition failed"}
	}

	var tok tokenResponse
	if err := json.Unmarshal(bodyBytes, &tok); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	return tok.AccessToken, time.Duration(tok.ExpiresIn) * time.Second, nil
}

// bearerToken resolves an access token, consulting the cache first so a token
// is not re-minted on every authenticated call.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if c.tokenCache != nil {
		cached, err := c.tokenCache.Get(ctx)
		if err != nil {
			c.logger.Warn("token cache read failed; requesting fresh token", zap.Error(err))
		} else if cached != "" {
			return cached, nil
		}
	}

	token, ttl, err := c.GetToken(ctx)
	if err != nil {
		return "", err
	}
	if c.tokenCache != nil && ttl > time.Minute {
		// Expire the cached copy a minute early so a near-dead token is never served.
		if err := c.tokenCache.Set(ctx, token, ttl-time.Minute); err != nil {
			c.logger.Warn("token cache write failed", zap.Error(err))
		}
	}
	return token, nil
}

// GetKyc looks up the KYC/identity record for a subscriber MSISDN.
func (c *Client) GetKyc(ctx context.Context, msisdn string) (*domain.KycDetails, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+routeKyc+msisdn, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create kyc request: %w", err)
	}
	c.setDefaultHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute kyc request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read kyc response: %w", err)
	}

	var kyc kycResponse
	if err := json.Unmarshal(bodyBytes, &kyc); err != nil {
		return nil, fmt.Errorf("failed to decode kyc response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || kyc.Status.Code != "200" {
		c.logger.Warn("kyc lookup failed",
			zap.Int("status", resp.StatusCode),
			zap.String("provider_code", kyc.Status.Code),
		)
		return nil, &Error{StatusCode: resp.StatusCode, Code: kyc.Status.Code, Message: kyc.Status.Message}
	}

	statusCode, _ := strconv.Atoi(kyc.Status.Code)
	return &domain.KycDetails{
		FirstName:  kyc.Data.FirstName,
		LastName:   kyc.Data.LastName,
		IsBarred:   kyc.Data.IsBarred,
		StatusCode: statusCode,
		Raw:        string(bodyBytes),
	}, nil
}

// SendMoney executes a B2C disbursement to the payee wallet. The caller is
// responsible for invoking this exactly once per committed transfer; the
// client does not retry.
func (c *Client) SendMoney(ctx context.Context, disbursement *domain.DisbursementRequest) error {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return err
	}

	body, err := json.Marshal(disbursement)
	if err != nil {
		return fmt.Errorf("failed to marshal disbursement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+routeDisbursement, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create disbursement request: %w", err)
	}
	c.setDefaultHeaders(req)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute disbursement request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read disbursement response: %w", err)
	}

	var result disbursementResponse
	if err := json.Unmarshal(bodyBytes, &result); err != nil {
		return fmt.Errorf("failed to decode disbursement response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !result.Status.Success {
		c.logger.Warn("disbursement rejected by provider",
			zap.Int("status", resp.StatusCode),
			zap.String("provider_code", result.Status.Code),
			zap.String("reference", disbursement.Reference),
		)
		return &Error{StatusCode: resp.StatusCode, Code: result.Status.Code, Message: result.Status.Message}
	}
	return nil
}

func (c *Client) setDefaultHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Country", c.cfg.Country)
	req.Header.Set("X-Currency", c.cfg.Currency)
}
