package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paystream/core-connector/internal/app"
	"github.com/paystream/core-connector/internal/domain"
)

type fakeMomo struct {
	kyc    *domain.KycDetails
	kycErr error
}

func (f *fakeMomo) GetKyc(context.Context, string) (*domain.KycDetails, error) {
	if f.kycErr != nil {
		return nil, f.kycErr
	}
	return f.kyc, nil
}

func (f *fakeMomo) SendMoney(context.Context, *domain.DisbursementRequest) error { return nil }

type fakeCoreBank struct {
	account *domain.Account
}

func (f *fakeCoreBank) GetSavingsAccount(context.Context, string) (*domain.Account, error) {
	return f.account, nil
}

func (f *fakeCoreBank) CalculateWithdrawQuote(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	return amount, nil
}

func (f *fakeCoreBank) Withdraw(context.Context, *domain.LedgerTransaction) (int, error) {
	return http.StatusOK, nil
}

func (f *fakeCoreBank) Deposit(context.Context, *domain.LedgerTransaction) (int, error) {
	return http.StatusOK, nil
}

type fakeSDK struct {
	transfer *domain.SwitchTransfer
}

func (f *fakeSDK) InitiateTransfer(context.Context, *domain.SwitchTransferRequest) (*domain.SwitchTransfer, error) {
	return f.transfer, nil
}

func (f *fakeSDK) ContinueTransfer(_ context.Context, transferID string, _ bool) (*domain.TransferContinuationResponse, error) {
	return &domain.TransferContinuationResponse{TransferID: transferID, CurrentState: "COMPLETED"}, nil
}

func testRouter(momo *fakeMomo, bank *fakeCoreBank, sdk *fakeSDK, auth AuthConfig) http.Handler {
	service := app.NewService(app.Settings{
		SupportedIDType: "MSISDN",
		Currency:        "ZMW",
		ServiceCharge:   decimal.RequireFromString("5"),
		QuoteExpiry:     time.Hour,
	}, momo, bank, sdk, nil, nil, zap.NewNop())
	return ConnectorRoutes(NewConnectorHandlers(service, zap.NewNop()), auth)
}

func TestGetPartiesEndpoint(t *testing.T) {
	router := testRouter(&fakeMomo{kyc: &domain.KycDetails{FirstName: "A", LastName: "B"}}, &fakeCoreBank{}, &fakeSDK{}, AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/parties/MSISDN/260971234567", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var party domain.Party
	if err := json.NewDecoder(rec.Body).Decode(&party); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if party.DisplayName != "A B" {
		t.Fatalf("expected display name, got %q", party.DisplayName)
	}
}

func TestGetPartiesUnsupportedIDTypeIs400(t *testing.T) {
	router := testRouter(&fakeMomo{}, &fakeCoreBank{}, &fakeSDK{}, AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/parties/IBAN/260971234567", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQuoteRequestBarredDestinationIs403(t *testing.T) {
	router := testRouter(&fakeMomo{kyc: &domain.KycDetails{IsBarred: true}}, &fakeCoreBank{}, &fakeSDK{}, AuthConfig{})

	body := `{"quoteId":"q-1","transactionId":"tx-1","to":{"idType":"MSISDN","idValue":"260971234567"},"amount":"100","currency":"ZMW"}`
	req := httptest.NewRequest(http.MethodPost, "/quoterequests", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestQuoteRequestMalformedBodyIs400(t *testing.T) {
	router := testRouter(&fakeMomo{}, &fakeCoreBank{}, &fakeSDK{}, AuthConfig{})

	req := httptest.NewRequest(http.MethodPost, "/quoterequests", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendTransferInsufficientBalanceIs422(t *testing.T) {
	bank := &fakeCoreBank{account: &domain.Account{
		ID:               "7",
		Active:           true,
		AvailableBalance: decimal.RequireFromString("50"),
	}}
	sdk := &fakeSDK{transfer: &domain.SwitchTransfer{
		TransferID: "sw-1",
		Amount:     "100",
		QuoteResponse: &domain.SwitchQuote{
			PayeeFspFee:        &domain.Money{Amount: "2"},
			PayeeFspCommission: &domain.Money{Amount: "0"},
		},
	}}
	router := testRouter(&fakeMomo{}, bank, sdk, AuthConfig{})

	body := `{"from":{"accountId":"7","payer":{"idType":"MSISDN","idValue":"260971234567"}},"to":{"idType":"MSISDN","idValue":"260977654321"},"amountType":"SEND","currency":"ZMW","amount":"100"}`
	req := httptest.NewRequest(http.MethodPost, "/transfers/outbound", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateSentTransferUsesPathTransferID(t *testing.T) {
	bank := &fakeCoreBank{account: &domain.Account{
		ID:        "7",
		AccountNo: "000123456",
		Active:    true,
	}}
	router := testRouter(&fakeMomo{}, bank, &fakeSDK{}, AuthConfig{})

	body := `{"transferId":"spoofed","acceptQuote":true,"ledgerTransaction":{"accountId":"7","totalAmount":"103"}}`
	req := httptest.NewRequest(http.MethodPut, "/transfers/outbound/sw-1", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res domain.TransferContinuationResponse
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if res.TransferID != "sw-1" {
		t.Fatalf("expected path transfer id sw-1, got %q", res.TransferID)
	}
}

func TestOutboundEndpointsRequireAuthWhenConfigured(t *testing.T) {
	auth := AuthConfig{APIKey: "secret"}
	router := testRouter(&fakeMomo{}, &fakeCoreBank{}, &fakeSDK{}, auth)

	req := httptest.NewRequest(http.MethodPost, "/transfers/outbound", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/transfers/outbound", strings.NewReader("{}"))
	req.Header.Set("X-Internal-Api-Key", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", rec.Code)
	}
}

func TestSwitchFacingEndpointsSkipAuth(t *testing.T) {
	auth := AuthConfig{APIKey: "secret"}
	router := testRouter(&fakeMomo{kyc: &domain.KycDetails{FirstName: "A"}}, &fakeCoreBank{}, &fakeSDK{}, auth)

	req := httptest.NewRequest(http.MethodGet, "/parties/MSISDN/260971234567", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected switch-facing endpoint open, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(&fakeMomo{}, &fakeCoreBank{}, &fakeSDK{}, AuthConfig{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddlewareAcceptsCorrectAPIKey(t *testing.T) {
	var calledWith string
	handler := AuthMiddleware(AuthConfig{APIKey: "secret"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calledWith, _ = GetCallerID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/transfers/outbound", nil)
	req.Header.Set("X-Internal-Api-Key", "secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if calledWith != "internal" {
		t.Fatalf("expected internal caller id, got %q", calledWith)
	}
}
