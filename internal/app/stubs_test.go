package app

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paystream/core-connector/internal/domain"
	"github.com/paystream/core-connector/pkg/rabbitmq"
)

type stubMomo struct {
	kyc     *domain.KycDetails
	kycErr  error
	sendErr error

	kycCalls  []string
	sendCalls []*domain.DisbursementRequest
}

func (s *stubMomo) GetKyc(_ context.Context, msisdn string) (*domain.KycDetails, error) {
	s.kycCalls = append(s.kycCalls, msisdn)
	if s.kycErr != nil {
		return nil, s.kycErr
	}
	return s.kyc, nil
}

func (s *stubMomo) SendMoney(_ context.Context, disbursement *domain.DisbursementRequest) error {
	s.sendCalls = append(s.sendCalls, disbursement)
	return s.sendErr
}

type stubCoreBank struct {
	account    *domain.Account
	accountErr error

	withdrawQuote    decimal.Decimal
	withdrawQuoteErr error

	withdrawStatus int
	withdrawErr    error
	depositStatus  int
	depositErr     error

	withdrawCalls []*domain.LedgerTransaction
	depositCalls  []*domain.LedgerTransaction
}

func (s *stubCoreBank) GetSavingsAccount(_ context.Context, _ string) (*domain.Account, error) {
	if s.accountErr != nil {
		return nil, s.accountErr
	}
	return s.account, nil
}

func (s *stubCoreBank) CalculateWithdrawQuote(_ context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	if s.withdrawQuoteErr != nil {
		return decimal.Zero, s.withdrawQuoteErr
	}
	if !s.withdrawQuote.IsZero() {
		return s.withdrawQuote, nil
	}
	return amount, nil
}

func (s *stubCoreBank) Withdraw(_ context.Context, txn *domain.LedgerTransaction) (int, error) {
	s.withdrawCalls = append(s.withdrawCalls, txn)
	if s.withdrawErr != nil {
		return 0, s.withdrawErr
	}
	if s.withdrawStatus == 0 {
		return http.StatusOK, nil
	}
	return s.withdrawStatus, nil
}

func (s *stubCoreBank) Deposit(_ context.Context, txn *domain.LedgerTransaction) (int, error) {
	s.depositCalls = append(s.depositCalls, txn)
	if s.depositErr != nil {
		return 0, s.depositErr
	}
	if s.depositStatus == 0 {
		return http.StatusOK, nil
	}
	return s.depositStatus, nil
}

type stubSDK struct {
	transfer    *domain.SwitchTransfer
	initiateErr error

	continuation *domain.TransferContinuationResponse
	continueErr  error

	initiateCalls []*domain.SwitchTransferRequest
	continueCalls []bool
}

func (s *stubSDK) InitiateTransfer(_ context.Context, transfer *domain.SwitchTransferRequest) (*domain.SwitchTransfer, error) {
	s.initiateCalls = append(s.initiateCalls, transfer)
	if s.initiateErr != nil {
		return nil, s.initiateErr
	}
	return s.transfer, nil
}

func (s *stubSDK) ContinueTransfer(_ context.Context, _ string, acceptQuote bool) (*domain.TransferContinuationResponse, error) {
	s.continueCalls = append(s.continueCalls, acceptQuote)
	if s.continueErr != nil {
		return nil, s.continueErr
	}
	return s.continuation, nil
}

type stubAlerts struct {
	alerts     []rabbitmq.RefundAlert
	publishErr error
}

func (s *stubAlerts) Publish(_ context.Context, _, _ string, _ interface{}) error {
	return s.publishErr
}

func (s *stubAlerts) PublishRefundAlert(_ context.Context, _ string, alert rabbitmq.RefundAlert) error {
	s.alerts = append(s.alerts, alert)
	return s.publishErr
}

func (s *stubAlerts) Close() {}

// rejectAllQuotes fails every quote check. Used to exercise the policy hook.
type rejectAllQuotes struct{}

func (rejectAllQuotes) ValidateQuote(*domain.TransferRequest) bool { return false }

func (rejectAllQuotes) ValidatePatchQuote(*domain.TransferPatchNotification) bool { return false }

func testSettings() Settings {
	return Settings{
		SupportedIDType: "MSISDN",
		Currency:        "ZMW",
		ServiceCharge:   decimal.RequireFromString("5"),
		QuoteExpiry:     time.Hour,
		DisbursementPIN: "1234",
		Locale:          "en",
		DateFormat:      "dd MM yy",
		PaymentTypeID:   "1",
		BankCountryCode: "ZM",
		CheckDigits:     "68",
		BankID:          "0060",
		AccountPrefix:   "00",
		AlertExchange:   "core_connector.alerts",
	}
}

func newTestService(momo *stubMomo, bank *stubCoreBank, sdk *stubSDK, alerts rabbitmq.Publisher) *Service {
	svc := NewService(testSettings(), momo, bank, sdk, nil, alerts, zap.NewNop())
	svc.now = func() time.Time {
		return time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)
	}
	return svc
}
