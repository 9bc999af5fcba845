/**
 * @description
 * This file contains the core orchestration logic for the connector. The
 * `Service` struct mediates money-transfer operations between the payment
 * switch, the core-banking ledger, and the mobile-money provider.
 *
 * Key features:
 * - Implements the six connector use-cases: party lookup, quote generation,
 *   transfer receipt, transfer commitment, outbound initiation, and outbound
 *   continuation.
 * - Owns all cross-system validation and decimal-exact fee/balance
 *   arithmetic.
 * - Owns the compensation sequence for outbound continuation: a debit that
 *   is followed by a failed switch continuation is refunded with the exact
 *   ledger transaction that funded it.
 *
 * The service is stateless between calls; concurrent invocations are safe
 * without locking.
 *
 * @dependencies
 * - context, errors, fmt, net/http, strings, time: Standard Go libraries.
 * - github.com/google/uuid: Generated transaction references.
 * - github.com/shopspring/decimal: Decimal-exact money arithmetic.
 * - go.uber.org/zap: Structured logging.
 * - internal/domain, internal/metrics: Models and instrumentation.
 * - pkg/rabbitmq, pkg/sdkclient: Alert publishing and SDK error classification.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/paystream/core-connector/internal/domain"
	"github.com/paystream/core-connector/internal/metrics"
	"github.com/paystream/core-connector/pkg/rabbitmq"
	"github.com/paystream/core-connector/pkg/sdkclient"
)

const (
	opGetParties         = "get_parties"
	opQuoteRequest       = "quote_request"
	opReceiveTransfer    = "receive_transfer"
	opUpdateTransfer     = "update_transfer"
	opSendTransfer       = "send_transfer"
	opUpdateSentTransfer = "update_sent_transfer"
)

const (
	walletTypeNormal    = "NORMAL"
	disbursementTypeB2C = "B2C"
	commissionAmount    = "0"
)

// Settings are the deployment-scoped parameters of the orchestration layer.
type Settings struct {
	SupportedIDType string
	Currency        string
	ServiceCharge   decimal.Decimal
	QuoteExpiry     time.Duration
	DisbursementPIN string

	Locale        string
	DateFormat    string
	PaymentTypeID string

	BankCountryCode string
	CheckDigits     string
	BankID          string
	AccountPrefix   string

	AlertExchange string
}

// Service orchestrates transfer operations across the injected clients.
type Service struct {
	settings    Settings
	momo        MobileMoneyClient
	coreBanking CoreBankingClient
	sdk         SwitchSDKClient
	policy      QuotePolicy
	alerts      rabbitmq.Publisher
	logger      *zap.Logger

	now func() time.Time
}

// NewService creates a new orchestration service. policy may be nil, in which
// case every quote is accepted; alerts may be nil, in which case refund
// failures are only logged.
func NewService(
	settings Settings,
	momo MobileMoneyClient,
	coreBanking CoreBankingClient,
	sdk SwitchSDKClient,
	policy QuotePolicy,
	alerts rabbitmq.Publisher,
	logger *zap.Logger,
) *Service {
	if policy == nil {
		policy = AcceptAllQuotes{}
	}
	return &Service{
		settings:    settings,
		momo:        momo,
		coreBanking: coreBanking,
		sdk:         sdk,
		policy:      policy,
		alerts:      alerts,
		logger:      logger,
		now:         time.Now,
	}
}

// GetParties resolves the identity behind a scheme identifier via the
// mobile-money provider's KYC lookup.
func (s *Service) GetParties(ctx context.Context, id, idType string) (*domain.Party, error) {
	if idType != s.settings.SupportedIDType {
		metrics.ObserveOperation(opGetParties, metrics.OutcomeRejected)
		return nil, domain.ErrUnsupportedIDType
	}

	kyc, err := s.momo.GetKyc(ctx, id)
	if err != nil {
		metrics.ObserveOperation(opGetParties, metrics.OutcomeError)
		return nil, fmt.Errorf("kyc lookup for %s failed: %w", id, err)
	}

	party := &domain.Party{
		DisplayName: strings.TrimSpace(kyc.FirstName + " " + kyc.LastName),
		FirstName:   kyc.FirstName,
		// The provider exposes no middle name; the lookup response mirrors
		// the first name there.
		MiddleName:     kyc.FirstName,
		LastName:       kyc.LastName,
		IDType:         s.settings.SupportedIDType,
		IDValue:        id,
		Type:           domain.PartyTypeConsumer,
		KYCInformation: kyc.Raw,
		StatusCode:     kyc.StatusCode,
	}
	s.logger.Info("party resolved",
		zap.String("id_value", id),
		zap.String("display_name", party.DisplayName),
	)
	metrics.ObserveOperation(opGetParties, metrics.OutcomeOK)
	return party, nil
}

// QuoteRequest prices a prospective inbound transfer. The fee is the flat
// configured service charge; commission is always zero in this version.
func (s *Service) QuoteRequest(ctx context.Context, req *domain.QuoteRequest) (*domain.QuoteResponse, error) {
	if req.To.IDType != s.settings.SupportedIDType {
		metrics.ObserveOperation(opQuoteRequest, metrics.OutcomeRejected)
		return nil, domain.ErrUnsupportedIDType
	}
	if req.Currency != s.settings.Currency {
		metrics.ObserveOperation(opQuoteRequest, metrics.OutcomeRejected)
		return nil, domain.ErrUnsupportedCurrency
	}
	if err := s.checkAccountBarred(ctx, req.To.IDValue); err != nil {
		metrics.ObserveOperation(opQuoteRequest, metrics.OutcomeRejected)
		return nil, err
	}

	expiration := s.now().Add(s.settings.QuoteExpiry).UTC().Format(time.RFC3339)

	metrics.ObserveOperation(opQuoteRequest, metrics.OutcomeOK)
	return &domain.QuoteResponse{
		QuoteID:                          req.QuoteID,
		TransactionID:                    req.TransactionID,
		Expiration:                       expiration,
		TransferAmount:                   req.Amount,
		TransferAmountCurrency:           req.Currency,
		PayeeReceiveAmount:               req.Amount,
		PayeeReceiveAmountCurrency:       req.Currency,
		PayeeFspFeeAmount:                s.settings.ServiceCharge.String(),
		PayeeFspFeeAmountCurrency:        req.Currency,
		PayeeFspCommissionAmount:         commissionAmount,
		PayeeFspCommissionAmountCurrency: req.Currency,
	}, nil
}

// checkAccountBarred rejects destinations the provider has flagged. Shared
// by quote generation and transfer receipt; pure validation, no mutation.
func (s *Service) checkAccountBarred(ctx context.Context, msisdn string) error {
	kyc, err := s.momo.GetKyc(ctx, msisdn)
	if err != nil {
		return fmt.Errorf("barred-status lookup for %s failed: %w", msisdn, err)
	}
	if kyc.IsBarred {
		s.logger.Warn("destination account is barred", zap.String("id_value", msisdn))
		return domain.ErrAccountBarred
	}
	return nil
}

// ReceiveTransfer acknowledges an inbound transfer notification. No money
// moves here; the commitment happens on the patch notification.
func (s *Service) ReceiveTransfer(ctx context.Context, req *domain.TransferRequest) (*domain.TransferResponse, error) {
	if req.To.IDType != s.settings.SupportedIDType {
		metrics.ObserveOperation(opReceiveTransfer, metrics.OutcomeRejected)
		return nil, domain.ErrUnsupportedIDType
	}
	if req.Currency != s.settings.Currency {
		metrics.ObserveOperation(opReceiveTransfer, metrics.OutcomeRejected)
		return nil, domain.ErrUnsupportedCurrency
	}
	if !s.policy.ValidateQuote(req) {
		metrics.ObserveOperation(opReceiveTransfer, metrics.OutcomeRejected)
		return nil, domain.ErrInvalidQuote
	}
	if err := s.checkAccountBarred(ctx, req.To.IDValue); err != nil {
		metrics.ObserveOperation(opReceiveTransfer, metrics.OutcomeRejected)
		return nil, err
	}

	metrics.ObserveOperation(opReceiveTransfer, metrics.OutcomeOK)
	return &domain.TransferResponse{
		HomeTransactionID:  req.TransferID,
		TransferState:      domain.TransferStateReceived,
		CompletedTimestamp: s.now().UTC().Format(time.RFC3339),
	}, nil
}

// UpdateTransfer commits a previously received transfer by disbursing to the
// payee wallet. The disbursement is attempted exactly once; a failure here
// propagates as-is with no compensation.
func (s *Service) UpdateTransfer(ctx context.Context, notification *domain.TransferPatchNotification, transferID string) error {
	if notification.CurrentState != domain.TransferStateCompleted {
		metrics.ObserveOperation(opUpdateTransfer, metrics.OutcomeRejected)
		return domain.ErrTransferNotCompleted
	}
	if !s.policy.ValidatePatchQuote(notification) {
		metrics.ObserveOperation(opUpdateTransfer, metrics.OutcomeRejected)
		return domain.ErrInvalidQuote
	}

	disbursement, err := s.buildDisbursement(notification)
	if err != nil {
		metrics.ObserveOperation(opUpdateTransfer, metrics.OutcomeRejected)
		return err
	}

	if err := s.momo.SendMoney(ctx, disbursement); err != nil {
		metrics.ObserveOperation(opUpdateTransfer, metrics.OutcomeError)
		return fmt.Errorf("disbursement for transfer %s failed: %w", transferID, err)
	}

	s.logger.Info("transfer committed",
		zap.String("transfer_id", transferID),
		zap.String("reference", disbursement.Reference),
		zap.String("amount", disbursement.Transaction.Amount),
	)
	metrics.ObserveOperation(opUpdateTransfer, metrics.OutcomeOK)
	return nil
}

// buildDisbursement rebuilds the payout instruction from the quote payload
// attached to the patch notification.
func (s *Service) buildDisbursement(notification *domain.TransferPatchNotification) (*domain.DisbursementRequest, error) {
	quote := notification.QuoteRequest
	if quote == nil {
		return nil, domain.ErrQuoteNotDefined
	}

	disbursement := &domain.DisbursementRequest{
		Reference: quote.TransactionID,
		PIN:       s.settings.DisbursementPIN,
	}
	disbursement.Payee.MSISDN = quote.Payee.PartyIDInfo.PartyIdentifier
	disbursement.Payee.WalletType = walletTypeNormal
	disbursement.Transaction.Amount = quote.Amount
	disbursement.Transaction.ID = quote.TransactionID
	disbursement.Transaction.Type = disbursementTypeB2C
	return disbursement, nil
}

// SendTransfer initiates an outbound transfer: it verifies the funding
// account, obtains a quote from the switch, and checks that the balance
// covers the fee-inclusive total. The account is NOT debited here; the debit
// happens in UpdateSentTransfer.
func (s *Service) SendTransfer(ctx context.Context, req *domain.OutboundTransferRequest) (*domain.OutboundTransferResponse, error) {
	accountID := req.From.AccountID
	if accountID == "" && req.From.IBAN != "" {
		derived, err := s.ExtractAccountFromIBAN(req.From.IBAN)
		if err != nil {
			metrics.ObserveOperation(opSendTransfer, metrics.OutcomeRejected)
			return nil, err
		}
		accountID = derived
	}

	account, err := s.activeSavingsAccount(ctx, accountID)
	if err != nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeRejected)
		return nil, err
	}
	if account.BlockCredit || account.BlockDebit {
		s.logger.Warn("account blocked from credit or debit",
			zap.String("account_id", accountID),
			zap.Bool("block_credit", account.BlockCredit),
			zap.Bool("block_debit", account.BlockDebit),
		)
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeRejected)
		return nil, domain.ErrAccountBlocked
	}

	if req.HomeTransactionID == "" {
		req.HomeTransactionID = uuid.NewString()
	}

	transfer, err := s.sdk.InitiateTransfer(ctx, buildSwitchTransferRequest(req))
	if err != nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeError)
		return nil, fmt.Errorf("switch transfer initiation failed: %w", err)
	}
	quote := transfer.QuoteResponse
	if quote == nil || quote.PayeeFspFee == nil || quote.PayeeFspCommission == nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeError)
		return nil, domain.ErrNoQuoteReturned
	}

	amount, err := decimal.NewFromString(transfer.Amount)
	if err != nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeError)
		return nil, fmt.Errorf("invalid transfer amount %q from switch: %w", transfer.Amount, err)
	}
	fee, err := decimal.NewFromString(quote.PayeeFspFee.Amount)
	if err != nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeError)
		return nil, fmt.Errorf("invalid payee fee %q from switch: %w", quote.PayeeFspFee.Amount, err)
	}
	commission, err := decimal.NewFromString(quote.PayeeFspCommission.Amount)
	if err != nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeError)
		return nil, fmt.Errorf("invalid payee commission %q from switch: %w", quote.PayeeFspCommission.Amount, err)
	}
	total := amount.Add(fee).Add(commission)

	totalDebit, err := s.coreBanking.CalculateWithdrawQuote(ctx, total)
	if err != nil {
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeError)
		return nil, fmt.Errorf("withdraw quote for %s failed: %w", total.String(), err)
	}
	if !account.AvailableBalance.GreaterThan(totalDebit) {
		s.logger.Warn("insufficient balance for outbound transfer",
			zap.String("account_id", accountID),
			zap.String("available_balance", account.AvailableBalance.String()),
			zap.String("total_debit", totalDebit.String()),
		)
		metrics.ObserveOperation(opSendTransfer, metrics.OutcomeRejected)
		return nil, domain.ErrInsufficientBalance
	}

	metrics.ObserveOperation(opSendTransfer, metrics.OutcomeOK)
	return &domain.OutboundTransferResponse{
		TotalDebitAmount: totalDebit,
		TransferResponse: transfer,
	}, nil
}

// UpdateSentTransfer continues a quoted outbound transfer: debit the funding
// account, then accept the quote on the switch. A switch failure after a
// successful debit triggers exactly one compensating refund.
func (s *Service) UpdateSentTransfer(ctx context.Context, accept *domain.TransferAccept) (*domain.TransferContinuationResponse, error) {
	s.logger.Info("continuing outbound transfer",
		zap.String("transfer_id", accept.TransferID),
		zap.String("account_id", accept.LedgerTransaction.AccountID),
		zap.Bool("accept_quote", accept.AcceptQuote),
	)

	if !accept.AcceptQuote {
		// Rejecting the quote never moves money; pass the rejection through.
		res, err := s.sdk.ContinueTransfer(ctx, accept.TransferID, false)
		if err != nil {
			metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeError)
			return nil, fmt.Errorf("switch quote rejection failed: %w", err)
		}
		metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeOK)
		return res, nil
	}

	txn, err := s.buildLedgerTransaction(ctx, accept)
	if err != nil {
		// Pre-debit failure: no money moved, nothing to compensate.
		metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeError)
		return nil, err
	}

	status, err := s.coreBanking.Withdraw(ctx, txn)
	if err != nil {
		metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeError)
		return nil, s.resolveContinuationFailure(ctx, accept.TransferID, fmt.Errorf("core-banking withdrawal call failed: %w", err), txn)
	}
	if status != http.StatusOK {
		metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeError)
		return nil, s.resolveContinuationFailure(ctx, accept.TransferID, fmt.Errorf("%w: status %d", domain.ErrWithdrawFailed, status), txn)
	}

	res, err := s.sdk.ContinueTransfer(ctx, accept.TransferID, true)
	if err != nil {
		metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeError)
		return nil, s.resolveContinuationFailure(ctx, accept.TransferID, err, txn)
	}

	metrics.ObserveOperation(opUpdateSentTransfer, metrics.OutcomeOK)
	return res, nil
}

// buildLedgerTransaction re-fetches the funding account and assembles the
// core-banking transaction record for the continuation. The record is built
// fresh on every call; nothing is read from prior invocations.
func (s *Service) buildLedgerTransaction(ctx context.Context, accept *domain.TransferAccept) (*domain.LedgerTransaction, error) {
	account, err := s.coreBanking.GetSavingsAccount(ctx, accept.LedgerTransaction.AccountID)
	if err != nil {
		return nil, fmt.Errorf("savings account %s lookup failed: %w", accept.LedgerTransaction.AccountID, err)
	}

	amount, err := decimal.NewFromString(accept.LedgerTransaction.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid continuation amount %q: %w", accept.LedgerTransaction.TotalAmount, err)
	}

	receipt := accept.LedgerTransaction.ReceiptNumber
	if receipt == "" {
		receipt = uuid.NewString()
	}

	date := s.now()
	return &domain.LedgerTransaction{
		AccountID: accept.LedgerTransaction.AccountID,
		Transaction: domain.LedgerTransactionDetails{
			Locale:            s.settings.Locale,
			DateFormat:        s.settings.DateFormat,
			TransactionDate:   fmt.Sprintf("%d %d %d", date.Day(), int(date.Month()), date.Year()),
			TransactionAmount: amount.String(),
			PaymentTypeID:     s.settings.PaymentTypeID,
			AccountNumber:     account.AccountNo,
			RoutingCode:       accept.LedgerTransaction.RoutingCode,
			ReceiptNumber:     receipt,
			BankNumber:        accept.LedgerTransaction.BankNumber,
		},
	}, nil
}

// resolveContinuationFailure classifies a post-build failure and compensates
// when required. Only failures raised by the switch-SDK integration are
// refundable: by that point the debit has settled and the switch leg is the
// one that broke. All other error kinds are surfaced without compensation.
func (s *Service) resolveContinuationFailure(ctx context.Context, transferID string, cause error, txn *domain.LedgerTransaction) error {
	var sdkErr *sdkclient.Error
	needRefund := errors.As(cause, &sdkErr)

	s.logger.Error("outbound continuation failed",
		zap.String("transfer_id", transferID),
		zap.String("account_id", txn.AccountID),
		zap.String("amount", txn.Transaction.TransactionAmount),
		zap.Bool("refund_required", needRefund),
		zap.Error(cause),
	)
	if !needRefund {
		return cause
	}

	status, err := s.coreBanking.Deposit(ctx, txn)
	if err != nil || status != http.StatusOK {
		metrics.ObserveRefund(metrics.RefundFailed)
		// The amount was validated when the transaction was built.
		amount, _ := decimal.NewFromString(txn.Transaction.TransactionAmount)
		s.logger.Error("refund failed: manual reconciliation required",
			zap.String("transfer_id", transferID),
			zap.String("account_id", txn.AccountID),
			zap.String("amount", amount.String()),
			zap.Int("deposit_status", status),
			zap.Error(err),
		)
		if s.alerts != nil {
			alert := rabbitmq.RefundAlert{
				TransferID: transferID,
				AccountID:  txn.AccountID,
				Amount:     amount,
				Reason:     cause.Error(),
				Timestamp:  time.Now().UTC(),
			}
			if pubErr := s.alerts.PublishRefundAlert(ctx, s.settings.AlertExchange, alert); pubErr != nil {
				s.logger.Error("refund alert publish failed",
					zap.String("transfer_id", transferID),
					zap.Error(pubErr),
				)
			}
		}
		return &domain.RefundFailedError{Amount: amount, AccountID: txn.AccountID}
	}

	metrics.ObserveRefund(metrics.RefundSucceeded)
	s.logger.Info("refund successful; surfacing original error",
		zap.String("transfer_id", transferID),
		zap.String("account_id", txn.AccountID),
	)
	return cause
}

// activeSavingsAccount fetches an account and rejects inactive ones.
func (s *Service) activeSavingsAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.coreBanking.GetSavingsAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("savings account %s lookup failed: %w", accountID, err)
	}
	if !account.Active {
		return nil, domain.ErrAccountNotActive
	}
	return account, nil
}

// ExtractAccountFromIBAN strips the configured country-code, check-digit,
// bank-id and account-prefix segments off an IBAN, leaving the core-banking
// account number.
func (s *Service) ExtractAccountFromIBAN(iban string) (string, error) {
	prefixLen := len(s.settings.BankCountryCode) +
		len(s.settings.CheckDigits) +
		len(s.settings.BankID) +
		len(s.settings.AccountPrefix)
	if len(iban) <= prefixLen {
		return "", domain.ErrInvalidAccountNumber
	}
	return iban[prefixLen:], nil
}

func buildSwitchTransferRequest(req *domain.OutboundTransferRequest) *domain.SwitchTransferRequest {
	return &domain.SwitchTransferRequest{
		HomeTransactionID:         req.HomeTransactionID,
		From:                      req.From.Payer,
		To:                        req.To,
		AmountType:                req.AmountType,
		Currency:                  req.Currency,
		Amount:                    req.Amount,
		TransactionType:           req.TransactionType,
		SubScenario:               req.SubScenario,
		Note:                      req.Note,
		QuoteRequestExtensions:    req.QuoteRequestExtensions,
		TransferRequestExtensions: req.TransferRequestExtensions,
		SkipPartyLookup:           req.SkipPartyLookup,
	}
}
