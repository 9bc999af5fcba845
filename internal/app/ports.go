/**
 * @description
 * This file defines the downstream capabilities the orchestration service
 * depends on. Each interface abstracts one external system's HTTP client so
 * the sequencing and compensation logic can be exercised against stubs.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/shopspring/decimal: Decimal-exact amounts.
 * - internal/domain: Shared connector models.
 */

package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/paystream/core-connector/internal/domain"
)

// MobileMoneyClient is the mobile-money provider capability: identity lookup
// and B2C disbursement. Token acquisition is the client's own concern.
type MobileMoneyClient interface {
	GetKyc(ctx context.Context, msisdn string) (*domain.KycDetails, error)
	SendMoney(ctx context.Context, disbursement *domain.DisbursementRequest) error
}

// CoreBankingClient is the ledger capability. Withdraw and Deposit return the
// upstream status code; the service owns the interpretation of non-success at
// each step of the continuation sequence.
type CoreBankingClient interface {
	GetSavingsAccount(ctx context.Context, accountID string) (*domain.Account, error)
	CalculateWithdrawQuote(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, txn *domain.LedgerTransaction) (int, error)
	Deposit(ctx context.Context, txn *domain.LedgerTransaction) (int, error)
}

// SwitchSDKClient is the payment-switch capability: initiate an outbound
// transfer and continue (accept/reject) a quoted one.
type SwitchSDKClient interface {
	InitiateTransfer(ctx context.Context, transfer *domain.SwitchTransferRequest) (*domain.SwitchTransfer, error)
	ContinueTransfer(ctx context.Context, transferID string, acceptQuote bool) (*domain.TransferContinuationResponse, error)
}
