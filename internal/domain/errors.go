/**
 * @description
 * Error taxonomy for the orchestration layer. Every validation failure is a
 * sentinel error so callers can classify with errors.Is; the single
 * non-recoverable outcome (a failed compensating credit) is a carrier type
 * holding the amount and account needed for manual reconciliation.
 */

package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrUnsupportedIDType    = errors.New("id type is not supported")
	ErrUnsupportedCurrency  = errors.New("currency is not supported")
	ErrAccountBarred        = errors.New("destination account is barred")
	ErrInvalidQuote         = errors.New("quote validation failed")
	ErrTransferNotCompleted = errors.New("transfer notification is not in COMPLETED state")
	ErrQuoteNotDefined      = errors.New("transfer notification carries no quote payload")
	ErrAccountNotActive     = errors.New("savings account is not active")
	ErrAccountBlocked       = errors.New("account is blocked from credit or debit")
	ErrNoQuoteReturned      = errors.New("switch returned no quote fee or commission")
	ErrInsufficientBalance  = errors.New("available balance does not cover the fee-inclusive total")
	ErrWithdrawFailed       = errors.New("core-banking withdrawal failed")
	ErrInvalidAccountNumber = errors.New("derived account number is empty")
)

// RefundFailedError reports that a compensating credit failed after money had
// already left the payer account. It requires out-of-band operator
// intervention; Amount and AccountID are the reconciliation handles.
type RefundFailedError struct {
	Amount    decimal.Decimal
	AccountID string
}

func (e *RefundFailedError) Error() string {
	return fmt.Sprintf("refund of %s to account %s failed: manual reconciliation required", e.Amount.String(), e.AccountID)
}
