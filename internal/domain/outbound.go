/**
 * @description
 * Domain models for the outbound (core-banking to switch) transfer leg:
 * the initiation request from the DFSP backend, the switch-SDK transfer
 * representation, and the continuation (commit-or-compensate) exchange.
 */

package domain

import (
	"github.com/shopspring/decimal"
)

// ExtensionItem is an opaque key/value pair passed through to the switch.
type ExtensionItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OutboundSource identifies the funding side of an outbound transfer: the
// core-banking savings account to debit plus the payer identity forwarded to
// the switch. When AccountID is empty the account number is derived from the
// IBAN instead.
type OutboundSource struct {
	AccountID string        `json:"accountId,omitempty"`
	IBAN      string        `json:"iban,omitempty"`
	Payer     TransferParty `json:"payer"`
}

// OutboundTransferRequest initiates a transfer from a core-banking account to
// a counterpart on the switch.
type OutboundTransferRequest struct {
	HomeTransactionID         string          `json:"homeTransactionId"`
	From                      OutboundSource  `json:"from"`
	To                        TransferParty   `json:"to"`
	AmountType                string          `json:"amountType"`
	Currency                  string          `json:"currency"`
	Amount                    string          `json:"amount"`
	TransactionType           string          `json:"transactionType"`
	SubScenario               string          `json:"subScenario,omitempty"`
	Note                      string          `json:"note,omitempty"`
	QuoteRequestExtensions    []ExtensionItem `json:"quoteRequestExtensions,omitempty"`
	TransferRequestExtensions []ExtensionItem `json:"transferRequestExtensions,omitempty"`
	SkipPartyLookup           bool            `json:"skipPartyLookup"`
}

// SwitchTransferRequest is the request forwarded to the switch SDK. It is a
// pass-through of the outbound request minus the core-banking account id.
type SwitchTransferRequest struct {
	HomeTransactionID         string          `json:"homeTransactionId"`
	From                      TransferParty   `json:"from"`
	To                        TransferParty   `json:"to"`
	AmountType                string          `json:"amountType"`
	Currency                  string          `json:"currency"`
	Amount                    string          `json:"amount"`
	TransactionType           string          `json:"transactionType"`
	SubScenario               string          `json:"subScenario,omitempty"`
	Note                      string          `json:"note,omitempty"`
	QuoteRequestExtensions    []ExtensionItem `json:"quoteRequestExtensions,omitempty"`
	TransferRequestExtensions []ExtensionItem `json:"transferRequestExtensions,omitempty"`
	SkipPartyLookup           bool            `json:"skipPartyLookup"`
}

// Money is an amount/currency pair as quoted by the switch.
type Money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// SwitchQuote is the fee breakdown the switch returned for a transfer.
type SwitchQuote struct {
	PayeeFspFee        *Money `json:"payeeFspFee,omitempty"`
	PayeeFspCommission *Money `json:"payeeFspCommission,omitempty"`
}

// SwitchTransfer is the switch SDK's view of an initiated transfer.
type SwitchTransfer struct {
	TransferID    string       `json:"transferId"`
	CurrentState  string       `json:"currentState"`
	Amount        string       `json:"amount"`
	Currency      string       `json:"currency"`
	QuoteResponse *SwitchQuote `json:"quoteResponse,omitempty"`
}

// OutboundTransferResponse is returned after a successful initiation. The
// account has NOT been debited yet; TotalDebitAmount is the fee-inclusive
// amount the continuation step will withdraw.
type OutboundTransferResponse struct {
	TotalDebitAmount decimal.Decimal `json:"totalDebitAmount"`
	TransferResponse *SwitchTransfer `json:"transferResponse"`
}

// LedgerAcceptDetails carries the core-banking side of a continuation call.
// The connector rebuilds the full ledger transaction from these fields; no
// state is read from a prior call.
type LedgerAcceptDetails struct {
	AccountID     string `json:"accountId"`
	TotalAmount   string `json:"totalAmount"`
	RoutingCode   string `json:"routingCode"`
	ReceiptNumber string `json:"receiptNumber"`
	BankNumber    string `json:"bankNumber"`
}

// TransferAccept asks the connector to commit (or reject) a previously quoted
// outbound transfer.
type TransferAccept struct {
	TransferID        string              `json:"transferId"`
	AcceptQuote       bool                `json:"acceptQuote"`
	LedgerTransaction LedgerAcceptDetails `json:"ledgerTransaction"`
}

// TransferContinuationResponse is the switch SDK's reply to a continuation.
type TransferContinuationResponse struct {
	TransferID   string `json:"transferId"`
	CurrentState string `json:"currentState"`
	Fulfilment   string `json:"fulfilment,omitempty"`
}
