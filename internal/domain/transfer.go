/**
 * @description
 * This file defines the core domain models for the core-connector service.
 * These structs represent the entities exchanged between the payment switch,
 * the core-banking ledger, and the mobile-money provider, as seen by the
 * orchestration layer.
 *
 * @notes
 * - Monetary amounts travel as strings on the wire (scheme convention) and are
 *   parsed into shopspring decimals before any arithmetic or comparison. No
 *   float parsing of money happens anywhere in the service.
 * - None of these entities are persisted: every request carries the full state
 *   the connector needs to act on it.
 */

package domain

import (
	"github.com/shopspring/decimal"
)

// Transfer states reported back to the switch.
const (
	TransferStateReceived  = "RECEIVED"
	TransferStateCompleted = "COMPLETED"
)

// PartyType values supported by the connector.
const (
	PartyTypeConsumer = "CONSUMER"
)

// Party is the resolved identity of a transfer counterpart. It is built per
// lookup request and returned to the caller; the connector never stores it.
type Party struct {
	DisplayName    string `json:"displayName"`
	FirstName      string `json:"firstName"`
	MiddleName     string `json:"middleName"`
	LastName       string `json:"lastName"`
	IDType         string `json:"idType"`
	IDValue        string `json:"idValue"`
	Type           string `json:"type"`
	KYCInformation string `json:"kycInformation"`
	StatusCode     int    `json:"statusCode"`
}

// KycDetails is the provider's identity-lookup result as consumed by the
// orchestration layer. Raw carries the unmodified provider response body so
// callers can surface the full KYC blob.
type KycDetails struct {
	FirstName  string
	LastName   string
	IsBarred   bool
	StatusCode int
	Raw        string
}

// TransferParty identifies one side of a transfer by scheme identifier.
type TransferParty struct {
	IDType  string `json:"idType"`
	IDValue string `json:"idValue"`
}

// QuoteRequest is an inbound request from the switch for a price/fee
// commitment on a prospective transfer.
type QuoteRequest struct {
	QuoteID         string        `json:"quoteId"`
	TransactionID   string        `json:"transactionId"`
	To              TransferParty `json:"to"`
	From            TransferParty `json:"from"`
	Amount          string        `json:"amount"`
	Currency        string        `json:"currency"`
	AmountType      string        `json:"amountType"`
	TransactionType string        `json:"transactionType"`
	Note            string        `json:"note,omitempty"`
}

// QuoteResponse is the connector's fee commitment. Expiration is always in the
// future at creation time.
type QuoteResponse struct {
	QuoteID                          string `json:"quoteId"`
	TransactionID                    string `json:"transactionId"`
	Expiration                       string `json:"expiration"`
	TransferAmount                   string `json:"transferAmount"`
	TransferAmountCurrency           string `json:"transferAmountCurrency"`
	PayeeReceiveAmount               string `json:"payeeReceiveAmount"`
	PayeeReceiveAmountCurrency       string `json:"payeeReceiveAmountCurrency"`
	PayeeFspFeeAmount                string `json:"payeeFspFeeAmount"`
	PayeeFspFeeAmountCurrency        string `json:"payeeFspFeeAmountCurrency"`
	PayeeFspCommissionAmount         string `json:"payeeFspCommissionAmount"`
	PayeeFspCommissionAmountCurrency string `json:"payeeFspCommissionAmountCurrency"`
}

// TransferRequest is an inbound transfer notification from the switch.
type TransferRequest struct {
	TransferID        string        `json:"transferId"`
	HomeTransactionID string        `json:"homeTransactionId"`
	To                TransferParty `json:"to"`
	Amount            string        `json:"amount"`
	Currency          string        `json:"currency"`
	QuoteID           string        `json:"quoteId,omitempty"`
	Note              string        `json:"note,omitempty"`
}

// TransferResponse acknowledges receipt of an inbound transfer. It does not
// indicate that money has moved.
type TransferResponse struct {
	HomeTransactionID  string `json:"homeTransactionId"`
	TransferState      string `json:"transferState"`
	CompletedTimestamp string `json:"completedTimestamp"`
}

// PartyIDInfo is the payee identifier block inside a quoted transfer payload.
type PartyIDInfo struct {
	PartyIDType     string `json:"partyIdType"`
	PartyIdentifier string `json:"partyIdentifier"`
}

// QuotePayload is the original quote body attached to a transfer patch
// notification. The connector rebuilds the disbursement request from it.
type QuotePayload struct {
	TransactionID string `json:"transactionId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Payee         struct {
		PartyIDInfo PartyIDInfo `json:"partyIdInfo"`
	} `json:"payee"`
}

// TransferPatchNotification tells the connector that a previously received
// transfer reached a terminal state on the switch side.
type TransferPatchNotification struct {
	CurrentState string        `json:"currentState"`
	QuoteRequest *QuotePayload `json:"quoteRequest,omitempty"`
}

// DisbursementRequest is the mobile-money payout instruction built from a
// committed quote. It is consumed exactly once by the mobile-money client.
type DisbursementRequest struct {
	Payee struct {
		MSISDN     string `json:"msisdn"`
		WalletType string `json:"wallet_type"`
	} `json:"payee"`
	Reference   string `json:"reference"`
	PIN         string `json:"pin"`
	Transaction struct {
		Amount string `json:"amount"`
		ID     string `json:"id"`
		Type   string `json:"type"`
	} `json:"transaction"`
}

// Account is a core-banking savings account as the connector sees it. It is
// queried, never mutated directly; debits and credits go through the
// core-banking client.
type Account struct {
	ID               string          `json:"id"`
	AccountNo        string          `json:"accountNo"`
	Active           bool            `json:"active"`
	BlockCredit      bool            `json:"blockCredit"`
	BlockDebit       bool            `json:"blockDebit"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
}

// LedgerTransaction is the core-banking transaction record built fresh for
// each debit or credit call. The same record that funded a debit is reused
// verbatim for its compensating credit.
type LedgerTransaction struct {
	AccountID   string                   `json:"accountId"`
	Transaction LedgerTransactionDetails `json:"transaction"`
}

// LedgerTransactionDetails carries the core-banking transaction fields.
type LedgerTransactionDetails struct {
	Locale            string `json:"locale"`
	DateFormat        string `json:"dateFormat"`
	TransactionDate   string `json:"transactionDate"`
	TransactionAmount string `json:"transactionAmount"`
	PaymentTypeID     string `json:"paymentTypeId"`
	AccountNumber     string `json:"accountNumber"`
	RoutingCode       string `json:"routingCode"`
	ReceiptNumber     string `json:"receiptNumber"`
	BankNumber        string `json:"bankNumber"`
}
