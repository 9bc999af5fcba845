package app

import (
	"github.com/paystream/core-connector/internal/domain"
)

// QuotePolicy decides whether an inbound transfer (and its later patch
// notification) is consistent with its quote. It is injected so deployments
// can tighten the check without touching the orchestration sequence.
type QuotePolicy interface {
	ValidateQuote(transfer *domain.TransferRequest) bool
	ValidatePatchQuote(notification *domain.TransferPatchNotification) bool
}

// AcceptAllQuotes accepts every quote. It is the deployed default; scheme
// rules currently guarantee quote consistency upstream.
type AcceptAllQuotes struct{}

func (AcceptAllQuotes) ValidateQuote(*domain.TransferRequest) bool { return true }

func (AcceptAllQuotes) ValidatePatchQuote(*domain.TransferPatchNotification) bool { return true }
