package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paystream/core-connector/internal/domain"
)

func quotedSwitchTransfer(amount, fee, commission string) *domain.SwitchTransfer {
	return &domain.SwitchTransfer{
		TransferID:   "sw-1",
		CurrentState: "WAITING_FOR_QUOTE_ACCEPTANCE",
		Amount:       amount,
		Currency:     "ZMW",
		QuoteResponse: &domain.SwitchQuote{
			PayeeFspFee:        &domain.Money{Amount: fee, Currency: "ZMW"},
			PayeeFspCommission: &domain.Money{Amount: commission, Currency: "ZMW"},
		},
	}
}

func outboundRequest(accountID string) *domain.OutboundTransferRequest {
	return &domain.OutboundTransferRequest{
		From: domain.OutboundSource{
			AccountID: accountID,
			Payer:     domain.TransferParty{IDType: "MSISDN", IDValue: "260971234567"},
		},
		To:         domain.TransferParty{IDType: "MSISDN", IDValue: "260977654321"},
		AmountType: "SEND",
		Currency:   "ZMW",
		Amount:     "100",
	}
}

func TestSendTransferRejectsInactiveAccount(t *testing.T) {
	bank := &stubCoreBank{account: &domain.Account{ID: "7", Active: false}}
	sdk := &stubSDK{}
	svc := newTestService(&stubMomo{}, bank, sdk, nil)

	_, err := svc.SendTransfer(context.Background(), outboundRequest("7"))
	if !errors.Is(err, domain.ErrAccountNotActive) {
		t.Fatalf("expected ErrAccountNotActive, got %v", err)
	}
	if len(sdk.initiateCalls) != 0 {
		t.Fatal("expected no switch call for inactive account")
	}
}

func TestSendTransferRejectsBlockedAccount(t *testing.T) {
	tests := []struct {
		name        string
		blockCredit bool
		blockDebit  bool
	}{
		{name: "credit blocked", blockCredit: true},
		{name: "debit blocked", blockDebit: true},
		{name: "both blocked", blockCredit: true, blockDebit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &stubCoreBank{account: &domain.Account{
				ID:          "7",
				Active:      true,
				BlockCredit: tt.blockCredit,
				BlockDebit:  tt.blockDebit,
			}}
			svc := newTestService(&stubMomo{}, bank, &stubSDK{}, nil)

			_, err := svc.SendTransfer(context.Background(), outboundRequest("7"))
			if !errors.Is(err, domain.ErrAccountBlocked) {
				t.Fatalf("expected ErrAccountBlocked, got %v", err)
			}
		})
	}
}

func TestSendTransferRequiresQuoteFromSwitch(t *testing.T) {
	tests := []struct {
		name     string
		transfer *domain.SwitchTransfer
	}{
		{
			name:     "missing quote response",
			transfer: &domain.SwitchTransfer{TransferID: "sw-1", Amount: "100"},
		},
		{
			name: "missing fee",
			transfer: &domain.SwitchTransfer{
				TransferID:    "sw-1",
				Amount:        "100",
				QuoteResponse: &domain.SwitchQuote{PayeeFspCommission: &domain.Money{Amount: "0"}},
			},
		},
		{
			name: "missing commission",
			transfer: &domain.SwitchTransfer{
				TransferID:    "sw-1",
				Amount:        "100",
				QuoteResponse: &domain.SwitchQuote{PayeeFspFee: &domain.Money{Amount: "2"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &stubCoreBank{account: &domain.Account{
				ID:               "7",
				Active:           true,
				AvailableBalance: decimal.RequireFromString("1000"),
			}}
			sdk := &stubSDK{transfer: tt.transfer}
			svc := newTestService(&stubMomo{}, bank, sdk, nil)

			_, err := svc.SendTransfer(context.Background(), outboundRequest("7"))
			if !errors.Is(err, domain.ErrNoQuoteReturned) {
				t.Fatalf("expected ErrNoQuoteReturned, got %v", err)
			}
		})
	}
}

func TestSendTransferBalanceBoundary(t *testing.T) {
	// Fee-inclusive total is 100 + 2.50 + 0.50 = 103.
	tests := []struct {
		name    string
		balance string
		wantErr bool
	}{
		{name: "balance above total passes", balance: "103.01"},
		{name: "balance equal to total is rejected", balance: "103", wantErr: true},
		{name: "balance below total is rejected", balance: "102.99", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bank := &stubCoreBank{account: &domain.Account{
				ID:               "7",
				Active:           true,
				AvailableBalance: decimal.RequireFromString(tt.balance),
			}}
			sdk := &stubSDK{transfer: quotedSwitchTransfer("100", "2.50", "0.50")}
			svc := newTestService(&stubMomo{}, bank, sdk, nil)

			res, err := svc.SendTransfer(context.Background(), outboundRequest("7"))
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInsufficientBalance) {
					t.Fatalf("expected ErrInsufficientBalance, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !res.TotalDebitAmount.Equal(decimal.RequireFromString("103")) {
				t.Fatalf("expected total debit 103, got %s", res.TotalDebitAmount)
			}
			if res.TransferResponse.TransferID != "sw-1" {
				t.Fatalf("expected switch transfer echoed back, got %q", res.TransferResponse.TransferID)
			}
		})
	}
}

func TestSendTransferUsesLedgerWithdrawQuote(t *testing.T) {
	// The ledger adds its own charge on top of the switch total.
	bank := &stubCoreBank{
		account: &domain.Account{
			ID:               "7",
			Active:           true,
			AvailableBalance: decimal.RequireFromString("110"),
		},
		withdrawQuote: decimal.RequireFromString("105.75"),
	}
	sdk := &stubSDK{transfer: quotedSwitchTransfer("100", "2.50", "0.50")}
	svc := newTestService(&stubMomo{}, bank, sdk, nil)

	res, err := svc.SendTransfer(context.Background(), outboundRequest("7"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TotalDebitAmount.Equal(decimal.RequireFromString("105.75")) {
		t.Fatalf("expected ledger-quoted debit 105.75, got %s", res.TotalDebitAmount)
	}
}

func TestSendTransferGeneratesHomeTransactionID(t *testing.T) {
	bank := &stubCoreBank{account: &domain.Account{
		ID:               "7",
		Active:           true,
		AvailableBalance: decimal.RequireFromString("1000"),
	}}
	sdk := &stubSDK{transfer: quotedSwitchTransfer("100", "0", "0")}
	svc := newTestService(&stubMomo{}, bank, sdk, nil)

	if _, err := svc.SendTransfer(context.Background(), outboundRequest("7")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sdk.initiateCalls) != 1 {
		t.Fatalf("expected one initiation, got %d", len(sdk.initiateCalls))
	}
	if sdk.initiateCalls[0].HomeTransactionID == "" {
		t.Fatal("expected a generated home transaction id")
	}
}

func TestSendTransferDerivesAccountFromIBAN(t *testing.T) {
	bank := &stubCoreBank{account: &domain.Account{
		ID:               "000123456",
		Active:           true,
		AvailableBalance: decimal.RequireFromString("1000"),
	}}
	sdk := &stubSDK{transfer: quotedSwitchTransfer("100", "0", "0")}
	svc := newTestService(&stubMomo{}, bank, sdk, nil)

	req := outboundRequest("")
	req.From.IBAN = "ZM680060" + "00" + "000123456"

	if _, err := svc.SendTransfer(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSendTransferRejectsShortIBAN(t *testing.T) {
	svc := newTestService(&stubMomo{}, &stubCoreBank{}, &stubSDK{}, nil)

	req := outboundRequest("")
	req.From.IBAN = "ZM680060"

	_, err := svc.SendTransfer(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidAccountNumber) {
		t.Fatalf("expected ErrInvalidAccountNumber, got %v", err)
	}
}
