package corebankclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/paystream/core-connector/internal/domain"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:  server.URL,
		TenantID: "default",
		Username: "mifos",
		Password: "password",
	})
}

func TestGetSavingsAccountMapsWireResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/savingsaccounts/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Fineract-Platform-TenantId") != "default" {
			t.Errorf("missing tenant header")
		}
		if _, _, ok := r.BasicAuth(); !ok {
			t.Errorf("missing basic auth")
		}
		w.Write([]byte(`{
			"id": 7,
			"accountNo": "000123456",
			"status": {"active": true},
			"subStatus": {"blockCredit": false, "blockDebit": true},
			"summary": {"availableBalance": 1050.75}
		}`))
	})

	client := newTestClient(t, mux)

	account, err := client.GetSavingsAccount(context.Background(), "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.ID != "7" || account.AccountNo != "000123456" {
		t.Fatalf("unexpected identity %q/%q", account.ID, account.AccountNo)
	}
	if !account.Active {
		t.Fatal("expected active account")
	}
	if account.BlockCredit || !account.BlockDebit {
		t.Fatalf("unexpected block flags credit=%t debit=%t", account.BlockCredit, account.BlockDebit)
	}
	if !account.AvailableBalance.Equal(decimal.RequireFromString("1050.75")) {
		t.Fatalf("expected balance 1050.75, got %s", account.AvailableBalance)
	}
}

func TestGetSavingsAccountNon200IsTypedError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/savingsaccounts/7", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	client := newTestClient(t, mux)

	_, err := client.GetSavingsAccount(context.Background(), "7")
	bankErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *corebankclient.Error, got %T: %v", err, err)
	}
	if bankErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", bankErr.StatusCode)
	}
}

func TestCalculateWithdrawQuoteExactDecimal(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/savingsaccounts/withdraw-quote", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Amount string `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Amount != "103.01" {
			t.Errorf("expected amount 103.01, got %q", req.Amount)
		}
		w.Write([]byte(`{"totalAmount": 105.51}`))
	})

	client := newTestClient(t, mux)

	total, err := client.CalculateWithdrawQuote(context.Background(), decimal.RequireFromString("103.01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !total.Equal(decimal.RequireFromString("105.51")) {
		t.Fatalf("expected 105.51, got %s", total)
	}
}

func TestWithdrawAndDepositReturnUpstreamStatus(t *testing.T) {
	var commands []string
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/savingsaccounts/7/transactions", func(w http.ResponseWriter, r *http.Request) {
		commands = append(commands, r.URL.Query().Get("command"))
		var details domain.LedgerTransactionDetails
		if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
			t.Errorf("bad transaction body: %v", err)
		}
		if details.TransactionAmount != "103" {
			t.Errorf("expected amount 103, got %q", details.TransactionAmount)
		}
		if r.URL.Query().Get("command") == "deposit" {
			w.WriteHeader(http.StatusForbidden)
		}
	})

	client := newTestClient(t, mux)
	txn := &domain.LedgerTransaction{
		AccountID: "7",
		Transaction: domain.LedgerTransactionDetails{
			TransactionAmount: "103",
			AccountNumber:     "000123456",
		},
	}

	status, err := client.Withdraw(context.Background(), txn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	// A non-200 is reported through the status, not an error; the caller
	// decides what it means mid-sequence.
	status, err = client.Deposit(context.Background(), txn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", status)
	}

	if len(commands) != 2 || commands[0] != "withdrawal" || commands[1] != "deposit" {
		t.Fatalf("expected withdrawal then deposit, got %v", commands)
	}
}
