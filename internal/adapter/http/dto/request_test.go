package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/usecase"
)

func TestAmount_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Amount
		wantErr bool
	}{
		{"string", `"12.34"`, "12.34", false},
		{"number keeps precision", `0.10000000000000000001`, "0.10000000000000000001", false},
		{"integer", `100`, "100", false},
		{"null", `null`, "", false},
		{"garbage string passes through", `"abc"`, "abc", false},
		{"object", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Amount
			err := json.Unmarshal([]byte(tt.input), &a)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %s", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a != tt.want {
				t.Fatalf("got %q, want %q", a, tt.want)
			}
		})
	}
}

func TestCreateAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateAccountRequest{
		Name:                 "Main",
		Currency:             "USD",
		AllowNegativeBalance: true,
	}

	got := req.ToUseCaseInput()
	want := usecase.CreateAccountInput{
		Name:                 "Main",
		Currency:             "USD",
		AllowNegativeBalance: true,
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestCreateTransferRequest_ToUseCaseInput(t *testing.T) {
	var req CreateTransferRequest
	body := `{"from_account_id":"from","to_account_id":"to","amount":12.5,"currency":"USD","metadata":{"foo":"bar"}}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := req.ToUseCaseInput("key-1")

	if got.Amount != "12.5" || got.FromAccountID != "from" || got.ToAccountID != "to" {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.IdempotencyKey != "key-1" || got.Currency != "USD" {
		t.Fatalf("unexpected input %+v", got)
	}
	if got.Metadata["foo"] != "bar" {
		t.Fatalf("metadata lost: %+v", got.Metadata)
	}
}

func TestForexTransferRequest_ToUseCaseInput(t *testing.T) {
	var req ForexTransferRequest
	body := `{"from_account_id":"a","to_account_id":"b","from_amount":"100","from_currency":"USD","to_currency":"EUR","rate":"0.9016","market_rate":"0.92","spread":"0.02"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	got := req.ToUseCaseInput("")

	if got.FromAmount != "100" || got.IdempotencyKey != "" {
		t.Fatalf("unexpected input %+v", got)
	}
	if !got.Rate.Equal(decimal.RequireFromString("0.9016")) || !got.MarketRate.Equal(decimal.RequireFromString("0.92")) {
		t.Fatalf("unexpected rates %+v", got)
	}
	if !got.Spread.Equal(decimal.RequireFromString("0.02")) {
		t.Fatalf("unexpected spread %s", got.Spread)
	}
}

func TestConvertRequest_ToUseCaseInput(t *testing.T) {
	req := &ConvertRequest{
		FromAccountID: "a",
		ToAccountID:   "b",
		FromAmount:    "5",
		FromCurrency:  "GBP",
		ToCurrency:    "USD",
		Tier:          "gold",
	}

	got := req.ToUseCaseInput("k")
	if got.Tier != "gold" || got.FromAmount != "5" || got.IdempotencyKey != "k" {
		t.Fatalf("unexpected input %+v", got)
	}
}
