package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
	"github.com/iho/paycore/internal/usecase/mocks"
)

func TestAccountUseCase_CreateAccount(t *testing.T) {
	tests := []struct {
		name    string
		input   usecase.CreateAccountInput
		wantErr error
	}{
		{"valid", usecase.CreateAccountInput{Name: "  Operating  ", Currency: "usd"}, nil},
		{"empty name", usecase.CreateAccountInput{Name: "   ", Currency: "USD"}, domain.ErrInvalidAccountName},
		{"unknown currency", usecase.CreateAccountInput{Name: "Ops", Currency: "XXX"}, domain.ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)

			account, err := h.accounts.CreateAccount(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, h.ledger.Events())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Operating", account.Name)
			assert.Equal(t, "USD", account.Currency)
			assert.True(t, account.Balance.IsZero())
			assert.Equal(t, domain.AccountStatusActive, account.Status)

			stored := h.ledger.Account(account.ID)
			assert.Equal(t, account.Name, stored.Name)

			events := h.ledger.Events()
			require.Len(t, events, 1)
			assert.Equal(t, domain.EventTypeAccountCreated, events[0].EventType)
			assert.Equal(t, account.ID, events[0].AggregateID)
		})
	}
}

func TestAccountUseCase_CreateAccountRollsBackOnOutboxError(t *testing.T) {
	ctrl := gomock.NewController(t)

	txMgr := mocks.NewMockTransactionManager(ctrl)
	tx := mocks.NewMockTransaction(ctrl)
	accounts := mocks.NewMockAccountRepository(ctrl)
	outbox := mocks.NewMockOutboxRepository(ctrl)
	ids := mocks.NewMockIDGenerator(ctrl)

	ids.EXPECT().Generate().Return("acc-1")
	ids.EXPECT().Generate().Return("evt-1")
	txMgr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	accounts.EXPECT().CreateTx(gomock.Any(), tx, gomock.Any()).Return(nil)
	outbox.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(errors.New("outbox unavailable"))
	tx.EXPECT().Rollback(gomock.Any()).Return(nil)

	uc := usecase.NewAccountUseCase(txMgr, accounts, outbox, ids, mocks.NewFakeClock(baseTime), zerolog.Nop(), nil)

	_, err := uc.CreateAccount(context.Background(), usecase.CreateAccountInput{Name: "Ops", Currency: "USD"})
	assert.ErrorContains(t, err, "outbox unavailable")
}

func TestAccountUseCase_GetAndList(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, name := range []string{"one", "two", "three"} {
		_, err := h.accounts.CreateAccount(ctx, usecase.CreateAccountInput{Name: name, Currency: "EUR"})
		require.NoError(t, err)
	}

	list, err := h.accounts.ListAccounts(ctx, usecase.ListAccountsInput{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	rest, err := h.accounts.ListAccounts(ctx, usecase.ListAccountsInput{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 1)

	got, err := h.accounts.GetAccount(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, list[0].ID, got.ID)

	_, err = h.accounts.GetAccount(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestAccountUseCase_SetAccountStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, "A", "USD", "0")

	got, err := h.accounts.SetAccountStatus(ctx, "A", "FROZEN")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusFrozen, got.Status)

	got, err = h.accounts.SetAccountStatus(ctx, "A", "active")
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, got.Status)

	_, err = h.accounts.SetAccountStatus(ctx, "A", "deleted")
	assert.ErrorIs(t, err, domain.ErrInvalidAccountStatus)

	_, err = h.accounts.SetAccountStatus(ctx, "missing", "closed")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
