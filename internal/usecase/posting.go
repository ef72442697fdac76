package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
)

// lockAccountPair locks both accounts in ascending id order and checks that
// they exist and may transact.
func lockAccountPair(
	ctx context.Context,
	tx Transaction,
	accountRepo AccountRepository,
	fromID, toID string,
) (from, to *domain.Account, err error) {
	ids := []string{fromID, toID}
	sort.Strings(ids)

	accounts, err := accountRepo.GetByIDsForUpdate(ctx, tx, ids)
	if err != nil {
		return nil, nil, err
	}

	if len(accounts) != len(ids) {
		return nil, nil, domain.ErrAccountNotFound
	}

	for _, a := range accounts {
		switch a.ID {
		case fromID:
			from = a
		case toID:
			to = a
		}
	}

	if from == nil || to == nil {
		return nil, nil, domain.ErrAccountNotFound
	}

	if err := from.CanTransact(); err != nil {
		return nil, nil, err
	}

	if err := to.CanTransact(); err != nil {
		return nil, nil, err
	}

	return from, to, nil
}

// posting is a balanced debit/credit pair written under a single reference.
type posting struct {
	ReferenceID  string
	Description  string
	From         *domain.Account
	DebitAmount  decimal.Decimal
	To           *domain.Account
	CreditAmount decimal.Decimal
}

// post writes both entries and moves both balances. The accounts must be
// locked by tx.
func post(
	ctx context.Context,
	tx Transaction,
	accountRepo AccountRepository,
	entryRepo EntryRepository,
	idGen IDGenerator,
	p posting,
	now time.Time,
) ([]*domain.Entry, error) {
	debit, credit := domain.NewEntryPair(
		idGen.Generate,
		p.ReferenceID, p.Description,
		p.From, p.DebitAmount,
		p.To, p.CreditAmount,
		now,
	)

	if err := accountRepo.UpdateBalance(ctx, tx, p.From.ID, debit.AccountCurrentBalance, now); err != nil {
		return nil, err
	}

	if err := accountRepo.UpdateBalance(ctx, tx, p.To.ID, credit.AccountCurrentBalance, now); err != nil {
		return nil, err
	}

	if err := entryRepo.Create(ctx, tx, debit); err != nil {
		return nil, err
	}

	if err := entryRepo.Create(ctx, tx, credit); err != nil {
		return nil, err
	}

	p.From.Balance = debit.AccountCurrentBalance
	p.From.Version++
	p.To.Balance = credit.AccountCurrentBalance
	p.To.Version++

	return []*domain.Entry{debit, credit}, nil
}

// emitEvent stores an outbox event inside tx. A nil repository disables
// notifications.
func emitEvent(
	ctx context.Context,
	tx Transaction,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	aggregateType, aggregateID, eventType string,
	payload map[string]any,
	now time.Time,
) error {
	if outboxRepo == nil {
		return nil
	}

	event := &domain.OutboxEvent{
		ID:            idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     now,
		Published:     false,
	}

	return outboxRepo.Create(ctx, tx, event)
}

// retry runs op through r, or once when r is nil.
func retry(ctx context.Context, r Retrier, op func() error) error {
	if r == nil {
		return op()
	}
	return r.Retry(ctx, op)
}

func clockOrSystem(c Clock) Clock {
	if c == nil {
		return SystemClock{}
	}
	return c
}

func rollback(ctx context.Context, tx Transaction) {
	_ = tx.Rollback(ctx)
}
