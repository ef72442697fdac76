package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/usecase"
)

var errTxDone = errors.New("fake: transaction already closed")

// Ledger is an in-memory store with transactional semantics: writes made
// through a FakeTx become visible on Commit and vanish on Rollback. Locking
// accounts takes a store-wide lock held until the transaction ends, and
// settlement rows locked by one transaction are skipped by others.
type Ledger struct {
	mu          sync.Mutex
	rowLock     sync.Mutex
	accounts    map[string]*domain.Account
	transfers   map[string]*domain.Transfer
	fxTransfers map[string]*domain.FxTransfer
	settlements map[string]*domain.Settlement
	entries     []*domain.Entry
	events      []*domain.OutboxEvent
	lockedRows  map[string]*FakeTx

	commits   int
	rollbacks int

	// CommitErr, when set, is returned by every Commit and nothing is applied.
	CommitErr error
	// EntryCreateErr, when set, is returned by EntryRepo.Create.
	EntryCreateErr error
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts:    make(map[string]*domain.Account),
		transfers:   make(map[string]*domain.Transfer),
		fxTransfers: make(map[string]*domain.FxTransfer),
		settlements: make(map[string]*domain.Settlement),
		lockedRows:  make(map[string]*FakeTx),
	}
}

// SeedAccount stores a copy of a as committed state.
func (l *Ledger) SeedAccount(a domain.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if a.Status == "" {
		a.Status = domain.AccountStatusActive
	}
	l.accounts[a.ID] = &a
}

// SeedSettlement stores a copy of s as committed state.
func (l *Ledger) SeedSettlement(s domain.Settlement) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.settlements[s.ID] = &s
}

// SetBalance overwrites a stored balance without writing an entry.
func (l *Ledger) SetBalance(id string, balance decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[id].Balance = balance
}

// Account returns a copy of the committed account.
func (l *Ledger) Account(id string) domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.accounts[id]
}

// Settlement returns a copy of the committed settlement.
func (l *Ledger) Settlement(id string) domain.Settlement {
	l.mu.Lock()
	defer l.mu.Unlock()
	return *l.settlements[id]
}

// Entries returns all committed entries in insertion order.
func (l *Ledger) Entries() []domain.Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = *e
	}
	return out
}

// Events returns all committed outbox events.
func (l *Ledger) Events() []domain.OutboxEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.OutboxEvent, len(l.events))
	for i, e := range l.events {
		out[i] = *e
	}
	return out
}

// Settlements returns all committed settlements ordered by id.
func (l *Ledger) Settlements() []domain.Settlement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]domain.Settlement, 0, len(l.settlements))
	for _, s := range l.settlements {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TransferCount returns the number of committed transfers.
func (l *Ledger) TransferCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.transfers)
}

// FxTransferCount returns the number of committed conversions.
func (l *Ledger) FxTransferCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fxTransfers)
}

// TxStats returns how many transactions were committed and rolled back.
func (l *Ledger) TxStats() (commits, rollbacks int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.commits, l.rollbacks
}

// FakeTx buffers writes until Commit.
type FakeTx struct {
	ledger     *Ledger
	ops        []func()
	holdsLock  bool
	lockedRows []string
	done       bool
}

// Commit applies the buffered writes.
func (t *FakeTx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	l := t.ledger

	if err := ctx.Err(); err != nil {
		t.finish(false)
		return err
	}
	if l.CommitErr != nil {
		t.finish(false)
		return l.CommitErr
	}

	t.finish(true)
	return nil
}

// Rollback discards the buffered writes.
func (t *FakeTx) Rollback(context.Context) error {
	if t.done {
		return errTxDone
	}
	t.finish(false)
	return nil
}

func (t *FakeTx) finish(apply bool) {
	l := t.ledger
	l.mu.Lock()
	if apply {
		for _, op := range t.ops {
			op()
		}
		l.commits++
	} else {
		l.rollbacks++
	}
	for _, id := range t.lockedRows {
		delete(l.lockedRows, id)
	}
	l.mu.Unlock()

	t.ops = nil
	t.done = true
	if t.holdsLock {
		t.holdsLock = false
		l.rowLock.Unlock()
	}
}

func (t *FakeTx) defer_(op func()) {
	t.ops = append(t.ops, op)
}

func asFakeTx(tx usecase.Transaction) (*FakeTx, error) {
	ft, ok := tx.(*FakeTx)
	if !ok {
		return nil, fmt.Errorf("fake: unexpected transaction type %T", tx)
	}
	if ft.done {
		return nil, errTxDone
	}
	return ft, nil
}

// TxManager begins FakeTx transactions.
type TxManager struct{ ledger *Ledger }

// TxManager returns the ledger's transaction manager.
func (l *Ledger) TxManager() *TxManager { return &TxManager{ledger: l} }

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &FakeTx{ledger: m.ledger}, nil
}

// AccountRepo implements usecase.AccountRepository.
type AccountRepo struct{ ledger *Ledger }

// Accounts returns the ledger's account repository.
func (l *Ledger) Accounts() *AccountRepo { return &AccountRepo{ledger: l} }

func (r *AccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.ledger.SeedAccount(*account)
	return nil
}

func (r *AccountRepo) CreateTx(_ context.Context, tx usecase.Transaction, account *domain.Account) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	a := *account
	ft.defer_(func() { r.ledger.accounts[a.ID] = &a })
	return nil
}

func (r *AccountRepo) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	a, ok := r.ledger.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (r *AccountRepo) GetByIDsForUpdate(ctx context.Context, tx usecase.Transaction, ids []string) ([]*domain.Account, error) {
	ft, err := asFakeTx(tx)
	if err != nil {
		return nil, err
	}

	if !ft.holdsLock {
		r.ledger.rowLock.Lock()
		ft.holdsLock = true
	}

	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	out := make([]*domain.Account, 0, len(sorted))
	for _, id := range sorted {
		if a, ok := r.ledger.accounts[id]; ok {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *AccountRepo) UpdateBalance(_ context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	ft.defer_(func() {
		a := r.ledger.accounts[id]
		a.Balance = balance
		a.Version++
		a.UpdatedAt = updatedAt
	})
	return nil
}

func (r *AccountRepo) UpdateStatus(_ context.Context, id string, status domain.AccountStatus, updatedAt time.Time) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	a, ok := r.ledger.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Status = status
	a.UpdatedAt = updatedAt
	return nil
}

func (r *AccountRepo) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	all := make([]*domain.Account, 0, len(r.ledger.accounts))
	for _, a := range r.ledger.accounts {
		c := *a
		all = append(all, &c)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, limit, offset), nil
}

// TransferRepo implements usecase.TransferRepository.
type TransferRepo struct{ ledger *Ledger }

// Transfers returns the ledger's transfer repository.
func (l *Ledger) Transfers() *TransferRepo { return &TransferRepo{ledger: l} }

func (r *TransferRepo) Create(_ context.Context, tx usecase.Transaction, transfer *domain.Transfer) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	if transfer.IdempotencyKey != nil {
		if _, err := r.GetByIdempotencyKey(context.Background(), *transfer.IdempotencyKey); err == nil {
			return domain.ErrDuplicateIdempotencyKey
		}
	}
	t := *transfer
	ft.defer_(func() { r.ledger.transfers[t.ID] = &t })
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*domain.Transfer, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	t, ok := r.ledger.transfers[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}
	c := *t
	return &c, nil
}

func (r *TransferRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.Transfer, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, t := range r.ledger.transfers {
		if t.IdempotencyKey != nil && *t.IdempotencyKey == key {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTransferNotFound
}

func (r *TransferRepo) ListByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Transfer, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*domain.Transfer
	for _, t := range r.ledger.transfers {
		if t.FromAccountID == accountID || t.ToAccountID == accountID {
			c := *t
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// FxTransferRepo implements usecase.FxTransferRepository.
type FxTransferRepo struct{ ledger *Ledger }

// FxTransfers returns the ledger's conversion repository.
func (l *Ledger) FxTransfers() *FxTransferRepo { return &FxTransferRepo{ledger: l} }

func (r *FxTransferRepo) Create(_ context.Context, tx usecase.Transaction, fx *domain.FxTransfer) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	if _, err := r.GetByIdempotencyKey(context.Background(), fx.IdempotencyKey); err == nil {
		return domain.ErrDuplicateIdempotencyKey
	}
	c := *fx
	ft.defer_(func() { r.ledger.fxTransfers[c.ID] = &c })
	return nil
}

func (r *FxTransferRepo) GetByID(_ context.Context, id string) (*domain.FxTransfer, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	fx, ok := r.ledger.fxTransfers[id]
	if !ok {
		return nil, domain.ErrTransferNotFound
	}
	c := *fx
	return &c, nil
}

func (r *FxTransferRepo) GetByIdempotencyKey(_ context.Context, key string) (*domain.FxTransfer, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, fx := range r.ledger.fxTransfers {
		if fx.IdempotencyKey == key {
			c := *fx
			return &c, nil
		}
	}
	return nil, domain.ErrTransferNotFound
}

// EntryRepo implements usecase.EntryRepository.
type EntryRepo struct{ ledger *Ledger }

// EntryRepo returns the ledger's entry repository.
func (l *Ledger) EntryRepo() *EntryRepo { return &EntryRepo{ledger: l} }

func (r *EntryRepo) Create(_ context.Context, tx usecase.Transaction, entry *domain.Entry) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	if r.ledger.EntryCreateErr != nil {
		return r.ledger.EntryCreateErr
	}
	e := *entry
	ft.defer_(func() { r.ledger.entries = append(r.ledger.entries, &e) })
	return nil
}

func (r *EntryRepo) GetByReference(_ context.Context, referenceID string) ([]*domain.Entry, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*domain.Entry
	for _, e := range r.ledger.entries {
		if e.ReferenceID == referenceID {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *EntryRepo) GetByAccount(_ context.Context, accountID string, limit, offset int) ([]*domain.Entry, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*domain.Entry
	for i := len(r.ledger.entries) - 1; i >= 0; i-- {
		if e := r.ledger.entries[i]; e.AccountID == accountID {
			c := *e
			out = append(out, &c)
		}
	}
	return page(out, limit, offset), nil
}

// SettlementRepo implements usecase.SettlementRepository.
type SettlementRepo struct{ ledger *Ledger }

// SettlementRepo returns the ledger's settlement repository.
func (l *Ledger) SettlementRepo() *SettlementRepo { return &SettlementRepo{ledger: l} }

func (r *SettlementRepo) Create(_ context.Context, tx usecase.Transaction, s *domain.Settlement) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	c := *s
	ft.defer_(func() { r.ledger.settlements[c.ID] = &c })
	return nil
}

func (r *SettlementRepo) GetByID(_ context.Context, id string) (*domain.Settlement, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	s, ok := r.ledger.settlements[id]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	c := *s
	return &c, nil
}

func (r *SettlementRepo) GetForUpdateSkipLocked(_ context.Context, tx usecase.Transaction, id string) (*domain.Settlement, error) {
	ft, err := asFakeTx(tx)
	if err != nil {
		return nil, err
	}

	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()

	s, ok := r.ledger.settlements[id]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	if holder, locked := r.ledger.lockedRows[id]; locked && holder != ft {
		return nil, domain.ErrSettlementNotFound
	}

	r.ledger.lockedRows[id] = ft
	ft.lockedRows = append(ft.lockedRows, id)

	c := *s
	return &c, nil
}

func (r *SettlementRepo) Update(_ context.Context, tx usecase.Transaction, s *domain.Settlement) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	c := *s
	ft.defer_(func() { r.ledger.settlements[c.ID] = &c })
	return nil
}

func (r *SettlementRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*domain.Settlement, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*domain.Settlement
	for _, s := range r.ledger.settlements {
		if s.Status == domain.SettlementStatusPending && !s.ScheduledFor.After(now) {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ID < out[j].ID
		}
		return out[i].ScheduledFor.Before(out[j].ScheduledFor)
	})
	return page(out, limit, 0), nil
}

func (r *SettlementRepo) ListByStatus(_ context.Context, status domain.SettlementStatus, limit, offset int) ([]*domain.Settlement, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*domain.Settlement
	for _, s := range r.ledger.settlements {
		if s.Status == status {
			c := *s
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

// OutboxRepo implements usecase.OutboxRepository.
type OutboxRepo struct{ ledger *Ledger }

// Outbox returns the ledger's outbox repository.
func (l *Ledger) Outbox() *OutboxRepo { return &OutboxRepo{ledger: l} }

func (r *OutboxRepo) Create(_ context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	ft, err := asFakeTx(tx)
	if err != nil {
		return err
	}
	e := *event
	ft.defer_(func() { r.ledger.events = append(r.ledger.events, &e) })
	return nil
}

func (r *OutboxRepo) GetUnpublished(_ context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range r.ledger.events {
		if !e.Published {
			c := *e
			out = append(out, &c)
		}
	}
	return page(out, limit, 0), nil
}

func (r *OutboxRepo) MarkPublished(_ context.Context, id string, publishedAt time.Time) error {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	for _, e := range r.ledger.events {
		if e.ID == id {
			e.Published = true
			t := publishedAt
			e.PublishedAt = &t
		}
	}
	return nil
}

// ReportRepo implements usecase.ReportRepository and
// usecase.LedgerRepository over the in-memory state.
type ReportRepo struct{ ledger *Ledger }

// Reports returns the ledger's report repository.
func (l *Ledger) Reports() *ReportRepo { return &ReportRepo{ledger: l} }

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (r *ReportRepo) TransferTotals(_ context.Context, from, to time.Time) ([]domain.CurrencyTotal, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	byCur := map[string]*domain.CurrencyTotal{}
	for _, t := range r.ledger.transfers {
		if !inWindow(t.CreatedAt, from, to) {
			continue
		}
		ct, ok := byCur[t.Currency]
		if !ok {
			ct = &domain.CurrencyTotal{Currency: t.Currency}
			byCur[t.Currency] = ct
		}
		ct.Count++
		ct.Total = ct.Total.Add(t.Amount)
	}
	out := make([]domain.CurrencyTotal, 0, len(byCur))
	for _, ct := range byCur {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (r *ReportRepo) FxVolumes(_ context.Context, from, to time.Time) ([]domain.FxVolume, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	byPair := map[string]*domain.FxVolume{}
	for _, fx := range r.ledger.fxTransfers {
		if !inWindow(fx.CreatedAt, from, to) {
			continue
		}
		key := fx.FromCurrency + "/" + fx.ToCurrency
		v, ok := byPair[key]
		if !ok {
			v = &domain.FxVolume{FromCurrency: fx.FromCurrency, ToCurrency: fx.ToCurrency}
			byPair[key] = v
		}
		v.Count++
		v.FromTotal = v.FromTotal.Add(fx.FromAmount)
		v.ToTotal = v.ToTotal.Add(fx.ToAmount)
	}
	out := make([]domain.FxVolume, 0, len(byPair))
	for _, v := range byPair {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FromCurrency+out[i].ToCurrency < out[j].FromCurrency+out[j].ToCurrency
	})
	return out, nil
}

func (r *ReportRepo) AccountActivity(_ context.Context, from, to time.Time) ([]domain.AccountActivity, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	byAcc := map[string]*domain.AccountActivity{}
	for _, e := range r.ledger.entries {
		if !inWindow(e.CreatedAt, from, to) {
			continue
		}
		a, ok := byAcc[e.AccountID]
		if !ok {
			a = &domain.AccountActivity{AccountID: e.AccountID}
			byAcc[e.AccountID] = a
		}
		a.EntryCount++
		a.NetAmount = a.NetAmount.Add(e.Amount)
	}
	out := make([]domain.AccountActivity, 0, len(byAcc))
	for _, a := range byAcc {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (r *ReportRepo) summary(a *domain.Account) domain.AccountLedgerSummary {
	s := domain.AccountLedgerSummary{
		AccountID: a.ID,
		Name:      a.Name,
		Currency:  a.Currency,
		Balance:   a.Balance,
	}
	for _, e := range r.ledger.entries {
		if e.AccountID != a.ID {
			continue
		}
		s.EntryCount++
		s.EntrySum = s.EntrySum.Add(e.Amount)
		if e.Type == domain.EntryTypeDebit {
			s.DebitTotal = s.DebitTotal.Add(e.Amount.Abs())
		} else {
			s.CreditTotal = s.CreditTotal.Add(e.Amount)
		}
	}
	return s
}

func (r *ReportRepo) AccountSummaries(_ context.Context) ([]domain.AccountLedgerSummary, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	out := make([]domain.AccountLedgerSummary, 0, len(r.ledger.accounts))
	for _, a := range r.ledger.accounts {
		out = append(out, r.summary(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID })
	return out, nil
}

func (r *ReportRepo) AccountSummary(_ context.Context, accountID string) (*domain.AccountLedgerSummary, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	a, ok := r.ledger.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	s := r.summary(a)
	return &s, nil
}

// CheckConsistency returns the sum of all balances and of all entries.
func (r *ReportRepo) CheckConsistency(_ context.Context) (decimal.Decimal, decimal.Decimal, error) {
	r.ledger.mu.Lock()
	defer r.ledger.mu.Unlock()
	balances, entries := decimal.Zero, decimal.Zero
	for _, a := range r.ledger.accounts {
		balances = balances.Add(a.Balance)
	}
	for _, e := range r.ledger.entries {
		entries = entries.Add(e.Amount)
	}
	return balances, entries, nil
}

// SequentialIDs generates zero-padded ids that sort in creation order.
type SequentialIDs struct {
	mu     sync.Mutex
	Prefix string
	n      int
}

func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s%06d", g.Prefix, g.n)
}

// FakeClock is a settable clock.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewFakeClock creates a clock stopped at t.
func NewFakeClock(t time.Time) *FakeClock { return &FakeClock{t: t} }

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// ExecutorFunc adapts a function to usecase.SettlementExecutor.
type ExecutorFunc func(ctx context.Context, s *domain.Settlement) error

func (f ExecutorFunc) Execute(ctx context.Context, s *domain.Settlement) error {
	return f(ctx, s)
}

// StaticRates is a fixed usecase.RateProvider keyed by "FROM/TO".
type StaticRates map[string]decimal.Decimal

func (r StaticRates) FetchMarketRate(_ context.Context, from, to string) (decimal.Decimal, error) {
	rate, ok := r[from+"/"+to]
	if !ok {
		return decimal.Zero, domain.ErrRateNotFound
	}
	return rate, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ usecase.TransactionManager   = (*TxManager)(nil)
	_ usecase.AccountRepository    = (*AccountRepo)(nil)
	_ usecase.TransferRepository   = (*TransferRepo)(nil)
	_ usecase.FxTransferRepository = (*FxTransferRepo)(nil)
	_ usecase.EntryRepository      = (*EntryRepo)(nil)
	_ usecase.SettlementRepository = (*SettlementRepo)(nil)
	_ usecase.OutboxRepository     = (*OutboxRepo)(nil)
	_ usecase.ReportRepository     = (*ReportRepo)(nil)
	_ usecase.LedgerRepository     = (*ReportRepo)(nil)
	_ usecase.IDGenerator          = (*SequentialIDs)(nil)
	_ usecase.Clock                = (*FakeClock)(nil)
	_ usecase.SettlementExecutor   = ExecutorFunc(nil)
	_ usecase.RateProvider         = StaticRates(nil)
)
