package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/paycore/internal/domain"
	"github.com/iho/paycore/internal/infrastructure/metrics"
)

// FxUseCase quotes exchange rates and executes currency conversions.
type FxUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	fxRepo      FxTransferRepository
	entryRepo   EntryRepository
	outboxRepo  OutboxRepository
	settlements SettlementScheduler
	retrier     Retrier
	rates       RateProvider
	spread      SpreadPolicy
	idGen       IDGenerator
	clock       Clock
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	txTimeout   time.Duration
}

// FxDependencies groups the collaborators of FxUseCase.
type FxDependencies struct {
	TxManager   TransactionManager
	AccountRepo AccountRepository
	FxRepo      FxTransferRepository
	EntryRepo   EntryRepository
	OutboxRepo  OutboxRepository
	Settlements SettlementScheduler
	Retrier     Retrier
	Rates       RateProvider
	Spread      SpreadPolicy
	IDGen       IDGenerator
	Clock       Clock
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	TxTimeout   time.Duration
}

// NewFxUseCase creates a new FxUseCase. A nil Spread falls back to a flat
// DefaultSpread.
func NewFxUseCase(deps FxDependencies) *FxUseCase {
	spread := deps.Spread
	if spread == nil {
		spread = NewFlatSpread(DefaultSpread)
	}

	timeout := deps.TxTimeout
	if timeout <= 0 {
		timeout = DefaultTransactionTimeout
	}

	return &FxUseCase{
		txManager:   deps.TxManager,
		accountRepo: deps.AccountRepo,
		fxRepo:      deps.FxRepo,
		entryRepo:   deps.EntryRepo,
		outboxRepo:  deps.OutboxRepo,
		settlements: deps.Settlements,
		retrier:     deps.Retrier,
		rates:       deps.Rates,
		spread:      spread,
		idGen:       deps.IDGen,
		clock:       clockOrSystem(deps.Clock),
		logger:      deps.Logger.With().Str("component", "fx").Logger(),
		metrics:     deps.Metrics,
		txTimeout:   timeout,
	}
}

// QuoteRequest asks for a rate for a specific volume and customer tier.
type QuoteRequest struct {
	FromCurrency string
	ToCurrency   string
	Volume       decimal.Decimal
	Tier         string
}

// GetExchangeRate returns the market rate, the spread and the customer rate
// for a currency pair.
func (uc *FxUseCase) GetExchangeRate(ctx context.Context, from, to string) (*domain.FxQuote, error) {
	return uc.Quote(ctx, QuoteRequest{FromCurrency: from, ToCurrency: to})
}

// Quote is GetExchangeRate with volume and tier taken into account.
func (uc *FxUseCase) Quote(ctx context.Context, req QuoteRequest) (*domain.FxQuote, error) {
	from, to, err := normalizePair(req.FromCurrency, req.ToCurrency)
	if err != nil {
		return nil, err
	}

	market, err := uc.rates.FetchMarketRate(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch market rate %s: %w", PairKey(from, to), err)
	}

	spread := uc.spread.CalculateSpread(SpreadRequest{
		FromCurrency: from,
		ToCurrency:   to,
		Volume:       req.Volume,
		Tier:         req.Tier,
	})

	return domain.NewFxQuote(from, to, market, spread, uc.clock.Now())
}

// ForexTransferInput represents input for ExecuteForexTransfer.
type ForexTransferInput struct {
	Metadata      map[string]any
	FromAccountID string
	ToAccountID   string
	FromAmount    string
	FromCurrency  string
	ToCurrency    string
	// IdempotencyKey overrides the key derived from the parameters.
	IdempotencyKey string
	Description    string
	Rate           decimal.Decimal
	MarketRate     decimal.Decimal
	Spread         decimal.Decimal
}

// FxResult is the outcome of a successful conversion.
type FxResult struct {
	FxTransfer *domain.FxTransfer
	Settlement *domain.Settlement
	Entries    []*domain.Entry
	Replayed   bool
}

// ExecuteForexTransfer debits FromAmount in the source currency and credits
// round(FromAmount*Rate, 8) in the target currency in one transaction.
func (uc *FxUseCase) ExecuteForexTransfer(ctx context.Context, input ForexTransferInput) (*FxResult, error) {
	fromAmount, err := domain.ParseAmount(input.FromAmount)
	if err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	input.FromCurrency, input.ToCurrency, err = normalizePair(input.FromCurrency, input.ToCurrency)
	if err != nil {
		return nil, err
	}

	if err := domain.ValidateRate(input.Rate); err != nil {
		return nil, err
	}
	if input.MarketRate.IsZero() {
		input.MarketRate = input.Rate
	}
	if err := domain.ValidateRate(input.MarketRate); err != nil {
		return nil, err
	}
	if !input.Spread.Equal(input.Spread.Truncate(domain.FxSpreadPlaces)) {
		return nil, fmt.Errorf("%w: spread has more than %d decimal places", domain.ErrInvalidRate, domain.FxSpreadPlaces)
	}

	if err := domain.ValidateMetadata(input.Metadata); err != nil {
		return nil, err
	}

	toAmount := domain.ConvertAmount(fromAmount, input.Rate)
	if !toAmount.IsPositive() {
		return nil, fmt.Errorf("%w: converted amount rounds to zero", domain.ErrInvalidAmount)
	}

	key := input.IdempotencyKey
	if key == "" {
		key = FxIdempotencyKey(input, fromAmount)
	}

	if replay, err := uc.replay(ctx, key); replay != nil || err != nil {
		return replay, err
	}

	var result *FxResult
	err = retry(ctx, uc.retrier, func() error {
		var opErr error
		result, opErr = uc.execute(ctx, input, key, fromAmount, toAmount)
		return opErr
	})

	if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
		replay, replayErr := uc.replay(ctx, key)
		if replayErr != nil {
			return nil, replayErr
		}
		if replay != nil {
			return replay, nil
		}
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TransferErrors.WithLabelValues(errorType(err)).Inc()
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.FxTransfersCompleted.WithLabelValues(PairKey(input.FromCurrency, input.ToCurrency)).Inc()
	}

	uc.logger.Info().
		Str("fx_transfer_id", result.FxTransfer.ID).
		Str("from_amount", fromAmount.String()).
		Str("to_amount", toAmount.String()).
		Str("pair", PairKey(input.FromCurrency, input.ToCurrency)).
		Str("rate", input.Rate.String()).
		Msg("fx transfer completed")

	return result, nil
}

func (uc *FxUseCase) replay(ctx context.Context, key string) (*FxResult, error) {
	existing, err := uc.fxRepo.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, domain.ErrTransferNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.TransferReplays.WithLabelValues("fx").Inc()
	}

	return &FxResult{FxTransfer: existing, Replayed: true}, nil
}

func (uc *FxUseCase) execute(
	ctx context.Context,
	input ForexTransferInput,
	key string,
	fromAmount, toAmount decimal.Decimal,
) (*FxResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, uc.txTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer rollback(txCtx, tx)

	from, to, err := lockAccountPair(txCtx, tx, uc.accountRepo, input.FromAccountID, input.ToAccountID)
	if err != nil {
		return nil, err
	}

	if from.Currency != input.FromCurrency || to.Currency != input.ToCurrency {
		return nil, domain.ErrCurrencyMismatch
	}

	if err := from.ValidateDebit(fromAmount); err != nil {
		return nil, err
	}

	now := uc.clock.Now()
	entryDescription := domain.FxDescription(input.FromCurrency, input.ToCurrency, input.Rate)

	description := input.Description
	if description == "" {
		description = entryDescription
	}

	fx := &domain.FxTransfer{
		ID:             uc.idGen.Generate(),
		FromAccountID:  from.ID,
		ToAccountID:    to.ID,
		FromAmount:     fromAmount,
		FromCurrency:   input.FromCurrency,
		ToAmount:       toAmount,
		ToCurrency:     input.ToCurrency,
		Rate:           input.Rate,
		MarketRate:     input.MarketRate,
		Spread:         input.Spread,
		IdempotencyKey: key,
		Status:         domain.TransferStatusCompleted,
		Description:    description,
		Metadata:       input.Metadata,
		CreatedAt:      now,
	}

	if err := uc.fxRepo.Create(txCtx, tx, fx); err != nil {
		return nil, err
	}

	entries, err := post(txCtx, tx, uc.accountRepo, uc.entryRepo, uc.idGen, posting{
		ReferenceID:  fx.ID,
		Description:  entryDescription,
		From:         from,
		DebitAmount:  fromAmount,
		To:           to,
		CreditAmount: toAmount,
	}, now)
	if err != nil {
		return nil, err
	}

	payload := domain.FxTransferCompletedEvent{
		FxTransferID:  fx.ID,
		FromAccountID: fx.FromAccountID,
		ToAccountID:   fx.ToAccountID,
		FromAmount:    fx.FromAmount.String(),
		FromCurrency:  fx.FromCurrency,
		ToAmount:      fx.ToAmount.String(),
		ToCurrency:    fx.ToCurrency,
		Rate:          fx.Rate.String(),
	}.Map()
	if err := emitEvent(txCtx, tx, uc.outboxRepo, uc.idGen,
		domain.AggregateTypeFxTransfer, fx.ID, domain.EventTypeFxTransferCompleted, payload, now); err != nil {
		return nil, err
	}

	var settlement *domain.Settlement
	if uc.settlements != nil {
		settlement, err = uc.settlements.ScheduleSettlementTx(txCtx, tx, domain.SettlementRequest{
			TransferID:    fx.ID,
			FromAccountID: fx.FromAccountID,
			ToAccountID:   fx.ToAccountID,
			Currency:      fx.FromCurrency,
			Amount:        fx.FromAmount,
		})
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &FxResult{FxTransfer: fx, Settlement: settlement, Entries: entries}, nil
}

// ConvertInput represents input for Convert.
type ConvertInput struct {
	Metadata       map[string]any
	FromAccountID  string
	ToAccountID    string
	FromAmount     string
	FromCurrency   string
	ToCurrency     string
	Tier           string
	IdempotencyKey string
	Description    string
}

// Convert quotes the pair at the current market rate and executes the
// conversion at that quote.
func (uc *FxUseCase) Convert(ctx context.Context, input ConvertInput) (*FxResult, error) {
	volume, err := domain.ParseAmount(input.FromAmount)
	if err != nil {
		return nil, err
	}

	quote, err := uc.Quote(ctx, QuoteRequest{
		FromCurrency: input.FromCurrency,
		ToCurrency:   input.ToCurrency,
		Volume:       volume,
		Tier:         input.Tier,
	})
	if err != nil {
		return nil, err
	}

	return uc.ExecuteForexTransfer(ctx, ForexTransferInput{
		FromAccountID:  input.FromAccountID,
		ToAccountID:    input.ToAccountID,
		FromAmount:     input.FromAmount,
		FromCurrency:   quote.FromCurrency,
		ToCurrency:     quote.ToCurrency,
		Rate:           quote.Rate,
		MarketRate:     quote.MarketRate,
		Spread:         quote.Spread,
		IdempotencyKey: input.IdempotencyKey,
		Description:    input.Description,
		Metadata:       input.Metadata,
	})
}

// GetForexTransfer retrieves a conversion by ID.
func (uc *FxUseCase) GetForexTransfer(ctx context.Context, id string) (*domain.FxTransfer, error) {
	return uc.fxRepo.GetByID(ctx, id)
}

// FxIdempotencyKey derives a deterministic key from the conversion
// parameters: hex(SHA-256) over a canonical, order-independent rendering.
func FxIdempotencyKey(input ForexTransferInput, fromAmount decimal.Decimal) string {
	var b strings.Builder
	b.WriteString(input.FromAccountID)
	b.WriteByte('|')
	b.WriteString(input.ToAccountID)
	b.WriteByte('|')
	b.WriteString(fromAmount.String())
	b.WriteByte('|')
	b.WriteString(input.FromCurrency)
	b.WriteByte('|')
	b.WriteString(input.ToCurrency)
	b.WriteByte('|')
	b.WriteString(input.Rate.String())
	b.WriteByte('|')
	b.WriteString(input.MarketRate.String())
	b.WriteByte('|')
	b.WriteString(input.Spread.String())

	keys := make([]string, 0, len(input.Metadata))
	for k := range input.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%v", k, input.Metadata[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func normalizePair(from, to string) (string, string, error) {
	f, err := domain.NormalizeCurrency(from)
	if err != nil {
		return "", "", err
	}
	t, err := domain.NormalizeCurrency(to)
	if err != nil {
		return "", "", err
	}
	if f == t {
		return "", "", domain.ErrSameCurrency
	}
	return f, t, nil
}
