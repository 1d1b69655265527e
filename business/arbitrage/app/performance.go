package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fd1az/dex-arbitrage-bot/business/arbitrage/domain"
	pricingDomain "github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/logger"
)

// PerformanceTracker keeps a PairPerformance per pair and uses it to poll
// the historically widest pairs first. It is owned by the monitor loop; the
// mutex only guards reads from reporters and the shutdown flush.
type PerformanceTracker struct {
	mu         sync.Mutex
	records    map[string]domain.PairPerformance
	store      PerformanceStore
	flushEvery int
	pending    int
	logger     logger.LoggerInterface
}

// NewPerformanceTracker creates a tracker. A nil store keeps records in
// memory only. flushEvery <= 0 flushes only on Flush.
func NewPerformanceTracker(store PerformanceStore, flushEvery int, log logger.LoggerInterface) *PerformanceTracker {
	return &PerformanceTracker{
		records:    make(map[string]domain.PairPerformance),
		store:      store,
		flushEvery: flushEvery,
		logger:     log,
	}
}

// Load replaces the in-memory records with the stored ones.
func (t *PerformanceTracker) Load(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	records, err := t.store.Load(ctx)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]domain.PairPerformance, len(records))
	for k, v := range records {
		t.records[k] = v
	}
	return nil
}

// Order sorts pairs by descending max observed spread. Pairs never seen keep
// their configured position relative to each other, after the known ones
// with a positive record.
func (t *PerformanceTracker) Order(pairs []pricingDomain.TokenPair) []pricingDomain.TokenPair {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := append([]pricingDomain.TokenPair(nil), pairs...)
	sort.SliceStable(out, func(i, j int) bool {
		a := t.records[out[i].Key().String()].MaxObservedSpread
		b := t.records[out[j].Key().String()].MaxObservedSpread
		return a.GreaterThan(b)
	})
	return out
}

// Update records this cycle's spread for every pair in table and flushes
// every flushEvery calls. A pair with fewer than two quotes still counts as
// checked, with zero spread.
func (t *PerformanceTracker) Update(ctx context.Context, table *pricingDomain.PriceTable) {
	now := time.Now()

	t.mu.Lock()
	for _, pair := range table.Pairs() {
		key := pair.Key().String()
		rec := t.records[key]

		spread, ok := pricingDomain.CalculateSpread(table.Quotes(pair.Key()))
		if ok {
			profit := pair.TestAmountIn.ToDecimal().Mul(spread.Absolute)
			rec = rec.Observe(spread.Percent, profit, now)
		} else {
			rec = rec.Observe(rec.MaxObservedSpread, rec.LastProfitEstimate, now)
		}
		t.records[key] = rec
	}
	t.pending++
	due := t.flushEvery > 0 && t.pending >= t.flushEvery
	t.mu.Unlock()

	if due {
		if err := t.Flush(ctx); err != nil {
			t.logger.Warn(ctx, "failed to persist pair performance", "error", err)
		}
	}
}

// Get returns the record for key.
func (t *PerformanceTracker) Get(key pricingDomain.PairKey) (domain.PairPerformance, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[key.String()]
	return rec, ok
}

// Snapshot returns a copy of all records.
func (t *PerformanceTracker) Snapshot() map[string]domain.PairPerformance {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]domain.PairPerformance, len(t.records))
	for k, v := range t.records {
		out[k] = v
	}
	return out
}

// Flush writes all records to the store.
func (t *PerformanceTracker) Flush(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	snapshot := t.Snapshot()
	if err := t.store.Save(ctx, snapshot); err != nil {
		return err
	}

	t.mu.Lock()
	t.pending = 0
	t.mu.Unlock()
	return nil
}
