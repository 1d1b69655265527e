package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PriceTable maps each pair to the quotes of the venues that priced it.
// Quotes are kept in configured venue order so that tie-breaks are
// deterministic. A table belongs to a single cycle.
type PriceTable struct {
	venues  []VenueID
	rank    map[VenueID]int
	pairs   []TokenPair
	entries map[PairKey]map[VenueID]Quote
	builtAt time.Time
}

// NewPriceTable creates an empty table for the given venue order.
func NewPriceTable(venues []VenueID) *PriceTable {
	rank := make(map[VenueID]int, len(venues))
	for i, v := range venues {
		rank[v] = i
	}
	return &PriceTable{
		venues:  append([]VenueID(nil), venues...),
		rank:    rank,
		entries: make(map[PairKey]map[VenueID]Quote),
		builtAt: time.Now(),
	}
}

// AddPair registers a pair even if no venue ends up quoting it.
func (t *PriceTable) AddPair(pair TokenPair) {
	if _, ok := t.entries[pair.Key()]; ok {
		return
	}
	t.pairs = append(t.pairs, pair)
	t.entries[pair.Key()] = make(map[VenueID]Quote)
}

// Set records q for pair. Invalid quotes and unknown venues are ignored and
// Set reports false.
func (t *PriceTable) Set(pair TokenPair, q Quote) bool {
	if !q.Valid() {
		return false
	}
	if _, ok := t.rank[q.Venue]; !ok {
		return false
	}
	if !q.AmountOut.Asset().Equals(pair.TokenOut) {
		return false
	}
	t.AddPair(pair)
	t.entries[pair.Key()][q.Venue] = q
	return true
}

// Quotes returns the valid quotes for pair in venue order.
func (t *PriceTable) Quotes(key PairKey) []Quote {
	byVenue := t.entries[key]
	out := make([]Quote, 0, len(byVenue))
	for _, v := range t.venues {
		if q, ok := byVenue[v]; ok {
			out = append(out, q)
		}
	}
	return out
}

// Quote returns a single venue's quote for pair.
func (t *PriceTable) Quote(key PairKey, venue VenueID) (Quote, bool) {
	q, ok := t.entries[key][venue]
	return q, ok
}

// Pair returns the pair registered for in -> out.
func (t *PriceTable) Pair(in, out common.Address) (TokenPair, bool) {
	key := PairKey{In: in, Out: out}
	if _, ok := t.entries[key]; !ok {
		return TokenPair{}, false
	}
	for _, p := range t.pairs {
		if p.Key() == key {
			return p, true
		}
	}
	return TokenPair{}, false
}

// Pairs returns the pairs in insertion order.
func (t *PriceTable) Pairs() []TokenPair {
	return append([]TokenPair(nil), t.pairs...)
}

// Venues returns the venue order.
func (t *PriceTable) Venues() []VenueID {
	return append([]VenueID(nil), t.venues...)
}

// QuoteCount returns the number of valid quotes across all pairs.
func (t *PriceTable) QuoteCount() int {
	n := 0
	for _, byVenue := range t.entries {
		n += len(byVenue)
	}
	return n
}

// BuiltAt returns the table creation time.
func (t *PriceTable) BuiltAt() time.Time {
	return t.builtAt
}
