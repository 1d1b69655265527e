package app

import (
	"context"
	"math/big"
	"testing"

	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

func TestLiquidityGate_Size(t *testing.T) {
	tests := []struct {
		name         string
		requested    string
		reserve      string
		reserveErr   error
		wantAmount   string
		wantAdjusted bool
		wantFallback bool
	}{
		{name: "reserve covers request", requested: "1000", reserve: "5000", wantAmount: "1000"},
		{name: "reserve equals request", requested: "1000", reserve: "1000", wantAmount: "1000"},
		{name: "clamped to 80% of reserve", requested: "1000", reserve: "500", wantAmount: "400", wantAdjusted: true},
		{name: "clamp rounds down", requested: "1", reserve: "0.000001", wantAmount: "0", wantAdjusted: true},
		{name: "empty reserve", requested: "1000", reserve: "0", wantAmount: "0", wantAdjusted: true},
		{name: "query failure uses fallback", requested: "1000", reserveErr: errTransport, wantAmount: "100", wantFallback: true},
		{name: "fallback never exceeds request", requested: "5", reserveErr: errTransport, wantAmount: "5", wantFallback: true},
		{name: "fallback equals request", requested: "100", reserveErr: errTransport, wantAmount: "100", wantFallback: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reserves := &fakeReserves{err: tt.reserveErr}
			if tt.reserve != "" {
				reserves.balance = amt(t, usdc, tt.reserve).Raw()
			}
			limits, err := NewLimits(config.ExecutionConfig{LiquidityFallbackAmount: "100"}, nil)
			if err != nil {
				t.Fatalf("NewLimits() error = %v", err)
			}
			gate := NewLiquidityGate(reserves, limits, testPolicy, &mockLogger{})

			size, err := gate.Size(context.Background(), amt(t, usdc, tt.requested))
			if err != nil {
				t.Fatalf("Size() error = %v", err)
			}

			want := amt(t, usdc, tt.wantAmount)
			if !size.Amount.Equals(want) {
				t.Errorf("Amount = %s, want %s", size.Amount, want)
			}
			if size.WasAdjusted != tt.wantAdjusted {
				t.Errorf("WasAdjusted = %v, want %v", size.WasAdjusted, tt.wantAdjusted)
			}
			if size.UsedFallback != tt.wantFallback {
				t.Errorf("UsedFallback = %v, want %v", size.UsedFallback, tt.wantFallback)
			}
		})
	}
}

func TestLiquidityGate_ClampIsExactFloor(t *testing.T) {
	// 999 raw units * 80 / 100 = 799.2 -> 799
	reserves := &fakeReserves{balance: big.NewInt(999)}
	limits, _ := NewLimits(config.ExecutionConfig{}, nil)
	gate := NewLiquidityGate(reserves, limits, testPolicy, &mockLogger{})

	size, err := gate.Size(context.Background(), amt(t, usdc, "1"))
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if got := size.Amount.Raw().Int64(); got != 799 {
		t.Errorf("raw amount = %d, want 799", got)
	}
}

func TestLimits_PerTokenOverrides(t *testing.T) {
	limits, err := NewLimits(
		config.ExecutionConfig{LiquidityFallbackAmount: "100", DirectDefaultAmount: "50"},
		[]config.TokenConfig{{Symbol: "dai", FallbackAmount: "7", DirectMaxAmount: "9"}},
	)
	if err != nil {
		t.Fatalf("NewLimits() error = %v", err)
	}

	tests := []struct {
		name string
		got  func() (string, error)
		want string
	}{
		{"usdc fallback", func() (string, error) { a, err := limits.Fallback(usdc); return a.ToDecimal().String(), err }, "100"},
		{"dai fallback", func() (string, error) { a, err := limits.Fallback(dai); return a.ToDecimal().String(), err }, "7"},
		{"usdc direct cap", func() (string, error) { a, err := limits.DirectCap(usdc); return a.ToDecimal().String(), err }, "50"},
		{"dai direct cap", func() (string, error) { a, err := limits.DirectCap(dai); return a.ToDecimal().String(), err }, "9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewLimits_RejectsBadAmount(t *testing.T) {
	if _, err := NewLimits(config.ExecutionConfig{DirectDefaultAmount: "-1"}, nil); err == nil {
		t.Error("NewLimits() error = nil, want configuration error")
	}
}
