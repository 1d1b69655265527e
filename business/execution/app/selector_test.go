package app

import (
	"context"
	"math/big"
	"testing"

	"github.com/fd1az/dex-arbitrage-bot/business/execution/domain"
)

func TestSelector_FlashSuccess(t *testing.T) {
	h := newHarness()
	sel := h.build(t)

	res := sel.Execute(context.Background(), amt(t, usdc, "1000"))

	if !res.Success || res.Strategy != domain.StrategyFlash {
		t.Fatalf("result = %+v, want flash success", res)
	}
	if len(h.flash.calls) != 1 {
		t.Errorf("flash calls = %d, want 1", len(h.flash.calls))
	}
	if len(h.direct.calls) != 0 || len(h.tokens.approvals) != 0 {
		t.Error("direct path touched on flash success")
	}
	if res.GasCost == nil || res.GasCost.GasUsed != 210_000 {
		t.Errorf("GasCost = %+v, want gas used 210000", res.GasCost)
	}
}

func TestSelector_FlashFailureFallsBackOnceWithOriginalAmount(t *testing.T) {
	tests := []struct {
		name      string
		reserve   string
		flashErr  func() error
		gasFailed bool
	}{
		{
			name:     "flash transport error",
			reserve:  "1000000",
			flashErr: func() error { return errTransport },
		},
		{
			name:    "flash reverted on clamped amount",
			reserve: "500",
			flashErr: func() error {
				_, err := revertedReceipt(0x01)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.reserves.balance = amt(t, usdc, tt.reserve).Raw()
			h.flash.err = tt.flashErr()
			sel := h.build(t)

			requested := amt(t, usdc, "1000")
			res := sel.Execute(context.Background(), requested)

			if len(h.flash.calls) != 1 {
				t.Fatalf("flash calls = %d, want 1", len(h.flash.calls))
			}
			if len(h.direct.calls) != 1 {
				t.Fatalf("direct calls = %d, want exactly 1", len(h.direct.calls))
			}
			got := h.direct.calls[0]
			if got.token != usdc.Address() || got.amount.Cmp(requested.Raw()) != 0 {
				t.Errorf("direct call = (%s, %s), want (%s, %s)",
					got.token.Hex(), got.amount, usdc.Address().Hex(), requested.Raw())
			}
			if !res.Success || !res.FellBack || res.Strategy != domain.StrategyDirect {
				t.Errorf("result = %+v, want direct success after fallback", res)
			}
		})
	}
}

func TestSelector_FlashAndDirectFail(t *testing.T) {
	h := newHarness()
	h.flash.err = errTransport
	_, h.direct.err = revertedReceipt(0x02)
	sel := h.build(t)

	res := sel.Execute(context.Background(), amt(t, usdc, "1000"))

	if res.Success || res.Skipped {
		t.Fatalf("result = %+v, want failure", res)
	}
	if res.ErrorKind != domain.KindExecutionReverted {
		t.Errorf("ErrorKind = %s, want %s", res.ErrorKind, domain.KindExecutionReverted)
	}
	if !res.FellBack {
		t.Error("FellBack = false")
	}
	if n := len(h.flash.calls) + len(h.direct.calls); n != 2 {
		t.Errorf("execution submissions = %d, want 2", n)
	}
}

func TestSelector_GasFailureOnFlashFallsBack(t *testing.T) {
	h := newHarness()
	h.gas.err = errTransport
	sel := h.build(t)

	res := sel.Execute(context.Background(), amt(t, usdc, "1000"))

	if res.Success {
		t.Fatal("Success = true with gas estimator down")
	}
	if !res.FellBack || res.Strategy != domain.StrategyDirect {
		t.Errorf("result = %+v, want direct fallback", res)
	}
	if res.ErrorKind != domain.KindTransport {
		t.Errorf("ErrorKind = %s, want %s", res.ErrorKind, domain.KindTransport)
	}
	if len(h.flash.calls) != 0 || len(h.direct.calls) != 0 {
		t.Error("submitted a transaction without gas params")
	}
}

func TestSelector_UnsafeTokenSkipsWithoutFallback(t *testing.T) {
	h := newHarness()
	h.allowlist = TokenSet{}
	sel := h.build(t)

	res := sel.Execute(context.Background(), amt(t, usdc, "1000"))

	if !res.Skipped {
		t.Fatalf("result = %+v, want skipped", res)
	}
	if res.ErrorKind != domain.KindUnsafeToken {
		t.Errorf("ErrorKind = %s, want %s", res.ErrorKind, domain.KindUnsafeToken)
	}
	if res.CountsTowardBreaker() {
		t.Error("unsafe token counted toward breaker")
	}
	if len(h.flash.calls)+len(h.direct.calls)+len(h.tokens.approvals) != 0 {
		t.Error("unsafe token reached a submission")
	}
}

func TestSelector_InsufficientLiquidityGoesDirect(t *testing.T) {
	h := newHarness()
	h.reserves.balance = big.NewInt(0)
	sel := h.build(t)

	requested := amt(t, usdc, "1000")
	res := sel.Execute(context.Background(), requested)

	if len(h.flash.calls) != 0 {
		t.Errorf("flash calls = %d, want 0 for an empty reserve", len(h.flash.calls))
	}
	if len(h.direct.calls) != 1 || h.direct.calls[0].amount.Cmp(requested.Raw()) != 0 {
		t.Fatalf("direct calls = %+v, want one call with the requested amount", h.direct.calls)
	}
	if !res.Success || res.FellBack {
		t.Errorf("result = %+v, want direct success without fallback flag", res)
	}
	if !res.Size.WasAdjusted {
		t.Error("Size.WasAdjusted = false")
	}
}

func TestSelector_ReserveQueryFailureUsesFallbackAmount(t *testing.T) {
	h := newHarness()
	h.reserves.err = errTransport
	sel := h.build(t)

	res := sel.Execute(context.Background(), amt(t, usdc, "1000"))

	if !res.Success || res.Strategy != domain.StrategyFlash {
		t.Fatalf("result = %+v, want flash success", res)
	}
	want := amt(t, usdc, "100").Raw()
	if got := h.flash.calls[0].amount; got.Cmp(want) != 0 {
		t.Errorf("flash amount = %s, want %s", got, want)
	}
	if !res.Size.UsedFallback {
		t.Error("Size.UsedFallback = false")
	}
}

func TestSelector_ReserveFallbackBelowRequestKeepsRequest(t *testing.T) {
	h := newHarness()
	h.reserves.err = errTransport
	sel := h.build(t)

	requested := amt(t, usdc, "5")
	res := sel.Execute(context.Background(), requested)

	if !res.Success || res.Strategy != domain.StrategyFlash {
		t.Fatalf("result = %+v, want flash success", res)
	}
	if got := h.flash.calls[0].amount; got.Cmp(requested.Raw()) != 0 {
		t.Errorf("flash amount = %s, want %s", got, requested.Raw())
	}
}

func TestSelector_UnsizableFlashGoesDirect(t *testing.T) {
	h := newHarness()
	h.reserves.err = errTransport
	// USDC has 6 decimals, so this fallback cannot be represented.
	h.exec.LiquidityFallbackAmount = "0.0000001"
	sel := h.build(t)

	requested := amt(t, usdc, "1000")
	res := sel.Execute(context.Background(), requested)

	if len(h.flash.calls) != 0 {
		t.Errorf("flash calls = %d, want 0", len(h.flash.calls))
	}
	if len(h.direct.calls) != 1 || h.direct.calls[0].amount.Cmp(requested.Raw()) != 0 {
		t.Fatalf("direct calls = %+v, want one call with the requested amount", h.direct.calls)
	}
	if !res.Success || res.Strategy != domain.StrategyDirect || res.FellBack {
		t.Errorf("result = %+v, want direct success without fallback flag", res)
	}
}

func TestSelector_NotBorrowableGoesDirectCapped(t *testing.T) {
	tests := []struct {
		name       string
		configure  func(h *harness)
		requested  string
		wantAmount string
	}{
		{
			name:       "not in registry, capped",
			configure:  func(h *harness) { h.borrowable = TokenSet{} },
			requested:  "1000",
			wantAmount: "50",
		},
		{
			name:       "not in registry, below cap",
			configure:  func(h *harness) { h.borrowable = TokenSet{} },
			requested:  "20",
			wantAmount: "20",
		},
		{
			name:       "no flash contract",
			configure:  func(h *harness) { h.noFlash = true },
			requested:  "1000",
			wantAmount: "50",
		},
		{
			name: "zero cap means uncapped",
			configure: func(h *harness) {
				h.borrowable = TokenSet{}
				h.exec.DirectDefaultAmount = ""
			},
			requested:  "1000",
			wantAmount: "1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			tt.configure(h)
			sel := h.build(t)

			res := sel.Execute(context.Background(), amt(t, usdc, tt.requested))

			if !res.Success || res.Strategy != domain.StrategyDirect {
				t.Fatalf("result = %+v, want direct success", res)
			}
			if len(h.flash.calls) != 0 {
				t.Error("flash attempted for non-borrowable token")
			}
			want := amt(t, usdc, tt.wantAmount).Raw()
			if got := h.direct.calls[0].amount; got.Cmp(want) != 0 {
				t.Errorf("direct amount = %s, want %s", got, want)
			}
			if h.reserves.queries != 0 {
				t.Errorf("reserve queries = %d, want 0", h.reserves.queries)
			}
		})
	}
}

func TestSelector_DirectPath(t *testing.T) {
	tests := []struct {
		name          string
		configure     func(h *harness)
		wantSuccess   bool
		wantKind      domain.ErrorKind
		wantApprovals int
		wantCalls     int
	}{
		{
			name:          "approves contract then executes",
			wantSuccess:   true,
			wantApprovals: 1,
			wantCalls:     1,
		},
		{
			name:      "insufficient wallet balance is terminal",
			configure: func(h *harness) { h.tokens.balance = big.NewInt(10_000_000) },
			wantKind:  domain.KindInsufficientBalance,
		},
		{
			name:      "balance query failure",
			configure: func(h *harness) { h.tokens.balanceErr = errTransport },
			wantKind:  domain.KindTransport,
		},
		{
			name: "approval reverted",
			configure: func(h *harness) {
				_, h.tokens.approveErr = revertedReceipt(0x03)
			},
			wantKind:      domain.KindApprovalFailed,
			wantApprovals: 1,
		},
		{
			name:          "execution reverted",
			configure:     func(h *harness) { _, h.direct.err = revertedReceipt(0x04) },
			wantKind:      domain.KindExecutionReverted,
			wantApprovals: 1,
			wantCalls:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.borrowable = TokenSet{}
			h.exec.DirectDefaultAmount = ""
			if tt.configure != nil {
				tt.configure(h)
			}
			sel := h.build(t)

			res := sel.Execute(context.Background(), amt(t, usdc, "1000"))

			if res.Success != tt.wantSuccess {
				t.Fatalf("Success = %v, want %v (err %v)", res.Success, tt.wantSuccess, res.Err)
			}
			if res.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %q, want %q", res.ErrorKind, tt.wantKind)
			}
			if res.Skipped {
				t.Error("direct failure reported as skipped")
			}
			if got := len(h.tokens.approvals); got != tt.wantApprovals {
				t.Errorf("approvals = %d, want %d", got, tt.wantApprovals)
			}
			if got := len(h.direct.calls); got != tt.wantCalls {
				t.Errorf("execute calls = %d, want %d", got, tt.wantCalls)
			}
			for _, sp := range h.tokens.spenders {
				if sp != arbContract {
					t.Errorf("approved spender %s, want %s", sp.Hex(), arbContract.Hex())
				}
			}
		})
	}
}
