package aave

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

var (
	pool     = common.HexToAddress("0x794a61358D6845594F94dc1DB02A252b5b4814aD")
	provider = common.HexToAddress("0x69FA688f1Dc47d4B5d8029D5a35FB7a548310654")
	usdc     = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	weth     = common.HexToAddress("0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619")
	aUSDC    = common.HexToAddress("0x625E7708f30cA75bfd92586e17077590C60eb4cD")
)

// fakeCaller decodes the selector against both ABIs and answers with
// pre-set outputs.
type fakeCaller struct {
	abis    []abi.ABI
	outputs map[string][]any
	calls   map[string]int
	err     error
}

func newFakeCaller(t *testing.T, outputs map[string][]any) *fakeCaller {
	t.Helper()
	var abis []abi.ABI
	for _, def := range []string{PoolABI, DataProviderABI} {
		parsed, err := abi.JSON(strings.NewReader(def))
		if err != nil {
			t.Fatalf("parse abi: %v", err)
		}
		abis = append(abis, parsed)
	}
	return &fakeCaller{abis: abis, outputs: outputs, calls: map[string]int{}}
}

func (f *fakeCaller) Call(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.abis {
		if m, err := a.MethodById(data[:4]); err == nil {
			f.calls[m.Name]++
			return m.Outputs.Pack(f.outputs[m.Name]...)
		}
	}
	return nil, apperror.New(apperror.CodeExecutionReverted)
}

type fakeBalances struct {
	owner   common.Address
	balance *big.Int
}

func (f *fakeBalances) BalanceOf(_ context.Context, _, owner common.Address) (*big.Int, error) {
	f.owner = owner
	return f.balance, nil
}

func TestReserves_ReservesList(t *testing.T) {
	caller := newFakeCaller(t, map[string][]any{
		"getReservesList": {[]common.Address{usdc, weth}},
	})
	r, err := NewReserves(caller, &fakeBalances{}, pool, provider)
	if err != nil {
		t.Fatalf("NewReserves: %v", err)
	}
	defer r.Close()

	list, err := r.ReservesList(context.Background())
	if err != nil {
		t.Fatalf("ReservesList() error = %v", err)
	}
	if len(list) != 2 || list[0] != usdc || list[1] != weth {
		t.Errorf("ReservesList() = %v", list)
	}
}

func TestReserves_ReserveBalanceReadsATokenHoldings(t *testing.T) {
	caller := newFakeCaller(t, map[string][]any{
		"getReserveTokensAddresses": {aUSDC, common.Address{}, common.Address{}},
	})
	balances := &fakeBalances{balance: big.NewInt(500_000_000)}
	r, err := NewReserves(caller, balances, pool, provider)
	if err != nil {
		t.Fatalf("NewReserves: %v", err)
	}
	defer r.Close()

	for i := 0; i < 2; i++ {
		bal, err := r.ReserveBalance(context.Background(), usdc)
		if err != nil {
			t.Fatalf("ReserveBalance() error = %v", err)
		}
		if bal.Int64() != 500_000_000 {
			t.Errorf("ReserveBalance() = %s, want 500000000", bal)
		}
	}

	if balances.owner != aUSDC {
		t.Errorf("balance read for %s, want aToken %s", balances.owner.Hex(), aUSDC.Hex())
	}
	if n := caller.calls["getReserveTokensAddresses"]; n != 1 {
		t.Errorf("aToken lookups = %d, want 1 (cached)", n)
	}
}

func TestReserves_Errors(t *testing.T) {
	tests := []struct {
		name    string
		outputs map[string][]any
		err     error
	}{
		{
			name: "not a reserve",
			outputs: map[string][]any{
				"getReserveTokensAddresses": {common.Address{}, common.Address{}, common.Address{}},
			},
		},
		{
			name: "rpc failure",
			err:  apperror.New(apperror.CodeTransportError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := newFakeCaller(t, tt.outputs)
			caller.err = tt.err
			r, err := NewReserves(caller, &fakeBalances{balance: big.NewInt(1)}, pool, provider)
			if err != nil {
				t.Fatalf("NewReserves: %v", err)
			}
			defer r.Close()

			_, err = r.ReserveBalance(context.Background(), usdc)
			if !apperror.HasCode(err, apperror.CodeLiquidityQueryFailed) {
				t.Errorf("ReserveBalance() error = %v, want LIQUIDITY_QUERY_FAILED", err)
			}
		})
	}
}
