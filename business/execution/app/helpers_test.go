package app

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	blockchainDomain "github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
	"github.com/fd1az/dex-arbitrage-bot/internal/retry"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var (
	usdc = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrUSDCePolygon), "USDC", 6)
	dai  = asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrDAIPolygon), "DAI", 18)

	owner        = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	arbContract  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	testPolicy   = retry.Policy{MaxRetries: 1}
	errTransport = apperror.New(apperror.CodeTransportError, apperror.WithContext("rpc down"))
)

func amt(t *testing.T, a *asset.Asset, s string) asset.Amount {
	t.Helper()
	v, err := asset.ParseString(a, s)
	if err != nil {
		t.Fatalf("ParseString(%q): %v", s, err)
	}
	return v
}

func minedReceipt(b byte) *blockchainDomain.Receipt {
	return &blockchainDomain.Receipt{
		TxHash:    common.BytesToHash([]byte{b}),
		GasUsed:   210_000,
		Succeeded: true,
	}
}

func revertedReceipt(b byte) (*blockchainDomain.Receipt, error) {
	r := minedReceipt(b)
	r.Succeeded = false
	return r, apperror.New(apperror.CodeExecutionReverted, apperror.WithContext(r.TxHash.Hex()))
}

type call struct {
	token  common.Address
	amount *big.Int
}

type fakeReserves struct {
	balance *big.Int
	err     error
	list    []common.Address
	listErr error
	queries int
}

func (f *fakeReserves) ReserveBalance(ctx context.Context, token common.Address) (*big.Int, error) {
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	return f.balance, nil
}

func (f *fakeReserves) ReservesList(ctx context.Context) ([]common.Address, error) {
	return f.list, f.listErr
}

type fakeFlash struct {
	err     error
	receipt *blockchainDomain.Receipt
	calls   []call
}

func (f *fakeFlash) ExecuteFlashLoan(ctx context.Context, token common.Address, amount *big.Int, gas blockchainDomain.GasParams) (*blockchainDomain.Receipt, error) {
	f.calls = append(f.calls, call{token, new(big.Int).Set(amount)})
	if f.err != nil {
		return f.receipt, f.err
	}
	return minedReceipt(0x0f), nil
}

type fakeDirect struct {
	err     error
	receipt *blockchainDomain.Receipt
	calls   []call
}

func (f *fakeDirect) Address() common.Address { return arbContract }

func (f *fakeDirect) ExecuteArbitrage(ctx context.Context, token common.Address, amount *big.Int, gas blockchainDomain.GasParams) (*blockchainDomain.Receipt, error) {
	f.calls = append(f.calls, call{token, new(big.Int).Set(amount)})
	if f.err != nil {
		return f.receipt, f.err
	}
	return minedReceipt(0x0d), nil
}

type fakeTokens struct {
	balance    *big.Int
	balanceErr error
	approveErr error
	approvals  []call
	spenders   []common.Address
}

func (f *fakeTokens) BalanceOf(ctx context.Context, token, who common.Address) (*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeTokens) Approve(ctx context.Context, token, spender common.Address, amount *big.Int, gas blockchainDomain.GasParams) (*blockchainDomain.Receipt, error) {
	f.approvals = append(f.approvals, call{token, new(big.Int).Set(amount)})
	f.spenders = append(f.spenders, spender)
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return minedReceipt(0x0a), nil
}

type fakeGas struct {
	err error
}

func (f *fakeGas) Estimate(ctx context.Context, tier blockchainDomain.SpeedTier) (blockchainDomain.GasParams, error) {
	if f.err != nil {
		return blockchainDomain.GasParams{}, f.err
	}
	return blockchainDomain.GasParams{
		Tier:                 tier,
		MaxFeePerGas:         big.NewInt(100_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(30_000_000_000),
		GasLimit:             1_500_000,
	}, nil
}

// harness wires a Selector over fakes. USDC is borrowable and allow-listed
// with ample reserve and wallet balance; tests override fields before build.
type harness struct {
	reserves   *fakeReserves
	flash      *fakeFlash
	direct     *fakeDirect
	tokens     *fakeTokens
	gas        *fakeGas
	borrowable TokenSet
	allowlist  TokenSet
	exec       config.ExecutionConfig
	noFlash    bool
}

func newHarness() *harness {
	ample, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	return &harness{
		reserves:   &fakeReserves{balance: ample},
		flash:      &fakeFlash{},
		direct:     &fakeDirect{},
		tokens:     &fakeTokens{balance: ample},
		gas:        &fakeGas{},
		borrowable: TokenSet{usdc.Address(): {}},
		allowlist:  TokenSet{usdc.Address(): {}},
		exec: config.ExecutionConfig{
			LiquidityFallbackAmount: "100",
			DirectDefaultAmount:     "50",
		},
	}
}

func (h *harness) build(t *testing.T) *Selector {
	t.Helper()
	limits, err := NewLimits(h.exec, nil)
	if err != nil {
		t.Fatalf("NewLimits() error = %v", err)
	}
	var flash FlashExecutor
	if !h.noFlash {
		flash = h.flash
	}
	return NewSelector(SelectorConfig{
		Flash:      flash,
		Direct:     h.direct,
		Tokens:     h.tokens,
		Gas:        h.gas,
		Gate:       NewLiquidityGate(h.reserves, limits, testPolicy, &mockLogger{}),
		Limits:     limits,
		Borrowable: NewBorrowableRegistry(h.borrowable),
		Allowlist:  h.allowlist,
		Owner:      owner,
		GasSpeed:   blockchainDomain.SpeedFast,
		Retry:      testPolicy,
	}, &mockLogger{})
}

var errBoom = errors.New("boom")
