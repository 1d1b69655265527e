package algebra

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/pricing/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
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

type quoterCaller struct {
	abi      abi.ABI
	out      int64
	fee      uint16
	revert   bool
	amountIn *big.Int
}

func (c *quoterCaller) Call(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	if c.revert {
		return nil, apperror.New(apperror.CodeExecutionReverted)
	}
	method := c.abi.Methods["quoteExactInputSingle"]
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	c.amountIn = args[2].(*big.Int)
	return method.Outputs.Pack(big.NewInt(c.out), c.fee)
}

func TestQuoterQuote(t *testing.T) {
	usdc := asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrUSDCePolygon), "USDC", 6)
	weth := asset.NewAsset(asset.NewTokenAssetID(asset.ChainIDPolygon, asset.AddrWETHPolygon), "WETH", 18)
	pair, err := domain.NewTokenPair(usdc, weth, asset.NewAmount(usdc, big.NewInt(1_000_000_000)))
	if err != nil {
		t.Fatalf("NewTokenPair: %v", err)
	}

	parsed, err := abi.JSON(strings.NewReader(QuoterABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}

	venue := config.VenueConfig{
		ID:     "quickswap_v3",
		Kind:   config.VenueKindAlgebra,
		Quoter: "0xa15F0D7377B2A0C0c10db057f641beD21028FC89",
	}

	t.Run("ok", func(t *testing.T) {
		caller := &quoterCaller{abi: parsed, out: 415, fee: 900}
		q, err := NewQuoter(caller, venue, &mockLogger{})
		if err != nil {
			t.Fatalf("NewQuoter: %v", err)
		}

		quote, err := q.Quote(context.Background(), pair)
		if err != nil {
			t.Fatalf("Quote: %v", err)
		}
		if quote.AmountOut.Raw().Int64() != 415 {
			t.Errorf("AmountOut = %s, want 415", quote.AmountOut.Raw())
		}
		if quote.FeeTier != 900 {
			t.Errorf("FeeTier = %d, want 900", quote.FeeTier)
		}
		if caller.amountIn.Int64() != 1_000_000_000 {
			t.Errorf("amountIn = %s, want 1000000000", caller.amountIn)
		}
	})

	t.Run("revert", func(t *testing.T) {
		q, err := NewQuoter(&quoterCaller{abi: parsed, revert: true}, venue, &mockLogger{})
		if err != nil {
			t.Fatalf("NewQuoter: %v", err)
		}

		_, err = q.Quote(context.Background(), pair)
		if apperror.GetCode(err) != apperror.CodeQuoteUnavailable {
			t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeQuoteUnavailable)
		}
		if !apperror.HasCode(err, apperror.CodeExecutionReverted) {
			t.Error("revert code lost")
		}
	})
}
