package ethereum

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

// fakeCaller answers eth_call with pre-packed outputs keyed by method name.
type fakeCaller struct {
	abi     abi.ABI
	outputs map[string][]any
	err     error
	calls   map[string]int
}

func newFakeCaller(t *testing.T, outputs map[string][]any) *fakeCaller {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(ERC20ABI))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	return &fakeCaller{abi: parsed, outputs: outputs, calls: map[string]int{}}
}

func (f *fakeCaller) Call(_ context.Context, _ common.Address, data []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	method, err := f.abi.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	f.calls[method.Name]++
	return method.Outputs.Pack(f.outputs[method.Name]...)
}

type fakeSubmitter struct {
	to   common.Address
	data []byte
	err  error
}

func (f *fakeSubmitter) SendAndConfirm(_ context.Context, to common.Address, data []byte, _ domain.GasParams) (*domain.Receipt, error) {
	f.to = to
	f.data = data
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Receipt{Succeeded: true}, nil
}

var (
	testToken = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	testOwner = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

func TestERC20MetadataIsCached(t *testing.T) {
	caller := newFakeCaller(t, map[string][]any{
		"decimals": {uint8(6)},
		"symbol":   {"USDC"},
	})
	token, err := NewERC20(caller, nil)
	if err != nil {
		t.Fatalf("NewERC20: %v", err)
	}
	defer token.Close()

	for i := 0; i < 3; i++ {
		d, err := token.Decimals(context.Background(), testToken)
		if err != nil {
			t.Fatalf("Decimals: %v", err)
		}
		if d != 6 {
			t.Errorf("Decimals = %d, want 6", d)
		}
	}
	sym, err := token.Symbol(context.Background(), testToken)
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	if sym != "USDC" {
		t.Errorf("Symbol = %q, want USDC", sym)
	}

	if caller.calls["decimals"] != 1 {
		t.Errorf("decimals calls = %d, want 1", caller.calls["decimals"])
	}
}

func TestERC20BalanceOf(t *testing.T) {
	caller := newFakeCaller(t, map[string][]any{
		"balanceOf": {big.NewInt(1_500_000)},
	})
	token, err := NewERC20(caller, nil)
	if err != nil {
		t.Fatalf("NewERC20: %v", err)
	}
	defer token.Close()

	bal, err := token.BalanceOf(context.Background(), testToken, testOwner)
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if bal.Cmp(big.NewInt(1_500_000)) != 0 {
		t.Errorf("BalanceOf = %s, want 1500000", bal)
	}
}

func TestERC20MetadataFailure(t *testing.T) {
	caller := newFakeCaller(t, nil)
	caller.err = errors.New("dial tcp: timeout")
	token, err := NewERC20(caller, nil)
	if err != nil {
		t.Fatalf("NewERC20: %v", err)
	}
	defer token.Close()

	_, err = token.Decimals(context.Background(), testToken)
	if apperror.GetCode(err) != apperror.CodeTokenMetadataFailed {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeTokenMetadataFailed)
	}
}

func TestERC20Approve(t *testing.T) {
	spender := common.HexToAddress("0x2222222222222222222222222222222222222222")

	t.Run("without signer", func(t *testing.T) {
		token, err := NewERC20(newFakeCaller(t, nil), nil)
		if err != nil {
			t.Fatalf("NewERC20: %v", err)
		}
		defer token.Close()

		_, err = token.Approve(context.Background(), testToken, spender, big.NewInt(1), domain.GasParams{})
		if apperror.GetCode(err) != apperror.CodeSignerUnavailable {
			t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeSignerUnavailable)
		}
	})

	t.Run("encodes approve", func(t *testing.T) {
		sub := &fakeSubmitter{}
		token, err := NewERC20(newFakeCaller(t, nil), sub)
		if err != nil {
			t.Fatalf("NewERC20: %v", err)
		}
		defer token.Close()

		if _, err := token.Approve(context.Background(), testToken, spender, big.NewInt(42), domain.GasParams{}); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if sub.to != testToken {
			t.Errorf("to = %s, want token %s", sub.to.Hex(), testToken.Hex())
		}
		args, err := token.abi.Methods["approve"].Inputs.Unpack(sub.data[4:])
		if err != nil {
			t.Fatalf("unpack: %v", err)
		}
		if args[0].(common.Address) != spender || args[1].(*big.Int).Int64() != 42 {
			t.Errorf("approve args = %v", args)
		}
	})

	t.Run("submit failure", func(t *testing.T) {
		sub := &fakeSubmitter{err: apperror.New(apperror.CodeExecutionReverted)}
		token, err := NewERC20(newFakeCaller(t, nil), sub)
		if err != nil {
			t.Fatalf("NewERC20: %v", err)
		}
		defer token.Close()

		_, err = token.Approve(context.Background(), testToken, spender, big.NewInt(1), domain.GasParams{})
		if apperror.GetCode(err) != apperror.CodeApprovalFailed {
			t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeApprovalFailed)
		}
	})
}
