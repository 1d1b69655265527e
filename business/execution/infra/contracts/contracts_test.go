package contracts

import (
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/business/blockchain/domain"
	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

type fakeSubmitter struct {
	to   common.Address
	data []byte
	err  error
}

func (f *fakeSubmitter) SendAndConfirm(_ context.Context, to common.Address, data []byte, _ domain.GasParams) (*domain.Receipt, error) {
	f.to = to
	f.data = data
	if f.err != nil {
		return &domain.Receipt{}, f.err
	}
	return &domain.Receipt{Succeeded: true, GasUsed: 300_000}, nil
}

var (
	flashAddr = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	arbAddr   = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	token     = common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
)

func decodeArgs(t *testing.T, definition, method string, data []byte) (common.Address, *big.Int) {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		t.Fatalf("MethodById: %v", err)
	}
	if m.Name != method {
		t.Fatalf("method = %s, want %s", m.Name, method)
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	return args[0].(common.Address), args[1].(*big.Int)
}

func TestContracts_PackAndSubmit(t *testing.T) {
	tests := []struct {
		name       string
		definition string
		method     string
		to         common.Address
		run        func(s Submitter, amount *big.Int) (*domain.Receipt, error)
	}{
		{
			name:       "flash loan",
			definition: FlashLoanABI,
			method:     "executeFlashLoan",
			to:         flashAddr,
			run: func(s Submitter, amount *big.Int) (*domain.Receipt, error) {
				f, err := NewFlashLoan(flashAddr, s)
				if err != nil {
					return nil, err
				}
				return f.ExecuteFlashLoan(context.Background(), token, amount, domain.GasParams{})
			},
		},
		{
			name:       "direct arbitrage",
			definition: ArbitrageABI,
			method:     "executeArbitrage",
			to:         arbAddr,
			run: func(s Submitter, amount *big.Int) (*domain.Receipt, error) {
				a, err := NewArbitrage(arbAddr, s)
				if err != nil {
					return nil, err
				}
				return a.ExecuteArbitrage(context.Background(), token, amount, domain.GasParams{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSubmitter{}
			amount := big.NewInt(1_000_000_000)

			receipt, err := tt.run(s, amount)
			if err != nil {
				t.Fatalf("submit error = %v", err)
			}
			if !receipt.Succeeded {
				t.Error("receipt not successful")
			}
			if s.to != tt.to {
				t.Errorf("sent to %s, want %s", s.to.Hex(), tt.to.Hex())
			}

			gotToken, gotAmount := decodeArgs(t, tt.definition, tt.method, s.data)
			if gotToken != token || gotAmount.Cmp(amount) != 0 {
				t.Errorf("args = (%s, %s), want (%s, %s)", gotToken.Hex(), gotAmount, token.Hex(), amount)
			}
		})
	}
}

func TestContracts_RevertPropagates(t *testing.T) {
	s := &fakeSubmitter{err: apperror.New(apperror.CodeExecutionReverted)}
	f, err := NewFlashLoan(flashAddr, s)
	if err != nil {
		t.Fatalf("NewFlashLoan: %v", err)
	}

	_, err = f.ExecuteFlashLoan(context.Background(), token, big.NewInt(1), domain.GasParams{})
	if !apperror.HasCode(err, apperror.CodeExecutionReverted) {
		t.Errorf("error = %v, want EXECUTION_REVERTED", err)
	}
}

func TestContracts_RequireSubmitter(t *testing.T) {
	if _, err := NewArbitrage(arbAddr, nil); !apperror.HasCode(err, apperror.CodeSignerUnavailable) {
		t.Errorf("NewArbitrage(nil) error = %v, want SIGNER_UNAVAILABLE", err)
	}
}
