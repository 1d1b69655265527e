package blockchain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/dex-arbitrage-bot/internal/asset"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

type fakeMetadata struct {
	decimals map[common.Address]uint8
}

func (f *fakeMetadata) Decimals(_ context.Context, token common.Address) (uint8, error) {
	d, ok := f.decimals[token]
	if !ok {
		return 0, errors.New("no contract")
	}
	return d, nil
}

func (f *fakeMetadata) Symbol(context.Context, common.Address) (string, error) {
	return "", nil
}

type mockLogger struct{ warnings int }

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               { m.warnings++ }
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

func TestResolveTokens(t *testing.T) {
	usdc := common.HexToAddress("0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174")
	newTok := common.HexToAddress("0x1111111111111111111111111111111111111111")

	cfg := &config.Config{
		Chain: config.ChainConfig{ChainID: 137},
		Tokens: []config.TokenConfig{
			{Symbol: "USDC", Address: usdc.Hex(), Decimals: 18},
			{Symbol: "NEW", Address: newTok.Hex()},
		},
	}
	reg := asset.NewRegistry(137)
	meta := &fakeMetadata{decimals: map[common.Address]uint8{usdc: 6, newTok: 9}}
	log := &mockLogger{}

	if err := ResolveTokens(context.Background(), cfg, reg, meta, log); err != nil {
		t.Fatalf("ResolveTokens: %v", err)
	}

	got, ok := reg.GetBySymbol("NEW")
	if !ok {
		t.Fatal("NEW not registered")
	}
	if got.Decimals() != 9 {
		t.Errorf("NEW decimals = %d, want 9", got.Decimals())
	}
	if log.warnings != 1 {
		t.Errorf("warnings = %d, want 1 (USDC mismatch)", log.warnings)
	}
}

func TestResolveTokensFailsForUnknownDecimals(t *testing.T) {
	cfg := &config.Config{
		Chain:  config.ChainConfig{ChainID: 137},
		Tokens: []config.TokenConfig{{Symbol: "NEW", Address: "0x1111111111111111111111111111111111111111"}},
	}

	err := ResolveTokens(context.Background(), cfg, asset.NewRegistry(137), &fakeMetadata{}, &mockLogger{})
	if err == nil {
		t.Fatal("expected error for token without decimals")
	}
}
