package monolith

import (
	"testing"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
	"github.com/fd1az/dex-arbitrage-bot/internal/config"
)

func TestBuildRegistry(t *testing.T) {
	cfg := &config.Config{
		Chain: config.ChainConfig{ChainID: 137},
		Tokens: []config.TokenConfig{
			{Symbol: "USDC", Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Decimals: 6},
			{Symbol: "WETH", Address: "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", Decimals: 18},
			{Symbol: "NEW", Address: "0x1111111111111111111111111111111111111111"},
		},
	}

	reg, err := BuildRegistry(cfg)
	if err != nil {
		t.Fatalf("BuildRegistry: %v", err)
	}
	if reg.Count() != 2 {
		t.Errorf("Count = %d, want 2 (unknown decimals skipped)", reg.Count())
	}
	usdc, ok := reg.GetBySymbol("usdc")
	if !ok || usdc.Decimals() != 6 {
		t.Errorf("USDC = %v, want 6 decimals", usdc)
	}
}

func TestBuildRegistryDuplicate(t *testing.T) {
	cfg := &config.Config{
		Chain: config.ChainConfig{ChainID: 137},
		Tokens: []config.TokenConfig{
			{Symbol: "USDC", Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Decimals: 6},
			{Symbol: "USDC2", Address: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", Decimals: 6},
		},
	}

	_, err := BuildRegistry(cfg)
	if apperror.GetCode(err) != apperror.CodeConfigurationError {
		t.Errorf("code = %s, want %s", apperror.GetCode(err), apperror.CodeConfigurationError)
	}
}
