package domain

import (
	"math/big"
	"testing"
)

func TestNetworkFeeForTier(t *testing.T) {
	fee := NetworkFee{
		BaseFee: big.NewInt(100),
		TipCap:  big.NewInt(40),
	}

	tests := []struct {
		tier       SpeedTier
		wantMaxFee int64
		wantTip    int64
	}{
		{SpeedDefault, 240, 40},
		{SpeedFast, 300, 50},
		{SpeedFastest, 360, 60},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			got := fee.ForTier(tt.tier, 21000)
			if got.MaxFeePerGas.Int64() != tt.wantMaxFee {
				t.Errorf("MaxFeePerGas = %s, want %d", got.MaxFeePerGas, tt.wantMaxFee)
			}
			if got.MaxPriorityFeePerGas.Int64() != tt.wantTip {
				t.Errorf("MaxPriorityFeePerGas = %s, want %d", got.MaxPriorityFeePerGas, tt.wantTip)
			}
			if got.GasLimit != 21000 {
				t.Errorf("GasLimit = %d, want 21000", got.GasLimit)
			}
		})
	}
}

func TestParseSpeedTier(t *testing.T) {
	tests := []struct {
		in      string
		want    SpeedTier
		wantErr bool
	}{
		{"", SpeedDefault, false},
		{"FAST", SpeedFast, false},
		{"fastest", SpeedFastest, false},
		{"ludicrous", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSpeedTier(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSpeedTier(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSpeedTier(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
