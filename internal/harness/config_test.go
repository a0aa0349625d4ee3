package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"default", func(*Config) {}, ""},
		{"empty order", func(c *Config) { c.Order = "" }, ""},
		{"no name", func(c *Config) { c.Target.Name = "" }, "target name is required"},
		{"no symbol", func(c *Config) { c.Target.Symbol = "" }, "target symbol is required"},
		{"zero supply", func(c *Config) { c.Target.MaxSupply = 0 }, "max supply must be positive"},
		{"zero ceiling", func(c *Config) { c.CostCeiling = 0 }, "cost ceiling must be positive"},
		{"zero mints", func(c *Config) { c.MintCount = 0 }, "mint count must be at least 1"},
		{"mints beyond supply", func(c *Config) { c.MintCount = 11 }, "mint count 11 exceeds target max supply 10"},
		{"bad order", func(c *Config) { c.Order = "random" }, `unknown order "random"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	assert.ErrorContains(t, err, "target name is required")
	assert.ErrorContains(t, err, "cost ceiling must be positive")
}

func TestCheckFailure(t *testing.T) {
	f := &CheckFailure{Check: "x", Expected: "total supply 0", Actual: "1"}
	assert.Equal(t, "expected total supply 0, got 1", f.Detail())
	assert.Equal(t, "check x failed: expected total supply 0, got 1", f.Error())
}

func TestReasonContains(t *testing.T) {
	assert.True(t, reasonContains("ERC721: mint to the zero address", "mint to the zero address"))
	assert.False(t, reasonContains("ERC721: invalid token ID", "mint to the zero address"))
	// precomposed é against e + combining acute accent
	assert.True(t, reasonContains("caf\u00e9 closed", "cafe\u0301"))
	assert.True(t, reasonContains("cafe\u0301 closed", "caf\u00e9"))
}
