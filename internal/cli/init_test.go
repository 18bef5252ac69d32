package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budget/internal/config"
)

func TestLoadAndValidateConfig_Overrides(t *testing.T) {
	t.Setenv("BUDGET_CONFIG", "")
	t.Setenv("BUDGET_DATA_FILE", "/from/env.json")

	cfg, err := LoadAndValidateConfig("", func(c *config.Config) { c.DataFile = "/from/flag.json" })
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.json", cfg.DataFile)
}

func TestLoadAndValidateConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.yaml")
	require.NoError(t, os.WriteFile(path, []byte("currency_symbol: \"€\"\n"), 0o600))
	t.Setenv("CURRENCY_SYMBOL", "")
	t.Setenv("BUDGET_CONFIG", path)

	cfg, err := LoadAndValidateConfig("")
	require.NoError(t, err)
	assert.Equal(t, "€", cfg.CurrencySymbol)
}

func TestLoadAndValidateConfig_Invalid(t *testing.T) {
	t.Setenv("BUDGET_CONFIG", "")
	t.Setenv("PORT", "not-a-port")

	_, err := LoadAndValidateConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"

	logger := SetupLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.True(t, strings.Contains(out, `"component":"cli"`))
}
