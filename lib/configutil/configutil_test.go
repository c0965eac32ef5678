package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DashboardUrl string `json:"dashboard_url"`
	PriceFile    string `json:"price_file"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "spotprice.json5")

	err := os.WriteFile(name, []byte(`{
		// checked-in defaults
		dashboard_url: "https://example.test/dashboard",
		price_file: ".price",
	}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://example.test/dashboard", config.DashboardUrl)
	require.Equal(t, ".price", config.PriceFile)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "spotprice.json5")

	err := os.WriteFile(name, []byte(`{
		dashboard_url: "https://example.test/dashboard",
		price_file: ".price",
	}`), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "spotprice.local.json5"), []byte(`{
		price_file: "/tmp/override.price",
	}`), 0o644)
	require.NoError(t, err)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "https://example.test/dashboard", config.DashboardUrl)
	require.Equal(t, "/tmp/override.price", config.PriceFile)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "nope.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
