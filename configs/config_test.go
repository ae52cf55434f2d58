package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: checkout-api
  http_addr: ":8084"
mysql:
  dsn: "u:p@tcp(localhost:3306)/checkout?parseTime=true"
redis:
  addr: "localhost:6379"
checkout:
  ttl_seconds: 900
  expiry_check_interval_seconds: 60
`

func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func TestLoad_BaseOnly(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})

	cfg, err := Load(dir, "dev")
	require.NoError(t, err)
	assert.Equal(t, ":8084", cfg.App.HTTPAddr)
	assert.Equal(t, 900, cfg.Checkout.TTLSeconds)
}

func TestLoad_EnvFileOverrides(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"base.yaml": baseYAML,
		"prod.yaml": "app:\n  http_addr: \":9090\"\n",
	})

	cfg, err := Load(dir, "prod")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.App.HTTPAddr)
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": baseYAML})

	t.Setenv("CHECKOUTAPI_REDIS__ADDR", "redis-prod:6379")
	cfg, err := Load(dir, "dev")
	require.NoError(t, err)
	assert.Equal(t, "redis-prod:6379", cfg.Redis.Addr)
}

func TestLoad_ValidationFailures(t *testing.T) {
	dir := writeConfigs(t, map[string]string{"base.yaml": `
app:
  http_addr: ":8084"
mysql:
  dsn: "u:p@tcp(localhost:3306)/checkout"
redis:
  addr: "localhost:6379"
checkout:
  ttl_seconds: 0
  expiry_check_interval_seconds: 60
`})

	_, err := Load(dir, "dev")
	assert.ErrorContains(t, err, "ttl_seconds")
}
