package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadMainConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)

	assert.Equal(t, "./output", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "ISO-8859-1", cfg.Encoding)
	assert.Equal(t, 1.0, *cfg.Threshold)
	assert.Equal(t, 9, cfg.CompareField)
	assert.Equal(t, 7, cfg.DocumentField)
	assert.Equal(t, "30000000007", cfg.GenericIDs.LegalEntity)
	assert.Equal(t, "20222222223", cfg.GenericIDs.NaturalPerson)
	assert.Equal(t, []string{"json"}, cfg.Report.Formats)
	assert.Equal(t, "final_report_{datetime}", cfg.Report.FileNameFormat)
	assert.False(t, cfg.Report.IncludeSummary)
	assert.Equal(t, "afip", cfg.Validator.Provider)
	assert.Equal(t, 100, cfg.Validator.ChunkSize)
}

func TestLoadMainConfig_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
output_dir: ./reconciled
log_level: debug
threshold: 0
report:
  formats: [json, xlsx]
  include_summary: true
validator:
  provider: checksum
  pause_duration: 90s
`)

	cfg, err := LoadMainConfig(path, "")
	require.NoError(t, err)

	assert.Equal(t, "./reconciled", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 0.0, *cfg.Threshold)
	assert.Equal(t, []string{"json", "xlsx"}, cfg.Report.Formats)
	assert.True(t, cfg.Report.IncludeSummary)
	assert.Equal(t, "checksum", cfg.Validator.Provider)
	assert.Equal(t, 90*time.Second, cfg.Validator.PauseDuration)
}

func TestLoadMainConfig_ProviderList(t *testing.T) {
	path := writeFile(t, "config.yaml", "validator:\n  provider: \"afip, checksum\"\n")

	cfg, err := LoadMainConfig(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"afip", "checksum"}, SplitProviders(cfg.Validator.Provider))
}

func TestLoadMainConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"log level":     "log_level: loud\n",
		"threshold":     "threshold: -1\n",
		"format":        "report:\n  formats: [pdf]\n",
		"provider":      "validator:\n  provider: oracle\n",
		"provider list": "validator:\n  provider: afip,oracle\n",
		"empty list":    "validator:\n  provider: \" , \"\n",
		"generic id":    "generic_ids:\n  legal_entity: \"123\"\n",
		"broken yaml":   "output_dir: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadMainConfig(writeFile(t, "config.yaml", content), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadMainConfig_EnvFile(t *testing.T) {
	for _, key := range []string{"AFIP_BASE_URL", "AFIP_USERNAME", "AFIP_CHUNK_SIZE", "AFIP_PAUSE_DURATION", "AFIP_SERVICES_AVAILABLE"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	env := writeFile(t, ".env", `AFIP_BASE_URL=https://afip.example.com/api
AFIP_USERNAME=robot
AFIP_CHUNK_SIZE=50
AFIP_PAUSE_DURATION=3
AFIP_SERVICES_AVAILABLE=inscription, padron
`)

	cfg, err := LoadMainConfig("", env)
	require.NoError(t, err)

	assert.Equal(t, "https://afip.example.com/api", cfg.Validator.BaseURL)
	assert.Equal(t, "robot", cfg.Validator.Username)
	assert.Equal(t, 50, cfg.Validator.ChunkSize)
	assert.Equal(t, 3*time.Second, cfg.Validator.PauseDuration)
	assert.Equal(t, []string{"inscription", "padron"}, cfg.Validator.ServicesAvailable)
}

func TestApplyEnvOverrides_BadNumber(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == "AFIP_MAX_RETRIES" {
			return "many", true
		}
		return "", false
	}

	var v ValidatorConfig
	assert.Error(t, applyEnvOverrides(&v, lookup))
}

func TestParseSeconds(t *testing.T) {
	d, err := parseSeconds("2")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d)

	d, err = parseSeconds("1m30s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}
