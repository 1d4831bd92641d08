package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		fileContent string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Equal(t, int64(32<<20), cfg.Limits.MaxUploadBytes)
				assert.Equal(t, 36600, cfg.Limits.MaxRangeDays)

				assert.Equal(t, "utf-8", cfg.Consolidation.PrimaryEncoding)
				assert.Equal(t, "windows-1252", cfg.Consolidation.FallbackEncoding)
				assert.Equal(t, "first", cfg.Consolidation.KeepDuplicate)
				assert.Equal(t, 10, cfg.Consolidation.PreviewRows)
				assert.Equal(t, "2024-04-17", cfg.Consolidation.DefaultStart)
				assert.Equal(t, "2025-04-17", cfg.Consolidation.DefaultEnd)
				assert.Equal(t, "acciones_consolidadas", cfg.Consolidation.OutputName)
				assert.False(t, cfg.Consolidation.SkipInvalidFiles)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"CONSOLIDATOR_SERVER_PORT":                      "9090",
				"CONSOLIDATOR_LOGGING_LEVEL":                    "debug",
				"CONSOLIDATOR_CONSOLIDATION_KEEP_DUPLICATE":     "last",
				"CONSOLIDATOR_CONSOLIDATION_SKIP_INVALID_FILES": "true",
				"CONSOLIDATOR_SECURITY_ALLOWED_ORIGINS":         "http://a.test,http://b.test",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "last", cfg.Consolidation.KeepDuplicate)
				assert.True(t, cfg.Consolidation.SkipInvalidFiles)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
			},
		},
		{
			name: "file overrides defaults and env overrides file",
			fileContent: `
server:
  port: 7070
  read_timeout: 5s
consolidation:
  preview_rows: 25
  sheet_name: Precios
`,
			env: map[string]string{
				"CONSOLIDATOR_SERVER_PORT": "7171",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7171, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 25, cfg.Consolidation.PreviewRows)
				assert.Equal(t, "Precios", cfg.Consolidation.SheetName)
				// untouched values keep their defaults
				assert.Equal(t, "utf-8", cfg.Consolidation.PrimaryEncoding)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"CONSOLIDATOR_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "unknown duplicate policy",
			env:     map[string]string{"CONSOLIDATOR_CONSOLIDATION_KEEP_DUPLICATE": "random"},
			wantErr: true,
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"CONSOLIDATOR_LIMITS_MAX_FILES": "many"},
			wantErr: true,
		},
		{
			name:        "malformed yaml",
			fileContent: "server: [",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.fileContent != "" {
				path = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.fileContent), 0644))
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "xml"
	cfg.Logging.Output = "file"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "file", cfg.Logging.Output)
	assert.Equal(t, "logs/consolidator.log", cfg.Logging.FilePath)
}

func TestAddress(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Address())

	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000
	assert.Equal(t, "127.0.0.1:9000", cfg.Address())
}
