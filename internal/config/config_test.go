package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"CLINICDESK_BACKEND", "CLINICDESK_DB", "CLINICDESK_POSTGRES_DSN", "CLINICDESK_LOG_LEVEL", "CLINICDESK_METRICS_FILE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "clinicdesk.db", cfg.DBPath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Empty(t, cfg.MetricsFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CLINICDESK_BACKEND", "postgres")
	t.Setenv("CLINICDESK_POSTGRES_DSN", "postgres://u:p@localhost/clinic")
	t.Setenv("CLINICDESK_LOG_LEVEL", "debug")
	t.Setenv("CLINICDESK_METRICS_FILE", "/tmp/clinic.prom")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "postgres://u:p@localhost/clinic", cfg.PostgresDSN)
	assert.Equal(t, "/tmp/clinic.prom", cfg.MetricsFile)
	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite ok", Config{Backend: BackendSQLite, DBPath: "x.db", LogLevel: "info"}, false},
		{"sqlite no path", Config{Backend: BackendSQLite, LogLevel: "info"}, true},
		{"postgres no dsn", Config{Backend: BackendPostgres, LogLevel: "info"}, true},
		{"memory ok", Config{Backend: BackendMemory, LogLevel: "error"}, false},
		{"unknown backend", Config{Backend: "redis", LogLevel: "info"}, true},
		{"bad level", Config{Backend: BackendMemory, LogLevel: "chatty"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
