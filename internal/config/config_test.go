package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-cloud/internal/dataaccess"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvConfigPath, "HTTP_ADDR", "DATA_ROOT", "STAGING_DIR", "MODEL_PATH", "COMPLAINTS_PATH", "AUDIT_LOG_PATH",
		"RISK_THRESHOLD", "COMPLAINT_RATE_PER_MIN", "WATCH_FILES", "AUTH_JWT_SECRET", "JWT_SECRET",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 0.7, cfg.RiskThreshold)
	assert.Equal(t, filepath.Join(".", "data", "staging"), cfg.StagingDir)
	assert.Equal(t, filepath.Join(".", "models", DefaultModelFile), cfg.ModelPath)
	assert.Equal(t, filepath.Join(".", "data", "complaints.csv"), cfg.ComplaintsPath)
	assert.Empty(t, cfg.Auth.JWTSecret)
	assert.True(t, cfg.AuditEnabled())
	assert.Equal(t, filepath.Join(".", "data", "audit.jsonl"), cfg.AuditPath)

	t.Setenv("AUDIT_LOG_PATH", "off")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.False(t, cfg.AuditEnabled())
}

func TestLoadYAMLThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":9090"
data_root: /srv/hostel
risk_threshold: 0.6
watch_files: true
auth:
  jwt_secret: from-yaml
log:
  level: debug
  format: json
`), 0o644))
	t.Setenv(EnvConfigPath, path)
	t.Setenv("RISK_THRESHOLD", "0.8")
	t.Setenv("AUTH_JWT_SECRET", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 0.8, cfg.RiskThreshold)
	assert.True(t, cfg.WatchFiles)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, filepath.Join("/srv/hostel", "data", "staging"), cfg.StagingDir)

	paths := cfg.Paths()
	assert.Equal(t, filepath.Join("/srv/hostel", "data", "staging", dataaccess.SnapshotFile), paths.Snapshot)
	assert.Equal(t, filepath.Join("/srv/hostel", "data", "complaints.csv"), paths.Complaints)
}

func TestLoadExplicitPathsWin(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATA_ROOT", "/data")
	t.Setenv("MODEL_PATH", "/models/forest.json")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/models/forest.json", cfg.ModelPath)
	assert.Equal(t, filepath.Join("/data", "data", "staging"), cfg.StagingDir)
}

func TestLoadRejectsBadThreshold(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("risk_threshold: 1.5\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
