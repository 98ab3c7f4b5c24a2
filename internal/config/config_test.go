package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fmd-screening", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "assets/fmd_classifier.onnx", cfg.Model.Path)
	assert.Equal(t, []string{"Healthy", "FMD Diseased"}, cfg.Model.Labels)
	assert.Equal(t, 10, cfg.Screening.MaxImageMB)
	assert.Equal(t, 86400, cfg.Redis.ResultTTLSeconds)
	assert.Equal(t, "screening.record.persist", cfg.RabbitMQ.RecordPersistQueue)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
name = "fmd-screening-test"
port = 9090

[model]
path = "/opt/models/classifier.onnx"
labels = ["Negative", "Positive"]

[screening]
max_image_mb = 2
archive_dir = "/var/lib/screening/uploads"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "fmd-screening-test", cfg.App.Name)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "/opt/models/classifier.onnx", cfg.Model.Path)
	assert.Equal(t, []string{"Negative", "Positive"}, cfg.Model.Labels)
	assert.Equal(t, 2, cfg.Screening.MaxImageMB)
	assert.Equal(t, "/var/lib/screening/uploads", cfg.Screening.ArchiveDir)
	// Untouched sections keep defaults.
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "7001")
	t.Setenv("MODEL_LABELS", "Healthy, FMD Diseased, Uncertain")
	t.Setenv("REDIS_RESULT_TTL_SECONDS", "120")
	t.Setenv("RABBITMQ_RECORD_PERSIST_QUEUE", "screening.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.App.Port)
	assert.Equal(t, []string{"Healthy", "FMD Diseased", "Uncertain"}, cfg.Model.Labels)
	assert.Equal(t, 120, cfg.Redis.ResultTTLSeconds)
	assert.Equal(t, "screening.test", cfg.RabbitMQ.RecordPersistQueue)
}

func TestEnvBadIntFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
}

func TestAddrHelpers(t *testing.T) {
	cfg := defaultConfig()
	cfg.App.Host = "127.0.0.1"
	cfg.App.Port = 8081
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTPAddr())

	cfg.MySQL.User = "screening"
	cfg.MySQL.Password = "secret"
	cfg.MySQL.Host = "db.internal"
	cfg.MySQL.Port = 3307
	cfg.MySQL.DB = "fmd"
	cfg.MySQL.Params = "parseTime=true"
	assert.Equal(t, "screening:secret@tcp(db.internal:3307)/fmd?parseTime=true", cfg.MySQLDSN())
}
