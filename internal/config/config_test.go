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
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_RequiresDatabaseAndSecret(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DB_DATABASE", "")
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DATABASE")

	t.Setenv("DB_DATABASE", "foodgram")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET_KEY")
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := writeFile(t, "config.yaml", `
port: "9000"
db_type: sqlite
db_database: file.db
secret_key: from-file-secret-value
token_ttl: 2h
page_size: 10
`)
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_DATABASE", "")
	t.Setenv("SECRET_KEY", "")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "file.db", cfg.DBDatabase)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 3, cfg.RecipesLimit)
}

func TestLoad_DotEnv(t *testing.T) {
	envFile := writeFile(t, "test.env", "DB_DATABASE=dotenv.db\nSECRET_KEY=dotenv-secret-value\n")
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("CONFIG_FILE", "")
	// godotenv never overrides variables that are already set.
	os.Unsetenv("DB_DATABASE")
	os.Unsetenv("SECRET_KEY")
	t.Cleanup(func() {
		os.Unsetenv("DB_DATABASE")
		os.Unsetenv("SECRET_KEY")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dotenv.db", cfg.DBDatabase)
	assert.Equal(t, "dotenv-secret-value", cfg.SecretKey)
}

func TestValidate_Storage(t *testing.T) {
	cfg := Defaults()
	cfg.DBDatabase = "db"
	cfg.SecretKey = "secret"

	cfg.StorageType = "s3"
	assert.Error(t, cfg.Validate())

	cfg.S3Bucket = "images"
	assert.NoError(t, cfg.Validate())

	cfg.StorageType = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("FG_INT", "nope")
	assert.Equal(t, 7, getEnvAsInt("FG_INT", 7))
	t.Setenv("FG_INT", "12")
	assert.Equal(t, 12, getEnvAsInt("FG_INT", 7))

	t.Setenv("FG_DUR", "90s")
	assert.Equal(t, 90*time.Second, getEnvAsDuration("FG_DUR", time.Minute))
	t.Setenv("FG_DUR", "bad")
	assert.Equal(t, time.Minute, getEnvAsDuration("FG_DUR", time.Minute))
}
