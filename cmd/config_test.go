package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	"APP_ENV", "DATABASE_URL", "TEST_DATABASE_URL", "PORT", "LIST_LIMIT",
	"LOG_LEVEL", "LOG_FILE", "CORS_ALLOWED_ORIGINS", "DB",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeEnvFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Env:                "development",
		DatabaseURL:        "dev-restaurants.db",
		Port:               8080,
		ListLimit:          50,
		CORSAllowedOrigins: []string{"*"},
	}, cfg)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://grades@localhost/restaurants")
	t.Setenv("PORT", "9090")
	t.Setenv("LIST_LIMIT", "10")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "postgres://grades@localhost/restaurants", cfg.DatabaseURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 10, cfg.ListLimit)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigTestEnvUsesTestDatabase(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "dev.db")

	cfg, err := LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "test-restaurants.db", cfg.DatabaseURL)

	t.Setenv("TEST_DATABASE_URL", "other-test.db")
	cfg, err = LoadConfig(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "other-test.db", cfg.DatabaseURL)
}

func TestLoadConfigEnvFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeEnvFile(t, "PORT=7000\nLIST_LIMIT=5\nDATABASE_URL=from-file.db\n")

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 5, cfg.ListLimit)
	assert.Equal(t, "from-file.db", cfg.DatabaseURL)

	// the real environment wins over the file
	t.Setenv("PORT", "7001")
	cfg, err = LoadConfig(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, 7001, cfg.Port)
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9090")

	root := NewRootCommand("test")
	require.NoError(t, root.PersistentFlags().Parse([]string{"--db", "flag.db", "--port", "6000", "--env", "production"}))

	flags := root.PersistentFlags()
	v := viper.New()
	require.NoError(t, v.BindPFlag("app_env", flags.Lookup("env")))
	require.NoError(t, v.BindPFlag("db", flags.Lookup("db")))
	require.NoError(t, v.BindPFlag("port", flags.Lookup("port")))

	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "flag.db", cfg.DatabaseURL)
	assert.Equal(t, 6000, cfg.Port)
}

func TestLoadConfigRejects(t *testing.T) {
	for _, tc := range []struct {
		key, value string
	}{
		{"APP_ENV", "staging"},
		{"PORT", "70000"},
		{"PORT", "-1"},
		{"LIST_LIMIT", "0"},
	} {
		clearConfigEnv(t)
		t.Setenv(tc.key, tc.value)
		_, err := LoadConfig(viper.New())
		assert.Error(t, err, "%s=%s", tc.key, tc.value)
	}
}

func TestMigrateCommandRejectsUnknownDirection(t *testing.T) {
	root := NewRootCommand("test")
	root.SetArgs([]string{"migrate", "sideways"})
	root.SetOut(&discard{})
	root.SetErr(&discard{})
	assert.Error(t, root.Execute())
}

func TestMigrateCommandRunsAgainstSQLite(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "migrate.db")
	t.Setenv("LOG_LEVEL", "error")

	for _, direction := range []string{"up", "status", "down", "up"} {
		root := NewRootCommand("test")
		root.SetArgs([]string{"migrate", direction, "--db", path})
		require.NoError(t, root.Execute(), direction)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
