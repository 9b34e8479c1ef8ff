package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
server:
  port: 9090
  base_url: https://journals.example.org
database:
  host: db
  user: journal
  password: secret
  database: journal
jwt:
  secret: 0123456789abcdef0123456789abcdef
storage:
  type: local
  local_dir: /var/lib/journal
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("yaml with defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 3, cfg.Invitation.ExpiryDays)
		assert.Equal(t, "en", cfg.Site.PrimaryLocale)
		assert.Equal(t, "0 * * * * *", cfg.Scheduler.DeliverQueuedMail)
		assert.Equal(t, "", cfg.GetGRPCAddress())
	})

	t.Run("environment overrides yaml", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("INVITATION_EXPIRY_DAYS", "7")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.org,https://b.example.org")

		cfg, err := Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, 7, cfg.Invitation.ExpiryDays)
		assert.Equal(t, []string{"https://a.example.org", "https://b.example.org"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, "db", cfg.Database.Host)
	})

	t.Run("dotenv file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(".env", []byte("SITE_PRIMARY_LOCALE=fr-CA\n"), 0o600))
		t.Cleanup(func() {
			os.Remove(".env")
			os.Unsetenv("SITE_PRIMARY_LOCALE")
		})

		cfg, err := Load(writeConfig(t, sampleYAML))
		require.NoError(t, err)
		assert.Equal(t, "fr-CA", cfg.Site.PrimaryLocale)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{BaseURL: "https://journals.example.org"},
		Database: DatabaseConfig{URL: "postgres://journal:secret@db/journal?sslmode=disable"},
		JWT:      JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "relative base url", mutate: func(c *Config) { c.Server.BaseURL = "/journals" }, wantErr: "absolute"},
		{name: "short jwt secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "32 characters"},
		{name: "no database", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "database"},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Storage.Type = "s3" }, wantErr: "bucket"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "ftp" }, wantErr: "unknown storage"},
		{name: "telemetry without endpoint", mutate: func(c *Config) { c.Telemetry.Enabled = true }, wantErr: "telemetry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDatabaseDriverAndDSN(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		driver, dsn, err := validConfig().DatabaseDriverAndDSN()
		require.NoError(t, err)
		assert.Equal(t, "postgres", driver)
		assert.Contains(t, dsn, "dbname=journal")
	})

	t.Run("discrete fields", func(t *testing.T) {
		c := validConfig()
		c.Database = DatabaseConfig{Host: "db", Port: 5433, User: "journal", Password: "p@ss", Database: "journal", SSLMode: "require"}
		driver, dsn, err := c.DatabaseDriverAndDSN()
		require.NoError(t, err)
		assert.Equal(t, "postgres", driver)
		assert.Contains(t, dsn, "port=5433")
		assert.Contains(t, dsn, "sslmode=require")
	})
}

func TestGetSecurityLevel(t *testing.T) {
	assert.Equal(t, SecurityPublic, GetSecurityLevel("/grpc.health.v1.Health/Check"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("/journal.admin.v1.NavigationMenuAdmin/InstallNavigationMenus"))
	assert.Equal(t, SecurityAdmin, GetSecurityLevel("/unknown.Service/Method"))
}
