package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"BOOKSHELF_READ_ACCESS", "BOOKSHELF_AUTHORIZATION_MODEL", "BOOKSHELF_AUTHOR_FORMAT",
		"BOOKSHELF_TOKEN_TTL", "BOOKSHELF_AUDIT_ENABLED", "BOOKSHELF_LOG_LEVEL",
		"BOOKSHELF_TRUSTED_PROXIES",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(body), 0o600))
	t.Setenv("BOOKSHELF_CONFIG_PATH", dir)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKSHELF_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, authz.DefaultPolicy(), policy)
	assert.False(t, cfg.NestedAuthors())
	assert.Equal(t, time.Hour, cfg.TokenLifetime())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	for _, attr := range cfg.Attributes() {
		assert.Equal(t, "default", attr.Source, attr.Name)
	}
}

func TestLoadFileThenEnvironment(t *testing.T) {
	clearEnv(t)
	writeConfig(t, `
read_access: authenticated
authorization_model: groups
author_format: nested
token_ttl: 60
audit_enabled: false
trusted_proxies:
  - 10.0.0.0/8
`)
	t.Setenv("BOOKSHELF_AUTHORIZATION_MODEL", "owner")
	t.Setenv("BOOKSHELF_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "authenticated", cfg.ReadAccess)
	assert.Equal(t, "file", cfg.Source("read_access"))
	assert.Equal(t, "owner", cfg.AuthorizationModel)
	assert.Equal(t, "environment", cfg.Source("authorization_model"))
	assert.True(t, cfg.NestedAuthors())
	assert.Equal(t, time.Minute, cfg.TokenLifetime())
	assert.Equal(t, "file", cfg.Source("audit_enabled"))
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.False(t, cfg.IsTrustedProxy("192.168.0.1"))
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)
	writeConfig(t, "read_access: [unclosed")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *BookshelfConfig)
	}{
		{"read access", func(c *BookshelfConfig) { c.ReadAccess = "everyone" }},
		{"model", func(c *BookshelfConfig) { c.AuthorizationModel = "acl" }},
		{"author format", func(c *BookshelfConfig) { c.AuthorFormat = "name" }},
		{"token ttl", func(c *BookshelfConfig) { c.TokenTTL = 0 }},
		{"log level", func(c *BookshelfConfig) { c.LogLevel = "loud" }},
		{"proxy", func(c *BookshelfConfig) { c.TrustedProxies = []string{"not-an-ip"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFormat(t *testing.T) {
	cfg := newDefault()
	cfg.configFilePath = "/etc/bookshelf/bookshelf.yml"

	text := cfg.FormatText()
	assert.Contains(t, text, "Config file: /etc/bookshelf/bookshelf.yml")
	assert.Contains(t, text, "read_access")
	assert.Contains(t, text, "(not set)")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"config_file": "/etc/bookshelf/bookshelf.yml"`)
	assert.Contains(t, out, `"name": "authorization_model"`)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b ,"))
}
