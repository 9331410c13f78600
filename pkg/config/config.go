package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/bookshelf-in-go/pkg/authz"
)

const (
	DefaultConfigPath = "/etc/bookshelf"
	ConfigFileName    = "bookshelf.yml"
)

// Author rendering formats for book responses.
const (
	AuthorFormatID     = "id"
	AuthorFormatNested = "nested"
)

// Environment variables holding secrets. These are never read from the file.
const (
	EnvTokenSecret      = "BOOKSHELF_TOKEN_SECRET"
	EnvAuditDatabaseURL = "AUDIT_DATABASE_URL"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// BookshelfConfig holds all bookshelf configuration settings
type BookshelfConfig struct {
	// ReadAccess is "public" (anyone may read books) or "authenticated"
	ReadAccess string `yaml:"read_access" json:"read_access"`

	// AuthorizationModel is "owner" or "groups"
	AuthorizationModel string `yaml:"authorization_model" json:"authorization_model"`

	// AuthorFormat is "id" or "nested"
	AuthorFormat string `yaml:"author_format" json:"author_format"`

	// TokenTTL is the lifetime of issued tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// AuditEnabled turns on the RFC5424 audit trail
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// TrustedProxies is a list of CIDR ranges for trusted proxies
	TrustedProxies []string `yaml:"trusted_proxies" json:"trusted_proxies"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *BookshelfConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *BookshelfConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// Default returns a config holding only default values, without reading the
// file or environment.
func Default() *BookshelfConfig {
	return newDefault()
}

// newDefault returns a config with default values
func newDefault() *BookshelfConfig {
	return &BookshelfConfig{
		ReadAccess:         string(authz.ReadPublic),
		AuthorizationModel: string(authz.ModelOwner),
		AuthorFormat:       AuthorFormatID,
		TokenTTL:           3600,
		AuditEnabled:       false,
		LogLevel:           "info",
		TrustedProxies:     []string{},
		sources:            make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*BookshelfConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("BOOKSHELF_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig fileAttributes
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

// fileAttributes mirrors BookshelfConfig with pointers so that an explicit
// false or zero in the file is distinguishable from an absent key.
type fileAttributes struct {
	ReadAccess         *string  `yaml:"read_access"`
	AuthorizationModel *string  `yaml:"authorization_model"`
	AuthorFormat       *string  `yaml:"author_format"`
	TokenTTL           *int     `yaml:"token_ttl"`
	AuditEnabled       *bool    `yaml:"audit_enabled"`
	LogLevel           *string  `yaml:"log_level"`
	TrustedProxies     []string `yaml:"trusted_proxies"`
}

func attributeNames() []string {
	return []string{
		"read_access", "authorization_model", "author_format",
		"token_ttl", "audit_enabled", "log_level", "trusted_proxies",
	}
}

func (c *BookshelfConfig) applyFileConfig(file *fileAttributes) {
	if file.ReadAccess != nil {
		c.ReadAccess = *file.ReadAccess
		c.sources["read_access"] = "file"
	}
	if file.AuthorizationModel != nil {
		c.AuthorizationModel = *file.AuthorizationModel
		c.sources["authorization_model"] = "file"
	}
	if file.AuthorFormat != nil {
		c.AuthorFormat = *file.AuthorFormat
		c.sources["author_format"] = "file"
	}
	if file.TokenTTL != nil {
		c.TokenTTL = *file.TokenTTL
		c.sources["token_ttl"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = "file"
	}
	if len(file.TrustedProxies) > 0 {
		c.TrustedProxies = file.TrustedProxies
		c.sources["trusted_proxies"] = "file"
	}
}

func (c *BookshelfConfig) applyEnvConfig() {
	if val := os.Getenv("BOOKSHELF_READ_ACCESS"); val != "" {
		c.ReadAccess = val
		c.sources["read_access"] = "environment"
	}
	if val := os.Getenv("BOOKSHELF_AUTHORIZATION_MODEL"); val != "" {
		c.AuthorizationModel = val
		c.sources["authorization_model"] = "environment"
	}
	if val := os.Getenv("BOOKSHELF_AUTHOR_FORMAT"); val != "" {
		c.AuthorFormat = val
		c.sources["author_format"] = "environment"
	}
	if val := os.Getenv("BOOKSHELF_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.TokenTTL = i
			c.sources["token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("BOOKSHELF_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
	if val := os.Getenv("BOOKSHELF_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
		c.sources["log_level"] = "environment"
	}
	if val := os.Getenv("BOOKSHELF_TRUSTED_PROXIES"); val != "" {
		c.TrustedProxies = splitAndTrim(val)
		c.sources["trusted_proxies"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *BookshelfConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *BookshelfConfig) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Policy builds the access policy for this deployment.
func (c *BookshelfConfig) Policy() (authz.Policy, error) {
	read, err := authz.ParseReadAccess(c.ReadAccess)
	if err != nil {
		return authz.Policy{}, err
	}
	model, err := authz.ParseModel(c.AuthorizationModel)
	if err != nil {
		return authz.Policy{}, err
	}
	return authz.Policy{Read: read, Model: model}, nil
}

// NestedAuthors reports whether books render their author as an object.
func (c *BookshelfConfig) NestedAuthors() bool {
	return c.AuthorFormat == AuthorFormatNested
}

// TokenLifetime returns the token TTL as a duration
func (c *BookshelfConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *BookshelfConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// IsTrustedProxy checks if an IP is from a trusted proxy
func (c *BookshelfConfig) IsTrustedProxy(ip string) bool {
	if len(c.TrustedProxies) == 0 {
		return false
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return false
	}

	for _, cidr := range c.TrustedProxies {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			// Try as plain IP
			if net.ParseIP(cidr) != nil && cidr == ip {
				return true
			}
			continue
		}
		if network.Contains(parsedIP) {
			return true
		}
	}
	return false
}

// Validate validates the configuration
func (c *BookshelfConfig) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}

	if c.AuthorFormat != AuthorFormatID && c.AuthorFormat != AuthorFormatNested {
		return fmt.Errorf("invalid author_format value: %s", c.AuthorFormat)
	}

	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl value: %d", c.TokenTTL)
	}

	validLevel := false
	for _, l := range validLogLevels {
		if c.LogLevel == l {
			validLevel = true
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log_level value: %s", c.LogLevel)
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			if net.ParseIP(cidr) == nil {
				return fmt.Errorf("invalid trusted_proxies value: %s", cidr)
			}
		}
	}

	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *BookshelfConfig) Attributes() []Attribute {
	return []Attribute{
		{Name: "read_access", Value: c.ReadAccess, Source: c.Source("read_access")},
		{Name: "authorization_model", Value: c.AuthorizationModel, Source: c.Source("authorization_model")},
		{Name: "author_format", Value: c.AuthorFormat, Source: c.Source("author_format")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "trusted_proxies", Value: strings.Join(c.TrustedProxies, ","), Source: c.Source("trusted_proxies")},
	}
}

// FormatText returns a text representation of the configuration
func (c *BookshelfConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *BookshelfConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TokenSecret returns the HMAC secret used to sign API tokens.
func TokenSecret() string {
	return os.Getenv(EnvTokenSecret)
}

// AuditDatabaseURL returns the audit database URL, empty when audit
// persistence is off.
func AuditDatabaseURL() string {
	return os.Getenv(EnvAuditDatabaseURL)
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
