// Package config provides configuration management for the bookshelf server.
//
// Settings are read from bookshelf.yml in BOOKSHELF_CONFIG_PATH (default
// /etc/bookshelf) and then overridden by BOOKSHELF_* environment variables.
// Each attribute remembers where its value came from, which
// `bookshelfctl configuration show` prints.
//
// # Key Configuration Options
//
//   - BOOKSHELF_READ_ACCESS: public or authenticated
//   - BOOKSHELF_AUTHORIZATION_MODEL: owner or groups
//   - BOOKSHELF_AUTHOR_FORMAT: id or nested
//   - BOOKSHELF_TOKEN_TTL: token lifetime in seconds
//   - BOOKSHELF_AUDIT_ENABLED: audit trail on or off
//   - BOOKSHELF_LOG_LEVEL: logging verbosity
//   - BOOKSHELF_TRUSTED_PROXIES: comma separated CIDR ranges
//
// Secrets only come from the environment: BOOKSHELF_TOKEN_SECRET and
// AUDIT_DATABASE_URL. DATABASE_URL is read by package db.
package config
