// Command bookshelfctl runs the bookshelf catalog service.
//
// The service serves a permission-gated, filterable book catalog over HTTP.
// Books belong to authors, libraries hold books and each library may have a
// librarian.
//
// # Architecture
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST handlers for books, authors, libraries and accounts
//   - pkg/server/middleware: bearer token identity middleware
//   - pkg/server/store: persistence interfaces, with GORM implementations
//   - pkg/catalog: list filtering, ordering and request validation
//   - pkg/authz: the access policy
//   - pkg/seed: YAML catalog loading
//   - pkg/audit: RFC5424 audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
//	export DATABASE_URL=postgres://bookshelf@localhost/bookshelf?sslmode=disable
//	export BOOKSHELF_TOKEN_SECRET=$(openssl rand -hex 32)
//
//	# Run database migrations
//	bookshelfctl db migrate
//
//	# Seed permission groups and an admin
//	bookshelfctl groups create
//	bookshelfctl user create admin --role admin --group Admins
//
//	# Load a catalog and start the server
//	bookshelfctl catalog import catalog.yml
//	bookshelfctl server
//
// For local use DATABASE_URL may be a SQLite URL such as
// sqlite://bookshelf.db, in which case the schema is created on connect.
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL or SQLite connection string
//   - BOOKSHELF_TOKEN_SECRET: HMAC secret for bearer tokens
//   - BOOKSHELF_CONFIG_PATH: directory holding bookshelf.yml
//   - BOOKSHELF_LOG_LEVEL: Log level (debug, info, warn, error)
//   - AUDIT_DATABASE_URL: PostgreSQL database for audit messages
//   - BOOKSHELF_USER_PASSWORD: password for `user create` without a prompt
//   - BOOKSHELF_MIGRATIONS_PATH: migrations directory for non-embedded builds
//   - PORT: Server port (default: 8000)
package main
