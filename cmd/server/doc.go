// Inkwell - Self-hosted Blog Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/inkwell

/*
Package main is the entry point for the Inkwell server.

Inkwell is a self-hosted blog engine: a single administrator writes
Markdown articles, optionally password protected, and anonymous visitors
read them through a JSON API, an RSS feed and static front-end files.

# Application Architecture

The server runs under a Suture v4 supervision tree:

	RootSupervisor ("inkwell")
	├── DataSupervisor ("data-layer")
	│   └── Cache prune service (clean_expired_cache task)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, YAML file and environment variables
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB holding articles, attachments, resources and stats
 4. Cache: TTL records in the DuckDB cache table or in Badger
 5. Services: visitors, resources, articles, admin authentication, RSS
 6. Supervisor Tree: prune service and HTTP server

# Configuration

Required settings:

	ADMIN_PASSWORD_HASH  bcrypt hash of the admin password
	ADMIN_TOTP_URL       otpauth:// URL of the admin authenticator key
	JWT_SECRET           32+ character secret for admin tokens

Everything else has a default; see internal/config.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
its shutdown timeout, which the system API can change at runtime, then the
cache and database are closed.
*/
package main
