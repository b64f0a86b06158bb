// Package main provides identityctl, the CLI for the identity server.
//
// The identity server manages cryptographically-authenticated accounts:
// every account mutation is a signed request verified against the account's
// registered public keys, guarded against replay, and written to an
// append-only audit log.
//
// # Quick Start
//
//	# Run database migrations
//	identityctl db migrate
//
//	# Start the server
//	identityctl server
//
//	# Wait for it to come up
//	identityctl wait
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string
//   - IDENTITY_CONFIG_PATH: Directory holding identity.yml
//   - IDENTITY_ADMIN_TOKEN_SECRET: HS256 secret for admin bearer tokens
//   - IDENTITY_LOG_LEVEL: Log level (debug enables SQL logging)
//   - PORT: Server port (default: 8000)
package main
