// Package app wires application dependencies for the CLI.
//
// It loads Config (defaults, then <home>/rechat.toml, then .env files, then
// RECHAT_* environment variables), builds the logger, and constructs the
// stores, services, hub and client that commands use via the Wire struct.
package app
