// Package commands defines the rechat CLI and wires dependencies for subcommands.
//
// Commands
//
//   - identity set|show  Store or print the local chat identity
//   - host               Start a hub and join it from this terminal
//   - connect [addr]     Join a hub at host[:port]
//   - who                Print a hub's roster over its HTTP API
//   - announce <text>    Broadcast a notice from the hub
//   - fingerprint        Print the room secret fingerprint
//   - manifest ...       Check, show, create or expand the packaging manifest
//
// # Implementation
//
// The root command resolves the home directory, loads configuration and
// builds the logger and dependency graph before any subcommand runs, so
// handlers share one app.Wire. Chat output goes to stdout, logs to stderr.
package commands
