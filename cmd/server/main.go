/*
main.go - Application entry point

PURPOSE:
  Starts the roster command: HTTP server, one-shot generation,
  reconciliation and backups. All wiring lives in package cli.

COMMANDS:
  serve                                  HTTP API + background reconciliation
  generate <kind> <year> <week> [--confirm]
  reconcile <year> <week>
  backup

CONFIGURATION:
  --config roster.yaml, ROSTER_* environment variables, .env file.
  See config/config.go for keys and defaults.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM the server stops accepting connections, waits for
  active requests (server.shutdown_timeout), stops the scheduler and
  closes the database.

EXAMPLES:
  ./server serve
  ROSTER_STORAGE_PATH=":memory:" ./server serve
  ./server generate ramasse 2025 10 --confirm

SEE ALSO:
  - cli/root.go: Command tree
  - api/server.go: Router configuration
*/
package main

import (
	"os"

	"github.com/warp/roster-engine/cli"
)

var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).Execute(); err != nil {
		os.Exit(1)
	}
}
