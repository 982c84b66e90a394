package cli

import (
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "v0.1.0"

func help() string {
	return `tidbreader serves read-only user lookups from a TiDB (or MySQL/PostgreSQL) table.
Usage:
  tidbreader <command> [flags]
Available Commands:
  serve       Start the HTTP service
  ping        Open the connection pool once and report
  config      Print the resolved configuration (password masked)
  version     Print the version number
Flags:
  -h, --help   help for tidbreader
Configuration is read from the environment and an optional .env file.
Examples:
  DB_HOST=tidb.internal DB_PORT=4000 tidbreader serve
  DB_DRIVER=pgx DB_PORT=5432 tidbreader ping`
}

// NewVersionCmd builds the `version` command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}

// NewHelpCmd builds the `help` command.
func NewHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Print help information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(help())
		},
	}
}

// NewRootCmd builds the top-level `tidbreader` command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tidbreader",
		Short:         "tidbreader: read-only user lookup service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewPingCmd())
	root.AddCommand(NewConfigCmd())
	root.AddCommand(NewVersionCmd())
	root.SetHelpCommand(NewHelpCmd())
	return root
}
