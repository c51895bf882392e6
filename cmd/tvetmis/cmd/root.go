// Package cmd provides the CLI commands for the TVET-MIS client.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tvet-mis/console/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tvetmis",
	Short: "TVET-MIS workflow console",
	Long: `tvetmis is the command-line client for the TVET-MIS workflow system.

It manages the authenticated session, the role-scoped navigation menu,
and role switching against the TVET-MIS server.

Quick start:
  1. Create a config file: tvetmis.yaml (server.base_url is required)
  2. Run: tvetmis login -u <username>

Configuration:
  Config is loaded from tvetmis.yaml in the current directory,
  $HOME/.tvetmis/, or /etc/tvetmis/.

  Environment variables can override config values with the TVETMIS_ prefix.
  Example: TVETMIS_SERVER_BASE_URL=https://mis.tvet.gov.bt

Commands:
  login        Authenticate and install a session
  logout       End the session and clear stored state
  whoami       Show the current session
  menu         Show the navigation menu for the current role
  open         Navigate to a route through the authorization gate
  switch-role  List associated roles or switch to another role
  privileges   Inspect the server's privilege definitions
  theme        Show or toggle the display theme
  passwd       Change, reset, or recover the account password
  reset        Remove all locally stored client state
  version      Print version information`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./tvetmis.yaml)")
}

func initConfig() {
	config.InitViper(cfgFile)
}
