package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <route>",
	Short: "Navigate to a route through the authorization gate",
	Long: `Evaluate a navigation against the authorization gate.

Without a session, only the public routes are served and everything
else lands on /login. With a session, only the private routes are
served and everything else lands on /. A token that expired since the
last command is detected here: the session is torn down and the
navigation lands on /login.`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	decision := app.gate.Evaluate(args[0])
	if decision.Redirected {
		fmt.Printf("%s -> %s (%s)\n", args[0], decision.Route, decision.State)
	} else {
		fmt.Printf("%s (%s)\n", decision.Route, decision.State)
	}
	return nil
}
