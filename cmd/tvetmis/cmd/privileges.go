package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var privilegesCmd = &cobra.Command{
	Use:   "privileges",
	Short: "Inspect the server's privilege definitions",
	Long: `Inspect the privilege definitions used for role administration.

  privileges parents            list every top-level privilege
  privileges children <id>      list the children of a parent privilege

These read the server's definitions, not the menu granted to the
current role — use "menu" for that.`,
}

var privilegesParentsCmd = &cobra.Command{
	Use:   "parents",
	Short: "List every top-level privilege definition",
	RunE:  runPrivilegesParents,
}

var privilegesChildrenCmd = &cobra.Command{
	Use:   "children <parent-id>",
	Short: "List the children of a parent privilege",
	Args:  cobra.ExactArgs(1),
	RunE:  runPrivilegesChildren,
}

func init() {
	privilegesCmd.AddCommand(privilegesParentsCmd)
	privilegesCmd.AddCommand(privilegesChildrenCmd)
	rootCmd.AddCommand(privilegesCmd)
}

func runPrivilegesParents(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	list, err := app.privSvc.ParentPrivileges(cmd.Context())
	if err != nil {
		return err
	}
	for _, p := range list {
		fmt.Printf("%-6d %-28s %s\n", p.ID, p.Name, p.RoutePath)
	}
	return nil
}

func runPrivilegesChildren(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	parentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("parent id must be a number: %q", args[0])
	}

	list, err := app.privSvc.ChildPrivileges(cmd.Context(), parentID)
	if err != nil {
		return err
	}
	for _, p := range list {
		fmt.Printf("%-6d %-28s %s\n", p.ID, p.Name, p.RoutePath)
	}
	return nil
}
