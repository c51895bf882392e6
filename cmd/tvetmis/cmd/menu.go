package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var menuRefresh bool

var menuCmd = &cobra.Command{
	Use:   "menu [current-route]",
	Short: "Show the navigation menu for the current role",
	Long: `Show the two-level navigation menu granted to the current role.

Entries the server marked as hidden are excluded; child entries whose
parent is not part of the menu are dropped. When a current route is
given, the matching entry is marked active (exact match only).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMenu,
}

func init() {
	menuCmd.Flags().BoolVar(&menuRefresh, "refresh", false, "re-fetch the privilege list from the server first")
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if !app.sessions.IsAuthenticated() {
		return fmt.Errorf("not logged in")
	}

	if menuRefresh {
		if err := app.svc.RefreshPrivileges(cmd.Context()); err != nil {
			return fmt.Errorf("refresh privileges: %w", err)
		}
	}

	currentRoute := ""
	if len(args) == 1 {
		currentRoute = args[0]
	}

	items := app.renderer.Render(app.privileges.List(), currentRoute)
	if len(items) == 0 {
		fmt.Println("The menu is empty for the current role.")
		return nil
	}

	for _, item := range items {
		marker := " "
		if item.Active {
			marker = "*"
		}
		fmt.Printf("%s %-28s %s\n", marker, item.Name, item.Route)
		for _, child := range item.Children {
			marker = " "
			if child.Active {
				marker = "*"
			}
			fmt.Printf("%s   %-26s %s\n", marker, child.Name, child.Route)
		}
	}
	return nil
}
