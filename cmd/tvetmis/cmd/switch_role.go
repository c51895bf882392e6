package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tvet-mis/console/internal/service"
)

var switchRoleCmd = &cobra.Command{
	Use:   "switch-role [role-id]",
	Short: "List associated roles or switch to another role",
	Long: `Without an argument, list the roles associated with the account.

With a role id, ask the server to switch the account's current role.
A successful switch ends the session: run "tvetmis login" again to
authenticate under the new role. Switching to the role that is already
current is rejected without contacting the server.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSwitchRole,
}

func init() {
	rootCmd.AddCommand(switchRoleCmd)
}

func runSwitchRole(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if len(args) == 0 {
		roles, err := app.svc.AssociatedRoles(cmd.Context())
		if err != nil {
			return err
		}
		if len(roles) == 0 {
			fmt.Println("No associated roles.")
			return nil
		}
		for _, role := range roles {
			marker := " "
			if role.Current {
				marker = "*"
			}
			fmt.Printf("%s %-8s %s\n", marker, role.ID, role.Name)
		}
		return nil
	}

	err = app.svc.SwitchRole(cmd.Context(), args[0])
	switch {
	case errors.Is(err, service.ErrSameRole):
		return fmt.Errorf("role %s is already current", args[0])
	case errors.Is(err, service.ErrRoleNotGranted):
		return fmt.Errorf("role %s is not associated with this account", args[0])
	case err != nil:
		return err
	}

	fmt.Printf("Switched to role %s. Session ended; run \"tvetmis login\" to continue.\n", args[0])
	return nil
}
