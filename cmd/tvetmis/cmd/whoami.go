package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	Long: `Show the current session: user, roles, current role, and whether
the held token is still valid. Tokens themselves are never printed.`,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

// whoamiView is the printable session summary.
type whoamiView struct {
	Authenticated bool     `yaml:"authenticated"`
	User          string   `yaml:"user,omitempty"`
	DisplayName   string   `yaml:"display_name,omitempty"`
	Roles         []string `yaml:"roles,omitempty"`
	CurrentRole   string   `yaml:"current_role,omitempty"`
	RoleLabel     string   `yaml:"role_label,omitempty"`
	Location      string   `yaml:"location,omitempty"`
}

func runWhoami(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	view := whoamiView{Authenticated: app.sessions.IsAuthenticated()}
	if view.Authenticated {
		cur := app.sessions.Current()
		prof := app.profiles.Current()
		view.User = cur.UserID
		view.DisplayName = prof.DisplayName
		view.Roles = cur.Roles
		view.CurrentRole = cur.CurrentRoleID
		view.RoleLabel = prof.RoleLabel
		view.Location = cur.LocationID
	}

	out, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal session view: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
