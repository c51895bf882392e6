package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tvet-mis/console/internal/service"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and install a session",
	Long: `Authenticate against the TVET-MIS server and install the session.

The password is read from --password when given, otherwise from the
TVETMIS_PASSWORD environment variable, otherwise from standard input.

A successful login fetches the navigation privileges and profile for
the server-assigned current role. If those fetches fail, the login
still stands and the menu starts empty.`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password (prefer stdin or TVETMIS_PASSWORD)")
	_ = loginCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	password := loginPassword
	if password == "" {
		password = os.Getenv("TVETMIS_PASSWORD")
	}
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	err = app.svc.Login(cmd.Context(), service.Credentials{
		Username: loginUsername,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoleNotGranted) {
			return fmt.Errorf("login rejected: the assigned role is not granted by the issued token")
		}
		return err
	}

	cur := app.sessions.Current()
	prof := app.profiles.Current()
	fmt.Printf("Logged in as %s", loginUsername)
	if prof.RoleLabel != "" {
		fmt.Printf(" (%s)", prof.RoleLabel)
	}
	fmt.Printf(", role %s\n", cur.CurrentRoleID)
	return nil
}
