package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	passwdCurrent string
	passwdNew     string
	forgotEmail   string
	resetToken    string
)

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change, reset, or recover the account password",
	Long: `Change the logged-in account's password, or run the recovery flow:

  passwd --current <old> --new <new>    change while logged in
  passwd forgot --email <address>       request a reset token by email
  passwd reset --token <t> --new <new>  complete the reset`,
	RunE: runPasswd,
}

var passwdForgotCmd = &cobra.Command{
	Use:   "forgot",
	Short: "Request a password reset token by email",
	RunE:  runPasswdForgot,
}

var passwdResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Complete a password reset with the emailed token",
	RunE:  runPasswdReset,
}

func init() {
	passwdCmd.Flags().StringVar(&passwdCurrent, "current", "", "current password")
	passwdCmd.Flags().StringVar(&passwdNew, "new", "", "new password")

	passwdForgotCmd.Flags().StringVar(&forgotEmail, "email", "", "account email address")
	_ = passwdForgotCmd.MarkFlagRequired("email")

	passwdResetCmd.Flags().StringVar(&resetToken, "token", "", "reset token from the email")
	passwdResetCmd.Flags().StringVar(&passwdNew, "new", "", "new password")
	_ = passwdResetCmd.MarkFlagRequired("token")

	passwdCmd.AddCommand(passwdForgotCmd)
	passwdCmd.AddCommand(passwdResetCmd)
	rootCmd.AddCommand(passwdCmd)
}

func runPasswd(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.svc.ChangePassword(cmd.Context(), passwdCurrent, passwdNew); err != nil {
		return err
	}
	fmt.Println("Password changed.")
	return nil
}

func runPasswdForgot(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.svc.ForgotPassword(cmd.Context(), forgotEmail); err != nil {
		return err
	}
	fmt.Printf("Reset instructions sent to %s.\n", forgotEmail)
	return nil
}

func runPasswdReset(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if err := app.svc.ResetPassword(cmd.Context(), resetToken, passwdNew); err != nil {
		return err
	}
	fmt.Println("Password reset. Log in with the new password.")
	return nil
}
