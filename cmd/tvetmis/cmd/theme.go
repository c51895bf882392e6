package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeToggle bool

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or toggle the display theme",
	Long: `Show the current display theme, or toggle between light and dark
with --toggle. The preference persists across logins and logouts.`,
	RunE: runTheme,
}

func init() {
	themeCmd.Flags().BoolVar(&themeToggle, "toggle", false, "flip between light and dark")
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.close()

	if themeToggle {
		mode, err := app.themes.Toggle()
		if err != nil {
			return err
		}
		fmt.Println(mode)
		return nil
	}
	fmt.Println(app.themes.Mode())
	return nil
}
