package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Long: `Remove the refresh token from the session store. Running it again, or
without a session, is harmless.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		if err := sdk.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

func init() {
	authCmd.AddCommand(logoutCmd)
}
