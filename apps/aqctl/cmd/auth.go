package cmd

import (
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your session with the accounts API (login, logout, status)",
	Long: `Manage your session with the accounts API.

login signs in with email and password and keeps the refresh token in the
session store, logout forgets it, and status shows who is signed in.

Examples:
  aqctl auth login --email mona@gmail.com
  aqctl auth status
  aqctl auth logout`,
}

func init() {
	rootCmd.AddCommand(authCmd)
}
