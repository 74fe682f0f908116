package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	Long: `Sign in to the accounts API.

Examples:
	# prompt for the email and password
	aqctl auth login

	# non-interactive, password read from stdin
	echo "$PASSWORD" | aqctl auth login --email mona@gmail.com --password-stdin

The refresh token is saved to the session store so later commands stay
signed in.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter(cmd)
		email, err := p.valueOr(cmd, "email", "Email: ")
		if err != nil {
			return err
		}

		var password string
		if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
			password, err = p.line("")
		} else {
			password, err = p.secret("Password: ")
		}
		if err != nil {
			return err
		}

		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Login(cmd.Context(), strings.TrimSpace(email), password)
		if err != nil {
			if env != nil && env.Message != "" {
				return &rejectedError{message: env.Message}
			}
			return err
		}

		if u := env.Data.User; u != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as: %s %s <%s>\n", u.FirstName, u.LastName, u.Email)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email (prompted when omitted)")
	loginCmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	authCmd.AddCommand(loginCmd)
}
