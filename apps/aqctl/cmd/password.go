package cmd

import (
	"strings"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/spf13/cobra"
)

var confirmEmailCmd = &cobra.Command{
	Use:   "confirm-email",
	Short: "Confirm an email address with the token from the confirmation email",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user-id")
		token, _ := cmd.Flags().GetString("token")
		clientID, _ := cmd.Flags().GetString("client-id")

		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		if clientID == "" {
			clientID = sdk.Client.ClientID()
		}
		env, err := sdk.Auth.ConfirmEmail(cmd.Context(), api.ConfirmEmailRequest{
			UserID:   userID,
			Token:    token,
			ClientID: clientID,
		})
		if err != nil {
			return err
		}
		return done(cmd, env, "Email confirmed")
	},
}

var resendConfirmationCmd = &cobra.Command{
	Use:   "resend-confirmation",
	Short: "Send the confirmation email again",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := newPrompter(cmd).valueOr(cmd, "email", "Email: ")
		if err != nil {
			return err
		}

		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Auth.ResendConfirmation(cmd.Context(), email)
		if err != nil {
			return err
		}
		return done(cmd, env, "Confirmation email sent")
	},
}

var forgotPasswordCmd = &cobra.Command{
	Use:   "forgot-password",
	Short: "Request a password reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := newPrompter(cmd).valueOr(cmd, "email", "Email: ")
		if err != nil {
			return err
		}

		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Auth.ForgotPassword(cmd.Context(), email)
		if err != nil {
			return err
		}
		return done(cmd, env, "Password reset email sent")
	},
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password with the token from the reset email",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter(cmd)
		email, err := p.valueOr(cmd, "email", "Email: ")
		if err != nil {
			return err
		}
		token, err := p.valueOr(cmd, "token", "Reset token: ")
		if err != nil {
			return err
		}
		pw, confirm, err := p.newPassword("New password: ", "Confirm new password: ")
		if err != nil {
			return err
		}

		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Auth.ResetPassword(cmd.Context(), api.ResetPasswordRequest{
			Email:           strings.TrimSpace(email),
			Token:           token,
			NewPassword:     pw,
			ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}
		return done(cmd, env, "Password reset")
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password",
	Short: "Change the password of the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter(cmd)
		current, err := p.secret("Current password: ")
		if err != nil {
			return err
		}
		pw, confirm, err := p.newPassword("New password: ", "Confirm new password: ")
		if err != nil {
			return err
		}

		sdk, err := openSdk(cmd, true)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Auth.ChangePassword(cmd.Context(), api.ChangePasswordRequest{
			CurrentPassword:    current,
			NewPassword:        pw,
			ConfirmNewPassword: confirm,
		})
		if err != nil {
			return err
		}
		return done(cmd, env, "Password changed")
	},
}

func init() {
	confirmEmailCmd.Flags().String("user-id", "", "user id from the confirmation link")
	confirmEmailCmd.Flags().String("token", "", "token from the confirmation link")
	confirmEmailCmd.Flags().String("client-id", "", "client id from the confirmation link (defaults to this client)")
	confirmEmailCmd.MarkFlagRequired("user-id")
	confirmEmailCmd.MarkFlagRequired("token")

	resendConfirmationCmd.Flags().String("email", "", "account email")
	forgotPasswordCmd.Flags().String("email", "", "account email")

	resetPasswordCmd.Flags().String("email", "", "account email")
	resetPasswordCmd.Flags().String("token", "", "token from the reset email")

	rootCmd.AddCommand(confirmEmailCmd, resendConfirmationCmd, forgotPasswordCmd, resetPasswordCmd, changePasswordCmd)
}
