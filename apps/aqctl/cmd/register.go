package cmd

import (
	"fmt"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account. Missing names and the email are prompted for; the
password is always prompted for (twice) unless --password-stdin is given,
in which case two lines are read: the password and its confirmation.

Example:
  aqctl register --first-name Mona --last-name Adel --email mona@gmail.com \
    --phone 01012345678 --country Egypt --city Cairo --role landlord`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter(cmd)
		flags := cmd.Flags()

		var req api.RegisterRequest
		var err error
		if req.FirstName, err = p.valueOr(cmd, "first-name", "First name: "); err != nil {
			return err
		}
		if req.LastName, err = p.valueOr(cmd, "last-name", "Last name: "); err != nil {
			return err
		}
		if req.Email, err = p.valueOr(cmd, "email", "Email: "); err != nil {
			return err
		}
		if req.PhoneNumber, err = p.valueOr(cmd, "phone", "Phone number: "); err != nil {
			return err
		}
		req.Address.Country, _ = flags.GetString("country")
		req.Address.City, _ = flags.GetString("city")
		req.Address.Street, _ = flags.GetString("street")
		req.Address.State, _ = flags.GetString("state")
		req.Address.ZipCode, _ = flags.GetString("zip")

		roleName, _ := flags.GetString("role")
		role, ok := api.ParseRole(roleName)
		if !ok {
			return fmt.Errorf("unknown role %q (want client or landlord)", roleName)
		}
		req.Role = role

		if req.Password, req.ConfirmPassword, err = p.newPassword("Password: ", "Confirm password: "); err != nil {
			return err
		}

		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Auth.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		return done(cmd, env, "Account created. Check your email to confirm it.")
	},
}

func init() {
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("email", "", "Gmail address")
	registerCmd.Flags().String("phone", "", "Egyptian mobile number, e.g. 01012345678")
	registerCmd.Flags().String("country", "", "country")
	registerCmd.Flags().String("city", "", "city")
	registerCmd.Flags().String("street", "", "street (optional)")
	registerCmd.Flags().String("state", "", "state (optional)")
	registerCmd.Flags().String("zip", "", "7 digit zip code (optional)")
	registerCmd.Flags().String("role", "client", "account role: client or landlord")
	rootCmd.AddCommand(registerCmd)
}
