package cmd

import (
	"io"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Read and edit profiles",
}

var profileMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := openSdk(cmd, true)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Profiles.Me(cmd.Context())
		if err != nil {
			return err
		}
		if err := profileAccepted(env); err != nil {
			return err
		}
		return render(cmd, env.Data, func(w io.Writer) { printProfile(w, env.Data) })
	},
}

var profileGetCmd = &cobra.Command{
	Use:   "get <userId>",
	Short: "Show another user's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := openSdk(cmd, true)
		if err != nil {
			return err
		}
		defer sdk.Close()

		env, err := sdk.Profiles.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if err := profileAccepted(env); err != nil {
			return err
		}
		return render(cmd, env.Data, func(w io.Writer) { printProfile(w, env.Data) })
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Edit your profile",
	Long: `Edit your profile. Fields you don't pass keep their current value.

Example:
  aqctl profile update --city Giza --zip 1234567`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := openSdk(cmd, true)
		if err != nil {
			return err
		}
		defer sdk.Close()

		cur, err := sdk.Profiles.Me(cmd.Context())
		if err != nil {
			return err
		}
		if err := profileAccepted(cur); err != nil {
			return err
		}

		req := api.UpdateProfileRequest{
			FirstName: cur.Data.FirstName,
			LastName:  cur.Data.LastName,
			Country:   cur.Data.Country,
			City:      cur.Data.City,
			Street:    cur.Data.Street,
			State:     cur.Data.State,
			ZipCode:   cur.Data.ZipCode,
		}
		flags := cmd.Flags()
		for flag, field := range map[string]*string{
			"first-name": &req.FirstName,
			"last-name":  &req.LastName,
			"country":    &req.Country,
			"city":       &req.City,
			"street":     &req.Street,
			"state":      &req.State,
			"zip":        &req.ZipCode,
		} {
			if flags.Changed(flag) {
				*field, _ = flags.GetString(flag)
			}
		}

		env, err := sdk.Profiles.UpdateMe(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := profileAccepted(env); err != nil {
			return err
		}
		return render(cmd, env.Data, func(w io.Writer) { printProfile(w, env.Data) })
	},
}

func init() {
	for _, f := range []string{"first-name", "last-name", "country", "city", "street", "state", "zip"} {
		profileUpdateCmd.Flags().String(f, "", "new "+f)
	}
	profileCmd.AddCommand(profileMeCmd, profileGetCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd)
}

func profileAccepted(env *api.Envelope[*api.Profile]) error {
	if err := accepted(env); err != nil {
		return err
	}
	if env.Data == nil {
		return &rejectedError{message: "the API returned no profile"}
	}
	return nil
}
