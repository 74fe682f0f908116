package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Print the id this installation sends as X-Device-Id",
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := openSdk(cmd, false)
		if err != nil {
			return err
		}
		defer sdk.Close()

		id, err := sdk.Device.ID(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deviceCmd)
}
