package cmd

import (
	"context"
	"errors"
	"log"
	"log/slog"

	"github.com/quatton/aquakeys/pkg/aqlog"
	"github.com/quatton/aquakeys/pkg/aqsdk"
	"github.com/spf13/cobra"
)

type contextKey string

const configContextKey contextKey = "aquakeysconfig"

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "aqctl",
		Short: "CLI for the aquakeys accounts API (sign-in, registration, profiles)",
		Long: `aqctl talks to the aquakeys accounts API. It signs you in and keeps
the session alive between runs: the refresh token is kept in the OS keyring
(or the store named by --store) and exchanged for a fresh access token when
one is needed.

Use the auth subcommands to sign in and out, register and the password
commands to manage the account, and profile to read or edit profiles.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := aqsdk.LoadConfig(cfgFile)
			if err != nil {
				return err
			}

			v := cfg.Viper()
			flags := cmd.Flags()
			for key, flag := range map[string]string{
				aqsdk.BaseUrlKey:   "base-url",
				aqsdk.StoreKey:     "store",
				aqsdk.StorePathKey: "store-path",
			} {
				if f := flags.Lookup(flag); f != nil && f.Changed {
					if err := v.BindPFlag(key, f); err != nil {
						return err
					}
				}
			}
			if err := cfg.Reload(); err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), configContextKey, cfg)
			cmd.SetContext(ctx)

			return nil
		},
	}
)

// GetConfig retrieves the Config from the command context
func GetConfig(cmd *cobra.Command) (*aqsdk.Config, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("no config in context")
	}
	cfg, ok := ctx.Value(configContextKey).(*aqsdk.Config)
	if !ok {
		return nil, errors.New("no config in context")
	}
	return cfg, nil
}

func logger(cmd *cobra.Command) *slog.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	switch {
	case verbose:
		return aqlog.NewLogger(slog.LevelDebug, cmd.ErrOrStderr()).Logger
	case quiet:
		return aqlog.NewLogger(slog.LevelWarn, cmd.ErrOrStderr()).Logger
	default:
		return aqlog.NewLogger(slog.LevelInfo, cmd.ErrOrStderr()).Logger
	}
}

// openSdk builds the SDK for the configured API. With restore set, the
// session persisted by an earlier run is brought back first.
func openSdk(cmd *cobra.Command, restore bool) (*aqsdk.Sdk, error) {
	cfg, err := GetConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger(cmd)
	sdk, err := aqsdk.New(cmd.Context(), cfg, aqsdk.WithLogger(log))
	if err != nil {
		return nil, err
	}

	sdk.Session.OnExpired(func(ctx context.Context, cause error) {
		log.Warn("session expired, run 'aqctl auth login' to sign in again")
	})

	if restore {
		if err := sdk.Session.Restore(cmd.Context()); err != nil {
			sdk.Close()
			return nil, err
		}
	}
	return sdk, nil
}

func Execute() {
	log.SetFlags(0)
	if err := rootCmd.Execute(); err != nil {
		exitIfSdkError(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML). Searches: aquakeys.yaml, .aquakeys.yaml, .aquakeys/config.yaml")
	rootCmd.PersistentFlags().String("base-url", "", "Base URL of the accounts API (overrides config)")
	rootCmd.PersistentFlags().String("store", "", "where the session is kept: keyring, file, valkey or memory (overrides config)")
	rootCmd.PersistentFlags().String("store-path", "", "state file for --store file (overrides config)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log requests and token refreshes")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format: text, yaml or json")
}
