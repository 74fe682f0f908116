package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/quatton/aquakeys/pkg/aqsdk"
	"github.com/spf13/cobra"
)

type authStatus struct {
	LoggedIn  bool   `json:"loggedIn" yaml:"loggedIn"`
	BaseURL   string `json:"baseUrl" yaml:"baseUrl"`
	Store     string `json:"store" yaml:"store"`
	UserID    string `json:"userId,omitempty" yaml:"userId,omitempty"`
	Email     string `json:"email,omitempty" yaml:"email,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is signed in",
	Long: `Restore the stored session and show the signed-in user and when the
current access token expires. The token is decoded locally and not
verified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sdk, err := openSdk(cmd, true)
		if err != nil {
			return err
		}
		defer sdk.Close()

		st := authStatus{
			LoggedIn: sdk.Session.Active(),
			BaseURL:  sdk.Config.BaseURL,
			Store:    sdk.Config.Store,
		}
		if st.LoggedIn {
			if u := sdk.Session.User(); u != nil {
				st.UserID, st.Email = u.ID, u.Email
			}
			if c, err := aqsdk.ParseAccessClaims(sdk.Credentials.AccessToken()); err == nil {
				if st.UserID == "" {
					st.UserID = c.Subject
				}
				if st.Email == "" {
					st.Email = c.Email
				}
				st.Name = c.Name
				if exp := c.ExpiresAt(); !exp.IsZero() {
					st.ExpiresAt = exp.Format(time.RFC3339)
				}
			}
		}

		return render(cmd, st, func(w io.Writer) {
			if !st.LoggedIn {
				fmt.Fprintf(w, "Not logged in to %s\n", st.BaseURL)
				return
			}
			fmt.Fprintf(w, "Logged in to %s\n", st.BaseURL)
			if st.Name != "" {
				fmt.Fprintf(w, "User: %s <%s>\n", st.Name, st.Email)
			} else {
				fmt.Fprintf(w, "User: %s\n", st.Email)
			}
			fmt.Fprintf(w, "ID: %s\n", st.UserID)
			if st.ExpiresAt != "" {
				fmt.Fprintf(w, "Token expires: %s\n", st.ExpiresAt)
			}
		})
	},
}

func init() {
	authCmd.AddCommand(statusCmd)
}
