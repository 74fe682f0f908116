package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/quatton/aquakeys/apps/aqstub/config"
	"github.com/quatton/aquakeys/apps/aqstub/server"
	"github.com/quatton/aquakeys/pkg/aqerr"
	"github.com/quatton/aquakeys/pkg/transport"
	"github.com/quatton/aquakeys/pkg/validation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "mona.adel@gmail.com"
	testPassword = "S3cure!pass"
)

type cli struct {
	t       *testing.T
	baseURL string
	state   string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	cfg := &config.EnvConfig{
		BaseURL:         "http://localhost:5000",
		ClientID:        transport.DefaultClientID,
		JWTSecret:       "0123456789abcdef0123456789abcdef",
		Issuer:          "aquakeys-stub",
		AccessTokenTTL:  60,
		RefreshTokenTTL: 3600,
	}
	srv := server.New(cfg, server.Options{})
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)

	return &cli{t: t, baseURL: hs.URL, state: filepath.Join(dir, "state.yaml")}
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes aqctl with args and stdin, the way a separate process would:
// nothing but the state file carries over between runs.
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	resetFlags(rootCmd)
	cfgFile = ""

	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--base-url", c.baseURL, "--store", "file", "--store-path", c.state, "-q"}, args...))

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) register() {
	c.t.Helper()
	out, err := c.run(testPassword+"\n"+testPassword+"\n", "register",
		"--first-name", "Mona", "--last-name", "Adel", "--email", testEmail,
		"--phone", "01012345678", "--country", "Egypt", "--city", "Cairo", "--role", "landlord")
	require.NoError(c.t, err)
	require.Contains(c.t, out, "Account created")
}

func (c *cli) login() {
	c.t.Helper()
	out, err := c.run(testPassword+"\n", "auth", "login", "--email", testEmail, "--password-stdin")
	require.NoError(c.t, err)
	require.Contains(c.t, out, "Logged in as: Mona Adel <"+testEmail+">")
}

func TestLoginStatusLogout(t *testing.T) {
	c := newCLI(t)
	c.register()
	c.login()

	out, err := c.run("", "auth", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in to "+c.baseURL)
	assert.Contains(t, out, testEmail)
	assert.Contains(t, out, "Token expires:")

	out, err = c.run("", "profile", "me", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "firstName: Mona")
	assert.Contains(t, out, "- Landlord")

	out, err = c.run("", "auth", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	out, err = c.run("", "auth", "status", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"loggedIn": false`)

	// logging out twice is fine
	_, err = c.run("", "auth", "logout")
	assert.NoError(t, err)
}

func TestLoginRejected(t *testing.T) {
	c := newCLI(t)
	c.register()

	_, err := c.run("wrong\n", "auth", "login", "--email", testEmail, "--password-stdin")
	var rejected *rejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "Invalid email or password", rejected.Error())
}

func TestRegisterValidation(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("weak\nweak\n", "register",
		"--first-name", "Mona", "--last-name", "Adel", "--email", "mona@yahoo.com",
		"--phone", "01012345678", "--country", "Egypt", "--city", "Cairo")
	ve, ok := validation.AsError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Contains(t, ve.Fields(), "email")
	assert.Contains(t, ve.Fields(), "password")

	_, err = c.run("x\nx\n", "register", "--role", "admin",
		"--first-name", "Mona", "--last-name", "Adel", "--email", testEmail, "--phone", "01012345678")
	assert.ErrorContains(t, err, "unknown role")
}

func TestProfileUpdate(t *testing.T) {
	c := newCLI(t)
	c.register()
	c.login()

	out, err := c.run("", "profile", "update", "--city", "Giza", "--state", "Giza", "--zip", "1234567")
	require.NoError(t, err)
	assert.Contains(t, out, "Giza")
	assert.Contains(t, out, "1234567")

	out, err = c.run("", "profile", "me", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"city": "Giza"`)
	assert.Contains(t, out, `"firstName": "Mona"`)
}

func TestProfileRequiresLogin(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "profile", "me")
	assert.True(t, aqerr.IsCode(err, aqerr.CodeUnauthorized), "got %v", err)
}

func TestChangePassword(t *testing.T) {
	c := newCLI(t)
	c.register()
	c.login()

	out, err := c.run(testPassword+"\nN3w!passw\nN3w!passw\n", "change-password")
	require.NoError(t, err)
	assert.Contains(t, out, "Password changed")

	out, err = c.run("N3w!passw\n", "auth", "login", "--email", testEmail, "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as")
}

func TestDeviceIDIsStable(t *testing.T) {
	c := newCLI(t)

	first, err := c.run("", "device")
	require.NoError(t, err)
	second, err := c.run("", "device")
	require.NoError(t, err)

	assert.NotEmpty(t, strings.TrimSpace(first))
	assert.Equal(t, first, second)
}

func TestUnknownOutputFormat(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("", "auth", "status", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}
