package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/quatton/aquakeys/pkg/api"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// accepted turns an envelope with succeeded=false into a rejectedError.
func accepted[T any](env *api.Envelope[T]) error {
	if env == nil {
		return &rejectedError{}
	}
	if !env.Succeeded {
		return &rejectedError{message: env.Message}
	}
	return nil
}

// done prints the server's message for a call that returns no data.
func done[T any](cmd *cobra.Command, env *api.Envelope[T], fallback string) error {
	if err := accepted(env); err != nil {
		return err
	}
	msg := env.Message
	if msg == "" {
		msg = fallback
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// render writes v as YAML or JSON when --output asks for it, and calls text
// otherwise.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	format, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()

	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "", "text":
		text(w)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, yaml or json)", format)
	}
}

func printProfile(w io.Writer, p *api.Profile) {
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%-8s %s\n", label+":", value)
	}
	row("Name", p.FirstName+" "+p.LastName)
	if p.Email != "" {
		row("Email", p.Email)
	}
	if p.PhoneNumber != "" {
		row("Phone", p.PhoneNumber)
	}
	row("Country", p.Country)
	row("City", p.City)
	row("Street", p.Street)
	row("State", p.State)
	row("Zip", p.ZipCode)
	for _, r := range p.Roles {
		row("Role", r)
	}
	if p.ID != "" {
		row("ID", p.ID)
	}
}
