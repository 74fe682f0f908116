package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompter reads answers from the command's input. Secrets are read without
// echo when the input is a terminal; piped input is read line by line.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{in: in, reader: bufio.NewReader(in), out: cmd.ErrOrStderr()}
}

func (p *prompter) terminal() (int, bool) {
	f, ok := p.in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func (p *prompter) line(prompt string) (string, error) {
	if _, ok := p.terminal(); ok {
		fmt.Fprint(p.out, prompt)
	}
	s, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", fmt.Errorf("reading %s: %w", strings.TrimSuffix(strings.TrimSpace(prompt), ":"), err)
	}
	return strings.TrimRight(s, "\r\n"), nil
}

func (p *prompter) secret(prompt string) (string, error) {
	fd, ok := p.terminal()
	if !ok {
		return p.line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// valueOr returns the flag value, prompting for it when empty.
func (p *prompter) valueOr(cmd *cobra.Command, flag, prompt string) (string, error) {
	v, _ := cmd.Flags().GetString(flag)
	if v != "" {
		return v, nil
	}
	return p.line(prompt)
}

// newPassword asks for a password twice.
func (p *prompter) newPassword(prompt, confirmPrompt string) (string, string, error) {
	pw, err := p.secret(prompt)
	if err != nil {
		return "", "", err
	}
	confirm, err := p.secret(confirmPrompt)
	if err != nil {
		return "", "", err
	}
	return pw, confirm, nil
}
