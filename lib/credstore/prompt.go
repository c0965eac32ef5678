package credstore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// TerminalPrompter reads a username from stdin and a password from the
// terminal without echoing it.
type TerminalPrompter struct {
	In  *os.File
	Out io.Writer
}

func (p TerminalPrompter) Prompt(ctx context.Context) (Credentials, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	fmt.Fprintln(out, "We need to save your credentials to access the website.")
	fmt.Fprint(out, "Please enter your username (email address): ")

	username, err := bufio.NewReader(in).ReadString('\n')
	if err != nil {
		return Credentials{}, fmt.Errorf("read username: %w", err)
	}

	fmt.Fprint(out, "And your password (this won't be shown on the screen): ")
	password, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return Credentials{}, fmt.Errorf("read password: %w", err)
	}

	return Credentials{
		Username: strings.TrimSpace(username),
		Password: string(password),
	}, nil
}
