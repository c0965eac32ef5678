package credstore

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Credentials for the account dashboard. Only ever held in memory for
// the duration of a login attempt and never logged.
type Credentials struct {
	Username string
	Password string
}

// Prompter collects credentials interactively. It is injected so the
// store has no direct dependency on terminal I/O.
type Prompter interface {
	Prompt(ctx context.Context) (Credentials, error)
}

// Store persists one username/password pair as a two line file,
// username first, owner read/write only.
type Store struct {
	path     string
	prompter Prompter
}

func New(path string, prompter Prompter) *Store {
	return &Store{path: path, prompter: prompter}
}

// Load reads the persisted credentials. A missing, unreadable or
// malformed file all read as absent, never as an error.
func (s *Store) Load() (Credentials, bool) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("credential file is unreadable", "file", s.path, "err", err)
		}
		return Credentials{}, false
	}

	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	if len(lines) != 2 || lines[0] == "" || lines[1] == "" {
		slog.Warn("credential file is malformed, ignoring it", "file", s.path)
		return Credentials{}, false
	}
	return Credentials{Username: lines[0], Password: lines[1]}, true
}

// Get returns the persisted credentials, prompting for and saving new
// ones when none exist.
func (s *Store) Get(ctx context.Context) (Credentials, error) {
	if creds, ok := s.Load(); ok {
		return creds, nil
	}
	return s.PromptAndSave(ctx)
}

// PromptAndSave collects credentials through the prompter and persists
// them. A persistence failure still returns the in-memory credentials,
// the user is just prompted again next run.
func (s *Store) PromptAndSave(ctx context.Context) (Credentials, error) {
	creds, err := s.prompter.Prompt(ctx)
	if err != nil {
		return Credentials{}, err
	}

	record := creds.Username + "\n" + creds.Password + "\n"
	err = os.WriteFile(s.path, []byte(record), 0o600)
	if err != nil {
		slog.Warn(
			"unable to save your credentials, you will be prompted again next run",
			"file", s.path, "err", err,
		)
	}
	return creds, nil
}

// Invalidate removes the persisted credentials. Called only once the
// remote service has rejected them, so known-bad values are never
// retried.
func (s *Store) Invalidate() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
