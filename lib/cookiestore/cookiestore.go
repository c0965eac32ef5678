// Package cookiestore persists the authenticated session's cookie jar
// between invocations so most runs never touch the sign-in endpoint.
package cookiestore

import (
	"log/slog"
	"os"

	cookiejar "github.com/juju/persistent-cookiejar"
	"golang.org/x/net/publicsuffix"
)

// Open restores the cookie jar persisted at path. A cold session is a
// normal state: a missing file yields an empty jar, and a corrupt file
// is discarded with a warning rather than surfaced as an error.
func Open(path string) (*cookiejar.Jar, error) {
	opts := &cookiejar.Options{
		Filename:         path,
		PublicSuffixList: publicsuffix.List,
	}

	jar, err := cookiejar.New(opts)
	if err == nil {
		return jar, nil
	}

	slog.Warn(
		"stored session is unreadable, starting a fresh session",
		"file", path, "err", err,
	)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return cookiejar.New(opts)
}

// Save persists the jar with owner-only permissions. Failure is not an
// error, it only costs a fresh login next run.
func Save(jar *cookiejar.Jar, path string) {
	err := jar.Save()
	if err != nil {
		slog.Warn(
			"unable to save session cookies, you will be logged in again next run",
			"file", path, "err", err,
		)
		return
	}
	if err := os.Chmod(path, 0o600); err != nil {
		slog.Warn("unable to restrict session file permissions", "file", path, "err", err)
	}
}
