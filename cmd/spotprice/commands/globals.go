package commands

import (
	"log/slog"
	"os"

	"flickprice/lib/configutil"
	"flickprice/lib/credstore"
	"flickprice/services/spotprice"
	"flickprice/services/spotprice/history"

	"dario.cat/mergo"
)

// loadConfig reads spotprice.json5 from the cwd or any parent, falling
// back field by field to the built-in defaults.
func loadConfig() (spotprice.Config, error) {
	config, err := configutil.ReadRecursively[spotprice.Config]("spotprice.json5")
	if err != nil && !os.IsNotExist(err) {
		return spotprice.Config{}, err
	}
	err = mergo.Merge(&config, spotprice.DefaultConfig())
	if err != nil {
		return spotprice.Config{}, err
	}
	return config, nil
}

func newService() (*spotprice.Service, func(), error) {
	config, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	creds := credstore.New(config.CredentialFile, credstore.TerminalPrompter{})

	hist, err := history.Open(config.HistoryFile)
	if err != nil {
		// history is a nicety, resolving the price does not depend on it
		slog.Warn("unable to open the price history store", "file", config.HistoryFile, "err", err)
		return spotprice.NewService(config, creds, nil), func() {}, nil
	}

	cleanup := func() {
		if err := hist.Close(); err != nil {
			slog.Warn("failed to close the price history store", "err", err)
		}
	}
	return spotprice.NewService(config, creds, hist), cleanup, nil
}
