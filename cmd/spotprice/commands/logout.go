package commands

import (
	"fmt"
	"os"

	"flickprice/lib/credstore"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(logoutCmd)
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Removes the saved credentials and session cookies.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		creds := credstore.New(config.CredentialFile, credstore.TerminalPrompter{})
		if err := creds.Invalidate(); err != nil {
			return fmt.Errorf("remove credentials: %w", err)
		}
		if err := os.Remove(config.CookieFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove session cookies: %w", err)
		}
		return nil
	},
}
