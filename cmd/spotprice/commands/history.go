package commands

import (
	"fmt"
	"os"
	"time"

	"flickprice/services/spotprice/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of fetches to list")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists recently fetched spot prices, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		hist, err := history.Open(config.HistoryFile)
		if err != nil {
			return err
		}
		defer hist.Close()

		fetches, err := hist.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Fetched", "Period end", "Price (cents)"})
		for _, f := range fetches {
			t.AppendRow(table.Row{
				f.FetchedAt.Format(time.ANSIC),
				f.PeriodEnd.Format(time.ANSIC),
				fmt.Sprintf("%.2f", f.Price),
			})
		}
		t.Render()
		return nil
	},
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
