package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-lookup/internal/config"
	"github.com/vzahanych/weather-lookup/internal/wmo"
)

var codesCmd = &cobra.Command{
	Use:   "codes",
	Short: "Print the WMO weather code table",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCodes(cmd.OutOrStdout(), wmo.For(config.GetConfig().Lookup.Language))
	},
}

func printCodes(w io.Writer, table *wmo.Table) error {
	for code, label := range table.Entries() {
		if _, err := fmt.Fprintf(w, "%2d  %s\n", code, label); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "--  %s\n", table.Fallback())
	return err
}
