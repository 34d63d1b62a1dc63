package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the cases in the catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		tb, err := openToolbox()
		if err != nil {
			return err
		}
		defer func() {
			_ = tb.Close()
		}()

		for _, c := range tb.catalog.All() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", c.ID, c.Title, c.Location)
		}
		return nil
	},
}
