package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"noircase/internal/errors"
	"noircase/internal/save"
)

var importSlot int

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load an export document into a save slot",
	Long: `Load an export document into a save slot for the case it references.
The document is validated first; a rejected file leaves the store untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().IntVar(&importSlot, "slot", save.SlotMin, "Target save slot")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(err, "read import file", slog.String("filename", args[0]))
	}

	tb, err := openToolbox()
	if err != nil {
		return err
	}
	defer func() {
		_ = tb.Close()
	}()

	resolved, doc, err := tb.saves.ParseImport(data)
	if err != nil {
		return errors.Wrap(err, "parse import file", slog.String("filename", args[0]))
	}

	if err = tb.saves.SaveSlot(cmd.Context(), resolved.ID, importSlot, doc.Messages, doc.Clues); err != nil {
		return errors.Wrap(err, "store imported session",
			slog.String("case_id", resolved.ID), slog.Int("slot", importSlot))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %s into slot %d\n", resolved.ID, importSlot)
	return nil
}
