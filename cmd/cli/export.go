package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"noircase/internal/errors"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export CASE_ID SLOT",
	Short: "Write a saved slot as a portable export document",
	Args:  cobra.ExactArgs(2),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: CASE_ID-DATE.json)")
}

func runExport(cmd *cobra.Command, args []string) error {
	caseID := args[0]
	slot, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrap(err, "parse slot number", slog.String("slot", args[1]))
	}

	tb, err := openToolbox()
	if err != nil {
		return err
	}
	defer func() {
		_ = tb.Close()
	}()

	resolved, record, err := tb.saves.LoadSlot(cmd.Context(), caseID, slot)
	if err != nil {
		return errors.Wrap(err, "load slot", slog.String("case_id", caseID), slog.Int("slot", slot))
	}

	doc, filename, err := tb.saves.Export(resolved.ID, record.Messages, record.Clues)
	if err != nil {
		return errors.Wrap(err, "build export document")
	}
	if exportOutput != "" {
		filename = exportOutput
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal export document")
	}
	if err = os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "write export document", slog.String("filename", filename))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "exported %s slot %d to %s\n", resolved.ID, slot, filename)
	return nil
}
