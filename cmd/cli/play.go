package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"noircase/internal/catalog"
	"noircase/internal/errors"
	"noircase/internal/models"
	"noircase/internal/save"
	"noircase/internal/session"
)

var playCaseID string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run an interactive investigation session",
	Long: `Run an interactive investigation session in the terminal.

Plain input is sent to the narrative agent as the detective's next question.
Slash commands control the session:

  /case ID   switch to another case (discards the current conversation)
  /clues     list the evidence collected so far
  /slots     list the save slots for the current case
  /save N    save the session into slot N
  /load N    restore the session from slot N
  /export    write the session to an export document in the working directory
  /quit      leave the session`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playCaseID, "case", "", "Case to open (default: the first case in the catalog)")
}

// repl holds the pieces one interactive session needs. It is separate from
// the liner loop so the command handling can be driven directly in tests.
type repl struct {
	engine  *session.Engine
	saves   *save.Adapter
	catalog *catalog.Catalog
	out     io.Writer
}

func runPlay(cmd *cobra.Command, _ []string) error {
	tb, err := openToolbox()
	if err != nil {
		return err
	}
	defer func() {
		_ = tb.Close()
	}()

	opening := tb.catalog.Default()
	if playCaseID != "" {
		if opening, err = tb.catalog.Get(playCaseID); err != nil {
			return errors.Wrap(err, "open case", slog.String("case_id", playCaseID))
		}
	}

	r := &repl{
		engine:  session.NewEngine(tb.agent, tb.logger),
		saves:   tb.saves,
		catalog: tb.catalog,
		out:     cmd.OutOrStdout(),
	}
	r.engine.SelectCase(opening)
	r.printOpening()

	line := liner.NewLiner()
	defer func() {
		_ = line.Close()
	}()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt("detective> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read prompt")
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if r.handle(cmd.Context(), input) {
			return nil
		}
	}
}

// handle runs one line of input and reports whether the session should end.
func (r *repl) handle(ctx context.Context, input string) (quit bool) {
	if !strings.HasPrefix(input, "/") {
		r.submit(ctx, input)
		return false
	}

	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit":
		fmt.Fprintln(r.out, "Closing the case file. Goodbye, detective.")
		return true
	case "/clues":
		r.printClues()
	case "/slots":
		r.printSlots(ctx)
	case "/case":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: /case ID")
			return false
		}
		r.switchCase(fields[1])
	case "/save":
		r.saveSlot(ctx, fields[1:])
	case "/load":
		r.loadSlot(ctx, fields[1:])
	case "/export":
		r.export()
	default:
		fmt.Fprintf(r.out, "unknown command %s\n", fields[0])
	}
	return false
}

func (r *repl) submit(ctx context.Context, text string) {
	before := len(r.engine.Snapshot().Clues)
	reply, err := r.engine.Submit(ctx, text)
	switch {
	case errors.Is(err, session.ErrCaseSolved):
		fmt.Fprintln(r.out, "The case is already closed. Switch cases with /case or leave with /quit.")
		return
	case errors.Is(err, session.ErrNoCase):
		fmt.Fprintln(r.out, "Open a case first with /case ID.")
		return
	case err != nil:
		fmt.Fprintln(r.out, "Something went wrong; try again.")
		return
	}

	fmt.Fprintf(r.out, "\n%s\n\n", reply.Text)

	snap := r.engine.Snapshot()
	if fresh := len(snap.Clues) - before; fresh > 0 {
		for _, clue := range snap.Clues[:fresh] {
			fmt.Fprintf(r.out, "  [new evidence] %s\n", clue.Title)
		}
		fmt.Fprintln(r.out)
	}
	if snap.State == session.StateSolved {
		fmt.Fprintln(r.out, "*** CASE SOLVED ***")
		if snap.SolvedSummary != "" {
			fmt.Fprintln(r.out, snap.SolvedSummary)
		}
		fmt.Fprintln(r.out)
	}
}

func (r *repl) printOpening() {
	snap := r.engine.Snapshot()
	fmt.Fprintf(r.out, "\n=== %s ===\n%s\n\n", snap.Case.Title, snap.Case.Location)
	if last, ok := lastMessage(snap.Messages); ok {
		fmt.Fprintf(r.out, "%s\n\n", last.Text)
	}
}

func (r *repl) printClues() {
	snap := r.engine.Snapshot()
	if len(snap.Clues) == 0 {
		fmt.Fprintln(r.out, "No evidence collected yet.")
		return
	}
	for _, clue := range snap.Clues {
		fmt.Fprintf(r.out, "- %s (%s)\n  %s\n", clue.Title, clue.Type, clue.Description)
	}
}

func (r *repl) printSlots(ctx context.Context) {
	snap := r.engine.Snapshot()
	slots, err := r.saves.ListSlots(ctx, snap.Case.ID)
	if err != nil {
		fmt.Fprintln(r.out, "The filing cabinet is jammed; saved games are unavailable right now.")
		return
	}
	for _, slot := range slots {
		if slot.Empty {
			fmt.Fprintf(r.out, "%d: (empty)\n", slot.Slot)
			continue
		}
		fmt.Fprintf(r.out, "%d: %s\n", slot.Slot, slot.Preview)
	}
}

func (r *repl) switchCase(id string) {
	next, err := r.catalog.Get(id)
	if err != nil {
		fmt.Fprintf(r.out, "No case with ID %q. Known cases:\n", id)
		for _, c := range r.catalog.All() {
			fmt.Fprintf(r.out, "  %s  %s\n", c.ID, c.Title)
		}
		return
	}
	r.engine.SelectCase(next)
	r.printOpening()
}

func (r *repl) saveSlot(ctx context.Context, args []string) {
	slot, ok := parseSlot(r.out, args)
	if !ok {
		return
	}
	snap := r.engine.Snapshot()
	err := r.saves.SaveSlot(ctx, snap.Case.ID, slot, snap.Messages, snap.Clues)
	switch {
	case errors.Is(err, save.ErrNothingToSave):
		fmt.Fprintln(r.out, "Nothing to save yet.")
	case err != nil:
		fmt.Fprintln(r.out, "The filing cabinet is jammed; the game was not saved.")
	default:
		fmt.Fprintf(r.out, "Saved to slot %d.\n", slot)
	}
}

func (r *repl) loadSlot(ctx context.Context, args []string) {
	slot, ok := parseSlot(r.out, args)
	if !ok {
		return
	}
	snap := r.engine.Snapshot()
	resolved, record, err := r.saves.LoadSlot(ctx, snap.Case.ID, slot)
	switch {
	case errors.Is(err, save.ErrEmptySlot):
		fmt.Fprintf(r.out, "Slot %d is empty.\n", slot)
		return
	case errors.Is(err, save.ErrCorruptSave):
		fmt.Fprintf(r.out, "Slot %d is damaged and cannot be restored.\n", slot)
		return
	case err != nil:
		fmt.Fprintln(r.out, "The filing cabinet is jammed; saved games are unavailable right now.")
		return
	}

	r.engine.Restore(resolved, record.Messages, record.Clues)
	fmt.Fprintf(r.out, "Restored slot %d.\n", slot)
	if last, ok := lastMessage(record.Messages); ok {
		fmt.Fprintf(r.out, "\n%s\n\n", last.Text)
	}
}

func (r *repl) export() {
	snap := r.engine.Snapshot()
	doc, filename, err := r.saves.Export(snap.Case.ID, snap.Messages, snap.Clues)
	switch {
	case errors.Is(err, save.ErrNothingToSave):
		fmt.Fprintln(r.out, "Nothing to export yet.")
		return
	case err != nil:
		fmt.Fprintln(r.out, "Export failed; try again.")
		return
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintln(r.out, "Export failed; try again.")
		return
	}
	if err = os.WriteFile(filename, data, 0o644); err != nil {
		fmt.Fprintf(r.out, "Could not write %s: %v\n", filename, err)
		return
	}
	fmt.Fprintf(r.out, "Exported to %s.\n", filename)
}

func parseSlot(out io.Writer, args []string) (int, bool) {
	if len(args) != 1 {
		fmt.Fprintf(out, "usage: /save N or /load N (N between %d and %d)\n", save.SlotMin, save.SlotMax)
		return 0, false
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil || slot < save.SlotMin || slot > save.SlotMax {
		fmt.Fprintf(out, "slot must be a number between %d and %d\n", save.SlotMin, save.SlotMax)
		return 0, false
	}
	return slot, true
}

func lastMessage(messages []models.Message) (models.Message, bool) {
	if len(messages) == 0 {
		return models.Message{}, false
	}
	return messages[len(messages)-1], true
}
