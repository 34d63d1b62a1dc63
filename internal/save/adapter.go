// Package save serialises session snapshots to the keyed slot store and to
// portable export documents, and restores them. It only ever receives copies
// of session state and returns copies back; it never patches a live session.
package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"noircase/internal/catalog"
	"noircase/internal/db"
	"noircase/internal/errors"
	"noircase/internal/models"
)

const (
	// SlotMin and SlotMax bound the save slot range.
	SlotMin = 1
	SlotMax = 6

	// previewLength is how many runes of the latest message a slot preview keeps.
	previewLength = 30

	// ExportVersion is the version stamp of the export document format.
	ExportVersion = "1.0"
)

var (
	ErrEmptySlot      = errors.NewSentinel("save slot is empty")
	ErrCorruptSave    = errors.NewSentinel("save slot is corrupt")
	ErrSlotOutOfRange = errors.NewSentinel("save slot number out of range")
	ErrUnknownCase    = errors.NewSentinel("import references an unknown case")
	ErrInvalidImport  = errors.NewSentinel("import document is missing required fields")
	ErrNothingToSave  = errors.NewSentinel("nothing to save yet")
)

// Record is the JSON value stored under a slot key.
type Record struct {
	Timestamp int64            `json:"timestamp"`
	Preview   string           `json:"preview"`
	Messages  []models.Message `json:"messages"`
	Clues     []models.Clue    `json:"clues"`
}

// ExportDocument is the portable snapshot written to a downloadable file and
// accepted back on import. Messages and clues must round-trip losslessly.
type ExportDocument struct {
	Version   string           `json:"version"`
	CaseID    string           `json:"caseId"`
	Messages  []models.Message `json:"messages"`
	Clues     []models.Clue    `json:"clues"`
	Timestamp int64            `json:"timestamp"`
}

// SlotInfo describes one slot for slot-picker rendering.
type SlotInfo struct {
	Slot      int    `json:"slot"`
	Empty     bool   `json:"empty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// Adapter is the persistence boundary of the engine.
type Adapter struct {
	dbs       *db.Database
	catalog   *catalog.Catalog
	namespace string
	logger    *slog.Logger
}

func NewAdapter(dbs *db.Database, cat *catalog.Catalog, namespace string, logger *slog.Logger) *Adapter {
	return &Adapter{
		dbs:       dbs,
		catalog:   cat,
		namespace: namespace,
		logger:    logger.With("source", "save.Adapter"),
	}
}

func (a *Adapter) slotKey(caseID string, slot int) string {
	return fmt.Sprintf("%s:%s:slot:%d", a.namespace, caseID, slot)
}

// SaveSlot overwrites the slot unconditionally. There is no merge and no
// versioning beyond the stored timestamp.
func (a *Adapter) SaveSlot(
	ctx context.Context,
	caseID string,
	slot int,
	messages []models.Message,
	clues []models.Clue,
) error {
	if slot < SlotMin || slot > SlotMax {
		return errors.Wrap(ErrSlotOutOfRange, "save slot", slog.Int("slot", slot))
	}
	if caseID == "" || len(messages) == 0 {
		return ErrNothingToSave
	}

	record := Record{
		Timestamp: time.Now().UnixMilli(),
		Preview:   truncate(messages[len(messages)-1].Text, previewLength),
		Messages:  messages,
		Clues:     clues,
	}
	value, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "marshal save record")
	}

	stmt := `INSERT INTO store (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err = a.dbs.ReadWrite.ExecContext(ctx, stmt, a.slotKey(caseID, slot), value); err != nil {
		return errors.Wrap(err, "write save slot", slog.String("case_id", caseID), slog.Int("slot", slot))
	}
	return nil
}

// LoadSlot reads and parses a slot. An absent key is ErrEmptySlot; stored but
// unparseable content is ErrCorruptSave. Neither touches any session state.
//
// The resolved case is looked up against the catalog; a caseID no longer in
// the catalog falls back to the default case, which callers must treat as a
// degraded but non-fatal outcome.
func (a *Adapter) LoadSlot(ctx context.Context, caseID string, slot int) (models.Case, Record, error) {
	if slot < SlotMin || slot > SlotMax {
		return models.Case{}, Record{}, errors.Wrap(ErrSlotOutOfRange, "load slot", slog.Int("slot", slot))
	}

	var value []byte
	stmt := `SELECT value FROM store WHERE key = ?`
	err := a.dbs.ReadOnly.QueryRowContext(ctx, stmt, a.slotKey(caseID, slot)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Case{}, Record{}, ErrEmptySlot
	}
	if err != nil {
		return models.Case{}, Record{}, errors.Wrap(err, "read save slot", slog.String("case_id", caseID), slog.Int("slot", slot))
	}

	var record Record
	if err = json.Unmarshal(value, &record); err != nil {
		return models.Case{}, Record{}, errors.Wrap(ErrCorruptSave, "unmarshal save record",
			slog.String("case_id", caseID), slog.Int("slot", slot))
	}

	resolved, err := a.catalog.Get(caseID)
	if err != nil {
		a.logger.WarnContext(ctx, "saved case no longer in catalog, falling back to default",
			slog.String("case_id", caseID))
		resolved = a.catalog.Default()
	}
	return resolved, record, nil
}

// ListSlots reports every slot in the range for the given case.
func (a *Adapter) ListSlots(ctx context.Context, caseID string) ([]SlotInfo, error) {
	slots := make([]SlotInfo, 0, SlotMax-SlotMin+1)
	for slot := SlotMin; slot <= SlotMax; slot++ {
		info := SlotInfo{Slot: slot, Empty: true}

		var value []byte
		stmt := `SELECT value FROM store WHERE key = ?`
		err := a.dbs.ReadOnly.QueryRowContext(ctx, stmt, a.slotKey(caseID, slot)).Scan(&value)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, errors.Wrap(err, "read save slot", slog.Int("slot", slot))
		default:
			var record Record
			if err = json.Unmarshal(value, &record); err == nil {
				info.Empty = false
				info.Timestamp = record.Timestamp
				info.Preview = record.Preview
			}
			// A corrupt slot renders as empty in the picker; loading it
			// reports ErrCorruptSave with detail.
		}
		slots = append(slots, info)
	}
	return slots, nil
}

// Export produces the portable document and its deterministic filename.
// There is nothing meaningful to export before a case is selected and at
// least one message exists.
func (a *Adapter) Export(caseID string, messages []models.Message, clues []models.Clue) (ExportDocument, string, error) {
	if caseID == "" || len(messages) == 0 {
		return ExportDocument{}, "", ErrNothingToSave
	}
	now := time.Now()
	doc := ExportDocument{
		Version:   ExportVersion,
		CaseID:    caseID,
		Messages:  messages,
		Clues:     clues,
		Timestamp: now.UnixMilli(),
	}
	filename := fmt.Sprintf("%s-%s.json", caseID, now.Format("2006-01-02"))
	return doc, filename, nil
}

// ParseImport validates a user-supplied export document and resolves its case
// against the catalog. Any missing required field aborts the import; an
// unknown case identifier aborts it too. No state is mutated here — the
// caller replaces the live session wholesale with the returned values.
func (a *Adapter) ParseImport(data []byte) (models.Case, ExportDocument, error) {
	// Pointer fields distinguish absent from empty.
	var wire struct {
		Version   string            `json:"version"`
		CaseID    *string           `json:"caseId"`
		Messages  *[]models.Message `json:"messages"`
		Clues     *[]models.Clue    `json:"clues"`
		Timestamp int64             `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return models.Case{}, ExportDocument{}, errors.Wrap(ErrInvalidImport, "unmarshal import document")
	}
	if wire.CaseID == nil || *wire.CaseID == "" || wire.Messages == nil || wire.Clues == nil {
		return models.Case{}, ExportDocument{}, ErrInvalidImport
	}

	resolved, err := a.catalog.Get(*wire.CaseID)
	if err != nil {
		return models.Case{}, ExportDocument{}, errors.Wrap(ErrUnknownCase, "resolve imported case",
			slog.String("case_id", *wire.CaseID))
	}

	doc := ExportDocument{
		Version:   wire.Version,
		CaseID:    *wire.CaseID,
		Messages:  *wire.Messages,
		Clues:     *wire.Clues,
		Timestamp: wire.Timestamp,
	}
	return resolved, doc, nil
}

// truncate cuts s to at most n runes, the way slot previews are displayed.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
