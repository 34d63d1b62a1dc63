package main

import (
	"io"
	"net/http"

	"noircase/internal/errors"
	"noircase/internal/save"
)

// maxImportSize bounds the uploaded document to something a session could
// plausibly produce.
const maxImportSize = 10 << 20

// importSession replaces the live session with an uploaded export document.
// Validation failures abort with no state change.
func (app *application) importSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	file, _, err := r.FormFile("document")
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "attach the exported case file")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "could not read the attached file")
		return
	}

	resolved, doc, err := app.saves.ParseImport(data)
	switch {
	case errors.Is(err, save.ErrInvalidImport):
		app.clientError(w, r, http.StatusUnprocessableEntity, "the file is not a valid case export")
		return
	case errors.Is(err, save.ErrUnknownCase):
		app.clientError(w, r, http.StatusNotFound, "the file references a case this archive does not hold")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	engine.Restore(resolved, doc.Messages, doc.Clues)
	app.writeJSON(w, r, http.StatusOK, newStatePayload(r, engine.Snapshot()))
}
