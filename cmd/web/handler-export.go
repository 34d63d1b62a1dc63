package main

import (
	"fmt"
	"net/http"

	"noircase/internal/errors"
	"noircase/internal/save"
)

// exportSession offers the current session as a downloadable JSON document.
func (app *application) exportSession(w http.ResponseWriter, r *http.Request) {
	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	snap := engine.Snapshot()

	doc, filename, err := app.saves.Export(snap.Case.ID, snap.Messages, snap.Clues)
	if errors.Is(err, save.ErrNothingToSave) {
		app.clientError(w, r, http.StatusConflict, "nothing to export yet")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	app.writeJSON(w, r, http.StatusOK, doc)
}
