package main

import (
	"net/http"

	"noircase/internal/catalog"
	"noircase/internal/errors"
)

func (app *application) listCases(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.catalog.All())
}

func (app *application) selectCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.FormValue("caseId")
	selected, err := app.catalog.Get(caseID)
	if errors.Is(err, catalog.ErrUnknownCase) {
		app.clientError(w, r, http.StatusNotFound, "no such case in the catalog")
		return
	}

	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	engine.SelectCase(selected)
	app.writeJSON(w, r, http.StatusOK, newStatePayload(r, engine.Snapshot()))
}

func (app *application) resetSession(w http.ResponseWriter, r *http.Request) {
	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	engine.ResetToNoCase()
	app.writeJSON(w, r, http.StatusOK, newStatePayload(r, engine.Snapshot()))
}
