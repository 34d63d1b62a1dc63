package main

import (
	"net/http"

	"noircase/internal/errors"
	"noircase/internal/models"
	"noircase/internal/session"
)

type turnPayload struct {
	State statePayload   `json:"state"`
	Last  models.Message `json:"assistantMessage"`
}

// submitTurn plays one turn against the narrative agent. Gateway failures are
// already folded into the conversation by the engine, so they come back as a
// normal 200 with a diagnostic assistant message.
func (app *application) submitTurn(w http.ResponseWriter, r *http.Request) {
	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	reply, err := engine.Submit(r.Context(), r.FormValue("text"))
	switch {
	case errors.Is(err, session.ErrEmptyUtterance):
		app.clientError(w, r, http.StatusUnprocessableEntity, "say something first")
		return
	case errors.Is(err, session.ErrNoCase):
		app.clientError(w, r, http.StatusConflict, "select a case before investigating")
		return
	case errors.Is(err, session.ErrCaseSolved):
		app.clientError(w, r, http.StatusConflict, "the case is closed; start a new one")
		return
	case errors.Is(err, session.ErrBusy):
		app.clientError(w, r, http.StatusConflict, "the assistant is still working on your last question")
		return
	case errors.Is(err, session.ErrStaleTurn):
		// The player already moved to another case; there is nothing to render.
		app.clientError(w, r, http.StatusConflict, "the session changed while the assistant was answering")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, turnPayload{
		State: newStatePayload(r, engine.Snapshot()),
		Last:  reply,
	})
}
