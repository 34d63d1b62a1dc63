package main

import (
	"net/http"

	"github.com/justinas/nosurf"

	"noircase/internal/models"
	"noircase/internal/session"
)

// statePayload is the session as the view renders it. The case descriptor's
// JSON tags keep the hidden script and agent instruction out of it.
type statePayload struct {
	State          session.State    `json:"state"`
	Case           *models.Case     `json:"case,omitempty"`
	Messages       []models.Message `json:"messages"`
	Clues          []models.Clue    `json:"clues"`
	SolvedSummary  string           `json:"solvedSummary,omitempty"`
	Loading        bool             `json:"loading"`
	LastTurnFailed bool             `json:"lastTurnFailed"`
	CSRFToken      string           `json:"csrfToken,omitempty"`
}

func newStatePayload(r *http.Request, snap session.Snapshot) statePayload {
	payload := statePayload{
		State:          snap.State,
		Messages:       snap.Messages,
		Clues:          snap.Clues,
		SolvedSummary:  snap.SolvedSummary,
		Loading:        snap.Loading,
		LastTurnFailed: snap.LastTurnFailed,
		CSRFToken:      nosurf.Token(r),
	}
	if snap.Case.ID != "" {
		c := snap.Case
		payload.Case = &c
	}
	return payload
}

func (app *application) state(w http.ResponseWriter, r *http.Request) {
	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, newStatePayload(r, engine.Snapshot()))
}
