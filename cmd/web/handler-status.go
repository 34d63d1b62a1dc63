package main

import (
	"net/http"

	"noircase/internal/gateway"
)

type statusPayload struct {
	Probe          gateway.Status `json:"probe"`
	LastTurnFailed bool           `json:"lastTurnFailed"`
}

// connectivityStatus reports the advisory reachability probe. It never blocks
// or alters session operations.
func (app *application) connectivityStatus(w http.ResponseWriter, r *http.Request) {
	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, statusPayload{
		Probe:          app.agent.CheckReachability(r.Context()),
		LastTurnFailed: engine.Snapshot().LastTurnFailed,
	})
}
