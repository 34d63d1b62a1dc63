package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, noSurf)

	mux.HandleFunc("GET /api/healthy", app.healthy)

	mux.Handle("GET /api/state", session.ThenFunc(app.state))
	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("POST /api/case/select", session.ThenFunc(app.selectCase))
	mux.Handle("POST /api/reset", session.ThenFunc(app.resetSession))

	mux.Handle("POST /api/turn", session.ThenFunc(app.submitTurn))

	mux.Handle("GET /api/slots", session.ThenFunc(app.listSlots))
	mux.Handle("POST /api/slots/save", session.ThenFunc(app.saveSlot))
	mux.Handle("POST /api/slots/load", session.ThenFunc(app.loadSlot))

	mux.Handle("GET /api/export", session.ThenFunc(app.exportSession))
	mux.Handle("POST /api/import", session.ThenFunc(app.importSession))

	mux.Handle("GET /api/status", session.ThenFunc(app.connectivityStatus))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}
