package main

import (
	"net/http"
	"strconv"

	"noircase/internal/errors"
	"noircase/internal/save"
)

func (app *application) listSlots(w http.ResponseWriter, r *http.Request) {
	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	snap := engine.Snapshot()
	if snap.Case.ID == "" {
		app.clientError(w, r, http.StatusConflict, "select a case first")
		return
	}

	slots, err := app.saves.ListSlots(r.Context(), snap.Case.ID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, slots)
}

func (app *application) saveSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(r.FormValue("slot"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "slot must be a number")
		return
	}

	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	snap := engine.Snapshot()

	err = app.saves.SaveSlot(r.Context(), snap.Case.ID, slot, snap.Messages, snap.Clues)
	switch {
	case errors.Is(err, save.ErrSlotOutOfRange):
		app.clientError(w, r, http.StatusBadRequest, "no such filing cabinet")
		return
	case errors.Is(err, save.ErrNothingToSave):
		app.clientError(w, r, http.StatusConflict, "nothing to file away yet")
		return
	case err != nil:
		// Storage being unavailable degrades saving to a notice; the live
		// conversation keeps working.
		app.logger.Error("save slot unavailable", errors.SlogError(err))
		app.clientError(w, r, http.StatusServiceUnavailable, "the filing cabinet is jammed; your session is unaffected")
		return
	}

	app.writeJSON(w, r, http.StatusOK, map[string]any{"saved": true, "slot": slot})
}

func (app *application) loadSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(r.FormValue("slot"))
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "slot must be a number")
		return
	}

	engine, err := app.engine(r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	caseID := r.FormValue("caseId")
	if caseID == "" {
		caseID = engine.Snapshot().Case.ID
	}

	resolved, record, err := app.saves.LoadSlot(r.Context(), caseID, slot)
	switch {
	case errors.Is(err, save.ErrSlotOutOfRange):
		app.clientError(w, r, http.StatusBadRequest, "no such filing cabinet")
		return
	case errors.Is(err, save.ErrEmptySlot):
		app.clientError(w, r, http.StatusNotFound, "that cabinet is empty")
		return
	case errors.Is(err, save.ErrCorruptSave):
		// The session in play stays untouched.
		app.clientError(w, r, http.StatusUnprocessableEntity, "the filed record is damaged and cannot be read")
		return
	case err != nil:
		app.logger.Error("load slot unavailable", errors.SlogError(err))
		app.clientError(w, r, http.StatusServiceUnavailable, "the filing cabinet is jammed; your session is unaffected")
		return
	}

	engine.Restore(resolved, record.Messages, record.Clues)
	app.writeJSON(w, r, http.StatusOK, newStatePayload(r, engine.Snapshot()))
}
