package main

import (
	"log/slog"
	"net/http"
	"sync"

	"noircase/internal/gateway"
	"noircase/internal/random"
	"noircase/internal/session"
)

const playerIDSessionKey = "playerID"

// engineRegistry hands out one session engine per player. Engines live in
// process memory; durable state goes through the save adapter.
type engineRegistry struct {
	mu      sync.Mutex
	agent   gateway.Gateway
	logger  *slog.Logger
	engines map[string]*session.Engine
}

func newEngineRegistry(agent gateway.Gateway, logger *slog.Logger) *engineRegistry {
	return &engineRegistry{
		agent:   agent,
		logger:  logger,
		engines: map[string]*session.Engine{},
	}
}

func (reg *engineRegistry) get(playerID string) *session.Engine {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	engine, ok := reg.engines[playerID]
	if !ok {
		engine = session.NewEngine(reg.agent, reg.logger)
		reg.engines[playerID] = engine
	}
	return engine
}

// engine resolves the engine for the request's player, minting a player ID
// into the scs session on first contact.
func (app *application) engine(r *http.Request) (*session.Engine, error) {
	ctx := r.Context()
	playerID := app.sessionManager.GetString(ctx, playerIDSessionKey)
	if playerID == "" {
		var err error
		if playerID, err = random.Letters(20); err != nil {
			return nil, err
		}
		app.sessionManager.Put(ctx, playerIDSessionKey, playerID)
	}
	return app.engines.get(playerID), nil
}
