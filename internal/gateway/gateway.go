// Package gateway is the boundary to the external narrative-reasoning agent.
// The engine treats the agent as an opaque, possibly-failing oracle; every
// response is validated here before it reaches the session engine.
package gateway

import (
	"context"

	"noircase/internal/errors"
	"noircase/internal/models"
)

var (
	// ErrUnavailable means no credential is configured for the agent.
	ErrUnavailable = errors.NewSentinel("agent gateway is not configured")
	// ErrMalformed means a response arrived but was not structurally valid.
	ErrMalformed = errors.NewSentinel("malformed agent response")
)

// Status is the advisory connectivity-probe outcome. It never blocks or
// alters session operations.
type Status string

const (
	StatusOK Status = "ok"
	// StatusUnreachable means the agent could not be reached at all.
	StatusUnreachable Status = "unreachable"
	// StatusRestricted means the agent was reached but rejected the caller
	// for policy or region reasons.
	StatusRestricted Status = "restricted"
)

// Exchange is one prior turn of the bounded history sent to the agent.
type Exchange struct {
	Speaker models.Role
	Text    string
}

// TurnRequest carries everything the agent needs for one turn.
type TurnRequest struct {
	History   []Exchange
	Utterance string
	// Briefing is the player-visible case material; HiddenScript is the
	// ground truth the agent may consult but must never reveal verbatim.
	Briefing     string
	HiddenScript string
	// Instruction is the case-specific system prompt.
	Instruction string
	// KnownClueTitles tells the agent which clues the player already holds so
	// it does not generate duplicates.
	KnownClueTitles []string
}

// ClueCandidate is a clue proposed by the agent, not yet admitted to the ledger.
type ClueCandidate struct {
	Title       string
	Description string
	Category    models.ClueType
	Content     string
}

// TurnResult is a validated agent response. Reply may still be empty; the
// engine substitutes its own diagnostic text in that case.
type TurnResult struct {
	Reply        string
	Solved       bool
	SolveSummary string
	NewClues     []ClueCandidate
}

// Gateway is the external narrative-agent boundary consumed by the engine.
type Gateway interface {
	Turn(ctx context.Context, req TurnRequest) (TurnResult, error)
	CheckReachability(ctx context.Context) Status
}
