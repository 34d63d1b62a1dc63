// Package session owns the mutable investigation state: the active case, the
// conversation log, the clue ledger, and the solved-state transitions. The
// engine is the sole writer of all of them.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"noircase/internal/conversation"
	"noircase/internal/errors"
	"noircase/internal/gateway"
	"noircase/internal/ledger"
	"noircase/internal/models"
)

type State string

const (
	StateNoCase State = "no_case"
	StateActive State = "active"
	StateSolved State = "solved"
)

// HistoryWindow is how many prior messages accompany each agent turn.
const HistoryWindow = 10

const (
	defaultIntroText = "Good day, detective. The case file is waiting in the " +
		"archive, briefing on top. Where shall we begin?"
	briefingDescription = "Notes on the fundamentals of the case."
	emptyReplyFallback  = "[Garbled transmission] The report from headquarters " +
		"arrived blank. Ask your question again."
	unavailableDiagnostic = "[Connection interrupted] Headquarters cannot be " +
		"reached. The terminal is missing its credentials."
	failureDiagnostic = "[Transmission failed] The line to headquarters dropped " +
		"mid-report. Ask your question again."
	genericSolveSummary = "Case closed. The full account has been entered into " +
		"the record."
)

var (
	ErrEmptyUtterance = errors.NewSentinel("utterance is empty")
	ErrBusy           = errors.NewSentinel("a turn is already in flight")
	ErrNoCase         = errors.NewSentinel("no case selected")
	ErrCaseSolved     = errors.NewSentinel("case is solved; select a new case first")
	// ErrStaleTurn means the session changed while the turn was in flight and
	// the agent's late response was discarded.
	ErrStaleTurn = errors.NewSentinel("session changed while turn was in flight")
)

// Engine is the session state machine. All state is guarded by mu; the agent
// gateway call happens outside the lock on captured copies, so the engine
// stays responsive while a turn is in flight.
type Engine struct {
	mu     sync.Mutex
	logger *slog.Logger
	agent  gateway.Gateway

	state         State
	activeCase    models.Case
	log           *conversation.Log
	clues         *ledger.Ledger
	solvedSummary string
	loading       bool
	// epoch identifies the session generation. Case switches, resets and
	// restores bump it; a turn settling against an older epoch is stale and
	// must be discarded rather than applied.
	epoch          uint64
	lastTurnFailed bool
}

func NewEngine(agent gateway.Gateway, logger *slog.Logger) *Engine {
	return &Engine{
		logger: logger.With("source", "session.Engine"),
		agent:  agent,
		state:  StateNoCase,
		log:    conversation.NewLog(),
		clues:  ledger.New(),
	}
}

// SelectCase starts a fresh session on the given case. Allowed from any
// state; any in-flight turn settles as stale.
func (e *Engine) SelectCase(c models.Case) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activeCase = c
	e.state = StateActive
	e.solvedSummary = ""
	e.loading = false
	e.epoch++

	e.log.Replace(nil)
	intro := c.IntroText
	if intro == "" {
		intro = defaultIntroText
	}
	e.log.Append(models.RoleAssistant, intro)

	title := c.FirstClueTitle
	if title == "" {
		title = "Case briefing: " + c.Title
	}
	e.clues.Replace(nil)
	e.clues.Add(ledger.Candidate{
		Title:       title,
		Description: briefingDescription,
		Type:        models.ClueTypeNote,
		Content:     c.InitialContext,
	})
}

// ResetToNoCase returns to the case menu, clearing all session state.
func (e *Engine) ResetToNoCase() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activeCase = models.Case{}
	e.state = StateNoCase
	e.solvedSummary = ""
	e.loading = false
	e.epoch++
	e.log.Replace(nil)
	e.clues.Replace(nil)
}

// Restore replaces the session wholesale with loaded or imported state and
// clears any solved sub-state. The persistence adapter never patches a live
// session; it goes through here.
func (e *Engine) Restore(c models.Case, messages []models.Message, clues []models.Clue) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activeCase = c
	e.state = StateActive
	e.solvedSummary = ""
	e.loading = false
	e.epoch++
	e.log.Replace(messages)
	e.clues.Replace(clues)
}

// Submit plays one turn: the player's utterance goes to the conversation log
// immediately, the agent is consulted, and its reply, clues, and solve signal
// are folded back in.
//
// Gateway failures are non-fatal: they settle into the returned synthetic
// assistant message. A non-nil error means the submission was rejected before
// anything happened (empty text, busy, no case, solved) or that the response
// arrived stale and was discarded.
func (e *Engine) Submit(ctx context.Context, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyUtterance
	}

	e.mu.Lock()
	switch {
	case e.state == StateNoCase:
		e.mu.Unlock()
		return models.Message{}, ErrNoCase
	case e.state == StateSolved:
		e.mu.Unlock()
		return models.Message{}, ErrCaseSolved
	case e.loading:
		e.mu.Unlock()
		return models.Message{}, ErrBusy
	}

	// The bounded history is captured before the player's message goes in.
	history := e.log.Window(HistoryWindow)
	req := gateway.TurnRequest{
		History:         toExchanges(history),
		Utterance:       text,
		Briefing:        e.activeCase.InitialContext,
		HiddenScript:    e.activeCase.FullScript,
		Instruction:     e.activeCase.AgentInstruction,
		KnownClueTitles: e.clues.Titles(),
	}
	epoch := e.epoch
	e.log.Append(models.RolePlayer, text)
	e.loading = true
	e.mu.Unlock()

	result, err := e.agent.Turn(ctx, req)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != epoch {
		// The session moved on while the call was in flight. The late
		// response must not touch the new session.
		e.logger.DebugContext(ctx, "discarding stale agent response")
		return models.Message{}, ErrStaleTurn
	}
	e.loading = false

	if err != nil {
		e.lastTurnFailed = true
		e.logger.WarnContext(ctx, "agent turn failed", errors.SlogError(err))
		diagnostic := failureDiagnostic
		if errors.Is(err, gateway.ErrUnavailable) {
			diagnostic = unavailableDiagnostic
		}
		return e.log.Append(models.RoleAssistant, diagnostic), nil
	}

	e.lastTurnFailed = false
	reply := result.Reply
	if reply == "" {
		reply = emptyReplyFallback
	}
	msg := e.log.Append(models.RoleAssistant, reply)

	if len(result.NewClues) > 0 {
		e.clues.AddBlock(toCandidates(result.NewClues))
	}

	if result.Solved {
		summary := result.SolveSummary
		if summary == "" {
			summary = genericSolveSummary
		}
		e.solvedSummary = summary
		e.state = StateSolved
	}

	return msg, nil
}

// Snapshot is a deep copy of the session state for rendering or persisting.
type Snapshot struct {
	State          State
	Case           models.Case
	Messages       []models.Message
	Clues          []models.Clue
	SolvedSummary  string
	Loading        bool
	LastTurnFailed bool
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:          e.state,
		Case:           e.activeCase,
		Messages:       e.log.All(),
		Clues:          e.clues.All(),
		SolvedSummary:  e.solvedSummary,
		Loading:        e.loading,
		LastTurnFailed: e.lastTurnFailed,
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func toExchanges(messages []models.Message) []gateway.Exchange {
	out := make([]gateway.Exchange, len(messages))
	for i, m := range messages {
		out[i] = gateway.Exchange{Speaker: m.Role, Text: m.Text}
	}
	return out
}

func toCandidates(clues []gateway.ClueCandidate) []ledger.Candidate {
	out := make([]ledger.Candidate, len(clues))
	for i, c := range clues {
		out[i] = ledger.Candidate{
			Title:       c.Title,
			Description: c.Description,
			Type:        c.Category,
			Content:     c.Content,
		}
	}
	return out
}
