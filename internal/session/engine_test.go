package session_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"noircase/internal/gateway"
	"noircase/internal/models"
	"noircase/internal/session"
	"noircase/internal/testhelpers"
)

func testCase() models.Case {
	return models.Case{
		ID:             "case-test",
		Title:          "The Silent Dinner",
		Location:       "Harrow Hall",
		InitialContext: "The victim was found at dawn.",
		FullScript:     "The butler poisoned the soup.",
		IntroText:      "Good evening, detective. The file is in the archive.",
		FirstClueTitle: "Case briefing: The Silent Dinner",
	}
}

func newEngine(t *testing.T) (*session.Engine, *gateway.Scripted) {
	t.Helper()
	agent := gateway.NewScripted()
	engine := session.NewEngine(agent, testhelpers.NewLogger(io.Discard))
	return engine, agent
}

func TestEngine_SelectCase(t *testing.T) {
	engine, _ := newEngine(t)
	require.Equal(t, session.StateNoCase, engine.State())

	engine.SelectCase(testCase())

	snap := engine.Snapshot()
	require.Equal(t, session.StateActive, snap.State)

	// Exactly one introductory assistant message.
	require.Len(t, snap.Messages, 1)
	require.Equal(t, models.RoleAssistant, snap.Messages[0].Role)
	require.Equal(t, "Good evening, detective. The file is in the archive.", snap.Messages[0].Text)

	// Exactly one seeded briefing clue carrying the initial context.
	require.Len(t, snap.Clues, 1)
	require.Equal(t, "Case briefing: The Silent Dinner", snap.Clues[0].Title)
	require.Equal(t, "The victim was found at dawn.", snap.Clues[0].Content)
	require.Equal(t, models.ClueTypeNote, snap.Clues[0].Type)

	require.Empty(t, snap.SolvedSummary)
	require.False(t, snap.Loading)
}

func TestEngine_SelectCase_fallbacks(t *testing.T) {
	engine, _ := newEngine(t)
	engine.SelectCase(models.Case{ID: "bare", Title: "Bare Case", InitialContext: "ctx"})

	snap := engine.Snapshot()
	require.Len(t, snap.Messages, 1)
	require.NotEmpty(t, snap.Messages[0].Text)
	require.Len(t, snap.Clues, 1)
	require.Equal(t, "Case briefing: Bare Case", snap.Clues[0].Title)
}

func TestEngine_Submit_rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*session.Engine, *gateway.Scripted)
		text    string
		wantErr error
	}{
		{
			name:    "whitespace-only utterance",
			setup:   func(e *session.Engine, _ *gateway.Scripted) { e.SelectCase(testCase()) },
			text:    "   \t\n",
			wantErr: session.ErrEmptyUtterance,
		},
		{
			name:    "no case selected",
			setup:   func(_ *session.Engine, _ *gateway.Scripted) {},
			text:    "hello",
			wantErr: session.ErrNoCase,
		},
		{
			name: "solved session rejects further submissions",
			setup: func(e *session.Engine, agent *gateway.Scripted) {
				e.SelectCase(testCase())
				agent.Enqueue(gateway.TurnResult{Reply: "Done.", Solved: true, SolveSummary: "The butler did it."})
				_, err := e.Submit(context.Background(), "I accuse the butler")
				require.NoError(t, err)
			},
			text:    "one more question",
			wantErr: session.ErrCaseSolved,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, agent := newEngine(t)
			tt.setup(engine, agent)
			before := engine.Snapshot()
			callsBefore := len(agent.Requests)

			_, err := engine.Submit(context.Background(), tt.text)

			require.ErrorIs(t, err, tt.wantErr)
			// No message appended, no gateway call made.
			require.Len(t, engine.Snapshot().Messages, len(before.Messages))
			require.Len(t, agent.Requests, callsBefore)
		})
	}
}

func TestEngine_Submit_success(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{
		Reply: "The cook saw nothing, but the pantry was unlocked.",
		NewClues: []gateway.ClueCandidate{
			{Title: "Unlocked pantry", Category: models.ClueTypeNote, Content: "The pantry door stood open."},
			{Title: "Cook's statement", Category: models.ClueTypeNote},
		},
	})

	reply, err := engine.Submit(context.Background(), "Question the cook")
	require.NoError(t, err)
	require.Equal(t, models.RoleAssistant, reply.Role)
	require.Equal(t, "The cook saw nothing, but the pantry was unlocked.", reply.Text)

	snap := engine.Snapshot()
	require.Equal(t, session.StateActive, snap.State)
	require.False(t, snap.Loading)
	require.False(t, snap.LastTurnFailed)

	// intro + player + assistant
	require.Len(t, snap.Messages, 3)
	require.Equal(t, models.RolePlayer, snap.Messages[1].Role)
	require.Equal(t, "Question the cook", snap.Messages[1].Text)

	// New clues land as a block in front of the briefing clue, batch order kept.
	titles := make([]string, len(snap.Clues))
	for i, c := range snap.Clues {
		titles[i] = c.Title
	}
	require.Equal(t, []string{"Unlocked pantry", "Cook's statement", "Case briefing: The Silent Dinner"}, titles)

	// The request carried the case material and known clue titles.
	require.Len(t, agent.Requests, 1)
	req := agent.Requests[0]
	require.Equal(t, "The victim was found at dawn.", req.Briefing)
	require.Equal(t, "The butler poisoned the soup.", req.HiddenScript)
	require.Equal(t, []string{"Case briefing: The Silent Dinner"}, req.KnownClueTitles)
	// The bounded history holds only the intro, not the new utterance.
	require.Len(t, req.History, 1)
	require.Equal(t, models.RoleAssistant, req.History[0].Speaker)
}

func TestEngine_Submit_duplicateCluesInOneResponse(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{
		Reply: "You find a glove.",
		NewClues: []gateway.ClueCandidate{
			{Title: "Bloody Glove"},
			{Title: "Bloody Glove"},
		},
	})

	_, err := engine.Submit(context.Background(), "Search the hedge")
	require.NoError(t, err)

	count := 0
	for _, c := range engine.Snapshot().Clues {
		if c.Title == "Bloody Glove" {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestEngine_Submit_gatewayFailure(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	before := engine.Snapshot()
	agent.EnqueueError(gateway.ErrMalformed)

	reply, err := engine.Submit(context.Background(), "Question the groom")
	require.NoError(t, err)
	require.Equal(t, models.RoleAssistant, reply.Role)
	require.NotEmpty(t, reply.Text)

	snap := engine.Snapshot()
	// Player message plus one synthetic diagnostic assistant message.
	require.Len(t, snap.Messages, len(before.Messages)+2)
	// Ledger and solved state untouched.
	require.Equal(t, before.Clues, snap.Clues)
	require.Empty(t, snap.SolvedSummary)
	require.Equal(t, session.StateActive, snap.State)
	require.False(t, snap.Loading)
	require.True(t, snap.LastTurnFailed)
}

func TestEngine_Submit_emptyReplyFallback(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{Reply: ""})

	reply, err := engine.Submit(context.Background(), "Anything?")
	require.NoError(t, err)
	require.NotEmpty(t, reply.Text)
}

func TestEngine_Submit_solve(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{
		Reply:        "Your reasoning holds.",
		Solved:       true,
		SolveSummary: "The butler did it.",
	})

	_, err := engine.Submit(context.Background(), "The butler poisoned the soup to hide the theft")
	require.NoError(t, err)

	snap := engine.Snapshot()
	require.Equal(t, session.StateSolved, snap.State)
	require.Equal(t, "The butler did it.", snap.SolvedSummary)

	// Solved without a summary falls back to a generic one.
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{Reply: "Indeed.", Solved: true})
	_, err = engine.Submit(context.Background(), "Accusation")
	require.NoError(t, err)
	require.NotEmpty(t, engine.Snapshot().SolvedSummary)
}

func TestEngine_Submit_busyWhileInFlight(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{Reply: "Slow answer."})
	agent.Started = make(chan struct{}, 1)
	agent.Release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := engine.Submit(context.Background(), "First question")
		done <- err
	}()
	<-agent.Started

	// A second submission while one is pending is rejected, not queued.
	_, err := engine.Submit(context.Background(), "Second question")
	require.ErrorIs(t, err, session.ErrBusy)

	close(agent.Release)
	require.NoError(t, <-done)
	require.Len(t, agent.Requests, 1)
	require.False(t, engine.Snapshot().Loading)
}

func TestEngine_Submit_staleResponseDiscarded(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{
		Reply:    "Answer for the old case.",
		Solved:   true,
		NewClues: []gateway.ClueCandidate{{Title: "Stale clue"}},
	})
	agent.Started = make(chan struct{}, 1)
	agent.Release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := engine.Submit(context.Background(), "Old question")
		done <- err
	}()
	<-agent.Started

	// The player switches cases while the call is outstanding.
	other := testCase()
	other.ID = "case-other"
	other.Title = "The Second Stain"
	other.FirstClueTitle = ""
	engine.SelectCase(other)

	close(agent.Release)
	require.ErrorIs(t, <-done, session.ErrStaleTurn)

	// The late response must not have mutated the post-switch session.
	snap := engine.Snapshot()
	require.Equal(t, "case-other", snap.Case.ID)
	require.Equal(t, session.StateActive, snap.State)
	require.Len(t, snap.Messages, 1)
	require.Len(t, snap.Clues, 1)
	require.NotEqual(t, "Stale clue", snap.Clues[0].Title)
	require.Empty(t, snap.SolvedSummary)
	require.False(t, snap.Loading)
}

func TestEngine_ResetToNoCase(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{Reply: "Noted."})
	_, err := engine.Submit(context.Background(), "A question")
	require.NoError(t, err)

	engine.ResetToNoCase()

	snap := engine.Snapshot()
	require.Equal(t, session.StateNoCase, snap.State)
	require.Empty(t, snap.Case.ID)
	require.Empty(t, snap.Messages)
	require.Empty(t, snap.Clues)
	require.Empty(t, snap.SolvedSummary)
}

func TestEngine_Restore(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())
	agent.Enqueue(gateway.TurnResult{Reply: "Done.", Solved: true, SolveSummary: "Solved."})
	_, err := engine.Submit(context.Background(), "Accuse")
	require.NoError(t, err)
	require.Equal(t, session.StateSolved, engine.State())

	messages := []models.Message{
		{ID: "01", Role: models.RoleAssistant, Text: "Welcome back.", Timestamp: 1},
		{ID: "02", Role: models.RolePlayer, Text: "Where were we?", Timestamp: 2},
	}
	clues := []models.Clue{
		{ID: "c1", Title: "Restored clue", Type: models.ClueTypeNote, Timestamp: 1},
	}
	engine.Restore(testCase(), messages, clues)

	snap := engine.Snapshot()
	// Restoring clears the solved sub-state and replaces state wholesale.
	require.Equal(t, session.StateActive, snap.State)
	require.Empty(t, snap.SolvedSummary)
	require.Equal(t, messages, snap.Messages)
	require.Equal(t, clues, snap.Clues)
}

func TestEngine_historyWindowIsBounded(t *testing.T) {
	engine, agent := newEngine(t)
	engine.SelectCase(testCase())

	for i := 0; i < 8; i++ {
		agent.Enqueue(gateway.TurnResult{Reply: "Noted."})
		_, err := engine.Submit(context.Background(), "Another question")
		require.NoError(t, err)
	}

	last := agent.Requests[len(agent.Requests)-1]
	require.Len(t, last.History, session.HistoryWindow)
}
