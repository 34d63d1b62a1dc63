package models

type CaseStatus string

const (
	CaseStatusActive CaseStatus = "active"
	CaseStatusSolved CaseStatus = "solved"
	CaseStatusCold   CaseStatus = "cold"
)

// Case is an immutable descriptor of one mystery scenario. It is defined at
// catalog load time and never mutated.
//
// FullScript is the hidden ground truth. It is sent to the narrative agent but
// must never reach the player-visible layer.
type Case struct {
	ID             string     `json:"id" yaml:"id"`
	Title          string     `json:"title" yaml:"title"`
	Location       string     `json:"location" yaml:"location"`
	InitialContext string     `json:"initialContext" yaml:"initial_context"`
	FullScript     string     `json:"-" yaml:"full_script"`
	Status         CaseStatus `json:"status,omitempty" yaml:"status"`

	// IntroText is the assistant message that opens a fresh session on this
	// case. FirstClueTitle names the seeded briefing clue. Both are per-case
	// data so that the engine never branches on case identity.
	IntroText      string `json:"-" yaml:"intro_text"`
	FirstClueTitle string `json:"-" yaml:"first_clue_title"`

	// AgentInstruction is the case-specific system prompt for the narrative
	// agent, including any solve-gating rules.
	AgentInstruction string `json:"-" yaml:"agent_instruction"`
}
