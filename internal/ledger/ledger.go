// Package ledger keeps the discovered clues for the active session,
// deduplicated by title and displayed newest first.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"noircase/internal/models"
)

// Candidate is a clue as proposed by the narrative agent, before the ledger
// assigns it an identity.
type Candidate struct {
	Title       string
	Description string
	Type        models.ClueType
	Content     string
}

// Ledger is owned by the session engine, which serialises access to it.
type Ledger struct {
	clues  []models.Clue
	titles map[string]struct{}
}

func New() *Ledger {
	return &Ledger{titles: map[string]struct{}{}}
}

// Add inserts the candidate at the front of the ledger. It is a no-op when a
// clue with the same title already exists; the title match is case-sensitive
// and exact.
func (l *Ledger) Add(candidate Candidate) bool {
	if _, dup := l.titles[candidate.Title]; dup {
		return false
	}
	clue := models.Clue{
		ID:          uuid.NewString(),
		Title:       candidate.Title,
		Description: candidate.Description,
		Type:        candidate.Type,
		Content:     candidate.Content,
		Timestamp:   time.Now().UnixMilli(),
	}
	l.clues = append([]models.Clue{clue}, l.clues...)
	l.titles[candidate.Title] = struct{}{}
	return true
}

// AddBlock inserts one turn's candidates as a block at the front of the
// ledger, preserving their relative order. Candidates whose title is already
// present are silently dropped; a title repeated within the batch keeps its
// first occurrence.
func (l *Ledger) AddBlock(candidates []Candidate) int {
	fresh := make([]Candidate, 0, len(candidates))
	seen := map[string]struct{}{}
	for _, c := range candidates {
		if _, dup := seen[c.Title]; dup {
			continue
		}
		seen[c.Title] = struct{}{}
		fresh = append(fresh, c)
	}
	added := 0
	// Prepending in reverse keeps the batch order inside the newest-first block.
	for i := len(fresh) - 1; i >= 0; i-- {
		if l.Add(fresh[i]) {
			added++
		}
	}
	return added
}

// Titles returns the clue titles in display order. The engine sends these to
// the agent so it does not generate duplicates upstream.
func (l *Ledger) Titles() []string {
	out := make([]string, len(l.clues))
	for i, c := range l.clues {
		out[i] = c.Title
	}
	return out
}

// All returns a copy of the clues, newest first.
func (l *Ledger) All() []models.Clue {
	out := make([]models.Clue, len(l.clues))
	copy(out, l.clues)
	return out
}

// Replace swaps the whole ledger for the given clues. Used for session reset
// and for load/import.
func (l *Ledger) Replace(clues []models.Clue) {
	l.clues = make([]models.Clue, len(clues))
	copy(l.clues, clues)
	l.titles = make(map[string]struct{}, len(clues))
	for _, c := range clues {
		l.titles[c.Title] = struct{}{}
	}
}

func (l *Ledger) Len() int {
	return len(l.clues)
}
