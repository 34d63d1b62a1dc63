package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"noircase/internal/ledger"
	"noircase/internal/models"
)

func TestLedger_Add(t *testing.T) {
	l := ledger.New()

	require.True(t, l.Add(ledger.Candidate{Title: "Burnt match", Type: models.ClueTypeArtifact}))
	require.True(t, l.Add(ledger.Candidate{Title: "Groom's statement", Type: models.ClueTypeNote}))

	// Same title is a no-op, even with different content.
	require.False(t, l.Add(ledger.Candidate{Title: "Burnt match", Content: "different"}))

	// Dedup is case-sensitive.
	require.True(t, l.Add(ledger.Candidate{Title: "burnt match"}))

	require.Equal(t, 3, l.Len())
	require.Equal(t, []string{"burnt match", "Groom's statement", "Burnt match"}, l.Titles())

	for _, c := range l.All() {
		require.NotEmpty(t, c.ID)
		require.NotZero(t, c.Timestamp)
	}
}

func TestLedger_AddBlock(t *testing.T) {
	tests := []struct {
		name       string
		existing   []ledger.Candidate
		batch      []ledger.Candidate
		wantAdded  int
		wantTitles []string
	}{
		{
			name: "batch keeps order in newest-first block",
			existing: []ledger.Candidate{
				{Title: "Case briefing"},
			},
			batch: []ledger.Candidate{
				{Title: "Small window"},
				{Title: "Scratches on the sill"},
			},
			wantAdded:  2,
			wantTitles: []string{"Small window", "Scratches on the sill", "Case briefing"},
		},
		{
			name: "duplicate titles within one batch collapse to one clue",
			batch: []ledger.Candidate{
				{Title: "Bloody Glove"},
				{Title: "Bloody Glove"},
			},
			wantAdded:  1,
			wantTitles: []string{"Bloody Glove"},
		},
		{
			name: "titles already in the ledger are dropped silently",
			existing: []ledger.Candidate{
				{Title: "Burnt match"},
			},
			batch: []ledger.Candidate{
				{Title: "Burnt match"},
				{Title: "Parrot feather"},
			},
			wantAdded:  1,
			wantTitles: []string{"Parrot feather", "Burnt match"},
		},
		{
			name:       "empty batch",
			batch:      nil,
			wantAdded:  0,
			wantTitles: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := ledger.New()
			for _, c := range tt.existing {
				require.True(t, l.Add(c))
			}

			added := l.AddBlock(tt.batch)

			require.Equal(t, tt.wantAdded, added)
			require.Equal(t, tt.wantTitles, l.Titles())
		})
	}
}

func TestLedger_Replace(t *testing.T) {
	l := ledger.New()
	require.True(t, l.Add(ledger.Candidate{Title: "Old clue"}))

	l.Replace([]models.Clue{
		{ID: "1", Title: "Restored clue"},
	})

	require.Equal(t, []string{"Restored clue"}, l.Titles())
	// The dedup index follows the replacement.
	require.False(t, l.Add(ledger.Candidate{Title: "Restored clue"}))
	require.True(t, l.Add(ledger.Candidate{Title: "Old clue"}))
}
