package models

// ClueType is a narrative-category tag, not a media type.
type ClueType string

const (
	ClueTypeNote     ClueType = "note"
	ClueTypeArtifact ClueType = "artifact"
)

// Clue is a discrete, player-visible fact discovered during play. Within one
// session no two clues share a title; the title is the dedup key with
// case-sensitive exact match. Clues are never mutated after creation.
type Clue struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        ClueType `json:"type"`
	Content     string   `json:"content"`
	Timestamp   int64    `json:"timestamp"`
}
