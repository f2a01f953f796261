package models

// Playoff представляет сетку single elimination.
// Schema задаёт формат серии для каждого раунда, Progress — раунды
// в порядке создания, каждый раунд — это список id серий.
type Playoff struct {
	ID          string          `json:"id" db:"id"`
	SortedTeams []string        `json:"sorted_teams"`
	Schema      []SeriaDuration `json:"schema"`
	Progress    [][]string      `json:"progress"`
	WinnerID    *string         `json:"winner_id,omitempty" db:"winner_id"`
	IsComplete  bool            `json:"is_complete" db:"is_complete"`
}
