package models

// SeriaDuration — формат серии best-of-N, соответствует ENUM в БД.
type SeriaDuration int

const (
	BestOfOne   SeriaDuration = 1
	BestOfThree SeriaDuration = 3
	BestOfFive  SeriaDuration = 5
	BestOfSeven SeriaDuration = 7
)

func (d SeriaDuration) IsValid() bool {
	switch d {
	case BestOfOne, BestOfThree, BestOfFive, BestOfSeven:
		return true
	}
	return false
}

// WinThreshold возвращает число побед, необходимое для завершения серии.
func (d SeriaDuration) WinThreshold() int {
	return (int(d) + 1) / 2
}

// Seria представляет серию best-of-N. MatchOrder — авторитетный порядок
// матчей, так как хранилище не гарантирует порядок выборки.
// Серия без заданного пула карт хранит в MapPool пустой список.
type Seria struct {
	ID             string        `json:"id" db:"id"`
	UpSeedTeamID   string        `json:"up_seed_team_id" db:"up_seed_team_id"`
	DownSeedTeamID string        `json:"down_seed_team_id" db:"down_seed_team_id"`
	BelongID       *string       `json:"belong_id,omitempty" db:"belong_id"`
	Duration       SeriaDuration `json:"duration" db:"duration"`
	MapPool        []string      `json:"map_pool"`
	MatchOrder     []string      `json:"match_order"`
	WinnerID       *string       `json:"winner_id,omitempty" db:"winner_id"`
	IsComplete     bool          `json:"is_complete" db:"is_complete"`
}
