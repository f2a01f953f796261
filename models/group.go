package models

// PlacesCriteria — критерий ранжирования команд в группе.
type PlacesCriteria string

const (
	CriteriaPoints PlacesCriteria = "points"
	CriteriaWins   PlacesCriteria = "wins"
	CriteriaSeed   PlacesCriteria = "seed"
)

// StageGames — ссылки на игры стадии: одиночные матчи и серии.
type StageGames struct {
	Matches []string `json:"matches,omitempty"`
	Series  []string `json:"series,omitempty"`
}

// StageProgress — одна стадия группового этапа. Tables == nil означает,
// что стадия наследует посев предыдущей стадии с таблицами.
type StageProgress struct {
	Tables [][]string `json:"tables"`
	Games  StageGames `json:"games"`
}

// GroupTeamStat — статистика команды внутри группы. RangeCriteria —
// вектор ключей ранжирования в порядке приоритета PlacesCriteria,
// сравнивается лексикографически.
type GroupTeamStat struct {
	TeamStat
	Seed          int   `json:"seed"`
	Points        int   `json:"points"`
	RangeCriteria []int `json:"range_criteria"`
}

// Group представляет многостадийный круговой этап.
// Stats всегда выводима пересчётом по всем матчам и сериям группы.
// Result заполняется только при полном завершении: финальные таблицы
// каждой стадии, отсортированные компаратором ранжирования.
type Group struct {
	ID             string                   `json:"id" db:"id"`
	Teams          []string                 `json:"teams"`
	Stages         int                      `json:"stages" db:"stages"`
	PlacesCriteria []PlacesCriteria         `json:"places_criteria"`
	PointKoeffs    []int                    `json:"point_koeffs"`
	Progress       []StageProgress          `json:"progress"`
	Stats          map[string]GroupTeamStat `json:"stats"`
	Result         [][][]string             `json:"result"`
	IsComplete     bool                     `json:"is_complete" db:"is_complete"`
}
