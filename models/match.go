package models

// DefaultRoundsAmount — количество раундов в матче по умолчанию.
// Сумма счёта выше этого значения означает овертайм.
const DefaultRoundsAmount = 30

// Match представляет одиночный матч. Score хранится парой указателей:
// nil-элемент означает, что результат ещё не внесён.
type Match struct {
	ID           string  `json:"id" db:"id"`
	HomeTeamID   string  `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   string  `json:"away_team_id" db:"away_team_id"`
	BelongID     *string `json:"belong_id,omitempty" db:"belong_id"`
	Map          string  `json:"map" db:"map"`
	RoundsAmount int     `json:"rounds_amount" db:"rounds_amount"`
	Score        [2]*int `json:"score"`
	WinnerID     *string `json:"winner_id,omitempty" db:"winner_id"`
	IsComplete   bool    `json:"is_complete" db:"is_complete"`
	IsOvertime   *bool   `json:"is_overtime,omitempty" db:"is_overtime"`
}
