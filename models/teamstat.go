package models

// Индексы TotalMatchesStat.
const (
	StatWinRegular = iota
	StatWinOvertime
	StatDraw
	StatLostOvertime
	StatLostRegular
)

// TeamStat — агрегированная статистика команды по сыгранным матчам.
// TotalGames для серии считается иначе: одна победа или одно поражение
// за завершённую серию целиком.
type TeamStat struct {
	TotalMatchesStat [5]int `json:"total_matches_stat"`
	TotalScore       [2]int `json:"total_score"`
	TotalGames       [2]int `json:"total_games"`
}
