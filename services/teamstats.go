package services

import "github.com/faceoff-gg/progression/models"

// GetTeamStatByMatches сворачивает завершённые матчи команды в TeamStat.
// Чистая функция: матчи, где команда не участвует или результат не внесён,
// игнорируются. Ничья определяется по winnerId == nil у завершённого матча
// и попадает в собственный слот, не затрагивая TotalGames.
func GetTeamStatByMatches(teamID string, matches []*models.Match) models.TeamStat {
	var stat models.TeamStat

	for _, match := range matches {
		if match == nil || !match.IsComplete {
			continue
		}
		if teamID != match.HomeTeamID && teamID != match.AwayTeamID {
			continue
		}

		homeScore, awayScore := *match.Score[0], *match.Score[1]
		if teamID == match.HomeTeamID {
			stat.TotalScore[0] += homeScore
			stat.TotalScore[1] += awayScore
		} else {
			stat.TotalScore[0] += awayScore
			stat.TotalScore[1] += homeScore
		}

		overtime := match.IsOvertime != nil && *match.IsOvertime

		switch {
		case match.WinnerID == nil:
			stat.TotalMatchesStat[models.StatDraw]++
		case *match.WinnerID == teamID && !overtime:
			stat.TotalMatchesStat[models.StatWinRegular]++
			stat.TotalGames[0]++
		case *match.WinnerID == teamID:
			stat.TotalMatchesStat[models.StatWinOvertime]++
			stat.TotalGames[0]++
		case overtime:
			stat.TotalMatchesStat[models.StatLostOvertime]++
			stat.TotalGames[1]++
		default:
			stat.TotalMatchesStat[models.StatLostRegular]++
			stat.TotalGames[1]++
		}
	}

	return stat
}

// convolveStats складывает статистики поэлементно по всем трём векторам.
func convolveStats(stats ...models.TeamStat) models.TeamStat {
	var total models.TeamStat
	for _, stat := range stats {
		for i := range stat.TotalMatchesStat {
			total.TotalMatchesStat[i] += stat.TotalMatchesStat[i]
		}
		for i := range stat.TotalScore {
			total.TotalScore[i] += stat.TotalScore[i]
		}
		for i := range stat.TotalGames {
			total.TotalGames[i] += stat.TotalGames[i]
		}
	}
	return total
}
