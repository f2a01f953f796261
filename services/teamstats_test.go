package services

import (
	"testing"

	"github.com/faceoff-gg/progression/models"
)

func playedMatch(home, away string, homeScore, awayScore, roundsAmount int) *models.Match {
	match := &models.Match{
		ID:           home + "-" + away,
		HomeTeamID:   home,
		AwayTeamID:   away,
		RoundsAmount: roundsAmount,
		Score:        [2]*int{&homeScore, &awayScore},
		IsComplete:   true,
	}
	if homeScore != awayScore {
		winner := home
		if awayScore > homeScore {
			winner = away
		}
		match.WinnerID = &winner
	}
	overtime := homeScore+awayScore > roundsAmount
	match.IsOvertime = &overtime
	return match
}

func TestGetTeamStatByMatches(t *testing.T) {
	tests := []struct {
		name    string
		teamID  string
		matches []*models.Match
		want    models.TeamStat
	}{
		{
			name:   "regular win and loss",
			teamID: "a",
			matches: []*models.Match{
				playedMatch("a", "b", 16, 10, 30),
				playedMatch("b", "a", 16, 7, 30),
			},
			want: models.TeamStat{
				TotalMatchesStat: [5]int{1, 0, 0, 0, 1},
				TotalScore:       [2]int{23, 26},
				TotalGames:       [2]int{1, 1},
			},
		},
		{
			name:   "overtime outcomes land in overtime slots",
			teamID: "a",
			matches: []*models.Match{
				playedMatch("a", "b", 19, 16, 30),
				playedMatch("a", "b", 16, 19, 30),
			},
			want: models.TeamStat{
				TotalMatchesStat: [5]int{0, 1, 0, 1, 0},
				TotalScore:       [2]int{35, 35},
				TotalGames:       [2]int{1, 1},
			},
		},
		{
			name:   "draw counts in draw slot only",
			teamID: "a",
			matches: []*models.Match{
				playedMatch("a", "b", 15, 15, 30),
			},
			want: models.TeamStat{
				TotalMatchesStat: [5]int{0, 0, 1, 0, 0},
				TotalScore:       [2]int{15, 15},
			},
		},
		{
			name:   "unrelated and unplayed matches are ignored",
			teamID: "a",
			matches: []*models.Match{
				playedMatch("b", "c", 16, 10, 30),
				{ID: "m", HomeTeamID: "a", AwayTeamID: "b", RoundsAmount: 30},
			},
			want: models.TeamStat{},
		},
		{
			name:   "away perspective swaps score orientation",
			teamID: "b",
			matches: []*models.Match{
				playedMatch("a", "b", 10, 16, 30),
			},
			want: models.TeamStat{
				TotalMatchesStat: [5]int{1, 0, 0, 0, 0},
				TotalScore:       [2]int{16, 10},
				TotalGames:       [2]int{1, 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetTeamStatByMatches(tt.teamID, tt.matches)
			if got != tt.want {
				t.Errorf("GetTeamStatByMatches() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConvolveStats(t *testing.T) {
	a := models.TeamStat{
		TotalMatchesStat: [5]int{1, 0, 1, 0, 0},
		TotalScore:       [2]int{31, 25},
		TotalGames:       [2]int{1, 0},
	}
	b := models.TeamStat{
		TotalMatchesStat: [5]int{0, 1, 0, 0, 2},
		TotalScore:       [2]int{40, 55},
		TotalGames:       [2]int{0, 1},
	}

	got := convolveStats(a, b)
	want := models.TeamStat{
		TotalMatchesStat: [5]int{1, 1, 1, 0, 2},
		TotalScore:       [2]int{71, 80},
		TotalGames:       [2]int{1, 1},
	}
	if got != want {
		t.Errorf("convolveStats() = %+v, want %+v", got, want)
	}
}
