package services

import (
	"context"
	"errors"
	"testing"

	"github.com/faceoff-gg/progression/models"
)

func playoffRoundPairs(t *testing.T, env *testEnv, round []string) [][2]string {
	t.Helper()

	series, err := env.seriaRepo.GetManyByIDs(context.Background(), nil, round)
	if err != nil {
		t.Fatalf("GetManyByIDs() error = %v", err)
	}
	pairs := make([][2]string, 0, len(series))
	for _, seria := range series {
		pairs = append(pairs, [2]string{seria.UpSeedTeamID, seria.DownSeedTeamID})
	}
	return pairs
}

func TestPlayoffServiceSeedPairing(t *testing.T) {
	tests := []struct {
		name      string
		teams     []string
		schema    []models.SeriaDuration
		wantPairs [][2]string
	}{
		{
			name:   "four teams",
			teams:  []string{"a", "b", "c", "d"},
			schema: []models.SeriaDuration{models.BestOfOne, models.BestOfOne},
			wantPairs: [][2]string{
				{"a", "d"},
				{"b", "c"},
			},
		},
		{
			name:   "eight teams",
			teams:  []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"},
			schema: []models.SeriaDuration{models.BestOfOne, models.BestOfThree, models.BestOfFive},
			wantPairs: [][2]string{
				{"t1", "t8"},
				{"t2", "t7"},
				{"t3", "t6"},
				{"t4", "t5"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.teams...)

			playoff, err := env.playoffService.Create(context.Background(), CreatePlayoffInput{
				SortedTeams: tt.teams,
				Schema:      tt.schema,
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			if len(playoff.Progress) != 1 {
				t.Fatalf("len(Progress) = %d, want 1", len(playoff.Progress))
			}
			pairs := playoffRoundPairs(t, env, playoff.Progress[0])
			if len(pairs) != len(tt.wantPairs) {
				t.Fatalf("round 1 pairs = %d, want %d", len(pairs), len(tt.wantPairs))
			}
			for i, want := range tt.wantPairs {
				if pairs[i] != want {
					t.Errorf("pair %d = %v, want %v", i, pairs[i], want)
				}
			}
		})
	}
}

func TestPlayoffServiceCreateValidation(t *testing.T) {
	env := newTestEnv(t, "a", "b", "c", "d")
	ctx := context.Background()

	tests := []struct {
		name    string
		input   CreatePlayoffInput
		wantErr error
	}{
		{
			name:    "empty schema",
			input:   CreatePlayoffInput{SortedTeams: []string{"a", "b"}},
			wantErr: ErrPlayoffSchemaInvalid,
		},
		{
			name: "even duration",
			input: CreatePlayoffInput{
				SortedTeams: []string{"a", "b"},
				Schema:      []models.SeriaDuration{2},
			},
			wantErr: ErrPlayoffSchemaInvalid,
		},
		{
			name: "team count mismatch",
			input: CreatePlayoffInput{
				SortedTeams: []string{"a", "b", "c"},
				Schema:      []models.SeriaDuration{models.BestOfOne, models.BestOfOne},
			},
			wantErr: ErrTeamsAmountInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.playoffService.Create(ctx, tt.input); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlayoffServiceAdvancement(t *testing.T) {
	env := newTestEnv(t, "a", "b", "c", "d")
	ctx := context.Background()

	playoff, err := env.playoffService.Create(ctx, CreatePlayoffInput{
		SortedTeams: []string{"a", "b", "c", "d"},
		Schema:      []models.SeriaDuration{models.BestOfOne, models.BestOfThree},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	firstRound := playoff.Progress[0]

	// (a, d): побеждает a.
	playoff, err = env.playoffService.PlayMatch(ctx, playoff.ID, firstRound[0], [2]int{16, 10})
	if err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	if len(playoff.Progress) != 1 {
		t.Fatalf("round advanced before completion: %d rounds", len(playoff.Progress))
	}

	// (b, c): побеждает c, раунд закрыт.
	playoff, err = env.playoffService.PlayMatch(ctx, playoff.ID, firstRound[1], [2]int{10, 16})
	if err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	if len(playoff.Progress) != 2 {
		t.Fatalf("len(Progress) = %d, want 2", len(playoff.Progress))
	}
	if playoff.IsComplete {
		t.Fatal("playoff complete before final")
	}

	// Победители a и c пересеяны по исходному порядку.
	finalRound := playoff.Progress[1]
	if len(finalRound) != 1 {
		t.Fatalf("final round series = %d, want 1", len(finalRound))
	}
	final, err := env.seriaRepo.GetByID(ctx, nil, finalRound[0])
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if final.UpSeedTeamID != "a" || final.DownSeedTeamID != "c" {
		t.Errorf("final pair = (%s, %s), want (a, c)", final.UpSeedTeamID, final.DownSeedTeamID)
	}
	if final.Duration != models.BestOfThree {
		t.Errorf("final duration = %d, want %d", final.Duration, models.BestOfThree)
	}

	// Серии прошлых раундов заморожены.
	if _, err := env.playoffService.PlayMatch(ctx, playoff.ID, firstRound[0], [2]int{16, 1}); !errors.Is(err, ErrSeriaNotInRound) {
		t.Errorf("PlayMatch() on old round error = %v, want %v", err, ErrSeriaNotInRound)
	}

	// Финал bo3: две победы a.
	if _, err := env.playoffService.PlayMatch(ctx, playoff.ID, finalRound[0], [2]int{16, 12}); err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	playoff, err = env.playoffService.PlayMatch(ctx, playoff.ID, finalRound[0], [2]int{16, 14})
	if err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	if !playoff.IsComplete || playoff.WinnerID == nil || *playoff.WinnerID != "a" {
		t.Fatalf("final state = complete=%v, winner=%v", playoff.IsComplete, playoff.WinnerID)
	}
}

func TestPlayoffServiceResetFinalClearsCompletion(t *testing.T) {
	env := newTestEnv(t, "a", "b")
	ctx := context.Background()

	playoff, err := env.playoffService.Create(ctx, CreatePlayoffInput{
		SortedTeams: []string{"a", "b"},
		Schema:      []models.SeriaDuration{models.BestOfOne},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	seriaID := playoff.Progress[0][0]

	playoff, err = env.playoffService.PlayMatch(ctx, playoff.ID, seriaID, [2]int{16, 10})
	if err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	if !playoff.IsComplete {
		t.Fatal("single-round playoff must complete after final seria")
	}

	playoff, err = env.playoffService.ResetLastMatch(ctx, playoff.ID, seriaID)
	if err != nil {
		t.Fatalf("ResetLastMatch() error = %v", err)
	}
	if playoff.IsComplete || playoff.WinnerID != nil {
		t.Errorf("after reset complete=%v, winner=%v", playoff.IsComplete, playoff.WinnerID)
	}
}

func TestPlayoffServiceDestroyLastRound(t *testing.T) {
	env := newTestEnv(t, "a", "b", "c", "d")
	ctx := context.Background()

	playoff, err := env.playoffService.Create(ctx, CreatePlayoffInput{
		SortedTeams: []string{"a", "b", "c", "d"},
		Schema:      []models.SeriaDuration{models.BestOfOne, models.BestOfOne},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := env.playoffService.DestroyLastRound(ctx, playoff.ID); !errors.Is(err, ErrCannotRemoveRound) {
		t.Fatalf("DestroyLastRound() with one round error = %v, want %v", err, ErrCannotRemoveRound)
	}

	firstRound := playoff.Progress[0]
	if _, err := env.playoffService.PlayMatch(ctx, playoff.ID, firstRound[0], [2]int{16, 10}); err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	playoff, err = env.playoffService.PlayMatch(ctx, playoff.ID, firstRound[1], [2]int{16, 10})
	if err != nil {
		t.Fatalf("PlayMatch() error = %v", err)
	}
	finalID := playoff.Progress[1][0]

	playoff, err = env.playoffService.DestroyLastRound(ctx, playoff.ID)
	if err != nil {
		t.Fatalf("DestroyLastRound() error = %v", err)
	}
	if len(playoff.Progress) != 1 {
		t.Errorf("len(Progress) = %d, want 1", len(playoff.Progress))
	}
	if playoff.IsComplete || playoff.WinnerID != nil {
		t.Errorf("after destroy complete=%v, winner=%v", playoff.IsComplete, playoff.WinnerID)
	}
	if _, err := env.seriaRepo.GetByID(ctx, nil, finalID); err == nil {
		t.Error("final seria still exists after DestroyLastRound")
	}
}

func TestPlayoffServiceGetFullBracket(t *testing.T) {
	env := newTestEnv(t, "a", "b", "c", "d")
	ctx := context.Background()

	playoff, err := env.playoffService.Create(ctx, CreatePlayoffInput{
		SortedTeams: []string{"a", "b", "c", "d"},
		Schema:      []models.SeriaDuration{models.BestOfOne, models.BestOfOne},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	bracket, err := env.playoffService.GetFullBracket(ctx, playoff.ID)
	if err != nil {
		t.Fatalf("GetFullBracket() error = %v", err)
	}
	if bracket.Playoff.ID != playoff.ID {
		t.Errorf("bracket playoff id = %s, want %s", bracket.Playoff.ID, playoff.ID)
	}
	if len(bracket.Series) != 2 {
		t.Fatalf("bracket series = %d, want 2", len(bracket.Series))
	}
	for _, seria := range bracket.Series {
		matches, ok := bracket.Matches[seria.ID]
		if !ok {
			t.Fatalf("no matches for seria %s", seria.ID)
		}
		if len(matches) != 1 {
			t.Errorf("seria %s matches = %d, want 1", seria.ID, len(matches))
		}
	}
}

func TestPlayoffServiceRemoveCascades(t *testing.T) {
	env := newTestEnv(t, "a", "b", "c", "d")
	ctx := context.Background()

	playoff, err := env.playoffService.Create(ctx, CreatePlayoffInput{
		SortedTeams: []string{"a", "b", "c", "d"},
		Schema:      []models.SeriaDuration{models.BestOfOne, models.BestOfOne},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	firstRound := playoff.Progress[0]

	if err := env.playoffService.Remove(ctx, playoff.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if _, err := env.playoffService.GetByID(ctx, playoff.ID); !errors.Is(err, ErrPlayoffNotFound) {
		t.Errorf("GetByID() after remove error = %v, want %v", err, ErrPlayoffNotFound)
	}
	for _, seriaID := range firstRound {
		if _, err := env.seriaRepo.GetByID(ctx, nil, seriaID); err == nil {
			t.Errorf("seria %s survived playoff removal", seriaID)
		}
		matches, err := env.matchRepo.ListByBelongID(ctx, nil, seriaID)
		if err != nil {
			t.Fatalf("ListByBelongID() error = %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("matches of seria %s survived playoff removal", seriaID)
		}
	}
}
