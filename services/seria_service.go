package services

import (
	"context"
	"errors"

	"github.com/faceoff-gg/progression/models"
	"github.com/faceoff-gg/progression/repositories"
	"github.com/google/uuid"
)

type CreateSeriaInput struct {
	UpSeedTeamID   string               `json:"up_seed_team_id"`
	DownSeedTeamID string               `json:"down_seed_team_id"`
	Duration       models.SeriaDuration `json:"duration"`
	MapPool        []string             `json:"map_pool"`
	BelongID       *string              `json:"-"`
}

type SeriaService interface {
	Create(ctx context.Context, exec repositories.SQLExecutor, input CreateSeriaInput) (*models.Seria, error)
	GetByID(ctx context.Context, id string) (*models.Seria, error)
	List(ctx context.Context, filter repositories.SeriaFilter, opts repositories.ListOptions) ([]*models.Seria, error)
	GetSortedMatches(ctx context.Context, exec repositories.SQLExecutor, seria *models.Seria) ([]*models.Match, error)
	UpdateMapPool(ctx context.Context, id string, mapPool []string) (*models.Seria, error)
	PlayMatch(ctx context.Context, exec repositories.SQLExecutor, id string, score [2]int, ownerID *string) (*models.Seria, error)
	ChangeLastMatch(ctx context.Context, exec repositories.SQLExecutor, id string, score [2]int, ownerID *string) (*models.Seria, error)
	ResetLastMatch(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) (*models.Seria, error)
	Remove(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) error
	TeamStatBySeria(ctx context.Context, exec repositories.SQLExecutor, seriaID, teamID string) (models.TeamStat, error)
}

type seriaService struct {
	tx           TxRunner
	seriaRepo    repositories.SeriaRepository
	matchRepo    repositories.MatchRepository
	matchService MatchService
}

func NewSeriaService(
	tx TxRunner,
	seriaRepo repositories.SeriaRepository,
	matchRepo repositories.MatchRepository,
	matchService MatchService,
) SeriaService {
	return &seriaService{
		tx:           tx,
		seriaRepo:    seriaRepo,
		matchRepo:    matchRepo,
		matchService: matchService,
	}
}

// GetSeriaScore — чистый подсчёт счёта серии: количество завершённых
// матчей, выигранных каждой из сторон.
func GetSeriaScore(seria *models.Seria, matches []*models.Match) [2]int {
	var score [2]int
	for _, match := range matches {
		if match == nil || !match.IsComplete || match.WinnerID == nil {
			continue
		}
		switch *match.WinnerID {
		case seria.UpSeedTeamID:
			score[0]++
		case seria.DownSeedTeamID:
			score[1]++
		}
	}
	return score
}

func (s *seriaService) Create(ctx context.Context, exec repositories.SQLExecutor, input CreateSeriaInput) (*models.Seria, error) {
	var created *models.Seria

	err := s.tx.WithTransaction(ctx, exec, func(exec repositories.SQLExecutor) error {
		duration := input.Duration
		if duration == 0 {
			duration = models.BestOfOne
		}
		if !duration.IsValid() {
			return ErrWrongSeriaDuration
		}
		if input.MapPool != nil && len(input.MapPool) != int(duration) {
			return ErrMapsNotMatch
		}

		// Серия без пула хранит пустой пул: матчи играются без карт.
		mapPool := copyStrings(input.MapPool)
		if mapPool == nil {
			mapPool = []string{}
		}

		seria := &models.Seria{
			ID:             uuid.NewString(),
			UpSeedTeamID:   input.UpSeedTeamID,
			DownSeedTeamID: input.DownSeedTeamID,
			BelongID:       input.BelongID,
			Duration:       duration,
			MapPool:        mapPool,
			MatchOrder:     []string{},
		}
		if err := s.seriaRepo.Create(ctx, exec, seria); err != nil {
			return err
		}

		// Серия стартует с winThreshold матчей: ровно столько нужно
		// лидеру до победы.
		for i := 0; i < duration.WinThreshold(); i++ {
			var mapName string
			if len(seria.MapPool) > 0 {
				mapName, seria.MapPool = seria.MapPool[0], seria.MapPool[1:]
			}

			match, err := s.matchService.Create(ctx, exec, CreateMatchInput{
				HomeTeamID: seria.UpSeedTeamID,
				AwayTeamID: seria.DownSeedTeamID,
				Map:        mapName,
				BelongID:   &seria.ID,
			})
			if err != nil {
				return err
			}
			seria.MatchOrder = append(seria.MatchOrder, match.ID)
		}

		if err := s.seriaRepo.Update(ctx, exec, seria); err != nil {
			return err
		}
		created = seria
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *seriaService) GetByID(ctx context.Context, id string) (*models.Seria, error) {
	seria, err := s.seriaRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapSeriaRepoError(err)
	}
	return seria, nil
}

func (s *seriaService) List(ctx context.Context, filter repositories.SeriaFilter, opts repositories.ListOptions) ([]*models.Seria, error) {
	return s.seriaRepo.List(ctx, nil, filter, opts)
}

// GetSortedMatches возвращает матчи серии в порядке MatchOrder:
// хранилище порядок выборки не гарантирует.
func (s *seriaService) GetSortedMatches(ctx context.Context, exec repositories.SQLExecutor, seria *models.Seria) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByBelongID(ctx, exec, seria.ID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Match, len(matches))
	for _, match := range matches {
		byID[match.ID] = match
	}

	sorted := make([]*models.Match, 0, len(seria.MatchOrder))
	for _, matchID := range seria.MatchOrder {
		match, ok := byID[matchID]
		if !ok {
			return nil, ErrMatchNotFound
		}
		sorted = append(sorted, match)
	}
	return sorted, nil
}

func (s *seriaService) UpdateMapPool(ctx context.Context, id string, mapPool []string) (*models.Seria, error) {
	var updated *models.Seria

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		seria, err := s.seriaRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapSeriaRepoError(err)
		}

		if len(mapPool) != int(seria.Duration) {
			return ErrMapsNotMatch
		}

		matches, err := s.matchRepo.ListByBelongID(ctx, exec, seria.ID)
		if err != nil {
			return err
		}

		score := GetSeriaScore(seria, matches)
		if score[0] > 0 || score[1] > 0 {
			return ErrMapPoolChangeDisallowed
		}

		pool := copyStrings(mapPool)
		for _, matchID := range seria.MatchOrder {
			var mapName string
			mapName, pool = pool[0], pool[1:]
			if _, err := s.matchService.Update(ctx, exec, matchID, MatchPatch{Map: &mapName}, &seria.ID); err != nil {
				return err
			}
		}

		seria.MapPool = pool
		if err := s.seriaRepo.Update(ctx, exec, seria); err != nil {
			return err
		}
		updated = seria
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *seriaService) PlayMatch(ctx context.Context, exec repositories.SQLExecutor, id string, score [2]int, ownerID *string) (*models.Seria, error) {
	var played *models.Seria

	err := s.tx.WithTransaction(ctx, exec, func(exec repositories.SQLExecutor) error {
		if score[0] == score[1] {
			return ErrEqualScoreInSeria
		}

		seria, err := s.seriaRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapSeriaRepoError(err)
		}
		if err := checkSeriaOwner(seria, ownerID); err != nil {
			return err
		}
		if seria.MapPool == nil {
			return ErrMapPoolIsEmpty
		}
		if seria.IsComplete {
			return ErrSeriaIsComplete
		}

		sortedMatches, err := s.GetSortedMatches(ctx, exec, seria)
		if err != nil {
			return err
		}

		currentIndex := -1
		for i, match := range sortedMatches {
			if !match.IsComplete {
				currentIndex = i
				break
			}
		}
		if currentIndex < 0 {
			return ErrSeriaIsComplete
		}

		matchScore := [2]*int{&score[0], &score[1]}
		completedMatch, err := s.matchService.Update(ctx, exec, sortedMatches[currentIndex].ID, MatchPatch{Score: &matchScore}, &seria.ID)
		if err != nil {
			return err
		}
		sortedMatches[currentIndex] = completedMatch

		played, err = s.upsertMatches(ctx, exec, seria, sortedMatches)
		return err
	})
	if err != nil {
		return nil, err
	}
	return played, nil
}

func (s *seriaService) ChangeLastMatch(ctx context.Context, exec repositories.SQLExecutor, id string, score [2]int, ownerID *string) (*models.Seria, error) {
	return s.changeLastMatch(ctx, exec, id, [2]*int{&score[0], &score[1]}, ownerID)
}

// ResetLastMatch — это changeLastMatch со счётом [null, null].
func (s *seriaService) ResetLastMatch(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) (*models.Seria, error) {
	return s.changeLastMatch(ctx, exec, id, [2]*int{nil, nil}, ownerID)
}

func (s *seriaService) changeLastMatch(ctx context.Context, exec repositories.SQLExecutor, id string, score [2]*int, ownerID *string) (*models.Seria, error) {
	var changed *models.Seria

	err := s.tx.WithTransaction(ctx, exec, func(exec repositories.SQLExecutor) error {
		seria, err := s.seriaRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapSeriaRepoError(err)
		}
		if err := checkSeriaOwner(seria, ownerID); err != nil {
			return err
		}

		sortedMatches, err := s.GetSortedMatches(ctx, exec, seria)
		if err != nil {
			return err
		}

		// Ищем последний завершённый матч с конца.
		currentIndex := -1
		for i := len(sortedMatches) - 1; i >= 0; i-- {
			if sortedMatches[i].IsComplete {
				currentIndex = i
				break
			}
		}
		if currentIndex < 0 {
			return ErrSeriaWithoutLastMatch
		}

		changedMatch, err := s.matchService.Update(ctx, exec, sortedMatches[currentIndex].ID, MatchPatch{Score: &score}, &seria.ID)
		if err != nil {
			return err
		}
		sortedMatches[currentIndex] = changedMatch

		changed, err = s.upsertMatches(ctx, exec, seria, sortedMatches)
		return err
	})
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// upsertMatches — структурная сверка серии после изменения счёта.
// Инвариант: число незавершённых матчей равно числу побед, недостающих
// лидеру до порога. Лишний хвостовой матч удаляется (его карта
// возвращается в начало пула), недостающий — создаётся из пула.
func (s *seriaService) upsertMatches(ctx context.Context, exec repositories.SQLExecutor, seria *models.Seria, matches []*models.Match) (*models.Seria, error) {
	threshold := seria.Duration.WinThreshold()
	score := GetSeriaScore(seria, matches)

	leaderScore := score[0]
	if score[1] > leaderScore {
		leaderScore = score[1]
	}

	incompleteAmount := 0
	for _, match := range matches {
		if !match.IsComplete {
			incompleteAmount++
		}
	}

	if threshold-leaderScore > incompleteAmount {
		var mapName string
		if len(seria.MapPool) > 0 {
			mapName, seria.MapPool = seria.MapPool[0], seria.MapPool[1:]
		}

		match, err := s.matchService.Create(ctx, exec, CreateMatchInput{
			HomeTeamID: seria.UpSeedTeamID,
			AwayTeamID: seria.DownSeedTeamID,
			Map:        mapName,
			BelongID:   &seria.ID,
		})
		if err != nil {
			return nil, err
		}
		seria.MatchOrder = append(seria.MatchOrder, match.ID)
	}

	if threshold-leaderScore < incompleteAmount {
		lastMatchID := seria.MatchOrder[len(seria.MatchOrder)-1]
		removed, err := s.matchService.Remove(ctx, exec, lastMatchID, &seria.ID)
		if err != nil {
			return nil, err
		}
		seria.MatchOrder = seria.MatchOrder[:len(seria.MatchOrder)-1]
		seria.MapPool = append([]string{removed.Map}, seria.MapPool...)
	}

	seria.IsComplete = leaderScore == threshold
	seria.WinnerID = nil
	if seria.IsComplete {
		winnerID := seria.UpSeedTeamID
		if score[1] == threshold {
			winnerID = seria.DownSeedTeamID
		}
		seria.WinnerID = &winnerID
	}

	if err := s.seriaRepo.Update(ctx, exec, seria); err != nil {
		return nil, err
	}
	return seria, nil
}

func (s *seriaService) Remove(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) error {
	return s.tx.WithTransaction(ctx, exec, func(exec repositories.SQLExecutor) error {
		seria, err := s.seriaRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapSeriaRepoError(err)
		}
		if err := checkSeriaOwner(seria, ownerID); err != nil {
			return err
		}

		matches, err := s.matchRepo.ListByBelongID(ctx, exec, seria.ID)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if _, err := s.matchService.Remove(ctx, exec, match.ID, &seria.ID); err != nil {
				return err
			}
		}

		return s.seriaRepo.Delete(ctx, exec, id)
	})
}

// TeamStatBySeria — вклад серии в групповую статистику команды:
// помимо сводки по матчам завершённая серия засчитывается целиком
// как одна победа или одно поражение в TotalGames.
func (s *seriaService) TeamStatBySeria(ctx context.Context, exec repositories.SQLExecutor, seriaID, teamID string) (models.TeamStat, error) {
	seria, err := s.seriaRepo.GetByID(ctx, exec, seriaID)
	if err != nil {
		return models.TeamStat{}, mapSeriaRepoError(err)
	}

	matches, err := s.matchRepo.ListByBelongID(ctx, exec, seriaID)
	if err != nil {
		return models.TeamStat{}, err
	}

	return TeamStatBySeriaMatches(seria, matches, teamID), nil
}

// TeamStatBySeriaMatches — чистый вариант TeamStatBySeria для уже
// загруженных матчей. Команды, не участвующие в серии, получают
// нулевую статистику.
func TeamStatBySeriaMatches(seria *models.Seria, matches []*models.Match, teamID string) models.TeamStat {
	if teamID != seria.UpSeedTeamID && teamID != seria.DownSeedTeamID {
		return models.TeamStat{}
	}

	stat := GetTeamStatByMatches(teamID, matches)
	stat.TotalGames = [2]int{}

	if seria.IsComplete && seria.WinnerID != nil {
		if *seria.WinnerID == teamID {
			stat.TotalGames[0] = 1
		} else {
			stat.TotalGames[1] = 1
		}
	}
	return stat
}

func checkSeriaOwner(seria *models.Seria, ownerID *string) error {
	if seria.BelongID == nil {
		return nil
	}
	if ownerID == nil || *ownerID != *seria.BelongID {
		return ErrReadonlySeria
	}
	return nil
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	copy(result, values)
	return result
}

func mapSeriaRepoError(err error) error {
	if errors.Is(err, repositories.ErrSeriaNotFound) {
		return ErrSeriaNotFound
	}
	return err
}
