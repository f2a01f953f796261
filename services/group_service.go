package services

import (
	"context"
	"errors"
	"sort"

	"github.com/faceoff-gg/progression/models"
	"github.com/faceoff-gg/progression/repositories"
	"github.com/google/uuid"
)

// GroupGamesInput — новые игры стадии: матчи и серии создаются
// сервисом и привязываются к группе через belong_id.
type GroupGamesInput struct {
	Matches []CreateMatchInput `json:"matches"`
	Series  []CreateSeriaInput `json:"series"`
}

type CreateGroupInput struct {
	Teams          []string                `json:"teams"`
	Stages         int                     `json:"stages"`
	PlacesCriteria []models.PlacesCriteria `json:"places_criteria"`
	PointKoeffs    []int                   `json:"point_koeffs"`
	Tables         [][]string              `json:"tables"`
	Games          GroupGamesInput         `json:"games"`
}

// SortedTableRow — строка отсортированной таблицы для выдачи наружу.
type SortedTableRow struct {
	Team             *models.Team `json:"team"`
	Seed             int          `json:"seed"`
	Points           int          `json:"points"`
	TotalMatchesStat [5]int       `json:"total_matches_stat"`
	TotalScore       [2]int       `json:"total_score"`
	TotalGames       [2]int       `json:"total_games"`
}

type GroupService interface {
	Create(ctx context.Context, input CreateGroupInput) (*models.Group, error)
	GetByID(ctx context.Context, id string) (*models.Group, error)
	List(ctx context.Context, opts repositories.ListOptions) ([]*models.Group, error)
	AddStage(ctx context.Context, id string, games GroupGamesInput, tables [][]string) (*models.Group, error)
	AddGamesToStage(ctx context.Context, id string, games GroupGamesInput) (*models.Group, error)
	PlayGame(ctx context.Context, id, gameID string, score [2]int) (*models.Group, error)
	ResetGame(ctx context.Context, id, gameID string) (*models.Group, error)
	DestroyLastStage(ctx context.Context, id string) (*models.Group, error)
	Remove(ctx context.Context, id string) error
	SortedTables(ctx context.Context, group *models.Group) ([][][]SortedTableRow, error)
}

type groupService struct {
	tx           TxRunner
	groupRepo    repositories.GroupRepository
	teamRepo     repositories.TeamRepository
	matchRepo    repositories.MatchRepository
	seriaRepo    repositories.SeriaRepository
	matchService MatchService
	seriaService SeriaService
}

func NewGroupService(
	tx TxRunner,
	groupRepo repositories.GroupRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	seriaRepo repositories.SeriaRepository,
	matchService MatchService,
	seriaService SeriaService,
) GroupService {
	return &groupService{
		tx:           tx,
		groupRepo:    groupRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		seriaRepo:    seriaRepo,
		matchService: matchService,
		seriaService: seriaService,
	}
}

func (s *groupService) Create(ctx context.Context, input CreateGroupInput) (*models.Group, error) {
	var created *models.Group

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		if len(input.Teams) == 0 {
			return ErrGroupWithoutTeams
		}
		for _, teamID := range input.Teams {
			if _, err := s.teamRepo.GetByID(ctx, exec, teamID); err != nil {
				if errors.Is(err, repositories.ErrTeamNotFound) {
					return ErrGroupTeamNotExist
				}
				return err
			}
		}
		if input.Tables != nil && !checkGroupTables(input.Teams, input.Tables) {
			return ErrIncorrectGroupTables
		}
		if err := checkGroupGames(input.Teams, input.Games); err != nil {
			return err
		}

		stages := input.Stages
		if stages == 0 {
			stages = 1
		}
		placesCriteria := input.PlacesCriteria
		if len(placesCriteria) == 0 {
			placesCriteria = []models.PlacesCriteria{models.CriteriaPoints}
		}
		pointKoeffs := input.PointKoeffs
		if len(pointKoeffs) == 0 {
			pointKoeffs = []int{1, 0}
		}

		group := &models.Group{
			ID:             uuid.NewString(),
			Teams:          input.Teams,
			Stages:         stages,
			PlacesCriteria: placesCriteria,
			PointKoeffs:    pointKoeffs,
			Progress:       []models.StageProgress{{Tables: input.Tables}},
			Stats:          startingStats(input.Teams, placesCriteria),
		}
		if err := s.groupRepo.Create(ctx, exec, group); err != nil {
			return err
		}

		if err := s.addGames(ctx, exec, group, input.Games); err != nil {
			return err
		}
		created = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *groupService) GetByID(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapGroupRepoError(err)
	}
	return group, nil
}

func (s *groupService) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Group, error) {
	return s.groupRepo.List(ctx, nil, opts)
}

func (s *groupService) AddStage(ctx context.Context, id string, games GroupGamesInput, tables [][]string) (*models.Group, error) {
	var updated *models.Group

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		group, err := s.groupRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapGroupRepoError(err)
		}
		if len(group.Progress) == group.Stages {
			return ErrLastGroupStage
		}
		if tables != nil && !checkGroupTables(group.Teams, tables) {
			return ErrIncorrectGroupTables
		}
		if err := checkGroupGames(group.Teams, games); err != nil {
			return err
		}

		matches, series, _, err := s.loadGroupGames(ctx, exec, group.ID)
		if err != nil {
			return err
		}
		if !stageComplete(group, matches, series) {
			return ErrIncompleteGroupStage
		}

		group.Progress = append(group.Progress, models.StageProgress{Tables: tables})

		if err := s.addGames(ctx, exec, group, games); err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *groupService) AddGamesToStage(ctx context.Context, id string, games GroupGamesInput) (*models.Group, error) {
	var updated *models.Group

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		group, err := s.groupRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapGroupRepoError(err)
		}
		if err := checkGroupGames(group.Teams, games); err != nil {
			return err
		}

		if err := s.addGames(ctx, exec, group, games); err != nil {
			return err
		}
		updated = group
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *groupService) PlayGame(ctx context.Context, id, gameID string, score [2]int) (*models.Group, error) {
	matchScore := [2]*int{&score[0], &score[1]}
	return s.applyGameMutation(ctx, id, gameID,
		func(exec repositories.SQLExecutor, group *models.Group) ([2]string, error) {
			match, err := s.matchService.Update(ctx, exec, gameID, MatchPatch{Score: &matchScore}, &group.ID)
			if err != nil {
				return [2]string{}, err
			}
			return [2]string{match.HomeTeamID, match.AwayTeamID}, nil
		},
		func(exec repositories.SQLExecutor, group *models.Group) ([2]string, error) {
			seria, err := s.seriaService.PlayMatch(ctx, exec, gameID, score, &group.ID)
			if err != nil {
				return [2]string{}, err
			}
			return [2]string{seria.UpSeedTeamID, seria.DownSeedTeamID}, nil
		},
	)
}

func (s *groupService) ResetGame(ctx context.Context, id, gameID string) (*models.Group, error) {
	return s.applyGameMutation(ctx, id, gameID,
		func(exec repositories.SQLExecutor, group *models.Group) ([2]string, error) {
			match, err := s.matchService.Reset(ctx, exec, gameID, &group.ID)
			if err != nil {
				return [2]string{}, err
			}
			return [2]string{match.HomeTeamID, match.AwayTeamID}, nil
		},
		func(exec repositories.SQLExecutor, group *models.Group) ([2]string, error) {
			seria, err := s.seriaService.ResetLastMatch(ctx, exec, gameID, &group.ID)
			if err != nil {
				return [2]string{}, err
			}
			return [2]string{seria.UpSeedTeamID, seria.DownSeedTeamID}, nil
		},
	)
}

// applyGameMutation изменяет игру текущей стадии и пересчитывает
// статистику затронутых команд. Весь каскад живёт в одной транзакции
// и фиксируется единственным коммитом в самом конце.
func (s *groupService) applyGameMutation(
	ctx context.Context,
	id, gameID string,
	mutateMatch func(exec repositories.SQLExecutor, group *models.Group) ([2]string, error),
	mutateSeria func(exec repositories.SQLExecutor, group *models.Group) ([2]string, error),
) (*models.Group, error) {
	var updated *models.Group

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		group, err := s.groupRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapGroupRepoError(err)
		}

		games := group.Progress[len(group.Progress)-1].Games

		var affected [2]string
		switch {
		case containsString(games.Matches, gameID):
			affected, err = mutateMatch(exec, group)
		case containsString(games.Series, gameID):
			affected, err = mutateSeria(exec, group)
		default:
			return ErrIncorrectGroupGame
		}
		if err != nil {
			return err
		}

		updated, err = s.updateGroup(ctx, exec, group, affected[:])
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *groupService) DestroyLastStage(ctx context.Context, id string) (*models.Group, error) {
	var updated *models.Group

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		group, err := s.groupRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapGroupRepoError(err)
		}
		if len(group.Progress) < 2 {
			return ErrCannotRemoveStage
		}

		games := group.Progress[len(group.Progress)-1].Games
		for _, matchID := range games.Matches {
			if _, err := s.matchService.Remove(ctx, exec, matchID, &group.ID); err != nil {
				return err
			}
		}
		for _, seriaID := range games.Series {
			if err := s.seriaService.Remove(ctx, exec, seriaID, &group.ID); err != nil {
				return err
			}
		}

		group.Progress = group.Progress[:len(group.Progress)-1]

		updated, err = s.updateGroup(ctx, exec, group, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *groupService) Remove(ctx context.Context, id string) error {
	return s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		group, err := s.groupRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapGroupRepoError(err)
		}

		matches, err := s.matchRepo.ListByBelongID(ctx, exec, group.ID)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if _, err := s.matchService.Remove(ctx, exec, match.ID, &group.ID); err != nil {
				return err
			}
		}

		series, err := s.seriaRepo.ListByBelongID(ctx, exec, group.ID)
		if err != nil {
			return err
		}
		for _, seria := range series {
			if err := s.seriaService.Remove(ctx, exec, seria.ID, &group.ID); err != nil {
				return err
			}
		}

		return s.groupRepo.Delete(ctx, exec, id)
	})
}

// SortedTables отдаёт таблицы всех стадий, отсортированные компаратором
// ранжирования и дополненные командами и текущей статистикой.
func (s *groupService) SortedTables(ctx context.Context, group *models.Group) ([][][]SortedTableRow, error) {
	var teamIDs []string
	for _, stage := range group.Progress {
		for _, table := range stage.Tables {
			teamIDs = append(teamIDs, table...)
		}
	}

	teams, err := s.teamRepo.GetManyByIDs(ctx, nil, teamIDs)
	if err != nil {
		return nil, err
	}
	teamByID := make(map[string]*models.Team, len(teams))
	for _, team := range teams {
		teamByID[team.ID] = team
	}

	result := make([][][]SortedTableRow, 0, len(group.Progress))
	for _, stage := range group.Progress {
		if stage.Tables == nil {
			result = append(result, nil)
			continue
		}

		stageTables := make([][]SortedTableRow, 0, len(stage.Tables))
		for _, table := range stage.Tables {
			sorted := make([]string, len(table))
			copy(sorted, table)
			sortTeamsByCriteria(sorted, group.Stats)

			rows := make([]SortedTableRow, 0, len(sorted))
			for _, teamID := range sorted {
				stat := group.Stats[teamID]
				rows = append(rows, SortedTableRow{
					Team:             teamByID[teamID],
					Seed:             stat.Seed,
					Points:           stat.Points,
					TotalMatchesStat: stat.TotalMatchesStat,
					TotalScore:       stat.TotalScore,
					TotalGames:       stat.TotalGames,
				})
			}
			stageTables = append(stageTables, rows)
		}
		result = append(result, stageTables)
	}
	return result, nil
}

// addGames создаёт переданные матчи и серии под группой и дописывает
// их id в игры последней стадии.
func (s *groupService) addGames(ctx context.Context, exec repositories.SQLExecutor, group *models.Group, games GroupGamesInput) error {
	stage := &group.Progress[len(group.Progress)-1]

	for _, input := range games.Matches {
		input.BelongID = &group.ID
		match, err := s.matchService.Create(ctx, exec, input)
		if err != nil {
			return err
		}
		stage.Games.Matches = append(stage.Games.Matches, match.ID)
	}

	for _, input := range games.Series {
		input.BelongID = &group.ID
		seria, err := s.seriaService.Create(ctx, exec, input)
		if err != nil {
			return err
		}
		stage.Games.Series = append(stage.Games.Series, seria.ID)
	}

	return s.groupRepo.Update(ctx, exec, group)
}

// loadGroupGames загружает все матчи и серии группы, а также матчи
// каждой серии, одним проходом.
func (s *groupService) loadGroupGames(ctx context.Context, exec repositories.SQLExecutor, groupID string) ([]*models.Match, []*models.Seria, map[string][]*models.Match, error) {
	matches, err := s.matchRepo.ListByBelongID(ctx, exec, groupID)
	if err != nil {
		return nil, nil, nil, err
	}
	series, err := s.seriaRepo.ListByBelongID(ctx, exec, groupID)
	if err != nil {
		return nil, nil, nil, err
	}

	seriaMatches := make(map[string][]*models.Match, len(series))
	for _, seria := range series {
		owned, err := s.matchRepo.ListByBelongID(ctx, exec, seria.ID)
		if err != nil {
			return nil, nil, nil, err
		}
		seriaMatches[seria.ID] = owned
	}
	return matches, series, seriaMatches, nil
}

// updateGroup пересчитывает статистику указанных команд (nil — всех),
// завершённость стадии и группы. Result заполняется только при полном
// завершении группы.
func (s *groupService) updateGroup(ctx context.Context, exec repositories.SQLExecutor, group *models.Group, teams []string) (*models.Group, error) {
	matches, series, seriaMatches, err := s.loadGroupGames(ctx, exec, group.ID)
	if err != nil {
		return nil, err
	}

	if teams == nil {
		teams = group.Teams
	}

	for _, teamID := range teams {
		stats := []models.TeamStat{GetTeamStatByMatches(teamID, matches)}
		for _, seria := range series {
			stats = append(stats, TeamStatBySeriaMatches(seria, seriaMatches[seria.ID], teamID))
		}
		merged := convolveStats(stats...)

		teamStat := group.Stats[teamID]
		teamStat.TeamStat = merged
		teamStat.Points = pointsAmount(group.PointKoeffs, merged.TotalMatchesStat)
		teamStat.RangeCriteria = rangeCriteriaKeys(teamStat, group.PlacesCriteria)
		group.Stats[teamID] = teamStat
	}

	isStageComplete := stageComplete(group, matches, series)
	group.IsComplete = isStageComplete && len(group.Progress) == group.Stages

	group.Result = nil
	if group.IsComplete {
		group.Result = completionResults(group)
	}

	if err := s.groupRepo.Update(ctx, exec, group); err != nil {
		return nil, err
	}
	return group, nil
}

// expandPointKoeffs разворачивает компактный вектор очков в канонический
// из пяти позиций: победа, победа в овертайме, ничья, поражение в
// овертайме, поражение.
func expandPointKoeffs(pointKoeffs []int) [5]int {
	switch len(pointKoeffs) {
	case 2:
		return [5]int{pointKoeffs[0], pointKoeffs[0], 0, pointKoeffs[1], pointKoeffs[1]}
	case 3:
		return [5]int{pointKoeffs[0], pointKoeffs[0], pointKoeffs[1], pointKoeffs[2], pointKoeffs[2]}
	case 4:
		return [5]int{pointKoeffs[0], pointKoeffs[1], 0, pointKoeffs[2], pointKoeffs[3]}
	}

	var expanded [5]int
	copy(expanded[:], pointKoeffs)
	return expanded
}

func pointsAmount(pointKoeffs []int, totalMatchesStat [5]int) int {
	matrix := expandPointKoeffs(pointKoeffs)
	points := 0
	for i, amount := range totalMatchesStat {
		points += amount * matrix[i]
	}
	return points
}

// rangeCriteriaKeys строит вектор ключей ранжирования в порядке
// приоритета критериев. Посев кодируется со знаком минус, чтобы при
// сравнении "больше - выше" меньший посев оказывался первым, и всегда
// замыкает вектор как решающий критерий.
func rangeCriteriaKeys(stat models.GroupTeamStat, placesCriteria []models.PlacesCriteria) []int {
	keys := make([]int, 0, len(placesCriteria)+1)
	for _, criteria := range placesCriteria {
		switch criteria {
		case models.CriteriaPoints:
			keys = append(keys, stat.Points)
		case models.CriteriaWins:
			keys = append(keys, stat.TotalGames[0])
		default:
			keys = append(keys, -stat.Seed)
		}
	}
	if len(placesCriteria) == 0 || placesCriteria[len(placesCriteria)-1] != models.CriteriaSeed {
		keys = append(keys, -stat.Seed)
	}
	return keys
}

func startingStats(teams []string, placesCriteria []models.PlacesCriteria) map[string]models.GroupTeamStat {
	stats := make(map[string]models.GroupTeamStat, len(teams))
	for i, teamID := range teams {
		stat := models.GroupTeamStat{Seed: i + 1}
		stat.RangeCriteria = rangeCriteriaKeys(stat, placesCriteria)
		stats[teamID] = stat
	}
	return stats
}

// sortTeamsByCriteria упорядочивает команды сравнением векторов
// ранжирования: решает первая различающаяся позиция, большее значение
// ставит команду выше.
func sortTeamsByCriteria(teamIDs []string, stats map[string]models.GroupTeamStat) {
	sort.SliceStable(teamIDs, func(i, j int) bool {
		a := stats[teamIDs[i]].RangeCriteria
		b := stats[teamIDs[j]].RangeCriteria
		for k := 0; k < len(a) && k < len(b); k++ {
			if a[k] != b[k] {
				return a[k] > b[k]
			}
		}
		return false
	})
}

// stageComplete - завершены ли все игры текущей (последней) стадии.
func stageComplete(group *models.Group, matches []*models.Match, series []*models.Seria) bool {
	games := group.Progress[len(group.Progress)-1].Games

	matchComplete := make(map[string]bool, len(matches))
	for _, match := range matches {
		matchComplete[match.ID] = match.IsComplete
	}
	seriaComplete := make(map[string]bool, len(series))
	for _, seria := range series {
		seriaComplete[seria.ID] = seria.IsComplete
	}

	for _, matchID := range games.Matches {
		if done, ok := matchComplete[matchID]; ok && !done {
			return false
		}
	}
	for _, seriaID := range games.Series {
		if done, ok := seriaComplete[seriaID]; ok && !done {
			return false
		}
	}
	return true
}

// completionResults - финальные таблицы каждой стадии, отсортированные
// компаратором ранжирования. Стадии без таблиц остаются nil.
func completionResults(group *models.Group) [][][]string {
	result := make([][][]string, 0, len(group.Progress))
	for _, stage := range group.Progress {
		if stage.Tables == nil {
			result = append(result, nil)
			continue
		}

		stageTables := make([][]string, 0, len(stage.Tables))
		for _, table := range stage.Tables {
			sorted := make([]string, len(table))
			copy(sorted, table)
			sortTeamsByCriteria(sorted, group.Stats)
			stageTables = append(stageTables, sorted)
		}
		result = append(result, stageTables)
	}
	return result
}

func checkGroupTables(teams []string, tables [][]string) bool {
	if len(tables) == 0 {
		return false
	}

	teamSet := make(map[string]struct{}, len(teams))
	for _, teamID := range teams {
		teamSet[teamID] = struct{}{}
	}

	seen := make(map[string]struct{})
	for _, table := range tables {
		for _, teamID := range table {
			if _, ok := teamSet[teamID]; !ok {
				return false
			}
			if _, ok := seen[teamID]; ok {
				return false
			}
			seen[teamID] = struct{}{}
		}
	}
	return true
}

func checkGroupGames(teams []string, games GroupGamesInput) error {
	teamSet := make(map[string]struct{}, len(teams))
	for _, teamID := range teams {
		teamSet[teamID] = struct{}{}
	}
	inGroup := func(teamID string) bool {
		_, ok := teamSet[teamID]
		return ok
	}

	for _, match := range games.Matches {
		if !inGroup(match.HomeTeamID) || !inGroup(match.AwayTeamID) {
			return ErrIncorrectGroupMatches
		}
	}
	for _, seria := range games.Series {
		if !inGroup(seria.UpSeedTeamID) || !inGroup(seria.DownSeedTeamID) {
			return ErrIncorrectGroupSeries
		}
	}
	return nil
}

func mapGroupRepoError(err error) error {
	if errors.Is(err, repositories.ErrGroupNotFound) {
		return ErrGroupNotFound
	}
	return err
}
