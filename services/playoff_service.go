package services

import (
	"context"
	"errors"

	"github.com/faceoff-gg/progression/models"
	"github.com/faceoff-gg/progression/repositories"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type CreatePlayoffInput struct {
	SortedTeams []string               `json:"sorted_teams"`
	Schema      []models.SeriaDuration `json:"schema"`
}

// FullBracket - плей-офф вместе со всеми сериями и их матчами,
// собранными за один запрос для отдачи клиенту.
type FullBracket struct {
	Playoff *models.Playoff            `json:"playoff"`
	Series  []*models.Seria            `json:"series"`
	Matches map[string][]*models.Match `json:"matches"`
}

type PlayoffService interface {
	Create(ctx context.Context, input CreatePlayoffInput) (*models.Playoff, error)
	GetByID(ctx context.Context, id string) (*models.Playoff, error)
	List(ctx context.Context, opts repositories.ListOptions) ([]*models.Playoff, error)
	GetFullBracket(ctx context.Context, id string) (*FullBracket, error)
	PlayMatch(ctx context.Context, id, seriaID string, score [2]int) (*models.Playoff, error)
	ChangeLastMatch(ctx context.Context, id, seriaID string, score [2]int) (*models.Playoff, error)
	ResetLastMatch(ctx context.Context, id, seriaID string) (*models.Playoff, error)
	DestroyLastRound(ctx context.Context, id string) (*models.Playoff, error)
	Remove(ctx context.Context, id string) error
}

type playoffService struct {
	tx           TxRunner
	playoffRepo  repositories.PlayoffRepository
	seriaRepo    repositories.SeriaRepository
	matchRepo    repositories.MatchRepository
	seriaService SeriaService
}

func NewPlayoffService(
	tx TxRunner,
	playoffRepo repositories.PlayoffRepository,
	seriaRepo repositories.SeriaRepository,
	matchRepo repositories.MatchRepository,
	seriaService SeriaService,
) PlayoffService {
	return &playoffService{
		tx:           tx,
		playoffRepo:  playoffRepo,
		seriaRepo:    seriaRepo,
		matchRepo:    matchRepo,
		seriaService: seriaService,
	}
}

func (s *playoffService) Create(ctx context.Context, input CreatePlayoffInput) (*models.Playoff, error) {
	var created *models.Playoff

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		if len(input.Schema) == 0 {
			return ErrPlayoffSchemaInvalid
		}
		for _, duration := range input.Schema {
			if !duration.IsValid() {
				return ErrPlayoffSchemaInvalid
			}
		}
		if len(input.SortedTeams) != 1<<len(input.Schema) {
			return ErrTeamsAmountInvalid
		}

		playoff := &models.Playoff{
			ID:          uuid.NewString(),
			SortedTeams: input.SortedTeams,
			Schema:      input.Schema,
			Progress:    [][]string{},
		}
		if err := s.playoffRepo.Create(ctx, exec, playoff); err != nil {
			return err
		}

		if err := s.createNewRound(ctx, exec, playoff, input.SortedTeams); err != nil {
			return err
		}

		if err := s.playoffRepo.Update(ctx, exec, playoff); err != nil {
			return err
		}
		created = playoff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *playoffService) GetByID(ctx context.Context, id string) (*models.Playoff, error) {
	playoff, err := s.playoffRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapPlayoffRepoError(err)
	}
	return playoff, nil
}

func (s *playoffService) List(ctx context.Context, opts repositories.ListOptions) ([]*models.Playoff, error) {
	return s.playoffRepo.List(ctx, nil, opts)
}

// GetFullBracket собирает плей-офф, серии и матчи параллельно.
func (s *playoffService) GetFullBracket(ctx context.Context, id string) (*FullBracket, error) {
	playoff, err := s.playoffRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapPlayoffRepoError(err)
	}

	series, err := s.seriaRepo.ListByBelongID(ctx, nil, playoff.ID)
	if err != nil {
		return nil, err
	}

	matches := make(map[string][]*models.Match, len(series))
	g, gctx := errgroup.WithContext(ctx)
	results := make([][]*models.Match, len(series))
	for i, seria := range series {
		i, seria := i, seria
		g.Go(func() error {
			seriaMatches, err := s.seriaService.GetSortedMatches(gctx, nil, seria)
			if err != nil {
				return err
			}
			results[i] = seriaMatches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, seria := range series {
		matches[seria.ID] = results[i]
	}

	return &FullBracket{Playoff: playoff, Series: series, Matches: matches}, nil
}

func (s *playoffService) PlayMatch(ctx context.Context, id, seriaID string, score [2]int) (*models.Playoff, error) {
	return s.applySeriaMutation(ctx, id, seriaID, func(exec repositories.SQLExecutor, ownerID *string) error {
		_, err := s.seriaService.PlayMatch(ctx, exec, seriaID, score, ownerID)
		return err
	})
}

func (s *playoffService) ChangeLastMatch(ctx context.Context, id, seriaID string, score [2]int) (*models.Playoff, error) {
	return s.applySeriaMutation(ctx, id, seriaID, func(exec repositories.SQLExecutor, ownerID *string) error {
		_, err := s.seriaService.ChangeLastMatch(ctx, exec, seriaID, score, ownerID)
		return err
	})
}

func (s *playoffService) ResetLastMatch(ctx context.Context, id, seriaID string) (*models.Playoff, error) {
	return s.applySeriaMutation(ctx, id, seriaID, func(exec repositories.SQLExecutor, ownerID *string) error {
		_, err := s.seriaService.ResetLastMatch(ctx, exec, seriaID, ownerID)
		return err
	})
}

// applySeriaMutation выполняет изменение серии последнего раунда и
// пересчитывает продвижение сетки в одной транзакции.
func (s *playoffService) applySeriaMutation(ctx context.Context, id, seriaID string, mutate func(exec repositories.SQLExecutor, ownerID *string) error) (*models.Playoff, error) {
	var updated *models.Playoff

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		playoff, err := s.playoffRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapPlayoffRepoError(err)
		}

		// Серии завершённых раундов неприкосновенны.
		lastRound := playoff.Progress[len(playoff.Progress)-1]
		if !containsString(lastRound, seriaID) {
			return ErrSeriaNotInRound
		}

		if err := mutate(exec, &playoff.ID); err != nil {
			return err
		}

		updated, err = s.upsertSeries(ctx, exec, playoff)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// upsertSeries проверяет последний раунд: если все серии сыграны,
// либо фиксирует чемпиона, либо рассеивает победителей в новый раунд.
func (s *playoffService) upsertSeries(ctx context.Context, exec repositories.SQLExecutor, playoff *models.Playoff) (*models.Playoff, error) {
	lastRound := playoff.Progress[len(playoff.Progress)-1]

	series, err := s.seriaRepo.GetManyByIDs(ctx, exec, lastRound)
	if err != nil {
		return nil, err
	}

	roundComplete := len(series) == len(lastRound)
	for _, seria := range series {
		if !seria.IsComplete {
			roundComplete = false
			break
		}
	}

	playoff.IsComplete = false
	playoff.WinnerID = nil

	if roundComplete {
		if len(series) == 1 {
			playoff.IsComplete = true
			playoff.WinnerID = series[0].WinnerID
		} else {
			winners := make([]string, 0, len(series))
			for _, seria := range series {
				winners = append(winners, *seria.WinnerID)
			}
			// Победители рассеиваются заново по исходному посеву,
			// чтобы сильнейшие снова встретились как можно позже.
			sortBySeedOrder(winners, playoff.SortedTeams)

			if err := s.createNewRound(ctx, exec, playoff, winners); err != nil {
				return nil, err
			}
		}
	}

	if err := s.playoffRepo.Update(ctx, exec, playoff); err != nil {
		return nil, err
	}
	return playoff, nil
}

// createNewRound создаёт серии очередного раунда: посев сворачивается
// с краёв внутрь, первый номер против последнего.
func (s *playoffService) createNewRound(ctx context.Context, exec repositories.SQLExecutor, playoff *models.Playoff, teams []string) error {
	duration := playoff.Schema[len(playoff.Progress)]

	round := make([]string, 0, len(teams)/2)
	for i := 0; i < len(teams)/2; i++ {
		seria, err := s.seriaService.Create(ctx, exec, CreateSeriaInput{
			UpSeedTeamID:   teams[i],
			DownSeedTeamID: teams[len(teams)-1-i],
			Duration:       duration,
			BelongID:       &playoff.ID,
		})
		if err != nil {
			return err
		}
		round = append(round, seria.ID)
	}

	playoff.Progress = append(playoff.Progress, round)
	return nil
}

func (s *playoffService) DestroyLastRound(ctx context.Context, id string) (*models.Playoff, error) {
	var updated *models.Playoff

	err := s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		playoff, err := s.playoffRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapPlayoffRepoError(err)
		}
		if len(playoff.Progress) < 2 {
			return ErrCannotRemoveRound
		}

		lastRound := playoff.Progress[len(playoff.Progress)-1]
		for _, seriaID := range lastRound {
			if err := s.seriaService.Remove(ctx, exec, seriaID, &playoff.ID); err != nil {
				return err
			}
		}

		playoff.Progress = playoff.Progress[:len(playoff.Progress)-1]
		playoff.IsComplete = false
		playoff.WinnerID = nil

		if err := s.playoffRepo.Update(ctx, exec, playoff); err != nil {
			return err
		}
		updated = playoff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *playoffService) Remove(ctx context.Context, id string) error {
	return s.tx.WithTransaction(ctx, nil, func(exec repositories.SQLExecutor) error {
		playoff, err := s.playoffRepo.GetByID(ctx, exec, id)
		if err != nil {
			return mapPlayoffRepoError(err)
		}

		series, err := s.seriaRepo.ListByBelongID(ctx, exec, playoff.ID)
		if err != nil {
			return err
		}
		for _, seria := range series {
			if err := s.seriaService.Remove(ctx, exec, seria.ID, &playoff.ID); err != nil {
				return err
			}
		}

		return s.playoffRepo.Delete(ctx, exec, id)
	})
}

// sortBySeedOrder упорядочивает команды по их позиции в исходном
// посеве.
func sortBySeedOrder(teams []string, seedOrder []string) {
	index := make(map[string]int, len(seedOrder))
	for i, teamID := range seedOrder {
		index[teamID] = i
	}
	for i := 1; i < len(teams); i++ {
		for j := i; j > 0 && index[teams[j]] < index[teams[j-1]]; j-- {
			teams[j], teams[j-1] = teams[j-1], teams[j]
		}
	}
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func mapPlayoffRepoError(err error) error {
	if errors.Is(err, repositories.ErrPlayoffNotFound) {
		return ErrPlayoffNotFound
	}
	return err
}
