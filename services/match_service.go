package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/faceoff-gg/progression/models"
	"github.com/faceoff-gg/progression/repositories"
	"github.com/google/uuid"
)

type CreateMatchInput struct {
	HomeTeamID   string  `json:"home_team_id"`
	AwayTeamID   string  `json:"away_team_id"`
	Map          string  `json:"map"`
	RoundsAmount *int    `json:"rounds_amount"`
	BelongID     *string `json:"-"`
}

// MatchPatch — частичное обновление матча. nil-поле означает
// "оставить как есть".
type MatchPatch struct {
	Score        *[2]*int `json:"score"`
	Map          *string  `json:"map"`
	RoundsAmount *int     `json:"rounds_amount"`
}

type MatchService interface {
	Create(ctx context.Context, exec repositories.SQLExecutor, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	List(ctx context.Context, filter repositories.MatchFilter, opts repositories.ListOptions) ([]*models.Match, error)
	Update(ctx context.Context, exec repositories.SQLExecutor, id string, patch MatchPatch, ownerID *string) (*models.Match, error)
	Remove(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) (*models.Match, error)
	Reset(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) (*models.Match, error)
}

type matchService struct {
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
}

func NewMatchService(matchRepo repositories.MatchRepository, teamRepo repositories.TeamRepository) MatchService {
	return &matchService{
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
	}
}

func (s *matchService) Create(ctx context.Context, exec repositories.SQLExecutor, input CreateMatchInput) (*models.Match, error) {
	if input.HomeTeamID == "" || input.AwayTeamID == "" {
		return nil, ErrEmptyTeamID
	}
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrEqualTeamIDs
	}

	for _, teamID := range []string{input.HomeTeamID, input.AwayTeamID} {
		if _, err := s.teamRepo.GetByID(ctx, exec, teamID); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
			}
			return nil, err
		}
	}

	roundsAmount := models.DefaultRoundsAmount
	if input.RoundsAmount != nil {
		roundsAmount = *input.RoundsAmount
	}

	match := &models.Match{
		ID:           uuid.NewString(),
		HomeTeamID:   input.HomeTeamID,
		AwayTeamID:   input.AwayTeamID,
		BelongID:     input.BelongID,
		Map:          input.Map,
		RoundsAmount: roundsAmount,
		Score:        [2]*int{nil, nil},
		IsComplete:   false,
	}

	if err := s.matchRepo.Create(ctx, exec, match); err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context, filter repositories.MatchFilter, opts repositories.ListOptions) ([]*models.Match, error) {
	return s.matchRepo.List(ctx, nil, filter, opts)
}

func (s *matchService) Update(ctx context.Context, exec repositories.SQLExecutor, id string, patch MatchPatch, ownerID *string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	if err := checkMatchOwner(match, ownerID); err != nil {
		return nil, err
	}

	if patch.Score != nil {
		match.Score = *patch.Score
	}
	if patch.Map != nil {
		match.Map = *patch.Map
	}
	if patch.RoundsAmount != nil {
		match.RoundsAmount = *patch.RoundsAmount
	}

	recomputeMatchResult(match)

	if err := s.matchRepo.Update(ctx, exec, match); err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

// Remove возвращает удалённый матч: серия использует его карту,
// чтобы вернуть её в начало пула.
func (s *matchService) Remove(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, exec, id)
	if err != nil {
		return nil, mapMatchRepoError(err)
	}

	if err := checkMatchOwner(match, ownerID); err != nil {
		return nil, err
	}

	if err := s.matchRepo.Delete(ctx, exec, id); err != nil {
		return nil, mapMatchRepoError(err)
	}
	return match, nil
}

func (s *matchService) Reset(ctx context.Context, exec repositories.SQLExecutor, id string, ownerID *string) (*models.Match, error) {
	return s.Update(ctx, exec, id, MatchPatch{Score: &[2]*int{nil, nil}}, ownerID)
}

// checkMatchOwner защищает матчи, принадлежащие серии или группе:
// напрямую их менять нельзя, только через владеющий агрегат.
func checkMatchOwner(match *models.Match, ownerID *string) error {
	if match.BelongID == nil {
		return nil
	}
	if ownerID == nil || *ownerID != *match.BelongID {
		return ErrReadonlyMatch
	}
	return nil
}

// recomputeMatchResult выводит производные поля из счёта.
// isOvertime определён только у завершённого матча: сумма раундов
// больше roundsAmount.
func recomputeMatchResult(match *models.Match) {
	match.IsComplete = match.Score[0] != nil && match.Score[1] != nil

	if !match.IsComplete {
		match.WinnerID = nil
		match.IsOvertime = nil
		return
	}

	homeScore, awayScore := *match.Score[0], *match.Score[1]

	switch {
	case homeScore > awayScore:
		winnerID := match.HomeTeamID
		match.WinnerID = &winnerID
	case awayScore > homeScore:
		winnerID := match.AwayTeamID
		match.WinnerID = &winnerID
	default:
		match.WinnerID = nil
	}

	overtime := homeScore+awayScore > match.RoundsAmount
	match.IsOvertime = &overtime
}

func mapMatchRepoError(err error) error {
	if errors.Is(err, repositories.ErrMatchNotFound) {
		return ErrMatchNotFound
	}
	return err
}
