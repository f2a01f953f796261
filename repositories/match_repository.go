package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/faceoff-gg/progression/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchFilter — фильтр листинга матчей. BelongID: указатель на nil-строку
// не используется, фильтр по владельцу задаётся значением.
type MatchFilter struct {
	BelongID   *string
	IsComplete *bool
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	ListByBelongID(ctx context.Context, exec SQLExecutor, belongID string) ([]*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter, opts ListOptions) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

var matchSortable = map[string]string{
	"created_at": "created_at",
	"map":        "map",
}

const matchColumns = `id, home_team_id, away_team_id, belong_id, map, rounds_amount,
	       score_home, score_away, winner_id, is_complete, is_overtime`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(id, home_team_id, away_team_id, belong_id, map, rounds_amount,
			 score_home, score_away, winner_id, is_complete, is_overtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier(r.db, exec).ExecContext(ctx, query,
		match.ID,
		match.HomeTeamID,
		match.AwayTeamID,
		match.BelongID,
		match.Map,
		match.RoundsAmount,
		match.Score[0],
		match.Score[1],
		match.WinnerID,
		match.IsComplete,
		match.IsOvertime,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match %s: %w", match.ID, err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match := &models.Match{}
	err := r.scanMatchRow(querier(r.db, exec).QueryRowContext(ctx, query, id), match)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByBelongID(ctx context.Context, exec SQLExecutor, belongID string) ([]*models.Match, error) {
	filter := MatchFilter{BelongID: &belongID}
	return r.List(ctx, exec, filter, ListOptions{})
}

func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter, opts ListOptions) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE TRUE`)

	args := make([]interface{}, 0, 2)
	placeholderIndex := 1

	if filter.BelongID != nil {
		queryBuilder.WriteString(" AND belong_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.BelongID)
		placeholderIndex++
	}

	if filter.IsComplete != nil {
		queryBuilder.WriteString(" AND is_complete = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.IsComplete)
	}

	finalQuery := appendListOptions(queryBuilder.String(), opts, matchSortable, "created_at")
	rows, err := querier(r.db, exec).QueryContext(ctx, finalQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		if scanErr := rows.Scan(
			&match.ID,
			&match.HomeTeamID,
			&match.AwayTeamID,
			&match.BelongID,
			&match.Map,
			&match.RoundsAmount,
			&match.Score[0],
			&match.Score[1],
			&match.WinnerID,
			&match.IsComplete,
			&match.IsOvertime,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET home_team_id = $1, away_team_id = $2, belong_id = $3, map = $4,
		    rounds_amount = $5, score_home = $6, score_away = $7,
		    winner_id = $8, is_complete = $9, is_overtime = $10
		WHERE id = $11`

	result, err := querier(r.db, exec).ExecContext(ctx, query,
		match.HomeTeamID,
		match.AwayTeamID,
		match.BelongID,
		match.Map,
		match.RoundsAmount,
		match.Score[0],
		match.Score[1],
		match.WinnerID,
		match.IsComplete,
		match.IsOvertime,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", match.ID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	query := `DELETE FROM matches WHERE id = $1`

	result, err := querier(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) scanMatchRow(row *sql.Row, match *models.Match) error {
	return row.Scan(
		&match.ID,
		&match.HomeTeamID,
		&match.AwayTeamID,
		&match.BelongID,
		&match.Map,
		&match.RoundsAmount,
		&match.Score[0],
		&match.Score[1],
		&match.WinnerID,
		&match.IsComplete,
		&match.IsOvertime,
	)
}
