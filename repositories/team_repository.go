package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/faceoff-gg/progression/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
	ErrTeamTagConflict  = errors.New("team tag is already in use")
)

// TeamFilter — фильтр листинга команд. Search применяется как подстрока
// к имени и тегу.
type TeamFilter struct {
	Search *string
}

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error)
	GetManyByIDs(ctx context.Context, exec SQLExecutor, ids []string) ([]*models.Team, error)
	List(ctx context.Context, exec SQLExecutor, filter TeamFilter, opts ListOptions) ([]*models.Team, error)
	Update(ctx context.Context, exec SQLExecutor, team *models.Team) error
	UpdateLogoKey(ctx context.Context, exec SQLExecutor, id string, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

var teamSortable = map[string]string{
	"name":       "name",
	"tag":        "tag",
	"created_at": "created_at",
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, tag, description)
		VALUES ($1, $2, $3, $4)`

	_, err := querier(r.db, exec).ExecContext(ctx, query, team.ID, team.Name, team.Tag, team.Description)
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Team, error) {
	query := `
		SELECT id, name, tag, description, logo_key
		FROM teams
		WHERE id = $1`

	team := &models.Team{}
	err := querier(r.db, exec).QueryRowContext(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Tag,
		&team.Description,
		&team.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %s: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) GetManyByIDs(ctx context.Context, exec SQLExecutor, ids []string) ([]*models.Team, error) {
	query := `
		SELECT id, name, tag, description, logo_key
		FROM teams
		WHERE id = ANY($1)`

	rows, err := querier(r.db, exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query teams by ids: %w", err)
	}
	defer rows.Close()

	return r.scanTeams(rows)
}

func (r *postgresTeamRepository) List(ctx context.Context, exec SQLExecutor, filter TeamFilter, opts ListOptions) ([]*models.Team, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, name, tag, description, logo_key
		FROM teams
		WHERE TRUE`)

	args := make([]interface{}, 0, 1)
	placeholderIndex := 1

	if filter.Search != nil {
		queryBuilder.WriteString(" AND (name ILIKE $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(" OR tag ILIKE $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		queryBuilder.WriteString(")")
		args = append(args, "%"+*filter.Search+"%")
	}

	finalQuery := appendListOptions(queryBuilder.String(), opts, teamSortable, "created_at")
	rows, err := querier(r.db, exec).QueryContext(ctx, finalQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	return r.scanTeams(rows)
}

func (r *postgresTeamRepository) Update(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	query := `
		UPDATE teams
		SET name = $1, tag = $2, description = $3
		WHERE id = $4`

	result, err := querier(r.db, exec).ExecContext(ctx, query, team.Name, team.Tag, team.Description, team.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, exec SQLExecutor, id string, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`

	result, err := querier(r.db, exec).ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	query := `DELETE FROM teams WHERE id = $1`

	result, err := querier(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) scanTeams(rows *sql.Rows) ([]*models.Team, error) {
	teams := make([]*models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Tag, &team.Description, &team.LogoKey); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during team rows iteration: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "teams_name_key":
			return ErrTeamNameConflict
		case "teams_tag_key":
			return ErrTeamTagConflict
		}
	}
	return err
}
