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

var ErrSeriaNotFound = errors.New("seria not found")

type SeriaFilter struct {
	BelongID   *string
	IsComplete *bool
}

type SeriaRepository interface {
	Create(ctx context.Context, exec SQLExecutor, seria *models.Seria) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Seria, error)
	GetManyByIDs(ctx context.Context, exec SQLExecutor, ids []string) ([]*models.Seria, error)
	ListByBelongID(ctx context.Context, exec SQLExecutor, belongID string) ([]*models.Seria, error)
	List(ctx context.Context, exec SQLExecutor, filter SeriaFilter, opts ListOptions) ([]*models.Seria, error)
	Update(ctx context.Context, exec SQLExecutor, seria *models.Seria) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresSeriaRepository struct {
	db *sql.DB
}

func NewPostgresSeriaRepository(db *sql.DB) SeriaRepository {
	return &postgresSeriaRepository{db: db}
}

var seriaSortable = map[string]string{
	"created_at": "created_at",
	"duration":   "duration",
}

const seriaColumns = `id, up_seed_team_id, down_seed_team_id, belong_id, duration,
	       map_pool, match_order, winner_id, is_complete`

func (r *postgresSeriaRepository) Create(ctx context.Context, exec SQLExecutor, seria *models.Seria) error {
	query := `
		INSERT INTO series
			(id, up_seed_team_id, down_seed_team_id, belong_id, duration,
			 map_pool, match_order, winner_id, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier(r.db, exec).ExecContext(ctx, query,
		seria.ID,
		seria.UpSeedTeamID,
		seria.DownSeedTeamID,
		seria.BelongID,
		int(seria.Duration),
		nullableTextArray(seria.MapPool),
		pq.Array(seria.MatchOrder),
		seria.WinnerID,
		seria.IsComplete,
	)
	if err != nil {
		return fmt.Errorf("failed to insert seria %s: %w", seria.ID, err)
	}
	return nil
}

func (r *postgresSeriaRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Seria, error) {
	query := `SELECT ` + seriaColumns + ` FROM series WHERE id = $1`

	seria, err := r.scanSeria(querier(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeriaNotFound
		}
		return nil, fmt.Errorf("failed to scan seria by id %s: %w", id, err)
	}
	return seria, nil
}

func (r *postgresSeriaRepository) GetManyByIDs(ctx context.Context, exec SQLExecutor, ids []string) ([]*models.Seria, error) {
	query := `SELECT ` + seriaColumns + ` FROM series WHERE id = ANY($1)`

	rows, err := querier(r.db, exec).QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query series by ids: %w", err)
	}
	defer rows.Close()

	return r.scanSeriaRows(rows)
}

func (r *postgresSeriaRepository) ListByBelongID(ctx context.Context, exec SQLExecutor, belongID string) ([]*models.Seria, error) {
	filter := SeriaFilter{BelongID: &belongID}
	return r.List(ctx, exec, filter, ListOptions{})
}

func (r *postgresSeriaRepository) List(ctx context.Context, exec SQLExecutor, filter SeriaFilter, opts ListOptions) ([]*models.Seria, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + seriaColumns + ` FROM series WHERE TRUE`)

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

	finalQuery := appendListOptions(queryBuilder.String(), opts, seriaSortable, "created_at")
	rows, err := querier(r.db, exec).QueryContext(ctx, finalQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	return r.scanSeriaRows(rows)
}

func (r *postgresSeriaRepository) Update(ctx context.Context, exec SQLExecutor, seria *models.Seria) error {
	query := `
		UPDATE series
		SET up_seed_team_id = $1, down_seed_team_id = $2, belong_id = $3,
		    duration = $4, map_pool = $5, match_order = $6,
		    winner_id = $7, is_complete = $8
		WHERE id = $9`

	result, err := querier(r.db, exec).ExecContext(ctx, query,
		seria.UpSeedTeamID,
		seria.DownSeedTeamID,
		seria.BelongID,
		int(seria.Duration),
		nullableTextArray(seria.MapPool),
		pq.Array(seria.MatchOrder),
		seria.WinnerID,
		seria.IsComplete,
		seria.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update seria %s: %w", seria.ID, err)
	}
	return checkAffectedRows(result, ErrSeriaNotFound)
}

func (r *postgresSeriaRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	query := `DELETE FROM series WHERE id = $1`

	result, err := querier(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrSeriaNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *postgresSeriaRepository) scanSeria(row rowScanner) (*models.Seria, error) {
	seria := &models.Seria{}
	var duration int
	var mapPool pq.StringArray
	var matchOrder pq.StringArray

	err := row.Scan(
		&seria.ID,
		&seria.UpSeedTeamID,
		&seria.DownSeedTeamID,
		&seria.BelongID,
		&duration,
		&mapPool,
		&matchOrder,
		&seria.WinnerID,
		&seria.IsComplete,
	)
	if err != nil {
		return nil, err
	}

	seria.Duration = models.SeriaDuration(duration)
	seria.MapPool = mapPool
	seria.MatchOrder = matchOrder
	if seria.MatchOrder == nil {
		seria.MatchOrder = []string{}
	}
	return seria, nil
}

func (r *postgresSeriaRepository) scanSeriaRows(rows *sql.Rows) ([]*models.Seria, error) {
	series := make([]*models.Seria, 0)
	for rows.Next() {
		seria, err := r.scanSeria(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seria row: %w", err)
		}
		series = append(series, seria)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during seria rows iteration: %w", err)
	}
	return series, nil
}
