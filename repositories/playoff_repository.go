package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/faceoff-gg/progression/models"
	"github.com/lib/pq"
)

var ErrPlayoffNotFound = errors.New("playoff not found")

type PlayoffRepository interface {
	Create(ctx context.Context, exec SQLExecutor, playoff *models.Playoff) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Playoff, error)
	List(ctx context.Context, exec SQLExecutor, opts ListOptions) ([]*models.Playoff, error)
	Update(ctx context.Context, exec SQLExecutor, playoff *models.Playoff) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresPlayoffRepository struct {
	db *sql.DB
}

func NewPostgresPlayoffRepository(db *sql.DB) PlayoffRepository {
	return &postgresPlayoffRepository{db: db}
}

var playoffSortable = map[string]string{
	"created_at": "created_at",
}

const playoffColumns = `id, sorted_teams, schema, progress, winner_id, is_complete`

func (r *postgresPlayoffRepository) Create(ctx context.Context, exec SQLExecutor, playoff *models.Playoff) error {
	progressJSON, err := marshalProgress(playoff.Progress)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO playoffs (id, sorted_teams, schema, progress, winner_id, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = querier(r.db, exec).ExecContext(ctx, query,
		playoff.ID,
		pq.Array(playoff.SortedTeams),
		pq.Array(durationsToInt64(playoff.Schema)),
		progressJSON,
		playoff.WinnerID,
		playoff.IsComplete,
	)
	if err != nil {
		return fmt.Errorf("failed to insert playoff %s: %w", playoff.ID, err)
	}
	return nil
}

func (r *postgresPlayoffRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Playoff, error) {
	query := `SELECT ` + playoffColumns + ` FROM playoffs WHERE id = $1`

	playoff, err := r.scanPlayoff(querier(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayoffNotFound
		}
		return nil, fmt.Errorf("failed to scan playoff by id %s: %w", id, err)
	}
	return playoff, nil
}

func (r *postgresPlayoffRepository) List(ctx context.Context, exec SQLExecutor, opts ListOptions) ([]*models.Playoff, error) {
	query := appendListOptions(`SELECT `+playoffColumns+` FROM playoffs WHERE TRUE`, opts, playoffSortable, "created_at")

	rows, err := querier(r.db, exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playoffs: %w", err)
	}
	defer rows.Close()

	playoffs := make([]*models.Playoff, 0)
	for rows.Next() {
		playoff, scanErr := r.scanPlayoff(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan playoff row: %w", scanErr)
		}
		playoffs = append(playoffs, playoff)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during playoff rows iteration: %w", err)
	}
	return playoffs, nil
}

func (r *postgresPlayoffRepository) Update(ctx context.Context, exec SQLExecutor, playoff *models.Playoff) error {
	progressJSON, err := marshalProgress(playoff.Progress)
	if err != nil {
		return err
	}

	query := `
		UPDATE playoffs
		SET sorted_teams = $1, schema = $2, progress = $3, winner_id = $4, is_complete = $5
		WHERE id = $6`

	result, err := querier(r.db, exec).ExecContext(ctx, query,
		pq.Array(playoff.SortedTeams),
		pq.Array(durationsToInt64(playoff.Schema)),
		progressJSON,
		playoff.WinnerID,
		playoff.IsComplete,
		playoff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update playoff %s: %w", playoff.ID, err)
	}
	return checkAffectedRows(result, ErrPlayoffNotFound)
}

func (r *postgresPlayoffRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	query := `DELETE FROM playoffs WHERE id = $1`

	result, err := querier(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayoffNotFound)
}

func (r *postgresPlayoffRepository) scanPlayoff(row rowScanner) (*models.Playoff, error) {
	playoff := &models.Playoff{}
	var sortedTeams pq.StringArray
	var schema pq.Int64Array
	var progressRaw []byte

	err := row.Scan(
		&playoff.ID,
		&sortedTeams,
		&schema,
		&progressRaw,
		&playoff.WinnerID,
		&playoff.IsComplete,
	)
	if err != nil {
		return nil, err
	}

	playoff.SortedTeams = sortedTeams
	playoff.Schema = int64sToDurations(schema)
	if len(progressRaw) > 0 {
		if err := json.Unmarshal(progressRaw, &playoff.Progress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal playoff progress: %w", err)
		}
	}
	return playoff, nil
}

func marshalProgress(progress [][]string) ([]byte, error) {
	if progress == nil {
		return nil, nil
	}
	data, err := json.Marshal(progress)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal playoff progress: %w", err)
	}
	return data, nil
}

func durationsToInt64(schema []models.SeriaDuration) []int64 {
	result := make([]int64, len(schema))
	for i, duration := range schema {
		result[i] = int64(duration)
	}
	return result
}

func int64sToDurations(schema []int64) []models.SeriaDuration {
	result := make([]models.SeriaDuration, len(schema))
	for i, duration := range schema {
		result[i] = models.SeriaDuration(duration)
	}
	return result
}
