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

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, group *models.Group) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Group, error)
	List(ctx context.Context, exec SQLExecutor, opts ListOptions) ([]*models.Group, error)
	Update(ctx context.Context, exec SQLExecutor, group *models.Group) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

var groupSortable = map[string]string{
	"created_at": "created_at",
	"stages":     "stages",
}

const groupColumns = `id, teams, stages, places_criteria, point_koeffs,
	       progress, stats, result, is_complete`

func (r *postgresGroupRepository) Create(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	progressJSON, statsJSON, resultJSON, err := marshalGroupDocs(group)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO groups
			(id, teams, stages, places_criteria, point_koeffs,
			 progress, stats, result, is_complete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = querier(r.db, exec).ExecContext(ctx, query,
		group.ID,
		pq.Array(group.Teams),
		group.Stages,
		pq.Array(criteriaToStrings(group.PlacesCriteria)),
		pq.Array(intsToInt64(group.PointKoeffs)),
		progressJSON,
		statsJSON,
		resultJSON,
		group.IsComplete,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group %s: %w", group.ID, err)
	}
	return nil
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`

	group, err := r.scanGroup(querier(r.db, exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group by id %s: %w", id, err)
	}
	return group, nil
}

func (r *postgresGroupRepository) List(ctx context.Context, exec SQLExecutor, opts ListOptions) ([]*models.Group, error) {
	query := appendListOptions(`SELECT `+groupColumns+` FROM groups WHERE TRUE`, opts, groupSortable, "created_at")

	rows, err := querier(r.db, exec).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		group, scanErr := r.scanGroup(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return groups, nil
}

func (r *postgresGroupRepository) Update(ctx context.Context, exec SQLExecutor, group *models.Group) error {
	progressJSON, statsJSON, resultJSON, err := marshalGroupDocs(group)
	if err != nil {
		return err
	}

	query := `
		UPDATE groups
		SET teams = $1, stages = $2, places_criteria = $3, point_koeffs = $4,
		    progress = $5, stats = $6, result = $7, is_complete = $8
		WHERE id = $9`

	result, err := querier(r.db, exec).ExecContext(ctx, query,
		pq.Array(group.Teams),
		group.Stages,
		pq.Array(criteriaToStrings(group.PlacesCriteria)),
		pq.Array(intsToInt64(group.PointKoeffs)),
		progressJSON,
		statsJSON,
		resultJSON,
		group.IsComplete,
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group %s: %w", group.ID, err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	query := `DELETE FROM groups WHERE id = $1`

	result, err := querier(r.db, exec).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

func (r *postgresGroupRepository) scanGroup(row rowScanner) (*models.Group, error) {
	group := &models.Group{}
	var teams pq.StringArray
	var criteria pq.StringArray
	var koeffs pq.Int64Array
	var progressRaw, statsRaw, resultRaw []byte

	err := row.Scan(
		&group.ID,
		&teams,
		&group.Stages,
		&criteria,
		&koeffs,
		&progressRaw,
		&statsRaw,
		&resultRaw,
		&group.IsComplete,
	)
	if err != nil {
		return nil, err
	}

	group.Teams = teams
	group.PlacesCriteria = stringsToCriteria(criteria)
	group.PointKoeffs = int64sToInts(koeffs)

	if len(progressRaw) > 0 {
		if err := json.Unmarshal(progressRaw, &group.Progress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group progress: %w", err)
		}
	}
	if len(statsRaw) > 0 {
		if err := json.Unmarshal(statsRaw, &group.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group stats: %w", err)
		}
	}
	if len(resultRaw) > 0 {
		if err := json.Unmarshal(resultRaw, &group.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal group result: %w", err)
		}
	}
	return group, nil
}

func marshalGroupDocs(group *models.Group) (progress, stats, result []byte, err error) {
	progress, err = json.Marshal(group.Progress)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal group progress: %w", err)
	}
	stats, err = json.Marshal(group.Stats)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal group stats: %w", err)
	}
	if group.Result != nil {
		result, err = json.Marshal(group.Result)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal group result: %w", err)
		}
	}
	return progress, stats, result, nil
}

func criteriaToStrings(criteria []models.PlacesCriteria) []string {
	result := make([]string, len(criteria))
	for i, c := range criteria {
		result[i] = string(c)
	}
	return result
}

func stringsToCriteria(values []string) []models.PlacesCriteria {
	result := make([]models.PlacesCriteria, len(values))
	for i, v := range values {
		result[i] = models.PlacesCriteria(v)
	}
	return result
}

func intsToInt64(values []int) []int64 {
	result := make([]int64, len(values))
	for i, v := range values {
		result[i] = int64(v)
	}
	return result
}

func int64sToInts(values []int64) []int {
	result := make([]int, len(values))
	for i, v := range values {
		result[i] = int(v)
	}
	return result
}
