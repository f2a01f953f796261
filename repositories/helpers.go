package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor абстрагирует *sql.DB и *sql.Tx: репозитории не знают,
// выполняются они внутри транзакции или нет.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ListOptions — опции выборки: skip/sort/limit, как в контракте хранилища.
type ListOptions struct {
	Skip     int
	Limit    int
	SortBy   string
	SortDesc bool
}

// querier возвращает exec, если он задан (внутри транзакции чтения
// должны видеть незакоммиченные записи), иначе пул соединений.
func querier(db *sql.DB, exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return db
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}

// appendListOptions дописывает ORDER BY/OFFSET/LIMIT. Колонка сортировки
// берётся только из белого списка, значения по умолчанию — из fallback.
func appendListOptions(query string, opts ListOptions, sortable map[string]string, fallback string) string {
	column, ok := sortable[opts.SortBy]
	if !ok {
		column = fallback
	}
	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", column, direction)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Skip > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Skip)
	}
	return query
}

// nullableTextArray отличает отсутствующий массив (NULL) от пустого ('{}').
func nullableTextArray(values []string) interface{} {
	if values == nil {
		return nil
	}
	return pq.Array(values)
}
