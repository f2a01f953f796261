package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/faceoff-gg/progression/repositories"
)

// TxManager открывает и закрывает транзакции вокруг составных операций.
// Транзакцию открывает только внешний вызов: если exec уже задан,
// колбэк выполняется в нём без вложенной транзакции.
type TxManager struct {
	db *sql.DB
}

func NewTxManager(db *sql.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) WithTransaction(ctx context.Context, exec repositories.SQLExecutor, fn func(exec repositories.SQLExecutor) error) (err error) {
	if exec != nil {
		return fn(exec)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", err, rbErr)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit transaction: %w", cErr)
			}
		}
	}()

	err = fn(tx)
	return err
}
