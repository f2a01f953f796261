package services

import (
	"context"

	"github.com/faceoff-gg/progression/repositories"
)

// TxRunner — координатор транзакций. Если exec уже открыт внешней
// операцией, колбэк выполняется в нём; вложенные транзакции не открываются.
type TxRunner interface {
	WithTransaction(ctx context.Context, exec repositories.SQLExecutor, fn func(exec repositories.SQLExecutor) error) error
}
