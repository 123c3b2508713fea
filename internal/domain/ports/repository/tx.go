package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Repositories accept `tx Tx` on every method and must gracefully accept nil
// (non-transactional path). The concrete type of `tx` is infra-defined
// (pgx.Tx for Postgres); a repository that receives a pgx.Tx runs its reads
// with row locks where it matters (SELECT ... FOR UPDATE).
//
// Keep this interface small and stable.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
