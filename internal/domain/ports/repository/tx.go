package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls. Its
// concrete type is infra-defined (pgx.Tx for Postgres); repositories must
// accept nil and fall back to their non-transactional path.
type Tx interface{}

// TransactionManager runs a function inside a storage transaction. If fn
// returns an error the transaction rolls back, otherwise it commits. Keeping
// the handle opaque keeps use-case code free of driver types apart from the
// options struct.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
