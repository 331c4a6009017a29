package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sijms/go-ora/v2/network"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// isUniqueViolation reports ORA-00001.
func isUniqueViolation(err error) bool {
	var oraErr *network.OracleError
	if errors.As(err, &oraErr) {
		return oraErr.ErrCode == 1
	}
	return err != nil && strings.Contains(err.Error(), "ORA-00001")
}
