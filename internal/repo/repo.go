package repo

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kirillov6/marketplace-service/pkg/trm"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// base carries the shared query builder and routes statements through
// the transaction bound to ctx when one is present.
type base struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func newBase(db *sqlx.DB) base {
	return base{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (b base) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return b.db.ExecContext(ctx, query, args...)
}

func (b base) getContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.GetContext(ctx, dest, query, args...)
	}
	return b.db.GetContext(ctx, dest, query, args...)
}

func (b base) selectContext(ctx context.Context, dest any, query string, args ...any) error {
	if tx := trm.ExtractTx(ctx); tx != nil {
		return tx.SelectContext(ctx, dest, query, args...)
	}
	return b.db.SelectContext(ctx, dest, query, args...)
}

// orderByClauses turns a "-field,other" sort parameter into ORDER BY
// clauses, keeping only columns listed in allowed.
func orderByClauses(sortParam string, allowed map[string]string, fallback string) []string {
	if sortParam == "" {
		return []string{fallback}
	}

	var clauses []string
	for _, field := range strings.Split(sortParam, ",") {
		field = strings.TrimSpace(field)
		dir := " ASC"
		if strings.HasPrefix(field, "-") {
			field = field[1:]
			dir = " DESC"
		}
		if col, ok := allowed[field]; ok {
			clauses = append(clauses, col+dir)
		}
	}
	if len(clauses) == 0 {
		return []string{fallback}
	}
	return clauses
}
