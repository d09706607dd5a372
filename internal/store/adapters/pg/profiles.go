package pg

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dropDatabas3/provisioner/internal/domain/repository"
	"github.com/dropDatabas3/provisioner/internal/validation"
)

// querier es el subconjunto de pgxpool.Pool que usa el repo.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SQLSTATE relevantes.
const (
	pgUniqueViolation = "23505"
	pgUndefinedColumn = "42703"
	pgUndefinedTable  = "42P01"
)

type profileRepo struct {
	db    querier
	table string // ya sanitizado: "schema"."table"
}

func newProfileRepo(db querier, schema, table string) *profileRepo {
	ident := pgx.Identifier{table}
	if schema != "" {
		ident = pgx.Identifier{schema, table}
	}
	return &profileRepo{db: db, table: ident.Sanitize()}
}

// Insert arma un INSERT con las columnas del perfil en orden estable.
func (r *profileRepo) Insert(ctx context.Context, p repository.ProfileRecord) error {
	row := p.Row()
	cols := make([]string, 0, len(row))
	for k := range row {
		// los nombres de columna se interpolan en el SQL
		if !validation.ValidAttributeName(k) {
			return fmt.Errorf("pg: insert profile: invalid column %q: %w", k, repository.ErrInvalidInput)
		}
		cols = append(cols, k)
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = row[c]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(quoted, ", "), strings.Join(placeholders, ", "))

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("pg: insert profile: %w", mapPgError(err))
	}
	return nil
}

// GetByEmail lee la fila completa como JSON para no atarse a las columnas de la tabla.
func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*repository.ProfileRecord, error) {
	query := fmt.Sprintf("SELECT to_jsonb(t) FROM %s t WHERE t.email = $1 LIMIT 1", r.table)

	var row map[string]any
	err := r.db.QueryRow(ctx, query, email).Scan(&row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: get profile: %w", mapPgError(err))
	}
	return repository.ProfileFromRow(row), nil
}

func (r *profileRepo) DeleteByEmail(ctx context.Context, email string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE email = $1", r.table)

	tag, err := r.db.Exec(ctx, query, email)
	if err != nil {
		return fmt.Errorf("pg: delete profile: %w", mapPgError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// mapPgError traduce SQLSTATE a sentinels de repository, preservando el detalle.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.Message)
	case pgUndefinedColumn, pgUndefinedTable:
		return fmt.Errorf("%w: %s", repository.ErrInvalidInput, pgErr.Message)
	}
	return err
}
