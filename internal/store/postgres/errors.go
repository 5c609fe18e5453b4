package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"clinicsched/internal/store"
)

const (
	codeExclusionViolation = "23P01"
	codeUniqueViolation    = "23505"
	codeForeignKey         = "23503"
	codeReadOnlyTx         = "25006"

	appointmentsNoOverlap = "appointments_no_overlap"
	weeklyNoOverlap       = "weekly_availability_no_overlap"
)

// translate maps driver errors onto the store sentinels. Anything it does not
// recognise is returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeExclusionViolation:
		if pgErr.ConstraintName == appointmentsNoOverlap || pgErr.ConstraintName == weeklyNoOverlap {
			return store.ErrConflict
		}
	case codeForeignKey:
		return store.ErrNotFound
	case codeReadOnlyTx:
		return store.ErrReadOnly
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
