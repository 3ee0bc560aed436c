package sqlstore

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// dialect captures the differences between the supported databases.
// Queries are written with ? placeholders and rebound on the way out.
type dialect struct {
	name       string
	sqlDriver  string
	goose      goose.Dialect
	migrations string
	numbered   bool
	// timeType is the column type timestamps are cast to in expressions.
	timeType string
}

var (
	sqliteDialect = &dialect{
		name:       DriverSQLite,
		sqlDriver:  "sqlite",
		goose:      goose.DialectSQLite3,
		migrations: "migrations/sqlite",
		timeType:   "TEXT",
	}
	postgresDialect = &dialect{
		name:       DriverPostgres,
		sqlDriver:  "pgx",
		goose:      goose.DialectPostgres,
		migrations: "migrations/postgres",
		numbered:   true,
		timeType:   "TIMESTAMPTZ",
	}
)

func dialectFor(driver string) (*dialect, error) {
	switch driver {
	case "", DriverSQLite:
		return sqliteDialect, nil
	case DriverPostgres:
		return postgresDialect, nil
	default:
		return nil, errors.New("unsupported database driver: " + driver)
	}
}

// rebind rewrites ? placeholders into $n for dialects that number them.
// Question marks inside single-quoted literals are left alone.
func (d *dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// containsMatch returns a case-insensitive substring predicate on col.
// The bound argument must be produced by likePattern.
func (d *dialect) containsMatch(col string) string {
	if d.name == DriverPostgres {
		return col + ` ILIKE ? ESCAPE '\'`
	}
	return `LOWER(` + col + `) LIKE LOWER(?) ESCAPE '\'`
}

// likePattern wraps s for a contains match, escaping LIKE metacharacters.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// isUniqueViolation reports whether err is a unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a foreign key failure.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
