// Package sqlxrepos implements the core repositories on top of jmoiron/sqlx, with queries built by squirrel.
// The same statements run on SQLite and PostgreSQL.
package sqlxrepos

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/nawanshu18/student-result-management-system/core"
)

// getExec returns the executor passed down by a service (e.g. a transaction) or the repository default.
func getExec(def core.DBExecutor, svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return def
}

// builder returns a squirrel statement builder using the placeholders of exec's driver.
func builder(exec core.DBExecutor) sq.StatementBuilderType {
	if exec.DriverName() == "postgres" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func trapNoRowsErr(err, notFound error) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return err
}

// orderBy keeps the allowed orderings only (they end up in the SQL text) and falls back to defaults.
func orderBy(ordering []core.DBOrdering, allowed map[string]bool, defaults ...string) []string {
	clauses := make([]string, 0, len(ordering)+len(defaults))
	for _, ord := range ordering {
		if allowed[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		return defaults
	}
	return clauses
}
