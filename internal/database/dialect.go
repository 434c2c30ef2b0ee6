package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/lingua/internal/spaced_repetition"
)

type ddlTypes struct {
	id        string
	timestamp string
}

func columnTypes(driver string) ddlTypes {
	if driver == DriverPostgres {
		return ddlTypes{id: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ"}
	}
	return ddlTypes{id: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP"}
}

// Postgres cannot infer parameter types inside INSERT ... SELECT lists and CASE
// branches, so those placeholders carry explicit casts there. SQLite must not
// cast timestamps: CAST(text AS TIMESTAMP) yields a number.
func timeParam(driver string) string {
	if driver == DriverPostgres {
		return "CAST(? AS TIMESTAMPTZ)"
	}
	return "?"
}

func intParam(driver string) string {
	if driver == DriverPostgres {
		return "CAST(? AS BIGINT)"
	}
	return "?"
}

func textParam(driver string) string {
	if driver == DriverPostgres {
		return "CAST(? AS TEXT)"
	}
	return "?"
}

// levelExpr is clamp(mastery_level + step) written in portable SQL
func levelExpr(ladder *spaced_repetition.Ladder, step int) string {
	raw := fmt.Sprintf("(mastery_level + %d)", step)
	return fmt.Sprintf("(CASE WHEN %s > %d THEN %d WHEN %s < %d THEN %d ELSE %s END)",
		raw, ladder.MaxLevel, ladder.MaxLevel,
		raw, ladder.MinLevel, ladder.MinLevel,
		raw)
}

// nextReviewExpr maps the level computed by expr to now + IntervalFor(level).
// Every level gets its own precomputed timestamp so the update stays a single
// statement evaluated against the row's current level.
func nextReviewExpr(driver string, ladder *spaced_repetition.Ladder, expr string, now time.Time) (string, []interface{}) {
	var b strings.Builder
	args := make([]interface{}, 0, len(ladder.Levels())+1)

	b.WriteString("(CASE ")
	b.WriteString(expr)
	for _, level := range ladder.Levels() {
		fmt.Fprintf(&b, " WHEN %d THEN %s", level, timeParam(driver))
		args = append(args, now.Add(ladder.IntervalFor(level)))
	}
	fmt.Fprintf(&b, " ELSE %s END)", timeParam(driver))
	args = append(args, now.Add(ladder.IntervalFor(ladder.MaxLevel)))

	return b.String(), args
}
