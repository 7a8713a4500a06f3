package sqlite

import (
	"database/sql/driver"
	"strings"

	moderncsqlite "modernc.org/sqlite"
)

// foldFunc lowercases text with Go's Unicode tables. SQLite's LOWER only
// folds ASCII, so case-insensitive searches compare fold(column) against a
// pattern lowered by strings.ToLower.
const foldFunc = "fold"

func init() {
	moderncsqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
