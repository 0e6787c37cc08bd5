package testsupport

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared&_fk=1")
}

// NewNamedSQLiteMemoryDB opens a private shared-cache database so tests that
// seed conflicting fixtures do not observe each other's rows.
func NewNamedSQLiteMemoryDB(name string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	return sql.Open("sqlite3", dsn)
}
