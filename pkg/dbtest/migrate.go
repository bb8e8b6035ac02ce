package dbtest

import (
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
)

const schemaPlaceholder = "{{schema}}"

// MigrateFromFile executes all SQL queries from the files over a database
// connection. Occurrences of {{schema}} are replaced with the given namespace.
func MigrateFromFile(db *sqlx.DB, schema string, fileNames ...string) error {
	for _, fileName := range fileNames {
		fileBytes, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("os.ReadFile: %w", err)
		}

		query := strings.ReplaceAll(string(fileBytes), schemaPlaceholder, schema)

		if _, err = db.Exec(query); err != nil {
			return fmt.Errorf("db.Exec(%s): %w", fileName, err)
		}
	}

	return nil
}
