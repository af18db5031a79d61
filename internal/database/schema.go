package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/stwalsh4118/valuator/api/internal/models"
)

// PropertySchema returns the DDL for the wide property table, generated from
// the column table in models.
func PropertySchema() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", models.PropertyRecord{}.TableName())
	b.WriteString("    id BIGSERIAL PRIMARY KEY,\n")
	b.WriteString("    file_number TEXT NOT NULL UNIQUE,\n")
	for _, col := range models.RecordColumns() {
		fmt.Fprintf(&b, "    %s %s,\n", col.Name, col.Kind.SQLType())
	}
	b.WriteString("    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),\n")
	b.WriteString("    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()\n")
	b.WriteString(")")
	return b.String()
}

// CredentialSchema is the DDL for the SQLite users table.
const CredentialSchema = `CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// EnsurePropertySchema creates the property table if it does not exist.
func EnsurePropertySchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, PropertySchema()); err != nil {
		return fmt.Errorf("failed to create property table: %w", err)
	}
	return nil
}

// EnsureCredentialSchema creates the users table if it does not exist.
func EnsureCredentialSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, CredentialSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}
