package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the schema. The UNIQUE (student_id, company_id) index on
// applications is the authoritative guard against duplicate applications.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			location TEXT NOT NULL,
			ctc NUMERIC(12,2) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			min_cgpa NUMERIC(4,2) NOT NULL DEFAULT 0,
			branches TEXT NOT NULL DEFAULT '',
			skills TEXT NOT NULL DEFAULT '',
			deadline TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_name ON companies (name)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'student',
			department TEXT NOT NULL DEFAULT '',
			cgpa NUMERIC(4,2) NOT NULL DEFAULT 0,
			skills TEXT NOT NULL DEFAULT '',
			resume_path TEXT NOT NULL DEFAULT '',
			company_id UUID REFERENCES companies(id) ON DELETE SET NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_email ON accounts (email)`,

		`CREATE TABLE IF NOT EXISTS applications (
			id UUID PRIMARY KEY,
			student_id UUID NOT NULL REFERENCES accounts(id),
			company_id UUID NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			status TEXT NOT NULL DEFAULT 'pending',
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_student_company ON applications (student_id, company_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
