package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-cell/placement-api/internal/models"
)

const companyColumns = `id, name, role, location, ctc, description, min_cgpa, branches, skills, deadline, created_at`

// CompanyRepository handles persistence of company listings.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs the repository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// Create persists a new company listing. Returns ErrDuplicateKey when the name is taken.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO companies (id, name, role, location, ctc, description, min_cgpa, branches, skills, deadline, created_at)
        VALUES (:id, :name, :role, :location, :ctc, :description, :min_cgpa, :branches, :skills, :deadline, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		if translated := translateUnique(err); translated == ErrDuplicateKey {
			return translated
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// FindByID returns a company by its ID.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1 LIMIT 1`, companyColumns)
	var company models.Company
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find company by id: %w", err)
	}
	return &company, nil
}

// List returns all company listings, newest first.
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies ORDER BY created_at DESC`, companyColumns)
	var companies []models.Company
	if err := r.db.SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// Update persists listing changes. Returns ErrDuplicateKey when the new name is taken.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	const query = `UPDATE companies SET name = :name, role = :role, location = :location, ctc = :ctc,
        description = :description, min_cgpa = :min_cgpa, branches = :branches, skills = :skills, deadline = :deadline
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		if translated := translateUnique(err); translated == ErrDuplicateKey {
			return translated
		}
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}

// Delete removes a company listing. Dependent applications cascade at the schema level.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM companies WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete company rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
