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

const accountColumns = `id, name, email, password_hash, role, department, cgpa, skills, resume_path, company_id, created_at, updated_at`

// AccountRepository provides database access for accounts.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create persists a new account. Returns ErrDuplicateKey when the email is taken.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	const query = `INSERT INTO accounts (id, name, email, password_hash, role, department, cgpa, skills, resume_path, company_id, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role, :department, :cgpa, :skills, :resume_path, :company_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		if translated := translateUnique(err); translated == ErrDuplicateKey {
			return translated
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// FindByEmail returns an account by email address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE email = $1 LIMIT 1`, accountColumns)
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// FindByID returns an account by identifier.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE id = $1 LIMIT 1`, accountColumns)
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// Update persists profile changes. Returns ErrDuplicateKey when the new email is taken.
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()
	const query = `UPDATE accounts SET name = :name, email = :email, password_hash = :password_hash,
        department = :department, cgpa = :cgpa, skills = :skills, resume_path = :resume_path, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		if translated := translateUnique(err); translated == ErrDuplicateKey {
			return translated
		}
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// UpdateResumePath stores the relative path of an uploaded resume.
func (r *AccountRepository) UpdateResumePath(ctx context.Context, id, path string) error {
	const query = `UPDATE accounts SET resume_path = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, path, time.Now().UTC()); err != nil {
		return fmt.Errorf("update resume path: %w", err)
	}
	return nil
}

// ListByRole returns accounts holding the given role, newest first.
func (r *AccountRepository) ListByRole(ctx context.Context, role models.Role) ([]models.Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE role = $1 ORDER BY created_at DESC`, accountColumns)
	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, query, role); err != nil {
		return nil, fmt.Errorf("list accounts by role: %w", err)
	}
	return accounts, nil
}
