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

const applicationDetailColumns = `a.id, a.student_id, a.company_id, a.status, a.applied_at,
        s.name AS student_name, s.email AS student_email, s.department AS student_department, s.cgpa AS student_cgpa,
        c.name AS company_name, c.role AS company_role, c.location AS company_location`

const applicationDetailJoins = `FROM applications a
        JOIN accounts s ON s.id = a.student_id
        JOIN companies c ON c.id = a.company_id`

// ApplicationRepository handles persistence of applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create persists a new application. The unique index on (student_id, company_id)
// rejects a concurrent duplicate; the violation surfaces as ErrDuplicateKey.
func (r *ApplicationRepository) Create(ctx context.Context, application *models.Application) error {
	if application.ID == "" {
		application.ID = uuid.NewString()
	}
	if application.Status == "" {
		application.Status = models.StatusPending
	}
	if application.AppliedAt.IsZero() {
		application.AppliedAt = time.Now().UTC()
	}
	const query = `INSERT INTO applications (id, student_id, company_id, status, applied_at)
        VALUES (:id, :student_id, :company_id, :status, :applied_at)`
	if _, err := r.db.NamedExecContext(ctx, query, application); err != nil {
		if translated := translateUnique(err); translated == ErrDuplicateKey {
			return translated
		}
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// Exists reports whether the student already applied to the company.
func (r *ApplicationRepository) Exists(ctx context.Context, studentID, companyID string) (bool, error) {
	const query = `SELECT 1 FROM applications WHERE student_id = $1 AND company_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, companyID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check application exists: %w", err)
	}
	return true, nil
}

// FindByID returns an application by its ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	const query = `SELECT id, student_id, company_id, status, applied_at FROM applications WHERE id = $1 LIMIT 1`
	var application models.Application
	if err := r.db.GetContext(ctx, &application, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return &application, nil
}

// FindDetailByID returns an application with student and company context.
func (r *ApplicationRepository) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.id = $1`, applicationDetailColumns, applicationDetailJoins)
	var detail models.ApplicationDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application detail: %w", err)
	}
	return &detail, nil
}

// ListByStudent returns the student's applications with company context.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.student_id = $1 ORDER BY a.applied_at DESC`, applicationDetailColumns, applicationDetailJoins)
	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query, studentID); err != nil {
		return nil, fmt.Errorf("list applications by student: %w", err)
	}
	return applications, nil
}

// ListByCompany returns the applications filed against a company.
func (r *ApplicationRepository) ListByCompany(ctx context.Context, companyID string) ([]models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE a.company_id = $1 ORDER BY a.applied_at DESC`, applicationDetailColumns, applicationDetailJoins)
	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query, companyID); err != nil {
		return nil, fmt.Errorf("list applications by company: %w", err)
	}
	return applications, nil
}

// ListAll returns every application with both sides expanded.
func (r *ApplicationRepository) ListAll(ctx context.Context) ([]models.ApplicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY a.applied_at DESC`, applicationDetailColumns, applicationDetailJoins)
	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return applications, nil
}

// UpdateStatus sets the stored status for an application.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	const query = `UPDATE applications SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	return nil
}
