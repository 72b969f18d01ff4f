package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/placement-cell/placement-api/internal/models"
	"github.com/placement-cell/placement-api/internal/repository"
	appErrors "github.com/placement-cell/placement-api/pkg/errors"
	"github.com/placement-cell/placement-api/pkg/export"
)

type applicationRepository interface {
	Create(ctx context.Context, application *models.Application) error
	Exists(ctx context.Context, studentID, companyID string) (bool, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ApplicationDetail, error)
	ListByCompany(ctx context.Context, companyID string) ([]models.ApplicationDetail, error)
	ListAll(ctx context.Context) ([]models.ApplicationDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error
}

type accountReader interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
}

type companyReader interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
}

// Notifier delivers a status-change notification to a student. Dispatch is
// best-effort: a failing notifier must never fail the status update.
type Notifier interface {
	Notify(ctx context.Context, email string, status models.ApplicationStatus, companyName, studentName string) error
}

// UpdateStatusRequest carries the requested status value.
type UpdateStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
}

// ApplicationService orchestrates the application workflow: eligibility,
// uniqueness and the status lifecycle.
type ApplicationService struct {
	repo      applicationRepository
	accounts  accountReader
	companies companyReader
	notifier  Notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApplicationService constructs ApplicationService.
func NewApplicationService(repo applicationRepository, accounts accountReader, companies companyReader, notifier Notifier, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{repo: repo, accounts: accounts, companies: companies, notifier: notifier, validator: validate, logger: logger}
}

// CheckEligibility decides whether the student may apply to the company.
// Pure decision over the two entities, no side effects. The company's skills
// criterion is stored but intentionally not enforced here.
func CheckEligibility(student *models.Account, company *models.Company) error {
	if student.CGPA < company.MinCGPA {
		return appErrors.Clone(appErrors.ErrNotEligible, fmt.Sprintf("eligibility failed: minimum CGPA of %g is required", company.MinCGPA))
	}
	if len(company.Branches) > 0 {
		eligible := false
		for _, branch := range company.Branches {
			if strings.EqualFold(branch, student.Department) {
				eligible = true
				break
			}
		}
		if !eligible {
			return appErrors.Clone(appErrors.ErrNotEligible, fmt.Sprintf("eligibility failed: your branch (%s) is not eligible", student.Department))
		}
	}
	return nil
}

// Apply creates a pending application for the student against the company.
func (s *ApplicationService) Apply(ctx context.Context, studentID, companyID string) (*models.Application, error) {
	company, err := s.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}

	student, err := s.accounts.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if err := CheckEligibility(student, company); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, studentID, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "you have already applied to this company")
	}

	application := &models.Application{StudentID: studentID, CompanyID: companyID, Status: models.StatusPending}
	if err := s.repo.Create(ctx, application); err != nil {
		// The check above raced a concurrent apply; the unique index is authoritative.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "you have already applied to this company")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	return application, nil
}

// UpdateStatus sets an application's status. HR actors may only touch
// applications belonging to their affiliated company. Transitions are
// permissive; only the status value itself is validated.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest, actor *models.JWTClaims) (*models.ApplicationDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "status is required")
	}
	status := models.ApplicationStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if !models.ValidStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, shortlisted, rejected or hired")
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if err := authorizeCompanyScope(actor, detail.CompanyID, "not authorized to update an application for this company"); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}
	detail.Status = status

	if models.NotifiableStatus(status) && s.notifier != nil {
		if err := s.notifier.Notify(ctx, detail.StudentEmail, status, detail.CompanyName, detail.StudentName); err != nil {
			s.logger.Warn("status notification dispatch failed",
				zap.String("application_id", id),
				zap.String("status", string(status)),
				zap.Error(err))
		}
	}

	return detail, nil
}

// ListMine returns the student's own applications with company context.
func (s *ApplicationService) ListMine(ctx context.Context, studentID string) ([]models.ApplicationDetail, error) {
	applications, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return applications, nil
}

// ListForCompany returns applications for a company. HR actors are limited
// to their own affiliation.
func (s *ApplicationService) ListForCompany(ctx context.Context, companyID string, actor *models.JWTClaims) ([]models.ApplicationDetail, error) {
	if err := authorizeCompanyScope(actor, companyID, "not authorized for this company"); err != nil {
		return nil, err
	}
	applications, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return applications, nil
}

// ListAll returns every application with both sides expanded.
func (s *ApplicationService) ListAll(ctx context.Context) ([]models.ApplicationDetail, error) {
	applications, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return applications, nil
}

// Export renders all applications as a CSV or PDF document.
func (s *ApplicationService) Export(ctx context.Context, format string) ([]byte, string, error) {
	applications, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Email", "Department", "CGPA", "Company", "Role", "Status", "Applied At"},
	}
	for _, app := range applications {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":    app.StudentName,
			"Email":      app.StudentEmail,
			"Department": app.StudentDepartment,
			"CGPA":       fmt.Sprintf("%.2f", app.StudentCGPA),
			"Company":    app.CompanyName,
			"Role":       app.CompanyRole,
			"Status":     string(app.Status),
			"Applied At": app.AppliedAt.Format("2006-01-02 15:04"),
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		data, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return data, "text/csv", nil
	case "pdf":
		data, err := export.NewPDFExporter().Render(dataset, "Applications Report")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func authorizeCompanyScope(actor *models.JWTClaims, companyID, message string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleHR {
		if actor.CompanyID != nil && *actor.CompanyID == companyID {
			return nil
		}
		return appErrors.Clone(appErrors.ErrForbidden, message)
	}
	return appErrors.ErrForbidden
}
