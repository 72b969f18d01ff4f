package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/placement-cell/placement-api/internal/models"
	"github.com/placement-cell/placement-api/internal/repository"
	appErrors "github.com/placement-cell/placement-api/pkg/errors"
)

type mockApplicationRepo struct {
	created      []*models.Application
	createErr    error
	exists       bool
	existsErr    error
	detail       *models.ApplicationDetail
	detailErr    error
	listed       []models.ApplicationDetail
	listErr      error
	statusSet    map[string]models.ApplicationStatus
	updateErr    error
	updateCalled bool
}

func (m *mockApplicationRepo) Create(ctx context.Context, application *models.Application) error {
	if m.createErr != nil {
		return m.createErr
	}
	application.ID = "app-1"
	application.AppliedAt = time.Now().UTC()
	m.created = append(m.created, application)
	return nil
}

func (m *mockApplicationRepo) Exists(ctx context.Context, studentID, companyID string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockApplicationRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	return &m.detail.Application, nil
}

func (m *mockApplicationRepo) FindDetailByID(ctx context.Context, id string) (*models.ApplicationDetail, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	if m.detail == nil {
		return nil, sql.ErrNoRows
	}
	d := *m.detail
	return &d, nil
}

func (m *mockApplicationRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ApplicationDetail, error) {
	return m.listed, m.listErr
}

func (m *mockApplicationRepo) ListByCompany(ctx context.Context, companyID string) ([]models.ApplicationDetail, error) {
	return m.listed, m.listErr
}

func (m *mockApplicationRepo) ListAll(ctx context.Context) ([]models.ApplicationDetail, error) {
	return m.listed, m.listErr
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updateCalled = true
	if m.statusSet == nil {
		m.statusSet = make(map[string]models.ApplicationStatus)
	}
	m.statusSet[id] = status
	return nil
}

type mockAccountReader struct {
	account *models.Account
	err     error
}

func (m *mockAccountReader) FindByID(ctx context.Context, id string) (*models.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.account, nil
}

type mockCompanyReader struct {
	company *models.Company
	err     error
}

func (m *mockCompanyReader) FindByID(ctx context.Context, id string) (*models.Company, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.company, nil
}

type mockNotifier struct {
	calls []StatusNotification
	err   error
}

func (m *mockNotifier) Notify(ctx context.Context, email string, status models.ApplicationStatus, companyName, studentName string) error {
	m.calls = append(m.calls, StatusNotification{Email: email, Status: status, CompanyName: companyName, StudentName: studentName})
	return m.err
}

func testStudent() *models.Account {
	return &models.Account{ID: "s1", Name: "Asha Rao", Email: "asha@example.com", Role: models.RoleStudent, Department: "CSE", CGPA: 8.0}
}

func testCompany() *models.Company {
	return &models.Company{ID: "c1", Name: "Acme", Role: "SDE", MinCGPA: 7.0, Branches: models.StringList{"CSE", "ECE"}}
}

func newApplicationService(repo *mockApplicationRepo, accounts *mockAccountReader, companies *mockCompanyReader, notifier Notifier) *ApplicationService {
	return NewApplicationService(repo, accounts, companies, notifier, validator.New(), zap.NewNop())
}

func TestCheckEligibilityCGPA(t *testing.T) {
	student := testStudent()
	company := testCompany()
	company.MinCGPA = 8.5

	err := CheckEligibility(student, company)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotEligible.Code, appErr.Code)
	assert.Equal(t, "eligibility failed: minimum CGPA of 8.5 is required", appErr.Message)
}

func TestCheckEligibilityCGPABoundary(t *testing.T) {
	student := testStudent()
	student.CGPA = 7.0
	company := testCompany()

	assert.NoError(t, CheckEligibility(student, company))
}

func TestCheckEligibilityBranchCaseInsensitive(t *testing.T) {
	student := testStudent()
	student.Department = "cse"
	company := testCompany()

	assert.NoError(t, CheckEligibility(student, company))
}

func TestCheckEligibilityBranchMismatch(t *testing.T) {
	student := testStudent()
	student.Department = "MECH"
	company := testCompany()

	err := CheckEligibility(student, company)
	require.Error(t, err)
	assert.Equal(t, "eligibility failed: your branch (MECH) is not eligible", appErrors.FromError(err).Message)
}

func TestCheckEligibilityEmptyBranchesAdmitsAll(t *testing.T) {
	student := testStudent()
	student.Department = "MECH"
	company := testCompany()
	company.Branches = nil

	assert.NoError(t, CheckEligibility(student, company))
}

func TestApplyCreatesPending(t *testing.T) {
	repo := &mockApplicationRepo{}
	svc := newApplicationService(repo, &mockAccountReader{account: testStudent()}, &mockCompanyReader{company: testCompany()}, nil)

	app, err := svc.Apply(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, app.Status)
	require.Len(t, repo.created, 1)
	assert.Equal(t, "s1", repo.created[0].StudentID)
	assert.Equal(t, "c1", repo.created[0].CompanyID)
}

func TestApplyCompanyNotFound(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, &mockAccountReader{account: testStudent()}, &mockCompanyReader{err: sql.ErrNoRows}, nil)

	_, err := svc.Apply(context.Background(), "s1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestApplyIneligibleDoesNotCreate(t *testing.T) {
	repo := &mockApplicationRepo{}
	student := testStudent()
	student.CGPA = 6.5
	svc := newApplicationService(repo, &mockAccountReader{account: student}, &mockCompanyReader{company: testCompany()}, nil)

	_, err := svc.Apply(context.Background(), "s1", "c1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotEligible.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestApplyDuplicate(t *testing.T) {
	repo := &mockApplicationRepo{exists: true}
	svc := newApplicationService(repo, &mockAccountReader{account: testStudent()}, &mockCompanyReader{company: testCompany()}, nil)

	_, err := svc.Apply(context.Background(), "s1", "c1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, "you have already applied to this company", appErr.Message)
}

func TestApplyDuplicateRace(t *testing.T) {
	// Exists reports false but the insert loses the race to the unique index.
	repo := &mockApplicationRepo{createErr: repository.ErrDuplicateKey}
	svc := newApplicationService(repo, &mockAccountReader{account: testStudent()}, &mockCompanyReader{company: testCompany()}, nil)

	_, err := svc.Apply(context.Background(), "s1", "c1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, "you have already applied to this company", appErr.Message)
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{AccountID: "a1", Role: models.RoleAdmin}
}

func hrClaims(companyID string) *models.JWTClaims {
	return &models.JWTClaims{AccountID: "h1", Role: models.RoleHR, CompanyID: &companyID}
}

func pendingDetail() *models.ApplicationDetail {
	return &models.ApplicationDetail{
		Application:  models.Application{ID: "app-1", StudentID: "s1", CompanyID: "c1", Status: models.StatusPending},
		StudentName:  "Asha Rao",
		StudentEmail: "asha@example.com",
		CompanyName:  "Acme",
	}
}

func TestUpdateStatusShortlistedNotifies(t *testing.T) {
	repo := &mockApplicationRepo{detail: pendingDetail()}
	notifier := &mockNotifier{}
	svc := newApplicationService(repo, nil, nil, notifier)

	detail, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "shortlisted"}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.StatusShortlisted, detail.Status)
	assert.Equal(t, models.StatusShortlisted, repo.statusSet["app-1"])
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "asha@example.com", notifier.calls[0].Email)
	assert.Equal(t, "Acme", notifier.calls[0].CompanyName)
}

func TestUpdateStatusRejectedDoesNotNotify(t *testing.T) {
	repo := &mockApplicationRepo{detail: pendingDetail()}
	notifier := &mockNotifier{}
	svc := newApplicationService(repo, nil, nil, notifier)

	_, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "rejected"}, adminClaims())
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

func TestUpdateStatusHiredNotifies(t *testing.T) {
	repo := &mockApplicationRepo{detail: pendingDetail()}
	notifier := &mockNotifier{}
	svc := newApplicationService(repo, nil, nil, notifier)

	_, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "HIRED"}, adminClaims())
	require.NoError(t, err)
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, models.StatusHired, notifier.calls[0].Status)
}

func TestUpdateStatusNotifierFailureDoesNotFail(t *testing.T) {
	repo := &mockApplicationRepo{detail: pendingDetail()}
	notifier := &mockNotifier{err: errors.New("smtp down")}
	svc := newApplicationService(repo, nil, nil, notifier)

	detail, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "hired"}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.StatusHired, detail.Status)
}

func TestUpdateStatusUnknownValue(t *testing.T) {
	repo := &mockApplicationRepo{detail: pendingDetail()}
	svc := newApplicationService(repo, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "accepted"}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.updateCalled)
}

func TestUpdateStatusNotFound(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "missing", UpdateStatusRequest{Status: "hired"}, adminClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusHRScopedToOwnCompany(t *testing.T) {
	repo := &mockApplicationRepo{detail: pendingDetail()}
	svc := newApplicationService(repo, nil, nil, nil)

	_, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "shortlisted"}, hrClaims("other-co"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.updateCalled)

	_, err = svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "shortlisted"}, hrClaims("c1"))
	require.NoError(t, err)
	assert.True(t, repo.updateCalled)
}

func TestUpdateStatusIdempotentValue(t *testing.T) {
	detail := pendingDetail()
	detail.Status = models.StatusShortlisted
	repo := &mockApplicationRepo{detail: detail}
	notifier := &mockNotifier{}
	svc := newApplicationService(repo, nil, nil, notifier)

	got, err := svc.UpdateStatus(context.Background(), "app-1", UpdateStatusRequest{Status: "shortlisted"}, adminClaims())
	require.NoError(t, err)
	assert.Equal(t, models.StatusShortlisted, got.Status)
	// Re-setting a notifiable status re-dispatches; suppression is not promised.
	assert.Len(t, notifier.calls, 1)
}

func TestListForCompanyHRScope(t *testing.T) {
	repo := &mockApplicationRepo{listed: []models.ApplicationDetail{*pendingDetail()}}
	svc := newApplicationService(repo, nil, nil, nil)

	_, err := svc.ListForCompany(context.Background(), "c1", hrClaims("other-co"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	apps, err := svc.ListForCompany(context.Background(), "c1", hrClaims("c1"))
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	apps, err = svc.ListForCompany(context.Background(), "c1", adminClaims())
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestExportCSV(t *testing.T) {
	detail := pendingDetail()
	detail.StudentDepartment = "CSE"
	detail.StudentCGPA = 8.0
	detail.CompanyRole = "SDE"
	detail.AppliedAt = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	repo := &mockApplicationRepo{listed: []models.ApplicationDetail{*detail}}
	svc := newApplicationService(repo, nil, nil, nil)

	data, contentType, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(data), "Asha Rao")
	assert.Contains(t, string(data), "pending")
}

func TestExportPDF(t *testing.T) {
	repo := &mockApplicationRepo{listed: []models.ApplicationDetail{*pendingDetail()}}
	svc := newApplicationService(repo, nil, nil, nil)

	data, contentType, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, len(data) > 0)
}

func TestExportUnknownFormat(t *testing.T) {
	svc := newApplicationService(&mockApplicationRepo{}, nil, nil, nil)

	_, _, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
