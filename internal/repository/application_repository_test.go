package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-cell/placement-api/internal/models"
)

func detailRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "student_id", "company_id", "status", "applied_at",
		"student_name", "student_email", "student_department", "student_cgpa",
		"company_name", "company_role", "company_location",
	}).AddRow("app-1", "s1", "c1", string(models.StatusPending), now,
		"Asha Rao", "asha@example.com", "CSE", 8.2,
		"Acme", "SDE", "Bengaluru")
}

func TestApplicationCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnResult(sqlmock.NewResult(1, 1))

	application := &models.Application{StudentID: "s1", CompanyID: "c1"}
	require.NoError(t, repo.Create(context.Background(), application))
	assert.NotEmpty(t, application.ID)
	assert.Equal(t, models.StatusPending, application.Status)
	assert.False(t, application.AppliedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec("INSERT INTO applications").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Application{StudentID: "s1", CompanyID: "c1"})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestApplicationExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM applications WHERE student_id = $1 AND company_id = $2 LIMIT 1")).
		WithArgs("s1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApplicationExistsFalse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT 1 FROM applications").WillReturnError(sql.ErrNoRows)

	exists, err := repo.Exists(context.Background(), "s1", "c1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestApplicationFindDetailByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT .+ FROM applications a[\\s\\S]+JOIN accounts s[\\s\\S]+JOIN companies c[\\s\\S]+WHERE a.id").
		WithArgs("app-1").
		WillReturnRows(detailRows(time.Now()))

	detail, err := repo.FindDetailByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", detail.StudentName)
	assert.Equal(t, "Acme", detail.CompanyName)
	assert.Equal(t, models.StatusPending, detail.Status)
}

func TestApplicationListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("SELECT .+ FROM applications a[\\s\\S]+WHERE a.student_id = .+ ORDER BY a.applied_at DESC").
		WithArgs("s1").
		WillReturnRows(detailRows(time.Now()))

	applications, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, "c1", applications[0].CompanyID)
}

func TestApplicationUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $2 WHERE id = $1")).
		WithArgs("app-1", string(models.StatusHired)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "app-1", models.StatusHired))
	assert.NoError(t, mock.ExpectationsWereMet())
}
