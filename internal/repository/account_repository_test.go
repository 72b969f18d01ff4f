package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-cell/placement-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func accountRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "department", "cgpa", "skills", "resume_path", "company_id", "created_at", "updated_at"}).
		AddRow("s1", "Asha Rao", "asha@example.com", "hash", string(models.RoleStudent), "CSE", 8.2, "go,sql", "", nil, now, now)
}

func TestAccountFindByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password_hash, role, department, cgpa, skills, resume_path, company_id, created_at, updated_at FROM accounts WHERE email = $1 LIMIT 1")).
		WithArgs("asha@example.com").
		WillReturnRows(accountRows(time.Now()))

	account, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", account.Name)
	assert.Equal(t, models.StringList{"go", "sql"}, account.Skills)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE email").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@example.com")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestAccountCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").WillReturnResult(sqlmock.NewResult(1, 1))

	account := &models.Account{Name: "Asha Rao", Email: "asha@example.com", PasswordHash: "hash", Role: models.RoleStudent, Department: "CSE", CGPA: 8.2}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("INSERT INTO accounts").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Account{Name: "Asha", Email: "taken@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestAccountUpdateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec("UPDATE accounts SET").WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Update(context.Background(), &models.Account{ID: "s1", Email: "taken@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestAccountUpdateResumePath(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET resume_path = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", "resumes/s1.pdf", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateResumePath(context.Background(), "s1", "resumes/s1.pdf"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountListByRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAccountRepository(db)

	mock.ExpectQuery("SELECT .+ FROM accounts WHERE role = .+ ORDER BY created_at DESC").
		WithArgs(string(models.RoleStudent)).
		WillReturnRows(accountRows(time.Now()))

	accounts, err := repo.ListByRole(context.Background(), models.RoleStudent)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "s1", accounts[0].ID)
}
