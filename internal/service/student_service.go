package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/placement-cell/placement-api/internal/models"
	"github.com/placement-cell/placement-api/internal/repository"
	appErrors "github.com/placement-cell/placement-api/pkg/errors"
)

type studentAccountRepository interface {
	FindByID(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	UpdateResumePath(ctx context.Context, id, path string) error
	ListByRole(ctx context.Context, role models.Role) ([]models.Account, error)
}

type resumeStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
}

type resumeSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string) (ownerID, relPath string, expiresAt time.Time, err error)
}

// UpdateProfileRequest carries a partial profile update. Absent fields keep
// their stored values; cgpa and skills accept string or native forms.
type UpdateProfileRequest struct {
	Name       *string     `json:"name"`
	Email      *string     `json:"email"`
	Department *string     `json:"department"`
	CGPA       interface{} `json:"cgpa"`
	Skills     interface{} `json:"skills"`
	Resume     *string     `json:"resume"`
	Password   string      `json:"password"`
}

// ResumeLink is a signed, expiring download reference.
type ResumeLink struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StudentService manages student profiles and resume storage.
type StudentService struct {
	repo      studentAccountRepository
	store     resumeStore
	signer    resumeSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentAccountRepository, store resumeStore, signer resumeSigner, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, store: store, signer: signer, validator: validate, logger: logger}
}

// GetProfile returns the caller's account.
func (s *StudentService) GetProfile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return account, nil
}

// UpdateProfile applies a partial profile update and returns the result.
func (s *StudentService) UpdateProfile(ctx context.Context, accountID string, req UpdateProfileRequest) (*models.Account, error) {
	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		account.Name = *req.Name
	}
	if req.Email != nil && *req.Email != "" {
		account.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Department != nil && *req.Department != "" {
		account.Department = *req.Department
	}
	if req.CGPA != nil {
		cgpa, err := CoerceCGPA(req.CGPA)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "cgpa must be a number")
		}
		account.CGPA = cgpa
	}
	if req.Skills != nil {
		account.Skills = CoerceSkills(req.Skills)
	}
	if req.Resume != nil {
		account.ResumePath = *req.Resume
	}
	if req.Password != "" {
		if len(req.Password) < 6 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		account.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "email already in use")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return account, nil
}

// ListStudents returns every student account.
func (s *StudentService) ListStudents(ctx context.Context) ([]models.Account, error) {
	students, err := s.repo.ListByRole(ctx, models.RoleStudent)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// GetByID returns any account by ID, for admin views.
func (s *StudentService) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.GetProfile(ctx, id)
}

// UploadResume stores a resume file for the account and records its path.
func (s *StudentService) UploadResume(ctx context.Context, accountID, filename string, r io.Reader) (string, error) {
	if s.store == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "resume storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".pdf" && ext != ".doc" && ext != ".docx" {
		return "", appErrors.Clone(appErrors.ErrValidation, "resume must be a pdf or word document")
	}
	relPath := fmt.Sprintf("resumes/%s%s", accountID, ext)
	if _, err := s.store.SaveStream(relPath, r); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store resume")
	}
	if err := s.repo.UpdateResumePath(ctx, accountID, relPath); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record resume")
	}
	return relPath, nil
}

// ResumeLink issues a signed, expiring download token for the stored resume.
func (s *StudentService) ResumeLink(ctx context.Context, accountID string) (*ResumeLink, error) {
	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.ResumePath == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no resume uploaded")
	}
	token, expiresAt, err := s.signer.Generate(accountID, account.ResumePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign resume link")
	}
	return &ResumeLink{Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveResumeToken validates a signed token and returns the stored path.
func (s *StudentService) ResolveResumeToken(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid or expired resume link")
	}
	return relPath, nil
}
