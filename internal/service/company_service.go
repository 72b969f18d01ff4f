package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/placement-cell/placement-api/internal/models"
	"github.com/placement-cell/placement-api/internal/repository"
	appErrors "github.com/placement-cell/placement-api/pkg/errors"
)

type companyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByID(ctx context.Context, id string) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id string) error
}

// ListingCache is the read-through cache the company browse path uses.
// A nil value disables caching.
type ListingCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const companyListCacheKey = "companies:all"

// CompanyRequest carries a listing create/update payload.
type CompanyRequest struct {
	Name        string      `json:"name" validate:"required"`
	Role        string      `json:"role" validate:"required"`
	Location    string      `json:"location" validate:"required"`
	CTC         float64     `json:"ctc" validate:"required,gt=0"`
	Description string      `json:"description" validate:"required"`
	MinCGPA     interface{} `json:"min_cgpa" validate:"required"`
	Branches    interface{} `json:"branches"`
	Skills      interface{} `json:"skills"`
	Deadline    time.Time   `json:"deadline" validate:"required"`
}

// CompanyService manages company listings with a read-through cache on the
// browse path.
type CompanyService struct {
	repo      companyRepository
	cache     ListingCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService constructs CompanyService. A nil cache disables caching.
func NewCompanyService(repo companyRepository, cache ListingCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// List returns all company listings.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	if s.cache != nil {
		var cached []models.Company
		hit, err := s.cache.Get(ctx, companyListCacheKey, &cached)
		if err != nil {
			s.logger.Warn("company cache read failed", zap.Error(err))
		} else {
			s.metrics.RecordCacheLookup(hit)
			if hit {
				return cached, nil
			}
		}
	}

	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, companyListCacheKey, companies, s.cacheTTL); err != nil {
			s.logger.Warn("company cache write failed", zap.Error(err))
		}
	}
	return companies, nil
}

// Get returns a single company listing.
func (s *CompanyService) Get(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load company")
	}
	return company, nil
}

// Create registers a new company listing.
func (s *CompanyService) Create(ctx context.Context, req CompanyRequest) (*models.Company, error) {
	company, err := s.buildCompany(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "company name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create company")
	}
	s.invalidate(ctx)
	return company, nil
}

// Update replaces an existing listing's fields.
func (s *CompanyService) Update(ctx context.Context, id string, req CompanyRequest) (*models.Company, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	company, err := s.buildCompany(req)
	if err != nil {
		return nil, err
	}
	company.ID = existing.ID
	company.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, company); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "company name already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update company")
	}
	s.invalidate(ctx)
	return company, nil
}

// Delete removes a listing; dependent applications cascade at the schema level.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete company")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CompanyService) buildCompany(req CompanyRequest) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company payload")
	}
	minCGPA, err := CoerceCGPA(req.MinCGPA)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min_cgpa must be a number")
	}
	return &models.Company{
		Name:        req.Name,
		Role:        req.Role,
		Location:    req.Location,
		CTC:         req.CTC,
		Description: req.Description,
		MinCGPA:     minCGPA,
		Branches:    CoerceSkills(req.Branches),
		Skills:      CoerceSkills(req.Skills),
		Deadline:    req.Deadline,
	}, nil
}

func (s *CompanyService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, companyListCacheKey); err != nil {
		s.logger.Warn("company cache invalidation failed", zap.Error(err))
	}
}
