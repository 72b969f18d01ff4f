package service

import (
	"context"
	"database/sql"
	"encoding/json"
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

type mockCompanyRepo struct {
	companies []models.Company
	byID      *models.Company
	byIDErr   error
	createErr error
	updateErr error
	deleteErr error
	created   *models.Company
	updated   *models.Company
	deleted   []string
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	if m.createErr != nil {
		return m.createErr
	}
	company.ID = "c1"
	m.created = company
	return nil
}

func (m *mockCompanyRepo) FindByID(ctx context.Context, id string) (*models.Company, error) {
	if m.byIDErr != nil {
		return nil, m.byIDErr
	}
	return m.byID, nil
}

func (m *mockCompanyRepo) List(ctx context.Context) ([]models.Company, error) {
	return m.companies, nil
}

func (m *mockCompanyRepo) Update(ctx context.Context, company *models.Company) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = company
	return nil
}

func (m *mockCompanyRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockListingCache struct {
	store   map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newMockListingCache() *mockListingCache {
	return &mockListingCache{store: make(map[string][]byte)}
}

func (m *mockListingCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	m.gets++
	raw, ok := m.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (m *mockListingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.store[key] = raw
	return nil
}

func (m *mockListingCache) Delete(ctx context.Context, keys ...string) error {
	m.deletes++
	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

func validCompanyRequest() CompanyRequest {
	return CompanyRequest{
		Name:        "Acme",
		Role:        "SDE",
		Location:    "Bengaluru",
		CTC:         12.5,
		Description: "Backend roles",
		MinCGPA:     "7.0",
		Branches:    "CSE, ECE",
		Skills:      []interface{}{"go", "sql"},
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
	}
}

func TestCompanyCreateCoercesCriteria(t *testing.T) {
	repo := &mockCompanyRepo{}
	svc := NewCompanyService(repo, nil, 0, nil, validator.New(), zap.NewNop())

	company, err := svc.Create(context.Background(), validCompanyRequest())
	require.NoError(t, err)
	assert.InDelta(t, 7.0, company.MinCGPA, 1e-9)
	assert.Equal(t, models.StringList{"CSE", "ECE"}, company.Branches)
	assert.Equal(t, models.StringList{"go", "sql"}, company.Skills)
}

func TestCompanyCreateDuplicateName(t *testing.T) {
	repo := &mockCompanyRepo{createErr: repository.ErrDuplicateKey}
	svc := NewCompanyService(repo, nil, 0, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validCompanyRequest())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, "company name already exists", appErr.Message)
}

func TestCompanyCreateMissingFields(t *testing.T) {
	svc := NewCompanyService(&mockCompanyRepo{}, nil, 0, nil, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CompanyRequest{Name: "Acme"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCompanyListCachesResult(t *testing.T) {
	repo := &mockCompanyRepo{companies: []models.Company{{ID: "c1", Name: "Acme"}}}
	cache := newMockListingCache()
	svc := NewCompanyService(repo, cache, time.Minute, nil, validator.New(), zap.NewNop())

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, cache.sets)

	repo.companies = nil
	second, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Acme", second[0].Name)
}

func TestCompanyMutationsInvalidateCache(t *testing.T) {
	repo := &mockCompanyRepo{byID: &models.Company{ID: "c1", Name: "Acme"}}
	cache := newMockListingCache()
	cache.store[companyListCacheKey] = []byte(`[]`)
	svc := NewCompanyService(repo, cache, time.Minute, nil, validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "c1", validCompanyRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)
	_, cached := cache.store[companyListCacheKey]
	assert.False(t, cached)
}

func TestCompanyGetNotFound(t *testing.T) {
	svc := NewCompanyService(&mockCompanyRepo{byIDErr: sql.ErrNoRows}, nil, 0, nil, validator.New(), zap.NewNop())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCompanyDeleteNotFound(t *testing.T) {
	svc := NewCompanyService(&mockCompanyRepo{deleteErr: sql.ErrNoRows}, nil, 0, nil, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCompanyDelete(t *testing.T) {
	repo := &mockCompanyRepo{}
	svc := NewCompanyService(repo, nil, 0, nil, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	assert.Equal(t, []string{"c1"}, repo.deleted)
}
