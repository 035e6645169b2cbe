package services

import (
	"context"
	"testing"

	"patronhub/internal/caching"
	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockTierRepository struct {
	mock.Mock
}

func (m *MockTierRepository) Create(ctx context.Context, tier *models.Tier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockTierRepository) GetByName(ctx context.Context, creatorID uuid.UUID, name string) (*models.Tier, error) {
	args := m.Called(ctx, creatorID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tier), args.Error(1)
}

func (m *MockTierRepository) GetByID(ctx context.Context, creatorID, id uuid.UUID) (*models.Tier, error) {
	args := m.Called(ctx, creatorID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tier), args.Error(1)
}

func (m *MockTierRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tier), args.Error(1)
}

func (m *MockTierRepository) Update(ctx context.Context, tier *models.Tier) error {
	args := m.Called(ctx, tier)
	return args.Error(0)
}

func (m *MockTierRepository) Delete(ctx context.Context, creatorID, id uuid.UUID) error {
	args := m.Called(ctx, creatorID, id)
	return args.Error(0)
}

type TierServiceTestSuite struct {
	suite.Suite
	mockRepo  *MockTierRepository
	mockCache *MockCacheService
	service   TierService
	creatorID uuid.UUID
	context   context.Context
}

func (suite *TierServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTierRepository)
	suite.mockCache = new(MockCacheService)
	suite.service = NewTierService(suite.mockRepo, suite.mockCache)
	suite.creatorID = uuid.New()
	suite.context = context.Background()
}

func TestTierServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TierServiceTestSuite))
}

func (suite *TierServiceTestSuite) TestCreate_Success() {
	suite.mockRepo.On("Create", suite.context, mock.Anything).Return(nil)
	suite.mockCache.On("DeleteCreatorTiers", suite.context, suite.creatorID).Return(nil)

	tier, err := suite.service.Create(suite.context, suite.creatorID, "Gold", 1500, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Gold", tier.Name)
	assert.NotNil(suite.T(), tier.Perks) // nil perks become an empty list
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *TierServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.context, suite.creatorID, "", 1500, nil)
	assert.True(suite.T(), common.IsValidation(err))

	_, err = suite.service.Create(suite.context, suite.creatorID, "Gold", 0, nil)
	assert.True(suite.T(), common.IsValidation(err))

	suite.mockRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *TierServiceTestSuite) TestCreate_DuplicateName() {
	suite.mockRepo.On("Create", suite.context, mock.Anything).
		Return(common.NewConflictError("tier %q already exists", "Gold"))

	_, err := suite.service.Create(suite.context, suite.creatorID, "Gold", 1500, nil)
	assert.True(suite.T(), common.IsConflict(err))
	suite.mockCache.AssertNotCalled(suite.T(), "DeleteCreatorTiers")
}

func (suite *TierServiceTestSuite) TestList_CacheHit() {
	cached := []*models.Tier{{Name: "Gold", Price: 1500}}
	suite.mockCache.On("GetCreatorTiers", suite.context, suite.creatorID).Return(cached, nil)

	tiers, err := suite.service.List(suite.context, suite.creatorID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, tiers)
	suite.mockRepo.AssertNotCalled(suite.T(), "ListByCreator")
}

func (suite *TierServiceTestSuite) TestList_CacheMiss() {
	fresh := []*models.Tier{{Name: "Bronze", Price: 300}, {Name: "Gold", Price: 1500}}
	suite.mockCache.On("GetCreatorTiers", suite.context, suite.creatorID).Return(nil, caching.ErrCacheMiss)
	suite.mockRepo.On("ListByCreator", suite.context, suite.creatorID).Return(fresh, nil)
	suite.mockCache.On("SetCreatorTiers", suite.context, suite.creatorID, fresh, tierCacheTTL).Return(nil)

	tiers, err := suite.service.List(suite.context, suite.creatorID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), fresh, tiers)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *TierServiceTestSuite) TestUpdate_PatchesAndInvalidates() {
	existing := &models.Tier{ID: uuid.New(), CreatorID: suite.creatorID, Name: "Gold", Price: 1500, Perks: []string{}}
	newPrice := int64(2000)

	suite.mockRepo.On("GetByID", suite.context, suite.creatorID, existing.ID).Return(existing, nil)
	suite.mockRepo.On("Update", suite.context, existing).Return(nil)
	suite.mockCache.On("DeleteCreatorTiers", suite.context, suite.creatorID).Return(nil)

	tier, err := suite.service.Update(suite.context, suite.creatorID, existing.ID, TierPatch{Price: &newPrice})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2000), tier.Price)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *TierServiceTestSuite) TestUpdate_NonPositivePrice() {
	existing := &models.Tier{ID: uuid.New(), CreatorID: suite.creatorID, Name: "Gold", Price: 1500}
	badPrice := int64(0)

	suite.mockRepo.On("GetByID", suite.context, suite.creatorID, existing.ID).Return(existing, nil)

	_, err := suite.service.Update(suite.context, suite.creatorID, existing.ID, TierPatch{Price: &badPrice})
	assert.True(suite.T(), common.IsValidation(err))
	suite.mockRepo.AssertNotCalled(suite.T(), "Update")
}

func (suite *TierServiceTestSuite) TestDelete_InvalidatesCache() {
	tierID := uuid.New()
	suite.mockRepo.On("Delete", suite.context, suite.creatorID, tierID).Return(nil)
	suite.mockCache.On("DeleteCreatorTiers", suite.context, suite.creatorID).Return(nil)

	err := suite.service.Delete(suite.context, suite.creatorID, tierID)
	assert.NoError(suite.T(), err)
	suite.mockCache.AssertExpectations(suite.T())
}
