package services

import (
	"context"
	"testing"
	"time"

	"patronhub/internal/caching"
	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetCreatorTiers(ctx context.Context, creatorID uuid.UUID) ([]*models.Tier, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tier), args.Error(1)
}

func (m *MockCacheService) SetCreatorTiers(ctx context.Context, creatorID uuid.UUID, tiers []*models.Tier, ttl time.Duration) error {
	args := m.Called(ctx, creatorID, tiers, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCreatorTiers(ctx context.Context, creatorID uuid.UUID) error {
	args := m.Called(ctx, creatorID)
	return args.Error(0)
}

func (m *MockCacheService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	args := m.Called(ctx, campaignID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Campaign), args.Error(1)
}

func (m *MockCacheService) SetCampaign(ctx context.Context, campaign *models.Campaign, ttl time.Duration) error {
	args := m.Called(ctx, campaign, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteCampaign(ctx context.Context, campaignID uuid.UUID) error {
	args := m.Called(ctx, campaignID)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	args := m.Called(ctx, key, window)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

const (
	ownedCampaignQuery  = `FROM campaigns WHERE id = \$1 AND creator_id = \$2 FOR UPDATE`
	setCampaignStatus   = `UPDATE campaigns SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = 'active'`
	settlePaymentsQuery = `UPDATE payments SET status = \$1, updated_at = NOW\(\) WHERE campaign_id = \$2 AND status = \$3`
	refundSubsQuery     = `UPDATE subscriptions\s+SET status = 'refunded', updated_at = NOW\(\)\s+WHERE campaign_id = \$1 AND type = 'crowdfunding' AND status = 'active'`
)

type CampaignServiceTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	mockCache  *MockCacheService
	service    CampaignService
	creatorID  uuid.UUID
	campaignID uuid.UUID
	context    context.Context
}

func (suite *CampaignServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.mockCache = new(MockCacheService)
	suite.service = NewCampaignService(mock, suite.mockCache)
	suite.creatorID = uuid.New()
	suite.campaignID = uuid.New()
	suite.context = context.Background()
}

func (suite *CampaignServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestCampaignServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CampaignServiceTestSuite))
}

func (suite *CampaignServiceTestSuite) expectOwnedCampaign(current, target int64, status string) {
	now := time.Now()
	suite.mock.ExpectQuery(ownedCampaignQuery).
		WithArgs(suite.campaignID, suite.creatorID).
		WillReturnRows(pgxmock.NewRows(campaignRows).
			AddRow(suite.campaignID, suite.creatorID, "New Album", "studio time", target, current,
				status, now.Add(-20*24*time.Hour), now, now, now))
}

func (suite *CampaignServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.context, suite.creatorID, CreateCampaignParams{
		Title:        "",
		TargetAmount: 1000,
	})
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))

	_, err = suite.service.Create(suite.context, suite.creatorID, CreateCampaignParams{
		Title:        "New Album",
		TargetAmount: 0,
	})
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsValidation(err))
}

func (suite *CampaignServiceTestSuite) TestGet_CacheHit() {
	cached := &models.Campaign{ID: suite.campaignID, Title: "New Album"}
	suite.mockCache.On("GetCampaign", suite.context, suite.campaignID).Return(cached, nil)

	campaign, err := suite.service.Get(suite.context, suite.campaignID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), cached, campaign)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *CampaignServiceTestSuite) TestGet_CacheMissFallsThrough() {
	now := time.Now()
	suite.mockCache.On("GetCampaign", suite.context, suite.campaignID).Return(nil, caching.ErrCacheMiss)
	suite.mockCache.On("SetCampaign", suite.context, mock.Anything, campaignCacheTTL).Return(nil)

	suite.mock.ExpectQuery(`FROM campaigns WHERE id = \$1`).
		WithArgs(suite.campaignID).
		WillReturnRows(pgxmock.NewRows(campaignRows).
			AddRow(suite.campaignID, suite.creatorID, "New Album", "studio time", int64(100000), int64(0),
				models.CampaignActive, now, now, now, now))

	campaign, err := suite.service.Get(suite.context, suite.campaignID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New Album", campaign.Title)
	suite.mockCache.AssertExpectations(suite.T())
}

func (suite *CampaignServiceTestSuite) TestFinish_TargetReachedReleasesEscrow() {
	suite.mockCache.On("DeleteCampaign", suite.context, suite.campaignID).Return(nil)

	suite.mock.ExpectBegin()
	suite.expectOwnedCampaign(120000, 100000, models.CampaignActive)
	suite.mock.ExpectExec(setCampaignStatus).
		WithArgs(models.CampaignSuccessful, suite.campaignID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(settlePaymentsQuery).
		WithArgs(models.PaymentReleased, suite.campaignID, models.PaymentHeld).
		WillReturnResult(pgxmock.NewResult("UPDATE", 9))
	suite.mock.ExpectCommit()

	result, err := suite.service.Finish(suite.context, suite.creatorID, suite.campaignID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CampaignSuccessful, result.Status)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CampaignServiceTestSuite) TestFinish_ExactTargetCountsAsSuccess() {
	suite.mockCache.On("DeleteCampaign", suite.context, suite.campaignID).Return(nil)

	suite.mock.ExpectBegin()
	suite.expectOwnedCampaign(100000, 100000, models.CampaignActive)
	suite.mock.ExpectExec(setCampaignStatus).
		WithArgs(models.CampaignSuccessful, suite.campaignID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(settlePaymentsQuery).
		WithArgs(models.PaymentReleased, suite.campaignID, models.PaymentHeld).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	suite.mock.ExpectCommit()

	result, err := suite.service.Finish(suite.context, suite.creatorID, suite.campaignID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CampaignSuccessful, result.Status)
}

func (suite *CampaignServiceTestSuite) TestFinish_ShortfallRefundsEverything() {
	suite.mockCache.On("DeleteCampaign", suite.context, suite.campaignID).Return(nil)

	suite.mock.ExpectBegin()
	suite.expectOwnedCampaign(99999, 100000, models.CampaignActive)
	suite.mock.ExpectExec(setCampaignStatus).
		WithArgs(models.CampaignFailed, suite.campaignID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(settlePaymentsQuery).
		WithArgs(models.PaymentRefunded, suite.campaignID, models.PaymentHeld).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))
	suite.mock.ExpectExec(refundSubsQuery).
		WithArgs(suite.campaignID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 4))
	suite.mock.ExpectCommit()

	result, err := suite.service.Finish(suite.context, suite.creatorID, suite.campaignID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.CampaignFailed, result.Status)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *CampaignServiceTestSuite) TestFinish_AlreadyFinished() {
	suite.mock.ExpectBegin()
	suite.expectOwnedCampaign(120000, 100000, models.CampaignSuccessful)
	suite.mock.ExpectRollback()

	_, err := suite.service.Finish(suite.context, suite.creatorID, suite.campaignID)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsInvalidState(err))
}

func (suite *CampaignServiceTestSuite) TestFinish_ForeignCampaignReadsAsNotFound() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(ownedCampaignQuery).
		WithArgs(suite.campaignID, suite.creatorID).
		WillReturnRows(pgxmock.NewRows(campaignRows))
	suite.mock.ExpectRollback()

	_, err := suite.service.Finish(suite.context, suite.creatorID, suite.campaignID)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}
