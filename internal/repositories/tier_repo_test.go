package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"patronhub/internal/common"
	"patronhub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TierRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      TierRepository
	creatorID uuid.UUID
	context   context.Context
}

func (suite *TierRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewTierRepo(mock)
	suite.creatorID = uuid.New()
	suite.context = context.Background()
}

func (suite *TierRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestTierRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TierRepoTestSuite))
}

func (suite *TierRepoTestSuite) TestCreate_Success() {
	tier := &models.Tier{
		ID:        uuid.New(),
		CreatorID: suite.creatorID,
		Name:      "Gold",
		Price:     1500,
		Perks:     []string{"early access"},
	}

	suite.mock.ExpectExec(`INSERT INTO tiers`).
		WithArgs(tier.ID, tier.CreatorID, tier.Name, tier.Price, tier.Perks).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, tier)
	assert.NoError(suite.T(), err)
}

func (suite *TierRepoTestSuite) TestCreate_DuplicateNameForSameCreator() {
	tier := &models.Tier{
		ID:        uuid.New(),
		CreatorID: suite.creatorID,
		Name:      "Gold",
		Price:     1500,
		Perks:     []string{},
	}

	suite.mock.ExpectExec(`INSERT INTO tiers`).
		WithArgs(tier.ID, tier.CreatorID, tier.Name, tier.Price, tier.Perks).
		WillReturnResult(pgxmock.NewResult("INSERT", 0)) // ON CONFLICT DO NOTHING swallowed the insert

	err := suite.repo.Create(suite.context, tier)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsConflict(err))
}

func (suite *TierRepoTestSuite) TestCreate_DatabaseError() {
	tier := &models.Tier{
		ID:        uuid.New(),
		CreatorID: suite.creatorID,
		Name:      "Silver",
		Price:     500,
		Perks:     []string{},
	}

	suite.mock.ExpectExec(`INSERT INTO tiers`).
		WithArgs(tier.ID, tier.CreatorID, tier.Name, tier.Price, tier.Perks).
		WillReturnError(errors.New("database connection failed"))

	err := suite.repo.Create(suite.context, tier)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}

func (suite *TierRepoTestSuite) TestGetByName_Success() {
	tierID := uuid.New()
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT id, creator_id, name, price, perks, created_at, updated_at\s+FROM tiers`).
		WithArgs(suite.creatorID, "Gold").
		WillReturnRows(pgxmock.NewRows([]string{"id", "creator_id", "name", "price", "perks", "created_at", "updated_at"}).
			AddRow(tierID, suite.creatorID, "Gold", int64(1500), []string{"early access"}, now, now))

	tier, err := suite.repo.GetByName(suite.context, suite.creatorID, "Gold")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), tierID, tier.ID)
	assert.Equal(suite.T(), int64(1500), tier.Price)
}

func (suite *TierRepoTestSuite) TestGetByName_NotFound() {
	suite.mock.ExpectQuery(`SELECT id, creator_id, name, price, perks, created_at, updated_at\s+FROM tiers`).
		WithArgs(suite.creatorID, "Platinum").
		WillReturnRows(pgxmock.NewRows([]string{"id", "creator_id", "name", "price", "perks", "created_at", "updated_at"}))

	tier, err := suite.repo.GetByName(suite.context, suite.creatorID, "Platinum")
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
	assert.Nil(suite.T(), tier)
}

func (suite *TierRepoTestSuite) TestListByCreator_OrderedByPrice() {
	now := time.Now()

	suite.mock.ExpectQuery(`FROM tiers\s+WHERE creator_id = \$1\s+ORDER BY price ASC`).
		WithArgs(suite.creatorID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "creator_id", "name", "price", "perks", "created_at", "updated_at"}).
			AddRow(uuid.New(), suite.creatorID, "Bronze", int64(300), []string{}, now, now).
			AddRow(uuid.New(), suite.creatorID, "Gold", int64(1500), []string{}, now, now))

	tiers, err := suite.repo.ListByCreator(suite.context, suite.creatorID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), tiers, 2)
	assert.Equal(suite.T(), "Bronze", tiers[0].Name)
	assert.Equal(suite.T(), "Gold", tiers[1].Name)
}

func (suite *TierRepoTestSuite) TestGetByID_Success() {
	tierID := uuid.New()
	now := time.Now()

	suite.mock.ExpectQuery(`FROM tiers\s+WHERE creator_id = \$1 AND id = \$2`).
		WithArgs(suite.creatorID, tierID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "creator_id", "name", "price", "perks", "created_at", "updated_at"}).
			AddRow(tierID, suite.creatorID, "Gold", int64(1500), []string{"chat"}, now, now))

	tier, err := suite.repo.GetByID(suite.context, suite.creatorID, tierID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Gold", tier.Name)
	assert.Equal(suite.T(), tierID, tier.ID)
}

func (suite *TierRepoTestSuite) TestGetByID_ForeignCreatorNotFound() {
	tierID := uuid.New()

	suite.mock.ExpectQuery(`FROM tiers\s+WHERE creator_id = \$1 AND id = \$2`).
		WithArgs(suite.creatorID, tierID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "creator_id", "name", "price", "perks", "created_at", "updated_at"}))

	tier, err := suite.repo.GetByID(suite.context, suite.creatorID, tierID)
	assert.True(suite.T(), common.IsNotFound(err))
	assert.Nil(suite.T(), tier)
}

func (suite *TierRepoTestSuite) TestUpdate_ByID() {
	tier := &models.Tier{
		ID:        uuid.New(),
		CreatorID: suite.creatorID,
		Name:      "Gold",
		Price:     2000,
		Perks:     []string{},
	}

	suite.mock.ExpectExec(`UPDATE tiers\s+SET price = \$1, perks = \$2, updated_at = NOW\(\)\s+WHERE creator_id = \$3 AND id = \$4`).
		WithArgs(tier.Price, tier.Perks, tier.CreatorID, tier.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, tier)
	assert.NoError(suite.T(), err)
}

func (suite *TierRepoTestSuite) TestUpdate_NotFound() {
	tier := &models.Tier{
		ID:        uuid.New(),
		CreatorID: suite.creatorID,
		Name:      "Ghost",
		Price:     100,
		Perks:     []string{},
	}

	suite.mock.ExpectExec(`UPDATE tiers`).
		WithArgs(tier.Price, tier.Perks, tier.CreatorID, tier.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.Update(suite.context, tier)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}

func (suite *TierRepoTestSuite) TestDelete_ScopedToOwner() {
	tierID := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM tiers WHERE creator_id = \$1 AND id = \$2`).
		WithArgs(suite.creatorID, tierID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.repo.Delete(suite.context, suite.creatorID, tierID)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), common.IsNotFound(err))
}
