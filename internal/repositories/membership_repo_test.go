package repositories

import (
	"context"
	"testing"

	"patronhub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MembershipRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      MembershipRepository
	userID    uuid.UUID
	creatorID uuid.UUID
	context   context.Context
}

func (suite *MembershipRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewMembershipRepo(mock)
	suite.userID = uuid.New()
	suite.creatorID = uuid.New()
	suite.context = context.Background()
}

func (suite *MembershipRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestMembershipRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MembershipRepoTestSuite))
}

func (suite *MembershipRepoTestSuite) TestReplace_DeletesThenInserts() {
	entry := &models.Membership{
		UserID:         suite.userID,
		CreatorID:      suite.creatorID,
		SubscriptionID: uuid.New(),
		TierName:       "Gold",
		Active:         true,
	}

	suite.mock.ExpectExec(`DELETE FROM memberships WHERE user_id = \$1 AND creator_id = \$2`).
		WithArgs(entry.UserID, entry.CreatorID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs(entry.UserID, entry.CreatorID, entry.SubscriptionID, entry.TierName, entry.Active).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Replace(suite.context, entry)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *MembershipRepoTestSuite) TestReplace_FirstEntryForCreator() {
	entry := &models.Membership{
		UserID:         suite.userID,
		CreatorID:      suite.creatorID,
		SubscriptionID: uuid.New(),
		TierName:       "Bronze",
		Active:         true,
	}

	// Nothing to delete; the insert still happens.
	suite.mock.ExpectExec(`DELETE FROM memberships WHERE user_id = \$1 AND creator_id = \$2`).
		WithArgs(entry.UserID, entry.CreatorID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs(entry.UserID, entry.CreatorID, entry.SubscriptionID, entry.TierName, entry.Active).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Replace(suite.context, entry)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestRemove_Idempotent() {
	suite.mock.ExpectExec(`DELETE FROM memberships WHERE user_id = \$1 AND creator_id = \$2`).
		WithArgs(suite.userID, suite.creatorID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.repo.Remove(suite.context, suite.userID, suite.creatorID)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestListActiveForCreator_FiltersInactive() {
	subID := uuid.New()

	suite.mock.ExpectQuery(`FROM memberships\s+WHERE user_id = \$1 AND creator_id = \$2 AND active = TRUE`).
		WithArgs(suite.userID, suite.creatorID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "creator_id", "subscription_id", "tier_name", "active"}).
			AddRow(suite.userID, suite.creatorID, subID, "Gold", true))

	entries, err := suite.repo.ListActiveForCreator(suite.context, suite.userID, suite.creatorID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), entries, 1)
	assert.Equal(suite.T(), "Gold", entries[0].TierName)
	assert.True(suite.T(), entries[0].Active)
}

func (suite *MembershipRepoTestSuite) TestListForUser_Empty() {
	suite.mock.ExpectQuery(`FROM memberships\s+WHERE user_id = \$1`).
		WithArgs(suite.userID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "creator_id", "subscription_id", "tier_name", "active"}))

	entries, err := suite.repo.ListForUser(suite.context, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), entries)
}
