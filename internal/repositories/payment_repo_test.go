package repositories

import (
	"context"
	"errors"
	"testing"

	"patronhub/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PaymentRepoTestSuite struct {
	suite.Suite
	mock           pgxmock.PgxPoolIface
	repo           PaymentRepository
	userID         uuid.UUID
	subscriptionID uuid.UUID
	campaignID     uuid.UUID
	context        context.Context
}

func (suite *PaymentRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewPaymentRepo(mock)
	suite.userID = uuid.New()
	suite.subscriptionID = uuid.New()
	suite.campaignID = uuid.New()
	suite.context = context.Background()
}

func (suite *PaymentRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestPaymentRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentRepoTestSuite))
}

func (suite *PaymentRepoTestSuite) TestRecord_Success() {
	payment := &models.Payment{
		ID:             uuid.New(),
		UserID:         suite.userID,
		SubscriptionID: suite.subscriptionID,
		Amount:         1500,
		Status:         models.PaymentReleased,
	}

	suite.mock.ExpectExec(`INSERT INTO payments`).
		WithArgs(payment.ID, payment.UserID, payment.SubscriptionID, payment.CampaignID, payment.Amount, payment.Status).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Record(suite.context, payment)
	assert.NoError(suite.T(), err)
}

func (suite *PaymentRepoTestSuite) TestTransitionBySubscription_OnlyMovesHeld() {
	suite.mock.ExpectExec(`UPDATE payments SET status = \$1, updated_at = NOW\(\) WHERE subscription_id = \$2 AND status = \$3`).
		WithArgs(models.PaymentRefunded, suite.subscriptionID, models.PaymentHeld).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	moved, err := suite.repo.TransitionBySubscription(suite.context, suite.subscriptionID, models.PaymentHeld, models.PaymentRefunded)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), moved)
}

func (suite *PaymentRepoTestSuite) TestTransitionBySubscription_NothingHeld() {
	suite.mock.ExpectExec(`UPDATE payments SET status = \$1, updated_at = NOW\(\) WHERE subscription_id = \$2 AND status = \$3`).
		WithArgs(models.PaymentRefunded, suite.subscriptionID, models.PaymentHeld).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	moved, err := suite.repo.TransitionBySubscription(suite.context, suite.subscriptionID, models.PaymentHeld, models.PaymentRefunded)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), moved)
}

func (suite *PaymentRepoTestSuite) TestTransitionByCampaign_BulkRelease() {
	suite.mock.ExpectExec(`UPDATE payments SET status = \$1, updated_at = NOW\(\) WHERE campaign_id = \$2 AND status = \$3`).
		WithArgs(models.PaymentReleased, suite.campaignID, models.PaymentHeld).
		WillReturnResult(pgxmock.NewResult("UPDATE", 7))

	moved, err := suite.repo.TransitionByCampaign(suite.context, suite.campaignID, models.PaymentHeld, models.PaymentReleased)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(7), moved)
}

func (suite *PaymentRepoTestSuite) TestTransitionByCampaign_DatabaseError() {
	suite.mock.ExpectExec(`UPDATE payments SET status = \$1, updated_at = NOW\(\) WHERE campaign_id = \$2 AND status = \$3`).
		WithArgs(models.PaymentRefunded, suite.campaignID, models.PaymentHeld).
		WillReturnError(errors.New("database connection failed"))

	moved, err := suite.repo.TransitionByCampaign(suite.context, suite.campaignID, models.PaymentHeld, models.PaymentRefunded)
	assert.Error(suite.T(), err)
	assert.Equal(suite.T(), int64(0), moved)
}

func (suite *PaymentRepoTestSuite) TestListBySubscription_ScopedToOwner() {
	suite.mock.ExpectQuery(`FROM payments\s+WHERE user_id = \$1 AND subscription_id = \$2`).
		WithArgs(suite.userID, suite.subscriptionID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "subscription_id", "campaign_id", "amount", "status", "created_at", "updated_at"}))

	payments, err := suite.repo.ListBySubscription(suite.context, suite.userID, suite.subscriptionID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), payments)
}
