// internal/services/royalty_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/models"
)

type RoyaltyServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mock    *mockLedger
	service *RoyaltyService
	signer  ledger.SigningContext
	userID  uuid.UUID
}

func (suite *RoyaltyServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.mock = newMockLedger()
	suite.service = NewRoyaltyService(suite.db, suite.mock, newTestConfig())
	suite.signer = ledger.SigningContext{WalletAddress: "0xAbCd567890abcdef1234567890abcdef12345678"}
	suite.userID = uuid.New()
}

func (suite *RoyaltyServiceTestSuite) TestPayDerivativeToParent() {
	result, err := suite.service.Pay(context.Background(), suite.signer, suite.userID, &PayRoyaltyRequest{
		PayerIPID:    "0xdddd567890abcdef1234567890abcdef1234dddd",
		ReceiverIPID: "0x1234567890abcdef1234567890abcdef12345678",
		Amount:       "1000000000000000000",
	})

	suite.Require().NoError(err)
	assert.NotEmpty(suite.T(), result.TxHash)
	assert.Equal(suite.T(), "0xdddd567890abcdef1234567890abcdef1234dddd", suite.mock.lastPay.PayerAssetID)
	assert.Equal(suite.T(), "1000000000000000000", suite.mock.lastPay.Amount)

	var flow models.RoyaltyFlow
	suite.Require().NoError(suite.db.First(&flow, "tx_hash = ?", result.TxHash).Error)
	assert.Equal(suite.T(), models.RoyaltyDirectionDerivativeToParent, flow.Direction)
}

func (suite *RoyaltyServiceTestSuite) TestPayDirectSupportUsesZeroPayer() {
	_, err := suite.service.Pay(context.Background(), suite.signer, suite.userID, &PayRoyaltyRequest{
		ReceiverIPID: "0x1234567890abcdef1234567890abcdef12345678",
		Amount:       "500000000000000000",
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), zeroAddress, suite.mock.lastPay.PayerAssetID)

	var flow models.RoyaltyFlow
	suite.Require().NoError(suite.db.First(&flow, "payer_ip_id = ?", zeroAddress).Error)
	assert.Equal(suite.T(), models.RoyaltyDirectionDirectSupport, flow.Direction)
}

func (suite *RoyaltyServiceTestSuite) TestPayRejectsZeroAmountBeforeNetwork() {
	for _, amount := range []string{"0", "-5", "", "abc", "1.5"} {
		_, err := suite.service.Pay(context.Background(), suite.signer, suite.userID, &PayRoyaltyRequest{
			ReceiverIPID: "0x1234567890abcdef1234567890abcdef12345678",
			Amount:       amount,
		})

		suite.Require().Error(err, "amount %q must be rejected", amount)
		var amountErr *apperrors.InvalidAmountError
		assert.ErrorAs(suite.T(), err, &amountErr)
	}
	assert.Equal(suite.T(), 0, suite.mock.totalCalls())
}

func (suite *RoyaltyServiceTestSuite) TestClaimableUsesAssetAsClaimer() {
	ipID := "0x1234567890abcdef1234567890abcdef12345678"

	claimable, err := suite.service.Claimable(context.Background(), ipID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "2500000000000000000", claimable)

	// The asset claims its own revenue: claimer is the asset id, not a wallet.
	assert.Equal(suite.T(), ipID, suite.mock.lastClaimQ.AncestorAssetID)
	assert.Equal(suite.T(), ipID, suite.mock.lastClaimQ.Claimer)
}

func (suite *RoyaltyServiceTestSuite) TestClaimAllUsesAssetAsClaimer() {
	ipID := "0x1234567890abcdef1234567890abcdef12345678"

	result, err := suite.service.ClaimAll(context.Background(), suite.signer, ipID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), result.TxHashes, 1)
	assert.Equal(suite.T(), ipID, suite.mock.lastClaim.Claimer)
	assert.Equal(suite.T(), ipID, suite.mock.lastClaim.AncestorAssetID)
	assert.Equal(suite.T(), suite.signer.WalletAddress, suite.mock.lastSigner.WalletAddress)
}

func (suite *RoyaltyServiceTestSuite) TestClaimAllRequiresWallet() {
	_, err := suite.service.ClaimAll(context.Background(), ledger.SigningContext{}, "0x1234567890abcdef1234567890abcdef12345678")

	suite.Require().Error(err)
	var walletErr *apperrors.WalletNotConnectedError
	assert.ErrorAs(suite.T(), err, &walletErr)
	assert.Equal(suite.T(), 0, suite.mock.totalCalls())
}

func (suite *RoyaltyServiceTestSuite) TestFlowsByAsset() {
	ipID := "0x1234567890abcdef1234567890abcdef12345678"

	_, err := suite.service.Pay(context.Background(), suite.signer, suite.userID, &PayRoyaltyRequest{
		PayerIPID:    "0xdddd567890abcdef1234567890abcdef1234dddd",
		ReceiverIPID: ipID,
		Amount:       "1000000000000000000",
	})
	suite.Require().NoError(err)

	flows, total, err := suite.service.FlowsByAsset(ipID, testPagination())
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Len(suite.T(), flows, 1)
}

func TestRoyaltyServiceSuite(t *testing.T) {
	suite.Run(t, new(RoyaltyServiceTestSuite))
}
