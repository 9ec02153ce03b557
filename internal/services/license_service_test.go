// internal/services/license_service_test.go
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

type LicenseServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	mock    *mockLedger
	service *LicenseService
	signer  ledger.SigningContext
	userID  uuid.UUID
}

func (suite *LicenseServiceTestSuite) SetupTest() {
	suite.db = newTestDB(suite.T())
	suite.mock = newMockLedger()
	suite.service = NewLicenseService(suite.db, suite.mock, newTestConfig())
	suite.signer = ledger.SigningContext{WalletAddress: "0xAbCd567890abcdef1234567890abcdef12345678"}
	suite.userID = uuid.New()
}

func (suite *LicenseServiceTestSuite) TestMintRecordsAmountAndTokens() {
	result, err := suite.service.Mint(context.Background(), suite.signer, suite.userID, &MintLicenseRequest{
		IPID:    "0x1234567890abcdef1234567890abcdef12345678",
		TermsID: "42",
		Amount:  3,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(3), result.Amount)
	assert.Equal(suite.T(), []string{"1001", "1002", "1003"}, result.TokenIDs)
	assert.Equal(suite.T(), int64(3), suite.mock.lastMint.Amount)

	// Receiver defaults to the signer's wallet.
	assert.Equal(suite.T(), suite.signer.WalletAddress, suite.mock.lastMint.Receiver)

	var mint models.LicenseMint
	suite.Require().NoError(suite.db.First(&mint, "tx_hash = ?", result.TxHash).Error)
	assert.Equal(suite.T(), int64(3), mint.Amount)
	assert.Equal(suite.T(), models.StringList{"1001", "1002", "1003"}, mint.TokenIDs)

	// The fee the ledger reported charging is recorded with the mint.
	assert.Equal(suite.T(), "30000000000000000", mint.FeePaid)
	assert.Equal(suite.T(), "30000000000000000", result.FeePaid)
}

func (suite *LicenseServiceTestSuite) TestMintRejectsZeroAmountLocally() {
	_, err := suite.service.Mint(context.Background(), suite.signer, suite.userID, &MintLicenseRequest{
		IPID:    "0x1234567890abcdef1234567890abcdef12345678",
		TermsID: "42",
		Amount:  0,
	})

	suite.Require().Error(err)
	var amountErr *apperrors.InvalidAmountError
	assert.ErrorAs(suite.T(), err, &amountErr)
	assert.Equal(suite.T(), 0, suite.mock.totalCalls())
}

func (suite *LicenseServiceTestSuite) TestMintRejectsNegativeAmountLocally() {
	_, err := suite.service.Mint(context.Background(), suite.signer, suite.userID, &MintLicenseRequest{
		IPID:    "0x1234567890abcdef1234567890abcdef12345678",
		TermsID: "42",
		Amount:  -1,
	})

	suite.Require().Error(err)
	var amountErr *apperrors.InvalidAmountError
	assert.ErrorAs(suite.T(), err, &amountErr)
	assert.Equal(suite.T(), 0, suite.mock.totalCalls())
}

func (suite *LicenseServiceTestSuite) TestMintRequiresWallet() {
	_, err := suite.service.Mint(context.Background(), ledger.SigningContext{}, suite.userID, &MintLicenseRequest{
		IPID:    "0x1234567890abcdef1234567890abcdef12345678",
		TermsID: "42",
		Amount:  1,
	})

	suite.Require().Error(err)
	var walletErr *apperrors.WalletNotConnectedError
	assert.ErrorAs(suite.T(), err, &walletErr)
	assert.Equal(suite.T(), 0, suite.mock.totalCalls())
}

func (suite *LicenseServiceTestSuite) TestMintExplicitReceiver() {
	receiver := "0x9999567890abcdef1234567890abcdef12349999"
	result, err := suite.service.Mint(context.Background(), suite.signer, suite.userID, &MintLicenseRequest{
		IPID:     "0x1234567890abcdef1234567890abcdef12345678",
		TermsID:  "42",
		Amount:   1,
		Receiver: receiver,
	})

	suite.Require().NoError(err)
	assert.Equal(suite.T(), receiver, result.Receiver)
	assert.Equal(suite.T(), receiver, suite.mock.lastMint.Receiver)
}

func (suite *LicenseServiceTestSuite) TestTotalCost() {
	assert.InDelta(suite.T(), 0.03, suite.service.TotalCost(3, 0.01), 1e-9)
	assert.InDelta(suite.T(), 0, suite.service.TotalCost(0, 0.01), 1e-9)
	assert.InDelta(suite.T(), 0, suite.service.TotalCost(-2, 0.01), 1e-9)
}

func (suite *LicenseServiceTestSuite) TestLicensesByReceiver() {
	receiver := "0x9999567890abcdef1234567890abcdef12349999"
	for i := 0; i < 3; i++ {
		_, err := suite.service.Mint(context.Background(), suite.signer, suite.userID, &MintLicenseRequest{
			IPID:     "0x1234567890abcdef1234567890abcdef12345678",
			TermsID:  "42",
			Amount:   1,
			Receiver: receiver,
		})
		suite.Require().NoError(err)
	}

	mints, total, err := suite.service.LicensesByReceiver(receiver, testPagination())
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(3), total)
	assert.Len(suite.T(), mints, 3)
}

func TestLicenseServiceSuite(t *testing.T) {
	suite.Run(t, new(LicenseServiceTestSuite))
}
