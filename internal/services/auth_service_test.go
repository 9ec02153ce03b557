// internal/services/auth_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (suite *AuthServiceTestSuite) SetupTest() {
	cfg := newTestConfig()
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	suite.db = newTestDB(suite.T())
	suite.service = NewAuthService(suite.db, cfg)
}

func (suite *AuthServiceTestSuite) register() *AuthResponse {
	resp, err := suite.service.Register(&RegisterRequest{
		Username: "dana_researcher",
		Email:    "dana@example.com",
		Password: "StrongPass123!",
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthServiceTestSuite) TestRegisterAndLogin() {
	registered := suite.register()
	assert.NotEmpty(suite.T(), registered.AccessToken)
	assert.Equal(suite.T(), "Bearer", registered.TokenType)

	loggedIn, err := suite.service.Login(&LoginRequest{
		Email:    "dana@example.com",
		Password: "StrongPass123!",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), registered.User.ID, loggedIn.User.ID)
}

func (suite *AuthServiceTestSuite) TestLoginWrongPassword() {
	suite.register()

	_, err := suite.service.Login(&LoginRequest{
		Email:    "dana@example.com",
		Password: "WrongPass123!",
	})
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestDuplicateEmailRejected() {
	suite.register()

	_, err := suite.service.Register(&RegisterRequest{
		Username: "other_user",
		Email:    "dana@example.com",
		Password: "StrongPass123!",
	})
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestLinkWallet() {
	registered := suite.register()
	wallet := "0xAbCd567890abcdef1234567890abcdef12345678"

	user, err := suite.service.LinkWallet(registered.User.ID, &LinkWalletRequest{WalletAddress: wallet})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), wallet, user.WalletAddress)

	// Tokens minted after linking carry the wallet claim.
	refreshed, err := suite.service.RefreshToken(registered.RefreshToken)
	suite.Require().NoError(err)
	claims, err := utils.ValidateJWT(refreshed.AccessToken)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), wallet, claims.WalletAddress)
}

func (suite *AuthServiceTestSuite) TestLinkWalletAlreadyTaken() {
	first := suite.register()
	wallet := "0xAbCd567890abcdef1234567890abcdef12345678"
	_, err := suite.service.LinkWallet(first.User.ID, &LinkWalletRequest{WalletAddress: wallet})
	suite.Require().NoError(err)

	second, err := suite.service.Register(&RegisterRequest{
		Username: "remix_lab",
		Email:    "remix@example.com",
		Password: "StrongPass123!",
	})
	suite.Require().NoError(err)

	_, err = suite.service.LinkWallet(second.User.ID, &LinkWalletRequest{WalletAddress: wallet})
	assert.Error(suite.T(), err)
}

func (suite *AuthServiceTestSuite) TestLinkWalletRejectsMalformedAddress() {
	registered := suite.register()

	_, err := suite.service.LinkWallet(registered.User.ID, &LinkWalletRequest{WalletAddress: "not-an-address"})
	assert.Error(suite.T(), err)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
