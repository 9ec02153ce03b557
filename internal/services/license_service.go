// internal/services/license_service.go
package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/models"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type LicenseService struct {
	db     *gorm.DB
	ledger ledger.Client
	cfg    *config.Config
}

func NewLicenseService(db *gorm.DB, ledgerClient ledger.Client, cfg *config.Config) *LicenseService {
	return &LicenseService{
		db:     db,
		ledger: ledgerClient,
		cfg:    cfg,
	}
}

type MintLicenseRequest struct {
	IPID     string `json:"ip_id" validate:"required"`
	TermsID  string `json:"terms_id" validate:"required"`
	Amount   int64  `json:"amount"`
	Receiver string `json:"receiver,omitempty"`
}

type MintLicenseResult struct {
	TxHash      string   `json:"tx_hash"`
	TokenIDs    []string `json:"token_ids"`
	Amount      int64    `json:"amount"`
	Receiver    string   `json:"receiver"`
	FeePaid     string   `json:"fee_paid,omitempty"`
	ExplorerURL string   `json:"explorer_url"`
}

// Mint mints license tokens against a registered asset's terms. Amount is
// validated locally; an invalid count never produces a ledger call.
func (s *LicenseService) Mint(ctx context.Context, signer ledger.SigningContext, userID uuid.UUID, req *MintLicenseRequest) (*MintLicenseResult, error) {
	if req.Amount < 1 {
		return nil, &apperrors.InvalidAmountError{
			Amount: strconv.FormatInt(req.Amount, 10),
			Reason: "license amount must be a positive whole number",
		}
	}
	if req.IPID == "" {
		return nil, apperrors.NewValidationError("ip_id", "IP asset id is required")
	}
	if req.TermsID == "" {
		return nil, apperrors.NewValidationError("terms_id", "license terms id is required")
	}
	if !signer.Connected() {
		return nil, &apperrors.WalletNotConnectedError{}
	}

	receiver := req.Receiver
	if receiver == "" {
		receiver = signer.WalletAddress
	}
	if !utils.IsEthAddress(receiver) {
		return nil, apperrors.NewValidationError("receiver", "receiver must be a valid wallet address")
	}

	minted, err := s.ledger.MintLicense(ctx, signer, ledger.MintLicenseRequest{
		AssetID:  req.IPID,
		TermsID:  req.TermsID,
		Amount:   req.Amount,
		Receiver: receiver,
	})
	if err != nil {
		return nil, err
	}

	mint := models.LicenseMint{
		UserID:   userID,
		IPID:     req.IPID,
		TermsID:  req.TermsID,
		Amount:   req.Amount,
		Receiver: receiver,
		TxHash:   minted.TxHash,
		TokenIDs: models.StringList(minted.TokenIDs),
		FeePaid:  minted.FeePaid,
	}
	if err := s.db.Create(&mint).Error; err != nil {
		logPersistenceWarning("license_mint", minted.TxHash, err)
	}

	return &MintLicenseResult{
		TxHash:      minted.TxHash,
		TokenIDs:    minted.TokenIDs,
		Amount:      req.Amount,
		Receiver:    receiver,
		FeePaid:     minted.FeePaid,
		ExplorerURL: ledger.ExplorerTxURL(s.cfg.Explorer.BaseURL, minted.TxHash),
	}, nil
}

// TotalCost is the display-currency cost of minting amount tokens at a
// per-token fee. Pure arithmetic, no ledger interaction.
func (s *LicenseService) TotalCost(amount int64, unitFee float64) float64 {
	if amount < 1 {
		return 0
	}
	return float64(amount) * unitFee
}

// LicensesByReceiver lists recorded license mints delivered to a wallet.
func (s *LicenseService) LicensesByReceiver(receiver string, params utils.PaginationParams) ([]models.LicenseMint, int64, error) {
	var mints []models.LicenseMint
	var total int64

	query := s.db.Model(&models.LicenseMint{}).Where("receiver = ?", receiver)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&mints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return mints, total, nil
}

// LicensesByAsset lists recorded license mints against one IP asset.
func (s *LicenseService) LicensesByAsset(ipID string, params utils.PaginationParams) ([]models.LicenseMint, int64, error) {
	var mints []models.LicenseMint
	var total int64

	query := s.db.Model(&models.LicenseMint{}).Where("ip_id = ?", ipID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&mints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return mints, total, nil
}
