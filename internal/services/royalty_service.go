// internal/services/royalty_service.go
package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sensorgrid/ipflow-backend/internal/apperrors"
	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/models"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

// zeroAddress is the payer recorded when revenue arrives from outside the
// asset graph, i.e. a direct support payment from a wallet.
const zeroAddress = "0x0000000000000000000000000000000000000000"

type RoyaltyService struct {
	db     *gorm.DB
	ledger ledger.Client
	cfg    *config.Config
}

func NewRoyaltyService(db *gorm.DB, ledgerClient ledger.Client, cfg *config.Config) *RoyaltyService {
	return &RoyaltyService{
		db:     db,
		ledger: ledgerClient,
		cfg:    cfg,
	}
}

type PayRoyaltyRequest struct {
	PayerIPID    string `json:"payer_ip_id,omitempty"`
	ReceiverIPID string `json:"receiver_ip_id" validate:"required"`
	Amount       string `json:"amount" validate:"required"`
	// Direction overrides the recorded flow direction. When empty it is
	// derived from the presence of a payer asset.
	Direction models.RoyaltyDirection `json:"direction,omitempty"`
}

type PayRoyaltyResult struct {
	TxHash      string `json:"tx_hash"`
	ExplorerURL string `json:"explorer_url"`
}

// Pay sends royalty revenue to a receiver asset. The amount is a base-unit
// decimal string, validated locally before any network activity. An empty
// payer means direct support from the signer's wallet rather than a
// derivative-to-parent obligation.
func (s *RoyaltyService) Pay(ctx context.Context, signer ledger.SigningContext, userID uuid.UUID, req *PayRoyaltyRequest) (*PayRoyaltyResult, error) {
	if req.ReceiverIPID == "" {
		return nil, apperrors.NewValidationError("receiver_ip_id", "receiver IP asset id is required")
	}
	if err := validatePositiveAmount(req.Amount); err != nil {
		return nil, err
	}
	if !signer.Connected() {
		return nil, &apperrors.WalletNotConnectedError{}
	}

	payerID := req.PayerIPID
	direction := models.RoyaltyDirectionDerivativeToParent
	if payerID == "" {
		payerID = zeroAddress
		direction = models.RoyaltyDirectionDirectSupport
	}
	if req.Direction != "" {
		direction = req.Direction
	}

	paid, err := s.ledger.PayRoyalty(ctx, signer, ledger.PayRoyaltyRequest{
		PayerAssetID:    payerID,
		ReceiverAssetID: req.ReceiverIPID,
		Token:           s.cfg.Ledger.RoyaltyCurrency,
		Amount:          req.Amount,
	})
	if err != nil {
		return nil, err
	}

	flow := models.RoyaltyFlow{
		UserID:       userID,
		PayerIPID:    payerID,
		ReceiverIPID: req.ReceiverIPID,
		Token:        s.cfg.Ledger.RoyaltyCurrency,
		Amount:       req.Amount,
		TxHash:       paid.TxHash,
		Direction:    direction,
	}
	if err := s.db.Create(&flow).Error; err != nil {
		logPersistenceWarning("royalty_flow", paid.TxHash, err)
	}

	return &PayRoyaltyResult{
		TxHash:      paid.TxHash,
		ExplorerURL: ledger.ExplorerTxURL(s.cfg.Explorer.BaseURL, paid.TxHash),
	}, nil
}

// Claimable reads the revenue currently claimable by an asset. The asset
// claims on its own behalf, so the claimer is the asset id itself.
func (s *RoyaltyService) Claimable(ctx context.Context, ipID string) (string, error) {
	if ipID == "" {
		return "", apperrors.NewValidationError("ip_id", "IP asset id is required")
	}
	return s.ledger.ClaimableRevenue(ctx, ledger.ClaimableRequest{
		AncestorAssetID: ipID,
		Claimer:         ipID,
		Token:           s.cfg.Ledger.RoyaltyCurrency,
	})
}

type ClaimAllResult struct {
	TxHashes      []string              `json:"tx_hashes"`
	ClaimedTokens []ledger.ClaimedToken `json:"claimed_tokens"`
}

// ClaimAll claims every accrued royalty for an asset in the configured
// currency. The claimer principal is the asset, not the signer's wallet; the
// wallet only signs the transaction.
func (s *RoyaltyService) ClaimAll(ctx context.Context, signer ledger.SigningContext, ipID string) (*ClaimAllResult, error) {
	if ipID == "" {
		return nil, apperrors.NewValidationError("ip_id", "IP asset id is required")
	}
	if !signer.Connected() {
		return nil, &apperrors.WalletNotConnectedError{}
	}

	claimed, err := s.ledger.ClaimAllRevenue(ctx, signer, ledger.ClaimRevenueRequest{
		AncestorAssetID: ipID,
		Claimer:         ipID,
		Tokens:          []string{s.cfg.Ledger.RoyaltyCurrency},
	})
	if err != nil {
		return nil, err
	}

	return &ClaimAllResult{
		TxHashes:      claimed.TxHashes,
		ClaimedTokens: claimed.ClaimedTokens,
	}, nil
}

// FlowsByAsset lists recorded royalty flows touching one asset, in either
// direction.
func (s *RoyaltyService) FlowsByAsset(ipID string, params utils.PaginationParams) ([]models.RoyaltyFlow, int64, error) {
	var flows []models.RoyaltyFlow
	var total int64

	query := s.db.Model(&models.RoyaltyFlow{}).
		Where("payer_ip_id = ? OR receiver_ip_id = ?", ipID, ipID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	err := utils.ApplyPagination(query.Order("created_at DESC"), params).Find(&flows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return flows, total, nil
}

// validatePositiveAmount accepts a base-unit decimal string strictly greater
// than zero. Rejections happen before any ledger call.
func validatePositiveAmount(amount string) error {
	if amount == "" {
		return &apperrors.InvalidAmountError{Amount: amount, Reason: "amount is required"}
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return &apperrors.InvalidAmountError{Amount: amount, Reason: "amount must be a base-unit integer string"}
	}
	if value.Sign() <= 0 {
		return &apperrors.InvalidAmountError{Amount: amount, Reason: "amount must be greater than zero"}
	}
	return nil
}

// logPersistenceWarning records an off-chain index write failure that follows
// a successful on-chain action. The caller still reports success.
func logPersistenceWarning(table, txHash string, err error) {
	logrus.WithFields(logrus.Fields{
		"table":   table,
		"tx_hash": txHash,
	}).WithError(err).Warn("Failed to persist ledger action to off-chain index")
}
