// internal/handlers/registration.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sensorgrid/ipflow-backend/internal/config"
	"github.com/sensorgrid/ipflow-backend/internal/ledger"
	"github.com/sensorgrid/ipflow-backend/internal/models"
	"github.com/sensorgrid/ipflow-backend/internal/services"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type RegistrationHandler struct {
	registrationService *services.RegistrationService
	recordService       *services.SensorRecordService
	cfg                 *config.Config
}

func NewRegistrationHandler(registrationService *services.RegistrationService, recordService *services.SensorRecordService, cfg *config.Config) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		recordService:       recordService,
		cfg:                 cfg,
	}
}

type registerOriginalRequest struct {
	SensorDataID        string  `json:"sensor_data_id" binding:"required"`
	CreatorName         string  `json:"creator_name" binding:"required"`
	CreatorAddress      string  `json:"creator_address,omitempty"`
	RevenueSharePercent *uint32 `json:"revenue_share_percent,omitempty"`
	MintingFee          string  `json:"minting_fee,omitempty"`
}

type registerDerivativeRequest struct {
	SensorDataID         string  `json:"sensor_data_id" binding:"required"`
	CreatorName          string  `json:"creator_name" binding:"required"`
	CreatorAddress       string  `json:"creator_address,omitempty"`
	ParentIPID           string  `json:"parent_ip_id" binding:"required"`
	ParentTermsID        string  `json:"parent_terms_id" binding:"required"`
	ParentCreatorAddress string  `json:"parent_creator_address,omitempty"`
	ParentRawPayload     string  `json:"parent_raw_payload,omitempty"`
	RoyaltyRecipient     string  `json:"royalty_recipient,omitempty"`
	RoyaltyShare         *uint32 `json:"royalty_share,omitempty"`
	MaxMintingFee        string  `json:"max_minting_fee,omitempty"`
	MaxRevenueShare      *uint32 `json:"max_revenue_share,omitempty"`
	MaxRoyaltyTokens     string  `json:"max_royalty_tokens,omitempty"`
}

// POST /registrations/original
func (h *RegistrationHandler) RegisterOriginal(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req registerOriginalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	record, ok := h.ownedRecord(c, userID, req.SensorDataID)
	if !ok {
		return
	}

	revenueShare := h.cfg.Ledger.DefaultRevenueShare
	if req.RevenueSharePercent != nil {
		revenueShare = *req.RevenueSharePercent
	}
	mintingFee := req.MintingFee
	if mintingFee == "" {
		mintingFee = h.cfg.Ledger.DefaultMintingFee
	}

	result, err := h.registrationService.RegisterOriginal(c.Request.Context(), signingContext(c), &services.RegisterOriginalRequest{
		Source:         *record,
		CreatorName:    req.CreatorName,
		CreatorAddress: req.CreatorAddress,
		Terms: ledger.LicenseTermsSpec{
			RevenueSharePercent: revenueShare,
			MintingFee:          mintingFee,
			Currency:            h.cfg.Ledger.RoyaltyCurrency,
		},
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"registration": result})
}

// POST /registrations/derivative
func (h *RegistrationHandler) RegisterDerivative(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req registerDerivativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	record, ok := h.ownedRecord(c, userID, req.SensorDataID)
	if !ok {
		return
	}

	result, err := h.registrationService.RegisterDerivative(c.Request.Context(), signingContext(c), &services.RegisterDerivativeRequest{
		Source:               *record,
		CreatorName:          req.CreatorName,
		CreatorAddress:       req.CreatorAddress,
		ParentIPID:           req.ParentIPID,
		ParentTermsID:        req.ParentTermsID,
		ParentCreatorAddress: req.ParentCreatorAddress,
		ParentRawPayload:     req.ParentRawPayload,
		RoyaltyRecipient:     req.RoyaltyRecipient,
		RoyaltyShare:         req.RoyaltyShare,
		MaxMintingFee:        req.MaxMintingFee,
		MaxRevenueShare:      req.MaxRevenueShare,
		MaxRoyaltyTokens:     req.MaxRoyaltyTokens,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"registration": result})
}

// GET /registrations/by-sensor-data/:id
func (h *RegistrationHandler) GetBySensorData(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid sensor data id", nil)
		return
	}

	registration, err := h.registrationService.RegistrationBySensorData(id)
	if err != nil {
		utils.NotFoundResponse(c, "registration")
		return
	}

	utils.SuccessResponse(c, gin.H{"registration": registration})
}

func (h *RegistrationHandler) ownedRecord(c *gin.Context, userID uuid.UUID, sensorDataID string) (*models.SensorRecord, bool) {
	id, err := uuid.Parse(sensorDataID)
	if err != nil {
		utils.BadRequestResponse(c, "invalid sensor data id", nil)
		return nil, false
	}

	record, err := h.recordService.GetByID(id)
	if err != nil {
		utils.NotFoundResponse(c, "sensor record")
		return nil, false
	}
	if record.OwnerID != userID {
		utils.ForbiddenResponse(c, "sensor record belongs to another account")
		return nil, false
	}
	return record, true
}
