// internal/handlers/license.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sensorgrid/ipflow-backend/internal/services"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type LicenseHandler struct {
	licenseService *services.LicenseService
}

func NewLicenseHandler(licenseService *services.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

// POST /licenses/mint
func (h *LicenseHandler) Mint(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.MintLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	result, err := h.licenseService.Mint(c.Request.Context(), signingContext(c), userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"mint": result})
}

// GET /licenses/my-licenses
func (h *LicenseHandler) MyLicenses(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	wallet, exists := utils.GetWalletFromContext(c)
	if !exists {
		utils.SuccessResponse(c, gin.H{"licenses": []interface{}{}, "total": 0})
		return
	}

	params := utils.GetPaginationParams(c)
	mints, total, err := h.licenseService.LicensesByReceiver(wallet, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(mints, total, params))
}

// GET /licenses/by-asset/:ipId
func (h *LicenseHandler) ByAsset(c *gin.Context) {
	ipID := c.Param("ipId")
	if ipID == "" {
		utils.BadRequestResponse(c, "IP asset id is required", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	mints, total, err := h.licenseService.LicensesByAsset(ipID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(mints, total, params))
}
