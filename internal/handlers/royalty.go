// internal/handlers/royalty.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sensorgrid/ipflow-backend/internal/services"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type RoyaltyHandler struct {
	royaltyService *services.RoyaltyService
}

func NewRoyaltyHandler(royaltyService *services.RoyaltyService) *RoyaltyHandler {
	return &RoyaltyHandler{
		royaltyService: royaltyService,
	}
}

// POST /royalties/pay
func (h *RoyaltyHandler) Pay(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.PayRoyaltyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	result, err := h.royaltyService.Pay(c.Request.Context(), signingContext(c), userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"payment": result})
}

// GET /royalties/:ipId/claimable
func (h *RoyaltyHandler) Claimable(c *gin.Context) {
	claimable, err := h.royaltyService.Claimable(c.Request.Context(), c.Param("ipId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"claimable": claimable})
}

// POST /royalties/:ipId/claim-all
func (h *RoyaltyHandler) ClaimAll(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	result, err := h.royaltyService.ClaimAll(c.Request.Context(), signingContext(c), c.Param("ipId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"claimed": result})
}

// GET /royalties/:ipId/flows
func (h *RoyaltyHandler) Flows(c *gin.Context) {
	ipID := c.Param("ipId")
	if ipID == "" {
		utils.BadRequestResponse(c, "IP asset id is required", nil)
		return
	}

	params := utils.GetPaginationParams(c)
	flows, total, err := h.royaltyService.FlowsByAsset(ipID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(flows, total, params))
}
