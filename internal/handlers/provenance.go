// internal/handlers/provenance.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sensorgrid/ipflow-backend/internal/services"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type ProvenanceHandler struct {
	provenanceService *services.ProvenanceService
}

func NewProvenanceHandler(provenanceService *services.ProvenanceService) *ProvenanceHandler {
	return &ProvenanceHandler{
		provenanceService: provenanceService,
	}
}

// GET /provenance/:ipId
func (h *ProvenanceHandler) GetCore(c *gin.Context) {
	core, err := h.provenanceService.ReadCore(c.Request.Context(), c.Param("ipId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"metadata": core})
}

// GET /provenance/:ipId/enriched
func (h *ProvenanceHandler) GetEnriched(c *gin.Context) {
	enriched, err := h.provenanceService.ReadEnriched(c.Request.Context(), c.Param("ipId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"metadata": enriched})
}

type batchReadRequest struct {
	IPIDs    []string `json:"ip_ids" binding:"required,min=1,max=50"`
	Enriched bool     `json:"enriched,omitempty"`
}

// POST /provenance/batch
func (h *ProvenanceHandler) BatchRead(c *gin.Context) {
	var req batchReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	if req.Enriched {
		results := h.provenanceService.BatchReadEnriched(c.Request.Context(), req.IPIDs)
		utils.SuccessResponse(c, gin.H{"results": toBatchEnriched(results)})
		return
	}

	results := h.provenanceService.BatchReadCore(c.Request.Context(), req.IPIDs)
	utils.SuccessResponse(c, gin.H{"results": toBatchCore(results)})
}

type batchEntry struct {
	IPID  string      `json:"ip_id"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func toBatchCore(results []services.CoreReadResult) []batchEntry {
	entries := make([]batchEntry, len(results))
	for i, r := range results {
		entries[i] = batchEntry{IPID: r.IPID, Data: r.Core}
		if r.Err != nil {
			entries[i].Error = r.Err.Error()
		}
	}
	return entries
}

func toBatchEnriched(results []services.EnrichedReadResult) []batchEntry {
	entries := make([]batchEntry, len(results))
	for i, r := range results {
		entries[i] = batchEntry{IPID: r.IPID, Data: r.Enriched}
		if r.Err != nil {
			entries[i].Error = r.Err.Error()
		}
	}
	return entries
}
