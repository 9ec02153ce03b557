// internal/handlers/sensor_record.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sensorgrid/ipflow-backend/internal/services"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

type SensorRecordHandler struct {
	recordService *services.SensorRecordService
}

func NewSensorRecordHandler(recordService *services.SensorRecordService) *SensorRecordHandler {
	return &SensorRecordHandler{
		recordService: recordService,
	}
}

// POST /sensor-records
func (h *SensorRecordHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.CreateSensorRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid request body", err.Error())
		return
	}

	record, err := h.recordService.Create(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"record": record})
}

// GET /sensor-records
func (h *SensorRecordHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	records, total, err := h.recordService.ListByOwner(userID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(records, total, params))
}

// GET /sensor-records/:id
func (h *SensorRecordHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid record id", nil)
		return
	}

	record, err := h.recordService.GetByID(id)
	if err != nil {
		utils.NotFoundResponse(c, "sensor record")
		return
	}

	utils.SuccessResponse(c, gin.H{"record": record})
}

// GET /sensor-records/:id/archive-url
func (h *SensorRecordHandler) ArchiveURL(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid record id", nil)
		return
	}

	url, err := h.recordService.ArchiveDownloadURL(userID, id)
	if err != nil {
		utils.NotFoundResponse(c, "archived payload")
		return
	}

	utils.SuccessResponse(c, gin.H{"download_url": url})
}

// DELETE /sensor-records/:id
func (h *SensorRecordHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "invalid record id", nil)
		return
	}

	if err := h.recordService.Delete(userID, id); err != nil {
		utils.NotFoundResponse(c, "sensor record")
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
