// internal/services/sensor_record_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sensorgrid/ipflow-backend/internal/models"
	"github.com/sensorgrid/ipflow-backend/internal/utils"
)

// SensorRecordService manages the index of source datasets that registrations
// originate from.
type SensorRecordService struct {
	db      *gorm.DB
	archive *ArchiveService
}

func NewSensorRecordService(db *gorm.DB, archive *ArchiveService) *SensorRecordService {
	return &SensorRecordService{
		db:      db,
		archive: archive,
	}
}

type CreateSensorRecordRequest struct {
	SensorType   string    `json:"sensor_type" validate:"required"`
	Title        string    `json:"title" validate:"required,max=255"`
	Location     string    `json:"location"`
	RecordedAt   time.Time `json:"recorded_at" validate:"required"`
	SensorHealth string    `json:"sensor_health"`
	RawPayload   string    `json:"raw_payload" validate:"required"`
	Tags         []string  `json:"tags,omitempty"`
	FileURLs     []string  `json:"file_urls,omitempty"`
}

func (s *SensorRecordService) Create(ownerID uuid.UUID, req *CreateSensorRecordRequest) (*models.SensorRecord, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	record := &models.SensorRecord{
		OwnerID:      ownerID,
		SensorType:   req.SensorType,
		Title:        req.Title,
		Location:     req.Location,
		RecordedAt:   req.RecordedAt,
		SensorHealth: req.SensorHealth,
		RawPayload:   req.RawPayload,
		Tags:         req.Tags,
		FileURLs:     req.FileURLs,
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create sensor record: %w", err)
	}

	// Archival is best effort; the record is usable without it.
	if s.archive != nil && s.archive.Enabled() {
		result, err := s.archive.ArchiveRecord(record)
		if err != nil {
			logrus.WithField("record_id", record.ID).WithError(err).
				Warn("Failed to archive sensor payload")
		} else {
			record.ArchiveURL = result.URL
			s.db.Model(record).Update("archive_url", result.URL)
		}
	}

	return record, nil
}

func (s *SensorRecordService) GetByID(id uuid.UUID) (*models.SensorRecord, error) {
	var record models.SensorRecord
	if err := s.db.Preload("Registration").First(&record, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.New("sensor record not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

func (s *SensorRecordService) ListByOwner(ownerID uuid.UUID, params utils.PaginationParams) ([]models.SensorRecord, int64, error) {
	var records []models.SensorRecord
	var total int64

	query := s.db.Model(&models.SensorRecord{}).Where("owner_id = ?", ownerID)
	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR location ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "recorded_at", "title", "sensor_type"})
	if err := utils.ApplyPagination(query.Preload("Registration"), params).Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("database error: %w", err)
	}

	return records, total, nil
}

// ArchiveDownloadURL returns a short-lived link to the archived raw payload
// of a record the caller owns.
func (s *SensorRecordService) ArchiveDownloadURL(ownerID, id uuid.UUID) (string, error) {
	var record models.SensorRecord
	if err := s.db.First(&record, "id = ? AND owner_id = ?", id, ownerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", errors.New("sensor record not found")
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	if record.ArchiveURL == "" || s.archive == nil || !s.archive.Enabled() {
		return "", errors.New("record has no archived payload")
	}

	return s.archive.PresignedDownloadURL(s.archive.archiveKey(&record), 15*time.Minute)
}

func (s *SensorRecordService) Delete(ownerID, id uuid.UUID) error {
	result := s.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.SensorRecord{})
	if result.Error != nil {
		return fmt.Errorf("database error: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.New("sensor record not found")
	}
	return nil
}
