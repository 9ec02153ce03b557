// internal/models/sensor_record.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SensorRecord is an indexed source dataset: the raw sensor payload a
// registration originates from. RawPayload is stored as text so the exact
// bytes survive round trips; derivative metadata embeds it unmodified.
type SensorRecord struct {
	BaseModel
	OwnerID      uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	SensorType   string         `json:"sensor_type" gorm:"size:100;not null;index"`
	Title        string         `json:"title" gorm:"size:255;not null"`
	Location     string         `json:"location" gorm:"size:255"`
	RecordedAt   time.Time      `json:"recorded_at" gorm:"not null;index"`
	SensorHealth string         `json:"sensor_health" gorm:"size:20"`
	RawPayload   string         `json:"raw_payload" gorm:"type:text"`
	Tags         pq.StringArray `json:"tags" gorm:"type:text[]"`
	FileURLs     pq.StringArray `json:"file_urls" gorm:"type:text[]"`
	ArchiveURL   string         `json:"archive_url,omitempty" gorm:"size:512"`

	// Relationships
	Owner        User          `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Registration *Registration `json:"registration,omitempty" gorm:"foreignKey:SensorDataID"`
}
