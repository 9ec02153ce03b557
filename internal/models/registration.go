// internal/models/registration.go
package models

import (
	"github.com/google/uuid"
)

// Registration is the off-chain index row for an on-chain IP asset
// registration, keyed by the sensor record it originates from. Written once
// per successful ledger submission; the on-chain record itself is immutable.
type Registration struct {
	BaseModel
	SensorDataID     uuid.UUID        `json:"sensor_data_id" gorm:"type:uuid;not null;uniqueIndex"`
	OwnerID          uuid.UUID        `json:"owner_id" gorm:"type:uuid;not null;index"`
	RegistrationType RegistrationType `json:"registration_type" gorm:"type:varchar(20);not null;index"`
	IPID             string           `json:"ip_id" gorm:"column:ip_id;size:66;not null;index"`
	TxHash           string           `json:"tx_hash" gorm:"size:66;not null"`
	LicenseTermsID   string           `json:"license_terms_id" gorm:"size:78"`
	ParentIPID       string           `json:"parent_ip_id,omitempty" gorm:"column:parent_ip_id;size:66;index"`
	ParentTermsID    string           `json:"parent_terms_id,omitempty" gorm:"size:78"`
	CreatorName      string           `json:"creator_name" gorm:"size:255"`
	CreatorAddress   string           `json:"creator_address" gorm:"size:42"`
	MetadataURL      string           `json:"metadata_url" gorm:"size:512"`
	MetadataHash     string           `json:"metadata_hash" gorm:"size:66"`
	TokenMetadataURL string           `json:"token_metadata_url" gorm:"size:512"`
	ExplorerURL      string           `json:"explorer_url" gorm:"size:512"`

	// Relationships
	Owner User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}
