// internal/models/license_mint.go
package models

import "github.com/google/uuid"

// LicenseMint records the outcome of a license token mint against an asset
// and terms pair. Fee arithmetic is the ledger's; we record what it charged.
type LicenseMint struct {
	BaseModel
	UserID   uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	IPID     string     `json:"ip_id" gorm:"column:ip_id;size:66;not null;index"`
	TermsID  string     `json:"terms_id" gorm:"size:78;not null"`
	Amount   int64      `json:"amount" gorm:"not null"`
	Receiver string     `json:"receiver" gorm:"size:42;not null;index"`
	TxHash   string     `json:"tx_hash" gorm:"size:66;not null"`
	TokenIDs StringList `json:"token_ids" gorm:"type:text"`
	FeePaid  string     `json:"fee_paid" gorm:"size:78"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
