// internal/models/royalty_flow.go
package models

import "github.com/google/uuid"

// RoyaltyFlow is a recorded value transfer between a payer asset (or wallet)
// and a receiver asset's accrued-revenue balance. Amount is a base-unit
// decimal string in the royalty currency.
type RoyaltyFlow struct {
	BaseModel
	UserID       uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	PayerIPID    string           `json:"payer_ip_id,omitempty" gorm:"column:payer_ip_id;size:66;index"`
	ReceiverIPID string           `json:"receiver_ip_id" gorm:"column:receiver_ip_id;size:66;not null;index"`
	Token        string           `json:"token" gorm:"size:42;not null"`
	Amount       string           `json:"amount" gorm:"size:78;not null"`
	TxHash       string           `json:"tx_hash" gorm:"size:66;not null"`
	Direction    RoyaltyDirection `json:"direction" gorm:"type:varchar(30);not null;index"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
