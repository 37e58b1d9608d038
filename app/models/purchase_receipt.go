package models

import "time"

// PurchaseReceipt persists the normalized outcome of a purchase or restore
// attempt, including the raw backend payload for diagnostics.
type PurchaseReceipt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Success        bool      `gorm:"default:false" json:"success"`
	ProductID      string    `gorm:"type:varchar(191);index" json:"product_id"`
	TransactionID  string    `gorm:"type:varchar(191);index" json:"transaction_id"`
	Platform       string    `gorm:"type:varchar(16);not null;default:'web'" json:"platform"`
	ErrorMessage   string    `gorm:"type:varchar(500)" json:"error_message,omitempty"`
	RawPayloadJSON string    `gorm:"type:longtext" json:"raw_payload_json,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
