package models

import "time"

// AgeVerification is an audit row recorded when a visitor passes the
// age gate.
type AgeVerification struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SessionID  string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	IPAddress  string    `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string    `gorm:"type:varchar(512)" json:"user_agent"`
	VerifiedAt time.Time `gorm:"not null" json:"verified_at"`
}
