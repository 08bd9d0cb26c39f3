package models

import "time"

// Customer is keyed by email so guest checkouts and registered
// accounts merge into one record. The aggregate stats columns are a
// cache recomputed on demand, never the source of truth.
type Customer struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	Email             string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone             string     `gorm:"type:varchar(20)" json:"phone"`
	DOB               *time.Time `gorm:"type:date" json:"dob,omitempty"`
	IsSubscribed      bool       `gorm:"not null;default:false" json:"is_subscribed"`
	Source            string     `gorm:"type:varchar(50);default:'website'" json:"source"`
	Notes             string     `gorm:"type:text" json:"notes"`
	TotalReservations int        `gorm:"not null;default:0" json:"total_reservations"`
	TotalSpent        float64    `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_spent"`
	LastReservationAt *time.Time `json:"last_reservation_at,omitempty"`
	CreatedAt         time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"not null" json:"updated_at"`
}
