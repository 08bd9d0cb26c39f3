package models

import "time"

// Reservation statuses. There is no separate "expired" status: the
// sweep cancels with CancelReasonAutoExpired instead.
const (
	StatusPending   = "pending"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

const (
	CancelReasonAdmin       = "admin_cancelled"
	CancelReasonAutoExpired = "auto_expired"
)

// StatusLabels and StatusColors hold display metadata, kept out of the
// transition logic on purpose.
var StatusLabels = map[string]string{
	StatusPending:   "Pending",
	StatusReady:     "Ready for Pickup",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

var StatusColors = map[string]string{
	StatusPending:   "yellow",
	StatusReady:     "green",
	StatusCompleted: "gray",
	StatusCancelled: "red",
}

func IsValidStatus(status string) bool {
	_, ok := StatusLabels[status]
	return ok
}

type Reservation struct {
	ID                 uint              `gorm:"primaryKey" json:"id"`
	ConfirmationNumber string            `gorm:"type:varchar(20);uniqueIndex;not null" json:"confirmation_number"`
	CustomerID         uint              `gorm:"not null;index" json:"customer_id"`
	Customer           *Customer         `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customer,omitempty"`
	Status             string            `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Subtotal           float64           `gorm:"type:decimal(10,2);not null;default:0.00" json:"subtotal"`
	TaxAmount          float64           `gorm:"type:decimal(10,2);not null;default:0.00" json:"tax_amount"`
	TotalPrice         float64           `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_price"`
	ItemCount          int               `gorm:"not null;default:0" json:"item_count"`
	PickupDate         *time.Time        `json:"pickup_date,omitempty"`
	Notes              string            `gorm:"type:text" json:"notes"`
	ProcessedBy        *uint             `gorm:"index" json:"processed_by,omitempty"`
	Processor          *User             `gorm:"foreignKey:ProcessedBy;references:ID" json:"processor,omitempty"`
	ProcessedAt        *time.Time        `json:"processed_at,omitempty"`
	ReadyAt            *time.Time        `json:"ready_at,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CancellationReason string            `gorm:"type:varchar(50)" json:"cancellation_reason,omitempty"`
	Items              []ReservationItem `gorm:"foreignKey:ReservationID" json:"items"`
	CreatedAt          time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) StatusLabel() string {
	if label, ok := StatusLabels[r.Status]; ok {
		return label
	}
	return r.Status
}

func (r *Reservation) StatusColor() string {
	if color, ok := StatusColors[r.Status]; ok {
		return color
	}
	return "gray"
}

// NotificationEmail resolves the address status emails go to, or ""
// when the reservation has no reachable customer.
func (r *Reservation) NotificationEmail() string {
	if r.Customer == nil {
		return ""
	}
	return r.Customer.Email
}
